package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/bookprovider/internal/cli"
	"github.com/mrlokans/bookprovider/internal/config"
	"github.com/mrlokans/bookprovider/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// command is implemented by every subcommand in internal/cli.
type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	cfg := config.NewConfig()

	// If no arguments or "serve" command, run the provider daemon
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "query":
		cmd = cli.NewQueryCommand(cfg)
	case "insert":
		cmd = cli.NewInsertCommand(cfg)
	case "update":
		cmd = cli.NewUpdateCommand(cfg)
	case "delete":
		cmd = cli.NewDeleteCommand(cfg)
	case "seed":
		cmd = cli.NewSeedCommand(cfg)
	case "demo":
		cmd = cli.NewDemoCommand(cfg)

	case "version":
		fmt.Printf("bookprovider %s (%s)\n", Version, Commit)
		return

	case "-h", "--help", "help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve    Run the provider daemon (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  query    Print the records of a table\n")
	fmt.Fprintf(os.Stderr, "  insert   Insert one record\n")
	fmt.Fprintf(os.Stderr, "  update   Update the records matching a filter\n")
	fmt.Fprintf(os.Stderr, "  delete   Delete the records matching a filter\n")
	fmt.Fprintf(os.Stderr, "  seed     Restore the sample books and users\n")
	fmt.Fprintf(os.Stderr, "  demo     Seed, insert a book and print both tables\n")
	fmt.Fprintf(os.Stderr, "  version  Print the build version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
