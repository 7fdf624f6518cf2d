package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mrlokans/bookprovider/internal/config"
)

// QueryCommand prints the records of a table.
type QueryCommand struct {
	storeOptions

	Columns listFlag
	Where   string
	Args    listFlag
	Order   string
}

func NewQueryCommand(cfg *config.Config) *QueryCommand {
	return &QueryCommand{storeOptions: newStoreOptions(cfg)}
}

func (cmd *QueryCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)

	cmd.registerDatabase(fs)
	cmd.registerURI(fs)
	fs.Var(&cmd.Columns, "columns", "Comma separated columns to return (default: all)")
	fs.StringVar(&cmd.Where, "where", "", "Filter with ? placeholders, e.g. \"_id > ?\"")
	fs.Var(&cmd.Args, "args", "Comma separated values bound to the -where placeholders")
	fs.StringVar(&cmd.Order, "order", "", "Sort order, e.g. \"name DESC\"")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s query -uri <identifier> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the records of a provider table.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s query -uri book\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s query -uri content://%s/user -columns _id,name -where \"sex = ?\" -args 1\n", os.Args[0], cmd.cfg.Provider.Authority)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	return cmd.requireURI()
}

func (cmd *QueryCommand) Run() error {
	id, err := cmd.resourceID()
	if err != nil {
		return err
	}

	p, err := cmd.openProvider()
	if err != nil {
		return err
	}
	defer p.Close()

	rs, err := p.Query(context.Background(), id, cmd.Columns, cmd.Where, cmd.Args, cmd.Order)
	if err != nil {
		return fmt.Errorf("query %s failed: %w", id, err)
	}
	defer rs.Close()

	out := cmd.out()
	columns := rs.Columns()
	fmt.Fprintln(out, strings.Join(columns, "\t"))

	count := 0
	for rs.Next() {
		record := rs.Record()
		values := make([]string, len(columns))
		for i, c := range columns {
			values[i] = formatValue(record[c])
		}
		fmt.Fprintln(out, strings.Join(values, "\t"))
		count++
	}
	if err := rs.Err(); err != nil {
		return fmt.Errorf("reading %s failed: %w", id, err)
	}

	fmt.Fprintf(out, "(%d rows)\n", count)
	return nil
}
