package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookprovider/internal/config"
	"github.com/mrlokans/bookprovider/internal/database"
	"github.com/mrlokans/bookprovider/internal/provider"
	"github.com/mrlokans/bookprovider/internal/seed"
)

// SeedCommand restores the sample books and users.
type SeedCommand struct {
	storeOptions
}

func NewSeedCommand(cfg *config.Config) *SeedCommand {
	return &SeedCommand{storeOptions: newStoreOptions(cfg)}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)

	cmd.registerDatabase(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Replace the contents of the book and user tables with the sample rows.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *SeedCommand) Run() error {
	if err := cmd.seedSampleData(context.Background()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.out(), "Seeded %d books and %d users into %s\n",
		len(seed.DefaultBooks()), len(seed.DefaultUsers()), cmd.DatabasePath)
	return nil
}

func (o *storeOptions) seedSampleData(ctx context.Context) error {
	dbCfg, err := o.databaseConfig()
	if err != nil {
		return err
	}

	db, err := database.NewDatabase(dbCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	seeder := seed.NewSeeder(db.DB)
	seeder.Notifier = logNotifier
	seeder.BookURI = provider.NewResourceID(o.cfg.Provider.Scheme, o.cfg.Provider.Authority, "book")
	seeder.UserURI = provider.NewResourceID(o.cfg.Provider.Scheme, o.cfg.Provider.Authority, "user")

	if err := seeder.Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed sample data: %w", err)
	}
	return nil
}
