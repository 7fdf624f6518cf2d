package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookprovider/internal/config"
	"github.com/mrlokans/bookprovider/internal/entities"
	"github.com/mrlokans/bookprovider/internal/provider"
)

const (
	demoBookID   = 6
	demoBookName = "Faith in God"
)

// DemoCommand walks through the provider the way a client application would:
// seed, insert a book, then read both tables back as typed entities.
type DemoCommand struct {
	storeOptions

	SkipSeed bool
}

func NewDemoCommand(cfg *config.Config) *DemoCommand {
	return &DemoCommand{storeOptions: newStoreOptions(cfg)}
}

func (cmd *DemoCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)

	cmd.registerDatabase(fs)
	fs.BoolVar(&cmd.SkipSeed, "no-seed", false, "Keep existing rows instead of restoring the sample data first")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s demo [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Seed the sample data, insert book %d and print both tables.\n\n", demoBookID)
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *DemoCommand) Run() error {
	ctx := context.Background()
	out := cmd.out()

	if !cmd.SkipSeed {
		if err := cmd.seedSampleData(ctx); err != nil {
			return err
		}
	}

	p, err := cmd.openProvider()
	if err != nil {
		return err
	}
	defer p.Close()

	bookURI := provider.NewResourceID(cmd.cfg.Provider.Scheme, cmd.cfg.Provider.Authority, "book")
	userURI := provider.NewResourceID(cmd.cfg.Provider.Scheme, cmd.cfg.Provider.Authority, "user")

	_, err = p.Insert(ctx, bookURI, provider.Record{"_id": demoBookID, "name": demoBookName})
	switch {
	case err == nil:
		fmt.Fprintf(out, "Inserted book %d\n", demoBookID)
	case errors.Is(err, provider.ErrStorage):
		fmt.Fprintf(out, "Book %d not inserted: %v\n", demoBookID, err)
	default:
		return err
	}

	books, err := queryBooks(ctx, p, bookURI)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Books:")
	for _, b := range books {
		fmt.Fprintf(out, "  %s\n", b)
	}

	users, err := queryUsers(ctx, p, userURI)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Users:")
	for _, u := range users {
		fmt.Fprintf(out, "  %s\n", u)
	}

	return nil
}

func queryBooks(ctx context.Context, p *provider.Provider, id provider.ResourceID) ([]entities.Book, error) {
	rs, err := p.Query(ctx, id, []string{"_id", "name"}, "", nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	records, err := rs.All()
	if err != nil {
		return nil, fmt.Errorf("failed to read books: %w", err)
	}

	books := make([]entities.Book, 0, len(records))
	for _, r := range records {
		books = append(books, bookFromRecord(r))
	}
	return books, nil
}

func queryUsers(ctx context.Context, p *provider.Provider, id provider.ResourceID) ([]entities.User, error) {
	rs, err := p.Query(ctx, id, []string{"_id", "name", "sex"}, "", nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	records, err := rs.All()
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	users := make([]entities.User, 0, len(records))
	for _, r := range records {
		users = append(users, userFromRecord(r))
	}
	return users, nil
}

func bookFromRecord(r provider.Record) entities.Book {
	id, _ := r.Int64("_id")
	name, _ := r.Text("name")
	return entities.Book{ID: id, Name: name}
}

func userFromRecord(r provider.Record) entities.User {
	id, _ := r.Int64("_id")
	name, _ := r.Text("name")
	sex, _ := r.Int64("sex")
	return entities.User{ID: id, Name: name, IsMale: sex == 1}
}
