package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookprovider/internal/config"
	"github.com/mrlokans/bookprovider/internal/provider"
)

// InsertCommand writes one record into a table.
type InsertCommand struct {
	storeOptions

	Values valuesFlag
}

func NewInsertCommand(cfg *config.Config) *InsertCommand {
	return &InsertCommand{storeOptions: newStoreOptions(cfg), Values: valuesFlag{}}
}

func (cmd *InsertCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("insert", flag.ExitOnError)

	cmd.registerDatabase(fs)
	cmd.registerURI(fs)
	fs.Var(cmd.Values, "set", "Column value as key=value, repeatable (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s insert -uri <identifier> -set key=value [-set key=value ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Insert one record. Integers, true/false and null are recognised; quote a value to force text.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s insert -uri book -set _id=6 -set name=Go\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cmd.requireURI(); err != nil {
		return err
	}
	if len(cmd.Values) == 0 {
		return fmt.Errorf("at least one -set key=value is required")
	}
	return nil
}

func (cmd *InsertCommand) Run() error {
	id, err := cmd.resourceID()
	if err != nil {
		return err
	}

	p, err := cmd.openProvider()
	if err != nil {
		return err
	}
	defer p.Close()

	if _, err := p.Insert(context.Background(), id, provider.Record(cmd.Values)); err != nil {
		return fmt.Errorf("insert into %s failed: %w", id, err)
	}

	fmt.Fprintf(cmd.out(), "Inserted 1 record into %s\n", id)
	return nil
}

// UpdateCommand changes the records matching a filter.
type UpdateCommand struct {
	storeOptions

	Values valuesFlag
	Where  string
	Args   listFlag
}

func NewUpdateCommand(cfg *config.Config) *UpdateCommand {
	return &UpdateCommand{storeOptions: newStoreOptions(cfg), Values: valuesFlag{}}
}

func (cmd *UpdateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)

	cmd.registerDatabase(fs)
	cmd.registerURI(fs)
	fs.Var(cmd.Values, "set", "Column value as key=value, repeatable (required)")
	fs.StringVar(&cmd.Where, "where", "", "Filter with ? placeholders (default: every row)")
	fs.Var(&cmd.Args, "args", "Comma separated values bound to the -where placeholders")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s update -uri <identifier> -set key=value [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Update the records matching -where.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s update -uri user -set sex=true -where \"name = ?\" -args Wang\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cmd.requireURI(); err != nil {
		return err
	}
	if len(cmd.Values) == 0 {
		return fmt.Errorf("at least one -set key=value is required")
	}
	return nil
}

func (cmd *UpdateCommand) Run() error {
	id, err := cmd.resourceID()
	if err != nil {
		return err
	}

	p, err := cmd.openProvider()
	if err != nil {
		return err
	}
	defer p.Close()

	n, err := p.Update(context.Background(), id, provider.Record(cmd.Values), cmd.Where, cmd.Args)
	if err != nil {
		return fmt.Errorf("update of %s failed: %w", id, err)
	}

	fmt.Fprintf(cmd.out(), "Updated %d records in %s\n", n, id)
	return nil
}

// DeleteCommand removes the records matching a filter.
type DeleteCommand struct {
	storeOptions

	Where string
	Args  listFlag
}

func NewDeleteCommand(cfg *config.Config) *DeleteCommand {
	return &DeleteCommand{storeOptions: newStoreOptions(cfg)}
}

func (cmd *DeleteCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)

	cmd.registerDatabase(fs)
	cmd.registerURI(fs)
	fs.StringVar(&cmd.Where, "where", "", "Filter with ? placeholders (default: every row)")
	fs.Var(&cmd.Args, "args", "Comma separated values bound to the -where placeholders")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s delete -uri <identifier> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete the records matching -where. Without -where every record is removed.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s delete -uri book -where \"_id = ?\" -args 6\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	return cmd.requireURI()
}

func (cmd *DeleteCommand) Run() error {
	id, err := cmd.resourceID()
	if err != nil {
		return err
	}

	p, err := cmd.openProvider()
	if err != nil {
		return err
	}
	defer p.Close()

	n, err := p.Delete(context.Background(), id, cmd.Where, cmd.Args)
	if err != nil {
		return fmt.Errorf("delete from %s failed: %w", id, err)
	}

	fmt.Fprintf(cmd.out(), "Deleted %d records from %s\n", n, id)
	return nil
}
