package cli

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mrlokans/bookprovider/internal/config"
	"github.com/mrlokans/bookprovider/internal/database"
	"github.com/mrlokans/bookprovider/internal/provider"
)

// storeOptions are the flags shared by every command that opens the store.
type storeOptions struct {
	cfg *config.Config

	DatabasePath string
	URI          string

	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
}

func newStoreOptions(cfg *config.Config) storeOptions {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return storeOptions{cfg: cfg, Out: os.Stdout}
}

func (o *storeOptions) registerDatabase(fs *flag.FlagSet) {
	fs.StringVar(&o.DatabasePath, "db", o.cfg.Database.Path, "Path to the provider database file")
}

func (o *storeOptions) registerURI(fs *flag.FlagSet) {
	fs.StringVar(&o.URI, "uri", "", "Resource identifier, e.g. content://"+o.cfg.Provider.Authority+"/book or just 'book' (required)")
}

func (o *storeOptions) requireURI() error {
	if o.URI == "" {
		return fmt.Errorf("required flag -uri not provided")
	}
	return nil
}

// resourceID accepts a full identifier or a bare path under the configured authority.
func (o *storeOptions) resourceID() (provider.ResourceID, error) {
	if strings.Contains(o.URI, "://") {
		return provider.ParseResourceID(o.URI)
	}
	return provider.NewResourceID(o.cfg.Provider.Scheme, o.cfg.Provider.Authority, o.URI), nil
}

func (o *storeOptions) databaseConfig() (database.Config, error) {
	absDBPath, err := filepath.Abs(o.DatabasePath)
	if err != nil {
		return database.Config{}, fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	return database.Config{
		Path:        absDBPath,
		WALMode:     o.cfg.Database.WALMode,
		BusyTimeout: o.cfg.Database.BusyTimeout,
		LogLevel:    o.cfg.Database.LogLevel,
	}, nil
}

func (o *storeOptions) openProvider() (*provider.Provider, error) {
	dbCfg, err := o.databaseConfig()
	if err != nil {
		return nil, err
	}
	return provider.NewWithDefaultRoutes(
		database.NewManager(dbCfg),
		o.cfg.Provider.Authority,
		provider.WithNotifier(logNotifier),
	)
}

func (o *storeOptions) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// logNotifier reports changes made from the command line, where nobody subscribes.
var logNotifier = provider.NotifierFunc(func(id provider.ResourceID) {
	log.Printf("[PROVIDER] Change notified for %s", id)
})

// listFlag collects comma separated values.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(value string) error {
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*l = append(*l, item)
		}
	}
	return nil
}

// valuesFlag collects repeated -set key=value assignments into a record.
type valuesFlag provider.Record

func (v valuesFlag) String() string {
	pairs := make([]string, 0, len(v))
	for k, val := range v {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, val))
	}
	return strings.Join(pairs, ",")
}

func (v valuesFlag) Set(assignment string) error {
	key, raw, ok := strings.Cut(assignment, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", assignment)
	}
	v[key] = parseValue(raw)
	return nil
}

// parseValue turns a command-line value into a record scalar. Integers and booleans
// are recognised, "null" is NULL, and quotes force text.
func parseValue(raw string) any {
	switch raw {
	case "null", "NULL":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if len(raw) >= 2 {
		if (raw[0] == '"' && raw[len(raw)-1] == '"') || (raw[0] == '\'' && raw[len(raw)-1] == '\'') {
			return raw[1 : len(raw)-1]
		}
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}
