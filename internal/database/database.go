package database

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// SchemaVersion is written to PRAGMA user_version once the schema is ensured.
	SchemaVersion = 1

	dirPermissions = 0750
	msPerSecond    = 1000
)

// ErrDowngrade is returned when the store was written by a newer schema version.
var ErrDowngrade = errors.New("database schema is newer than this build")

// Config describes how to open the provider store.
type Config struct {
	Path        string
	WALMode     bool
	BusyTimeout int    // seconds
	LogLevel    string // silent, error, warn, info
}

// UpgradeFunc migrates a store from one schema version to the next. It runs inside
// the schema transaction.
type UpgradeFunc func(tx *gorm.DB, oldVersion, newVersion int) error

// Manager owns the store file and the table schemas. It opens handles and brings
// their schema up to date.
type Manager struct {
	cfg     Config
	schemas []TableSchema
	version int

	// OnUpgrade is called when an existing store carries an older schema version.
	// Nil means no migration is needed.
	OnUpgrade UpgradeFunc
}

// NewManager creates a schema manager for the given tables. With no schemas the
// book and user tables are used.
func NewManager(cfg Config, schemas ...TableSchema) *Manager {
	if len(schemas) == 0 {
		schemas = DefaultSchemas()
	}
	return &Manager{
		cfg:     cfg,
		schemas: schemas,
		version: SchemaVersion,
	}
}

// Schemas returns the tables this manager creates.
func (m *Manager) Schemas() []TableSchema {
	return m.schemas
}

// Path returns the store file path.
func (m *Manager) Path() string {
	return m.cfg.Path
}

// OpenHandle opens the store file, creating it and its directory when missing.
func (m *Manager) OpenHandle() (*gorm.DB, error) {
	if m.cfg.Path == "" {
		return nil, errors.New("database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(m.cfg.Path), dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(m.dsn()), &gorm.Config{
		Logger: logger.Default.LogMode(ParseLogLevel(m.cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (m *Manager) dsn() string {
	params := []string{"_foreign_keys=on"}
	if m.cfg.BusyTimeout > 0 {
		params = append(params, fmt.Sprintf("_busy_timeout=%d", m.cfg.BusyTimeout*msPerSecond))
	}
	if m.cfg.WALMode {
		params = append(params, "_journal_mode=WAL", "_synchronous=NORMAL")
	}
	return fmt.Sprintf("file:%s?%s", m.cfg.Path, strings.Join(params, "&"))
}

// EnsureSchema creates every known table if it does not exist and records the
// schema version. It is safe to call any number of times and never drops data.
func (m *Manager) EnsureSchema(db *gorm.DB) error {
	for _, s := range m.schemas {
		if err := s.Validate(); err != nil {
			return err
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var current int
		if err := tx.Raw("PRAGMA user_version").Row().Scan(&current); err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		if current > m.version {
			return fmt.Errorf("%w: store has version %d, expected %d", ErrDowngrade, current, m.version)
		}

		for _, s := range m.schemas {
			if err := tx.Exec(s.CreateStatement()).Error; err != nil {
				return fmt.Errorf("failed to create table %s: %w", s.Name, err)
			}
		}

		if current != 0 && current < m.version {
			log.Printf("[SCHEMA] Upgrading store from version %d to %d", current, m.version)
			if m.OnUpgrade != nil {
				if err := m.OnUpgrade(tx, current, m.version); err != nil {
					return fmt.Errorf("failed to upgrade schema from %d to %d: %w", current, m.version, err)
				}
			}
		}

		if current != m.version {
			if err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)).Error; err != nil {
				return fmt.Errorf("failed to write schema version: %w", err)
			}
		}
		return nil
	})
}

// SchemaVersionOf reads the version recorded in the store.
func SchemaVersionOf(db *gorm.DB) (int, error) {
	var version int
	if err := db.Raw("PRAGMA user_version").Row().Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

// ParseLogLevel maps a config string to a gorm log level. Unknown values mean warn.
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Database is an open, schema-ensured store for callers that work with typed
// repositories instead of the URI facade.
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the store described by cfg and ensures its schema.
func NewDatabase(cfg Config) (*Database, error) {
	m := NewManager(cfg)
	db, err := m.OpenHandle()
	if err != nil {
		return nil, err
	}

	database := &Database{DB: db}
	if err := m.EnsureSchema(db); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Printf("Database initialized successfully at %s", cfg.Path)
	return database, nil
}

func (d *Database) Close() error {
	return Close(d.DB)
}

// Close releases the connection pool behind a gorm handle.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
