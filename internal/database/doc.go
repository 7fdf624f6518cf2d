// Package database owns the provider's embedded SQLite store.
//
// # Schema lifecycle
//
// A Manager opens the store file and ensures its schema:
//
//	m := database.NewManager(database.Config{Path: "./book_provider.db", WALMode: true})
//	db, err := m.OpenHandle()
//	err = m.EnsureSchema(db)
//
// EnsureSchema runs CREATE TABLE IF NOT EXISTS for every known table and records
// SchemaVersion in PRAGMA user_version. Stores written by an older version go through
// Manager.OnUpgrade, which is nil today: version 1 is the only schema there is.
//
// # Sub-packages
//
//	database/
//	├── database.go      # Manager, handle open, schema versioning
//	├── schema.go        # Table schemas, DDL rendering, record validation
//	├── books/           # Typed access to the book table
//	└── users/           # Typed access to the user table
//
// The URI-addressed facade in internal/provider uses a Manager as its Opener.
// The typed repositories are used by seeding and by tools that know the tables.
package database
