package database

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ColumnType is the declared storage class of a column.
type ColumnType string

const (
	ColumnInteger ColumnType = "INTEGER"
	ColumnText    ColumnType = "TEXT"
)

// Record validation errors.
var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrTypeMismatch  = errors.New("value does not match column type")
	ErrNullValue     = errors.New("null value in non-null column")
	ErrInvalidSchema = errors.New("invalid table schema")
)

type Column struct {
	Name       string
	Type       ColumnType
	Nullable   bool
	PrimaryKey bool
}

// TableSchema describes one table owned by the schema manager.
type TableSchema struct {
	Name    string
	Columns []Column
}

var (
	BookSchema = TableSchema{
		Name: "book",
		Columns: []Column{
			{Name: "_id", Type: ColumnInteger, PrimaryKey: true},
			{Name: "name", Type: ColumnText, Nullable: true},
		},
	}

	UserSchema = TableSchema{
		Name: "user",
		Columns: []Column{
			{Name: "_id", Type: ColumnInteger, PrimaryKey: true},
			{Name: "name", Type: ColumnText, Nullable: true},
			{Name: "sex", Type: ColumnInteger, Nullable: true},
		},
	}
)

// DefaultSchemas returns the tables every provider store carries.
func DefaultSchemas() []TableSchema {
	return []TableSchema{BookSchema, UserSchema}
}

// Validate checks that the schema has a name, unique column names and exactly one
// non-null primary key column.
func (s TableSchema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: empty table name", ErrInvalidSchema)
	}
	seen := make(map[string]bool, len(s.Columns))
	keys := 0
	for _, c := range s.Columns {
		if c.Name == "" {
			return fmt.Errorf("%w: %s has an unnamed column", ErrInvalidSchema, s.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: %s declares column %s twice", ErrInvalidSchema, s.Name, c.Name)
		}
		seen[c.Name] = true
		if c.PrimaryKey {
			if c.Nullable {
				return fmt.Errorf("%w: primary key %s.%s must not be nullable", ErrInvalidSchema, s.Name, c.Name)
			}
			keys++
		}
	}
	if keys != 1 {
		return fmt.Errorf("%w: %s must have exactly one primary key, has %d", ErrInvalidSchema, s.Name, keys)
	}
	return nil
}

// CreateStatement renders the idempotent DDL for the table, e.g.
// CREATE TABLE IF NOT EXISTS book(_id INTEGER PRIMARY KEY, name TEXT).
func (s TableSchema) CreateStatement() string {
	defs := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		def := c.Name + " " + string(c.Type)
		switch {
		case c.PrimaryKey:
			def += " PRIMARY KEY"
		case !c.Nullable:
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s(%s)", s.Name, strings.Join(defs, ", "))
}

// Column looks up a column by name.
func (s TableSchema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in declaration order.
func (s TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// ValidateRecord checks every value of record against the declared columns.
// Integers of any width and bools are accepted for INTEGER columns, strings for TEXT
// columns, and nil for nullable columns.
func (s TableSchema) ValidateRecord(record map[string]any) error {
	names := make([]string, 0, len(record))
	for name := range record {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		col, ok := s.Column(name)
		if !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, s.Name, name)
		}
		value := record[name]
		if value == nil {
			if !col.Nullable {
				return fmt.Errorf("%w: %s.%s", ErrNullValue, s.Name, name)
			}
			continue
		}
		if !matchesType(col.Type, value) {
			return fmt.Errorf("%w: %s.%s is %s, got %T", ErrTypeMismatch, s.Name, name, col.Type, value)
		}
	}
	return nil
}

func matchesType(t ColumnType, value any) bool {
	switch t {
	case ColumnInteger:
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, bool:
			return true
		}
	case ColumnText:
		_, ok := value.(string)
		return ok
	}
	return false
}
