package provider

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookprovider/internal/database"
)

// Opener opens the store handle and brings its schema up to date.
// database.Manager is the production implementation.
type Opener interface {
	OpenHandle() (*gorm.DB, error)
	EnsureSchema(db *gorm.DB) error
}

// Provider is the URI-addressed CRUD facade over the store. Every operation resolves
// its identifier through the route table before touching the store.
//
// The handle is opened and its schema ensured on first use, exactly once. Operations
// block until the store finishes; the provider adds no locking of its own.
type Provider struct {
	opener   Opener
	routes   *RouteTable
	schemas  map[string]database.TableSchema
	notifier ChangeNotifier

	initOnce sync.Once
	db       *gorm.DB
	initErr  error
	closed   atomic.Bool
}

type Option func(*Provider)

// WithNotifier sets the notifier told about successful mutations.
func WithNotifier(n ChangeNotifier) Option {
	return func(p *Provider) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithSchemas replaces the schemas records are validated against.
func WithSchemas(schemas ...database.TableSchema) Option {
	return func(p *Provider) {
		p.schemas = schemaIndex(schemas)
	}
}

// New creates a provider. Nothing is opened until the first operation.
func New(opener Opener, routes *RouteTable, opts ...Option) *Provider {
	p := &Provider{
		opener:   opener,
		routes:   routes,
		schemas:  schemaIndex(database.DefaultSchemas()),
		notifier: nopNotifier{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewWithDefaultRoutes creates a provider serving the book and user tables under
// authority.
func NewWithDefaultRoutes(opener Opener, authority string, opts ...Option) (*Provider, error) {
	routes, err := NewRouteTable(DefaultRoutes(authority)...)
	if err != nil {
		return nil, fmt.Errorf("failed to build routes: %w", err)
	}
	return New(opener, routes, opts...), nil
}

func schemaIndex(schemas []database.TableSchema) map[string]database.TableSchema {
	index := make(map[string]database.TableSchema, len(schemas))
	for _, s := range schemas {
		index[s.Name] = s
	}
	return index
}

// Open forces store initialisation. Operations call it implicitly.
func (p *Provider) Open() error {
	_, err := p.handle()
	return err
}

func (p *Provider) handle() (*gorm.DB, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	p.initOnce.Do(func() {
		db, err := p.opener.OpenHandle()
		if err != nil {
			p.initErr = &SchemaInitError{Err: err}
			return
		}
		if err := p.opener.EnsureSchema(db); err != nil {
			database.Close(db)
			p.initErr = &SchemaInitError{Err: err}
			return
		}
		p.db = db
	})
	return p.db, p.initErr
}

func (p *Provider) resolve(op string, id ResourceID) (string, database.TableSchema, error) {
	table, err := p.routes.Resolve(id)
	if err != nil {
		return "", database.TableSchema{}, err
	}
	schema, ok := p.schemas[table]
	if !ok {
		return "", database.TableSchema{}, storageError(op, table, fmt.Errorf("no schema registered for table %s", table))
	}
	return table, schema, nil
}

// Query returns the records of the identified table matching filter. An empty
// projection selects every column, an empty filter every row. filterArgs bind to
// the "?" placeholders of filter in order.
func (p *Provider) Query(ctx context.Context, id ResourceID, projection []string, filter string, filterArgs []string, sortOrder string) (*RecordSet, error) {
	table, schema, err := p.resolve("query", id)
	if err != nil {
		return nil, err
	}
	for _, column := range projection {
		if _, ok := schema.Column(column); !ok {
			return nil, storageError("query", table, fmt.Errorf("%w: %s.%s", database.ErrUnknownColumn, table, column))
		}
	}
	if err := validateSortOrder(schema, sortOrder); err != nil {
		return nil, storageError("query", table, err)
	}
	if err := validateFilter(filter, filterArgs); err != nil {
		return nil, storageError("query", table, err)
	}

	db, err := p.handle()
	if err != nil {
		return nil, err
	}

	q := db.WithContext(ctx).Table(table)
	if len(projection) > 0 {
		q = q.Select(projection)
	}
	if strings.TrimSpace(filter) != "" {
		q = q.Where(filterExpr(filter, filterArgs))
	}
	if sortOrder != "" {
		q = q.Order(sortOrder)
	}

	rows, err := q.Rows()
	if err != nil {
		return nil, storageError("query", table, err)
	}
	rs, err := newRecordSet(rows)
	if err != nil {
		return nil, storageError("query", table, err)
	}
	return rs, nil
}

// Insert writes one record into the identified table and notifies once. It never
// synthesises an identifier for the new row, so the returned identifier is always nil.
// A duplicate primary key is a StorageError.
func (p *Provider) Insert(ctx context.Context, id ResourceID, values Record) (*ResourceID, error) {
	table, schema, err := p.resolve("insert", id)
	if err != nil {
		return nil, err
	}
	row, err := prepareValues("insert", schema, values)
	if err != nil {
		return nil, err
	}

	db, err := p.handle()
	if err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).Table(table).Create(row).Error; err != nil {
		return nil, storageError("insert", table, err)
	}

	p.notify(id)
	return nil, nil
}

// Update applies values to every row matching filter and returns how many rows
// changed. It notifies once when at least one row changed.
func (p *Provider) Update(ctx context.Context, id ResourceID, values Record, filter string, filterArgs []string) (int64, error) {
	table, schema, err := p.resolve("update", id)
	if err != nil {
		return 0, err
	}
	row, err := prepareValues("update", schema, values)
	if err != nil {
		return 0, err
	}
	if err := validateFilter(filter, filterArgs); err != nil {
		return 0, storageError("update", table, err)
	}

	db, err := p.handle()
	if err != nil {
		return 0, err
	}

	q := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Table(table)
	if strings.TrimSpace(filter) != "" {
		q = q.Where(filterExpr(filter, filterArgs))
	}
	result := q.Updates(row)
	if result.Error != nil {
		return 0, storageError("update", table, result.Error)
	}

	if result.RowsAffected > 0 {
		p.notify(id)
	}
	return result.RowsAffected, nil
}

// Delete removes every row matching filter and returns how many were removed.
// It notifies once when at least one row was removed.
func (p *Provider) Delete(ctx context.Context, id ResourceID, filter string, filterArgs []string) (int64, error) {
	table, _, err := p.resolve("delete", id)
	if err != nil {
		return 0, err
	}
	if err := validateFilter(filter, filterArgs); err != nil {
		return 0, storageError("delete", table, err)
	}

	db, err := p.handle()
	if err != nil {
		return 0, err
	}

	tx := db.WithContext(ctx)
	stmt := "DELETE FROM " + tx.Statement.Quote(table)
	var result *gorm.DB
	if strings.TrimSpace(filter) != "" {
		result = tx.Exec(stmt+" WHERE ?", filterExpr(filter, filterArgs))
	} else {
		result = tx.Exec(stmt)
	}
	if result.Error != nil {
		return 0, storageError("delete", table, result.Error)
	}

	if result.RowsAffected > 0 {
		p.notify(id)
	}
	return result.RowsAffected, nil
}

// Type returns the MIME type of the identified resource. No types are registered,
// so a resolvable identifier yields "".
func (p *Provider) Type(id ResourceID) (string, error) {
	if _, err := p.routes.Resolve(id); err != nil {
		return "", err
	}
	return "", nil
}

// Close releases the store handle. Later operations fail with ErrClosed.
func (p *Provider) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	// Block a concurrent first-use initialisation from opening after Close.
	p.initOnce.Do(func() {
		p.initErr = ErrClosed
	})
	return database.Close(p.db)
}

func (p *Provider) notify(id ResourceID) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PROVIDER] change notifier panicked for %s: %v", id, r)
		}
	}()
	p.notifier.NotifyChange(id)
}

// prepareValues validates values against schema and copies them into the map handed
// to gorm, which writes bookkeeping keys into maps it is given.
func prepareValues(op string, schema database.TableSchema, values Record) (map[string]any, error) {
	if len(values) == 0 {
		return nil, storageError(op, schema.Name, ErrEmptyValues)
	}
	if err := schema.ValidateRecord(values); err != nil {
		return nil, storageError(op, schema.Name, err)
	}
	row := make(map[string]any, len(values))
	for k, v := range values {
		if b, ok := v.(bool); ok {
			if b {
				v = 1
			} else {
				v = 0
			}
		}
		row[k] = v
	}
	return row, nil
}

// filterExpr hands filter to gorm as raw SQL. A plain string would be read as a
// primary key when numeric or as a column name when it has no spaces.
func filterExpr(filter string, args []string) clause.Expr {
	vars := make([]any, len(args))
	for i, a := range args {
		vars[i] = a
	}
	return clause.Expr{SQL: filter, Vars: vars}
}

// validateFilter requires one argument per "?" placeholder of filter. Question
// marks inside quoted literals are not placeholders.
func validateFilter(filter string, args []string) error {
	if strings.TrimSpace(filter) == "" {
		if len(args) > 0 {
			return fmt.Errorf("%w: %d arguments for an empty filter", ErrFilterArgs, len(args))
		}
		return nil
	}
	if n := countPlaceholders(filter); n != len(args) {
		return fmt.Errorf("%w: %d placeholders, %d arguments", ErrFilterArgs, n, len(args))
	}
	return nil
}

func countPlaceholders(filter string) int {
	var quote rune
	n := 0
	for _, r := range filter {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '?':
			n++
		}
	}
	return n
}

// validateSortOrder accepts a comma separated list of "column [ASC|DESC]" terms
// naming columns of schema.
func validateSortOrder(schema database.TableSchema, sortOrder string) error {
	if strings.TrimSpace(sortOrder) == "" {
		return nil
	}
	for _, term := range strings.Split(sortOrder, ",") {
		fields := strings.Fields(term)
		if len(fields) == 0 || len(fields) > 2 {
			return fmt.Errorf("invalid sort term %q", term)
		}
		if _, ok := schema.Column(fields[0]); !ok {
			return fmt.Errorf("%w: %s.%s", database.ErrUnknownColumn, schema.Name, fields[0])
		}
		if len(fields) == 2 {
			dir := strings.ToUpper(fields[1])
			if dir != "ASC" && dir != "DESC" {
				return errors.New("sort direction must be ASC or DESC")
			}
		}
	}
	return nil
}
