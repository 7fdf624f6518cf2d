package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the provider. Callers match them with errors.Is.
var (
	// ErrUnsupportedResource is returned when an identifier matches no route.
	// It is a client error and is never retried.
	ErrUnsupportedResource = errors.New("unsupported resource identifier")

	// ErrStorage is matched by every *StorageError.
	ErrStorage = errors.New("storage error")

	// ErrSchemaInit is matched by every *SchemaInitError.
	ErrSchemaInit = errors.New("schema initialization failed")

	// ErrClosed is returned by operations on a closed provider.
	ErrClosed = errors.New("provider is closed")

	// ErrEmptyValues is wrapped in a StorageError when an insert or update carries no columns.
	ErrEmptyValues = errors.New("no values to write")

	// ErrFilterArgs is wrapped in a StorageError when the filter arguments do not
	// match the "?" placeholders of the filter.
	ErrFilterArgs = errors.New("filter arguments do not match placeholders")
)

// StorageError reports a store rejection: constraint violations, malformed filters,
// I/O failures and records that do not fit the table schema.
type StorageError struct {
	Op    string
	Table string
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// SchemaInitError reports that the store could not be opened or its schema ensured.
// A provider that returned one never serves another operation.
type SchemaInitError struct {
	Err error
}

func (e *SchemaInitError) Error() string {
	return fmt.Sprintf("schema initialization failed: %v", e.Err)
}

func (e *SchemaInitError) Unwrap() error {
	return e.Err
}

func (e *SchemaInitError) Is(target error) bool {
	return target == ErrSchemaInit
}

func storageError(op, table string, err error) error {
	return &StorageError{Op: op, Table: table, Err: err}
}

func unsupported(id ResourceID) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedResource, id)
}
