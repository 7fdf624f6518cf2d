package provider

import (
	"database/sql"
)

// Record is one row's worth of column values. Values read back from the store are
// int64, string or nil.
type Record map[string]any

// Int64 returns the integer value of column, or false when it is null or not an integer.
func (r Record) Int64(column string) (int64, bool) {
	v, ok := r[column].(int64)
	return v, ok
}

// Text returns the text value of column, or false when it is null or not text.
func (r Record) Text(column string) (string, bool) {
	v, ok := r[column].(string)
	return v, ok
}

// RecordSet is a single-pass cursor over query results. Rows are read from the store
// as Next is called; nothing is cached. Callers must Close it unless Next returned false.
type RecordSet struct {
	rows    *sql.Rows
	columns []string
	current Record
	err     error
	closed  bool
}

func newRecordSet(rows *sql.Rows) (*RecordSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, err
	}
	return &RecordSet{rows: rows, columns: columns}, nil
}

// Columns returns the result column names in order.
func (rs *RecordSet) Columns() []string {
	return rs.columns
}

// Next advances to the next record. It returns false when the set is exhausted,
// closed, or a read failed; Err distinguishes the cases.
func (rs *RecordSet) Next() bool {
	if rs.closed {
		return false
	}
	if !rs.rows.Next() {
		rs.err = rs.rows.Err()
		rs.Close()
		return false
	}

	values := make([]any, len(rs.columns))
	dest := make([]any, len(rs.columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rs.rows.Scan(dest...); err != nil {
		rs.err = err
		rs.Close()
		return false
	}

	record := make(Record, len(rs.columns))
	for i, column := range rs.columns {
		if b, ok := values[i].([]byte); ok {
			record[column] = string(b)
			continue
		}
		record[column] = values[i]
	}
	rs.current = record
	return true
}

// Record returns the record Next moved to.
func (rs *RecordSet) Record() Record {
	return rs.current
}

// Err returns the error that stopped iteration, if any.
func (rs *RecordSet) Err() error {
	return rs.err
}

// Close releases the underlying cursor. It is safe to call more than once.
func (rs *RecordSet) Close() error {
	if rs.closed {
		return nil
	}
	rs.closed = true
	return rs.rows.Close()
}

// All drains the remaining records and closes the set.
func (rs *RecordSet) All() ([]Record, error) {
	defer rs.Close()

	var records []Record
	for rs.Next() {
		records = append(records, rs.Record())
	}
	return records, rs.Err()
}
