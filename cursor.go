package sqlkit

import (
	"database/sql"
	"fmt"
)

// ColumnDescriptor is the immutable metadata for one result column,
// derived once per statement from the cursor.
type ColumnDescriptor struct {
	Index     int
	Label     string
	Qualifier string // source table if known, else ""
	Type      string // driver's SQL type name, e.g. "VARCHAR"
}

// Cursor is a forward-only view over a driver result stream. It is
// owned by one reduction for the duration of one statement and is not
// safe for concurrent advance. Pos returns a position token that
// increments on every successful Next; Row views compare against it to
// detect staleness.
type Cursor interface {
	Next() bool
	Err() error
	Close() error
	ColumnCount() int
	Descriptor(i int) ColumnDescriptor
	Value(i int) (any, error)
	ValueByLabel(label string) (any, error)
	Pos() int
}

// rowsCursor adapts *sql.Rows. database/sql exposes no per-column read,
// so each advance scans the whole row into raw slots; Value returns the
// slot unconverted. Any driver fault is wrapped into *DriverError.
type rowsCursor struct {
	rows  *sql.Rows
	descs []ColumnDescriptor
	raw   []any
	ptrs  []any
	pos   int
	err   error
}

// newRowsCursor reads column metadata once and prepares scan slots.
// qualifier is attached to every descriptor; database/sql does not
// report source tables, so it comes from the statement spec when there
// is one.
func newRowsCursor(rows *sql.Rows, qualifier string) (*rowsCursor, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, &DriverError{Op: "columns", Err: err}
	}
	c := &rowsCursor{
		rows:  rows,
		descs: make([]ColumnDescriptor, len(types)),
		raw:   make([]any, len(types)),
		ptrs:  make([]any, len(types)),
	}
	for i, ct := range types {
		c.descs[i] = ColumnDescriptor{
			Index:     i,
			Label:     ct.Name(),
			Qualifier: qualifier,
			Type:      ct.DatabaseTypeName(),
		}
		c.ptrs[i] = &c.raw[i]
	}
	return c, nil
}

func (c *rowsCursor) Next() bool {
	if c.err != nil {
		return false
	}
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			c.err = &DriverError{Op: "next", Err: err}
		}
		return false
	}
	if err := c.rows.Scan(c.ptrs...); err != nil {
		c.err = &DriverError{Op: "scan", Err: err}
		return false
	}
	c.pos++
	return true
}

func (c *rowsCursor) Err() error { return c.err }

func (c *rowsCursor) Close() error {
	if err := c.rows.Close(); err != nil {
		return &DriverError{Op: "close", Err: err}
	}
	return nil
}

func (c *rowsCursor) ColumnCount() int { return len(c.descs) }

func (c *rowsCursor) Descriptor(i int) ColumnDescriptor { return c.descs[i] }

func (c *rowsCursor) Value(i int) (any, error) {
	if i < 0 || i >= len(c.raw) {
		return nil, fmt.Errorf("sqlkit: column index %d out of range [0,%d)", i, len(c.raw))
	}
	return c.raw[i], nil
}

func (c *rowsCursor) ValueByLabel(label string) (any, error) {
	for i := range c.descs {
		if c.descs[i].Label == label {
			return c.raw[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoColumn, label)
}

func (c *rowsCursor) Pos() int { return c.pos }
