package sqlkit

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"
)

// DBHandler supplies the fake driver's answer to a query: column names,
// row data, or an error.
type DBHandler func(query string, args []driver.NamedValue) (cols []string, rows [][]driver.Value, err error)

// ExecHandler supplies the fake driver's answer to an exec: the
// affected-row count or an error.
type ExecHandler func(query string, args []driver.NamedValue) (int64, error)

type testConnector struct {
	h DBHandler
	e ExecHandler
}

func (c *testConnector) Connect(context.Context) (driver.Conn, error) {
	return &testConn{h: c.h, e: c.e}, nil
}
func (c *testConnector) Driver() driver.Driver { return testDriver{} }

type testDriver struct{}

func (testDriver) Open(name string) (driver.Conn, error) {
	return nil, errors.New("testDriver.Open should not be called; use sql.OpenDB with connector")
}

type testConn struct {
	h DBHandler
	e ExecHandler
}

func (c *testConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (c *testConn) Close() error                        { return nil }
func (c *testConn) Begin() (driver.Tx, error)           { return nil, driver.ErrSkip }

func (c *testConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	cols, data, err := c.h(query, args)
	if err != nil {
		return nil, err
	}
	return &testRows{cols: cols, data: data}, nil
}

func (c *testConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if c.e == nil {
		return nil, errors.New("no exec handler")
	}
	n, err := c.e(query, args)
	if err != nil {
		return nil, err
	}
	return driver.RowsAffected(n), nil
}

type testRows struct {
	cols []string
	data [][]driver.Value
	i    int
}

func (r *testRows) Columns() []string { return append([]string(nil), r.cols...) }
func (r *testRows) Close() error      { return nil }
func (r *testRows) Next(dest []driver.Value) error {
	if r.i >= len(r.data) {
		return io.EOF
	}
	row := r.data[r.i]
	for i := range dest {
		if i < len(row) {
			dest[i] = row[i]
		} else {
			dest[i] = nil
		}
	}
	r.i++
	return nil
}

// newTestDB creates a *sql.DB backed by the in-memory test driver.
func newTestDB(t *testing.T, h DBHandler) *sql.DB {
	t.Helper()
	return sql.OpenDB(&testConnector{h: h})
}

// newTestExecDB creates a *sql.DB whose exec calls report the given
// handler's affected count.
func newTestExecDB(t *testing.T, e ExecHandler) *sql.DB {
	t.Helper()
	return sql.OpenDB(&testConnector{e: e})
}

// fakeCursor is an in-memory Cursor for exercising Row views and
// builder strategies without a driver. Unlike rowsCursor it can carry
// table qualifiers per column.
type fakeCursor struct {
	descs []ColumnDescriptor
	data  [][]any
	pos   int
	err   error
}

func (c *fakeCursor) Next() bool {
	if c.err != nil || c.pos >= len(c.data) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) Err() error   { return c.err }
func (c *fakeCursor) Close() error { return nil }

func (c *fakeCursor) ColumnCount() int                  { return len(c.descs) }
func (c *fakeCursor) Descriptor(i int) ColumnDescriptor { return c.descs[i] }

func (c *fakeCursor) Value(i int) (any, error) {
	return c.data[c.pos-1][i], nil
}

func (c *fakeCursor) ValueByLabel(label string) (any, error) {
	for i := range c.descs {
		if c.descs[i].Label == label {
			return c.Value(i)
		}
	}
	return nil, ErrNoColumn
}

func (c *fakeCursor) Pos() int { return c.pos }
