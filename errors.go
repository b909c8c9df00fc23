package sqlkit

import (
	"errors"
	"fmt"
)

// ErrMalformedSpec is returned when a statement spec is structurally
// invalid: an empty insert mapping, mismatched multi-row column/value
// lengths, a where spec with both an equality map and a raw clause, or a
// conflicting pagination combination. Validation completes before any
// SQL text is produced.
var ErrMalformedSpec = errors.New("sqlkit: malformed statement spec")

// ErrNoColumn is returned by Row.Get and Record lookups when the
// requested key does not resolve to any column under the active
// NamePolicy.
var ErrNoColumn = errors.New("sqlkit: no such column")

// DriverError wraps a failure surfaced by the driver boundary: executing
// a statement, advancing the cursor, scanning a row, or closing it. The
// underlying error is kept unchanged and never retried here.
type DriverError struct {
	Op  string // "query", "exec", "columns", "next", "scan", "close"
	Err error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("sqlkit: driver %s: %v", e.Op, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }

// StaleRowError reports access to a Row view after the owning cursor
// advanced past the position the view was created for. Convert a Row to
// a Record before the next advance if you need to keep it.
type StaleRowError struct {
	Pos int // position token the Row was created at
	Cur int // cursor position at the time of access
}

func (e *StaleRowError) Error() string {
	return fmt.Sprintf("sqlkit: stale row: created at position %d, cursor now at %d", e.Pos, e.Cur)
}

// UnsafeIdentifierError reports a table, column, or alias identifier
// that failed the injection denylist check. The check runs before any
// SQL text is assembled.
type UnsafeIdentifierError struct {
	Ident string
}

func (e *UnsafeIdentifierError) Error() string {
	return fmt.Sprintf("sqlkit: unsafe identifier %q", e.Ident)
}
