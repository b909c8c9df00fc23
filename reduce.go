package sqlkit

import (
	"context"
	"database/sql"
	"sync"
)

// Option configures one reduction: the naming policy, value conversion,
// and row/result construction strategies.
type Option func(*config)

type config struct {
	policy    NamePolicy
	read      ColumnReader
	row       RowBuilder
	result    ResultBuilder
	qualifier string
	qualSet   bool
}

// WithNamePolicy sets the column naming policy. Default: QualifiedName.
func WithNamePolicy(p NamePolicy) Option {
	return func(c *config) { c.policy = p }
}

// WithColumnReader sets the per-column conversion hook. Default:
// DefaultReader.
func WithColumnReader(r ColumnReader) Option {
	return func(c *config) { c.read = r }
}

// WithRowBuilder sets the row construction strategy. Default: MapRows.
func WithRowBuilder(b RowBuilder) Option {
	return func(c *config) { c.row = b }
}

// WithResultBuilder sets the result accumulation strategy used by
// Query. Default: SliceResult.
func WithResultBuilder(b ResultBuilder) Option {
	return func(c *config) { c.result = b }
}

// WithQualifier overrides the table qualifier attached to column
// descriptors. Without it, statements compiled from a spec qualify
// columns with their table and raw SQL leaves the qualifier empty.
func WithQualifier(q string) Option {
	return func(c *config) { c.qualifier = q; c.qualSet = true }
}

func newConfig(stmt Statement, opts []Option) *config {
	c := &config{
		policy: QualifiedName,
		read:   DefaultReader,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.row == nil {
		c.row = MapRows()
	}
	if c.result == nil {
		c.result = SliceResult()
	}
	if !c.qualSet {
		c.qualifier = stmt.table
	}
	return c
}

// open executes the statement and binds the row builder to the cursor's
// column set.
func open(ctx context.Context, q Querier, stmt Statement, c *config) (*rowsCursor, error) {
	rows, err := q.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, &DriverError{Op: "query", Err: err}
	}
	cur, err := newRowsCursor(rows, c.qualifier)
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	if err := c.row.Bind(cur.descs, c.policy, c.read); err != nil {
		_ = cur.Close()
		return nil, err
	}
	return cur, nil
}

// Query executes the statement and materializes every row through the
// configured RowBuilder into a ResultSet. The whole result is buffered;
// use Reduce to stream instead.
func Query(ctx context.Context, q Querier, stmt Statement, opts ...Option) (rs *ResultSet, err error) {
	c := newConfig(stmt, opts)
	cur, err := open(ctx, q, stmt, c)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := cur.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for cur.Next() {
		rec, rerr := c.row.Row(cur)
		if rerr != nil {
			return nil, rerr
		}
		c.result.Add(rec)
	}
	if ne := cur.Err(); ne != nil {
		return nil, ne
	}
	return c.result.Result(), nil
}

// QueryRow executes the statement and materializes the first row only.
// It returns sql.ErrNoRows when the result is empty; extra rows are
// ignored, so add LIMIT 1 when you require at-most-one.
func QueryRow(ctx context.Context, q Querier, stmt Statement, opts ...Option) (rec Record, err error) {
	c := newConfig(stmt, opts)
	cur, err := open(ctx, q, stmt, c)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := cur.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if !cur.Next() {
		if ne := cur.Err(); ne != nil {
			return nil, ne
		}
		return nil, sql.ErrNoRows
	}
	return c.row.Row(cur)
}

// Exec executes a statement that returns no rows and produces the
// synthetic update-count result: a single record with one "count"
// column holding the affected-row count. Builder options never alter
// its shape.
func Exec(ctx context.Context, e Execer, stmt Statement) (*ResultSet, error) {
	res, err := e.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, &DriverError{Op: "exec", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, &DriverError{Op: "exec", Err: err}
	}
	return updateCountResult(n), nil
}

// ExecBatch submits a batched multi-row insert, one execution per
// argument group in Statement.Batch, and sums the affected counts into
// a single update-count result. Statements without a batch fall back to
// Exec.
func ExecBatch(ctx context.Context, e Execer, stmt Statement) (*ResultSet, error) {
	if stmt.Batch == nil {
		return Exec(ctx, e, stmt)
	}
	var total int64
	for _, group := range stmt.Batch {
		res, err := e.ExecContext(ctx, stmt.SQL, group...)
		if err != nil {
			return nil, &DriverError{Op: "exec", Err: err}
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, &DriverError{Op: "exec", Err: err}
		}
		total += n
	}
	return updateCountResult(total), nil
}

// Reduce executes the statement and folds the result lazily: step
// receives the accumulator and a Row view bound to the current cursor
// position, and nothing is materialized unless step asks for it. A Row
// retained past the step call expires on the next advance; convert it
// with Row.Record first if you need to keep it. No ResultSet is built.
func Reduce[T any](ctx context.Context, q Querier, stmt Statement, init T, step func(T, *Row) (T, error), opts ...Option) (acc T, err error) {
	c := newConfig(stmt, opts)
	cur, err := open(ctx, q, stmt, c)
	if err != nil {
		return init, err
	}
	defer func() {
		if cerr := cur.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	acc = init
	names := make([]string, len(cur.descs))
	for i, d := range cur.descs {
		names[i] = c.policy(d.Qualifier, d.Label)
	}
	for cur.Next() {
		row := &Row{
			cur:   cur,
			pos:   cur.Pos(),
			names: names,
			read:  c.read,
			build: c.row,
		}
		acc, err = step(acc, row)
		if err != nil {
			return acc, err
		}
	}
	if ne := cur.Err(); ne != nil {
		return acc, ne
	}
	return acc, nil
}

// Fold runs a parallel fork-join reduce over an already-materialized
// ResultSet: records are split into parallelism chunks, each reduced
// with step from a zero accumulator, and the partial results are
// combined left to right. Safe because no cursor interaction remains
// once a ResultSet is buffered. parallelism < 1 is treated as 1.
func Fold[T any](rs *ResultSet, parallelism int, step func(T, Record) T, combine func(T, T) T) T {
	var zero T
	recs := rs.Records
	if len(recs) == 0 {
		return zero
	}
	if parallelism < 1 {
		parallelism = 1
	}
	if parallelism > len(recs) {
		parallelism = len(recs)
	}
	if parallelism == 1 {
		acc := zero
		for _, r := range recs {
			acc = step(acc, r)
		}
		return acc
	}

	parts := make([]T, parallelism)
	var wg sync.WaitGroup
	for i := 0; i < parallelism; i++ {
		// Even remainder distribution: lo and hi never exceed len(recs),
		// and every record lands in exactly one chunk.
		lo := i * len(recs) / parallelism
		hi := (i + 1) * len(recs) / parallelism
		wg.Add(1)
		go func(i, lo, hi int) {
			defer wg.Done()
			var acc T
			for _, r := range recs[lo:hi] {
				acc = step(acc, r)
			}
			parts[i] = acc
		}(i, lo, hi)
	}
	wg.Wait()

	acc := parts[0]
	for _, p := range parts[1:] {
		acc = combine(acc, p)
	}
	return acc
}
