package sqlkit

import "fmt"

// Record is an immutable, fully materialized row. Unlike a Row it has
// no cursor dependency and stays valid for as long as the caller holds
// it. Names appear in column order; Get resolves the name computed by
// the NamePolicy the record was built under.
type Record interface {
	Get(name string) (any, bool)
	Index(i int) any
	Len() int
	Names() []string
	Values() []any
}

// mapRecord is the map-shaped Record: an ordered name/value mapping
// with a lookup index.
type mapRecord struct {
	names  []string
	values []any
	index  map[string]int
}

func newMapRecord(names []string, values []any) *mapRecord {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		// Later columns shadow earlier ones on label collision.
		idx[n] = i
	}
	return &mapRecord{names: names, values: values, index: idx}
}

func (r *mapRecord) Get(name string) (any, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

func (r *mapRecord) Index(i int) any { return r.values[i] }
func (r *mapRecord) Len() int        { return len(r.values) }
func (r *mapRecord) Names() []string { return r.names }
func (r *mapRecord) Values() []any   { return r.values }

// arrayRecord is the array-shaped Record: per-row values plus a name
// slice shared by every record of the statement. Lookup is a linear
// scan; the shape trades lookup speed for build speed on wide results.
type arrayRecord struct {
	names  []string // shared, computed once per statement
	values []any
}

func (r *arrayRecord) Get(name string) (any, bool) {
	for i, n := range r.names {
		if n == name {
			return r.values[i], true
		}
	}
	return nil, false
}

func (r *arrayRecord) Index(i int) any { return r.values[i] }
func (r *arrayRecord) Len() int        { return len(r.values) }
func (r *arrayRecord) Names() []string { return r.names }
func (r *arrayRecord) Values() []any   { return r.values }

// Row is a lazy view over the cursor's current row. It is valid only
// while the cursor stays at the position it was created for; the next
// advance invalidates it and any access returns *StaleRowError. Record
// materializes the row exactly once and keeps the result, which also
// keeps the Row usable after the cursor moves on.
type Row struct {
	cur   Cursor
	pos   int
	names []string // resolved once per statement, shared across rows
	read  ColumnReader
	build RowBuilder
	rec   Record
}

// Len reports the column count. It is position-independent metadata and
// never forces materialization.
func (r *Row) Len() int { return r.cur.ColumnCount() }

func (r *Row) stale() error {
	if cur := r.cur.Pos(); cur != r.pos {
		return &StaleRowError{Pos: r.pos, Cur: cur}
	}
	return nil
}

// Get resolves key against the statement's column names under the
// active NamePolicy and reads that column through the ColumnReader.
// Results are not cached per key; only full materialization is cached.
// A key that resolves to no column returns ErrNoColumn.
func (r *Row) Get(key string) (any, error) {
	if r.rec != nil {
		v, ok := r.rec.Get(key)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoColumn, key)
		}
		return v, nil
	}
	if err := r.stale(); err != nil {
		return nil, err
	}
	for i, n := range r.names {
		if n == key {
			return r.readAt(i)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoColumn, key)
}

// Index reads the i'th column through the ColumnReader.
func (r *Row) Index(i int) (any, error) {
	if r.rec != nil {
		if i < 0 || i >= r.rec.Len() {
			return nil, fmt.Errorf("sqlkit: column index %d out of range [0,%d)", i, r.rec.Len())
		}
		return r.rec.Index(i), nil
	}
	if err := r.stale(); err != nil {
		return nil, err
	}
	if i < 0 || i >= r.cur.ColumnCount() {
		return nil, fmt.Errorf("sqlkit: column index %d out of range [0,%d)", i, r.cur.ColumnCount())
	}
	return r.readAt(i)
}

func (r *Row) readAt(i int) (any, error) {
	raw, err := r.cur.Value(i)
	if err != nil {
		return nil, err
	}
	return r.read(raw, r.cur.Descriptor(i))
}

// Record materializes the row through the active RowBuilder. The first
// call reads the cursor; every later call returns the same Record
// without touching it, including after the cursor has advanced.
func (r *Row) Record() (Record, error) {
	if r.rec != nil {
		return r.rec, nil
	}
	if err := r.stale(); err != nil {
		return nil, err
	}
	rec, err := r.build.Row(r.cur)
	if err != nil {
		return nil, err
	}
	r.rec = rec
	return rec, nil
}
