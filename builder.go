package sqlkit

import (
	"fmt"
	"strings"
)

// ColumnReader converts one raw driver value using the column's
// metadata. It runs for every column read, lazy or eager.
//
// Readers for handle-like values (large object locators, streaming
// blobs) must be used with care: such handles are only valid while the
// cursor has not advanced past their row. Reading one later is a caller
// error with undefined results, not something sqlkit can detect.
type ColumnReader func(raw any, d ColumnDescriptor) (any, error)

// DefaultReader passes values through unchanged, except that nil stays
// nil and boolean-typed columns are normalized to a canonical bool.
// Drivers are not trusted to agree on a boolean representation: integer
// 0/1, "t"/"f", "true"/"false", and single-byte forms all occur in the
// wild.
func DefaultReader(raw any, d ColumnDescriptor) (any, error) {
	if raw == nil {
		return nil, nil
	}
	if !isBoolType(d.Type) {
		return raw, nil
	}
	switch v := raw.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case uint64:
		return v != 0, nil
	case string:
		return parseBoolWord(v, d)
	case []byte:
		if len(v) == 1 && (v[0] == 0 || v[0] == 1) {
			return v[0] == 1, nil
		}
		return parseBoolWord(string(v), d)
	default:
		return nil, fmt.Errorf("sqlkit: column %q: cannot normalize %T to bool", d.Label, raw)
	}
}

func isBoolType(sqlType string) bool {
	switch strings.ToUpper(sqlType) {
	case "BOOL", "BOOLEAN", "BIT", "TINYINT(1)":
		return true
	}
	return false
}

func parseBoolWord(s string, d ColumnDescriptor) (any, error) {
	switch strings.ToLower(s) {
	case "t", "true", "1", "y", "yes":
		return true, nil
	case "f", "false", "0", "n", "no":
		return false, nil
	}
	return nil, fmt.Errorf("sqlkit: column %q: cannot normalize %q to bool", d.Label, s)
}

// TypeReader composes type-specific readers over DefaultReader. Keys
// are driver SQL type names, compared case-insensitively. Columns with
// no registered reader fall through to DefaultReader.
func TypeReader(readers map[string]ColumnReader) ColumnReader {
	byType := make(map[string]ColumnReader, len(readers))
	for t, r := range readers {
		byType[strings.ToUpper(t)] = r
	}
	return func(raw any, d ColumnDescriptor) (any, error) {
		if r, ok := byType[strings.ToUpper(d.Type)]; ok {
			return r(raw, d)
		}
		return DefaultReader(raw, d)
	}
}

// RowBuilder turns the cursor's current row into a Record. Bind runs
// once per statement, before the first row; Row runs once per cursor
// position on the eager path, or on demand when a lazy Row view is
// materialized.
type RowBuilder interface {
	Bind(descs []ColumnDescriptor, policy NamePolicy, read ColumnReader) error
	Row(cur Cursor) (Record, error)
}

// MapRows returns the map-shaped builder: each row becomes an ordered
// name/value mapping. Name resolution runs per column per row, so the
// policy's cost is paid for every cell. This is the default.
func MapRows() RowBuilder { return &mapRows{} }

type mapRows struct {
	descs  []ColumnDescriptor
	policy NamePolicy
	read   ColumnReader
}

func (b *mapRows) Bind(descs []ColumnDescriptor, policy NamePolicy, read ColumnReader) error {
	b.descs, b.policy, b.read = descs, policy, read
	return nil
}

func (b *mapRows) Row(cur Cursor) (Record, error) {
	n := len(b.descs)
	names := make([]string, n)
	values := make([]any, n)
	for i := 0; i < n; i++ {
		d := b.descs[i]
		raw, err := cur.Value(i)
		if err != nil {
			return nil, err
		}
		v, err := b.read(raw, d)
		if err != nil {
			return nil, err
		}
		names[i] = b.policy(d.Qualifier, d.Label)
		values[i] = v
	}
	return newMapRecord(names, values), nil
}

// ArrayRows returns the array-shaped builder: names are computed once
// per statement in Bind and shared by every record; each row only
// accumulates values. The faster shape for wide, repeatedly scanned
// result sets.
func ArrayRows() RowBuilder { return &arrayRows{} }

type arrayRows struct {
	descs []ColumnDescriptor
	names []string
	read  ColumnReader
}

func (b *arrayRows) Bind(descs []ColumnDescriptor, policy NamePolicy, read ColumnReader) error {
	b.descs, b.read = descs, read
	b.names = make([]string, len(descs))
	for i, d := range descs {
		b.names[i] = policy(d.Qualifier, d.Label)
	}
	return nil
}

func (b *arrayRows) Row(cur Cursor) (Record, error) {
	values := make([]any, len(b.descs))
	for i := range b.descs {
		raw, err := cur.Value(i)
		if err != nil {
			return nil, err
		}
		v, err := b.read(raw, b.descs[i])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &arrayRecord{names: b.names, values: values}, nil
}

// ResultSet is an ordered sequence of Records, or the synthetic
// update-count result produced by Exec.
type ResultSet struct {
	Records []Record
}

// UpdateCountColumn is the single column name of the synthetic record
// returned by Exec and ExecBatch. Builder options never alter its shape.
const UpdateCountColumn = "count"

func updateCountResult(n int64) *ResultSet {
	return &ResultSet{Records: []Record{
		newMapRecord([]string{UpdateCountColumn}, []any{n}),
	}}
}

// ResultBuilder accumulates Records into a ResultSet on the eager
// materialization path. The lazy path never invokes one.
type ResultBuilder interface {
	Add(Record)
	Result() *ResultSet
}

// SliceResult returns the default ResultBuilder, an appending slice.
func SliceResult() ResultBuilder { return &sliceResult{} }

type sliceResult struct {
	recs []Record
}

func (b *sliceResult) Add(r Record)       { b.recs = append(b.recs, r) }
func (b *sliceResult) Result() *ResultSet { return &ResultSet{Records: b.recs} }
