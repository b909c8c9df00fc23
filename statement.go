package sqlkit

import (
	"fmt"
	"sort"
	"strings"
)

// Statement is a compiled statement: SQL text plus its ordered argument
// list. Argument order always matches placeholder order in the text.
// Batch is set only by InsertMulti in batched mode, with one argument
// group per row for submission via ExecBatch.
type Statement struct {
	SQL   string
	Args  []any
	Batch [][]any

	table string // qualifier hint for the reduction engine
}

// Table reports the table identifier this statement was compiled
// against, or "" for raw SQL. The reduction engine uses it as the
// column qualifier when executing compiled selects.
func (s Statement) Table() string { return s.table }

// Raw wraps caller-written SQL and positional arguments into a
// Statement without validation or rewriting.
func Raw(query string, args ...any) Statement {
	return Statement{SQL: query, Args: args}
}

// BuildOption configures statement compilation.
type BuildOption func(*buildConfig)

type buildConfig struct {
	tableEntity  func(string) string
	columnEntity func(string) string
	batched      bool
}

// WithTableEntity sets the transform (casing, quoting) applied to the
// string form of table identifiers after the safety check.
func WithTableEntity(fn func(string) string) BuildOption {
	return func(c *buildConfig) { c.tableEntity = fn }
}

// WithColumnEntity sets the transform applied to column and alias
// identifiers after the safety check.
func WithColumnEntity(fn func(string) string) BuildOption {
	return func(c *buildConfig) { c.columnEntity = fn }
}

// Batched switches InsertMulti to batched mode: one value-group
// template in the SQL, arguments grouped per row in Statement.Batch.
func Batched() BuildOption {
	return func(c *buildConfig) { c.batched = true }
}

func newBuildConfig(opts []BuildOption) *buildConfig {
	c := &buildConfig{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *buildConfig) table(s string) string {
	if c.tableEntity != nil {
		return c.tableEntity(s)
	}
	return s
}

func (c *buildConfig) column(s string) string {
	if c.columnEntity != nil {
		return c.columnEntity(s)
	}
	return s
}

// checkIdent rejects identifiers containing statement-injection
// characters. It runs on the raw identifier, before any entity
// transform and before any SQL text is assembled.
func checkIdent(ident string) error {
	if ident == "" || strings.ContainsAny(ident, ";'\"`") || strings.Contains(ident, "--") {
		return &UnsafeIdentifierError{Ident: ident}
	}
	return nil
}

// sortedKeys is the module's documented key-iteration order for
// map-typed specs: Go maps iterate randomly, so placeholder and
// argument order are fixed by sorting.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Where is the filter half of an update, delete, or select spec.
// Either Eq or Clause may be set, not both. Eq entries are AND-joined
// as "col = ?" in sorted key order; a nil value compiles to
// "col IS NULL" and contributes no argument. Clause is used verbatim
// with Args appended in order; its correctness is the caller's. Args
// without a Clause is malformed: equality entries carry their own
// values.
type Where struct {
	Eq     map[string]any
	Clause string
	Args   []any
}

// compile returns the clause body (no "WHERE" keyword) and arguments.
func (w Where) compile(c *buildConfig) (string, []any, error) {
	if w.Clause != "" {
		if len(w.Eq) > 0 {
			return "", nil, fmt.Errorf("%w: where has both equality map and raw clause", ErrMalformedSpec)
		}
		return w.Clause, w.Args, nil
	}
	if len(w.Args) > 0 {
		return "", nil, fmt.Errorf("%w: where args require a raw clause", ErrMalformedSpec)
	}
	keys := sortedKeys(w.Eq)
	for _, k := range keys {
		if err := checkIdent(k); err != nil {
			return "", nil, err
		}
	}
	var b strings.Builder
	var args []any
	for i, k := range keys {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.WriteString(c.column(k))
		if w.Eq[k] == nil {
			b.WriteString(" IS NULL")
		} else {
			b.WriteString(" = ?")
			args = append(args, w.Eq[k])
		}
	}
	return b.String(), args, nil
}

// Insert compiles a single-row insert. values must be non-empty;
// columns appear in sorted key order with one placeholder and one
// argument each.
func Insert(table string, values map[string]any, opts ...BuildOption) (Statement, error) {
	c := newBuildConfig(opts)
	if len(values) == 0 {
		return Statement{}, fmt.Errorf("%w: insert into %q requires at least one column", ErrMalformedSpec, table)
	}
	if err := checkIdent(table); err != nil {
		return Statement{}, err
	}
	keys := sortedKeys(values)
	for _, k := range keys {
		if err := checkIdent(k); err != nil {
			return Statement{}, err
		}
	}

	cols := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		cols[i] = c.column(k)
		args[i] = values[k]
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		c.table(table), strings.Join(cols, ", "), placeholders(len(keys)))
	return Statement{SQL: sql, Args: args, table: table}, nil
}

// InsertMulti compiles a multi-row insert over an ordered column list.
// Every row must match the column list in length. Default mode emits
// one value group per row with arguments flattened row-major; with
// Batched, the SQL holds a single value group and arguments are grouped
// per row in Statement.Batch.
func InsertMulti(table string, cols []string, rows [][]any, opts ...BuildOption) (Statement, error) {
	c := newBuildConfig(opts)
	if len(cols) == 0 {
		return Statement{}, fmt.Errorf("%w: multi-row insert into %q requires columns", ErrMalformedSpec, table)
	}
	if len(rows) == 0 {
		return Statement{}, fmt.Errorf("%w: multi-row insert into %q requires rows", ErrMalformedSpec, table)
	}
	for i, row := range rows {
		if len(row) != len(cols) {
			return Statement{}, fmt.Errorf("%w: row %d has %d values for %d columns", ErrMalformedSpec, i, len(row), len(cols))
		}
	}
	if err := checkIdent(table); err != nil {
		return Statement{}, err
	}
	for _, col := range cols {
		if err := checkIdent(col); err != nil {
			return Statement{}, err
		}
	}

	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = c.column(col)
	}
	group := "(" + placeholders(len(cols)) + ")"
	head := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", c.table(table), strings.Join(quoted, ", "))

	if c.batched {
		batch := make([][]any, len(rows))
		for i, row := range rows {
			batch[i] = append([]any(nil), row...)
		}
		return Statement{SQL: head + group, Batch: batch, table: table}, nil
	}

	groups := make([]string, len(rows))
	args := make([]any, 0, len(rows)*len(cols))
	for i, row := range rows {
		groups[i] = group
		args = append(args, row...)
	}
	return Statement{SQL: head + strings.Join(groups, ", "), Args: args, table: table}, nil
}

// Update compiles an update. set must be non-empty; SET arguments come
// before WHERE arguments, matching placeholder order.
func Update(table string, set map[string]any, where Where, opts ...BuildOption) (Statement, error) {
	c := newBuildConfig(opts)
	if len(set) == 0 {
		return Statement{}, fmt.Errorf("%w: update of %q requires at least one assignment", ErrMalformedSpec, table)
	}
	if err := checkIdent(table); err != nil {
		return Statement{}, err
	}
	keys := sortedKeys(set)
	for _, k := range keys {
		if err := checkIdent(k); err != nil {
			return Statement{}, err
		}
	}
	cond, whereArgs, err := where.compile(c)
	if err != nil {
		return Statement{}, err
	}

	var b strings.Builder
	args := make([]any, 0, len(keys)+len(whereArgs))
	b.WriteString("UPDATE ")
	b.WriteString(c.table(table))
	b.WriteString(" SET ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.column(k))
		b.WriteString(" = ?")
		args = append(args, set[k])
	}
	if cond != "" {
		b.WriteString(" WHERE ")
		b.WriteString(cond)
		args = append(args, whereArgs...)
	}
	return Statement{SQL: b.String(), Args: args, table: table}, nil
}

// Delete compiles a delete. An empty Where deletes every row; that is
// the caller's statement to make, not an error.
func Delete(table string, where Where, opts ...BuildOption) (Statement, error) {
	c := newBuildConfig(opts)
	if err := checkIdent(table); err != nil {
		return Statement{}, err
	}
	cond, whereArgs, err := where.compile(c)
	if err != nil {
		return Statement{}, err
	}
	sql := "DELETE FROM " + c.table(table)
	if cond != "" {
		sql += " WHERE " + cond
	}
	return Statement{SQL: sql, Args: whereArgs, table: table}, nil
}

// Col is one projected column of a select. Exactly one of Name and Expr
// is set: Name is an identifier, safety-checked and run through the
// column entity transform; Expr is caller-written expression text,
// emitted verbatim and never transformed. Alias, when present, is an
// identifier in both cases and is transformed.
type Col struct {
	Name  string
	Expr  string
	Alias string
}

// Order is one ordering term. Dir is "", "asc", or "desc",
// case-insensitive; anything else is an error.
type Order struct {
	Col string
	Dir string
}

// Page selects exactly one pagination dialect:
//
//   - Top: prefix row limiting, "SELECT TOP ? ..."; its argument comes
//     first in the statement since its placeholder precedes the row body.
//   - Limit (with optional Offset): appends "LIMIT ?" or
//     "LIMIT ? OFFSET ?" with trailing arguments in that order.
//   - Fetch (with optional Offset, defaulting to 0): appends
//     "OFFSET ? ROWS FETCH NEXT ? ROWS ONLY" with trailing arguments
//     offset first, fetch second.
//
// Top combined with Limit or Fetch, Limit combined with Fetch, or
// Offset alone are conflicting combinations and fail compilation.
type Page struct {
	Top    *int
	Limit  *int
	Offset *int
	Fetch  *int
}

// SelectSpec describes a select prior to compilation. A nil Columns
// projects "*". Suffix is trailing text appended verbatim with no
// validation; the caller bears correctness responsibility for it.
type SelectSpec struct {
	Table   string
	Columns []Col
	Where   Where
	OrderBy []Order
	Page    *Page
	Suffix  string
}

// Select compiles a select spec. All validation, including identifier
// safety and pagination-conflict checks, completes before any SQL text
// is produced.
func Select(spec SelectSpec, opts ...BuildOption) (Statement, error) {
	c := newBuildConfig(opts)
	if err := checkIdent(spec.Table); err != nil {
		return Statement{}, err
	}
	for _, col := range spec.Columns {
		if (col.Name == "") == (col.Expr == "") {
			return Statement{}, fmt.Errorf("%w: select column needs exactly one of Name or Expr", ErrMalformedSpec)
		}
		if col.Name != "" {
			if err := checkIdent(col.Name); err != nil {
				return Statement{}, err
			}
		}
		if col.Alias != "" {
			if err := checkIdent(col.Alias); err != nil {
				return Statement{}, err
			}
		}
	}
	for _, o := range spec.OrderBy {
		if err := checkIdent(o.Col); err != nil {
			return Statement{}, err
		}
		if _, err := orderDir(o.Dir); err != nil {
			return Statement{}, err
		}
	}
	if err := checkPage(spec.Page); err != nil {
		return Statement{}, err
	}
	cond, whereArgs, err := spec.Where.compile(c)
	if err != nil {
		return Statement{}, err
	}

	var b strings.Builder
	var args []any
	b.WriteString("SELECT ")
	if spec.Page != nil && spec.Page.Top != nil {
		b.WriteString("TOP ? ")
		args = append(args, *spec.Page.Top)
	}
	if len(spec.Columns) == 0 {
		b.WriteString("*")
	} else {
		for i, col := range spec.Columns {
			if i > 0 {
				b.WriteString(", ")
			}
			if col.Name != "" {
				b.WriteString(c.column(col.Name))
			} else {
				b.WriteString(col.Expr)
			}
			if col.Alias != "" {
				b.WriteString(" AS ")
				b.WriteString(c.column(col.Alias))
			}
		}
	}
	b.WriteString(" FROM ")
	b.WriteString(c.table(spec.Table))
	if cond != "" {
		b.WriteString(" WHERE ")
		b.WriteString(cond)
		args = append(args, whereArgs...)
	}
	for i, o := range spec.OrderBy {
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(c.column(o.Col))
		dir, _ := orderDir(o.Dir)
		if dir != "" {
			b.WriteString(" ")
			b.WriteString(dir)
		}
	}
	if p := spec.Page; p != nil {
		switch {
		case p.Limit != nil:
			b.WriteString(" LIMIT ?")
			args = append(args, *p.Limit)
			if p.Offset != nil {
				b.WriteString(" OFFSET ?")
				args = append(args, *p.Offset)
			}
		case p.Fetch != nil:
			offset := 0
			if p.Offset != nil {
				offset = *p.Offset
			}
			b.WriteString(" OFFSET ? ROWS FETCH NEXT ? ROWS ONLY")
			args = append(args, offset, *p.Fetch)
		}
	}
	if spec.Suffix != "" {
		b.WriteString(" ")
		b.WriteString(spec.Suffix)
	}
	return Statement{SQL: b.String(), Args: args, table: spec.Table}, nil
}

func orderDir(dir string) (string, error) {
	switch strings.ToLower(dir) {
	case "":
		return "", nil
	case "asc":
		return "ASC", nil
	case "desc":
		return "DESC", nil
	}
	return "", fmt.Errorf("%w: unrecognized order direction %q", ErrMalformedSpec, dir)
}

func checkPage(p *Page) error {
	if p == nil {
		return nil
	}
	switch {
	case p.Top != nil && (p.Limit != nil || p.Offset != nil || p.Fetch != nil):
		return fmt.Errorf("%w: TOP cannot combine with LIMIT/OFFSET/FETCH", ErrMalformedSpec)
	case p.Limit != nil && p.Fetch != nil:
		return fmt.Errorf("%w: LIMIT and FETCH are separate pagination dialects", ErrMalformedSpec)
	case p.Top == nil && p.Limit == nil && p.Fetch == nil && p.Offset != nil:
		return fmt.Errorf("%w: OFFSET requires LIMIT or FETCH", ErrMalformedSpec)
	}
	return nil
}

func placeholders(n int) string {
	if n == 1 {
		return "?"
	}
	var b strings.Builder
	b.Grow(3*n - 2)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('?')
	}
	return b.String()
}
