package sqlkit

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert_PlaceholdersMatchArgs(t *testing.T) {
	stmt, err := Insert("person", map[string]any{
		"name": "alice",
		"age":  30,
		"city": "oslo",
	})
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO person (age, city, name) VALUES (?, ?, ?)", stmt.SQL)
	assert.Equal(t, []any{30, "oslo", "alice"}, stmt.Args)
	assert.Equal(t, strings.Count(stmt.SQL, "?"), len(stmt.Args))
}

func TestInsert_EmptyValues(t *testing.T) {
	_, err := Insert("person", nil)
	require.ErrorIs(t, err, ErrMalformedSpec)
}

func TestInsert_EntityTransforms(t *testing.T) {
	quote := func(s string) string { return `[` + s + `]` }
	stmt, err := Insert("person", map[string]any{"name": "bob"},
		WithTableEntity(strings.ToUpper), WithColumnEntity(quote))
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO PERSON ([name]) VALUES (?)", stmt.SQL)
}

func TestInsertMulti_NonBatched(t *testing.T) {
	stmt, err := InsertMulti("t", []string{"a", "b"}, [][]any{{1, 2}, {3, 4}})
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO t (a, b) VALUES (?, ?), (?, ?)", stmt.SQL)
	assert.Equal(t, []any{1, 2, 3, 4}, stmt.Args)
	assert.Nil(t, stmt.Batch)
}

func TestInsertMulti_Batched(t *testing.T) {
	stmt, err := InsertMulti("t", []string{"a", "b"}, [][]any{{1, 2}, {3, 4}}, Batched())
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO t (a, b) VALUES (?, ?)", stmt.SQL)
	assert.Nil(t, stmt.Args)
	assert.Equal(t, [][]any{{1, 2}, {3, 4}}, stmt.Batch)
}

func TestInsertMulti_ShapeErrors(t *testing.T) {
	_, err := InsertMulti("t", nil, [][]any{{1}})
	assert.ErrorIs(t, err, ErrMalformedSpec)

	_, err = InsertMulti("t", []string{"a"}, nil)
	assert.ErrorIs(t, err, ErrMalformedSpec)

	_, err = InsertMulti("t", []string{"a", "b"}, [][]any{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrMalformedSpec)
}

func TestWhere_EqualityAndNull(t *testing.T) {
	stmt, err := Delete("t", Where{Eq: map[string]any{"id": 5}})
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM t WHERE id = ?", stmt.SQL)
	assert.Equal(t, []any{5}, stmt.Args)

	stmt, err = Delete("t", Where{Eq: map[string]any{"id": nil}})
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM t WHERE id IS NULL", stmt.SQL)
	assert.Empty(t, stmt.Args)

	stmt, err = Delete("t", Where{Eq: map[string]any{"a": 1, "b": nil, "c": 3}})
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM t WHERE a = ? AND b IS NULL AND c = ?", stmt.SQL)
	assert.Equal(t, []any{1, 3}, stmt.Args)
}

func TestWhere_RawClause(t *testing.T) {
	stmt, err := Delete("t", Where{Clause: "age > ? AND age < ?", Args: []any{10, 20}})
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM t WHERE age > ? AND age < ?", stmt.SQL)
	assert.Equal(t, []any{10, 20}, stmt.Args)
}

func TestWhere_BothForms(t *testing.T) {
	_, err := Delete("t", Where{Eq: map[string]any{"id": 1}, Clause: "id = ?", Args: []any{1}})
	require.ErrorIs(t, err, ErrMalformedSpec)
}

func TestWhere_ArgsWithoutClause(t *testing.T) {
	// Args belong to a raw clause; without one they would vanish.
	_, err := Delete("t", Where{Eq: map[string]any{"id": 1}, Args: []any{2}})
	require.ErrorIs(t, err, ErrMalformedSpec)

	_, err = Delete("t", Where{Args: []any{2}})
	require.ErrorIs(t, err, ErrMalformedSpec)
}

func TestUpdate_SetThenWhereArgs(t *testing.T) {
	stmt, err := Update("person",
		map[string]any{"name": "carol", "age": 31},
		Where{Eq: map[string]any{"id": 7}})
	require.NoError(t, err)

	assert.Equal(t, "UPDATE person SET age = ?, name = ? WHERE id = ?", stmt.SQL)
	assert.Equal(t, []any{31, "carol", 7}, stmt.Args)
}

func TestUpdate_EmptySet(t *testing.T) {
	_, err := Update("person", nil, Where{})
	require.ErrorIs(t, err, ErrMalformedSpec)
}

func TestUnsafeIdentifier_AllPositions(t *testing.T) {
	bad := "x; DROP TABLE users"

	cases := []struct {
		name string
		run  func() error
	}{
		{"insert table", func() error { _, err := Insert(bad, map[string]any{"a": 1}); return err }},
		{"insert column", func() error { _, err := Insert("t", map[string]any{bad: 1}); return err }},
		{"multi column", func() error { _, err := InsertMulti("t", []string{bad}, [][]any{{1}}); return err }},
		{"update set", func() error { _, err := Update("t", map[string]any{bad: 1}, Where{}); return err }},
		{"where column", func() error { _, err := Delete("t", Where{Eq: map[string]any{bad: 1}}); return err }},
		{"select column", func() error {
			_, err := Select(SelectSpec{Table: "t", Columns: []Col{{Name: bad}}})
			return err
		}},
		{"select alias", func() error {
			_, err := Select(SelectSpec{Table: "t", Columns: []Col{{Name: "a", Alias: bad}}})
			return err
		}},
		{"order column", func() error {
			_, err := Select(SelectSpec{Table: "t", OrderBy: []Order{{Col: bad}}})
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			var uerr *UnsafeIdentifierError
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, bad, uerr.Ident)
		})
	}
}

func TestSelect_Star(t *testing.T) {
	stmt, err := Select(SelectSpec{Table: "person"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM person", stmt.SQL)
	assert.Empty(t, stmt.Args)
	assert.Equal(t, "person", stmt.Table())
}

func TestSelect_ProjectionAndAliases(t *testing.T) {
	stmt, err := Select(SelectSpec{
		Table: "person",
		Columns: []Col{
			{Name: "id"},
			{Name: "name", Alias: "full_name"},
			{Expr: "count(*)", Alias: "total"},
		},
	}, WithColumnEntity(strings.ToUpper))
	require.NoError(t, err)

	// Expression text is never transformed; its alias still is.
	assert.Equal(t, "SELECT ID, NAME AS FULL_NAME, count(*) AS TOTAL FROM person", stmt.SQL)
}

func TestSelect_ColumnNeedsNameOrExpr(t *testing.T) {
	_, err := Select(SelectSpec{Table: "t", Columns: []Col{{}}})
	assert.ErrorIs(t, err, ErrMalformedSpec)

	_, err = Select(SelectSpec{Table: "t", Columns: []Col{{Name: "a", Expr: "b"}}})
	assert.ErrorIs(t, err, ErrMalformedSpec)
}

func TestSelect_OrderBy(t *testing.T) {
	stmt, err := Select(SelectSpec{
		Table:   "t",
		OrderBy: []Order{{Col: "a"}, {Col: "b", Dir: "DESC"}, {Col: "c", Dir: "asc"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t ORDER BY a, b DESC, c ASC", stmt.SQL)

	_, err = Select(SelectSpec{Table: "t", OrderBy: []Order{{Col: "a", Dir: "sideways"}}})
	require.ErrorIs(t, err, ErrMalformedSpec)
}

func TestSelect_LimitOffset(t *testing.T) {
	limit, offset := 10, 5
	stmt, err := Select(SelectSpec{
		Table: "t",
		Where: Where{Eq: map[string]any{"id": 1}},
		Page:  &Page{Limit: &limit, Offset: &offset},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE id = ? LIMIT ? OFFSET ?", stmt.SQL)
	assert.Equal(t, []any{1, 10, 5}, stmt.Args)
}

func TestSelect_OffsetFetch(t *testing.T) {
	offset, fetch := 5, 10
	stmt, err := Select(SelectSpec{
		Table: "t",
		Page:  &Page{Offset: &offset, Fetch: &fetch},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t OFFSET ? ROWS FETCH NEXT ? ROWS ONLY", stmt.SQL)
	assert.Equal(t, []any{5, 10}, stmt.Args)
}

func TestSelect_TopPrefix(t *testing.T) {
	top := 3
	stmt, err := Select(SelectSpec{
		Table: "t",
		Where: Where{Eq: map[string]any{"id": 1}},
		Page:  &Page{Top: &top},
	})
	require.NoError(t, err)

	// The TOP placeholder precedes the row body, so its argument leads.
	assert.Equal(t, "SELECT TOP ? * FROM t WHERE id = ?", stmt.SQL)
	assert.Equal(t, []any{3, 1}, stmt.Args)
}

func TestSelect_PaginationConflicts(t *testing.T) {
	n := 1
	for name, page := range map[string]*Page{
		"top+limit":    {Top: &n, Limit: &n},
		"top+fetch":    {Top: &n, Fetch: &n},
		"limit+fetch":  {Limit: &n, Fetch: &n},
		"offset alone": {Offset: &n},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Select(SelectSpec{Table: "t", Page: page})
			assert.ErrorIs(t, err, ErrMalformedSpec)
		})
	}
}

func TestSelect_Suffix(t *testing.T) {
	stmt, err := Select(SelectSpec{Table: "t", Suffix: "FOR UPDATE"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t FOR UPDATE", stmt.SQL)
}

func TestValidationPrecedesText(t *testing.T) {
	// A spec with both an unsafe identifier and structural problems must
	// fail without producing any SQL.
	stmt, err := Insert("a;b", map[string]any{"x": 1})
	require.Error(t, err)
	assert.Empty(t, stmt.SQL)
	assert.False(t, errors.Is(err, ErrMalformedSpec))
}

func TestRaw(t *testing.T) {
	stmt := Raw("SELECT 1 WHERE a = ?", 5)
	assert.Equal(t, "SELECT 1 WHERE a = ?", stmt.SQL)
	assert.Equal(t, []any{5}, stmt.Args)
	assert.Empty(t, stmt.Table())
}
