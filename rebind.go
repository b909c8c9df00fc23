package sqlkit

import (
	"strconv"
	"strings"
)

// Placeholder selects the positional parameter style for a target
// database. Compiled statements always emit "?"; Rebind rewrites for
// drivers that use a different style.
//
//   - PlaceholderQuestion → "?"          (MySQL, SQLite, DuckDB)
//   - PlaceholderDollar   → "$1, $2, …"  (PostgreSQL)
//   - PlaceholderAtP      → "@p1, @p2…"  (SQL Server)
//   - PlaceholderColonNum → ":1, :2, …"  (Oracle)
type Placeholder int

const (
	PlaceholderQuestion Placeholder = iota
	PlaceholderDollar
	PlaceholderAtP
	PlaceholderColonNum
)

// PlaceholderFor picks a Placeholder from a driver name string.
func PlaceholderFor(driverName string) Placeholder {
	switch strings.ToLower(driverName) {
	case "pgx", "postgres", "postgresql", "lib/pq", "pg":
		return PlaceholderDollar
	case "sqlserver", "mssql":
		return PlaceholderAtP
	case "godror", "oracle", "goracle":
		return PlaceholderColonNum
	default:
		return PlaceholderQuestion
	}
}

// Rebind returns a copy of the statement with "?" placeholders
// rewritten to the given style. Question marks inside quoted strings,
// quoted identifiers, and comments are left untouched. Arguments are
// unchanged; their order already matches placeholder order.
func (s Statement) Rebind(ph Placeholder) Statement {
	s.SQL = rewritePlaceholders(s.SQL, ph)
	return s
}

func rewritePlaceholders(query string, ph Placeholder) string {
	if ph == PlaceholderQuestion {
		return query
	}
	out := make([]byte, 0, len(query)+16)
	i, arg := 0, 1

	for i < len(query) {
		switch query[i] {
		case '\'', '"', '`':
			j := skipQuoted(query, i+1, query[i])
			out = append(out, query[i:j]...)
			i = j
			continue
		case '-':
			if strings.HasPrefix(query[i:], "--") {
				j := skipLineComment(query, i+2)
				out = append(out, query[i:j]...)
				i = j
				continue
			}
		case '/':
			if strings.HasPrefix(query[i:], "/*") {
				j := skipBlockComment(query, i+2)
				out = append(out, query[i:j]...)
				i = j
				continue
			}
		case '?':
			switch ph {
			case PlaceholderDollar:
				out = append(out, '$')
				out = strconv.AppendInt(out, int64(arg), 10)
			case PlaceholderAtP:
				out = append(out, '@', 'p')
				out = strconv.AppendInt(out, int64(arg), 10)
			case PlaceholderColonNum:
				out = append(out, ':')
				out = strconv.AppendInt(out, int64(arg), 10)
			}
			arg++
			i++
			continue
		}
		out = append(out, query[i])
		i++
	}
	return string(out)
}

// skipQuoted scans past a quoted region opened with q, honoring doubled
// quotes as escapes. An unterminated region runs to end of string; the
// driver will reject the SQL, not us.
func skipQuoted(s string, i int, q byte) int {
	for i < len(s) {
		if s[i] == q {
			if i+1 < len(s) && s[i+1] == q {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return i
}

func skipLineComment(s string, i int) int {
	for i < len(s) {
		if s[i] == '\n' {
			return i + 1
		}
		i++
	}
	return i
}

func skipBlockComment(s string, i int) int {
	for i < len(s)-1 {
		if s[i] == '*' && s[i+1] == '/' {
			return i + 2
		}
		i++
	}
	return len(s)
}
