package db

import (
	"strconv"
	"strings"
)

type Dialect struct {
	Name string
	// numbered is true for drivers that expect $1, $2, ... placeholders.
	numbered bool
}

var (
	SQLite   = Dialect{Name: DriverSQLite}
	Postgres = Dialect{Name: DriverPostgres, numbered: true}
)

// Rebind rewrites `?` placeholders for the dialect. Question marks inside
// single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if !d.numbered || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
