package manga

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"mangashelf/pkg/utils"
)

// Dialect captures what differs between the SQL backends. Both must order
// and match exactly like the in-memory engine.
type Dialect struct {
	Name        string
	placeholder squirrel.PlaceholderFormat
	lower       string // unicode lower-case function
	contains    string // substring predicate, %s is the lowered column
	collate     string
	seq         string // insertion order column
	encodeTime  func(time.Time) any
}

// SQLite relies on go_lower and MANGA_LOCALE being registered on every
// connection (see database.SQLiteDriverName).
var SQLite = Dialect{
	Name:        "sqlite3",
	placeholder: squirrel.Question,
	lower:       "go_lower",
	contains:    "instr(%s, ?) > 0",
	collate:     utils.CollationName,
	seq:         "rowid",
	encodeTime:  func(t time.Time) any { return t.UTC().UnixNano() },
}

var Postgres = Dialect{
	Name:        "postgres",
	placeholder: squirrel.Dollar,
	lower:       "LOWER",
	contains:    "strpos(%s, ?) > 0",
	collate:     `"de-x-icu"`,
	seq:         "seq",
	encodeTime:  func(t time.Time) any { return t.UTC() },
}

// DialectByName maps a store backend name to its dialect.
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("unknown sql dialect %q", name)
}

func (d Dialect) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.placeholder)
}

// containsExpr matches term as a case-insensitive substring of column.
func (d Dialect) containsExpr(column, term string) squirrel.Sqlizer {
	lowered := fmt.Sprintf("%s(%s)", d.lower, column)
	return squirrel.Expr(fmt.Sprintf(d.contains, lowered), utils.FoldCase(term))
}

func (d Dialect) orderBy(f sortField, direction string) string {
	dir := "ASC"
	if direction == SortDesc {
		dir = "DESC"
	}
	if f.kind == kindString {
		return fmt.Sprintf("%s COLLATE %s %s NULLS LAST", f.column, d.collate, dir)
	}
	return fmt.Sprintf("%s %s NULLS LAST", f.column, dir)
}

// timeValue scans either unix nanoseconds (SQLite) or a native timestamp.
type timeValue struct {
	t *time.Time
}

func (v timeValue) Scan(src any) error {
	switch x := src.(type) {
	case int64:
		*v.t = time.Unix(0, x).UTC()
	case time.Time:
		*v.t = x.UTC()
	case string:
		return v.parse(x)
	case []byte:
		return v.parse(string(x))
	case nil:
		*v.t = time.Time{}
	default:
		return fmt.Errorf("scan time: unsupported type %T", src)
	}
	return nil
}

func (v timeValue) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("scan time: %w", err)
	}
	*v.t = t.UTC()
	return nil
}
