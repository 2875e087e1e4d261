package schema

import (
	"strings"

	"github.com/ansel1/merry"
)

// Dialect hides the differences between the supported SQL engines.
type Dialect interface {
	Name() string                           // driver name, as passed to sql.Open
	Quote(ident string) string              // quoted identifier
	ColumnType(c Column) string             // column type in CREATE TABLE
	Checks(table string, c Column) []string // table constraints the engine needs to enforce c's type
	TableExistsQuery() string               // count(*) of tables named ?
	IndexExistsQuery() string               // count(*) of relations named ?
	LockQuery() string                      // transaction scoped lock serializing schema changes, may be empty
	IsUniqueViolation(err error) bool       // duplicate key
	IsConstraintViolation(err error) bool   // NOT NULL, CHECK, width or range violation
}

var dialects = map[string]Dialect{
	"sqlite3":  Sqlite3{},
	"postgres": Postgres{},
}

func DialectByName(name string) (Dialect, error) {
	d, ok := dialects[name]
	if !ok {
		return nil, merry.Errorf("unsupported sql driver %q", name)
	}
	return d, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
