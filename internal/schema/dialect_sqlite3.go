package schema

import (
	"errors"
	"fmt"
	"math"

	"github.com/ansel1/merry"
	"github.com/mattn/go-sqlite3"
)

// Sqlite3 ignores declared widths, so string lengths and decimal ranges
// are enforced with named CHECK constraints.
type Sqlite3 struct{}

func (Sqlite3) Name() string { return "sqlite3" }

func (Sqlite3) Quote(ident string) string { return quoteIdent(ident) }

func (Sqlite3) ColumnType(c Column) string {
	switch c.Kind {
	case String:
		return fmt.Sprintf("VARCHAR(%d)", c.Limit)
	case Integer:
		return "INTEGER"
	case Decimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", c.Precision, c.Scale)
	case Timestamp:
		return "TIMESTAMP"
	}
	panic(fmt.Sprintf("invalid column kind %d", c.Kind))
}

func (d Sqlite3) Checks(table string, c Column) []string {
	name := func(suffix string) string {
		return d.Quote(table + "_" + c.Name + "_" + suffix)
	}
	col := d.Quote(c.Name)
	switch c.Kind {
	case String:
		return []string{
			fmt.Sprintf("CONSTRAINT %s CHECK (length(%s) <= %d)", name("length"), col, c.Limit),
		}
	case Integer:
		return []string{
			fmt.Sprintf("CONSTRAINT %s CHECK (typeof(%s) IN ('integer', 'null'))", name("type"), col),
		}
	case Decimal:
		return []string{
			fmt.Sprintf("CONSTRAINT %s CHECK (typeof(%s) IN ('integer', 'real', 'null') AND abs(round(%s, %d)) < %d)",
				name("range"), col, col, c.Scale, int64(math.Pow10(c.Precision-c.Scale))),
		}
	}
	return nil
}

func (Sqlite3) TableExistsQuery() string {
	return `SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
}

func (Sqlite3) IndexExistsQuery() string {
	return `SELECT count(*) FROM sqlite_master WHERE name = ?`
}

// LockQuery is empty: open the database with _txlock=immediate and a
// single connection, so a schema transaction holds the write lock from BEGIN.
func (Sqlite3) LockQuery() string { return "" }

func (Sqlite3) IsUniqueViolation(err error) bool {
	e, ok := sqliteError(err)
	if !ok {
		return false
	}
	return e.ExtendedCode == sqlite3.ErrConstraintUnique ||
		e.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func (d Sqlite3) IsConstraintViolation(err error) bool {
	e, ok := sqliteError(err)
	if !ok {
		return false
	}
	return e.Code == sqlite3.ErrConstraint && !d.IsUniqueViolation(err)
}

func sqliteError(err error) (sqlite3.Error, bool) {
	var e sqlite3.Error
	if errors.As(err, &e) || errors.As(merry.Unwrap(err), &e) {
		return e, true
	}
	return sqlite3.Error{}, false
}
