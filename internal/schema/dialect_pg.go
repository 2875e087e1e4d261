package schema

import (
	"errors"
	"fmt"

	"github.com/ansel1/merry"
	"github.com/lib/pq"
)

// lockKey identifies the advisory lock held by schema change transactions.
const lockKey = 0x706c75726567

type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) Quote(ident string) string { return quoteIdent(ident) }

func (Postgres) ColumnType(c Column) string {
	switch c.Kind {
	case String:
		return fmt.Sprintf("VARCHAR(%d)", c.Limit)
	case Integer:
		return "INTEGER"
	case Decimal:
		return fmt.Sprintf("NUMERIC(%d,%d)", c.Precision, c.Scale)
	case Timestamp:
		return "TIMESTAMP"
	}
	panic(fmt.Sprintf("invalid column kind %d", c.Kind))
}

// Checks returns nothing: PostgreSQL enforces VARCHAR and NUMERIC bounds.
func (Postgres) Checks(string, Column) []string { return nil }

func (Postgres) TableExistsQuery() string {
	return `
SELECT count(*)
FROM information_schema.tables
WHERE table_schema = current_schema() AND table_name = ?`
}

func (Postgres) IndexExistsQuery() string {
	return `
SELECT count(*)
FROM pg_class c
INNER JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = current_schema() AND c.relname = ?`
}

func (Postgres) LockQuery() string {
	return fmt.Sprintf("SELECT pg_advisory_xact_lock(%d)", lockKey)
}

const (
	pgUniqueViolation      pq.ErrorCode = "23505"
	pgStringTooLong        pq.ErrorCode = "22001"
	pgNumericValueOutRange pq.ErrorCode = "22003"
	pgInvalidTextRepr      pq.ErrorCode = "22P02"
)

func (Postgres) IsUniqueViolation(err error) bool {
	e, ok := pqError(err)
	return ok && e.Code == pgUniqueViolation
}

func (Postgres) IsConstraintViolation(err error) bool {
	e, ok := pqError(err)
	if !ok || e.Code == pgUniqueViolation {
		return false
	}
	switch e.Code {
	case pgStringTooLong, pgNumericValueOutRange, pgInvalidTextRepr:
		return true
	}
	return e.Code.Class() == "23"
}

func pqError(err error) (*pq.Error, bool) {
	var e *pq.Error
	if errors.As(err, &e) || errors.As(merry.Unwrap(err), &e) {
		return e, true
	}
	return nil, false
}
