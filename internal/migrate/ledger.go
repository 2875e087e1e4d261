package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ansel1/merry"
	"github.com/fpawel/plu/internal/schema"
	"github.com/jmoiron/sqlx"
)

const DefaultLedgerTable = "schema_migrations"

// Record is a ledger row: one applied change.
type Record struct {
	Version   string    `db:"version"`
	Name      string    `db:"name"`
	AppliedAt time.Time `db:"applied_at"`
	RunID     string    `db:"run_id"`
}

// ledger persists which changes are applied. Its table lives in the
// same database as the changes and is written in the same transaction.
type ledger struct {
	table   string
	dialect schema.Dialect
}

func (l ledger) ensure(ctx context.Context, tx sqlx.ExtContext) error {
	q := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s
(
    version    VARCHAR(32)  PRIMARY KEY NOT NULL,
    name       VARCHAR(255) NOT NULL,
    applied_at TIMESTAMP    NOT NULL,
    run_id     VARCHAR(36)  NOT NULL
)`, l.dialect.Quote(l.table))
	_, err := tx.ExecContext(ctx, q)
	return merry.Appendf(err, "create ledger %q", l.table)
}

func (l ledger) get(ctx context.Context, tx sqlx.ExtContext, version string) (Record, bool, error) {
	var r Record
	err := sqlx.GetContext(ctx, tx, &r, tx.Rebind(fmt.Sprintf(
		`SELECT * FROM %s WHERE version=?`, l.dialect.Quote(l.table))), version)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, merry.Appendf(err, "read ledger %q", l.table)
	}
	return r, true, nil
}

func (l ledger) list(ctx context.Context, tx sqlx.ExtContext) (rs []Record, err error) {
	err = sqlx.SelectContext(ctx, tx, &rs, fmt.Sprintf(
		`SELECT * FROM %s ORDER BY version`, l.dialect.Quote(l.table)))
	return rs, merry.Appendf(err, "read ledger %q", l.table)
}

func (l ledger) listIfExists(ctx context.Context, tx sqlx.ExtContext) ([]Record, error) {
	exists, err := schema.TableExists(ctx, tx, l.dialect, l.table)
	if err != nil || !exists {
		return nil, err
	}
	return l.list(ctx, tx)
}

func (l ledger) insert(ctx context.Context, tx sqlx.ExtContext, r Record) error {
	_, err := sqlx.NamedExecContext(ctx, tx, fmt.Sprintf(`
INSERT INTO %s (version, name, applied_at, run_id)
VALUES (:version, :name, :applied_at, :run_id)`, l.dialect.Quote(l.table)), r)
	return merry.Appendf(err, "record %s_%s in ledger", r.Version, r.Name)
}

func (l ledger) delete(ctx context.Context, tx sqlx.ExtContext, version string) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(fmt.Sprintf(
		`DELETE FROM %s WHERE version=?`, l.dialect.Quote(l.table))), version)
	return merry.Appendf(err, "remove %s from ledger", version)
}
