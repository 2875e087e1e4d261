package schema

import (
	"context"

	"github.com/ansel1/merry"
	"github.com/jmoiron/sqlx"
)

// Change is a versioned forward/reverse pair creating and dropping one table.
// Apply and Revert must run inside a transaction owned by the caller: both
// engines supported here have transactional DDL, so a failed Apply leaves
// neither table nor index behind once the caller rolls back.
type Change struct {
	Version string
	Name    string
	Table   Table
}

func (c Change) String() string {
	return c.Version + "_" + c.Name
}

// Apply creates the table and its indexes. An invalid definition, or an
// existing table or index with the same name (ErrConflict), is reported
// before any DDL is executed.
func (c Change) Apply(ctx context.Context, tx sqlx.ExtContext, d Dialect) error {
	if err := c.Table.Validate(); err != nil {
		return merry.Prependf(err, "apply %s", c)
	}
	exists, err := TableExists(ctx, tx, d, c.Table.Name)
	if err != nil {
		return err
	}
	if exists {
		return ErrConflict.Here().Appendf("table %q already exists", c.Table.Name)
	}
	for _, ix := range c.Table.Indexes {
		if exists, err = relationExists(ctx, tx, d.IndexExistsQuery(), ix.Name); err != nil {
			return err
		}
		if exists {
			return ErrConflict.Here().Appendf("index %q already exists", ix.Name)
		}
	}
	if _, err := tx.ExecContext(ctx, CreateTableSQL(d, c.Table)); err != nil {
		return merry.Appendf(err, "create table %q", c.Table.Name)
	}
	for _, ix := range c.Table.Indexes {
		if _, err := tx.ExecContext(ctx, CreateIndexSQL(d, c.Table, ix)); err != nil {
			return merry.Appendf(err, "create index %q", ix.Name)
		}
	}
	return nil
}

// Revert drops the table with its indexes and rows.
func (c Change) Revert(ctx context.Context, tx sqlx.ExtContext, d Dialect) error {
	exists, err := TableExists(ctx, tx, d, c.Table.Name)
	if err != nil {
		return err
	}
	if !exists {
		return ErrMissing.Here().Appendf("table %q does not exist", c.Table.Name)
	}
	if _, err := tx.ExecContext(ctx, DropTableSQL(d, c.Table)); err != nil {
		return merry.Appendf(err, "drop table %q", c.Table.Name)
	}
	return nil
}

func TableExists(ctx context.Context, db sqlx.ExtContext, d Dialect, name string) (bool, error) {
	return relationExists(ctx, db, d.TableExistsQuery(), name)
}

func relationExists(ctx context.Context, db sqlx.ExtContext, query, name string) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, db, &n, db.Rebind(query), name); err != nil {
		return false, merry.Appendf(err, "lookup %q", name)
	}
	return n > 0, nil
}
