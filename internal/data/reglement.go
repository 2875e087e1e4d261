package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ansel1/merry"
	"github.com/fpawel/plu/internal/schema"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound   = merry.New("reglement not found")
	ErrConstraint = merry.New("constraint violation")
)

// Key is the unique triple of plu_reglements.
type Key struct {
	IDTerritoire string `db:"idterritoire" yaml:"idterritoire"`
	Zone         string `db:"zone" yaml:"zone"`
	Section      string `db:"section" yaml:"section"`
}

func (k Key) String() string {
	return fmt.Sprintf("(%s, %s, %s)", k.IDTerritoire, k.Zone, k.Section)
}

// Reglement is a row of plu_reglements: the maximum building height and
// footprint a local urban plan allows for one zone section of a territory.
type Reglement struct {
	Key       `yaml:",inline"`
	CodCom    string    `db:"codcom" yaml:"codcom"`
	Annee     int       `db:"annee" yaml:"annee"`
	Hauteur   Decimal   `db:"hauteur" yaml:"hauteur"`
	Emprise   Decimal   `db:"emprise" yaml:"emprise"`
	CreatedAt time.Time `db:"created_at" yaml:"-"`
	UpdatedAt time.Time `db:"updated_at" yaml:"-"`
}

func Insert(ctx context.Context, db sqlx.ExtContext, r *Reglement) error {
	r.CreatedAt = now()
	r.UpdatedAt = r.CreatedAt
	_, err := sqlx.NamedExecContext(ctx, db, `
INSERT INTO plu_reglements (idterritoire, codcom, annee, zone, section, hauteur, emprise, created_at, updated_at)
VALUES (:idterritoire, :codcom, :annee, :zone, :section, :hauteur, :emprise, :created_at, :updated_at)`, r)
	return classify(db, err, r.Key)
}

// InsertAll inserts rs in one transaction: either every row is stored or none.
func InsertAll(ctx context.Context, db *sqlx.DB, rs []Reglement) error {
	return WithTx(ctx, db, func(tx *sqlx.Tx) error {
		for i := range rs {
			if err := Insert(ctx, tx, &rs[i]); err != nil {
				return merry.Prependf(err, "row %d", i+1)
			}
		}
		return nil
	})
}

func Update(ctx context.Context, db sqlx.ExtContext, r *Reglement) error {
	r.UpdatedAt = now()
	res, err := sqlx.NamedExecContext(ctx, db, `
UPDATE plu_reglements
 SET codcom=:codcom,
     annee=:annee,
     hauteur=:hauteur,
     emprise=:emprise,
     updated_at=:updated_at
WHERE idterritoire=:idterritoire AND zone=:zone AND section=:section`, r)
	if err != nil {
		return classify(db, err, r.Key)
	}
	return expectOneRow(res, r.Key)
}

func Get(ctx context.Context, db sqlx.ExtContext, k Key) (Reglement, error) {
	var r Reglement
	err := sqlx.GetContext(ctx, db, &r, db.Rebind(`
SELECT * FROM plu_reglements
WHERE idterritoire=? AND zone=? AND section=?`), k.IDTerritoire, k.Zone, k.Section)
	if err == sql.ErrNoRows {
		return Reglement{}, ErrNotFound.Here().Append(k.String())
	}
	if err != nil {
		return Reglement{}, merry.Wrap(err)
	}
	return r, nil
}

func ListByTerritoire(ctx context.Context, db sqlx.ExtContext, idTerritoire string) (rs []Reglement, err error) {
	err = sqlx.SelectContext(ctx, db, &rs, db.Rebind(`
SELECT * FROM plu_reglements
WHERE idterritoire=?
ORDER BY zone, section`), idTerritoire)
	return rs, merry.Wrap(err)
}

func Delete(ctx context.Context, db sqlx.ExtContext, k Key) error {
	res, err := db.ExecContext(ctx, db.Rebind(`
DELETE FROM plu_reglements
WHERE idterritoire=? AND zone=? AND section=?`), k.IDTerritoire, k.Zone, k.Section)
	if err != nil {
		return merry.Wrap(err)
	}
	return expectOneRow(res, k)
}

func expectOneRow(res sql.Result, k Key) error {
	n, err := res.RowsAffected()
	if err != nil {
		return merry.Wrap(err)
	}
	if n == 0 {
		return ErrNotFound.Here().Append(k.String())
	}
	if n != 1 {
		return merry.Errorf("expected one row affected, got %d: %s", n, k)
	}
	return nil
}

// classify maps driver errors to ErrConflict for duplicate keys and to
// ErrConstraint for rejected values.
func classify(db sqlx.ExtContext, err error, k Key) error {
	if err == nil {
		return nil
	}
	d, errDialect := schema.DialectByName(db.DriverName())
	if errDialect != nil {
		return merry.Wrap(err)
	}
	switch {
	case d.IsUniqueViolation(err):
		return schema.ErrConflict.Here().
			Appendf("duplicate reglement %s: %v", k, err).
			WithCause(err)
	case d.IsConstraintViolation(err):
		return ErrConstraint.Here().
			Appendf("reglement %s: %v", k, err).
			WithCause(err)
	}
	return merry.Wrap(err)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
