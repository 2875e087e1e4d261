package migrate

import (
	"context"
	"sort"
	"time"

	"github.com/ansel1/merry"
	"github.com/fpawel/plu/internal/data"
	"github.com/fpawel/plu/internal/schema"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/powerman/structlog"
)

// Runner applies and reverts schema changes, keeping track of the applied
// ones in a ledger table. Every change runs in its own transaction together
// with its ledger row, after taking the dialect's schema lock.
type Runner struct {
	db      *sqlx.DB
	dialect schema.Dialect
	log     *structlog.Logger
	ledger  ledger
	changes []schema.Change
	runID   string
}

type Config struct {
	LedgerTable string
	Changes     []schema.Change
}

// Status of a known change.
type Status struct {
	Change    schema.Change
	Applied   bool
	AppliedAt time.Time
	RunID     string
}

func NewRunner(db *sqlx.DB, log *structlog.Logger, c Config) (*Runner, error) {
	d, err := schema.DialectByName(db.DriverName())
	if err != nil {
		return nil, err
	}
	if c.LedgerTable == "" {
		c.LedgerTable = DefaultLedgerTable
	}
	changes := append([]schema.Change(nil), c.Changes...)
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Version < changes[j].Version
	})
	for i := 1; i < len(changes); i++ {
		if changes[i].Version == changes[i-1].Version {
			return nil, merry.Errorf("duplicate change version %s", changes[i].Version)
		}
	}
	runID := uuid.New().String()
	return &Runner{
		db:      db,
		dialect: d,
		log:     log.New("run_id", runID),
		ledger:  ledger{table: c.LedgerTable, dialect: d},
		changes: changes,
		runID:   runID,
	}, nil
}

// Up applies the pending changes in version order. A change recorded in the
// ledger is skipped, so running Up twice is a no-op the second time.
func (r *Runner) Up(ctx context.Context) error {
	for _, c := range r.changes {
		log := r.log.New("version", c.Version, "change", c.Name)
		var applied bool
		err := r.inTx(ctx, func(tx *sqlx.Tx) error {
			_, found, err := r.ledger.get(ctx, tx, c.Version)
			if err != nil || found {
				return err
			}
			if err := c.Apply(ctx, tx, r.dialect); err != nil {
				return err
			}
			applied = true
			return r.ledger.insert(ctx, tx, Record{
				Version:   c.Version,
				Name:      c.Name,
				AppliedAt: time.Now().UTC().Truncate(time.Microsecond),
				RunID:     r.runID,
			})
		})
		if err != nil {
			return merry.Prependf(err, "apply %s", c)
		}
		if applied {
			log.Info("applied")
		} else {
			log.Debug("already applied")
		}
	}
	return nil
}

// Down reverts the most recently applied change and removes it from the
// ledger. With nothing applied it returns schema.ErrMissing.
func (r *Runner) Down(ctx context.Context) error {
	var reverted schema.Change
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		records, err := r.ledger.list(ctx, tx)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return schema.ErrMissing.Here().Append("no applied change to revert")
		}
		last := records[len(records)-1]
		c, ok := r.change(last.Version)
		if !ok {
			return merry.Errorf("ledger %q: unknown change %s_%s", r.ledger.table, last.Version, last.Name)
		}
		if err := c.Revert(ctx, tx, r.dialect); err != nil {
			return merry.Prependf(err, "revert %s", c)
		}
		reverted = c
		return r.ledger.delete(ctx, tx, c.Version)
	})
	if err != nil {
		return err
	}
	r.log.Info("reverted", "version", reverted.Version, "change", reverted.Name)
	return nil
}

// Status reports every known change. It does not create the ledger: a
// database without one has nothing applied.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	var xs []Status
	err := data.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		records, err := r.ledger.listIfExists(ctx, tx)
		if err != nil {
			return err
		}
		applied := make(map[string]Record, len(records))
		for _, rec := range records {
			applied[rec.Version] = rec
		}
		for _, c := range r.changes {
			rec, ok := applied[c.Version]
			xs = append(xs, Status{
				Change:    c,
				Applied:   ok,
				AppliedAt: rec.AppliedAt,
				RunID:     rec.RunID,
			})
		}
		return nil
	})
	return xs, err
}

func (r *Runner) RunID() string { return r.runID }

func (r *Runner) change(version string) (schema.Change, bool) {
	for _, c := range r.changes {
		if c.Version == version {
			return c, true
		}
	}
	return schema.Change{}, false
}

func (r *Runner) inTx(ctx context.Context, work func(tx *sqlx.Tx) error) error {
	return data.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if q := r.dialect.LockQuery(); q != "" {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return merry.Append(err, "acquire schema lock")
			}
		}
		if err := r.ledger.ensure(ctx, tx); err != nil {
			return err
		}
		return work(tx)
	})
}
