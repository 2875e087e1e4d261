package main

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/ansel1/merry"
	"github.com/fpawel/plu/internal/data"
	"github.com/fpawel/plu/internal/migrate"
	"github.com/fpawel/plu/internal/schema"
	"github.com/powerman/structlog"
	"github.com/stretchr/testify/require"
)

func TestImportReglements(t *testing.T) {
	ctx := context.Background()
	db, err := data.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	runner, err := migrate.NewRunner(db, structlog.New(), migrate.Config{
		Changes: []schema.Change{schema.CreatePluReglements},
	})
	require.NoError(t, err)
	require.NoError(t, runner.Up(ctx))

	filename := filepath.Join(t.TempDir(), "reglements.yaml")
	require.NoError(t, ioutil.WriteFile(filename, []byte(`
- idterritoire: T75056
  codcom: "75056"
  annee: 2024
  zone: U1
  section: A
  hauteur: 18.5
  emprise: 60
- idterritoire: T75056
  codcom: "75056"
  annee: 2024
  zone: U1
  section: B
  hauteur: ~
`), 0666))
	require.NoError(t, importReglements(ctx, db, filename))

	rs, err := data.ListByTerritoire(ctx, db, "T75056")
	require.NoError(t, err)
	require.Len(t, rs, 2)
	require.Equal(t, "18.50", rs[0].Hauteur.String())
	require.Equal(t, "60.00", rs[0].Emprise.String())
	require.False(t, rs[1].Hauteur.Valid())
	require.False(t, rs[1].Emprise.Valid())

	err = importReglements(ctx, db, filename)
	require.True(t, merry.Is(err, schema.ErrConflict), err)

	require.Error(t, importReglements(ctx, db, ""))
	require.Error(t, importReglements(ctx, db, filepath.Join(t.TempDir(), "missing.yaml")))
}
