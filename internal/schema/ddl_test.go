package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateTableSQLPostgres(t *testing.T) {
	require.Equal(t, `CREATE TABLE "plu_reglements"
(
    "idterritoire" VARCHAR(10) NOT NULL,
    "codcom" VARCHAR(6) NOT NULL,
    "annee" INTEGER NOT NULL,
    "zone" VARCHAR(2) NOT NULL,
    "section" VARCHAR(10) NOT NULL,
    "hauteur" NUMERIC(5,2),
    "emprise" NUMERIC(5,2),
    "created_at" TIMESTAMP NOT NULL,
    "updated_at" TIMESTAMP NOT NULL
)`, CreateTableSQL(Postgres{}, PluReglements))
}

func TestCreateTableSQLSqlite3Checks(t *testing.T) {
	s := CreateTableSQL(Sqlite3{}, PluReglements)
	for _, want := range []string{
		`"hauteur" DECIMAL(5,2),`,
		`"annee" INTEGER NOT NULL,`,
		`CONSTRAINT "plu_reglements_idterritoire_length" CHECK (length("idterritoire") <= 10)`,
		`CONSTRAINT "plu_reglements_zone_length" CHECK (length("zone") <= 2)`,
		`CONSTRAINT "plu_reglements_annee_type" CHECK (typeof("annee") IN ('integer', 'null'))`,
		`CONSTRAINT "plu_reglements_emprise_range" CHECK (typeof("emprise") IN ('integer', 'real', 'null') AND abs(round("emprise", 2)) < 1000)`,
	} {
		require.Contains(t, s, want)
	}
	require.NotContains(t, s, "created_at_")
}

func TestCreateIndexSQL(t *testing.T) {
	require.Equal(t,
		`CREATE UNIQUE INDEX "index_plu_reglements_on_idterritoire_and_zone_and_section" ON "plu_reglements" ("idterritoire", "zone", "section")`,
		CreateIndexSQL(Postgres{}, PluReglements, PluReglements.Indexes[0]))

	ix := Index{Name: "ix_annee", Columns: []string{"annee"}}
	require.Equal(t, `CREATE INDEX "ix_annee" ON "plu_reglements" ("annee")`,
		CreateIndexSQL(Sqlite3{}, PluReglements, ix))
}

func TestDropTableSQL(t *testing.T) {
	require.Equal(t, `DROP TABLE "plu_reglements"`, DropTableSQL(Sqlite3{}, PluReglements))
}

func TestQuote(t *testing.T) {
	require.Equal(t, `"a""b"`, Postgres{}.Quote(`a"b`))
}

func TestDialectByName(t *testing.T) {
	d, err := DialectByName("postgres")
	require.NoError(t, err)
	require.Equal(t, "postgres", d.Name())

	d, err = DialectByName("sqlite3")
	require.NoError(t, err)
	require.Equal(t, "sqlite3", d.Name())

	_, err = DialectByName("mysql")
	require.Error(t, err)
}

func TestPluReglementsDefinition(t *testing.T) {
	require.Equal(t, []string{
		"idterritoire", "codcom", "annee", "zone", "section",
		"hauteur", "emprise", "created_at", "updated_at",
	}, PluReglements.ColumnNames())

	for _, name := range []string{"idterritoire", "codcom", "annee", "zone", "section", "created_at", "updated_at"} {
		c, ok := PluReglements.Column(name)
		require.True(t, ok, name)
		require.False(t, c.Null, name)
	}
	for _, name := range []string{"hauteur", "emprise"} {
		c, ok := PluReglements.Column(name)
		require.True(t, ok, name)
		require.True(t, c.Null, name)
		require.Equal(t, 5, c.Precision)
		require.Equal(t, 2, c.Scale)
	}
	_, ok := PluReglements.Column("id")
	require.False(t, ok)
}

func TestTableValidate(t *testing.T) {
	require.NoError(t, PluReglements.Validate())

	for name, tb := range map[string]Table{
		"no columns": {Name: "t"},
		"duplicate column": {Name: "t", Columns: []Column{
			{Name: "a", Kind: Integer}, {Name: "a", Kind: String, Limit: 1},
		}},
		"index without columns": {Name: "t",
			Columns: []Column{{Name: "a", Kind: Integer}},
			Indexes: []Index{{Name: "ix"}},
		},
		"index on unknown column": {Name: "t",
			Columns: []Column{{Name: "a", Kind: Integer}},
			Indexes: []Index{{Name: "ix", Columns: []string{"a", "b"}, Unique: true}},
		},
	} {
		require.Error(t, tb.Validate(), name)
	}
}
