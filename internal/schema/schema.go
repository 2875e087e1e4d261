package schema

import "github.com/ansel1/merry"

type Kind int

const (
	String Kind = iota
	Integer
	Decimal
	Timestamp
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case Timestamp:
		return "timestamp"
	}
	return "unknown"
}

// Column describes one table column. Limit applies to String,
// Precision and Scale apply to Decimal.
type Column struct {
	Name      string
	Kind      Kind
	Limit     int
	Precision int
	Scale     int
	Null      bool
}

type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

type Table struct {
	Name    string
	Columns []Column
	Indexes []Index
}

func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Validate checks that column names are unique and that every index
// covers existing columns. SQLite reads an unknown quoted column name
// as a string literal, so the engine can not be relied on for this.
func (t Table) Validate() error {
	if len(t.Columns) == 0 {
		return merry.Errorf("table %q has no columns", t.Name)
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if seen[c.Name] {
			return merry.Errorf("table %q: duplicate column %q", t.Name, c.Name)
		}
		seen[c.Name] = true
	}
	for _, ix := range t.Indexes {
		if len(ix.Columns) == 0 {
			return merry.Errorf("index %q has no columns", ix.Name)
		}
		for _, name := range ix.Columns {
			if !seen[name] {
				return merry.Errorf("index %q: table %q has no column %q", ix.Name, t.Name, name)
			}
		}
	}
	return nil
}

func (t Table) ColumnNames() []string {
	xs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		xs[i] = c.Name
	}
	return xs
}

const (
	TablePluReglements = "plu_reglements"
	IndexPluReglements = "index_plu_reglements_on_idterritoire_and_zone_and_section"
)

var PluReglements = Table{
	Name: TablePluReglements,
	Columns: []Column{
		{Name: "idterritoire", Kind: String, Limit: 10},
		{Name: "codcom", Kind: String, Limit: 6},
		{Name: "annee", Kind: Integer},
		{Name: "zone", Kind: String, Limit: 2},
		{Name: "section", Kind: String, Limit: 10},
		{Name: "hauteur", Kind: Decimal, Precision: 5, Scale: 2, Null: true},
		{Name: "emprise", Kind: Decimal, Precision: 5, Scale: 2, Null: true},
		{Name: "created_at", Kind: Timestamp},
		{Name: "updated_at", Kind: Timestamp},
	},
	Indexes: []Index{
		{
			Name:    IndexPluReglements,
			Columns: []string{"idterritoire", "zone", "section"},
			Unique:  true,
		},
	},
}

// CreatePluReglements is the forward change for PluReglements.
var CreatePluReglements = Change{
	Version: "20240412093000",
	Name:    "create_plu_reglements",
	Table:   PluReglements,
}
