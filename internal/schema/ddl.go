package schema

import (
	"fmt"
	"strings"
)

func CreateTableSQL(d Dialect, t Table) string {
	var xs []string
	for _, c := range t.Columns {
		s := d.Quote(c.Name) + " " + d.ColumnType(c)
		if !c.Null {
			s += " NOT NULL"
		}
		xs = append(xs, s)
	}
	for _, c := range t.Columns {
		xs = append(xs, d.Checks(t.Name, c)...)
	}
	return fmt.Sprintf("CREATE TABLE %s\n(\n    %s\n)", d.Quote(t.Name), strings.Join(xs, ",\n    "))
}

func CreateIndexSQL(d Dialect, t Table, ix Index) string {
	cols := make([]string, len(ix.Columns))
	for i, c := range ix.Columns {
		cols[i] = d.Quote(c)
	}
	unique := ""
	if ix.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
		unique, d.Quote(ix.Name), d.Quote(t.Name), strings.Join(cols, ", "))
}

func DropTableSQL(d Dialect, t Table) string {
	return "DROP TABLE " + d.Quote(t.Name)
}
