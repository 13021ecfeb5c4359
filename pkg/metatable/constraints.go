package metatable

import (
	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

func tableConstraintsColumns() []*catalog.Column {
	return []*catalog.Column{
		strCol("constraint_catalog"),
		strCol("constraint_schema"),
		strCol("constraint_name"),
		strCol("table_schema"),
		strCol("table_name"),
		strCol("constraint_type"),
	}
}

// buildTableConstraintsRows reports one PRIMARY KEY row per table that
// has a primary-key column. catalog.Column carries no other constraint
// kinds (UNIQUE, CHECK, FOREIGN KEY), so none are reported.
func buildTableConstraintsRows(cat Catalog) []*row.Row {
	var out []*row.Row
	var key row.Key
	for _, ref := range cat.SchemaObjects() {
		if ref.Kind != catalog.KindTable || ref.Hidden {
			continue
		}
		t, ok := cat.ResolveTable(ref)
		if !ok {
			continue
		}
		hasPK := false
		for _, c := range t.Columns() {
			if c.PrimaryKey {
				hasPK = true
				break
			}
		}
		if !hasPK {
			continue
		}
		out = append(out, row.New(key, []value.Value{
			value.NewString("def"),
			value.NewString(ref.Schema),
			value.NewString(ref.Name + "_pkey"),
			value.NewString(ref.Schema),
			value.NewString(ref.Name),
			value.NewString("PRIMARY KEY"),
		}))
		key++
	}
	return out
}
