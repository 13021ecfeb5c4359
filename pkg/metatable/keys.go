package metatable

import (
	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// keyColumnUsageColumns is information_schema.key_column_usage trimmed to
// the columns this module can populate: catalog.Column records no
// foreign-key references, so only primary-key rows are reported.
func keyColumnUsageColumns() []*catalog.Column {
	return []*catalog.Column{
		strCol("constraint_catalog"),
		strCol("constraint_schema"),
		strCol("constraint_name"),
		strCol("table_schema"),
		strCol("table_name"),
		strCol("column_name"),
		{Name: "ordinal_position", Type: value.TypeInfo{Kind: value.KindInt}, Nullable: false},
	}
}

func buildKeyColumnUsageRows(cat Catalog) []*row.Row {
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
		position := int64(0)
		for _, c := range t.Columns() {
			if !c.PrimaryKey {
				continue
			}
			position++
			out = append(out, row.New(key, []value.Value{
				value.NewString("def"),
				value.NewString(ref.Schema),
				value.NewString(ref.Name + "_pkey"),
				value.NewString(ref.Schema),
				value.NewString(ref.Name),
				value.NewString(c.Name),
				value.NewInt(position),
			}))
			key++
		}
	}
	return out
}
