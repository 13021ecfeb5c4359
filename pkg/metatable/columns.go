package metatable

import (
	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

func columnsColumns() []*catalog.Column {
	return []*catalog.Column{
		strCol("table_catalog"),
		strCol("table_schema"),
		strCol("table_name"),
		strCol("column_name"),
		{Name: "ordinal_position", Type: value.TypeInfo{Kind: value.KindInt}, Nullable: false},
		strCol("is_nullable"),
		strCol("data_type"),
		strCol("column_key"),
		strCol("extra"),
	}
}

func isNullableStr(nullable bool) string {
	if nullable {
		return "YES"
	}
	return "NO"
}

func columnExtra(c *catalog.Column) string {
	switch {
	case c.IsIdentity():
		return "auto_increment"
	case c.IsGenerated():
		return "GENERATED ALWAYS"
	default:
		return ""
	}
}

func columnKey(c *catalog.Column) string {
	if c.PrimaryKey {
		return "PRI"
	}
	return ""
}

func buildColumnsRows(cat Catalog) []*row.Row {
	var out []*row.Row
	var key row.Key
	for _, ref := range cat.SchemaObjects() {
		if ref.Hidden {
			continue
		}
		t, ok := cat.ResolveTable(ref)
		if !ok {
			continue
		}
		for i, c := range t.Columns() {
			out = append(out, row.New(key, []value.Value{
				value.NewString("def"),
				value.NewString(ref.Schema),
				value.NewString(ref.Name),
				value.NewString(c.Name),
				value.NewInt(int64(i + 1)),
				value.NewString(isNullableStr(c.Nullable)),
				value.NewString(c.Type.Kind.String()),
				value.NewString(columnKey(c)),
				value.NewString(columnExtra(c)),
			}))
			key++
		}
	}
	return out
}
