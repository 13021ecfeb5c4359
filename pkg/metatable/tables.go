package metatable

import (
	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// tablesColumns is information_schema.tables's column set, trimmed to
// the fields this module can actually populate (no storage-engine
// statistics — there is no InnoDB-style engine layer underneath).
func tablesColumns() []*catalog.Column {
	return []*catalog.Column{
		strCol("table_catalog"),
		strCol("table_schema"),
		strCol("table_name"),
		strCol("table_type"),
		{Name: "table_rows", Type: value.TypeInfo{Kind: value.KindInt}, Nullable: true},
	}
}

func tableTypeOf(kind catalog.ObjectKind) string {
	switch kind {
	case catalog.KindView:
		return "VIEW"
	case catalog.KindSynonym:
		return "SYNONYM"
	default:
		return "BASE TABLE"
	}
}

func buildTablesRows(cat Catalog) []*row.Row {
	var out []*row.Row
	for _, ref := range cat.SchemaObjects() {
		if ref.Kind != catalog.KindTable && ref.Kind != catalog.KindView && ref.Kind != catalog.KindSynonym {
			continue
		}
		if ref.Hidden {
			continue
		}
		var rows int64 = -1
		if t, ok := cat.ResolveTable(ref); ok {
			rows = t.RowCount()
		}
		out = append(out, row.New(row.Key(ref.ID), []value.Value{
			value.NewString("def"),
			value.NewString(ref.Schema),
			value.NewString(ref.Name),
			value.NewString(tableTypeOf(ref.Kind)),
			rowCountValue(rows),
		}))
	}
	return out
}

func rowCountValue(n int64) value.Value {
	if n < 0 {
		return value.Null
	}
	return value.NewInt(n)
}

func strCol(name string) *catalog.Column {
	return &catalog.Column{Name: name, Type: value.TypeInfo{Kind: value.KindString}, Nullable: false}
}
