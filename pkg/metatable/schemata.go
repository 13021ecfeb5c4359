package metatable

import (
	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

func schemataColumns() []*catalog.Column {
	return []*catalog.Column{
		strCol("catalog_name"),
		strCol("schema_name"),
		strCol("default_character_set_name"),
		strCol("default_collation_name"),
	}
}

// buildSchemataRows reports one row per distinct schema name seen across
// every registered schema object, plus "information_schema" itself.
func buildSchemataRows(cat Catalog) []*row.Row {
	seen := map[string]bool{"information_schema": true}
	out := []*row.Row{schemataRow(0, "information_schema")}
	var key row.Key = 1
	for _, ref := range cat.SchemaObjects() {
		name := ref.Schema
		if name == "" {
			name = "public"
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, schemataRow(key, name))
		key++
	}
	return out
}

func schemataRow(key row.Key, name string) *row.Row {
	return row.New(key, []value.Value{
		value.NewString("def"),
		value.NewString(name),
		value.NewString("utf8mb4"),
		value.NewString("utf8mb4_general_ci"),
	})
}
