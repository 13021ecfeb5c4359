package metatable

import (
	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/database"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// mutableView is satisfied by pkg/view.MaterializedView when it has a
// backing table attached; used only to report is_updatable.
type mutableView interface {
	AddRow(session database.Session, values []value.Value) (*row.Row, error)
}

func viewsColumns() []*catalog.Column {
	return []*catalog.Column{
		strCol("table_catalog"),
		strCol("table_schema"),
		strCol("table_name"),
		{Name: "view_definition", Type: value.TypeInfo{Kind: value.KindString}, Nullable: true},
		strCol("is_updatable"),
	}
}

func buildViewsRows(cat Catalog) []*row.Row {
	var out []*row.Row
	var key row.Key
	for _, ref := range cat.SchemaObjects() {
		if ref.Kind != catalog.KindView || ref.Hidden {
			continue
		}
		t, ok := cat.ResolveTable(ref)
		if !ok {
			continue
		}
		definition := value.Null
		if src, ok := t.(QuerySource); ok {
			definition = value.NewString(src.QuerySQL())
		}
		updatable := "NO"
		if _, ok := t.(mutableView); ok {
			updatable = "YES"
		}
		out = append(out, row.New(key, []value.Value{
			value.NewString("def"),
			value.NewString(ref.Schema),
			value.NewString(ref.Name),
			definition,
			value.NewString(updatable),
		}))
		key++
	}
	return out
}
