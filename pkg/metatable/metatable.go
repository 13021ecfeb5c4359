// Package metatable implements the spec.md §4.8 MetaTable family:
// read-only constructed tables that expose the live schema catalog as
// rows, the way information_schema does in a real SQL engine. Adapted
// from the teacher's pkg/information_schema, whose per-table Go types
// (SchemataTable, TablesTable, ColumnsTable, ...) queried a
// domain.DataSource-backed application.DataSourceManager; this package
// instead enumerates database.DB's own schema registry and the live
// table.Table objects a Catalog resolves them to, since this module has
// no separate data-source-manager layer — the database IS the catalog.
package metatable

import (
	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/database"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/table"
)

// MetaKind enumerates the information-schema-style views this package
// implements, per SPEC_FULL.md §3's supplemental metadata surface.
type MetaKind int

const (
	KindTables MetaKind = iota
	KindColumns
	KindKeyColumnUsage
	KindTableConstraints
	KindViews
	KindSchemata
)

func (k MetaKind) String() string {
	switch k {
	case KindTables:
		return "TABLES"
	case KindColumns:
		return "COLUMNS"
	case KindKeyColumnUsage:
		return "KEY_COLUMN_USAGE"
	case KindTableConstraints:
		return "TABLE_CONSTRAINTS"
	case KindViews:
		return "VIEWS"
	case KindSchemata:
		return "SCHEMATA"
	default:
		return "UNKNOWN"
	}
}

// Catalog is the collaborator a MetaTable reads from: the set of
// registered schema objects, plus the ability to resolve one to the live
// table.Table that carries its columns. database.DB satisfies the first
// half (SchemaObjects); whatever owns the actual table.Table instances
// (typically the same wiring layer that calls AddSchemaObject) supplies
// the second half — this package never constructs tables itself.
type Catalog interface {
	SchemaObjects() []catalog.ObjectRef
	ResolveTable(ref catalog.ObjectRef) (table.Table, bool)
}

// QuerySource is implemented by table.Table variants that have a defining
// query (pkg/view.TableView), used by the VIEWS kind. Tables that don't
// implement it (RegularTable, synonyms, virtual tables) are simply
// skipped when populating VIEWS.
type QuerySource interface {
	QuerySQL() string
}

// MetaTable is a virtual.ConstructedTable over the live catalog, of one
// of the kinds above. It carries no state of its own beyond which kind it
// is and which catalog to read — every GetResult call re-enumerates the
// catalog fresh, so results always reflect the schema as of the call.
type MetaTable struct {
	ref     catalog.ObjectRef
	kind    MetaKind
	catalog Catalog
}

// NewMetaTable builds a MetaTable of the given kind over catalog, under
// the schema-object identity ref (conventionally
// information_schema.<kind>).
func NewMetaTable(ref catalog.ObjectRef, kind MetaKind, cat Catalog) *MetaTable {
	return &MetaTable{ref: ref, kind: kind, catalog: cat}
}

func (m *MetaTable) Ref() catalog.ObjectRef { return m.ref }

func (m *MetaTable) Columns() []*catalog.Column {
	switch m.kind {
	case KindTables:
		return tablesColumns()
	case KindColumns:
		return columnsColumns()
	case KindKeyColumnUsage:
		return keyColumnUsageColumns()
	case KindTableConstraints:
		return tableConstraintsColumns()
	case KindViews:
		return viewsColumns()
	case KindSchemata:
		return schemataColumns()
	default:
		return nil
	}
}

// GetResult re-enumerates the catalog and builds this MetaTable's rows
// fresh; session is accepted to satisfy virtual.ConstructedTable but
// unused — metadata visibility does not depend on the caller's snapshot.
func (m *MetaTable) GetResult(_ database.Session) ([]*row.Row, error) {
	switch m.kind {
	case KindTables:
		return buildTablesRows(m.catalog), nil
	case KindColumns:
		return buildColumnsRows(m.catalog), nil
	case KindKeyColumnUsage:
		return buildKeyColumnUsageRows(m.catalog), nil
	case KindTableConstraints:
		return buildTableConstraintsRows(m.catalog), nil
	case KindViews:
		return buildViewsRows(m.catalog), nil
	case KindSchemata:
		return buildSchemataRows(m.catalog), nil
	default:
		return nil, nil
	}
}
