// Package virtual implements the spec.md §4.8 virtual/constructed table
// family: tables that produce their entire result eagerly rather than
// reading durable storage. Adapted from the teacher's
// VirtualTable/VirtualTableProvider split (originally built over
// pkg/resource/domain's Row/Filter/QueryOptions), retargeted to this
// module's row/catalog/value types and database.Session.
package virtual

import (
	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/database"
	"github.com/kasuganosora/tablecore/pkg/row"
)

// ConstructedTable is the spec.md §4.8 contract: GetResult produces the
// entire result eagerly, with no durable storage behind it.
type ConstructedTable interface {
	// Ref returns the table's schema-object identity.
	Ref() catalog.ObjectRef
	// Columns returns the table's column shape.
	Columns() []*catalog.Column
	// GetResult produces every row of the table's current result.
	GetResult(session database.Session) ([]*row.Row, error)
}

// Provider gives named access to a collection of constructed tables —
// the same role the teacher's VirtualTableProvider played for
// information_schema, generalized to any virtual-table family (Dual,
// Range, Function, Values, DataChangeDelta).
type Provider interface {
	GetTable(name string) (ConstructedTable, error)
	ListTables() []string
	HasTable(name string) bool
}
