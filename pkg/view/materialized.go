package view

import (
	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/database"
	"github.com/kasuganosora/tablecore/pkg/index"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// MutableBackingTable is the narrow slice of table.RegularTable's
// contract a MaterializedView needs to delegate mutations to its backing
// storage.
type MutableBackingTable interface {
	Ref() catalog.ObjectRef
	Columns() []*catalog.Column
	Indexes() []index.Index
	RowCount() int64
	LastModificationID() int64
	IsPersistent() bool

	AddRow(session database.Session, values []value.Value) (*row.Row, error)
	RemoveRow(session database.Session, r *row.Row) error
}

// MaterializedView is the spec.md §4.6 materialized view: like TableView,
// but add/removeRow delegate to a backing table (rejected for read-only
// variants with no backing table attached), and row count/modification id
// come from the backing table rather than query execution.
type MaterializedView struct {
	*TableView
	backing MutableBackingTable
}

// NewMaterializedView wraps tv with an optional backing table. A nil
// backing makes the materialized view read-only: mutations are rejected
// but Scan still serves rows via the compiled query, same as a plain
// TableView.
func NewMaterializedView(tv *TableView, backing MutableBackingTable) *MaterializedView {
	return &MaterializedView{TableView: tv, backing: backing}
}

func (m *MaterializedView) RowCount() int64 {
	if m.backing != nil {
		return m.backing.RowCount()
	}
	return m.TableView.RowCount()
}

func (m *MaterializedView) LastModificationID() int64 {
	if m.backing != nil {
		return m.backing.LastModificationID()
	}
	return m.TableView.LastModificationID()
}

// IsPersistent reports the backing table's persistence, or false for a
// read-only materialized view with no backing storage.
func (m *MaterializedView) IsPersistent() bool {
	if m.backing != nil {
		return m.backing.IsPersistent()
	}
	return false
}

// AddRow delegates to the backing table, or fails if this materialized
// view has none.
func (m *MaterializedView) AddRow(session database.Session, values []value.Value) (*row.Row, error) {
	if m.backing == nil {
		return nil, ErrMaterializedViewReadOnly(m.Ref().Name)
	}
	return m.backing.AddRow(session, values)
}

// RemoveRow delegates to the backing table, or fails if this materialized
// view has none.
func (m *MaterializedView) RemoveRow(session database.Session, r *row.Row) error {
	if m.backing == nil {
		return ErrMaterializedViewReadOnly(m.Ref().Name)
	}
	return m.backing.RemoveRow(session, r)
}
