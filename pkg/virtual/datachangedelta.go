package virtual

import (
	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/database"
	"github.com/kasuganosora/tablecore/pkg/row"
)

// DeltaKind selects which snapshot of an in-flight data-change statement
// a DataChangeDeltaTable exposes, per spec.md §4.8.
type DeltaKind int

const (
	// DeltaOld is the row images before the change (DELETE/UPDATE).
	DeltaOld DeltaKind = iota
	// DeltaNew is the row images the statement is writing (INSERT/UPDATE),
	// before any AFTER trigger has run.
	DeltaNew
	// DeltaFinal is the row images as they will actually be committed,
	// after AFTER triggers have had a chance to further modify them.
	DeltaFinal
)

// DeltaCollector is installed by the statement executor that is
// currently running a data-change statement; it is the only source of
// OLD/NEW/FINAL row images, since this package has no access to the
// executor's in-flight buffers.
type DeltaCollector interface {
	Snapshot(kind DeltaKind) []*row.Row
}

// DataChangeDeltaTable is the spec.md §4.8 OLD TABLE / NEW TABLE / FINAL
// TABLE construct used inside a trigger body: a constructed table whose
// rows are whatever the currently-running statement's collector reports
// for the requested snapshot kind.
type DataChangeDeltaTable struct {
	ref       catalog.ObjectRef
	cols      []*catalog.Column
	kind      DeltaKind
	collector DeltaCollector
}

func NewDataChangeDeltaTable(ref catalog.ObjectRef, cols []*catalog.Column, kind DeltaKind, collector DeltaCollector) *DataChangeDeltaTable {
	return &DataChangeDeltaTable{ref: ref, cols: cols, kind: kind, collector: collector}
}

func (d *DataChangeDeltaTable) Ref() catalog.ObjectRef     { return d.ref }
func (d *DataChangeDeltaTable) Columns() []*catalog.Column { return d.cols }

func (d *DataChangeDeltaTable) GetResult(_ database.Session) ([]*row.Row, error) {
	if d.collector == nil {
		return nil, nil
	}
	return d.collector.Snapshot(d.kind), nil
}
