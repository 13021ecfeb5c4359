package virtual

import (
	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/database"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// RangeTable is the spec.md §4.8 RANGE(min, max [, step]) constructed
// table: lazy arithmetic enumeration, one BIGINT column `X`.
type RangeTable struct {
	ref      catalog.ObjectRef
	min, max int64
	step     int64
}

// NewRangeTable creates a RANGE table with the given step. There is no
// default step: a zero step is rejected by RowCount/GetResult with
// CodeStepSizeZero, per spec.md §4.8.
func NewRangeTable(ref catalog.ObjectRef, min, max, step int64) *RangeTable {
	return &RangeTable{ref: ref, min: min, max: max, step: step}
}

func (r *RangeTable) Ref() catalog.ObjectRef { return r.ref }

func (r *RangeTable) Columns() []*catalog.Column {
	return []*catalog.Column{{Name: "X", Type: value.TypeInfo{Kind: value.KindInt}, Nullable: false}}
}

// RowCount reports (max-min)/step + 1 when the step's sign agrees with
// the min→max direction, else 0 (an empty range), per spec.md §4.8.
func (r *RangeTable) RowCount() (int64, error) {
	if r.step == 0 {
		return 0, ErrStepSizeZero(r.ref.Name)
	}
	if r.step > 0 && r.min > r.max {
		return 0, nil
	}
	if r.step < 0 && r.min < r.max {
		return 0, nil
	}
	return (r.max-r.min)/r.step + 1, nil
}

func (r *RangeTable) GetResult(_ database.Session) ([]*row.Row, error) {
	n, err := r.RowCount()
	if err != nil {
		return nil, err
	}
	out := make([]*row.Row, 0, n)
	var i int64
	for v := r.min; i < n; i, v = i+1, v+r.step {
		out = append(out, row.New(row.Key(i), []value.Value{value.NewInt(v)}))
	}
	return out, nil
}
