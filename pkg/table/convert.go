package table

import (
	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// OverridingSystem models the INSERT clause `OVERRIDING {SYSTEM|USER}
// VALUE` for identity columns: None means no clause was given.
type OverridingSystem int

const (
	OverridingNone OverridingSystem = iota
	OverridingSystemValue
	OverridingUserValue
)

// rowAccessor implements expr.RowAccessor over a column-name-indexed
// slice of in-progress values, so generated/default expressions can read
// sibling columns of the row under construction before a row.Row exists.
type rowAccessor struct {
	cols   []*catalog.Column
	values []value.Value
}

func (r *rowAccessor) ColumnValue(name string) (value.Value, bool) {
	for i, c := range r.cols {
		if c.Name == name {
			return r.values[i], true
		}
	}
	return value.Null, false
}

// ConvertInsertRow implements spec.md §4.2's convertInsertRow: validates
// and fills every column for an INSERT, handling identity-column
// overriding and the generated-column two-pass ordering (non-generated
// columns finalize first, so generated expressions read stable sibling
// values).
func ConvertInsertRow(session catalog.Session, cols []*catalog.Column, supplied []*value.Value, overriding OverridingSystem) ([]value.Value, error) {
	out := make([]value.Value, len(cols))
	acc := &rowAccessor{cols: cols, values: out}

	var generated []int
	for i, col := range cols {
		v := supplied[i]

		if col.IsIdentity() {
			switch overriding {
			case OverridingUserValue:
				v = nil
			case OverridingNone:
				if col.IsGeneratedAlways && v != nil {
					return nil, ErrGeneratedColumnAssigned("", col.Name)
				}
			}
		} else if col.IsGenerated() {
			if v != nil {
				return nil, ErrGeneratedColumnAssigned("", col.Name)
			}
			generated = append(generated, i)
			continue
		}

		val, err := col.ValidateConvertUpdateSequence(session, v, acc)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}

	for _, i := range generated {
		val, err := cols[i].ValidateConvertUpdateSequence(session, nil, acc)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}

	return out, nil
}

// ConvertUpdateRow implements spec.md §4.2's convertUpdateRow: identical
// to ConvertInsertRow except a non-nil value supplied to a generated
// column from a trigger context is tolerated — it is cleared before
// recomputation rather than rejected. fromTrigger distinguishes that
// path from an ordinary UPDATE statement, which still rejects an
// explicit value for a generated column.
func ConvertUpdateRow(session catalog.Session, cols []*catalog.Column, supplied []*value.Value, overriding OverridingSystem, fromTrigger bool) ([]value.Value, error) {
	out := make([]value.Value, len(cols))
	acc := &rowAccessor{cols: cols, values: out}

	var generated []int
	for i, col := range cols {
		v := supplied[i]

		if col.IsIdentity() {
			switch overriding {
			case OverridingUserValue:
				v = nil
			case OverridingNone:
				if col.IsGeneratedAlways && v != nil {
					return nil, ErrGeneratedColumnAssigned("", col.Name)
				}
			}
		} else if col.IsGenerated() {
			if v != nil && !fromTrigger {
				return nil, ErrGeneratedColumnAssigned("", col.Name)
			}
			generated = append(generated, i)
			continue
		}

		val, err := col.ValidateConvertUpdateSequence(session, v, acc)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}

	for _, i := range generated {
		val, err := cols[i].ValidateConvertUpdateSequence(session, nil, acc)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}

	return out, nil
}
