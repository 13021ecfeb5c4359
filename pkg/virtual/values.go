package virtual

import (
	"fmt"

	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/database"
	"github.com/kasuganosora/tablecore/pkg/expr"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// ValuesTable is the spec.md §4.8 VALUES(...) constructed table: each row
// is a fixed tuple of expressions (typically literals, but any
// expr.Expression is accepted), re-evaluated fresh on every GetResult
// call rather than cached — a caller that calls GetResult twice against
// a non-constant expression may observe two different results.
type ValuesTable struct {
	ref  catalog.ObjectRef
	cols []*catalog.Column
	rows [][]expr.Expression
}

// NewValuesTable builds a VALUES table from explicit column definitions
// (names/types are not inferred from the expressions — the caller, which
// has already parsed the VALUES clause, knows them) and its row tuples.
// Every row must have exactly len(cols) expressions.
func NewValuesTable(ref catalog.ObjectRef, cols []*catalog.Column, rows [][]expr.Expression) (*ValuesTable, error) {
	for i, r := range rows {
		if len(r) != len(cols) {
			return nil, fmt.Errorf("virtual: VALUES row %d has %d expressions, want %d", i, len(r), len(cols))
		}
	}
	return &ValuesTable{ref: ref, cols: cols, rows: rows}, nil
}

func (v *ValuesTable) Ref() catalog.ObjectRef     { return v.ref }
func (v *ValuesTable) Columns() []*catalog.Column { return v.cols }

// GetResult materializes the table's rows anew each call by evaluating
// every cell expression against session.
func (v *ValuesTable) GetResult(session database.Session) ([]*row.Row, error) {
	ctx := expr.EvalContext{Session: session}
	out := make([]*row.Row, len(v.rows))
	for i, exprs := range v.rows {
		values := make([]value.Value, len(exprs))
		for j, e := range exprs {
			val, err := e.Eval(ctx)
			if err != nil {
				return nil, err
			}
			values[j] = val
		}
		out[i] = row.New(row.Key(i), values)
	}
	return out, nil
}
