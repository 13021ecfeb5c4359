package virtual

import (
	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/database"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// Function is the collaborator a FunctionTable wraps: a table-valued
// function that, given its call arguments, can report the column shape
// it will produce (Probe) and actually produce rows (Invoke). Resolving
// and evaluating the function's own argument expressions is the caller's
// responsibility — by the time Probe/Invoke run, args are already plain
// values.
type Function interface {
	// Probe reports the result-set column shape the function produces
	// for the given call arguments, without necessarily running the
	// function. An empty/nil result means the function does not return a
	// result set at all.
	Probe(args []value.Value) ([]*catalog.Column, error)
	// Invoke runs the function and returns its result rows.
	Invoke(session database.Session, args []value.Value) ([][]value.Value, error)
}

// FunctionTable is the spec.md §4.8 function table: a constructed table
// whose rows come from evaluating fn against the supplied call
// arguments, with column types established once via a probe call.
type FunctionTable struct {
	ref  catalog.ObjectRef
	fn   Function
	args []value.Value
	cols []*catalog.Column
}

// NewFunctionTable probes fn's result-set column shape at construction,
// failing with CodeFunctionMustReturnResultSet if fn is not a
// table-valued function (the probe reports no columns).
func NewFunctionTable(ref catalog.ObjectRef, fn Function, args []value.Value) (*FunctionTable, error) {
	cols, err := fn.Probe(args)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, ErrFunctionMustReturnResultSet(ref.Name)
	}
	return &FunctionTable{ref: ref, fn: fn, args: args, cols: cols}, nil
}

func (f *FunctionTable) Ref() catalog.ObjectRef    { return f.ref }
func (f *FunctionTable) Columns() []*catalog.Column { return f.cols }

func (f *FunctionTable) GetResult(session database.Session) ([]*row.Row, error) {
	results, err := f.fn.Invoke(session, f.args)
	if err != nil {
		return nil, err
	}
	out := make([]*row.Row, len(results))
	for i, values := range results {
		out[i] = row.New(row.Key(i), values)
	}
	return out, nil
}
