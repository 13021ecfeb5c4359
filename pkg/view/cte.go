package view

import (
	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/database"
)

// CTE is the spec.md §4.6 recursive common table expression: a TableView
// whose recursion need is detected at construction time rather than
// declared by the caller. Recursive views are non-deterministic — two
// scans of the same CTE are not guaranteed to return rows in the same
// order.
type CTE struct {
	*TableView
	recursive bool
}

// IsRecursive reports whether the CTE's query actually needs recursive
// evaluation.
func (c *CTE) IsRecursive() bool { return c.recursive }

// NewCTE detects recursion by registering a shadow, empty table under the
// CTE's own declared name and attempting to compile the query against it
// (spec.md §4.6's "Recursive CTE" note): if compilation succeeds, the
// query resolves its self-reference against the (empty) shadow table
// without needing iterative recursion, so recursive stays false;
// otherwise the compiler could not resolve it that way and recursive
// stays true.
func NewCTE(cc *catalog.Common, db database.Database, compiler QueryCompiler, registrar Registrar, querySQL string, templates []ColumnTemplate) (*CTE, error) {
	shadow := catalog.NewObjectRef(0, catalog.KindTable, cc.Ref.Schema, cc.Ref.Name)
	_ = db.AddSchemaObject(shadow)
	_, shadowCompileErr := compiler.Compile(querySQL)
	_ = db.RemoveSchemaObject(shadow.External)

	tv, err := NewTableView(cc, db, compiler, registrar, querySQL, templates)
	if err != nil {
		return nil, err
	}
	return &CTE{TableView: tv, recursive: shadowCompileErr != nil}, nil
}
