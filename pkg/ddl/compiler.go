package ddl

import (
	"fmt"

	"github.com/pingcap/tidb/pkg/parser/ast"

	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/database"
	"github.com/kasuganosora/tablecore/pkg/index"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/table"
	"github.com/kasuganosora/tablecore/pkg/value"
	"github.com/kasuganosora/tablecore/pkg/view"
)

// TableResolver looks up a table by its unqualified name — the same
// collaborator shape pkg/metatable's Catalog uses for ResolveTable,
// narrowed here to what query compilation needs.
type TableResolver interface {
	ResolveTableByName(name string) (table.Table, bool)
}

// Compiler implements view.QueryCompiler via the pingcap SQL parser. It
// only handles a single-table SELECT with a plain column list or
// wildcard — the view family's own job (spec.md §4.6) is caching and
// dependency tracking, not query execution, so anything beyond that
// shape (WHERE, JOIN, GROUP BY, subqueries, aggregates) is reported as
// an unsupported-query error rather than silently ignored, per spec.md
// §1's predicate/expression-evaluation non-goal.
type Compiler struct {
	parser   *Parser
	resolver TableResolver
}

// NewCompiler builds a Compiler resolving a compiled query's referenced
// table through resolver.
func NewCompiler(resolver TableResolver) *Compiler {
	return &Compiler{parser: NewParser(), resolver: resolver}
}

func (c *Compiler) Compile(sql string) (view.Query, error) {
	stmt, err := c.parser.ParseOne(sql)
	if err != nil {
		return nil, err
	}
	sel, ok := stmt.(*ast.SelectStmt)
	if !ok {
		return nil, fmt.Errorf("ddl: %q is not a SELECT statement", sql)
	}
	if sel.Where != nil {
		return nil, fmt.Errorf("ddl: unsupported WHERE clause in view query %q", sql)
	}
	if sel.GroupBy != nil || sel.Having != nil {
		return nil, fmt.Errorf("ddl: unsupported GROUP BY/HAVING in view query %q", sql)
	}
	if sel.OrderBy != nil || sel.Limit != nil || sel.Distinct {
		return nil, fmt.Errorf("ddl: unsupported ORDER BY/LIMIT/DISTINCT in view query %q", sql)
	}
	if sel.From == nil || sel.From.TableRefs == nil {
		return nil, fmt.Errorf("ddl: view query %q has no FROM clause", sql)
	}
	if sel.From.TableRefs.Right != nil {
		return nil, fmt.Errorf("ddl: unsupported JOIN in view query %q", sql)
	}
	src, ok := sel.From.TableRefs.Left.(*ast.TableSource)
	if !ok {
		return nil, fmt.Errorf("ddl: unsupported FROM clause in view query %q", sql)
	}
	tableName, ok := src.Source.(*ast.TableName)
	if !ok {
		return nil, fmt.Errorf("ddl: unsupported FROM source in view query %q", sql)
	}

	q := &compiledQuery{table: tableName.Name.String(), resolver: c.resolver}
	if sel.Fields == nil {
		return nil, fmt.Errorf("ddl: view query %q selects no columns", sql)
	}
	for _, field := range sel.Fields.Fields {
		if field.WildCard != nil {
			q.wildcard = true
			continue
		}
		colExpr, ok := field.Expr.(*ast.ColumnNameExpr)
		if !ok {
			return nil, fmt.Errorf("ddl: unsupported select expression in view query %q", sql)
		}
		name := colExpr.Name.Name.String()
		alias := name
		if field.AsName.L != "" {
			alias = field.AsName.String()
		}
		q.fields = append(q.fields, compiledField{source: name, alias: alias})
	}
	if q.wildcard && len(q.fields) > 0 {
		return nil, fmt.Errorf("ddl: cannot mix * with named columns in view query %q", sql)
	}
	return q, nil
}

type compiledField struct {
	source string
	alias  string
}

// compiledQuery is the view.Query produced by Compiler.Compile: a single
// source table, projected to either every column (wildcard) or an
// explicit named subset with optional aliasing.
type compiledQuery struct {
	table    string
	wildcard bool
	fields   []compiledField
	resolver TableResolver
}

func (q *compiledQuery) resolve() (table.Table, error) {
	t, ok := q.resolver.ResolveTableByName(q.table)
	if !ok {
		return nil, fmt.Errorf("ddl: table %q not found", q.table)
	}
	return t, nil
}

// projection resolves, for the source table's column list, which source
// column indexes are selected and what their output names are.
func (q *compiledQuery) projection(cols []*catalog.Column) (indexes []int, names []string) {
	if q.wildcard {
		for i, c := range cols {
			indexes = append(indexes, i)
			names = append(names, c.Name)
		}
		return
	}
	byName := make(map[string]int, len(cols))
	for i, c := range cols {
		byName[c.Name] = i
	}
	for _, f := range q.fields {
		if i, ok := byName[f.source]; ok {
			indexes = append(indexes, i)
			names = append(names, f.alias)
		}
	}
	return
}

func (q *compiledQuery) Columns() []view.ProjectedColumn {
	t, err := q.resolve()
	if err != nil {
		return nil
	}
	cols := t.Columns()
	idxs, names := q.projection(cols)
	out := make([]view.ProjectedColumn, len(idxs))
	for i, srcIdx := range idxs {
		out[i] = view.ProjectedColumn{Name: names[i], Type: cols[srcIdx].Type}
	}
	return out
}

func (q *compiledQuery) ReferencedTables() []string {
	return []string{q.table}
}

func (q *compiledQuery) Execute(session database.Session, _ []index.Mask, _ index.SortOrder) (index.Cursor, error) {
	t, err := q.resolve()
	if err != nil {
		return nil, err
	}
	cols := t.Columns()
	idxs, _ := q.projection(cols)

	indexes := t.Indexes()
	if len(indexes) == 0 {
		return nil, fmt.Errorf("ddl: table %q has no scan index", q.table)
	}
	cur, err := indexes[0].Find(session, nil, nil)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	var out []*row.Row
	for cur.Next() {
		src := cur.Row()
		projected := make([]value.Value, len(idxs))
		for i, srcIdx := range idxs {
			projected[i] = src.Get(srcIdx)
		}
		out = append(out, row.New(src.Key, projected))
	}
	return newSliceCursor(out), nil
}

// sliceCursor is a minimal index.Cursor over a materialized row slice —
// the query's whole result here, since execution always evaluates the
// source table in full (no predicate/sort pushdown, per this package's
// scope).
type sliceCursor struct {
	rows []*row.Row
	pos  int
}

func newSliceCursor(rows []*row.Row) *sliceCursor { return &sliceCursor{rows: rows, pos: -1} }

func (c *sliceCursor) Next() bool {
	c.pos++
	return c.pos < len(c.rows)
}

func (c *sliceCursor) Row() *row.Row {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil
	}
	return c.rows[c.pos]
}

func (c *sliceCursor) Close() error { return nil }

var _ view.QueryCompiler = (*Compiler)(nil)
