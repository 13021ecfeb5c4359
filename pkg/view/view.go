// Package view implements the spec.md §4.6 view family: TableView (a
// virtual table backed by a compiled query), MaterializedView, and CTE,
// sharing one query-expression-index caching strategy. Query compilation
// and execution are external collaborators — this package only
// specifies the contract (QueryCompiler/Query) the table layer touches,
// per spec.md §1's "SQL parsing, query compilation ... out of scope"
// boundary. pkg/ddl supplies the pingcap-parser-backed implementation.
package view

import (
	"fmt"
	"sync"

	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/database"
	"github.com/kasuganosora/tablecore/pkg/index"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// ProjectedColumn is one column of a compiled query's result shape.
type ProjectedColumn struct {
	Name string
	Type value.TypeInfo
}

// ColumnTemplate overrides a projected column's name/type when the CREATE
// VIEW statement supplied an explicit column list.
type ColumnTemplate struct {
	Name string
	Type *value.TypeInfo
}

// Query is a compiled, executable view body. Compilation and row
// production are delegated entirely to the collaborator that implements
// this interface (pkg/ddl, backed by the pingcap SQL parser and whatever
// executor sits above the table layer) — this package never parses SQL
// itself.
type Query interface {
	// Columns returns the query's projection shape.
	Columns() []ProjectedColumn
	// ReferencedTables returns the qualified names of every table the
	// query reads, for dependency tracking.
	ReferencedTables() []string
	// Execute runs the query and returns a cursor over its result rows,
	// in the row shape Columns() describes. masks/sortOrder are hints an
	// executor may use to push a predicate/sort down; a simple
	// implementation may ignore both and always materialize the whole
	// result.
	Execute(session database.Session, masks []index.Mask, sortOrder index.SortOrder) (index.Cursor, error)
}

// QueryCompiler parses view SQL text into an executable Query. A
// non-query result (e.g. an INSERT) must be reported as an error, per
// spec.md §4.6 step 1.
type QueryCompiler interface {
	Compile(sql string) (Query, error)
}

// Registrar tracks view-to-table dependencies so a table drop can find
// (and invalidate or cascade to) every view built on it, and resolves a
// referenced table's current modification watermark so a view's cache
// can be invalidated the moment one of its source tables changes, not
// just when the view itself is recompiled.
type Registrar interface {
	AddDependency(table string, dependent catalog.ObjectRef)
	RemoveDependency(table string, dependent catalog.ObjectRef)
	// TableModificationID returns the named table's current
	// LastModificationID, or false if the table is unknown (e.g. it was
	// dropped out from under the view).
	TableModificationID(table string) (int64, bool)
}

// sliceCursor adapts a materialized row slice to index.Cursor for the
// view-index cache's Scan path.
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

// cacheKey identifies one QueryExpressionIndex cache slot: a view plus
// the predicate-mask/sort-order shape it was built for (spec.md §4.6
// step 4's "keyed by (predicateMasks, view)").
type cacheKey struct {
	view string
	mask string
	sort string
}

// cacheEntry is what a session's view-index cache stores per key: the
// materialized rows plus the view's modification id as of when they were
// built, so a later read can tell whether the entry is stale.
type cacheEntry struct {
	rows  []*row.Row
	modID int64
}

// TableView is the spec.md §4.6 view: a virtual table backed by a
// compiled query, registered as a dependent of every table the query
// reads, with a per-session query-expression-index cache.
type TableView struct {
	*catalog.Common
	DB database.Database

	mu          sync.RWMutex
	querySQL    string
	compiler    QueryCompiler
	registrar   Registrar
	query       Query
	refTables   []string
	dependents  []*TableView
	lastModID   int64
	invalid     bool
	createErr   error
}

// NewTableView compiles querySQL, initializes columns from its
// projection (overridden by templates where present), and registers the
// view as a dependent of every table it reads — spec.md §4.6 steps 1-3.
func NewTableView(cc *catalog.Common, db database.Database, compiler QueryCompiler, registrar Registrar, querySQL string, templates []ColumnTemplate) (*TableView, error) {
	v := &TableView{
		Common:    cc,
		DB:        db,
		querySQL:  querySQL,
		compiler:  compiler,
		registrar: registrar,
	}
	if err := v.compile(templates); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *TableView) compile(templates []ColumnTemplate) error {
	q, err := v.compiler.Compile(v.querySQL)
	if err != nil {
		return err
	}

	cols, err := buildColumns(v.Common.Ref.Name, q.Columns(), templates)
	if err != nil {
		return err
	}

	v.Common.ResetColumns()
	for _, c := range cols {
		if err := v.Common.AddColumn(c); err != nil {
			return err
		}
	}

	for _, t := range v.refTables {
		if v.registrar != nil {
			v.registrar.RemoveDependency(t, v.Common.Ref)
		}
	}
	v.refTables = q.ReferencedTables()
	for _, t := range v.refTables {
		if v.registrar != nil {
			v.registrar.AddDependency(t, v.Common.Ref)
		}
	}

	v.query = q
	v.lastModID = v.DB.NextModificationDataID()
	v.invalid = false
	v.createErr = nil
	return nil
}

func buildColumns(viewName string, projection []ProjectedColumn, templates []ColumnTemplate) ([]*catalog.Column, error) {
	out := make([]*catalog.Column, len(projection))
	for i, p := range projection {
		name := p.Name
		typ := p.Type
		if i < len(templates) {
			if templates[i].Name != "" {
				name = templates[i].Name
			}
			if templates[i].Type != nil {
				typ = *templates[i].Type
			}
		}
		if name == "" {
			return nil, ErrColumnAliasNotSpecified(viewName, i)
		}
		out[i] = &catalog.Column{Name: name, Type: typ, Nullable: true, Visible: true}
	}
	return out, nil
}

// Ref returns the view's schema-object identity.
func (v *TableView) Ref() catalog.ObjectRef { return v.Common.Ref }

// QuerySQL returns the view's defining query text, for metadata surfaces
// (pkg/metatable's VIEWS kind) and DDL script export.
func (v *TableView) QuerySQL() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.querySQL
}

// Indexes always returns empty: a view has no durable secondary indexes
// of its own — row access goes through Scan's per-session cache instead.
func (v *TableView) Indexes() []index.Index { return nil }

// RowCount does not execute the view's query: it reports 0 for an
// invalid view and -1 (unknown) otherwise.
func (v *TableView) RowCount() int64 {
	v.mu.RLock()
	invalid := v.invalid
	v.mu.RUnlock()
	if invalid {
		return 0
	}
	return -1 // unknown without a session to execute against
}

func (v *TableView) LastModificationID() int64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.lastModID
}

// IsPersistent reports false: a view's rows are never stored, only its
// definition.
func (v *TableView) IsPersistent() bool { return false }

// IsInvalid reports whether the view's last recompile failed and was
// force-marked invalid rather than propagated (spec.md §4.6 step 5).
func (v *TableView) IsInvalid() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.invalid
}

// AddDependentView registers dep as recompiling whenever v recompiles
// (spec.md §4.6 step 5's "recursively recompiles dependent views").
func (v *TableView) AddDependentView(dep *TableView) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dependents = append(v.dependents, dep)
}

// Recompile re-parses the view's stored query and refreshes its columns
// and table dependencies, then recursively recompiles every dependent
// view. On failure: if force is false the error propagates to the
// caller; if force is true the view is marked invalid (rejecting Scan
// until repaired) and the failure is swallowed here, per spec.md §4.6
// step 5.
func (v *TableView) Recompile(templates []ColumnTemplate, force bool) error {
	v.mu.Lock()
	err := v.compile(templates)
	if err != nil {
		if !force {
			v.mu.Unlock()
			return err
		}
		v.invalid = true
		v.createErr = err
	}
	dependents := append([]*TableView(nil), v.dependents...)
	v.mu.Unlock()

	for _, dep := range dependents {
		_ = dep.Recompile(nil, force)
	}
	return nil
}

// Scan resolves the view's rows for the given predicate/sort shape,
// consulting the session's per-view-expression-index cache first
// (spec.md §4.6 step 4): a cache hit is reused only if its stored
// modification id still matches the view's effective modification id —
// the view's own lastModID together with every referenced table's
// current LastModificationID (spec.md §8's invariant that a view's
// modification id tracks max t∈T t.maxDataModificationId). A mutation to
// any table the query reads advances that table's own modification id,
// which is enough to invalidate the cache without the view itself ever
// recompiling.
func (v *TableView) Scan(session database.Session, masks []index.Mask, sortOrder index.SortOrder) (index.Cursor, error) {
	v.mu.RLock()
	invalid := v.invalid
	createErr := v.createErr
	query := v.query
	modID := v.lastModID
	refTables := append([]string(nil), v.refTables...)
	registrar := v.registrar
	v.mu.RUnlock()

	if invalid {
		return nil, ErrViewIsInvalid(v.Common.Ref.Name, createErr)
	}

	modID = effectiveModificationID(modID, refTables, registrar)

	key := cacheKey{view: v.Common.Ref.External, mask: fmt.Sprint(masks), sort: fmt.Sprint(sortOrder)}
	if cached, ok := session.ViewCacheGet(key); ok {
		if entry, ok := cached.(*cacheEntry); ok && entry.modID == modID {
			return newSliceCursor(entry.rows), nil
		}
	}

	cur, err := query.Execute(session, masks, sortOrder)
	if err != nil {
		return nil, err
	}
	var rows []*row.Row
	for cur.Next() {
		rows = append(rows, cur.Row())
	}
	_ = cur.Close()

	session.ViewCachePut(key, &cacheEntry{rows: rows, modID: modID})
	return newSliceCursor(rows), nil
}

// effectiveModificationID folds a view's own modification id together
// with the current modification id of every table it reads, so a
// change to any source table is visible as a change to the view without
// requiring the view to recompile.
func effectiveModificationID(viewModID int64, refTables []string, registrar Registrar) int64 {
	if registrar == nil {
		return viewModID
	}
	max := viewModID
	for _, t := range refTables {
		if id, ok := registrar.TableModificationID(t); ok && id > max {
			max = id
		}
	}
	return max
}
