package view

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/database"
	"github.com/kasuganosora/tablecore/pkg/index"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// fakeQuery is a stub Query for tests: fixed columns/referenced tables,
// serving whatever rows were installed.
type fakeQuery struct {
	cols []ProjectedColumn
	refs []string
	rows []*row.Row
	err  error
}

func (q *fakeQuery) Columns() []ProjectedColumn   { return q.cols }
func (q *fakeQuery) ReferencedTables() []string   { return q.refs }
func (q *fakeQuery) Execute(_ database.Session, _ []index.Mask, _ index.SortOrder) (index.Cursor, error) {
	if q.err != nil {
		return nil, q.err
	}
	return newSliceCursor(q.rows), nil
}

// fakeCompiler returns a fixed query, or fails if failNext is set.
type fakeCompiler struct {
	query    Query
	failNext bool
}

func (c *fakeCompiler) Compile(sql string) (Query, error) {
	if c.failNext {
		return nil, errors.New("stub compile failure")
	}
	return c.query, nil
}

// fakeRegistrar records dependency add/remove calls and serves
// caller-controlled modification ids for referenced tables.
type fakeRegistrar struct {
	added   []string
	removed []string
	modIDs  map[string]int64
}

func (r *fakeRegistrar) AddDependency(table string, dependent catalog.ObjectRef) {
	r.added = append(r.added, table)
}
func (r *fakeRegistrar) RemoveDependency(table string, dependent catalog.ObjectRef) {
	r.removed = append(r.removed, table)
}
func (r *fakeRegistrar) TableModificationID(table string) (int64, bool) {
	id, ok := r.modIDs[table]
	return id, ok
}

func newTestDB(t *testing.T) (*database.DB, database.Session) {
	t.Helper()
	db := database.NewDB()
	sess := database.NewCoreSession(db, 1, "tester", time.Second)
	return db, sess
}

func newViewCommon(name string) *catalog.Common {
	ref := catalog.NewObjectRef(1, catalog.KindView, "", name)
	return catalog.NewCommon(ref, catalog.CompareUpper, 100)
}

func TestTableView_CompilesColumnsAndRegistersDependency(t *testing.T) {
	db, _ := newTestDB(t)
	q := &fakeQuery{
		cols: []ProjectedColumn{{Name: "id", Type: value.TypeInfo{Kind: value.KindInt}}},
		refs: []string{"people"},
	}
	compiler := &fakeCompiler{query: q}
	reg := &fakeRegistrar{}

	tv, err := NewTableView(newViewCommon("v1"), db, compiler, reg, "SELECT id FROM people", nil)
	require.NoError(t, err)

	assert.Len(t, tv.Columns(), 1)
	assert.Equal(t, "id", tv.Columns()[0].Name)
	assert.Equal(t, []string{"people"}, reg.added)
}

func TestTableView_ColumnTemplateOverridesName(t *testing.T) {
	db, _ := newTestDB(t)
	q := &fakeQuery{cols: []ProjectedColumn{{Name: "", Type: value.TypeInfo{Kind: value.KindInt}}}}
	compiler := &fakeCompiler{query: q}

	_, err := NewTableView(newViewCommon("v2"), db, compiler, nil, "SELECT 1", nil)
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeColumnAliasNotSpecified, code)

	typ := value.TypeInfo{Kind: value.KindInt}
	tv, err := NewTableView(newViewCommon("v2"), db, compiler, nil, "SELECT 1", []ColumnTemplate{{Name: "one", Type: &typ}})
	require.NoError(t, err)
	assert.Equal(t, "one", tv.Columns()[0].Name)
}

func TestTableView_ScanCachesUntilModificationAdvances(t *testing.T) {
	db, sess := newTestDB(t)
	rows := []*row.Row{row.New(row.Key(1), []value.Value{value.NewInt(1)})}
	q := &fakeQuery{
		cols: []ProjectedColumn{{Name: "id", Type: value.TypeInfo{Kind: value.KindInt}}},
		rows: rows,
	}
	compiler := &fakeCompiler{query: q}

	tv, err := NewTableView(newViewCommon("v3"), db, compiler, nil, "SELECT id FROM people", nil)
	require.NoError(t, err)

	cur, err := tv.Scan(sess, nil, nil)
	require.NoError(t, err)
	var got []*row.Row
	for cur.Next() {
		got = append(got, cur.Row())
	}
	assert.Len(t, got, 1)

	// Mutate the underlying rows without recompiling and with no
	// registrar (so no referenced table's modification id could have
	// advanced either): the cached scan result should still be returned.
	q.rows = append(q.rows, row.New(row.Key(2), []value.Value{value.NewInt(2)}))
	cur2, err := tv.Scan(sess, nil, nil)
	require.NoError(t, err)
	var got2 []*row.Row
	for cur2.Next() {
		got2 = append(got2, cur2.Row())
	}
	assert.Len(t, got2, 1, "stale cache entry should be reused until the view recompiles")

	require.NoError(t, tv.Recompile(nil, false))
	cur3, err := tv.Scan(sess, nil, nil)
	require.NoError(t, err)
	var got3 []*row.Row
	for cur3.Next() {
		got3 = append(got3, cur3.Row())
	}
	assert.Len(t, got3, 2, "recompile bumps the modification id, invalidating the cache")
}

func TestTableView_ScanInvalidatesWhenReferencedTableModifies(t *testing.T) {
	db, sess := newTestDB(t)
	rows := []*row.Row{row.New(row.Key(1), []value.Value{value.NewInt(1)})}
	q := &fakeQuery{
		cols: []ProjectedColumn{{Name: "id", Type: value.TypeInfo{Kind: value.KindInt}}},
		refs: []string{"people"},
		rows: rows,
	}
	compiler := &fakeCompiler{query: q}
	reg := &fakeRegistrar{modIDs: map[string]int64{"people": 1}}

	tv, err := NewTableView(newViewCommon("v3b"), db, compiler, reg, "SELECT id FROM people", nil)
	require.NoError(t, err)

	cur, err := tv.Scan(sess, nil, nil)
	require.NoError(t, err)
	var got []*row.Row
	for cur.Next() {
		got = append(got, cur.Row())
	}
	assert.Len(t, got, 1)

	// Mutate the underlying rows and bump the referenced table's
	// modification id, without ever recompiling the view itself: the
	// cache must invalidate anyway.
	q.rows = append(q.rows, row.New(row.Key(2), []value.Value{value.NewInt(2)}))
	reg.modIDs["people"] = 2

	cur2, err := tv.Scan(sess, nil, nil)
	require.NoError(t, err)
	var got2 []*row.Row
	for cur2.Next() {
		got2 = append(got2, cur2.Row())
	}
	assert.Len(t, got2, 2, "a referenced table's modification id advancing must invalidate the view's cache without a Recompile")
}

func TestTableView_RecompileForceMarksInvalid(t *testing.T) {
	db, _ := newTestDB(t)
	q := &fakeQuery{cols: []ProjectedColumn{{Name: "id", Type: value.TypeInfo{Kind: value.KindInt}}}}
	compiler := &fakeCompiler{query: q}

	tv, err := NewTableView(newViewCommon("v4"), db, compiler, nil, "SELECT id FROM people", nil)
	require.NoError(t, err)

	compiler.failNext = true
	require.NoError(t, tv.Recompile(nil, true))
	assert.True(t, tv.IsInvalid())

	_, sess := newTestDB(t)
	_, err = tv.Scan(sess, nil, nil)
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeViewIsInvalid, code)
}

func TestTableView_RecompileWithoutForcePropagatesError(t *testing.T) {
	db, _ := newTestDB(t)
	q := &fakeQuery{cols: []ProjectedColumn{{Name: "id", Type: value.TypeInfo{Kind: value.KindInt}}}}
	compiler := &fakeCompiler{query: q}

	tv, err := NewTableView(newViewCommon("v5"), db, compiler, nil, "SELECT id FROM people", nil)
	require.NoError(t, err)

	compiler.failNext = true
	err = tv.Recompile(nil, false)
	require.Error(t, err)
	assert.False(t, tv.IsInvalid())
}

func TestTableView_RecompileCascadesToDependents(t *testing.T) {
	db, _ := newTestDB(t)
	q := &fakeQuery{cols: []ProjectedColumn{{Name: "id", Type: value.TypeInfo{Kind: value.KindInt}}}}
	compiler := &fakeCompiler{query: q}

	base, err := NewTableView(newViewCommon("base"), db, compiler, nil, "SELECT id FROM people", nil)
	require.NoError(t, err)
	dep, err := NewTableView(newViewCommon("dep"), db, compiler, nil, "SELECT id FROM base", nil)
	require.NoError(t, err)
	base.AddDependentView(dep)

	before := dep.LastModificationID()
	require.NoError(t, base.Recompile(nil, false))
	assert.Greater(t, dep.LastModificationID(), before)
}
