package table

import (
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

func newTestDB(t *testing.T, opts ...database.Option) (*database.DB, *database.CoreSession) {
	t.Helper()
	db := database.NewDB(opts...)
	sess := database.NewCoreSession(db, 1, "tester", time.Second)
	return db, sess
}

func intColumn(name string) *catalog.Column {
	return &catalog.Column{Name: name, Type: value.TypeInfo{Kind: value.KindInt}, Nullable: true}
}

func newTestTable(t *testing.T, db *database.DB, colNames ...string) *RegularTable {
	t.Helper()
	ref := catalog.NewObjectRef(1, catalog.KindTable, "", "people")
	cc := catalog.NewCommon(ref, catalog.CompareUpper, 100)
	for _, name := range colNames {
		require.NoError(t, cc.AddColumn(intColumn(name)))
	}
	return NewRegularTable(cc, db, index.NewScanIndex(), false)
}

func TestRegularTable_AddRowAcrossIndexes(t *testing.T) {
	db, sess := newTestDB(t)
	tbl := newTestTable(t, db, "id", "age")
	sec := index.NewMemoryIndex([]int{1}, false, index.TypeHash)
	require.NoError(t, tbl.BuildIndex(sess, sec))

	r, err := tbl.AddRow(sess, []value.Value{value.NewInt(1), value.NewInt(30)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), tbl.RowCount())
	assert.Equal(t, int64(1), tbl.indexes[0].RowCount())
	assert.Equal(t, int64(1), sec.RowCount())
	assert.Equal(t, row.Key(0), r.Key)
}

func TestRegularTable_AddRowUndoesOnSecondaryFailure(t *testing.T) {
	db, sess := newTestDB(t)
	tbl := newTestTable(t, db, "id")
	unique := index.NewMemoryIndex([]int{0}, true, index.TypeUnique)
	require.NoError(t, tbl.BuildIndex(sess, unique))

	_, err := tbl.AddRow(sess, []value.Value{value.NewInt(5)})
	require.NoError(t, err)

	_, err = tbl.AddRow(sess, []value.Value{value.NewInt(5)})
	require.Error(t, err)

	assert.Equal(t, int64(1), tbl.RowCount())
	assert.Equal(t, int64(1), tbl.indexes[0].RowCount(), "scan index add must be undone on secondary failure")
	assert.Equal(t, int64(1), unique.RowCount())
}

func TestRegularTable_RemoveRow(t *testing.T) {
	db, sess := newTestDB(t)
	tbl := newTestTable(t, db, "id")
	sec := index.NewMemoryIndex([]int{0}, false, index.TypeHash)
	require.NoError(t, tbl.BuildIndex(sess, sec))

	r, err := tbl.AddRow(sess, []value.Value{value.NewInt(7)})
	require.NoError(t, err)

	require.NoError(t, tbl.RemoveRow(sess, r))
	assert.Equal(t, int64(0), tbl.RowCount())
	assert.Equal(t, int64(0), sec.RowCount())
}

func TestRegularTable_RemoveRowNotFound(t *testing.T) {
	db, sess := newTestDB(t)
	tbl := newTestTable(t, db, "id")

	ghost := row.New(row.Key(999), []value.Value{value.NewInt(1)})
	err := tbl.RemoveRow(sess, ghost)
	assert.Error(t, err)
}

func TestRegularTable_UpdateRowPreservesKey(t *testing.T) {
	db, sess := newTestDB(t)
	tbl := newTestTable(t, db, "id", "age")

	r, err := tbl.AddRow(sess, []value.Value{value.NewInt(1), value.NewInt(30)})
	require.NoError(t, err)

	updated, err := tbl.UpdateRow(sess, r, []value.Value{value.NewInt(1), value.NewInt(31)})
	require.NoError(t, err)
	assert.Equal(t, r.Key, updated.Key)
	assert.Equal(t, int64(1), tbl.RowCount())
}

func TestRegularTable_Truncate(t *testing.T) {
	db, sess := newTestDB(t)
	tbl := newTestTable(t, db, "id")
	sec := index.NewMemoryIndex([]int{0}, false, index.TypeHash)
	require.NoError(t, tbl.BuildIndex(sess, sec))

	_, err := tbl.AddRow(sess, []value.Value{value.NewInt(1)})
	require.NoError(t, err)
	_, err = tbl.AddRow(sess, []value.Value{value.NewInt(2)})
	require.NoError(t, err)

	require.NoError(t, tbl.Truncate(sess))
	assert.Equal(t, int64(0), tbl.RowCount())
	assert.Equal(t, int64(0), sec.RowCount())
}

func TestRegularTable_TruncateRefusedWhenReferencedByFK(t *testing.T) {
	db, sess := newTestDB(t)
	tbl := newTestTable(t, db, "id")
	tbl.SetReferencedByFK(func() bool { return true })

	err := tbl.Truncate(sess)
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeColumnIsReferenced, code)
}

func TestRegularTable_TruncateAllowedWhenIntegrityOff(t *testing.T) {
	db, sess := newTestDB(t, database.WithReferentialIntegrity(database.ReferentialIntegrityOff))
	tbl := newTestTable(t, db, "id")
	tbl.SetReferencedByFK(func() bool { return true })

	require.NoError(t, tbl.Truncate(sess))
}

// rebuildIndex wraps a MemoryIndex and reports NeedRebuild() as its
// needsRebuild field says, so BuildIndex's batch sort-then-load path can
// be exercised directly.
type rebuildIndex struct {
	*index.MemoryIndex
	needsRebuild bool
}

func (r *rebuildIndex) NeedRebuild() bool { return r.needsRebuild }

func TestRegularTable_BuildIndexRebuildsFromScan(t *testing.T) {
	db, sess := newTestDB(t, database.WithSettings(database.Settings{MaxColumnsPerTable: 100, IndexBuildBatchSize: 1}))
	tbl := newTestTable(t, db, "id")

	_, err := tbl.AddRow(sess, []value.Value{value.NewInt(3)})
	require.NoError(t, err)
	_, err = tbl.AddRow(sess, []value.Value{value.NewInt(1)})
	require.NoError(t, err)
	_, err = tbl.AddRow(sess, []value.Value{value.NewInt(2)})
	require.NoError(t, err)

	sec := &rebuildIndex{MemoryIndex: index.NewMemoryIndex([]int{0}, false, index.TypeHash), needsRebuild: true}
	require.NoError(t, tbl.BuildIndex(sess, sec))
	assert.Equal(t, int64(3), sec.RowCount())
}

func TestRegularTable_DropIndexRejectsScanIndex(t *testing.T) {
	db, sess := newTestDB(t)
	tbl := newTestTable(t, db, "id")

	err := tbl.DropIndex(sess, tbl.indexes[0])
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeIndexNotFound, code)
}

func TestRegularTable_DropIndexRemovesSecondary(t *testing.T) {
	db, sess := newTestDB(t)
	tbl := newTestTable(t, db, "id")
	sec := index.NewMemoryIndex([]int{0}, false, index.TypeHash)
	require.NoError(t, tbl.BuildIndex(sess, sec))
	require.Len(t, tbl.Indexes(), 2)

	require.NoError(t, tbl.DropIndex(sess, sec))
	assert.Len(t, tbl.Indexes(), 1)
}

func TestRegularTable_LastModificationIDBumpsOnMutation(t *testing.T) {
	db, sess := newTestDB(t)
	tbl := newTestTable(t, db, "id")

	before := tbl.LastModificationID()
	_, err := tbl.AddRow(sess, []value.Value{value.NewInt(1)})
	require.NoError(t, err)
	assert.Greater(t, tbl.LastModificationID(), before)
}
