package index

import (
	"testing"

	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndex_SortedInsertAndFind(t *testing.T) {
	idx := NewMemoryIndex([]int{0}, false, TypeScan)
	sess := fakeSession{id: 1}

	rows := []*row.Row{
		row.New(1, []value.Value{value.NewInt(30)}),
		row.New(2, []value.Value{value.NewInt(10)}),
		row.New(3, []value.Value{value.NewInt(20)}),
	}
	for _, r := range rows {
		require.NoError(t, idx.Add(sess, r))
	}

	cur, err := idx.Find(sess, nil, nil)
	require.NoError(t, err)
	var got []value.Value
	for cur.Next() {
		got = append(got, cur.Row().Get(0))
	}
	require.Len(t, got, 3)
	v0, _ := got[0].Int64()
	v1, _ := got[1].Int64()
	v2, _ := got[2].Int64()
	assert.Equal(t, []int64{10, 20, 30}, []int64{v0, v1, v2})
}

func TestMemoryIndex_UniqueRejectsDuplicate(t *testing.T) {
	idx := NewMemoryIndex([]int{0}, true, TypeUnique)
	sess := fakeSession{id: 1}
	require.NoError(t, idx.Add(sess, row.New(1, []value.Value{value.NewInt(5)})))
	err := idx.Add(sess, row.New(2, []value.Value{value.NewInt(5)}))
	assert.Error(t, err)
}

func TestMemoryIndex_RemoveAndTruncate(t *testing.T) {
	idx := NewMemoryIndex([]int{0}, false, TypeScan)
	sess := fakeSession{id: 1}
	r := row.New(1, []value.Value{value.NewInt(1)})
	require.NoError(t, idx.Add(sess, r))
	require.NoError(t, idx.Remove(sess, r))
	assert.Equal(t, int64(0), idx.RowCount())

	require.NoError(t, idx.Add(sess, row.New(2, []value.Value{value.NewInt(2)})))
	require.NoError(t, idx.Truncate(sess))
	assert.Equal(t, int64(0), idx.RowCount())
}

func TestMemoryIndex_GetCostFavorsEquality(t *testing.T) {
	idx := NewMemoryIndex([]int{0}, false, TypeScan)
	sess := fakeSession{id: 1}
	for i := int64(1); i <= 100; i++ {
		require.NoError(t, idx.Add(sess, row.New(row.Key(i), []value.Value{value.NewInt(i)})))
	}

	masksEqual := []Mask{MaskEqual}
	masksNone := []Mask{MaskNone}
	all := map[int]bool{0: true}

	eqCost := idx.GetCost(sess, masksEqual, nil, all)
	scanCost := idx.GetCost(sess, masksNone, nil, all)
	assert.Less(t, eqCost.Value, scanCost.Value)
}

func TestMemoryIndex_GetCostPenalizesNonCovering(t *testing.T) {
	idx := NewMemoryIndex([]int{0}, false, TypeScan)
	sess := fakeSession{id: 1}
	for i := int64(1); i <= 10; i++ {
		require.NoError(t, idx.Add(sess, row.New(row.Key(i), []value.Value{value.NewInt(i)})))
	}

	masks := []Mask{MaskEqual}
	covering := idx.GetCost(sess, masks, nil, map[int]bool{0: true})
	nonCovering := idx.GetCost(sess, masks, nil, map[int]bool{0: true, 1: true})
	assert.Less(t, covering.Value, nonCovering.Value)
}

func TestMemoryIndex_ColumnIndexAndFirstColumn(t *testing.T) {
	idx := NewMemoryIndex([]int{2, 0}, false, TypeScan)
	assert.Equal(t, 0, idx.ColumnIndex(2))
	assert.Equal(t, 1, idx.ColumnIndex(0))
	assert.Equal(t, -1, idx.ColumnIndex(5))
	assert.True(t, idx.IsFirstColumn(2))
	assert.False(t, idx.IsFirstColumn(0))
}
