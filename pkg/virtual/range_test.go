package virtual

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/tablecore/pkg/catalog"
)

func rangeRef() catalog.ObjectRef {
	return catalog.NewObjectRef(1, catalog.KindTable, "", "RANGE")
}

func TestRangeTable_AscendingEnumeration(t *testing.T) {
	r := NewRangeTable(rangeRef(), 1, 5, 1)
	n, err := r.RowCount()
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	rows, err := r.GetResult(nil)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	for i, row := range rows {
		assert.EqualValues(t, i+1, row.Values[0].Raw)
	}
}

func TestRangeTable_DescendingStep(t *testing.T) {
	r := NewRangeTable(rangeRef(), 10, 0, -5)
	n, err := r.RowCount()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	rows, err := r.GetResult(nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.EqualValues(t, 10, rows[0].Values[0].Raw)
	assert.EqualValues(t, 5, rows[1].Values[0].Raw)
	assert.EqualValues(t, 0, rows[2].Values[0].Raw)
}

func TestRangeTable_SignMismatchIsEmpty(t *testing.T) {
	r := NewRangeTable(rangeRef(), 1, 5, -1)
	n, err := r.RowCount()
	require.NoError(t, err)
	assert.Zero(t, n)

	rows, err := r.GetResult(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRangeTable_ZeroStepRejected(t *testing.T) {
	r := NewRangeTable(rangeRef(), 1, 5, 0)
	_, err := r.RowCount()
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeStepSizeZero, code)
}
