package catalog

import (
	"testing"

	"github.com/kasuganosora/tablecore/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommon_AddColumnAndFind(t *testing.T) {
	ref := NewObjectRef(1, KindTable, "public", "orders")
	c := NewCommon(ref, CompareUpper, 2)

	require.NoError(t, c.AddColumn(&Column{Name: "id", Type: value.TypeInfo{Kind: value.KindInt}}))
	require.NoError(t, c.AddColumn(&Column{Name: "total", Type: value.TypeInfo{Kind: value.KindFloat}}))

	err := c.AddColumn(&Column{Name: "extra", Type: value.TypeInfo{Kind: value.KindString}})
	assert.Error(t, err)
	code, _ := CodeOf(err)
	assert.Equal(t, CodeTooManyColumns, code)

	col, err := c.FindColumn("id")
	require.NoError(t, err)
	assert.Equal(t, 0, col.ColumnID)

	// case-folded lookup
	col2, err := c.FindColumn("ID")
	require.NoError(t, err)
	assert.Same(t, col, col2)
}

func TestCommon_DuplicateColumnName(t *testing.T) {
	ref := NewObjectRef(1, KindTable, "", "t")
	c := NewCommon(ref, CompareUpper, 10)
	require.NoError(t, c.AddColumn(&Column{Name: "a"}))

	err := c.AddColumn(&Column{Name: "A"})
	assert.Error(t, err)
	code, _ := CodeOf(err)
	assert.Equal(t, CodeDuplicateColumnName, code)
}

func TestCommon_RenameColumn(t *testing.T) {
	ref := NewObjectRef(1, KindTable, "", "t")
	c := NewCommon(ref, CompareUpper, 10)
	require.NoError(t, c.AddColumn(&Column{Name: "a"}))

	require.NoError(t, c.RenameColumn("a", "b"))
	_, err := c.FindColumn("a")
	assert.Error(t, err)
	col, err := c.FindColumn("b")
	require.NoError(t, err)
	assert.Equal(t, "b", col.Name)
}
