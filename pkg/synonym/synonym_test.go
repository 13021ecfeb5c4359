package synonym

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/index"
)

type fakeTarget struct {
	ref      catalog.ObjectRef
	rowCount int64
	modID    int64
}

func (f *fakeTarget) Ref() catalog.ObjectRef        { return f.ref }
func (f *fakeTarget) Columns() []*catalog.Column    { return []*catalog.Column{{Name: "id"}} }
func (f *fakeTarget) Indexes() []index.Index        { return nil }
func (f *fakeTarget) RowCount() int64               { return f.rowCount }
func (f *fakeTarget) LastModificationID() int64     { return f.modID }
func (f *fakeTarget) IsPersistent() bool            { return true }

func TestTableSynonym_ResolvesAndDelegates(t *testing.T) {
	target := &fakeTarget{ref: catalog.NewObjectRef(1, catalog.KindTable, "", "people"), rowCount: 42, modID: 7}
	resolver := func(name string) (Target, bool) {
		if name == "people" {
			return target, true
		}
		return nil, false
	}

	syn := NewTableSynonym(catalog.NewObjectRef(2, catalog.KindSynonym, "", "staff"), "", "people", resolver)

	resolved, err := syn.Resolve()
	require.NoError(t, err)
	assert.Equal(t, target, resolved)
	assert.Equal(t, int64(42), syn.RowCount())
	assert.Equal(t, int64(7), syn.LastModificationID())
	assert.Len(t, syn.Columns(), 1)
	assert.True(t, syn.IsPersistent())
}

func TestTableSynonym_TargetMissing(t *testing.T) {
	resolver := func(name string) (Target, bool) { return nil, false }
	syn := NewTableSynonym(catalog.NewObjectRef(2, catalog.KindSynonym, "", "staff"), "", "people", resolver)

	_, err := syn.Resolve()
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeSynonymTargetMissing, code)

	assert.Equal(t, int64(0), syn.RowCount())
	assert.Nil(t, syn.Columns())
}

func TestTableSynonym_QualifiedTargetName(t *testing.T) {
	var seen string
	resolver := func(name string) (Target, bool) {
		seen = name
		return nil, false
	}
	syn := NewTableSynonym(catalog.NewObjectRef(1, catalog.KindSynonym, "", "s"), "hr", "people", resolver)
	_, _ = syn.Resolve()
	assert.Equal(t, "hr.people", seen)
}

func TestTableSynonym_AsTableRespectsSurfaceSupport(t *testing.T) {
	target := &fakeTarget{ref: catalog.NewObjectRef(1, catalog.KindTable, "", "people")}
	resolver := func(name string) (Target, bool) { return target, true }
	syn := NewTableSynonym(catalog.NewObjectRef(2, catalog.KindSynonym, "", "staff"), "", "people", resolver)

	_, err := syn.AsTable(false)
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeAsTableUnsupported, code)

	resolved, err := syn.AsTable(true)
	require.NoError(t, err)
	assert.Equal(t, target, resolved)
}

func TestTableSynonym_RefIsOwnIdentityNotTargets(t *testing.T) {
	target := &fakeTarget{ref: catalog.NewObjectRef(1, catalog.KindTable, "", "people")}
	resolver := func(name string) (Target, bool) { return target, true }
	own := catalog.NewObjectRef(2, catalog.KindSynonym, "", "staff")
	syn := NewTableSynonym(own, "", "people", resolver)

	assert.Equal(t, own, syn.Ref())
	assert.NotEqual(t, target.Ref(), syn.Ref())
}
