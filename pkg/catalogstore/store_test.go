package catalogstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/tablecore/pkg/catalog"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := openTestStore(t)

	ref := catalog.NewObjectRef(1, catalog.KindTable, "app", "people")
	ref.Comment = "customer roster"
	require.NoError(t, s.Save(ref))

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, ref.External, loaded[0].External)
	assert.Equal(t, ref.Name, loaded[0].Name)
	assert.Equal(t, ref.Schema, loaded[0].Schema)
	assert.Equal(t, ref.Comment, loaded[0].Comment)
	assert.Equal(t, catalog.KindTable, loaded[0].Kind)
}

func TestStore_SaveUpsertsByExternal(t *testing.T) {
	s := openTestStore(t)

	ref := catalog.NewObjectRef(1, catalog.KindTable, "app", "people")
	require.NoError(t, s.Save(ref))

	ref.Name = "persons"
	require.NoError(t, s.Save(ref))

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "persons", loaded[0].Name)
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)

	ref := catalog.NewObjectRef(1, catalog.KindTable, "app", "people")
	require.NoError(t, s.Save(ref))
	require.NoError(t, s.Delete(ref.External))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStore_LoadReturnsMultipleKinds(t *testing.T) {
	s := openTestStore(t)

	table := catalog.NewObjectRef(1, catalog.KindTable, "app", "people")
	view := catalog.NewObjectRef(2, catalog.KindView, "app", "people_view")
	require.NoError(t, s.Save(table))
	require.NoError(t, s.Save(view))

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
}
