package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

func openTestStore(t *testing.T) *CachedRowStore {
	t.Helper()
	s, err := Open(":memory:", "people")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCachedRowStore_AddFindRemove(t *testing.T) {
	s := openTestStore(t)

	r1 := row.New(1, []value.Value{value.NewInt(1), value.NewString("ada")})
	r2 := row.New(2, []value.Value{value.NewInt(2), value.NewString("grace")})
	require.NoError(t, s.Add(nil, r1))
	require.NoError(t, s.Add(nil, r2))
	assert.EqualValues(t, 2, s.RowCount())

	cur, err := s.Find(nil, nil, nil)
	require.NoError(t, err)
	var names []string
	for cur.Next() {
		names = append(names, cur.Row().Values[1].Raw.(string))
	}
	assert.Equal(t, []string{"ada", "grace"}, names)

	require.NoError(t, s.Remove(nil, r1))
	assert.EqualValues(t, 1, s.RowCount())
}

func TestCachedRowStore_AddRejectsDuplicateKey(t *testing.T) {
	s := openTestStore(t)
	r := row.New(1, []value.Value{value.NewInt(1)})
	require.NoError(t, s.Add(nil, r))
	require.Error(t, s.Add(nil, r))
}

func TestCachedRowStore_Truncate(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Add(nil, row.New(1, []value.Value{value.NewInt(1)})))
	require.NoError(t, s.Add(nil, row.New(2, []value.Value{value.NewInt(2)})))

	require.NoError(t, s.Truncate(nil))
	assert.Zero(t, s.RowCount())
}

func TestCachedRowStore_SurvivesReopen(t *testing.T) {
	dsn := t.TempDir() + "/rows.db"

	s1, err := Open(dsn, "people")
	require.NoError(t, err)
	require.NoError(t, s1.Add(nil, row.New(1, []value.Value{value.NewInt(1), value.NewString("ada")})))
	require.NoError(t, s1.Close())

	s2, err := Open(dsn, "people")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s2.Close() })

	assert.EqualValues(t, 1, s2.RowCount())
	cur, err := s2.Find(nil, nil, nil)
	require.NoError(t, err)
	require.True(t, cur.Next())
	assert.Equal(t, "ada", cur.Row().Values[1].Raw.(string))
}

func TestCachedRowStore_FindRespectsSearchBounds(t *testing.T) {
	s := openTestStore(t)
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, s.Add(nil, row.New(row.Key(i), []value.Value{value.NewInt(i)})))
	}

	start := row.NewSearchRow(1)
	start.Bind(0, value.NewInt(3))
	cur, err := s.Find(nil, start, nil)
	require.NoError(t, err)
	var count int
	for cur.Next() {
		count++
	}
	assert.Equal(t, 3, count)
}
