package index

import (
	"testing"

	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct{ id int64 }

func (f fakeSession) SessionID() int64 { return f.id }

func TestScanIndex_AddFindRemove(t *testing.T) {
	s := NewScanIndex()
	sess := fakeSession{id: 1}

	r1 := row.New(1, []value.Value{value.NewInt(1), value.NewString("a")})
	r2 := row.New(2, []value.Value{value.NewInt(2), value.NewString("b")})
	require.NoError(t, s.Add(sess, r1))
	require.NoError(t, s.Add(sess, r2))

	assert.Equal(t, int64(2), s.RowCount())

	cur, err := s.Find(sess, nil, nil)
	require.NoError(t, err)
	var got []row.Key
	for cur.Next() {
		got = append(got, cur.Row().Key)
	}
	assert.Equal(t, []row.Key{1, 2}, got)

	require.NoError(t, s.Remove(sess, r1))
	assert.Equal(t, int64(1), s.RowCount())
}

func TestScanIndex_DuplicateKeyRejected(t *testing.T) {
	s := NewScanIndex()
	sess := fakeSession{id: 1}
	r := row.New(1, []value.Value{value.NewInt(1)})
	require.NoError(t, s.Add(sess, r))
	assert.Error(t, s.Add(sess, r))
}

func TestScanIndex_Truncate(t *testing.T) {
	s := NewScanIndex()
	sess := fakeSession{id: 1}
	require.NoError(t, s.Add(sess, row.New(1, []value.Value{value.NewInt(1)})))
	require.NoError(t, s.Truncate(sess))
	assert.Equal(t, int64(0), s.RowCount())
}

func TestScanIndex_FindWithBounds(t *testing.T) {
	s := NewScanIndex()
	sess := fakeSession{id: 1}
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, s.Add(sess, row.New(row.Key(i), []value.Value{value.NewInt(i)})))
	}

	start := row.NewSearchRow(1)
	start.Bind(0, value.NewInt(2))
	end := row.NewSearchRow(1)
	end.Bind(0, value.NewInt(4))

	cur, err := s.Find(sess, start, end)
	require.NoError(t, err)
	var got []row.Key
	for cur.Next() {
		got = append(got, cur.Row().Key)
	}
	assert.Equal(t, []row.Key{2, 3, 4}, got)
}
