package mvcc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	mgr := NewManager(RepeatableRead)
	defer mgr.Close()
	assert.NotNil(t, mgr)
	assert.Equal(t, XIDBootstrap, mgr.CurrentXID())
}

func TestManager_Begin(t *testing.T) {
	mgr := NewManager(RepeatableRead)
	defer mgr.Close()

	txn, snap := mgr.Begin(true)
	require.NotNil(t, txn)
	require.NotNil(t, snap)
	assert.Equal(t, TxnStatusInProgress, txn.Status())
	assert.True(t, txn.IsMVCC())
	assert.Equal(t, XIDBootstrap, txn.XID())
}

func TestManager_Begin_NonMVCC(t *testing.T) {
	mgr := NewManager(RepeatableRead)
	defer mgr.Close()

	txn, snap := mgr.Begin(false)
	require.NotNil(t, txn)
	assert.Nil(t, snap)
	assert.False(t, txn.IsMVCC())
}

func TestManager_Commit(t *testing.T) {
	mgr := NewManager(RepeatableRead)
	defer mgr.Close()

	txn, _ := mgr.Begin(true)
	require.NoError(t, mgr.Commit(txn))
	assert.Equal(t, TxnStatusCommitted, txn.Status())
	assert.False(t, mgr.IsTransactionActive(txn.XID()))
	assert.True(t, mgr.IsCommitted(txn.XID()))
}

func TestManager_Commit_AlreadyGone(t *testing.T) {
	mgr := NewManager(RepeatableRead)
	defer mgr.Close()

	txn, _ := mgr.Begin(true)
	require.NoError(t, mgr.Commit(txn))

	err := mgr.Commit(txn)
	assert.Error(t, err)
}

func TestManager_Rollback(t *testing.T) {
	mgr := NewManager(RepeatableRead)
	defer mgr.Close()

	txn, _ := mgr.Begin(true)
	require.NoError(t, mgr.Rollback(txn))
	assert.Equal(t, TxnStatusAborted, txn.Status())
	assert.False(t, mgr.IsTransactionActive(txn.XID()))
	assert.True(t, mgr.IsAborted(txn.XID()))
}

func TestManager_ListActiveTransactions(t *testing.T) {
	mgr := NewManager(RepeatableRead)
	defer mgr.Close()

	txn1, _ := mgr.Begin(true)
	txn2, _ := mgr.Begin(true)

	active := mgr.ListActiveTransactions()
	assert.Len(t, active, 2)
	assert.Contains(t, active, txn1.XID())
	assert.Contains(t, active, txn2.XID())
}

func TestManager_IsTransactionActive(t *testing.T) {
	mgr := NewManager(RepeatableRead)
	defer mgr.Close()

	txn, _ := mgr.Begin(true)
	assert.True(t, mgr.IsTransactionActive(txn.XID()))
	require.NoError(t, mgr.Commit(txn))
	assert.False(t, mgr.IsTransactionActive(txn.XID()))
}

func TestManager_CurrentXID(t *testing.T) {
	mgr := NewManager(RepeatableRead)
	defer mgr.Close()

	xid1 := mgr.CurrentXID()
	mgr.Begin(true)
	xid2 := mgr.CurrentXID()
	assert.Greater(t, xid2, xid1)
}

func TestManager_NextXID(t *testing.T) {
	mgr := NewManager(RepeatableRead)
	defer mgr.Close()

	txn1, _ := mgr.Begin(true)
	assert.Equal(t, XIDBootstrap, txn1.XID())

	txn2, _ := mgr.Begin(true)
	assert.Equal(t, XIDBootstrap+1, txn2.XID())
}

func TestManager_SnapshotIsolation(t *testing.T) {
	mgr := NewManager(RepeatableRead)
	defer mgr.Close()

	txn1, snap1 := mgr.Begin(true)
	txn2, _ := mgr.Begin(true)

	assert.False(t, snap1.IsActive(txn1.XID()))
	assert.True(t, mgr.IsTransactionActive(txn2.XID()))
}

func TestManager_GetStatistics(t *testing.T) {
	mgr := NewManager(RepeatableRead)
	defer mgr.Close()

	txn1, _ := mgr.Begin(true)
	_, _ = mgr.Begin(true)

	stats := mgr.GetStatistics()
	assert.Equal(t, 2, stats.ActiveCount)

	require.NoError(t, mgr.Commit(txn1))
	stats = mgr.GetStatistics()
	assert.Equal(t, 1, stats.ActiveCount)
	assert.Equal(t, 1, stats.ClogEntries)
}

func TestManager_GC(t *testing.T) {
	mgr := NewManager(RepeatableRead)
	defer mgr.Close()

	txn, _ := mgr.Begin(true)
	require.NoError(t, mgr.Commit(txn))
	assert.Equal(t, 1, mgr.CommitEntryCount())

	mgr.gcCommitStatus(mgr.CurrentXID(), 0)
	assert.Equal(t, 0, mgr.CommitEntryCount())
}

func TestManager_ConcurrentTransactions(t *testing.T) {
	mgr := NewManager(RepeatableRead)
	defer mgr.Close()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			txn, _ := mgr.Begin(true)
			_ = mgr.Commit(txn)
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	stats := mgr.GetStatistics()
	assert.Equal(t, 0, stats.ActiveCount)
}

func TestManager_GetGlobalManager(t *testing.T) {
	mgr1 := GetGlobalManager()
	mgr2 := GetGlobalManager()
	assert.Same(t, mgr1, mgr2)
	assert.NotNil(t, mgr1)
}
