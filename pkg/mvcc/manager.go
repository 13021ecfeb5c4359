// Package mvcc provides the table layer's transaction-id and
// snapshot-visibility machinery: a Manager that allocates XIDs, tracks
// which ones have committed or aborted, and periodically forgets the
// ones old enough that no live snapshot could still care. Visibility
// itself (Snapshot, TupleVersion, VisibilityChecker in types.go) stays
// an index-internal concern — this package hands out the inputs an
// MVCC-aware index needs, it doesn't store any rows itself.
package mvcc

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

var mvccLog = log.New(os.Stderr, "[mvcc] ", log.LstdFlags)

const (
	// defaultGCInterval is how often the background loop sweeps settled
	// commit-status entries.
	defaultGCInterval = 30 * time.Second
	// defaultRetainWindow is how many XIDs back a settled entry is kept
	// before GC is allowed to forget it.
	defaultRetainWindow = 100000
)

// Manager is the table layer's single MVCC authority: it allocates XIDs,
// tracks every transaction's commit/abort status, builds snapshots for
// new transactions and read-only observers, and reclaims old status
// entries in the background.
//
// Unlike the teacher's manager, this one never arbitrates across
// multiple external data sources with different MVCC capability levels
// — there is one engine, not a federation, so each table/index simply
// declares whether it wants MVCC semantics when it calls Begin.
type Manager struct {
	mu sync.Mutex

	nextXid    XID
	activeXids map[XID]*Transaction
	level      IsolationLevel

	// commitStatus and oldestCommit are this manager's own commit log:
	// the final status landed for every XID not yet garbage collected.
	commitStatus map[XID]TransactionStatus
	oldestCommit XID

	gcInterval time.Duration
	retain     uint32
	gcStop     chan struct{}
	gcStopped  bool
}

var (
	globalManager     *Manager
	globalManagerOnce sync.Once
)

// GetGlobalManager returns the process-wide default Manager, created on
// first use.
func GetGlobalManager() *Manager {
	globalManagerOnce.Do(func() {
		globalManager = NewManager(RepeatableRead)
	})
	return globalManager
}

// NewManager creates a Manager that hands out XIDs starting at
// XIDBootstrap and starts its background GC loop.
func NewManager(level IsolationLevel) *Manager {
	m := &Manager{
		nextXid:      XIDBootstrap,
		activeXids:   make(map[XID]*Transaction),
		level:        level,
		commitStatus: make(map[XID]TransactionStatus),
		oldestCommit: XIDBootstrap,
		gcInterval:   defaultGCInterval,
		retain:       defaultRetainWindow,
		gcStop:       make(chan struct{}),
	}
	go m.gcLoop()
	return m
}

// Close stops the background GC loop. The manager can still allocate
// and settle transactions afterward; it just no longer reclaims old
// commit-status entries on its own.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gcStopped {
		return
	}
	m.gcStopped = true
	close(m.gcStop)
}

// nextXID allocates the next XID, warning on wraparound (a sign the
// manager has been running an extremely long time).
func (m *Manager) nextXID() XID {
	xid := m.nextXid
	next := NextXID(xid)
	if next == XIDBootstrap {
		m.warning("XID counter wrapped around, restarting from bootstrap")
	}
	m.nextXid = next
	return xid
}

// CurrentXID returns the next XID to be allocated, without consuming it.
func (m *Manager) CurrentXID() XID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextXid
}

// Begin opens a new transaction and returns it along with the snapshot
// it should see. When mvccEnabled is false, Begin takes the cheaper
// beginNonMVCC path: no snapshot is built, and the caller is expected to
// fall back to lock-based serialization (pkg/lock) for visibility.
func (m *Manager) Begin(mvccEnabled bool) (*Transaction, *Snapshot) {
	if !mvccEnabled {
		return m.beginNonMVCC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	xid := m.nextXID()
	txn := NewTransaction(xid, m.level, true)
	m.activeXids[xid] = txn

	snap := m.buildSnapshotLocked(xid)
	txn.SetSnapshot(snap)

	return txn, snap
}

func (m *Manager) beginNonMVCC() (*Transaction, *Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	xid := m.nextXID()
	txn := NewTransaction(xid, ReadCommitted, false)
	m.activeXids[xid] = txn
	return txn, nil
}

// buildSnapshotLocked requires m.mu to already be held.
func (m *Manager) buildSnapshotLocked(selfXid XID) *Snapshot {
	xip := make([]XID, 0, len(m.activeXids))
	xmin := selfXid
	for xid := range m.activeXids {
		if xid == selfXid {
			continue
		}
		xip = append(xip, xid)
		if xid < xmin {
			xmin = xid
		}
	}
	return NewSnapshot(xmin, m.nextXid, xip, m.level)
}

// Commit settles txn as committed and drops it from the active set.
func (m *Manager) Commit(txn *Transaction) error {
	if txn == nil {
		return fmt.Errorf("mvcc: cannot commit a nil transaction")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	xid := txn.XID()
	if _, ok := m.activeXids[xid]; !ok {
		return fmt.Errorf("mvcc: transaction %s is not active", xid)
	}

	m.recordCommitStatusLocked(xid, TxnStatusCommitted)
	delete(m.activeXids, xid)
	txn.MarkCommitted()
	return nil
}

// Rollback settles txn as aborted and drops it from the active set.
func (m *Manager) Rollback(txn *Transaction) error {
	if txn == nil {
		return fmt.Errorf("mvcc: cannot roll back a nil transaction")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	xid := txn.XID()
	if _, ok := m.activeXids[xid]; !ok {
		return fmt.Errorf("mvcc: transaction %s is not active", xid)
	}

	m.recordCommitStatusLocked(xid, TxnStatusAborted)
	delete(m.activeXids, xid)
	txn.MarkAborted()
	return nil
}

// GetSnapshot builds a fresh snapshot for a read-only observer that
// isn't itself opening a transaction.
func (m *Manager) GetSnapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buildSnapshotLocked(m.nextXid)
}

// recordCommitStatusLocked requires m.mu to already be held.
func (m *Manager) recordCommitStatusLocked(xid XID, status TransactionStatus) {
	m.commitStatus[xid] = status
	if xid < m.oldestCommit {
		m.oldestCommit = xid
	}
}

// IsCommitted reports whether xid's final status, if known, is
// committed.
func (m *Manager) IsCommitted(xid XID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commitStatus[xid] == TxnStatusCommitted
}

// IsAborted reports whether xid's final status, if known, is aborted.
func (m *Manager) IsAborted(xid XID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commitStatus[xid] == TxnStatusAborted
}

// CommitEntryCount returns how many settled XIDs are still tracked.
func (m *Manager) CommitEntryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.commitStatus)
}

// OldestCommitXID returns the smallest settled XID still tracked.
func (m *Manager) OldestCommitXID() XID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.oldestCommit
}

// ListActiveTransactions returns the XIDs currently open, for
// diagnostics.
func (m *Manager) ListActiveTransactions() []XID {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]XID, 0, len(m.activeXids))
	for xid := range m.activeXids {
		result = append(result, xid)
	}
	return result
}

// IsTransactionActive reports whether xid is currently open.
func (m *Manager) IsTransactionActive(xid XID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.activeXids[xid]
	return ok
}

// ManagerStatistics is a point-in-time snapshot of a Manager's state,
// for monitoring.
type ManagerStatistics struct {
	NextXID       XID
	ActiveCount   int
	ClogEntries   int
	ClogOldestXID XID
}

// GetStatistics reports the manager's current counters.
func (m *Manager) GetStatistics() ManagerStatistics {
	m.mu.Lock()
	defer m.mu.Unlock()

	return ManagerStatistics{
		NextXID:       m.nextXid,
		ActiveCount:   len(m.activeXids),
		ClogEntries:   len(m.commitStatus),
		ClogOldestXID: m.oldestCommit,
	}
}

// gcLoop periodically sweeps settled commit-status entries until Close
// is called.
func (m *Manager) gcLoop() {
	ticker := time.NewTicker(m.gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.GC()
		case <-m.gcStop:
			return
		}
	}
}

// GC reclaims commit-status entries older than the retain window behind
// the current XID.
func (m *Manager) GC() {
	current := m.CurrentXID()
	m.gcCommitStatus(current, m.retain)
}

func (m *Manager) gcCommitStatus(current XID, retain uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for xid := range m.commitStatus {
		if uint32(current)-uint32(xid) > retain {
			delete(m.commitStatus, xid)
		}
	}

	if len(m.commitStatus) == 0 {
		m.oldestCommit = XIDBootstrap
		return
	}
	oldest := XIDMax
	for xid := range m.commitStatus {
		if xid < oldest {
			oldest = xid
		}
	}
	m.oldestCommit = oldest
}

func (m *Manager) warning(format string, args ...interface{}) {
	mvccLog.Printf("warning: "+format, args...)
}
