package database

import (
	"strconv"
	"sync"
	"time"

	"github.com/kasuganosora/tablecore/pkg/lock"
	"github.com/kasuganosora/tablecore/pkg/mvcc"
)

// Sequence is the minimal contract Session.NextValueFor needs from a
// named sequence store; pkg/catalog's identity columns call through this
// for GENERATED BY DEFAULT AS IDENTITY columns with no explicit
// Sequence object attached.
type Sequence interface {
	NextValue() (int64, error)
}

// Savepoint is an opaque marker returned by SetSavepoint and consumed by
// RollbackTo; its only contract is identity.
type Savepoint struct {
	name string
	txn  *mvcc.Transaction
}

// Session is the collaborator contract spec.md §6 lists: identity,
// locking state, savepoints, sequence access, and local temp tables.
// Method names here are the Go-idiomatic equivalents of the spec's
// getId()/getUser()/... accessors.
type Session interface {
	ID() int64
	// SessionID is the same value as ID, under the name pkg/lock and
	// pkg/index's minimal Session contracts expect, so any database.Session
	// satisfies both without an adapter.
	SessionID() int64
	User() string
	ThreadName() string
	LockTimeout() time.Duration

	WaitForLock() *lock.Manager
	SetWaitForLock(m *lock.Manager)
	Locks() []lock.HeldLock
	AddLock(m *lock.Manager, exclusive bool) error

	SetSavepoint(name string) *Savepoint
	RollbackTo(sp *Savepoint) error

	Mode() lock.DatabaseMode
	NextValueFor(sequenceName string) (int64, error)
	SetLastIdentity(v int64)
	LastIdentity() int64
	BumpIdentityOnManualInsert() bool

	TempTables() []string
	AddTempTable(name string)
	RemoveTempTable(name string)

	// ViewCache is the per-session QueryExpressionIndex cache spec.md §5
	// describes ("View-index cache is per session and cleared on
	// commit/rollback"). Keys are opaque to this package — pkg/view
	// builds its own cache-key type and stores whatever value it likes.
	ViewCacheGet(key interface{}) (interface{}, bool)
	ViewCachePut(key interface{}, value interface{})
	ViewCacheClear()

	// CheckCancelled returns a cancellation error once Cancel has been
	// called on the session. No scan or index in this module polls it.
	CheckCancelled() error
	Cancel()
}

// CoreSession is the default in-process Session implementation, named
// and shaped after the teacher's database-level CoreSession (thread
// identity, per-session mutex, temp-table list, sequence-bump
// compatibility flag).
type CoreSession struct {
	mu sync.Mutex

	id          int64
	user        string
	threadName  string
	lockTimeout time.Duration
	mode        lock.DatabaseMode

	db *DB

	waitForLock *lock.Manager
	held        map[*lock.Manager]bool

	lastIdentity int64
	bumpIdentity bool

	tempTables []string

	sequences func(name string) (Sequence, error)

	cancelled bool

	viewCache map[interface{}]interface{}
}

// NewCoreSession creates a session bound to db, with the given identity
// and lock timeout.
func NewCoreSession(db *DB, id int64, user string, lockTimeout time.Duration) *CoreSession {
	s := &CoreSession{
		id:           id,
		user:         user,
		threadName:   "session-" + strconv.FormatInt(id, 10),
		lockTimeout:  lockTimeout,
		mode:         db.LockMode(),
		db:           db,
		held:         make(map[*lock.Manager]bool),
		bumpIdentity: db.Settings().BumpIdentityOnManualInsert,
	}
	db.RegisterSession(s)
	return s
}

func (s *CoreSession) ID() int64          { return s.id }
func (s *CoreSession) User() string       { return s.user }
func (s *CoreSession) ThreadName() string { return s.threadName }
func (s *CoreSession) LockTimeout() time.Duration { return s.lockTimeout }

// SessionID satisfies pkg/lock.Session and pkg/index.Session without
// either package depending on this one.
func (s *CoreSession) SessionID() int64 { return s.id }

func (s *CoreSession) WaitForLock() *lock.Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waitForLock
}

func (s *CoreSession) SetWaitForLock(m *lock.Manager) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waitForLock = m
}

func (s *CoreSession) Locks() []lock.HeldLock {
	return s.db.coord.HeldLocks(s)
}

// AddLock acquires m in the requested mode and records it as held on
// success; unlike Manager.Lock directly, it tracks the acquisition in
// the session's own bookkeeping for RollbackTo-driven release.
func (s *CoreSession) AddLock(m *lock.Manager, exclusive bool) error {
	if err := m.Lock(s, exclusive); err != nil {
		return err
	}
	s.mu.Lock()
	s.held[m] = true
	s.mu.Unlock()
	return nil
}

func (s *CoreSession) SetSavepoint(name string) *Savepoint {
	var txn *mvcc.Transaction
	if mgr := s.db.MVCC(); mgr != nil {
		txn, _ = mgr.Begin(true)
	}
	return &Savepoint{name: name, txn: txn}
}

// RollbackTo releases every lock acquired after sp was taken. This
// in-process session does not track per-savepoint lock ordering, so it
// conservatively releases every lock the session currently holds —
// correct for the single-statement savepoints pkg/table uses around
// updateRows (spec.md §7's propagation policy), since those never
// straddle more than one savepoint.
func (s *CoreSession) RollbackTo(sp *Savepoint) error {
	s.mu.Lock()
	held := make([]*lock.Manager, 0, len(s.held))
	for m := range s.held {
		held = append(held, m)
	}
	s.held = make(map[*lock.Manager]bool)
	s.mu.Unlock()

	for _, m := range held {
		m.Unlock(s)
	}
	s.ViewCacheClear()
	return nil
}

func (s *CoreSession) Mode() lock.DatabaseMode { return s.mode }

// ViewCacheGet reads the per-session view-index cache.
func (s *CoreSession) ViewCacheGet(key interface{}) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.viewCache[key]
	return v, ok
}

// ViewCachePut populates the per-session view-index cache.
func (s *CoreSession) ViewCachePut(key interface{}, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewCache == nil {
		s.viewCache = make(map[interface{}]interface{})
	}
	s.viewCache[key] = value
}

// ViewCacheClear drops the entire per-session view-index cache, called on
// commit/rollback per spec.md §5.
func (s *CoreSession) ViewCacheClear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewCache = nil
}

// SetSequenceResolver wires the session to a sequence store (e.g. the
// catalog's sequence registry) so NextValueFor can serve identity
// columns with no explicit catalog.Sequence attached.
func (s *CoreSession) SetSequenceResolver(resolve func(name string) (Sequence, error)) {
	s.sequences = resolve
}

func (s *CoreSession) NextValueFor(sequenceName string) (int64, error) {
	if s.sequences == nil {
		return 0, &MissingSequenceError{Name: sequenceName}
	}
	seq, err := s.sequences(sequenceName)
	if err != nil {
		return 0, err
	}
	return seq.NextValue()
}

func (s *CoreSession) SetLastIdentity(v int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastIdentity = v
}

func (s *CoreSession) LastIdentity() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastIdentity
}

func (s *CoreSession) BumpIdentityOnManualInsert() bool { return s.bumpIdentity }

func (s *CoreSession) TempTables() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.tempTables))
	copy(out, s.tempTables)
	return out
}

func (s *CoreSession) AddTempTable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tempTables = append(s.tempTables, name)
}

func (s *CoreSession) RemoveTempTable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tempTables {
		if t == name {
			s.tempTables = append(s.tempTables[:i], s.tempTables[i+1:]...)
			return
		}
	}
}

func (s *CoreSession) CheckCancelled() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return &CancelledError{}
	}
	return nil
}

func (s *CoreSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = true
}

// Close unregisters the session from its database, releasing every lock
// it still holds.
func (s *CoreSession) Close() {
	s.db.UnregisterSession(s)
}

// MissingSequenceError is returned when NextValueFor is called on a
// session with no sequence resolver wired.
type MissingSequenceError struct{ Name string }

func (e *MissingSequenceError) Error() string {
	return "database: no sequence resolver configured for " + e.Name
}

// CancelledError is returned by CheckCancelled once Cancel has been
// called.
type CancelledError struct{}

func (e *CancelledError) Error() string { return "database: session operation cancelled" }
