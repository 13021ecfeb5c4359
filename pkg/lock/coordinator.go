package lock

import (
	"sync"
	"time"
)

// Coordinator is the database-wide lock broadcaster: every per-table
// Manager blocks and wakes on the Coordinator's condition variable, and
// deadlock detection walks the wait-for graph across all of a
// Coordinator's managers, not just one table. One Coordinator per
// Database.
type Coordinator struct {
	mu   sync.Mutex
	cond *sync.Cond

	mode           DatabaseMode
	singleThreaded bool

	states map[int64]*sessionState

	// deadlockMu serializes deadlock-cycle detection: only one walk runs
	// at a time, per spec.
	deadlockMu sync.Mutex
}

type sessionState struct {
	session     Session
	waitForLock *Manager
	held        map[*Manager]Mode
}

// NewCoordinator creates a lock coordinator for one database.
func NewCoordinator(mode DatabaseMode, singleThreaded bool) *Coordinator {
	c := &Coordinator{
		mode:           mode,
		singleThreaded: singleThreaded,
		states:         make(map[int64]*sessionState),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// SetMode updates the database-wide lock discipline.
func (c *Coordinator) SetMode(mode DatabaseMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
}

// Mode returns the current database-wide lock discipline.
func (c *Coordinator) Mode() DatabaseMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// NewManager creates a lock manager for one table, bound to this
// coordinator's shared condvar and session registry.
func (c *Coordinator) NewManager(tableName string) *Manager {
	return &Manager{
		coord:     c,
		tableName: tableName,
		shared:    make(map[int64]bool),
	}
}

// stateFor returns (creating if necessary) the bookkeeping entry for a
// session. Must be called with c.mu held.
func (c *Coordinator) stateFor(s Session) *sessionState {
	st, ok := c.states[s.SessionID()]
	if !ok {
		st = &sessionState{session: s, held: make(map[*Manager]Mode)}
		c.states[s.SessionID()] = st
	}
	return st
}

// ReleaseSession drops all locks a session holds across every table
// managed by this coordinator (connection close / rollback path).
func (c *Coordinator) ReleaseSession(s Session) {
	c.mu.Lock()
	st, ok := c.states[s.SessionID()]
	if !ok {
		c.mu.Unlock()
		return
	}
	held := make([]*Manager, 0, len(st.held))
	for m := range st.held {
		held = append(held, m)
	}
	delete(c.states, s.SessionID())
	c.mu.Unlock()

	for _, m := range held {
		m.Unlock(s)
	}
}

// HeldLocks reports the locks a session currently holds, for diagnostics
// and deadlock reports.
func (c *Coordinator) HeldLocks(s Session) []HeldLock {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[s.SessionID()]
	if !ok {
		return nil
	}
	out := make([]HeldLock, 0, len(st.held))
	for m, mode := range st.held {
		out = append(out, HeldLock{Table: m.tableName, Mode: mode})
	}
	return out
}

// waitTimeout blocks on the coordinator's condvar for at most d, or until
// woken by a broadcast. c.mu must be held on entry and is held again on
// return. This is the only place a per-table Manager blocks: it never
// waits directly, always through its coordinator.
func (c *Coordinator) waitTimeout(d time.Duration) {
	woke := make(chan struct{})
	timer := time.AfterFunc(d, func() {
		c.mu.Lock()
		c.cond.Broadcast()
		c.mu.Unlock()
	})
	go func() {
		<-woke
		timer.Stop()
	}()
	c.cond.Wait()
	close(woke)
}
