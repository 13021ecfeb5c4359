package lock

import "time"

// Manager holds the lock state for a single table: at most one exclusive
// session, and a set of shared sessions. All state is protected by the
// owning Coordinator's mutex — a Manager never locks independently.
type Manager struct {
	coord     *Coordinator
	tableName string

	exclusive int64 // session id, 0 = none held
	shared    map[int64]bool
}

// TableName returns the name this manager locks on behalf of.
func (m *Manager) TableName() string {
	return m.tableName
}

// Lock attempts to acquire the table lock for session in the requested
// mode, following the wait/deadlock-check/timeout loop. It blocks until
// the lock is granted, a deadlock is detected, or the session's lock
// timeout elapses.
func (m *Manager) Lock(session Session, exclusive bool) error {
	c := m.coord
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := time.Now().Add(session.LockTimeout())
	checkDeadlock := false
	st := c.stateFor(session)

	for {
		if m.exclusive == session.SessionID() {
			return nil
		}

		if exclusive {
			if m.exclusive == 0 && (len(m.shared) == 0 || (len(m.shared) == 1 && m.shared[session.SessionID()])) {
				delete(m.shared, session.SessionID())
				m.exclusive = session.SessionID()
				st.waitForLock = nil
				st.held[m] = ModeExclusive
				return nil
			}
		} else {
			if m.exclusive == 0 {
				if c.mode == DBModeReadCommitted && c.singleThreaded {
					return nil
				}
				m.shared[session.SessionID()] = true
				st.waitForLock = nil
				st.held[m] = ModeShared
				return nil
			}
		}

		st.waitForLock = m

		if checkDeadlock {
			if cycle := c.detectDeadlockLocked(session); len(cycle) > 0 {
				st.waitForLock = nil
				return ErrDeadlock(FormatCycle(cycle))
			}
		} else {
			checkDeadlock = true
		}

		now := time.Now()
		if !now.Before(deadline) {
			st.waitForLock = nil
			return ErrLockTimeout(m.tableName, session)
		}

		wait := deadline.Sub(now)
		if wait > DeadlockCheckInterval {
			wait = DeadlockCheckInterval
		}
		c.waitTimeout(wait)
	}
}

// Unlock releases session's hold (shared or exclusive) on this table and
// wakes any waiters on the coordinator's condvar.
func (m *Manager) Unlock(session Session) {
	c := m.coord
	c.mu.Lock()
	defer c.mu.Unlock()

	if m.exclusive == session.SessionID() {
		m.exclusive = 0
	}
	delete(m.shared, session.SessionID())

	if st, ok := c.states[session.SessionID()]; ok {
		delete(st.held, m)
	}

	c.cond.Broadcast()
}

// RowCount-adjacent helper collaborators (lock mode queries) used by
// the table coordinator to decide whether a lock is already sufficient
// for an operation without re-acquiring it.

// IsLockedExclusiveBy reports whether session already holds the
// exclusive lock.
func (m *Manager) IsLockedExclusiveBy(session Session) bool {
	m.coord.mu.Lock()
	defer m.coord.mu.Unlock()
	return m.exclusive == session.SessionID()
}

// holders returns the session ids currently holding this table's lock,
// shared or exclusive. Caller must hold c.mu.
func (m *Manager) holders() []int64 {
	ids := make([]int64, 0, len(m.shared)+1)
	if m.exclusive != 0 {
		ids = append(ids, m.exclusive)
	}
	for sid := range m.shared {
		ids = append(ids, sid)
	}
	return ids
}
