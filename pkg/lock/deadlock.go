package lock

import (
	"fmt"
	"strings"
)

// detectDeadlockLocked walks the wait-for graph starting at me: for each
// session currently holding the lock me is blocked on, follow that
// session's own waitForLock transitively. If the walk ever reaches a
// manager held by me itself, a cycle exists and the chain of sessions
// forming it is returned (me first). Detection is globally serialized via
// deadlockMu so only one walk runs at a time across the whole database.
// c.mu must already be held by the caller (Manager.Lock holds it for the
// whole acquisition loop).
func (c *Coordinator) detectDeadlockLocked(me Session) []Session {
	c.deadlockMu.Lock()
	defer c.deadlockMu.Unlock()

	visited := make(map[int64]bool)
	var path []Session

	var walk func(cur Session) []Session
	walk = func(cur Session) []Session {
		sid := cur.SessionID()
		if visited[sid] {
			return nil
		}
		visited[sid] = true
		path = append(path, cur)

		st := c.states[sid]
		if st != nil && st.waitForLock != nil {
			for _, holderID := range st.waitForLock.holders() {
				if holderID == me.SessionID() {
					cycle := make([]Session, len(path))
					copy(cycle, path)
					return cycle
				}
				if holderSt, ok := c.states[holderID]; ok {
					if found := walk(holderSt.session); found != nil {
						return found
					}
				}
			}
		}

		path = path[:len(path)-1]
		return nil
	}

	return walk(me)
}

// FormatCycle renders a deadlock cycle as the sessions' thread names
// joined by " -> ". The report does not include the lock kind each
// session was waiting for or the tables it already holds.
func FormatCycle(cycle []Session) string {
	var b strings.Builder
	for i, s := range cycle {
		if i > 0 {
			b.WriteString(" -> ")
		}
		fmt.Fprintf(&b, "%s", s.ThreadName())
	}
	return b.String()
}
