package table

import (
	"log"
	"sort"
	"sync"

	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/database"
	"github.com/kasuganosora/tablecore/pkg/index"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// Session is the union of collaborator contracts RegularTable needs from
// the active session: enough to drive index operations (index.Session),
// column validation (catalog.Session), and lock acquisition through the
// caller (locking itself is the caller's responsibility — RegularTable's
// add/remove/truncate/update assume the table lock is already held, per
// spec.md §4.3/§4.4 treating locking and row mutation as separate
// concerns).
type Session interface {
	database.Session
}

// ReferencedByFK reports, for a table's Truncate call, whether another
// table's foreign key still references it. A nil func is treated as "no
// references" (referential integrity checking disabled or not wired).
type ReferencedByFK func() bool

// RegularTable is the spec.md §4.3 table variant: rows stored via a
// scan index plus zero or more secondary indexes, with transactional
// add/remove/truncate/update across all of them.
type RegularTable struct {
	*Common

	mu       sync.RWMutex
	indexes  []index.Index // indexes[0] is always the scan index
	rowCount int64
	nextKey  row.Key

	persistent bool
	refByFK    ReferencedByFK
}

// NewRegularTable creates a table bound to cc/db, with scan as its
// position-0 scan index.
func NewRegularTable(cc *catalog.Common, db database.Database, scan index.Index, persistent bool) *RegularTable {
	return &RegularTable{
		Common:     NewCommon(cc, db),
		indexes:    []index.Index{scan},
		persistent: persistent,
	}
}

func (t *RegularTable) Indexes() []index.Index {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]index.Index, len(t.indexes))
	copy(out, t.indexes)
	return out
}

func (t *RegularTable) RowCount() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rowCount
}

func (t *RegularTable) IsPersistent() bool { return t.persistent }

// SetReferencedByFK wires the foreign-key-reference check Truncate
// consults.
func (t *RegularTable) SetReferencedByFK(f ReferencedByFK) { t.refByFK = f }

// AddRow implements spec.md §4.3's Add: every index in order, a debug
// invariant that each index's row count matches the table's new count,
// and all-or-nothing rollback on failure (undo indexes [0..i-1] by
// calling remove in reverse). A failure during undo is escalated as a
// corruption-level internal error, but the original failure is still
// what's returned to the caller.
func (t *RegularTable) AddRow(session Session, values []value.Value) (*row.Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := t.nextKey
	t.nextKey++
	r := row.New(key, values)

	for i, idx := range t.indexes {
		if err := idx.Add(session, r); err != nil {
			t.undoAdd(session, r, i-1)
			return nil, err
		}
		if idx.RowCount() != t.rowCount+1 {
			t.undoAdd(session, r, i)
			return nil, ErrInternal(t.Ref().Name, "index row count diverged from table row count after add")
		}
	}

	t.rowCount++
	t.bumpModificationID()
	return r, nil
}

// undoAdd removes r from indexes [0..upTo] in reverse, per spec.md §4.3.
// A failure mid-undo is a corruption-level condition — logged via
// ErrInternal rather than silently ignored, but never returned in place
// of the original failure the caller already has.
func (t *RegularTable) undoAdd(session Session, r *row.Row, upTo int) {
	for i := upTo; i >= 0; i-- {
		if err := t.indexes[i].Remove(session, r); err != nil {
			log.Printf("%v", ErrInternal(t.Ref().Name, "undo of partial add failed: "+err.Error()))
		}
	}
}

// RemoveRow implements spec.md §4.3's Remove: symmetric to Add, indexes
// in reverse; on failure, already-removed indexes are re-added in
// forward order.
func (t *RegularTable) RemoveRow(session Session, r *row.Row) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := len(t.indexes) - 1; i >= 0; i-- {
		if err := t.indexes[i].Remove(session, r); err != nil {
			t.undoRemove(session, r, i+1)
			return err
		}
	}

	t.rowCount--
	t.bumpModificationID()
	return nil
}

func (t *RegularTable) undoRemove(session Session, r *row.Row, from int) {
	for i := from; i < len(t.indexes); i++ {
		if err := t.indexes[i].Add(session, r); err != nil {
			_ = ErrInternal(t.Ref().Name, "undo of partial remove failed: "+err.Error())
		}
	}
}

// UpdateRow implements spec.md §4.3's default Update: remove the old row
// then add the new values back, preserving the row key (MVCC-capable
// scan indexes may keep the key and version in place instead; this
// default applies to any RegularTable regardless of its scan index
// kind).
func (t *RegularTable) UpdateRow(session Session, old *row.Row, newValues []value.Value) (*row.Row, error) {
	if err := t.RemoveRow(session, old); err != nil {
		return nil, err
	}

	t.mu.Lock()
	key := old.Key
	r := row.New(key, newValues)
	t.mu.Unlock()

	for i, idx := range t.indexes {
		if err := idx.Add(session, r); err != nil {
			t.undoAdd(session, r, i-1)
			return nil, err
		}
	}

	t.mu.Lock()
	t.rowCount++
	t.bumpModificationID()
	t.mu.Unlock()

	return r, nil
}

// Truncate implements spec.md §4.3's Truncate: indexes in reverse,
// reset rowCount to 0. Refused if a foreign key from another table still
// references this table (unless referential integrity checking is off).
func (t *RegularTable) Truncate(session Session) error {
	if t.DB.ReferentialIntegrity() == database.ReferentialIntegrityOn && t.refByFK != nil && t.refByFK() {
		return ErrColumnIsReferenced(t.Ref().Name, "")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := len(t.indexes) - 1; i >= 0; i-- {
		if err := t.indexes[i].Truncate(session); err != nil {
			return err
		}
	}
	t.rowCount = 0
	t.bumpModificationID()
	return nil
}

// BuildIndex implements spec.md §4.3's index-construction algorithm:
// when idx needs a rebuild and the table is non-empty, iterate the scan
// index, buffer rows up to the configured batch size, sort each batch
// with idx.CompareRows, then add them. The index is appended to the
// table's index list and a meta-row update is triggered for persistent
// indexes of persistent tables.
func (t *RegularTable) BuildIndex(session Session, idx index.Index) error {
	if idx.NeedRebuild() && t.RowCount() > 0 {
		scan := t.indexes[0]
		cur, err := scan.Find(session, nil, nil)
		if err != nil {
			return err
		}

		batchSize := t.DB.Settings().IndexBuildBatchSize
		if batchSize <= 0 {
			batchSize = 10000
		}

		batch := make([]*row.Row, 0, batchSize)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			sort.Slice(batch, func(i, j int) bool { return idx.CompareRows(batch[i], batch[j]) < 0 })
			for _, r := range batch {
				if err := idx.Add(session, r); err != nil {
					return err
				}
			}
			batch = batch[:0]
			return nil
		}

		for cur.Next() {
			batch = append(batch, cur.Row())
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err := flush(); err != nil {
			return err
		}
	}

	t.mu.Lock()
	t.indexes = append(t.indexes, idx)
	t.mu.Unlock()

	if t.persistent && idx.IndexType()&index.TypePersistent != 0 {
		_ = t.DB.UpdateMeta(t.Ref())
	}

	return nil
}

// DropIndex removes idx from the table's index list by identity and
// truncates its storage. The scan index (position 0) can never be
// dropped.
func (t *RegularTable) DropIndex(session Session, idx index.Index) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, existing := range t.indexes {
		if existing == idx {
			if i == 0 {
				return ErrIndexNotFound(t.Ref().Name, "scan index cannot be dropped")
			}
			if err := idx.Truncate(session); err != nil {
				return err
			}
			t.indexes = append(t.indexes[:i], t.indexes[i+1:]...)
			return nil
		}
	}
	return ErrIndexNotFound(t.Ref().Name, "index not registered on this table")
}
