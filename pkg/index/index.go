// Package index defines the abstract access-path contract every table
// index implements, plus the predicate-mask vocabulary the planner and
// Index.GetCost/Find share, and two concrete indexes: an in-memory scan
// index (position 0 of every regular table) and a sorted in-memory
// secondary index. pkg/index/hashindex.go adds a badger-backed persistent
// variant.
package index

import (
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// Mask describes the predicate shape known about one column when the
// planner evaluates an index, per spec.md's glossary entry.
type Mask int

const (
	MaskNone      Mask = 0
	MaskEqual     Mask = 1 << iota
	MaskRangeStart
	MaskRangeEnd
	MaskInList
	MaskIsNull
)

// TypeBits enumerate the IndexType tags spec.md §3 lists, combined as a
// bitset so an index can be e.g. both persistent and hash.
type TypeBits int

const (
	TypePrimaryKey TypeBits = 1 << iota
	TypeUnique
	TypeHash
	TypeSpatial
	TypePersistent
	TypeScan
	TypeBelongsToConstraint
)

// SortOrder is a per-column ascending(false)/descending(true) flag list
// requested by the query, used by GetCost to favor an index whose
// natural order already satisfies it.
type SortOrder []bool

// Cost is the result of GetCost: an opaque, comparable number plus a
// human-readable explanation the advisor surface can show.
type Cost struct {
	Value   float64
	Explain string
}

// Index is the abstract access path every table index implements.
// Internals (B-tree, hash, scan, spatial) are out of scope per spec.md
// §1 — only this contract is specified, plus the two concrete
// implementations below and the badger-backed hash index.
type Index interface {
	// Add inserts row into the index.
	Add(session Session, r *row.Row) error
	// Remove deletes row from the index.
	Remove(session Session, r *row.Row) error
	// Find returns a cursor over rows between start and end (either may
	// be nil for an unbounded side), per the index's natural order.
	Find(session Session, start, end *row.SearchRow) (Cursor, error)
	// Truncate removes all rows, resetting RowCount to 0.
	Truncate(session Session) error
	// RowCount returns the number of rows currently indexed.
	RowCount() int64
	// GetCost estimates the cost of using this index for the given
	// predicate masks, active filters, requested sort order, and the set
	// of columns the query needs — used to pick among indexes.
	GetCost(session Session, masks []Mask, sortOrder SortOrder, allColumns map[int]bool) Cost
	// CompareRows orders two rows the way this index's natural order
	// does, used by the bulk-load sort pass during index construction.
	CompareRows(a, b *row.Row) int
	// ColumnIndex returns the position of column within this index's key,
	// or -1 if the column does not participate.
	ColumnIndex(column int) int
	// IsFirstColumn reports whether column is the index's leading key
	// column.
	IsFirstColumn(column int) bool
	// CanGetFirstOrLast reports whether the index can answer MIN/MAX in
	// O(1) without a scan.
	CanGetFirstOrLast() bool
	// CanFindNext reports whether FindNext (cursor advance without a
	// fresh Find) is supported.
	CanFindNext() bool
	// NeedRebuild reports whether the index must be rebuilt from the scan
	// index before it can serve queries (e.g. freshly added to a
	// non-empty table).
	NeedRebuild() bool
	// IndexType returns the TypeBits describing this index.
	IndexType() TypeBits
}

// Cursor iterates rows in an index's natural order.
type Cursor interface {
	Next() bool
	Row() *row.Row
	Close() error
}

// Session is the minimal collaborator contract an index needs from the
// active session — enough to decide MVCC visibility without importing
// pkg/lock/pkg/database, avoiding an import cycle.
type Session interface {
	SessionID() int64
}

// sliceCursor is a Cursor over an in-memory slice of rows, shared by
// ScanIndex and MemoryIndex.
type sliceCursor struct {
	rows []*row.Row
	pos  int
}

func newSliceCursor(rows []*row.Row) *sliceCursor {
	return &sliceCursor{rows: rows, pos: -1}
}

func (c *sliceCursor) Next() bool {
	c.pos++
	return c.pos < len(c.rows)
}

func (c *sliceCursor) Row() *row.Row {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil
	}
	return c.rows[c.pos]
}

func (c *sliceCursor) Close() error { return nil }

// matchesSearchRow reports whether r satisfies every bound column of
// start/end (inclusive), the way a plain linear Find would.
func matchesSearchRow(r *row.Row, start, end *row.SearchRow) bool {
	if start != nil {
		for i, bound := range start.Values {
			if bound == nil {
				continue
			}
			if compareValues(r.Get(i), *bound) < 0 {
				return false
			}
		}
	}
	if end != nil {
		for i, bound := range end.Values {
			if bound == nil {
				continue
			}
			if compareValues(r.Get(i), *bound) > 0 {
				return false
			}
		}
	}
	return true
}

func compareValues(a, b value.Value) int {
	if a.IsNull() && b.IsNull() {
		return 0
	}
	if a.IsNull() {
		return -1
	}
	if b.IsNull() {
		return 1
	}
	switch a.Kind {
	case value.KindInt, value.KindFloat, value.KindBool:
		af, _ := a.Float64()
		bf, _ := b.Float64()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	default:
		as, bs := a.String(), b.String()
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	}
}
