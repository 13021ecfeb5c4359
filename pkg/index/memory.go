package index

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kasuganosora/tablecore/pkg/row"
)

// MemoryIndex is a sorted in-memory secondary index over one or more
// columns, held as a slice kept in key order. Suited for MEMORY tables
// and for secondary indexes rebuilt from the scan index at construction
// time (spec.md §4.3's batch sort-then-add bulk load).
type MemoryIndex struct {
	columns []int // key columns, in order
	unique  bool
	typ     TypeBits

	mu   sync.RWMutex
	rows []*row.Row
}

// NewMemoryIndex creates a sorted secondary index over the given column
// positions.
func NewMemoryIndex(columns []int, unique bool, typ TypeBits) *MemoryIndex {
	return &MemoryIndex{columns: columns, unique: unique, typ: typ}
}

func (m *MemoryIndex) keyOf(r *row.Row) []interface{} {
	key := make([]interface{}, len(m.columns))
	for i, c := range m.columns {
		key[i] = r.Get(c).Raw
	}
	return key
}

func (m *MemoryIndex) CompareRows(a, b *row.Row) int {
	for _, c := range m.columns {
		if cmp := compareValues(a.Get(c), b.Get(c)); cmp != 0 {
			return cmp
		}
	}
	if a.Key < b.Key {
		return -1
	}
	if a.Key > b.Key {
		return 1
	}
	return 0
}

func (m *MemoryIndex) Add(_ Session, r *row.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos := sort.Search(len(m.rows), func(i int) bool { return m.CompareRows(m.rows[i], r) >= 0 })
	if m.unique && pos < len(m.rows) && m.sameKey(m.rows[pos], r) {
		return fmt.Errorf("index: duplicate key for unique index")
	}
	m.rows = append(m.rows, nil)
	copy(m.rows[pos+1:], m.rows[pos:])
	m.rows[pos] = r
	return nil
}

func (m *MemoryIndex) sameKey(a, b *row.Row) bool {
	for _, c := range m.columns {
		if compareValues(a.Get(c), b.Get(c)) != 0 {
			return false
		}
	}
	return true
}

func (m *MemoryIndex) Remove(_ Session, r *row.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.rows {
		if existing.Key == r.Key {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("index: row key %d not found", r.Key)
}

func (m *MemoryIndex) Find(_ Session, start, end *row.SearchRow) (Cursor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*row.Row, 0, len(m.rows))
	for _, r := range m.rows {
		if matchesSearchRow(r, start, end) {
			out = append(out, r)
		}
	}
	return newSliceCursor(out), nil
}

func (m *MemoryIndex) Truncate(_ Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = nil
	return nil
}

func (m *MemoryIndex) RowCount() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.rows))
}

// GetCost rewards equality/range predicates on the leading key column
// and penalizes a lookup that still needs the scan index for columns not
// covered by this index (a "covering" bonus when allColumns is a subset
// of m.columns).
func (m *MemoryIndex) GetCost(_ Session, masks []Mask, sortOrder SortOrder, allColumns map[int]bool) Cost {
	n := float64(m.RowCount())
	if n == 0 {
		return Cost{Value: 0, Explain: "empty index"}
	}

	height := logBase2(n)
	cost := height

	leading := -1
	if len(m.columns) > 0 {
		leading = m.columns[0]
	}
	if leading >= 0 && leading < len(masks) {
		switch {
		case masks[leading]&MaskEqual != 0:
			cost = height // point lookup, index height only
		case masks[leading]&(MaskRangeStart|MaskRangeEnd) != 0:
			cost = height + n*0.1
		default:
			cost = n // no usable predicate on the leading column: full index scan
		}
	} else {
		cost = n
	}

	covering := isCoveringIndex(m.columns, allColumns)
	if !covering {
		cost += n * 0.05 // extra table-row lookup penalty per matched row, approximated
	}

	explain := fmt.Sprintf("index on columns %v, height=%.2f, covering=%v", m.columns, height, covering)
	return Cost{Value: cost, Explain: explain}
}

func isCoveringIndex(indexColumns []int, needed map[int]bool) bool {
	have := make(map[int]bool, len(indexColumns))
	for _, c := range indexColumns {
		have[c] = true
	}
	for c := range needed {
		if !have[c] {
			return false
		}
	}
	return true
}

func logBase2(n float64) float64 {
	if n <= 1 {
		return 1
	}
	h := 0.0
	for v := n; v > 1; v /= 2 {
		h++
	}
	return h
}

func (m *MemoryIndex) ColumnIndex(column int) int {
	for i, c := range m.columns {
		if c == column {
			return i
		}
	}
	return -1
}

func (m *MemoryIndex) IsFirstColumn(column int) bool {
	return len(m.columns) > 0 && m.columns[0] == column
}

func (m *MemoryIndex) CanGetFirstOrLast() bool { return true }
func (m *MemoryIndex) CanFindNext() bool       { return true }
func (m *MemoryIndex) NeedRebuild() bool       { return m.RowCount() == 0 }
func (m *MemoryIndex) IndexType() TypeBits     { return m.typ }
