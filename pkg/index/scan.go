package index

import (
	"fmt"
	"sync"

	"github.com/kasuganosora/tablecore/pkg/row"
)

// ScanIndex is the index at position 0 of every regular table: full-row
// iteration in insertion order, keyed by row.Key. Every other index of
// the table is built from a pass over this one.
type ScanIndex struct {
	mu    sync.RWMutex
	rows  map[row.Key]*row.Row
	order []row.Key
}

// NewScanIndex creates an empty scan index.
func NewScanIndex() *ScanIndex {
	return &ScanIndex{rows: make(map[row.Key]*row.Row)}
}

func (s *ScanIndex) Add(_ Session, r *row.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rows[r.Key]; exists {
		return fmt.Errorf("index: duplicate row key %d in scan index", r.Key)
	}
	s.rows[r.Key] = r
	s.order = append(s.order, r.Key)
	return nil
}

func (s *ScanIndex) Remove(_ Session, r *row.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rows[r.Key]; !exists {
		return fmt.Errorf("index: row key %d not found in scan index", r.Key)
	}
	delete(s.rows, r.Key)
	for i, k := range s.order {
		if k == r.Key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *ScanIndex) Find(_ Session, start, end *row.SearchRow) (Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*row.Row, 0, len(s.order))
	for _, k := range s.order {
		r := s.rows[k]
		if matchesSearchRow(r, start, end) {
			out = append(out, r)
		}
	}
	return newSliceCursor(out), nil
}

func (s *ScanIndex) Truncate(_ Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make(map[row.Key]*row.Row)
	s.order = nil
	return nil
}

func (s *ScanIndex) RowCount() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.order))
}

// GetCost always reports the full table-scan cost: proportional to row
// count, with no benefit from a covering projection since the scan index
// always carries the full row.
func (s *ScanIndex) GetCost(_ Session, _ []Mask, _ SortOrder, _ map[int]bool) Cost {
	n := float64(s.RowCount())
	return Cost{Value: n, Explain: fmt.Sprintf("full scan of %.0f rows", n)}
}

func (s *ScanIndex) CompareRows(a, b *row.Row) int {
	if a.Key < b.Key {
		return -1
	}
	if a.Key > b.Key {
		return 1
	}
	return 0
}

func (s *ScanIndex) ColumnIndex(int) int        { return -1 }
func (s *ScanIndex) IsFirstColumn(int) bool      { return false }
func (s *ScanIndex) CanGetFirstOrLast() bool     { return true }
func (s *ScanIndex) CanFindNext() bool           { return true }
func (s *ScanIndex) NeedRebuild() bool           { return false }
func (s *ScanIndex) IndexType() TypeBits         { return TypeScan }
