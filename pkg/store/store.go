// Package store implements CachedRowStore, the modernc.org/sqlite-backed
// physical row storage for a persistData RegularTable's scan index
// (SPEC_FULL.md §3). Grounded on the teacher's in-memory
// table-name -> []Row storage-map pattern
// (pkg/resource/memory_mvcc.go's MVCCMemorySource.mvccData), with the
// in-memory map swapped for a real embedded SQL engine so rows survive a
// process restart, plus a write-through in-memory cache so repeated
// reads of the same row don't round-trip through SQLite every time.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/kasuganosora/tablecore/pkg/index"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// CachedRowStore is a durable scan index (IndexType TypePersistent|
// TypeScan): every row lives in a SQLite table keyed by its row.Key,
// with an in-memory cache of decoded rows: every row is decoded into the
// cache at Open and kept in step by Add/Remove/Truncate, and Find reads
// only the cache.
type CachedRowStore struct {
	db    *sql.DB
	table string

	mu    sync.RWMutex
	cache map[row.Key]*row.Row
	order []row.Key // insertion order, for Find's full scan
}

// Open opens (creating if absent) a CachedRowStore at dsn, backing
// tableName's rows in the SQL table "tablecore_rows_<tableName>".
func Open(dsn, tableName string) (*CachedRowStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite %q: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)

	s := &CachedRowStore{db: db, table: rowTableName(tableName), cache: make(map[row.Key]*row.Row)}
	if err := s.ensureTable(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.loadCache(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func rowTableName(tableName string) string {
	return "tablecore_rows_" + tableName
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *CachedRowStore) ensureTable() error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (row_key INTEGER PRIMARY KEY, payload BLOB NOT NULL)`, quoteIdent(s.table))
	_, err := s.db.Exec(stmt)
	if err != nil {
		return fmt.Errorf("store: create table %s: %w", s.table, err)
	}
	return nil
}

func (s *CachedRowStore) loadCache() error {
	rows, err := s.db.Query(fmt.Sprintf(`SELECT row_key, payload FROM %s ORDER BY row_key`, quoteIdent(s.table)))
	if err != nil {
		return fmt.Errorf("store: load %s: %w", s.table, err)
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var key int64
		var payload []byte
		if err := rows.Scan(&key, &payload); err != nil {
			return fmt.Errorf("store: scan %s: %w", s.table, err)
		}
		r, err := decodeRow(row.Key(key), payload)
		if err != nil {
			return err
		}
		s.cache[r.Key] = r
		s.order = append(s.order, r.Key)
	}
	return rows.Err()
}

// Close releases the underlying connection.
func (s *CachedRowStore) Close() error {
	return s.db.Close()
}

func (s *CachedRowStore) Add(_ index.Session, r *row.Row) error {
	payload, err := encodeRow(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cache[r.Key]; exists {
		return fmt.Errorf("store: duplicate row key %d in %s", r.Key, s.table)
	}
	stmt := fmt.Sprintf(`INSERT INTO %s (row_key, payload) VALUES (?, ?)`, quoteIdent(s.table))
	if _, err := s.db.Exec(stmt, int64(r.Key), payload); err != nil {
		return fmt.Errorf("store: insert row %d: %w", r.Key, err)
	}
	s.cache[r.Key] = r
	s.order = append(s.order, r.Key)
	return nil
}

func (s *CachedRowStore) Remove(_ index.Session, r *row.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cache[r.Key]; !exists {
		return fmt.Errorf("store: row key %d not found in %s", r.Key, s.table)
	}
	stmt := fmt.Sprintf(`DELETE FROM %s WHERE row_key = ?`, quoteIdent(s.table))
	if _, err := s.db.Exec(stmt, int64(r.Key)); err != nil {
		return fmt.Errorf("store: delete row %d: %w", r.Key, err)
	}
	delete(s.cache, r.Key)
	for i, k := range s.order {
		if k == r.Key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *CachedRowStore) Find(_ index.Session, start, end *row.SearchRow) (index.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*row.Row, 0, len(s.order))
	for _, k := range s.order {
		r := s.cache[k]
		if matchesSearchRow(r, start, end) {
			out = append(out, r)
		}
	}
	return newSliceCursor(out), nil
}

func (s *CachedRowStore) Truncate(_ index.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stmt := fmt.Sprintf(`DELETE FROM %s`, quoteIdent(s.table))
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("store: truncate %s: %w", s.table, err)
	}
	s.cache = make(map[row.Key]*row.Row)
	s.order = nil
	return nil
}

func (s *CachedRowStore) RowCount() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.order))
}

// GetCost reports the full-table-scan cost, same as the in-memory
// ScanIndex — a CachedRowStore is always position 0 of its table, never
// chosen competitively against a secondary index.
func (s *CachedRowStore) GetCost(_ index.Session, _ []index.Mask, _ index.SortOrder, _ map[int]bool) index.Cost {
	n := float64(s.RowCount())
	return index.Cost{Value: n, Explain: fmt.Sprintf("full scan of %.0f persisted rows", n)}
}

func (s *CachedRowStore) CompareRows(a, b *row.Row) int {
	if a.Key < b.Key {
		return -1
	}
	if a.Key > b.Key {
		return 1
	}
	return 0
}

func (s *CachedRowStore) ColumnIndex(int) int    { return -1 }
func (s *CachedRowStore) IsFirstColumn(int) bool  { return false }
func (s *CachedRowStore) CanGetFirstOrLast() bool { return true }
func (s *CachedRowStore) CanFindNext() bool       { return true }
func (s *CachedRowStore) NeedRebuild() bool       { return false }
func (s *CachedRowStore) IndexType() index.TypeBits {
	return index.TypePersistent | index.TypeScan
}

var _ index.Index = (*CachedRowStore)(nil)

// sliceCursor and matchesSearchRow mirror pkg/index's unexported
// scan-index helpers (index.go's sliceCursor/matchesSearchRow) — they
// aren't exported across the package boundary, so this package keeps its
// own copies rather than reach into pkg/index's internals.
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
