package index

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// HashIndex is a persistent, equality-only secondary index backed by
// badger: composite key -> list of row keys, the same shape as the
// teacher's resource-layer IndexManager, adapted from per-table/per-
// column scoping to a single standalone index per table column set.
type HashIndex struct {
	db      *badger.DB
	table   string
	columns []int
	names   []string // column names, for key encoding
	unique  bool

	count int64
}

const (
	hashIndexPrefix = "hidx:"
)

// NewHashIndex opens a persistent hash index against db, scoped to
// table/columns. db is expected to be a private badger database per
// index (or a shared one namespaced by table, callers decide).
func NewHashIndex(db *badger.DB, table string, columns []int, names []string, unique bool) *HashIndex {
	return &HashIndex{db: db, table: table, columns: columns, names: names, unique: unique}
}

func (h *HashIndex) encodeKey(r *row.Row) []byte {
	parts := make([]string, len(h.columns))
	for i, c := range h.columns {
		parts[i] = encodeValuePart(r.Get(c))
	}
	return []byte(fmt.Sprintf("%s%s:%s:%s", hashIndexPrefix, h.table, strings.Join(h.names, "_"), strings.Join(parts, "|")))
}

func encodeValuePart(v value.Value) string {
	if v.IsNull() {
		return "\x00"
	}
	return v.String()
}

func (h *HashIndex) Add(_ Session, r *row.Row) error {
	key := h.encodeKey(r)
	return h.db.Update(func(txn *badger.Txn) error {
		var keys []int64
		item, err := txn.Get(key)
		switch err {
		case nil:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &keys)
			}); err != nil {
				return err
			}
			if h.unique && len(keys) > 0 {
				return fmt.Errorf("index: duplicate key for unique hash index on table %s", h.table)
			}
		case badger.ErrKeyNotFound:
			keys = nil
		default:
			return err
		}

		keys = append(keys, int64(r.Key))
		data, err := json.Marshal(keys)
		if err != nil {
			return err
		}
		h.count++
		return txn.Set(key, data)
	})
}

func (h *HashIndex) Remove(_ Session, r *row.Row) error {
	key := h.encodeKey(r)
	return h.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("index: row key %d not found in hash index", r.Key)
		}
		if err != nil {
			return err
		}

		var keys []int64
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &keys)
		}); err != nil {
			return err
		}

		out := keys[:0]
		for _, k := range keys {
			if k != int64(r.Key) {
				out = append(out, k)
			}
		}
		h.count--

		if len(out) == 0 {
			return txn.Delete(key)
		}
		data, err := json.Marshal(out)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// Lookup returns the row keys indexed under the exact column values in
// probe (one entry per h.columns, in order).
func (h *HashIndex) Lookup(probe []value.Value) ([]row.Key, error) {
	parts := make([]string, len(probe))
	for i, v := range probe {
		parts[i] = encodeValuePart(v)
	}
	key := []byte(fmt.Sprintf("%s%s:%s:%s", hashIndexPrefix, h.table, strings.Join(h.names, "_"), strings.Join(parts, "|")))

	var keys []int64
	err := h.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &keys)
		})
	})
	if err != nil {
		return nil, err
	}

	out := make([]row.Key, len(keys))
	for i, k := range keys {
		out[i] = row.Key(k)
	}
	return out, nil
}

func (h *HashIndex) Find(session Session, start, end *row.SearchRow) (Cursor, error) {
	if start != nil && end == start {
		probe := make([]value.Value, 0, len(h.columns))
		for _, c := range h.columns {
			if c < len(start.Values) && start.Values[c] != nil {
				probe = append(probe, *start.Values[c])
			}
		}
		if len(probe) == len(h.columns) {
			keys, err := h.Lookup(probe)
			if err != nil {
				return nil, err
			}
			return &hashCursor{keys: keys, pos: -1}, nil
		}
	}
	return nil, fmt.Errorf("index: hash index only supports equality probes on all %d key column(s)", len(h.columns))
}

// hashCursor yields row keys only; the table coordinator resolves keys
// against the scan index to materialize full rows.
type hashCursor struct {
	keys []row.Key
	pos  int
}

func (c *hashCursor) Next() bool  { c.pos++; return c.pos < len(c.keys) }
func (c *hashCursor) Row() *row.Row {
	if c.pos < 0 || c.pos >= len(c.keys) {
		return nil
	}
	return &row.Row{Key: c.keys[c.pos]}
}
func (c *hashCursor) Close() error { return nil }

func (h *HashIndex) Truncate(_ Session) error {
	prefix := []byte(fmt.Sprintf("%s%s:%s:", hashIndexPrefix, h.table, strings.Join(h.names, "_")))
	return h.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		var toDelete [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().KeyCopy(nil)
			toDelete = append(toDelete, k)
		}
		for _, k := range toDelete {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		h.count = 0
		return nil
	})
}

func (h *HashIndex) RowCount() int64 { return h.count }

func (h *HashIndex) GetCost(_ Session, masks []Mask, _ SortOrder, allColumns map[int]bool) Cost {
	if len(h.columns) == 0 {
		return Cost{Value: 1e18, Explain: "hash index has no key columns"}
	}
	for _, c := range h.columns {
		if c >= len(masks) || masks[c]&MaskEqual == 0 {
			return Cost{Value: 1e18, Explain: "hash index requires equality on every key column"}
		}
	}
	cost := 1.0
	if !isCoveringIndex(h.columns, allColumns) {
		cost += 1.0
	}
	return Cost{Value: cost, Explain: fmt.Sprintf("hash lookup on columns %v", h.columns)}
}

func (h *HashIndex) CompareRows(a, b *row.Row) int {
	for _, c := range h.columns {
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

func (h *HashIndex) ColumnIndex(column int) int {
	for i, c := range h.columns {
		if c == column {
			return i
		}
	}
	return -1
}

func (h *HashIndex) IsFirstColumn(column int) bool {
	return len(h.columns) > 0 && h.columns[0] == column
}

func (h *HashIndex) CanGetFirstOrLast() bool { return false }
func (h *HashIndex) CanFindNext() bool       { return false }
func (h *HashIndex) NeedRebuild() bool       { return false }
func (h *HashIndex) IndexType() TypeBits {
	t := TypeHash | TypePersistent
	if h.unique {
		t |= TypeUnique
	}
	return t
}

// parseRowKey is a small helper mirrored from the teacher's
// PrimaryKeyGenerator.ParseIntKey, used when the index surface needs to
// round-trip a textual row key back into row.Key.
func parseRowKey(s string) (row.Key, error) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return row.Key(i), nil
}
