// Package row defines the tuple carrier and key types that flow between
// the table coordinator, the planner, and every Index implementation.
package row

import "github.com/kasuganosora/tablecore/pkg/value"

// Key is a row's stable identifier within its owning table. Unique within
// the table; row keys from different tables are not comparable.
type Key int64

// Row is a fixed-length tuple of typed values plus its key and a rough
// in-memory footprint estimate used by cache/eviction policy elsewhere in
// the stack (not owned by this package).
type Row struct {
	Key    Key
	Values []value.Value
}

// New builds a row with the given key and values, in column order.
func New(key Key, values []value.Value) *Row {
	return &Row{Key: key, Values: values}
}

// Get returns the value at column index i, or value.Null if out of range.
func (r *Row) Get(i int) value.Value {
	if i < 0 || i >= len(r.Values) {
		return value.Null
	}
	return r.Values[i]
}

// Set assigns the value at column index i.
func (r *Row) Set(i int, v value.Value) {
	if i < 0 || i >= len(r.Values) {
		return
	}
	r.Values[i] = v
}

// MemoryEstimate returns a rough byte-size estimate of the row: a fixed
// 24-byte overhead plus the length of each string or []byte value and 8
// bytes for any other value.
func (r *Row) MemoryEstimate() int64 {
	var size int64 = 24 // key + slice header overhead, approximate
	for _, v := range r.Values {
		switch raw := v.Raw.(type) {
		case string:
			size += int64(len(raw))
		case []byte:
			size += int64(len(raw))
		default:
			size += 8
		}
	}
	return size
}

// Clone returns a shallow copy of the row with an independent Values
// slice, so in-place edits by one collaborator (e.g. an UPDATE building
// the new row) never alias the original.
func (r *Row) Clone() *Row {
	values := make([]value.Value, len(r.Values))
	copy(values, r.Values)
	return &Row{Key: r.Key, Values: values}
}

// SearchRow is the partial-row carrier used to probe an index: nil
// entries in Values mean "no constraint on this column"; only the
// non-nil entries are compared.
type SearchRow struct {
	Values []*value.Value
}

// NewSearchRow builds a search row with the given width, all columns
// unconstrained.
func NewSearchRow(width int) *SearchRow {
	return &SearchRow{Values: make([]*value.Value, width)}
}

// Bind constrains column i to v.
func (s *SearchRow) Bind(i int, v value.Value) {
	if i < 0 || i >= len(s.Values) {
		return
	}
	vv := v
	s.Values[i] = &vv
}

// Factory builds concrete Row/SearchRow instances for a table of a given
// column width, so callers never hard-code row shape.
type Factory struct {
	Width int
}

// NewFactory returns a row factory for a table with the given column
// count.
func NewFactory(width int) *Factory {
	return &Factory{Width: width}
}

// CreateRow builds a new, empty row with the given key.
func (f *Factory) CreateRow(key Key) *Row {
	return &Row{Key: key, Values: make([]value.Value, f.Width)}
}

// CreateSearchRow builds a new, fully-unconstrained search row.
func (f *Factory) CreateSearchRow() *SearchRow {
	return NewSearchRow(f.Width)
}
