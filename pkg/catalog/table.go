package catalog

import (
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CompareMode selects how identifiers are folded for name lookups —
// session-configurable, following spec.md §3's "name→column mapping with
// case-folding per session mode".
type CompareMode int

const (
	// CompareExact performs no folding: names must match byte-for-byte.
	CompareExact CompareMode = iota
	// CompareUpper folds to upper case before comparing (the common SQL
	// "unquoted identifiers are case-insensitive, stored upper" mode).
	CompareUpper
	// CompareLower folds to lower case before comparing.
	CompareLower
)

var foldUpper = cases.Upper(language.Und)
var foldLower = cases.Lower(language.Und)

func fold(mode CompareMode, name string) string {
	switch mode {
	case CompareUpper:
		return foldUpper.String(name)
	case CompareLower:
		return foldLower.String(name)
	default:
		return name
	}
}

// Common holds the table-layer state shared by every Table variant named
// in spec.md §9's capability-interface design: columns with a case-folded
// name map, the per-table max-column budget, and the comparison mode
// used for identifier lookups. Regular/View/Synonym/Virtual tables each
// embed a Common and add variant-specific state alongside it.
type Common struct {
	Ref         ObjectRef
	Compare     CompareMode
	MaxColumns  int

	mu      sync.RWMutex
	columns []*Column
	byName  map[string]int // folded name -> index into columns
}

// NewCommon creates an empty Common record for a table with the given
// identity, comparison mode, and column budget.
func NewCommon(ref ObjectRef, compare CompareMode, maxColumns int) *Common {
	return &Common{
		Ref:        ref,
		Compare:    compare,
		MaxColumns: maxColumns,
		byName:     make(map[string]int),
	}
}

// Columns returns the table's columns in declaration order.
func (c *Common) Columns() []*Column {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Column, len(c.columns))
	copy(out, c.columns)
	return out
}

// ColumnCount returns the number of columns currently on the table.
func (c *Common) ColumnCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.columns)
}

// AddColumn appends a column, enforcing the per-table column budget and
// rejecting duplicate (folded) names.
func (c *Common) AddColumn(col *Column) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.columns) >= c.MaxColumns {
		return ErrTooManyColumns(c.MaxColumns)
	}
	key := fold(c.Compare, col.Name)
	if _, exists := c.byName[key]; exists {
		return ErrDuplicateColumnName(col.Name)
	}
	col.ColumnID = len(c.columns)
	c.columns = append(c.columns, col)
	c.byName[key] = col.ColumnID
	return nil
}

// FindColumn resolves name to its column, case-folded per the table's
// comparison mode.
func (c *Common) FindColumn(name string) (*Column, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.byName[fold(c.Compare, name)]
	if !ok {
		return nil, ErrColumnNotFound(name)
	}
	return c.columns[idx], nil
}

// ResetColumns drops every column, for a view recompile that replaces its
// whole projection in one step (spec.md §4.6's "initializes columns from
// the query's projection" on recompile).
func (c *Common) ResetColumns() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.columns = nil
	c.byName = make(map[string]int)
}

// RenameColumn updates the name map atomically so a lookup never
// observes a half-renamed column.
func (c *Common) RenameColumn(oldName, newName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	oldKey := fold(c.Compare, oldName)
	idx, ok := c.byName[oldKey]
	if !ok {
		return ErrColumnNotFound(oldName)
	}
	newKey := fold(c.Compare, newName)
	if newKey != oldKey {
		if _, exists := c.byName[newKey]; exists {
			return ErrDuplicateColumnName(newName)
		}
	}
	c.columns[idx].Name = newName
	delete(c.byName, oldKey)
	c.byName[newKey] = idx
	return nil
}
