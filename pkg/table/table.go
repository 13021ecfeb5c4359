// Package table implements the table coordinator contract spec.md §9
// describes: a capability interface (Table) plus the shared Common
// record every variant composes, and the RegularTable variant's
// transactional add/remove/truncate/update and row-preparation logic.
package table

import (
	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/database"
	"github.com/kasuganosora/tablecore/pkg/index"
	"github.com/kasuganosora/tablecore/pkg/row"
)

// Table is the capability interface every table variant satisfies,
// replacing the source's deep virtual-method class hierarchy per
// spec.md §9's redesign note. Variant-specific behavior (RegularTable,
// the view family, synonyms, virtual tables) lives in their own types;
// this interface is only what the planner, DML layer, and metadata
// surfaces need in common.
type Table interface {
	// Ref returns the table's schema-object identity.
	Ref() catalog.ObjectRef
	// Columns returns the table's columns in declaration order.
	Columns() []*catalog.Column
	// Indexes returns the table's registered indexes, index 0 always the
	// scan index.
	Indexes() []index.Index
	// RowCount returns the table's current row count.
	RowCount() int64
	// LastModificationID returns the database-wide modification id as of
	// the table's last successful mutation.
	LastModificationID() int64
	// IsPersistent reports whether the table's rows/indexes survive a
	// process restart.
	IsPersistent() bool
}

// Common holds the state every Table variant shares: schema identity and
// columns (delegated to catalog.Common), the owning database handle, and
// the last-modification-id watermark views use to decide whether their
// cache is stale (spec.md §8's view invariant).
type Common struct {
	*catalog.Common
	DB database.Database

	lastModID int64
}

// NewCommon wraps a catalog.Common with the database handle every
// variant needs for modification-id bookkeeping and lock/schema access.
func NewCommon(cc *catalog.Common, db database.Database) *Common {
	return &Common{Common: cc, DB: db}
}

func (c *Common) Ref() catalog.ObjectRef { return c.Common.Ref }

func (c *Common) LastModificationID() int64 { return c.lastModID }

func (c *Common) bumpModificationID() {
	c.lastModID = c.DB.NextModificationDataID()
}

// RowFactory builds row/search-row carriers sized to this table's column
// count.
func (c *Common) RowFactory() *row.Factory {
	return row.NewFactory(c.ColumnCount())
}
