package virtual

import (
	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/database"
	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// Dual is the spec.md §4.8 Dual table: one row, either zero columns or a
// single BIGINT column `X`, useful for evaluating an expression with no
// real table reference (`SELECT 1 FROM DUAL`).
type Dual struct {
	ref        catalog.ObjectRef
	withColumn bool
}

// NewDual creates a Dual table. withColumn selects the one-column `X
// BIGINT` variant; otherwise the table has zero columns.
func NewDual(ref catalog.ObjectRef, withColumn bool) *Dual {
	return &Dual{ref: ref, withColumn: withColumn}
}

func (d *Dual) Ref() catalog.ObjectRef { return d.ref }

func (d *Dual) Columns() []*catalog.Column {
	if !d.withColumn {
		return nil
	}
	return []*catalog.Column{{Name: "X", Type: value.TypeInfo{Kind: value.KindInt}, Nullable: false}}
}

func (d *Dual) GetResult(_ database.Session) ([]*row.Row, error) {
	if !d.withColumn {
		return []*row.Row{row.New(0, nil)}, nil
	}
	return []*row.Row{row.New(0, []value.Value{value.NewInt(1)})}, nil
}
