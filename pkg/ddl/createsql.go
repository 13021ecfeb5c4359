package ddl

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser/ast"

	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// TableCreateSQL renders a CREATE TABLE statement for ref's columns, the
// text table.Table.getCreateSQL() (spec.md §8) exposes for the
// round-trip law: ParseCreateTable(TableCreateSQL(ref, cols)) must
// report the same columns in the same order.
func TableCreateSQL(ref catalog.ObjectRef, cols []*catalog.Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (", quoteIdent(ref.Name))
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", quoteIdent(c.Name), sqlTypeName(c.Type))
		if c.PrimaryKey {
			b.WriteString(" PRIMARY KEY")
		} else if !c.Nullable {
			b.WriteString(" NOT NULL")
		}
	}
	b.WriteString(")")
	return b.String()
}

// ViewCreateSQL renders a CREATE VIEW statement wrapping querySQL.
func ViewCreateSQL(ref catalog.ObjectRef, querySQL string) string {
	return fmt.Sprintf("CREATE VIEW %s AS %s", quoteIdent(ref.Name), querySQL)
}

// DropSQL renders a DROP TABLE/VIEW statement for name, kind being
// "TABLE" or "VIEW".
func DropSQL(kind, name string) string {
	return fmt.Sprintf("DROP %s %s", kind, quoteIdent(name))
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// ColumnSpec is one parsed column of a CREATE TABLE statement.
type ColumnSpec struct {
	Name       string
	Type       value.TypeInfo
	Nullable   bool
	PrimaryKey bool
}

// TableSpec is the parsed shape of a CREATE TABLE statement.
type TableSpec struct {
	Name    string
	Columns []ColumnSpec
}

// ParseCreateTable parses sql as a single CREATE TABLE statement.
func (p *Parser) ParseCreateTable(sql string) (*TableSpec, error) {
	stmt, err := p.ParseOne(sql)
	if err != nil {
		return nil, err
	}
	create, ok := stmt.(*ast.CreateTableStmt)
	if !ok {
		return nil, fmt.Errorf("ddl: %q is not a CREATE TABLE statement", sql)
	}
	spec := &TableSpec{Name: create.Table.Name.String()}
	for _, col := range create.Cols {
		cs := ColumnSpec{
			Name:     col.Name.Name.String(),
			Type:     value.TypeInfo{Kind: kindFromSQLType(simplifyTypeName(col.Tp.String()))},
			Nullable: true,
		}
		for _, opt := range col.Options {
			switch opt.Tp {
			case ast.ColumnOptionNotNull:
				cs.Nullable = false
			case ast.ColumnOptionPrimaryKey:
				cs.Nullable = false
				cs.PrimaryKey = true
			}
		}
		spec.Columns = append(spec.Columns, cs)
	}
	return spec, nil
}

// ParseDropTable parses sql as a single DROP TABLE/VIEW statement,
// returning the dropped object's name and whether it names a view
// (TiDB's grammar uses one AST node, ast.DropTableStmt, for both).
func (p *Parser) ParseDropTable(sql string) (name string, isView bool, err error) {
	stmt, err := p.ParseOne(sql)
	if err != nil {
		return "", false, err
	}
	drop, ok := stmt.(*ast.DropTableStmt)
	if !ok {
		return "", false, fmt.Errorf("ddl: %q is not a DROP TABLE/VIEW statement", sql)
	}
	if len(drop.Tables) == 0 {
		return "", false, fmt.Errorf("ddl: %q names no table", sql)
	}
	return drop.Tables[0].Name.String(), drop.IsView, nil
}

// simplifyTypeName strips a type's length/precision suffix, e.g.
// "varchar(255)" -> "VARCHAR", mirroring the teacher's
// pkg/parser/adapter.go helper of the same purpose.
func simplifyTypeName(full string) string {
	if idx := strings.Index(full, "("); idx != -1 {
		full = full[:idx]
	}
	return strings.ToUpper(full)
}
