package ddl

import (
	"fmt"

	"github.com/kasuganosora/tablecore/pkg/value"
)

// sqlTypeName renders a value.Kind as the SQL type-name vocabulary
// CREATE TABLE text uses, mirroring the teacher's simplifyTypeName
// (pkg/parser/adapter.go) in reverse: a declared Kind maps to one fixed
// canonical type name rather than preserving whatever vendor spelling
// the original DDL used.
func sqlTypeName(t value.TypeInfo) string {
	switch t.Kind {
	case value.KindBool:
		return "BOOLEAN"
	case value.KindInt:
		return "BIGINT"
	case value.KindFloat:
		return "DOUBLE"
	case value.KindString:
		if t.Precision > 0 {
			return fmt.Sprintf("VARCHAR(%d)", t.Precision)
		}
		return "TEXT"
	case value.KindBytes:
		return "BLOB"
	case value.KindTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// kindFromSQLType maps a parsed column's simplified type name back to a
// value.Kind, the inverse of sqlTypeName, tolerant of the handful of
// spellings MySQL-flavored DDL commonly uses for each kind.
func kindFromSQLType(name string) value.Kind {
	switch name {
	case "BOOL", "BOOLEAN":
		return value.KindBool
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT":
		return value.KindInt
	case "FLOAT", "DOUBLE", "DECIMAL", "REAL", "NUMERIC":
		return value.KindFloat
	case "VARCHAR", "CHAR", "TEXT", "VARSTRING", "STRING", "LONGTEXT", "MEDIUMTEXT":
		return value.KindString
	case "BLOB", "BINARY", "VARBINARY", "LONGBLOB", "MEDIUMBLOB":
		return value.KindBytes
	case "DATE", "TIME", "DATETIME", "TIMESTAMP":
		return value.KindTime
	default:
		return value.KindString
	}
}
