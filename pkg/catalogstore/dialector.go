// Package catalogstore persists schema-object identity
// (catalog.ObjectRef) across process restarts, the way SPEC_FULL.md §6
// describes the database's persisted state requiring durable catalog
// metadata in addition to durable row storage. Adapted from the
// teacher's pkg/api/gorm package — a from-scratch gorm.Dialector that
// routed SQL through the teacher's own in-process engine instead of a
// network connection. That routing has no equivalent here: this module
// has no SQL engine of its own to dialect against (SQL parsing/execution
// is out of scope per spec.md §1), so this Dialector instead wraps a
// real *sql.DB opened against modernc.org/sqlite — the same embedded,
// pure-Go engine pkg/store uses for row storage — giving the catalog its
// own durable SQLite-backed table rather than an in-memory map.
package catalogstore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/migrator"
	"gorm.io/gorm/schema"
)

// Dialector implements gorm.Dialector over a modernc.org/sqlite
// connection. Unlike the teacher's MySQL-flavored dialector (backtick
// quoting, ON DUPLICATE KEY UPDATE), this one targets SQLite syntax
// directly: double-quote identifiers, `?` placeholders, INTEGER/TEXT
// storage classes.
type Dialector struct {
	DSN   string
	sqlDB *sql.DB
}

// NewDialector creates a Dialector that will open dsn (a
// modernc.org/sqlite data source name, e.g. a file path or ":memory:")
// during Initialize.
func NewDialector(dsn string) *Dialector {
	return &Dialector{DSN: dsn}
}

func (d *Dialector) Name() string { return "sqlite" }

func (d *Dialector) Initialize(db *gorm.DB) error {
	sqlDB, err := sql.Open("sqlite", d.DSN)
	if err != nil {
		return fmt.Errorf("catalogstore: open sqlite %q: %w", d.DSN, err)
	}
	// SQLite has no real concept of concurrent connections to the same
	// database; a pool of more than one connection against an
	// in-memory DSN would each see a *separate* empty database. Pin the
	// pool to a single connection, same as every sqlite-backed gorm
	// driver in the ecosystem does.
	sqlDB.SetMaxOpenConns(1)
	d.sqlDB = sqlDB
	db.ConnPool = sqlDB
	return nil
}

// Migrator returns a gorm.io/gorm/migrator.Migrator base, the same
// embeddable implementation real SQLite/Postgres/MySQL gorm drivers
// build on, so CreateTable/DropTable/AutoMigrate work without this
// package hand-rolling DDL string generation the way the teacher's
// migrator.go did for its own non-standard engine.
func (d *Dialector) Migrator(db *gorm.DB) gorm.Migrator {
	return migrator.Migrator{Config: migrator.Config{
		DB:                          db,
		Dialector:                   d,
		CreateIndexAfterCreateTable: true,
	}}
}

// DataTypeOf maps GORM schema field types to SQLite storage classes.
func (d *Dialector) DataTypeOf(field *schema.Field) string {
	switch field.DataType {
	case schema.Bool:
		return "BOOLEAN"
	case schema.Int, schema.Uint:
		return "INTEGER"
	case schema.Float:
		return "REAL"
	case schema.String:
		return "TEXT"
	case schema.Time:
		return "DATETIME"
	case schema.Bytes:
		return "BLOB"
	default:
		return "TEXT"
	}
}

func (d *Dialector) DefaultValueOf(field *schema.Field) clause.Expression {
	if field.DefaultValue != "" {
		return clause.Expr{SQL: "DEFAULT"}
	}
	return nil
}

// BindVarTo writes a `?` placeholder, SQLite's parameter style.
func (d *Dialector) BindVarTo(writer clause.Writer, _ *gorm.Statement, _ interface{}) {
	writer.WriteByte('?')
}

// QuoteTo quotes an identifier with double quotes, SQLite style.
func (d *Dialector) QuoteTo(writer clause.Writer, str string) {
	writer.WriteByte('"')
	writer.WriteString(str)
	writer.WriteByte('"')
}

func (d *Dialector) Explain(sql string, vars ...interface{}) string {
	return fmt.Sprintf("%s %v", sql, vars)
}

// Close releases the underlying *sql.DB.
func (d *Dialector) Close() error {
	if d.sqlDB == nil {
		return nil
	}
	return d.sqlDB.Close()
}

var _ gorm.Dialector = (*Dialector)(nil)
