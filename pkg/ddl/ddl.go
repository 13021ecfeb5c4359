// Package ddl supplies the pingcap-parser-backed collaborators
// pkg/view declares as external contracts: a view.QueryCompiler that
// parses a stored view's SELECT text into an executable view.Query, plus
// CREATE/DROP SQL text production and parsing for the round-trip law
// spec.md §8 names ("parse(table.getCreateSQL()) ... yields an
// equivalent table"). Grounded on the teacher's pkg/parser package,
// which wraps the same github.com/pingcap/tidb/pkg/parser the rest of
// the kasuganosora-sqlexec tree uses for every SQL-text surface; actual
// predicate/expression evaluation stays out of scope per spec.md §1, so
// the parts of a statement this package can't express as table/column
// structure (WHERE, JOIN, GROUP BY, subqueries) are reported as
// unsupported rather than silently dropped.
package ddl

import (
	"fmt"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
)

// Parser wraps the pingcap SQL parser, shared by Compiler and the
// CREATE/DROP text helpers below.
type Parser struct {
	p *parser.Parser
}

// NewParser builds a Parser.
func NewParser() *Parser {
	return &Parser{p: parser.New()}
}

// ParseOne parses sql, requiring exactly one statement.
func (p *Parser) ParseOne(sql string) (ast.StmtNode, error) {
	stmts, _, err := p.p.Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("ddl: parse %q: %w", sql, err)
	}
	if len(stmts) != 1 {
		return nil, fmt.Errorf("ddl: expected exactly one statement, got %d", len(stmts))
	}
	return stmts[0], nil
}
