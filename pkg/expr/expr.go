// Package expr defines the opaque Expression contract the table layer
// consumes for column defaults, generated columns, on-update expressions,
// and predicate evaluation. Parsing and query compilation are external
// collaborators; this package only specifies the contract plus one
// concrete tree-walking implementation for defaults/generated columns.
package expr

import "github.com/kasuganosora/tablecore/pkg/value"

// EvalContext is the stack-local evaluation context passed into Eval,
// carrying whatever the expression needs to resolve column references
// against the current row — a session, plus the row under construction.
// Kept as a plain value rather than stored on the column/expression, per
// the generator-evaluation critical-section design note: evaluations are
// lock-free and reentrant because nothing mutable is shared across calls.
type EvalContext struct {
	Session     Session
	Row         RowAccessor
	ColumnNames []string
}

// RowAccessor lets an expression read sibling column values of the row
// currently being validated/converted, without depending on pkg/row
// directly (avoids an import cycle with pkg/catalog, which both pkg/expr
// and pkg/row feed into).
type RowAccessor interface {
	ColumnValue(name string) (value.Value, bool)
}

// Session is the minimal collaborator contract an expression needs: a
// way to obtain the next value of a named sequence, for identity-style
// expressions embedded in defaults.
type Session interface {
	NextValueFor(sequenceName string) (int64, error)
}

// Expression is the opaque contract: defaults, generated-column bodies,
// on-update bodies, and predicate expressions in index selection all
// implement it.
type Expression interface {
	// Eval evaluates the expression in ctx and returns its value.
	Eval(ctx EvalContext) (value.Value, error)
	// IsConstant reports whether Eval always returns the same value
	// regardless of ctx (e.g. a literal), letting callers cache it.
	IsConstant() bool
	// Dependencies returns the column names this expression reads, used
	// to order generated-column evaluation and to build predicate masks.
	Dependencies() []string
	// SQL renders the expression back to SQL text, used when producing
	// CREATE TABLE / CREATE VIEW text (pkg/ddl).
	SQL() string
}

// Literal is a constant Expression — the common case for DEFAULT clauses
// that are not themselves computed.
type Literal struct {
	Value value.Value
	Text  string
}

func NewLiteral(v value.Value, text string) *Literal {
	return &Literal{Value: v, Text: text}
}

func (l *Literal) Eval(EvalContext) (value.Value, error) { return l.Value, nil }
func (l *Literal) IsConstant() bool                       { return true }
func (l *Literal) Dependencies() []string                 { return nil }
func (l *Literal) SQL() string                            { return l.Text }

// ColumnRef reads another column of the same row — the building block
// generated-column and on-update expressions compose through Func.
type ColumnRef struct {
	Name string
}

func NewColumnRef(name string) *ColumnRef { return &ColumnRef{Name: name} }

func (c *ColumnRef) Eval(ctx EvalContext) (value.Value, error) {
	if ctx.Row == nil {
		return value.Null, nil
	}
	v, ok := ctx.Row.ColumnValue(c.Name)
	if !ok {
		return value.Null, nil
	}
	return v, nil
}
func (c *ColumnRef) IsConstant() bool     { return false }
func (c *ColumnRef) Dependencies() []string { return []string{c.Name} }
func (c *ColumnRef) SQL() string          { return c.Name }

// Func applies a named function to a list of argument expressions — the
// general-purpose tree node for generated/on-update bodies like
// `GENERATED ALWAYS AS (price * qty)`.
type Func struct {
	Name string
	Args []Expression
	Body func(args []value.Value) (value.Value, error)
}

func NewFunc(name string, body func([]value.Value) (value.Value, error), args ...Expression) *Func {
	return &Func{Name: name, Args: args, Body: body}
}

func (f *Func) Eval(ctx EvalContext) (value.Value, error) {
	args := make([]value.Value, len(f.Args))
	for i, a := range f.Args {
		v, err := a.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}
	return f.Body(args)
}

func (f *Func) IsConstant() bool {
	for _, a := range f.Args {
		if !a.IsConstant() {
			return false
		}
	}
	return true
}

func (f *Func) Dependencies() []string {
	var deps []string
	for _, a := range f.Args {
		deps = append(deps, a.Dependencies()...)
	}
	return deps
}

func (f *Func) SQL() string {
	s := f.Name + "("
	for i, a := range f.Args {
		if i > 0 {
			s += ", "
		}
		s += a.SQL()
	}
	return s + ")"
}
