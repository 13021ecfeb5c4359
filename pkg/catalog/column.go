package catalog

import (
	"github.com/kasuganosora/tablecore/pkg/expr"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// Sequence is the collaborator contract for an identity column's backing
// sequence: next-value generation plus the bump operation spec.md §4.1
// step 6 describes (advance current so it stays ahead of a manually
// inserted value, respecting increment sign and cycle state).
type Sequence interface {
	NextValue() (int64, error)
	CurrentValue() int64
	Increment() int64
	// Bump advances the sequence so that current*sign(increment) >=
	// inserted*sign(increment). A no-op if already satisfied.
	Bump(inserted int64) error
}

// IdentityOptions configures a `GENERATED {ALWAYS|BY DEFAULT} AS
// IDENTITY(...)` column that has no explicit backing Sequence object
// (an anonymous sequence is implied).
type IdentityOptions struct {
	Always      bool // true = GENERATED ALWAYS, false = GENERATED BY DEFAULT
	StartWith   int64
	IncrementBy int64
	Cycle       bool
}

// Domain is a named, reusable column-type constraint: a base type plus an
// optional CHECK-style expression evaluated against the candidate value.
type Domain struct {
	Name         string
	Base         value.TypeInfo
	DefaultExpr  expr.Expression
	CheckExpr    expr.Expression
}

// Session is the collaborator contract Column needs from the active
// session: identity sequence advancement and the compatibility flag that
// controls whether manual inserts bump the sequence forward.
type Session interface {
	expr.Session
	BumpIdentityOnManualInsert() bool
}

// Column is the typed attribute descriptor spec.md §3 describes. A
// Column is *identity* iff Sequence or IdentityOpts is set (and then
// Nullable must be false, DefaultExpr/OnUpdateExpr must be nil — enforced
// by the table coordinator at DDL time, not here). A Column is
// *generated* iff IsGeneratedAlways && DefaultExpr != nil && Sequence ==
// nil.
type Column struct {
	Name          string
	Type          value.TypeInfo
	ColumnID      int
	Nullable      bool
	Visible       bool
	RowID         bool
	PrimaryKey    bool
	Selectivity   int // 0..100
	Domain        *Domain
	DefaultExpr   expr.Expression
	OnUpdateExpr  expr.Expression
	Sequence      Sequence
	IdentityOpts  *IdentityOptions
	IsGeneratedAlways bool
	DefaultOnNull bool
	Comment       string
}

// IsIdentity reports whether the column draws its values from a
// sequence, either via an explicit Sequence or inline IdentityOptions.
func (c *Column) IsIdentity() bool {
	return c.Sequence != nil || c.IdentityOpts != nil
}

// IsGenerated reports whether the column's value is always computed from
// other columns of the same row.
func (c *Column) IsGenerated() bool {
	return c.IsGeneratedAlways && c.DefaultExpr != nil && c.Sequence == nil
}

// effectiveDefault returns the column's own default, falling back to the
// domain's default when the column has none of its own.
func (c *Column) effectiveDefault() expr.Expression {
	if c.DefaultExpr != nil {
		return c.DefaultExpr
	}
	if c.Domain != nil && c.Domain.DefaultExpr != nil {
		return c.Domain.DefaultExpr
	}
	return nil
}

// ValidateConvertUpdateSequence implements spec.md §4.1's
// validateConvertUpdateSequence: it fills in an absent value (identity
// sequence or default expression), enforces NOT NULL, coerces to the
// declared type, runs domain constraints, and — for generated columns —
// evaluates the stored expression against the row under construction.
//
// v is nil when no value was supplied for this column at all (distinct
// from an explicit NULL). session and row give the expression evaluator
// enough context to resolve sequence/column references; row may be nil
// when evaluating a column with no row-dependent expression.
func (c *Column) ValidateConvertUpdateSequence(session Session, v *value.Value, row expr.RowAccessor) (value.Value, error) {
	var result value.Value

	switch {
	case v != nil:
		result = *v
	case c.IsIdentity():
		next, err := c.nextIdentityValue(session)
		if err != nil {
			return value.Value{}, err
		}
		result = value.NewInt(next)
	default:
		if def := c.effectiveDefault(); def != nil {
			ctx := expr.EvalContext{Session: session, Row: row}
			val, err := def.Eval(ctx)
			if err != nil {
				return value.Value{}, err
			}
			result = val
		} else {
			result = value.Null
		}
	}

	if result.IsNull() && c.DefaultOnNull {
		if def := c.effectiveDefault(); def != nil {
			ctx := expr.EvalContext{Session: session, Row: row}
			val, err := def.Eval(ctx)
			if err != nil {
				return value.Value{}, err
			}
			result = val
		}
	}

	if result.IsNull() && !c.Nullable {
		return value.Value{}, ErrNullNotAllowed(c.Name)
	}

	if !result.IsNull() {
		converted, err := value.AssignConvert(result, c.Type)
		if err != nil {
			return value.Value{}, ErrDataConversion(c.Name, c.Type.Kind.String(), err)
		}
		result = converted
	}

	if c.Domain != nil && c.Domain.CheckExpr != nil && !result.IsNull() {
		ctx := expr.EvalContext{Session: session, Row: row}
		check, err := c.Domain.CheckExpr.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		if b, ok := check.Raw.(bool); ok && !b {
			return value.Value{}, ErrDataConversion(c.Name, c.Domain.Name, nil)
		}
	}

	// Generated columns always recompute from the expression once the
	// rest of the row's non-generated columns are final; evaluation reads
	// through row (a stack-local context), so concurrent evaluations on
	// different rows never contend on shared column state.
	if c.IsGenerated() {
		ctx := expr.EvalContext{Session: session, Row: row}
		computed, err := c.DefaultExpr.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		converted, err := value.AssignConvert(computed, c.Type)
		if err != nil {
			return value.Value{}, ErrDataConversion(c.Name, c.Type.Kind.String(), err)
		}
		result = converted
	}

	if v != nil && c.IsIdentity() && session.BumpIdentityOnManualInsert() {
		if inserted, err := result.Int64(); err == nil && c.Sequence != nil {
			if err := c.Sequence.Bump(inserted); err != nil {
				return value.Value{}, err
			}
		}
	}

	return result, nil
}

func (c *Column) nextIdentityValue(session Session) (int64, error) {
	if c.Sequence != nil {
		return c.Sequence.NextValue()
	}
	// Inline identity options imply an anonymous sequence; callers that
	// construct a Column with IdentityOpts are expected to also attach a
	// Sequence backing it once the table registers the column (see
	// pkg/table's DDL path) — evaluated here only as a fallback.
	return session.NextValueFor(c.Name)
}

// IsWideningConversion reports whether changing this column's
// declaration to next can never lose information: value-type, precision
// direction, scale, and key/identity/generated/domain/default/on-update
// status must all be compatible.
func (c *Column) IsWideningConversion(next *Column) bool {
	if !value.IsWideningConversion(c.Type, next.Type) {
		return false
	}
	if c.Nullable && !next.Nullable {
		return false
	}
	if c.PrimaryKey != next.PrimaryKey ||
		c.IsIdentity() != next.IsIdentity() ||
		c.IsGenerated() != next.IsGenerated() {
		return false
	}
	if (c.Domain == nil) != (next.Domain == nil) {
		return false
	}
	if (c.DefaultExpr == nil) != (next.DefaultExpr == nil) {
		return false
	}
	if (c.OnUpdateExpr == nil) != (next.OnUpdateExpr == nil) {
		return false
	}
	return true
}
