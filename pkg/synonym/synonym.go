// Package synonym implements the spec.md §4.7 TableSynonym: a pure
// delegating facade over a resolved target table. Unlike the view
// family, a synonym never registers itself as a dependency of its
// target, so dropping the target never blocks on it — the synonym is
// simply invalidated.
package synonym

import (
	"fmt"

	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/index"
)

// ErrCode identifies a synonym-layer error.
type ErrCode string

const (
	// CodeSynonymTargetMissing is raised by Resolve when the target
	// table has been dropped or renamed out from under the synonym.
	CodeSynonymTargetMissing ErrCode = "SYNONYM_TARGET_NOT_FOUND_1"
	// CodeAsTableUnsupported is raised by AsTable on a surface that does
	// not support resolving a synonym to a concrete table (spec.md
	// §4.7's "asTable() fails for surfaces that do not support
	// synonyms").
	CodeAsTableUnsupported ErrCode = "SYNONYM_AS_TABLE_UNSUPPORTED_1"
)

// Error is the error type raised by this package.
type Error struct {
	Code ErrCode
	Name string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: synonym %q", e.Code, e.Name)
}

func CodeOf(err error) (ErrCode, bool) {
	se, ok := err.(*Error)
	if !ok {
		return "", false
	}
	return se.Code, true
}

// Target is the capability interface a synonym delegates every
// structural and data operation to — the same shape table.Table exposes,
// kept local to this package to avoid importing pkg/table purely for an
// interface.
type Target interface {
	Ref() catalog.ObjectRef
	Columns() []*catalog.Column
	Indexes() []index.Index
	RowCount() int64
	LastModificationID() int64
	IsPersistent() bool
}

// Resolver looks up a synonym's target by qualified name at the moment
// it's needed, so a synonym sees whatever table is currently registered
// under that name; a dropped or renamed target surfaces as
// CodeSynonymTargetMissing rather than a stale pointer.
type Resolver func(qualifiedName string) (Target, bool)

// TableSynonym is the spec.md §4.7 delegating facade: `CREATE SYNONYM
// <qname> FOR <schema>.<target>`.
type TableSynonym struct {
	ref          catalog.ObjectRef
	targetSchema string
	targetName   string
	resolve      Resolver
}

// NewTableSynonym creates a synonym identified by ref, pointing at
// targetSchema.targetName, resolved lazily through resolve.
func NewTableSynonym(ref catalog.ObjectRef, targetSchema, targetName string, resolve Resolver) *TableSynonym {
	return &TableSynonym{ref: ref, targetSchema: targetSchema, targetName: targetName, resolve: resolve}
}

// Ref returns the synonym's own schema-object identity (distinct from
// its target's).
func (s *TableSynonym) Ref() catalog.ObjectRef { return s.ref }

func (s *TableSynonym) targetQualifiedName() string {
	if s.targetSchema == "" {
		return s.targetName
	}
	return s.targetSchema + "." + s.targetName
}

// Resolve returns the synonym's current target, re-resolved on every
// call (spec.md §4.7's "resolve() returns the target table") — a
// dropped or renamed target surfaces as CodeSynonymTargetMissing rather
// than panicking on a stale reference.
func (s *TableSynonym) Resolve() (Target, error) {
	t, ok := s.resolve(s.targetQualifiedName())
	if !ok {
		return nil, &Error{Code: CodeSynonymTargetMissing, Name: s.ref.Name}
	}
	return t, nil
}

// Columns delegates to the resolved target; an unresolvable target
// yields no columns rather than erroring, since metadata listings
// (pkg/metatable) need to enumerate synonyms even when their target is
// temporarily missing.
func (s *TableSynonym) Columns() []*catalog.Column {
	t, err := s.Resolve()
	if err != nil {
		return nil
	}
	return t.Columns()
}

// Indexes delegates to the resolved target.
func (s *TableSynonym) Indexes() []index.Index {
	t, err := s.Resolve()
	if err != nil {
		return nil
	}
	return t.Indexes()
}

// RowCount delegates to the resolved target, or 0 if unresolvable.
func (s *TableSynonym) RowCount() int64 {
	t, err := s.Resolve()
	if err != nil {
		return 0
	}
	return t.RowCount()
}

// LastModificationID delegates to the resolved target, or 0 if
// unresolvable.
func (s *TableSynonym) LastModificationID() int64 {
	t, err := s.Resolve()
	if err != nil {
		return 0
	}
	return t.LastModificationID()
}

// IsPersistent delegates to the resolved target.
func (s *TableSynonym) IsPersistent() bool {
	t, err := s.Resolve()
	if err != nil {
		return false
	}
	return t.IsPersistent()
}

// AsTable resolves the synonym to its concrete backing Target, for
// surfaces (DML, the planner) that need to operate on the target
// directly rather than through the synonym's delegating methods. It
// fails with CodeAsTableUnsupported when allowed reports false — e.g. a
// metadata-listing surface that deliberately never follows synonyms.
func (s *TableSynonym) AsTable(allowed bool) (Target, error) {
	if !allowed {
		return nil, &Error{Code: CodeAsTableUnsupported, Name: s.ref.Name}
	}
	return s.Resolve()
}
