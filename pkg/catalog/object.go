// Package catalog holds schema object identity, the Column descriptor,
// and the case-folded name→column map every Table variant shares.
package catalog

import "github.com/google/uuid"

// ObjectKind distinguishes the schema object taxonomy for listings and
// script export.
type ObjectKind int

const (
	KindTable ObjectKind = iota
	KindIndex
	KindConstraint
	KindTrigger
	KindSequence
	KindView
	KindSynonym
)

// ObjectRef is the stable identity every schema object carries: an
// integer id for internal references, a UUID-derived external reference
// for script/export surfaces that must survive an id renumbering, a
// qualified name, an optional comment, and a hidden flag that excludes it
// from metadata listings.
type ObjectRef struct {
	ID       int64
	External string
	Kind     ObjectKind
	Schema   string
	Name     string
	Comment  string
	Hidden   bool
}

// NewObjectRef allocates a new schema object identity. id is assigned by
// the caller's id sequence (database-wide); External is generated here so
// every object gets one regardless of caller discipline.
func NewObjectRef(id int64, kind ObjectKind, schema, name string) ObjectRef {
	return ObjectRef{
		ID:       id,
		External: uuid.NewString(),
		Kind:     kind,
		Schema:   schema,
		Name:     name,
	}
}

// QualifiedName returns "schema.name", or just "name" when schema is
// empty (the default schema).
func (o ObjectRef) QualifiedName() string {
	if o.Schema == "" {
		return o.Name
	}
	return o.Schema + "." + o.Name
}
