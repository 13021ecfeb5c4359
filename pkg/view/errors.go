package view

import "fmt"

// ErrCode identifies one of the stable error identifiers the view family
// raises.
type ErrCode string

const (
	// CodeViewIsInvalid matches spec.md §6's VIEW_IS_INVALID_2: a view
	// whose last recompile failed and was force-marked invalid rather
	// than propagating the failure.
	CodeViewIsInvalid ErrCode = "VIEW_IS_INVALID_2"
	// CodeMaterializedViewReadOnly is raised when a mutation reaches a
	// materialized view with no backing table attached.
	CodeMaterializedViewReadOnly ErrCode = "MATERIALIZED_VIEW_IS_READ_ONLY"
	// CodeColumnAliasNotSpecified matches spec.md §6's
	// COLUMN_ALIAS_IS_NOT_SPECIFIED_1: a projection column with no
	// derivable name and no supplied template to cover it.
	CodeColumnAliasNotSpecified ErrCode = "COLUMN_ALIAS_IS_NOT_SPECIFIED_1"
)

// Error is the error type raised by the view family.
type Error struct {
	Code    ErrCode
	Name    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (view %q)", e.Code, e.Message, e.Name)
}

func CodeOf(err error) (ErrCode, bool) {
	ve, ok := err.(*Error)
	if !ok {
		return "", false
	}
	return ve.Code, true
}

func ErrViewIsInvalid(name string, cause error) error {
	msg := "view is invalid"
	if cause != nil {
		msg = "view is invalid: " + cause.Error()
	}
	return &Error{Code: CodeViewIsInvalid, Name: name, Message: msg}
}

func ErrMaterializedViewReadOnly(name string) error {
	return &Error{Code: CodeMaterializedViewReadOnly, Name: name, Message: "materialized view has no backing table to mutate"}
}

func ErrColumnAliasNotSpecified(name string, position int) error {
	return &Error{Code: CodeColumnAliasNotSpecified, Name: name, Message: fmt.Sprintf("projection column %d has no name and no column alias was supplied", position)}
}
