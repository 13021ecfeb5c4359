package table

import "fmt"

// ErrCode identifies one of the stable error identifiers spec'd for the
// table-coordinator layer.
type ErrCode string

const (
	CodeIndexNotFound        ErrCode = "INDEX_NOT_FOUND_1"
	CodeColumnIsReferenced   ErrCode = "COLUMN_IS_REFERENCED_1"
	CodeConcurrentUpdate     ErrCode = "CONCURRENT_UPDATE_1"
	CodeRowNotFoundOnDelete  ErrCode = "ROW_NOT_FOUND_WHEN_DELETING_1"
	CodeGeneratedColumnAssigned ErrCode = "GENERATED_COLUMN_CANNOT_BE_ASSIGNED_1"
	CodeInternal             ErrCode = "INTERNAL_ERROR"
)

// Error is the error type raised by the table-coordinator layer.
type Error struct {
	Code    ErrCode
	Table   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (table %q)", e.Code, e.Message, e.Table)
}

func CodeOf(err error) (ErrCode, bool) {
	te, ok := err.(*Error)
	if !ok {
		return "", false
	}
	return te.Code, true
}

func ErrIndexNotFound(table, name string) error {
	return &Error{Code: CodeIndexNotFound, Table: table, Message: fmt.Sprintf("index %q not found", name)}
}

func ErrColumnIsReferenced(table, column string) error {
	return &Error{Code: CodeColumnIsReferenced, Table: table, Message: fmt.Sprintf("column %q is referenced by a foreign key", column)}
}

func ErrConcurrentUpdate(table string, key int64) error {
	return &Error{Code: CodeConcurrentUpdate, Table: table, Message: fmt.Sprintf("row %d was concurrently modified", key)}
}

func ErrRowNotFoundOnDelete(table string, key int64) error {
	return &Error{Code: CodeRowNotFoundOnDelete, Table: table, Message: fmt.Sprintf("row %d not found when deleting", key)}
}

func ErrGeneratedColumnAssigned(table, column string) error {
	return &Error{Code: CodeGeneratedColumnAssigned, Table: table, Message: fmt.Sprintf("value cannot be assigned to generated column %q", column)}
}

// ErrInternal marks a corruption-level fatal error: an invariant that
// should be unreachable in a correct build (spec.md §7's "Internal"
// taxonomy entry), e.g. an index undo that itself fails mid-rollback.
func ErrInternal(table, detail string) error {
	return &Error{Code: CodeInternal, Table: table, Message: detail}
}
