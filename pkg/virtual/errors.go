package virtual

import "fmt"

// ErrCode identifies a virtual-table-layer error.
type ErrCode string

const (
	// CodeStepSizeZero matches spec.md §6's STEP_SIZE_MUST_NOT_BE_ZERO.
	CodeStepSizeZero ErrCode = "STEP_SIZE_MUST_NOT_BE_ZERO"
	// CodeFunctionMustReturnResultSet matches spec.md §6's
	// FUNCTION_MUST_RETURN_RESULT_SET_1.
	CodeFunctionMustReturnResultSet ErrCode = "FUNCTION_MUST_RETURN_RESULT_SET_1"
)

// Error is the error type raised by this package.
type Error struct {
	Code    ErrCode
	Name    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (table %q)", e.Code, e.Message, e.Name)
}

func CodeOf(err error) (ErrCode, bool) {
	ve, ok := err.(*Error)
	if !ok {
		return "", false
	}
	return ve.Code, true
}

func ErrStepSizeZero(name string) error {
	return &Error{Code: CodeStepSizeZero, Name: name, Message: "RANGE step size must not be zero"}
}

func ErrFunctionMustReturnResultSet(name string) error {
	return &Error{Code: CodeFunctionMustReturnResultSet, Name: name, Message: "function did not produce a result set"}
}
