package lock

import "fmt"

// ErrCode identifies a stable lock-layer error condition, independent of
// the human-readable message wrapped around it.
type ErrCode string

const (
	CodeLockTimeout ErrCode = "LOCK_TIMEOUT"
	CodeDeadlock    ErrCode = "DEADLOCK"
)

// Error is the error type raised by the lock manager. Callers compare
// against a code rather than parsing the message.
type Error struct {
	Code    ErrCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the ErrCode from err, if it is a *Error.
func CodeOf(err error) (ErrCode, bool) {
	le, ok := err.(*Error)
	if !ok {
		return "", false
	}
	return le.Code, true
}

// ErrLockTimeout reports that a session waited longer than its configured
// lock timeout to acquire a table lock.
func ErrLockTimeout(table string, session Session) error {
	return &Error{
		Code: CodeLockTimeout,
		Message: fmt.Sprintf("timeout trying to lock table %q for session %q",
			table, session.ThreadName()),
	}
}

// ErrDeadlock reports a detected wait-for cycle. detail is a pre-formatted,
// human-readable cycle description (see FormatCycle).
func ErrDeadlock(detail string) error {
	return &Error{
		Code:    CodeDeadlock,
		Message: "deadlock detected: " + detail,
	}
}
