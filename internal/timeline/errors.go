package timeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrorCode categorizes timeline errors.
type ErrorCode string

const (
	// ErrCodeOrdering indicates an event whose start is after its end.
	ErrCodeOrdering ErrorCode = "ORDERING"

	// ErrCodeCorruption indicates a violated table invariant.
	ErrCodeCorruption ErrorCode = "CORRUPTION"

	// ErrCodeNotFound indicates an unknown event id.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInvalidSplit indicates split parts that do not fit the parent.
	ErrCodeInvalidSplit ErrorCode = "INVALID_SPLIT"
)

// Error is returned by every failing Table operation.
type Error struct {
	Code    ErrorCode
	Message string

	// EventID is the event the failure refers to, uuid.Nil if none.
	EventID uuid.UUID
}

func (e *Error) Error() string {
	if e.EventID != uuid.Nil {
		return fmt.Sprintf("%s: %s (event=%s)", e.Code, e.Message, e.EventID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the timeline error code carried by err, or "" if err is not
// a timeline error.
func CodeOf(err error) ErrorCode {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsOrderingError reports whether err is an ORDERING error.
func IsOrderingError(err error) bool { return CodeOf(err) == ErrCodeOrdering }

// IsCorruptionError reports whether err is a CORRUPTION error.
func IsCorruptionError(err error) bool { return CodeOf(err) == ErrCodeCorruption }

// IsNotFoundError reports whether err is a NOT_FOUND error.
func IsNotFoundError(err error) bool { return CodeOf(err) == ErrCodeNotFound }

func orderingError(id uuid.UUID) *Error {
	return &Error{Code: ErrCodeOrdering, Message: "event ends before it starts", EventID: id}
}

func corruptionError(id uuid.UUID, format string, args ...any) *Error {
	return &Error{Code: ErrCodeCorruption, Message: fmt.Sprintf(format, args...), EventID: id}
}

func notFoundError(id uuid.UUID) *Error {
	return &Error{Code: ErrCodeNotFound, Message: "no such event", EventID: id}
}

func splitError(id uuid.UUID, format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidSplit, Message: fmt.Sprintf(format, args...), EventID: id}
}
