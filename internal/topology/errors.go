package topology

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// ErrorCode categorizes topology errors.
type ErrorCode string

const (
	// ErrCodeInvalidDocument indicates a document that fails to parse or
	// violates the document structure.
	ErrCodeInvalidDocument ErrorCode = "INVALID_DOCUMENT"

	// ErrCodeUnknownType indicates a plugin type id missing from the catalog.
	ErrCodeUnknownType ErrorCode = "UNKNOWN_TYPE"

	// ErrCodeBadReference indicates an instance reference that does not
	// resolve, or an id that cannot be preserved.
	ErrCodeBadReference ErrorCode = "BAD_REFERENCE"
)

// Error is the structured error type of this package.
type Error struct {
	Code    ErrorCode
	Message string

	// Field is the document path the error refers to, e.g. "instances[2].type".
	Field string

	// Pos is the CUE source position, if known.
	Pos token.Pos

	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Pos.IsValid() {
		msg = fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf returns the topology error code carried by err, or "".
func CodeOf(err error) ErrorCode {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

func invalid(field, format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidDocument, Field: field, Message: fmt.Sprintf(format, args...)}
}

func badRef(field, format string, args ...any) *Error {
	return &Error{Code: ErrCodeBadReference, Field: field, Message: fmt.Sprintf(format, args...)}
}
