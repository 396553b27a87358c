package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrorCode categorizes pipeline errors.
type ErrorCode string

const (
	// ErrCodeMissingConnection indicates a declared input with no incoming connection.
	ErrCodeMissingConnection ErrorCode = "MISSING_CONNECTION"

	// ErrCodeTypeMismatch indicates connected ports with different type tags.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeBufferMiss indicates an input whose producer has not written it yet.
	ErrCodeBufferMiss ErrorCode = "BUFFER_MISS"

	// ErrCodeBufferOverwrite indicates a second write to a (producer, port) in one run.
	ErrCodeBufferOverwrite ErrorCode = "BUFFER_OVERWRITE"

	// ErrCodeCyclicDependency indicates a cycle among connections.
	ErrCodeCyclicDependency ErrorCode = "CYCLIC_DEPENDENCY"

	// ErrCodeClassMismatch indicates a baseline slot holding the wrong class.
	ErrCodeClassMismatch ErrorCode = "CLASS_MISMATCH"

	// ErrCodeUnknownInstance indicates an instance id that is not registered.
	ErrCodeUnknownInstance ErrorCode = "UNKNOWN_INSTANCE"

	// ErrCodeUnknownPort indicates a port the instance does not declare.
	ErrCodeUnknownPort ErrorCode = "UNKNOWN_PORT"

	// ErrCodeDuplicateConnection indicates an input port that is already connected.
	ErrCodeDuplicateConnection ErrorCode = "DUPLICATE_CONNECTION"

	// ErrCodeDuplicateInstance indicates a requested instance id already in use.
	ErrCodeDuplicateInstance ErrorCode = "DUPLICATE_INSTANCE"

	// ErrCodeDuplicateSchedule indicates an instance placed in more than one baseline slot.
	ErrCodeDuplicateSchedule ErrorCode = "DUPLICATE_SCHEDULE"

	// ErrCodeInstanceInUse indicates an unregister of a referenced instance.
	ErrCodeInstanceInUse ErrorCode = "INSTANCE_IN_USE"

	// ErrCodeInvalidPlugin indicates a plugin that fails its own validation.
	ErrCodeInvalidPlugin ErrorCode = "INVALID_PLUGIN"

	// ErrCodeRepeatExecution indicates an instance run twice in one run.
	ErrCodeRepeatExecution ErrorCode = "REPEAT_EXECUTION"

	// ErrCodePluginFailed wraps an error returned by a plugin's Run.
	ErrCodePluginFailed ErrorCode = "PLUGIN_FAILED"

	// ErrCodeInvalidStep indicates a baseline index out of range.
	ErrCodeInvalidStep ErrorCode = "INVALID_STEP"

	// ErrCodeInvalidOutput indicates plugin output that does not match its contract.
	ErrCodeInvalidOutput ErrorCode = "INVALID_OUTPUT"
)

// Error is the structured error type of this package.
type Error struct {
	Code    ErrorCode
	Message string

	// Instance is the instance the error refers to, uuid.Nil if none.
	Instance uuid.UUID

	// Port is the port the error refers to, if any.
	Port string

	// Instances lists the offending node set of a cycle.
	Instances []uuid.UUID

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause (plugin errors, timeline errors).
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	switch {
	case e.Instance != uuid.Nil && e.Port != "":
		fmt.Fprintf(&b, " (instance=%s, port=%s)", e.Instance, e.Port)
	case e.Instance != uuid.Nil:
		fmt.Fprintf(&b, " (instance=%s)", e.Instance)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// RunError reports where a run stopped.
type RunError struct {
	Step     int
	Instance uuid.UUID
	Err      error
}

func (e *RunError) Error() string {
	if e.Instance == uuid.Nil {
		return fmt.Sprintf("run failed at step %d: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("run failed at step %d, instance %s: %v", e.Step, e.Instance, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// CodeOf returns the pipeline error code carried by err, or "".
// Uses errors.As to see through RunError and other wrappers.
func CodeOf(err error) ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsCycleError returns true if err is a CYCLIC_DEPENDENCY error.
func IsCycleError(err error) bool { return CodeOf(err) == ErrCodeCyclicDependency }

// IsTypeMismatchError returns true if err is a TYPE_MISMATCH error.
func IsTypeMismatchError(err error) bool { return CodeOf(err) == ErrCodeTypeMismatch }

// IsMissingConnectionError returns true if err is a MISSING_CONNECTION error.
func IsMissingConnectionError(err error) bool { return CodeOf(err) == ErrCodeMissingConnection }

// IsBufferMissError returns true if err is a BUFFER_MISS error.
func IsBufferMissError(err error) bool { return CodeOf(err) == ErrCodeBufferMiss }

// IsClassMismatchError returns true if err is a CLASS_MISMATCH error.
func IsClassMismatchError(err error) bool { return CodeOf(err) == ErrCodeClassMismatch }

func newError(code ErrorCode, instance uuid.UUID, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Instance: instance}
}

func portError(code ErrorCode, instance uuid.UUID, port string, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Instance: instance, Port: port}
}

// NewCycleError creates the error for a cycle among nodes.
func NewCycleError(nodes []uuid.UUID) *Error {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return &Error{
		Code:      ErrCodeCyclicDependency,
		Message:   fmt.Sprintf("dependency cycle among %d instance(s): %s", len(nodes), strings.Join(parts, ", ")),
		Instances: nodes,
	}
}

// NewTypeMismatchError creates the error for a connection whose ends disagree.
func NewTypeMismatchError(c Connection, fromType, toType string) *Error {
	return &Error{
		Code:     ErrCodeTypeMismatch,
		Message:  fmt.Sprintf("%s.%s is %s but %s.%s expects %s", c.From.Instance, c.From.Port, fromType, c.To.Instance, c.To.Port, toType),
		Instance: c.To.Instance,
		Port:     c.To.Port,
		Details: map[string]string{
			"from_instance": c.From.Instance.String(),
			"from_port":     c.From.Port,
			"from_type":     fromType,
			"to_port":       c.To.Port,
			"to_type":       toType,
		},
	}
}
