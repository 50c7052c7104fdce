package podcast

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a job failure for callers. Kinds are stable API:
// status responses carry the kind and a human-readable message, never
// internal type names or stack traces.
type ErrorKind string

const (
	// ErrValidation means the brief violated an enumerated constraint.
	// Rejected synchronously; no job is created.
	ErrValidation ErrorKind = "validation"
	// ErrAgent means a pipeline stage exhausted its retries or produced
	// structurally missing content beyond the lenient thresholds.
	ErrAgent ErrorKind = "agent"
	// ErrBackend means an upstream model/TTS service was unreachable or
	// returned a non-retryable error after exhausted retries.
	ErrBackend ErrorKind = "backend"
	// ErrAudio means concatenation or probing failed.
	ErrAudio ErrorKind = "audio"
	// ErrCancelled means a user-requested termination was observed at a
	// stage boundary.
	ErrCancelled ErrorKind = "cancelled"
	// ErrInternal means an invariant violation, fatal to the job but not
	// to the process.
	ErrInternal ErrorKind = "internal"
)

// Error is the job-facing error carrying a stable kind and the pipeline
// stage it originated from.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Stage   string    `json:"stage,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	switch {
	case e.Stage != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	case e.Stage != "":
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates an Error with a formatted message.
func NewError(kind ErrorKind, stage, format string, args ...any) *Error {
	return &Error{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps err with a kind and stage. A nil err returns nil.
// If err is already a podcast Error its kind is preserved.
func WrapError(kind ErrorKind, stage string, err error) *Error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		if pe.Stage == "" {
			return &Error{Kind: pe.Kind, Stage: stage, Message: pe.Message, Err: pe.Err}
		}
		return pe
	}
	return &Error{Kind: kind, Stage: stage, Message: err.Error(), Err: err}
}

// KindOf extracts the error kind, defaulting to internal for plain errors.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
