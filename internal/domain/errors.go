// Package domain defines the error taxonomy and shared value helpers used by
// the coordination core. Handlers translate error kinds into HTTP status
// codes; the core itself never deals in transport concerns.
package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a core error for boundary mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindValidation
	KindProcessor
	KindInternal
)

// String returns the stable wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation_error"
	case KindProcessor:
		return "processor_error"
	case KindInternal:
		return "internal_error"
	default:
		return "unknown"
	}
}

// Error is a typed core error. Two Errors match under errors.Is when their
// kinds are equal, so callers can branch on kind without string comparison.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NotFound reports an absent group, member, slot, token, or instrument.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports a caller attempting an operation reserved for another
// principal, typically a non-creator invoking a creator-only transition.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports duplicate membership, a full group, a consumed token, or
// an already-issued instrument.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Validation reports input rejected before any mutation took place.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Processor wraps a failed or timed-out external payment call.
func Processor(err error, format string, args ...any) *Error {
	return &Error{Kind: KindProcessor, Message: fmt.Sprintf(format, args...), Err: err}
}

// Internal wraps an unexpected failure. The wrapped cause is logged, never
// surfaced verbatim to the caller.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf extracts the kind from err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
