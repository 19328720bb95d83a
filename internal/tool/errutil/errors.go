package errutil

import (
	"context"
	"errors"
	"fmt"
)

// Kind is the stable classification of a failure, shared by tools, the loop and the HTTP surface.
type Kind string

const (
	KindPathDenied             Kind = "path_denied"
	KindFileNotFound           Kind = "file_not_found"
	KindNotADirectory          Kind = "not_a_directory"
	KindAmbiguousEdit          Kind = "ambiguous_edit"
	KindInvalidPattern         Kind = "invalid_pattern"
	KindCommandDenied          Kind = "command_denied"
	KindCommandTimeout         Kind = "command_timeout"
	KindUpstreamUnavailable    Kind = "upstream_unavailable"
	KindMalformedToolArguments Kind = "malformed_tool_arguments"
	KindIterationLimitReached  Kind = "iteration_limit_reached"
	KindUnknownTool            Kind = "unknown_tool"
	KindIOFailure              Kind = "io_failure"
	KindCancelled              Kind = "cancelled"
	KindInternal               Kind = "internal"
)

// kinded is implemented by every typed error that belongs to the taxonomy.
type kinded interface {
	Kind() Kind
}

// KindOf returns the Kind of the first classified error in err's chain.
// Context cancellation maps to KindCancelled; anything else unclassified is KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}
	return KindInternal
}

// Error is a generic classified error for conditions that need no extra fields.
type Error struct {
	K     Kind
	Msg   string
	Cause error
}

// New creates a classified error.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{K: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates a classified error around cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{K: kind, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }
func (e *Error) Kind() Kind    { return e.K }
