package search

import (
	"errors"
	"fmt"

	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
)

// InvalidPatternError is returned when the regular expression or file filter does not parse.
// Cause carries the parser message.
type InvalidPatternError struct {
	Pattern string
	Cause   error
}

func (e *InvalidPatternError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("invalid pattern %q", e.Pattern)
	}
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Cause)
}
func (e *InvalidPatternError) Unwrap() error      { return ErrInvalidPattern }
func (e *InvalidPatternError) Kind() errutil.Kind { return errutil.KindInvalidPattern }

// FileMissingError is returned when the search path does not exist.
type FileMissingError struct {
	Path string
}

func (e *FileMissingError) Error() string {
	return "search path does not exist: " + e.Path
}
func (e *FileMissingError) Kind() errutil.Kind { return errutil.KindFileNotFound }

// InvalidContextError is returned for a negative context_lines value.
type InvalidContextError struct {
	Value int
}

func (e *InvalidContextError) Error() string {
	return fmt.Sprintf("context_lines cannot be negative: %d", e.Value)
}
func (e *InvalidContextError) Kind() errutil.Kind { return errutil.KindMalformedToolArguments }

// StatError wraps a failure to inspect the search path.
type StatError struct {
	Path  string
	Cause error
}

func (e *StatError) Error() string {
	return fmt.Sprintf("failed to stat %s: %v", e.Path, e.Cause)
}
func (e *StatError) Unwrap() error      { return e.Cause }
func (e *StatError) Kind() errutil.Kind { return errutil.KindIOFailure }

// -- Sentinels --

var ErrInvalidPattern = errors.New("invalid pattern")
