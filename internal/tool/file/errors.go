package file

import (
	"errors"
	"fmt"

	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
)

// NotFoundError is returned when the target file does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}
func (e *NotFoundError) Kind() errutil.Kind { return errutil.KindFileNotFound }

// IsDirectoryError is returned when a file operation targets a directory.
type IsDirectoryError struct {
	Path string
}

func (e *IsDirectoryError) Error() string {
	return fmt.Sprintf("path is a directory, not a file: %s", e.Path)
}
func (e *IsDirectoryError) Kind() errutil.Kind { return errutil.KindIOFailure }

// TooLargeError is returned when content exceeds the configured size limit.
type TooLargeError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file too large: %s (size %d, limit %d)", e.Path, e.Size, e.Limit)
}
func (e *TooLargeError) Kind() errutil.Kind { return errutil.KindIOFailure }

// IOError wraps an operating system failure on a path.
type IOError struct {
	Op    string
	Path  string
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Cause)
}
func (e *IOError) Unwrap() error      { return e.Cause }
func (e *IOError) Kind() errutil.Kind { return errutil.KindIOFailure }

// SnippetNotFoundError is returned when old_string does not occur in the file.
type SnippetNotFoundError struct {
	Path string
}

func (e *SnippetNotFoundError) Error() string {
	return fmt.Sprintf("old_string not found in %s; re-read the file and copy the exact text, including whitespace", e.Path)
}
func (e *SnippetNotFoundError) Unwrap() error      { return ErrSnippetNotFound }
func (e *SnippetNotFoundError) Kind() errutil.Kind { return errutil.KindAmbiguousEdit }

// SnippetNotUniqueError is returned when old_string occurs more than once and replace_all is off.
type SnippetNotUniqueError struct {
	Path  string
	Count int
}

func (e *SnippetNotUniqueError) Error() string {
	return fmt.Sprintf("old_string is not unique in %s: found %d occurrences; include more surrounding context or set replace_all", e.Path, e.Count)
}
func (e *SnippetNotUniqueError) Unwrap() error      { return ErrSnippetNotUnique }
func (e *SnippetNotUniqueError) Kind() errutil.Kind { return errutil.KindAmbiguousEdit }

// InvalidArgumentError is returned when a request passes the schema but is semantically unusable.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
func (e *InvalidArgumentError) Kind() errutil.Kind { return errutil.KindMalformedToolArguments }

// -- Sentinels --

var (
	ErrSnippetNotFound  = errors.New("snippet not found")
	ErrSnippetNotUnique = errors.New("snippet not unique")
)
