package directory

import (
	"errors"
	"fmt"

	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
)

// NotFoundError is returned when the directory to list or search does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("path does not exist: %s", e.Path)
}
func (e *NotFoundError) Kind() errutil.Kind { return errutil.KindFileNotFound }

// NotADirectoryError is returned when a directory operation targets a file.
type NotADirectoryError struct {
	Path string
}

func (e *NotADirectoryError) Error() string {
	return fmt.Sprintf("not a directory: %s", e.Path)
}
func (e *NotADirectoryError) Unwrap() error      { return ErrNotADirectory }
func (e *NotADirectoryError) Kind() errutil.Kind { return errutil.KindNotADirectory }

// InvalidPatternError is returned when a glob pattern is malformed.
type InvalidPatternError struct {
	Pattern string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid glob pattern: %q", e.Pattern)
}
func (e *InvalidPatternError) Unwrap() error      { return ErrInvalidPattern }
func (e *InvalidPatternError) Kind() errutil.Kind { return errutil.KindInvalidPattern }

// ReadDirError wraps a failure to read a directory.
type ReadDirError struct {
	Path  string
	Cause error
}

func (e *ReadDirError) Error() string {
	return fmt.Sprintf("failed to read directory %s: %v", e.Path, e.Cause)
}
func (e *ReadDirError) Unwrap() error      { return e.Cause }
func (e *ReadDirError) Kind() errutil.Kind { return errutil.KindIOFailure }

// -- Sentinels --

var (
	ErrNotADirectory  = errors.New("not a directory")
	ErrInvalidPattern = errors.New("invalid pattern")
)
