package path

import (
	"errors"
	"fmt"

	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
)

// -- Error Types --

// RootError is returned when a sandbox root is invalid.
type RootError struct {
	Root  string
	Cause error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("invalid sandbox root %s: %v", e.Root, e.Cause)
}
func (e *RootError) Unwrap() error { return e.Cause }

// DeniedError is returned when a path canonicalises to a location outside every sandbox root.
type DeniedError struct {
	Path        string
	NearestRoot string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("access denied: %s is outside the allowed directories (nearest root: %s)", e.Path, e.NearestRoot)
}
func (e *DeniedError) Unwrap() error        { return ErrOutsideSandbox }
func (e *DeniedError) Kind() errutil.Kind   { return errutil.KindPathDenied }
func (e *DeniedError) OutsideSandbox() bool { return true }

// SymlinkLoopError is returned when symlink resolution exceeds the hop limit.
type SymlinkLoopError struct {
	Path string
}

func (e *SymlinkLoopError) Error() string {
	return fmt.Sprintf("too many levels of symbolic links: %s", e.Path)
}
func (e *SymlinkLoopError) Kind() errutil.Kind { return errutil.KindPathDenied }

// LstatError is returned when a path component cannot be inspected.
type LstatError struct {
	Path  string
	Cause error
}

func (e *LstatError) Error() string {
	return fmt.Sprintf("failed to inspect %s: %v", e.Path, e.Cause)
}
func (e *LstatError) Unwrap() error      { return e.Cause }
func (e *LstatError) Kind() errutil.Kind { return errutil.KindIOFailure }

// -- Sentinels --

var (
	ErrOutsideSandbox = errors.New("path is outside the sandbox")
	ErrNotADirectory  = errors.New("not a directory")
)
