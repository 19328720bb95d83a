package fs

import (
	"fmt"

	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
)

// WriteStage names the step of an atomic write that failed.
type WriteStage string

const (
	StageCreateTemp WriteStage = "create temp file"
	StageWrite      WriteStage = "write temp file"
	StageSync       WriteStage = "sync temp file"
	StageClose      WriteStage = "close temp file"
	StageRename     WriteStage = "rename temp file"
	StageChmod      WriteStage = "set permissions"
)

// AtomicWriteError is returned when WriteFileAtomic fails. The target file is left untouched
// unless Stage is StageChmod.
type AtomicWriteError struct {
	Path  string
	Stage WriteStage
	Cause error
}

func (e *AtomicWriteError) Error() string {
	return fmt.Sprintf("failed to %s for %s: %v", e.Stage, e.Path, e.Cause)
}
func (e *AtomicWriteError) Unwrap() error      { return e.Cause }
func (e *AtomicWriteError) Kind() errutil.Kind { return errutil.KindIOFailure }
