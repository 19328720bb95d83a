package shell

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
)

// TimeoutError is returned when a command exceeds its timeout. The process group has been
// killed; Output holds whatever was captured before that.
type TimeoutError struct {
	Command string
	Timeout time.Duration
	Output  string
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("command timed out after %s: %s", e.Timeout, e.Command)
	if out := strings.TrimRight(e.Output, "\n"); out != "" {
		msg += "\nPartial output:\n" + out
	}
	return msg
}
func (e *TimeoutError) Unwrap() error      { return ErrCommandTimeout }
func (e *TimeoutError) Kind() errutil.Kind { return errutil.KindCommandTimeout }

// WorkingDirError is returned when working_directory does not name an existing directory.
type WorkingDirError struct {
	Path string
}

func (e *WorkingDirError) Error() string {
	return fmt.Sprintf("working directory is not a directory: %s", e.Path)
}
func (e *WorkingDirError) Kind() errutil.Kind { return errutil.KindNotADirectory }

// EnvFileError is returned when the configured env file cannot be read or parsed.
type EnvFileError struct {
	Path  string
	Line  int // 0 when the file could not be read
	Cause error
}

func (e *EnvFileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid env file %s:%d: %v", e.Path, e.Line, e.Cause)
	}
	return fmt.Sprintf("failed to read env file %s: %v", e.Path, e.Cause)
}
func (e *EnvFileError) Unwrap() error      { return e.Cause }
func (e *EnvFileError) Kind() errutil.Kind { return errutil.KindIOFailure }

// -- Sentinels --

var (
	ErrCommandTimeout = errors.New("command timeout")
	ErrEnvFileParse   = errors.New("expected KEY=VALUE")
)
