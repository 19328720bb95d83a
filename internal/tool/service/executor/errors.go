package executor

import (
	"errors"
	"fmt"

	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
)

// ErrTimeout is returned when a command exceeds its timeout.
var ErrTimeout = errors.New("command timeout")

// StartError is returned when the shell process cannot be started.
type StartError struct {
	Command string
	Dir     string
	Cause   error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start %q in %s: %v", e.Command, e.Dir, e.Cause)
}
func (e *StartError) Unwrap() error      { return e.Cause }
func (e *StartError) Kind() errutil.Kind { return errutil.KindIOFailure }
