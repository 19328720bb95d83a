package loop

import (
	"errors"
	"fmt"

	"github.com/Cyclone1070/toolproxy/internal/provider"
	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
)

// -- Error Types --

// IterationLimitError is returned when the model keeps calling tools after the last allowed round trip.
// It carries what the conversation produced so far so callers can report it.
type IterationLimitError struct {
	Limit                int
	LastAssistantContent string
	Model                string
	Usage                provider.Usage
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("tool loop stopped after %d iterations without a final answer", e.Limit)
}
func (e *IterationLimitError) Unwrap() error      { return ErrIterationLimit }
func (e *IterationLimitError) Kind() errutil.Kind { return errutil.KindIterationLimitReached }

// BackendError is returned when a backend round trip fails.
type BackendError struct {
	Iteration int
	Cause     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend request failed on iteration %d: %v", e.Iteration, e.Cause)
}
func (e *BackendError) Unwrap() error      { return e.Cause }
func (e *BackendError) Kind() errutil.Kind { return errutil.KindUpstreamUnavailable }

// -- Sentinels --

var (
	ErrIterationLimit = errors.New("iteration limit reached")
	ErrNoMessages     = errors.New("conversation has no messages")
)
