package workflow

import (
	"context"
	"time"

	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
)

// Event is the interface for all workflow events.
// Consumers handle events via type switch.
type Event interface {
	isEvent()
}

// IterationStartEvent is emitted before each backend round trip.
type IterationStartEvent struct {
	Iteration int // 1-based
	Model     string
	Messages  int
}

func (IterationStartEvent) isEvent() {}

// BackendResponseEvent is emitted when the backend answers a round trip.
type BackendResponseEvent struct {
	Iteration    int
	FinishReason string
	ToolCalls    int
	TotalTokens  int64
	Duration     time.Duration
}

func (BackendResponseEvent) isEvent() {}

// ToolStartEvent is emitted when a tool execution begins.
type ToolStartEvent struct {
	ToolName       string
	CallID         string
	RequestDisplay string // e.g., "Reading src/index.ts"
}

func (ToolStartEvent) isEvent() {}

// ToolEndEvent is emitted when a tool call has produced its result.
type ToolEndEvent struct {
	ToolName  string
	CallID    string
	IsError   bool
	ErrorKind errutil.Kind // empty on success
	Duration  time.Duration
}

func (ToolEndEvent) isEvent() {}

// DoneEvent is emitted once when the loop reaches a terminal state.
type DoneEvent struct {
	State      string
	Iterations int
}

func (DoneEvent) isEvent() {}

// Emit sends ev unless events is nil or ctx is done first.
func Emit(ctx context.Context, events chan<- Event, ev Event) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
