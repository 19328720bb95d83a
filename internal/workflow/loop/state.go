package loop

// State is a step of the tool-calling loop.
type State int

const (
	StateStarted State = iota
	StateAwaitingBackend
	StateToolCallsPending
	StateExecutingTools
	StateFinished
	StateIterationLimitReached
	StateBackendFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateAwaitingBackend:
		return "awaiting_backend"
	case StateToolCallsPending:
		return "tool_calls_pending"
	case StateExecutingTools:
		return "executing_tools"
	case StateFinished:
		return "finished"
	case StateIterationLimitReached:
		return "iteration_limit_reached"
	case StateBackendFailed:
		return "backend_failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition leaves s.
func (s State) Terminal() bool {
	return s >= StateFinished
}
