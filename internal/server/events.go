package server

import (
	"github.com/Cyclone1070/toolproxy/internal/workflow"
	"go.uber.org/zap"
)

func (d *Dependencies) logEvent(ev workflow.Event) {
	switch e := ev.(type) {
	case workflow.IterationStartEvent:
		d.Logger.Debug("iteration start",
			zap.Int("iteration", e.Iteration),
			zap.String("model", e.Model),
			zap.Int("messages", e.Messages),
		)
	case workflow.BackendResponseEvent:
		d.Logger.Debug("backend response",
			zap.Int("iteration", e.Iteration),
			zap.String("finish_reason", e.FinishReason),
			zap.Int("tool_calls", e.ToolCalls),
			zap.Int64("total_tokens", e.TotalTokens),
			zap.Duration("duration", e.Duration),
		)
	case workflow.ToolStartEvent:
		d.Logger.Debug("tool start",
			zap.String("tool", e.ToolName),
			zap.String("call_id", e.CallID),
			zap.String("request", e.RequestDisplay),
		)
	case workflow.ToolEndEvent:
		fields := []zap.Field{
			zap.String("tool", e.ToolName),
			zap.String("call_id", e.CallID),
			zap.Bool("is_error", e.IsError),
			zap.Duration("duration", e.Duration),
		}
		if e.IsError {
			fields = append(fields, zap.String("error_kind", string(e.ErrorKind)))
		}
		d.Logger.Debug("tool end", fields...)
	case workflow.DoneEvent:
		d.Logger.Debug("loop done", zap.String("state", e.State), zap.Int("iterations", e.Iterations))
	}
}
