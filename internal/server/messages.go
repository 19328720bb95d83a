package server

import (
	"net/http"

	"github.com/Cyclone1070/toolproxy/internal/protocol"
	"github.com/Cyclone1070/toolproxy/internal/workflow/loop"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handleMessages serves the Anthropic messages shape.
func (d *Dependencies) handleMessages(w http.ResponseWriter, r *http.Request) {
	if d.Passthrough != nil {
		d.forwardMessages(w, r)
		return
	}

	var req protocol.MessagesRequest
	if err := readJSON(w, r, &req); err != nil {
		d.writeError(w, shapeAnthropic, err)
		return
	}

	msgs, tools, err := protocol.AnthropicToInternal(&req)
	if err != nil {
		d.writeError(w, shapeAnthropic, err)
		return
	}

	result, err := d.runLoop(r.Context(), &loop.Request{
		Model:      req.Model,
		Messages:   msgs,
		Tools:      tools,
		ToolChoice: req.ToolChoice,
		Extra:      protocol.AnthropicExtra(&req),
	})
	if err != nil {
		d.writeError(w, shapeAnthropic, err)
		return
	}

	resp := protocol.NewMessagesResponse(
		"msg_"+uuid.NewString(),
		result.Model,
		result.Message,
		result.FinishReason,
		result.Usage,
	)

	if !req.Stream {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if err := streamMessages(w, resp); err != nil {
		d.Logger.Warn("stream write failed", zap.String("id", resp.ID), zap.Error(err))
	}
}

// handleCountTokens returns a character-based token estimate. Undecodable bodies count as zero.
func (d *Dependencies) handleCountTokens(w http.ResponseWriter, r *http.Request) {
	var req protocol.MessagesRequest
	if err := readJSON(w, r, &req); err != nil {
		d.Logger.Debug("count_tokens body not decodable", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]int64{"input_tokens": 0})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"input_tokens": protocol.EstimateTokens(&req)})
}
