package server

import (
	"net/http"
	"time"

	"github.com/Cyclone1070/toolproxy/internal/protocol"
	"github.com/Cyclone1070/toolproxy/internal/workflow/loop"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handleChatCompletions serves the OpenAI chat-completions shape.
func (d *Dependencies) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req protocol.ChatCompletionRequest
	if err := readJSON(w, r, &req); err != nil {
		d.writeError(w, shapeOpenAI, err)
		return
	}

	msgs, tools, err := protocol.OpenAIToInternal(&req)
	if err != nil {
		d.writeError(w, shapeOpenAI, err)
		return
	}

	result, err := d.runLoop(r.Context(), &loop.Request{
		Model:      req.Model,
		Messages:   msgs,
		Tools:      tools,
		ToolChoice: req.ToolChoice,
		Extra:      req.Extra,
	})
	if err != nil {
		d.writeError(w, shapeOpenAI, err)
		return
	}

	resp := protocol.NewChatCompletionResponse(
		"chatcmpl-"+uuid.NewString(),
		time.Now().Unix(),
		result.Model,
		result.Message,
		result.FinishReason,
		result.Usage,
	)

	if !req.Stream {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if err := streamChatCompletion(w, resp); err != nil {
		d.Logger.Warn("stream write failed", zap.String("id", resp.ID), zap.Error(err))
	}
}
