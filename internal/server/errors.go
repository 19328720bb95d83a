package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Cyclone1070/toolproxy/internal/protocol"
	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
	"github.com/Cyclone1070/toolproxy/internal/workflow/loop"
	"go.uber.org/zap"
)

// StatusClientClosedRequest is the non-standard status logged when the client went away.
const StatusClientClosedRequest = 499

// shape selects the error envelope written to the client.
type shape int

const (
	shapeOpenAI shape = iota
	shapeAnthropic
)

// shapeFor picks the error envelope matching the API family of path.
func shapeFor(path string) shape {
	if strings.HasPrefix(path, "/v1/messages") {
		return shapeAnthropic
	}
	return shapeOpenAI
}

var errUnauthorized = errors.New("missing or invalid API key")

// failure is the HTTP rendering of a terminal error.
type failure struct {
	status        int
	code          string
	openAIType    string
	anthropicType string
	message       string
	lastContent   string
}

// classify maps a terminal error onto a status code and stable error kind.
func classify(err error) failure {
	f := failure{message: err.Error()}

	var limitErr *loop.IterationLimitError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, errUnauthorized):
		f.status, f.code = http.StatusUnauthorized, "unauthorized"
		f.openAIType, f.anthropicType = "authentication_error", "authentication_error"
	case errors.As(err, &tooLarge):
		f.status, f.code = http.StatusRequestEntityTooLarge, "request_too_large"
		f.openAIType, f.anthropicType = "invalid_request_error", "request_too_large"
	case errors.Is(err, protocol.ErrInvalidRequest), errors.Is(err, loop.ErrNoMessages):
		f.status, f.code = http.StatusBadRequest, "invalid_request"
		f.openAIType, f.anthropicType = "invalid_request_error", "invalid_request_error"
	case errors.As(err, &limitErr):
		f.status, f.code = http.StatusLoopDetected, string(errutil.KindIterationLimitReached)
		f.openAIType, f.anthropicType = "server_error", "api_error"
		f.lastContent = limitErr.LastAssistantContent
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		f.status, f.code = StatusClientClosedRequest, string(errutil.KindCancelled)
		f.openAIType, f.anthropicType = "server_error", "api_error"
	case errutil.KindOf(err) == errutil.KindUpstreamUnavailable:
		f.status, f.code = http.StatusBadGateway, string(errutil.KindUpstreamUnavailable)
		f.openAIType, f.anthropicType = "upstream_error", "api_error"
	default:
		f.status, f.code = http.StatusInternalServerError, string(errutil.KindInternal)
		f.openAIType, f.anthropicType = "server_error", "api_error"
	}
	return f
}

// writeError renders err in the envelope of s.
func (d *Dependencies) writeError(w http.ResponseWriter, s shape, err error) {
	f := classify(err)
	switch {
	case f.status >= http.StatusInternalServerError:
		d.Logger.Error("request failed", zap.String("code", f.code), zap.Int("status", f.status), zap.Error(err))
	case f.status == StatusClientClosedRequest:
		d.Logger.Info("request cancelled", zap.Error(err))
	default:
		d.Logger.Debug("request rejected", zap.String("code", f.code), zap.Int("status", f.status), zap.Error(err))
	}

	if s == shapeAnthropic {
		writeJSON(w, f.status, protocol.AnthropicErrorBody{
			Type: "error",
			Error: protocol.AnthropicErrorDetail{
				Type:                 f.anthropicType,
				Message:              f.message,
				LastAssistantContent: f.lastContent,
			},
		})
		return
	}
	writeJSON(w, f.status, protocol.OpenAIErrorBody{
		Error: protocol.OpenAIErrorDetail{
			Type:                 f.openAIType,
			Code:                 f.code,
			Message:              f.message,
			LastAssistantContent: f.lastContent,
		},
	})
}
