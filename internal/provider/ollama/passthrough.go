package ollama

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// MessagesClient sends raw Anthropic messages requests to the backend.
type MessagesClient interface {
	PostMessages(ctx context.Context, body json.RawMessage) (*http.Response, error)
}

// Passthrough relays Anthropic messages requests to the backend's own /v1/messages API.
// Only the model field is rewritten; tools are neither injected nor executed.
type Passthrough struct {
	client       MessagesClient
	defaultModel string
	forceModel   string
	logger       *zap.Logger
}

// NewPassthrough creates a Passthrough using the backend's model settings.
func NewPassthrough(client MessagesClient, cfg config.BackendConfig, logger *zap.Logger) *Passthrough {
	if client == nil {
		panic("client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Passthrough{
		client:       client,
		defaultModel: cfg.DefaultModel,
		forceModel:   cfg.ForceModel,
		logger:       logger,
	}
}

// Forward sends body, a JSON object, to the backend and returns its response with the body
// unread. The caller must close it. Failures are returned as *provider.ProviderError, except
// context cancellation, which is returned as ctx.Err().
func (p *Passthrough) Forward(ctx context.Context, body json.RawMessage) (*http.Response, error) {
	requested := gjson.GetBytes(body, "model").String()
	model := p.resolveModel(requested)
	if model != requested {
		rewritten, err := sjson.SetBytes(body, "model", model)
		if err != nil {
			return nil, err
		}
		body = rewritten
	}

	p.logger.Debug("forwarding messages request",
		zap.String("model", model),
		zap.Bool("stream", gjson.GetBytes(body, "stream").Bool()))

	resp, err := p.client.PostMessages(ctx, body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		mapped := mapOpenAIError(err)
		p.logger.Warn("backend messages request failed", zap.String("model", model), zap.Error(mapped))
		return nil, mapped
	}
	return resp, nil
}

func (p *Passthrough) resolveModel(requested string) string {
	switch {
	case p.forceModel != "":
		return p.forceModel
	case requested == "":
		return p.defaultModel
	default:
		return requested
	}
}
