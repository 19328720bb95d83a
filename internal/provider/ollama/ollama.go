package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Cyclone1070/toolproxy/internal/provider"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// Provider sends canonical conversations to an Ollama (or any OpenAI-compatible) backend.
// It holds no per-request state and is safe for concurrent use.
type Provider struct {
	client ChatClient
	logger *zap.Logger
}

// New creates a new Provider backed by client.
func New(client ChatClient, logger *zap.Logger) *Provider {
	if client == nil {
		panic("client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{client: client, logger: logger}
}

// Complete performs one backend round trip. Failures are returned as *provider.ProviderError,
// except context cancellation, which is returned as ctx.Err().
func (p *Provider) Complete(ctx context.Context, req *provider.CompletionRequest) (*provider.Completion, error) {
	params, err := toOpenAIParams(req)
	if err != nil {
		return nil, err
	}
	opts, err := requestOptions(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, params, opts...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		mapped := mapOpenAIError(err)
		p.logger.Warn("backend request failed",
			zap.String("model", req.Model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(mapped))
		return nil, mapped
	}

	completion, err := fromOpenAICompletion(resp)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("backend response",
		zap.String("model", completion.Model),
		zap.String("finish_reason", completion.FinishReason),
		zap.Int("tool_calls", len(completion.Message.ToolCalls)),
		zap.Int64("total_tokens", completion.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)))
	return completion, nil
}

// ListModels returns the backend's models sorted by id.
func (p *Provider) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	page, err := p.client.ListModels(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, mapOpenAIError(err)
	}
	models := make([]provider.ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, provider.ModelInfo{ID: m.ID, Created: m.Created, OwnedBy: m.OwnedBy})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// sjsonSpecial are path metacharacters; extra keys containing them cannot be set verbatim and are dropped.
const sjsonSpecial = ".*?|#@\\"

// requestOptions forwards tool_choice and extra request fields as raw JSON body values.
func requestOptions(req *provider.CompletionRequest) ([]option.RequestOption, error) {
	var opts []option.RequestOption
	if len(req.ToolChoice) > 0 && len(req.Tools) > 0 {
		v, err := decodeRaw("tool_choice", req.ToolChoice)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithJSONSet("tool_choice", v))
	}

	keys := make([]string, 0, len(req.Extra))
	for k := range req.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.ContainsAny(k, sjsonSpecial) {
			continue
		}
		v, err := decodeRaw(k, req.Extra[k])
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithJSONSet(k, v))
	}
	return opts, nil
}

func decodeRaw(field string, raw json.RawMessage) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &provider.ProviderError{
			Code:       provider.ErrorCodeInvalidRequest,
			Message:    fmt.Sprintf("field %s is not valid JSON", field),
			Underlying: err,
		}
	}
	return v, nil
}
