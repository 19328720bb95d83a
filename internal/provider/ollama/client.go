package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/pagination"
)

// placeholderAPIKey is sent when no backend token is configured; Ollama ignores it.
const placeholderAPIKey = "ollama"

// ChatClient defines the backend operations the provider needs.
// This abstraction allows for easier testing and potential future implementations.
type ChatClient interface {
	// CreateChatCompletion sends one chat-completions request.
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)

	// ListModels returns the models the backend serves.
	ListModels(ctx context.Context) (*pagination.Page[openai.Model], error)
}

// OpenAIClient wraps the OpenAI SDK client, pointed at the backend's OpenAI-compatible /v1 API.
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient creates a client for the configured backend.
// httpClient may be nil, in which case a client with the configured timeout is used.
func NewOpenAIClient(cfg config.BackendConfig, httpClient *http.Client) *OpenAIClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	apiKey := cfg.AuthToken
	if apiKey == "" {
		apiKey = placeholderAPIKey
	}

	client := openai.NewClient(
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/v1/"),
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithRequestTimeout(timeout),
	)
	return &OpenAIClient{client: client}
}

// CreateChatCompletion calls POST /v1/chat/completions.
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params, opts...)
}

// ListModels calls GET /v1/models.
func (c *OpenAIClient) ListModels(ctx context.Context) (*pagination.Page[openai.Model], error) {
	return c.client.Models.List(ctx)
}

// PostMessages calls POST /v1/messages with body as is. On success the response body is left
// open for the caller to stream and close; non-2xx statuses are returned as *openai.Error.
func (c *OpenAIClient) PostMessages(ctx context.Context, body json.RawMessage) (*http.Response, error) {
	var resp *http.Response
	if err := c.client.Post(ctx, "messages", body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
