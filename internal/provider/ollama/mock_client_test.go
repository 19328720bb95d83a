package ollama

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/pagination"
)

// mockChatClient is a mock implementation of ChatClient for testing.
type mockChatClient struct {
	CreateFunc     func(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
	ListModelsFunc func(ctx context.Context) (*pagination.Page[openai.Model], error)

	calls []openai.ChatCompletionNewParams
}

func (m *mockChatClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.calls = append(m.calls, params)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params, opts...)
	}
	return nil, errors.New("CreateFunc not set")
}

func (m *mockChatClient) ListModels(ctx context.Context) (*pagination.Page[openai.Model], error) {
	if m.ListModelsFunc != nil {
		return m.ListModelsFunc(ctx)
	}
	return nil, errors.New("ListModelsFunc not set")
}

func textCompletion(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		ID:    "chatcmpl-1",
		Model: "qwen3:8b",
		Choices: []openai.ChatCompletionChoice{{
			FinishReason: "stop",
			Message:      openai.ChatCompletionMessage{Content: content},
		}},
		Usage: openai.CompletionUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}
