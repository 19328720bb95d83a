package ollama

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Cyclone1070/toolproxy/internal/provider"
	"github.com/Cyclone1070/toolproxy/internal/tool"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

func toOpenAIParams(req *provider.CompletionRequest) (openai.ChatCompletionNewParams, error) {
	tools, err := toOpenAITools(req.Tools)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	return openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(req.Model),
		Messages: toOpenAIMessages(req.Messages),
		Tools:    tools,
	}, nil
}

func toOpenAIMessages(msgs []provider.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case provider.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case provider.RoleAssistant:
			result = append(result, toOpenAIAssistantMessage(msg))
		case provider.RoleTool:
			result = append(result, openai.ToolMessage(msg.Content, msg.ToolCallID))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}

func toOpenAIAssistantMessage(msg provider.Message) openai.ChatCompletionMessageParamUnion {
	assistant := openai.ChatCompletionAssistantMessageParam{}
	if msg.Content != "" || len(msg.ToolCalls) == 0 {
		assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
			OfString: openai.String(msg.Content),
		}
	}

	for _, tc := range msg.ToolCalls {
		args := tc.Function.Arguments
		if args == "" {
			args = "{}"
		}
		assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
			ID: tc.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      tc.Function.Name,
				Arguments: args,
			},
		})
	}

	return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

func toOpenAITools(decls []tool.Declaration) ([]openai.ChatCompletionToolParam, error) {
	if len(decls) == 0 {
		return nil, nil
	}
	result := make([]openai.ChatCompletionToolParam, 0, len(decls))
	for _, d := range decls {
		params := shared.FunctionParameters{"type": "object"}
		if len(d.Parameters) > 0 {
			params = shared.FunctionParameters{}
			if err := json.Unmarshal(d.Parameters, &params); err != nil {
				return nil, &provider.ProviderError{
					Code:       provider.ErrorCodeInvalidRequest,
					Message:    fmt.Sprintf("tool %s has a non-object parameter schema", d.Name),
					Underlying: err,
				}
			}
		}

		t := openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:       d.Name,
				Parameters: params,
			},
		}
		if d.Description != "" {
			t.Function.Description = openai.String(d.Description)
		}
		result = append(result, t)
	}
	return result, nil
}

func fromOpenAICompletion(resp *openai.ChatCompletion) (*provider.Completion, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeEmptyResponse,
			Message: "backend returned no choices",
		}
	}

	choice := resp.Choices[0]
	msg := provider.Message{
		Role:    provider.RoleAssistant,
		Content: choice.Message.Content,
	}
	for _, tc := range choice.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, provider.ToolCall{
			ID: tc.ID,
			Function: provider.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}

	return &provider.Completion{
		ID:           resp.ID,
		Model:        resp.Model,
		Message:      msg,
		FinishReason: choice.FinishReason,
		Usage: provider.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// mapOpenAIError classifies SDK and transport errors. It never calls Error() on *openai.Error,
// whose message formatting needs the originating request and response.
func mapOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		detail := apiErr.Message
		if detail == "" {
			detail = http.StatusText(apiErr.StatusCode)
		}
		pe := &provider.ProviderError{
			Message:    fmt.Sprintf("backend returned %d: %s", apiErr.StatusCode, detail),
			StatusCode: apiErr.StatusCode,
			Underlying: err,
		}
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			pe.Code = provider.ErrorCodeAuth
		case apiErr.StatusCode == http.StatusTooManyRequests:
			pe.Code = provider.ErrorCodeRateLimit
			pe.Retryable = true
		case apiErr.StatusCode == http.StatusNotFound:
			pe.Code = provider.ErrorCodeInvalidModel
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			pe.Code = provider.ErrorCodeInvalidRequest
		default:
			pe.Code = provider.ErrorCodeUnavailable
			pe.Retryable = true
		}
		return pe
	}

	return &provider.ProviderError{
		Code:       provider.ErrorCodeNetwork,
		Message:    fmt.Sprintf("backend unreachable: %v", err),
		Underlying: err,
		Retryable:  true,
	}
}
