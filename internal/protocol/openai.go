package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/Cyclone1070/toolproxy/internal/provider"
	"github.com/Cyclone1070/toolproxy/internal/tool"
)

// ChatCompletionRequest is the OpenAI chat-completions request body.
// Fields the proxy does not interpret are kept in Extra and forwarded to the backend.
type ChatCompletionRequest struct {
	Model      string           `json:"model"`
	Messages   []ChatMessage    `json:"messages"`
	Tools      []ToolDefinition `json:"tools,omitempty"`
	ToolChoice json.RawMessage  `json:"tool_choice,omitempty"`
	Stream     bool             `json:"stream,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// openAIHandledFields are interpreted by the proxy and never forwarded as extras.
// stream_options is dropped because the backend call is never streamed.
var openAIHandledFields = []string{"model", "messages", "tools", "tool_choice", "stream", "stream_options"}

func (r *ChatCompletionRequest) UnmarshalJSON(data []byte) error {
	type plain ChatCompletionRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, openAIHandledFields...)
	if err != nil {
		return err
	}
	*r = ChatCompletionRequest(p)
	r.Extra = extra
	return nil
}

// ChatMessage is one OpenAI conversation message.
type ChatMessage struct {
	Role       string         `json:"role"`
	Content    TextContent    `json:"content"`
	ToolCalls  []ChatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

// ChatToolCall is an assistant's function call.
type ChatToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ChatFunctionCall `json:"function"`
}

// ChatFunctionCall carries the arguments as JSON text.
type ChatFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition is an OpenAI function tool.
type ToolDefinition struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition declares a function's name, purpose and JSON-Schema parameters.
type FunctionDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ChatCompletionResponse is the OpenAI chat-completions response body.
type ChatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

// ChatChoice is one completion alternative; the proxy always returns exactly one.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatUsage reports token counts.
type ChatUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// ChatCompletionChunk is one server-sent event of a streamed completion.
type ChatCompletionChunk struct {
	ID      string            `json:"id"`
	Object  string            `json:"object"`
	Created int64             `json:"created"`
	Model   string            `json:"model"`
	Choices []ChatChunkChoice `json:"choices"`
}

// ChatChunkChoice carries an incremental delta.
type ChatChunkChoice struct {
	Index        int       `json:"index"`
	Delta        ChatDelta `json:"delta"`
	FinishReason *string   `json:"finish_reason"`
}

// ChatDelta is the changed part of the message.
type ChatDelta struct {
	Role      string              `json:"role,omitempty"`
	Content   string              `json:"content,omitempty"`
	ToolCalls []ChatDeltaToolCall `json:"tool_calls,omitempty"`
}

// ChatDeltaToolCall is a complete tool call sent as a single delta.
type ChatDeltaToolCall struct {
	Index int `json:"index"`
	ChatToolCall
}

// OpenAIToInternal converts an OpenAI request into the canonical conversation and tool declarations.
func OpenAIToInternal(req *ChatCompletionRequest) ([]provider.Message, []tool.Declaration, error) {
	msgs := make([]provider.Message, 0, len(req.Messages))
	for i, m := range req.Messages {
		field := fmt.Sprintf("messages[%d]", i)
		msg := provider.Message{Role: provider.Role(m.Role), Content: m.Content.Text}
		switch msg.Role {
		case provider.RoleSystem, provider.RoleUser:
		case "developer":
			msg.Role = provider.RoleSystem
		case provider.RoleAssistant:
			for _, tc := range m.ToolCalls {
				if tc.Function.Name == "" {
					return nil, nil, &RequestError{Field: field, Reason: "tool call without a function name"}
				}
				msg.ToolCalls = append(msg.ToolCalls, provider.ToolCall{
					ID:       tc.ID,
					Function: provider.FunctionCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments},
				})
			}
		case provider.RoleTool:
			if m.ToolCallID == "" {
				return nil, nil, &RequestError{Field: field, Reason: "tool message without tool_call_id"}
			}
			msg.ToolCallID = m.ToolCallID
		default:
			return nil, nil, &RequestError{Field: field, Reason: fmt.Sprintf("unsupported role %q", m.Role)}
		}
		msgs = append(msgs, msg)
	}

	var decls []tool.Declaration
	for i, t := range req.Tools {
		if t.Type != "" && t.Type != "function" {
			return nil, nil, &RequestError{Field: fmt.Sprintf("tools[%d]", i), Reason: fmt.Sprintf("unsupported tool type %q", t.Type)}
		}
		if t.Function.Name == "" {
			return nil, nil, &RequestError{Field: fmt.Sprintf("tools[%d]", i), Reason: "function name is required"}
		}
		decls = append(decls, tool.Declaration{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  t.Function.Parameters,
		})
	}
	return msgs, decls, nil
}

// OpenAIFromInternal converts a canonical conversation into OpenAI messages.
func OpenAIFromInternal(msgs []provider.Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, openAIMessage(m))
	}
	return out
}

// OpenAIToolsFromInternal converts declarations into OpenAI function tools.
func OpenAIToolsFromInternal(decls []tool.Declaration) []ToolDefinition {
	out := make([]ToolDefinition, 0, len(decls))
	for _, d := range decls {
		out = append(out, ToolDefinition{
			Type:     "function",
			Function: FunctionDefinition{Name: d.Name, Description: d.Description, Parameters: d.Parameters},
		})
	}
	return out
}

func openAIMessage(m provider.Message) ChatMessage {
	msg := ChatMessage{Role: string(m.Role), Content: Text(m.Content), ToolCallID: m.ToolCallID}
	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, ChatToolCall{
			ID:       tc.ID,
			Type:     "function",
			Function: ChatFunctionCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments},
		})
	}
	if m.Role == provider.RoleAssistant && m.Content == "" && len(m.ToolCalls) > 0 {
		msg.Content = TextContent{Null: true}
	}
	return msg
}

// NewChatCompletionResponse renders the final assistant turn as an OpenAI response.
func NewChatCompletionResponse(id string, created int64, model string, msg provider.Message, finishReason string, usage provider.Usage) *ChatCompletionResponse {
	return &ChatCompletionResponse{
		ID:      id,
		Object:  "chat.completion",
		Created: created,
		Model:   model,
		Choices: []ChatChoice{{
			Index:        0,
			Message:      openAIMessage(msg),
			FinishReason: finishReason,
		}},
		Usage: ChatUsage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		},
	}
}

// streamChunkSize is the number of characters per streamed content delta.
const streamChunkSize = 50

// ChatCompletionChunks renders a finished response as the sequence of streamed chunks:
// a role delta, content deltas, tool calls, and a final chunk carrying the finish reason.
func ChatCompletionChunks(resp *ChatCompletionResponse) []ChatCompletionChunk {
	choice := resp.Choices[0]
	chunk := func(delta ChatDelta, finish *string) ChatCompletionChunk {
		return ChatCompletionChunk{
			ID:      resp.ID,
			Object:  "chat.completion.chunk",
			Created: resp.Created,
			Model:   resp.Model,
			Choices: []ChatChunkChoice{{Index: 0, Delta: delta, FinishReason: finish}},
		}
	}

	chunks := []ChatCompletionChunk{chunk(ChatDelta{Role: "assistant"}, nil)}
	for _, piece := range chunkText(choice.Message.Content.Text, streamChunkSize) {
		chunks = append(chunks, chunk(ChatDelta{Content: piece}, nil))
	}
	if len(choice.Message.ToolCalls) > 0 {
		calls := make([]ChatDeltaToolCall, 0, len(choice.Message.ToolCalls))
		for i, tc := range choice.Message.ToolCalls {
			calls = append(calls, ChatDeltaToolCall{Index: i, ChatToolCall: tc})
		}
		chunks = append(chunks, chunk(ChatDelta{ToolCalls: calls}, nil))
	}
	finish := choice.FinishReason
	return append(chunks, chunk(ChatDelta{}, &finish))
}
