package provider

import (
	"encoding/json"

	"github.com/Cyclone1070/toolproxy/internal/tool"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn of a conversation in the proxy's canonical form.
// Assistant messages may carry ToolCalls; tool messages answer exactly one call via ToolCallID.
// IsError marks a tool message whose content reports a failed call.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	IsError    bool       `json:"-"`
}

// ToolCall is a model's request to invoke one named tool.
type ToolCall struct {
	ID       string       `json:"id"`
	Function FunctionCall `json:"function"`
}

// FunctionCall holds the tool name and its arguments as JSON text, exactly as the model produced them.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResult is the outcome of one executed ToolCall.
type ToolResult struct {
	ToolCallID string
	Content    string
	IsError    bool
}

// Message converts the result into the tool-role message that answers its call.
func (r ToolResult) Message() Message {
	return Message{Role: RoleTool, Content: r.Content, ToolCallID: r.ToolCallID, IsError: r.IsError}
}

// Usage counts tokens for one or more backend round trips.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Add accumulates other into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// CompletionRequest is one backend round trip.
type CompletionRequest struct {
	Model    string
	Messages []Message
	Tools    []tool.Declaration

	// ToolChoice is forwarded verbatim when set.
	ToolChoice json.RawMessage
	// Extra holds additional top-level request fields (temperature, max_tokens, ...) forwarded verbatim.
	Extra map[string]json.RawMessage
}

// Completion is the backend's answer to a CompletionRequest.
type Completion struct {
	ID           string
	Model        string
	Message      Message
	FinishReason string
	Usage        Usage
}

// ModelInfo describes a model served by the backend.
type ModelInfo struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}
