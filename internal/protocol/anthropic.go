package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/Cyclone1070/toolproxy/internal/provider"
	"github.com/Cyclone1070/toolproxy/internal/tool"
)

// Content block types.
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// MessagesRequest is the Anthropic messages request body.
type MessagesRequest struct {
	Model         string             `json:"model"`
	System        SystemPrompt       `json:"system,omitempty"`
	Messages      []AnthropicMessage `json:"messages"`
	Tools         []AnthropicTool    `json:"tools,omitempty"`
	ToolChoice    json.RawMessage    `json:"tool_choice,omitempty"`
	MaxTokens     int                `json:"max_tokens,omitempty"`
	Temperature   *float64           `json:"temperature,omitempty"`
	TopP          *float64           `json:"top_p,omitempty"`
	StopSequences []string           `json:"stop_sequences,omitempty"`
	Stream        bool               `json:"stream,omitempty"`
}

// SystemPrompt accepts a string or an array of text blocks.
type SystemPrompt string

func (s *SystemPrompt) UnmarshalJSON(data []byte) error {
	var c TextContent
	if err := c.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("system: %w", err)
	}
	*s = SystemPrompt(c.Text)
	return nil
}

// AnthropicMessage is one turn. Content accepts a plain string as shorthand for a single text block.
type AnthropicMessage struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

func (m *AnthropicMessage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Role = raw.Role
	m.Content = nil

	content := bytes.TrimSpace(raw.Content)
	switch {
	case len(content) == 0 || bytes.Equal(content, []byte("null")):
	case content[0] == '"':
		var s string
		if err := json.Unmarshal(content, &s); err != nil {
			return err
		}
		m.Content = []ContentBlock{{Type: BlockText, Text: s}}
	default:
		if err := json.Unmarshal(content, &m.Content); err != nil {
			return err
		}
	}
	return nil
}

// ContentBlock is a text, tool_use or tool_result block. Unused fields are omitted.
type ContentBlock struct {
	Type string `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// tool_use
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result; ToolCallID is accepted as an alias of ToolUseID on input.
	ToolUseID  string       `json:"tool_use_id,omitempty"`
	ToolCallID string       `json:"tool_call_id,omitempty"`
	Content    *TextContent `json:"content,omitempty"`
	IsError    bool         `json:"is_error,omitempty"`
}

// AnthropicTool is a flat tool definition.
type AnthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// MessagesResponse is the Anthropic messages response body.
type MessagesResponse struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Role         string         `json:"role"`
	Model        string         `json:"model"`
	Content      []ContentBlock `json:"content"`
	StopReason   string         `json:"stop_reason"`
	StopSequence *string        `json:"stop_sequence"`
	Usage        AnthropicUsage `json:"usage"`
}

// AnthropicUsage reports token counts.
type AnthropicUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// AnthropicToInternal converts an Anthropic request into the canonical conversation and tool declarations.
// The system prompt becomes a leading system message; each tool_result block becomes its own tool message.
func AnthropicToInternal(req *MessagesRequest) ([]provider.Message, []tool.Declaration, error) {
	var msgs []provider.Message
	if req.System != "" {
		msgs = append(msgs, provider.Message{Role: provider.RoleSystem, Content: string(req.System)})
	}

	for i, m := range req.Messages {
		field := fmt.Sprintf("messages[%d]", i)
		var converted []provider.Message
		var err error
		switch m.Role {
		case "user":
			converted, err = anthropicUserToInternal(field, m.Content)
		case "assistant":
			converted, err = anthropicAssistantToInternal(field, m.Content)
		default:
			err = &RequestError{Field: field, Reason: fmt.Sprintf("unsupported role %q", m.Role)}
		}
		if err != nil {
			return nil, nil, err
		}
		msgs = append(msgs, converted...)
	}

	var decls []tool.Declaration
	for i, t := range req.Tools {
		if t.Name == "" {
			return nil, nil, &RequestError{Field: fmt.Sprintf("tools[%d]", i), Reason: "name is required"}
		}
		decls = append(decls, tool.Declaration{Name: t.Name, Description: t.Description, Parameters: t.InputSchema})
	}
	return msgs, decls, nil
}

func anthropicUserToInternal(field string, blocks []ContentBlock) ([]provider.Message, error) {
	var out []provider.Message
	var texts []string
	sawText := false
	flush := func() {
		if sawText {
			out = append(out, provider.Message{Role: provider.RoleUser, Content: strings.Join(texts, "\n")})
		}
		texts, sawText = nil, false
	}

	for j, b := range blocks {
		switch b.Type {
		case BlockText:
			texts = append(texts, b.Text)
			sawText = true
		case BlockToolResult:
			flush()
			id := b.ToolUseID
			if id == "" {
				id = b.ToolCallID
			}
			if id == "" {
				return nil, &RequestError{Field: fmt.Sprintf("%s.content[%d]", field, j), Reason: "tool_result without tool_use_id"}
			}
			var content string
			if b.Content != nil {
				content = b.Content.Text
			}
			out = append(out, provider.Message{Role: provider.RoleTool, Content: content, ToolCallID: id, IsError: b.IsError})
		default:
			// Images and documents cannot be forwarded to a text backend.
		}
	}
	if sawText || len(out) == 0 {
		sawText = true
		flush()
	}
	return out, nil
}

func anthropicAssistantToInternal(field string, blocks []ContentBlock) ([]provider.Message, error) {
	msg := provider.Message{Role: provider.RoleAssistant}
	var texts []string
	for j, b := range blocks {
		switch b.Type {
		case BlockText:
			texts = append(texts, b.Text)
		case BlockToolUse:
			if b.Name == "" {
				return nil, &RequestError{Field: fmt.Sprintf("%s.content[%d]", field, j), Reason: "tool_use without name"}
			}
			args := "{}"
			if len(b.Input) > 0 && !bytes.Equal(bytes.TrimSpace(b.Input), []byte("null")) {
				args = string(tool.CompactJSON(b.Input))
			}
			msg.ToolCalls = append(msg.ToolCalls, provider.ToolCall{
				ID:       b.ID,
				Function: provider.FunctionCall{Name: b.Name, Arguments: args},
			})
		}
	}
	msg.Content = strings.Join(texts, "\n")
	return []provider.Message{msg}, nil
}

// AnthropicFromInternal converts a canonical conversation into an Anthropic system prompt and messages.
// System messages are joined into the system prompt. Consecutive tool messages are grouped
// into one user turn of tool_result blocks.
func AnthropicFromInternal(msgs []provider.Message) (SystemPrompt, []AnthropicMessage) {
	var system []string
	var out []AnthropicMessage
	for i, m := range msgs {
		switch m.Role {
		case provider.RoleSystem:
			system = append(system, m.Content)
		case provider.RoleTool:
			block := ContentBlock{Type: BlockToolResult, ToolUseID: m.ToolCallID, Content: &TextContent{Text: m.Content}, IsError: m.IsError}
			if i > 0 && msgs[i-1].Role == provider.RoleTool && len(out) > 0 {
				last := &out[len(out)-1]
				last.Content = append(last.Content, block)
				continue
			}
			out = append(out, AnthropicMessage{Role: "user", Content: []ContentBlock{block}})
		case provider.RoleAssistant:
			out = append(out, AnthropicMessage{Role: "assistant", Content: anthropicAssistantBlocks(m)})
		default:
			blocks := []ContentBlock{}
			if m.Content != "" {
				blocks = append(blocks, ContentBlock{Type: BlockText, Text: m.Content})
			}
			out = append(out, AnthropicMessage{Role: "user", Content: blocks})
		}
	}
	return SystemPrompt(strings.Join(system, "\n\n")), out
}

func anthropicAssistantBlocks(m provider.Message) []ContentBlock {
	blocks := []ContentBlock{}
	if m.Content != "" {
		blocks = append(blocks, ContentBlock{Type: BlockText, Text: m.Content})
	}
	for _, tc := range m.ToolCalls {
		blocks = append(blocks, ContentBlock{
			Type:  BlockToolUse,
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: toolInput(tc.Function.Arguments),
		})
	}
	return blocks
}

// toolInput returns arguments as a JSON object, or {} when they are not one.
func toolInput(arguments string) json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(arguments), &obj); err != nil || obj == nil {
		return json.RawMessage("{}")
	}
	return tool.CompactJSON([]byte(arguments))
}

// AnthropicToolsFromInternal converts declarations into flat Anthropic tools.
func AnthropicToolsFromInternal(decls []tool.Declaration) []AnthropicTool {
	out := make([]AnthropicTool, 0, len(decls))
	for _, d := range decls {
		schema := d.Parameters
		if len(schema) == 0 {
			schema = json.RawMessage(`{"type":"object"}`)
		}
		out = append(out, AnthropicTool{Name: d.Name, Description: d.Description, InputSchema: schema})
	}
	return out
}

// AnthropicExtra maps the sampling fields of an Anthropic request onto backend request fields.
func AnthropicExtra(req *MessagesRequest) map[string]json.RawMessage {
	extra := map[string]json.RawMessage{}
	set := func(key string, v any) {
		if data, err := json.Marshal(v); err == nil {
			extra[key] = data
		}
	}
	if req.MaxTokens > 0 {
		set("max_tokens", req.MaxTokens)
	}
	if req.Temperature != nil {
		set("temperature", *req.Temperature)
	}
	if req.TopP != nil {
		set("top_p", *req.TopP)
	}
	if len(req.StopSequences) > 0 {
		set("stop", req.StopSequences)
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}

// StopReason maps a backend finish reason onto an Anthropic stop reason.
func StopReason(finishReason string) string {
	switch finishReason {
	case "tool_calls":
		return "tool_use"
	case "length":
		return "max_tokens"
	default:
		return "end_turn"
	}
}

// NewMessagesResponse renders the final assistant turn as an Anthropic response.
func NewMessagesResponse(id, model string, msg provider.Message, finishReason string, usage provider.Usage) *MessagesResponse {
	return &MessagesResponse{
		ID:         id,
		Type:       "message",
		Role:       "assistant",
		Model:      model,
		Content:    anthropicAssistantBlocks(msg),
		StopReason: StopReason(finishReason),
		Usage:      AnthropicUsage{InputTokens: usage.PromptTokens, OutputTokens: usage.CompletionTokens},
	}
}

// EstimateTokens approximates the input token count of a request as ceil(characters/4).
func EstimateTokens(req *MessagesRequest) int64 {
	msgs, decls, err := AnthropicToInternal(req)
	if err != nil {
		return 0
	}
	chars := 0
	for _, m := range msgs {
		chars += len([]rune(m.Content))
		for _, tc := range m.ToolCalls {
			chars += len(tc.Function.Name) + len(tc.Function.Arguments)
		}
	}
	for _, d := range decls {
		chars += len(d.Name) + len([]rune(d.Description)) + len(d.Parameters)
	}
	return int64(math.Ceil(float64(chars) / 4))
}
