package protocol

// OpenAIErrorBody is the OpenAI error envelope.
type OpenAIErrorBody struct {
	Error OpenAIErrorDetail `json:"error"`
}

// OpenAIErrorDetail describes a failed request. LastAssistantContent is set when the tool loop
// hit its iteration limit.
type OpenAIErrorDetail struct {
	Type                 string `json:"type"`
	Code                 string `json:"code"`
	Message              string `json:"message"`
	LastAssistantContent string `json:"last_assistant_content,omitempty"`
}

// AnthropicErrorBody is the Anthropic error envelope.
type AnthropicErrorBody struct {
	Type  string               `json:"type"`
	Error AnthropicErrorDetail `json:"error"`
}

// AnthropicErrorDetail describes a failed request.
type AnthropicErrorDetail struct {
	Type                 string `json:"type"`
	Message              string `json:"message"`
	LastAssistantContent string `json:"last_assistant_content,omitempty"`
}
