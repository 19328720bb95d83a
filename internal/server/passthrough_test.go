package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/Cyclone1070/toolproxy/internal/protocol"
	"github.com/Cyclone1070/toolproxy/internal/provider"
	"github.com/Cyclone1070/toolproxy/internal/provider/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newPassthroughServer routes /v1/messages through a real Passthrough to backend.
func newPassthroughServer(t *testing.T, l *mockLoop, backend http.HandlerFunc) http.Handler {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Backend.BaseURL = srv.URL
	cfg.Backend.ForceModel = "qwen3:8b"
	cfg.Backend.MaxRetries = 0
	cfg.Backend.UseAnthropicAPI = true
	client := ollama.NewOpenAIClient(cfg.Backend, srv.Client())

	return NewRouter(&Dependencies{
		Loop:        l,
		Models:      &mockModels{models: []provider.ModelInfo{}},
		Passthrough: ollama.NewPassthrough(client, cfg.Backend, nil),
		Config:      cfg,
		Logger:      zap.NewNop(),
		WorkingDir:  "/work",
		ToolCount:   7,
	})
}

func TestMessagesPassthrough_NonStreaming(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	l := &mockLoop{}
	h := newPassthroughServer(t, l, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_backend","type":"message","role":"assistant","content":[{"type":"text","text":"relayed"}],"stop_reason":"end_turn"}`))
	})

	rec := do(h, http.MethodPost, "/v1/messages", messagesBody)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decode[protocol.MessagesResponse](t, rec)
	assert.Equal(t, "msg_backend", resp.ID)
	require.Len(t, resp.Content, 1)
	assert.Equal(t, "relayed", resp.Content[0].Text)

	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "qwen3:8b", gotBody["model"], "force_model applies")
	assert.Equal(t, "be brief", gotBody["system"])
	assert.Nil(t, gotBody["tools"], "proxy tools are not injected")
	assert.Nil(t, l.got, "tool loop is bypassed")
}

func TestMessagesPassthrough_Streaming(t *testing.T) {
	stream := "event: message_start\ndata: {\"type\":\"message_start\"}\n\n" +
		"event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"hi\"}}\n\n" +
		"event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n"
	var gotStream any
	h := newPassthroughServer(t, &mockLoop{}, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotStream = body["stream"]
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(stream))
	})

	rec := do(h, http.MethodPost, "/v1/messages", `{"model":"x","stream":true,"max_tokens":8,"messages":[{"role":"user","content":"hi"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, stream, rec.Body.String())
	assert.Equal(t, true, gotStream)
}

func TestMessagesPassthrough_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		backend    http.HandlerFunc
		wantStatus int
		wantType   string
	}{
		{
			name:       "backend failure",
			body:       messagesBody,
			backend:    func(w http.ResponseWriter, _ *http.Request) { http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError) },
			wantStatus: http.StatusBadGateway,
			wantType:   "api_error",
		},
		{
			name:       "malformed json",
			body:       `{"messages":`,
			wantStatus: http.StatusBadRequest,
			wantType:   "invalid_request_error",
		},
		{
			name:       "not an object",
			body:       `[1,2]`,
			wantStatus: http.StatusBadRequest,
			wantType:   "invalid_request_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := newPassthroughServer(t, &mockLoop{}, func(w http.ResponseWriter, r *http.Request) {
				called = true
				if tt.backend != nil {
					tt.backend(w, r)
				}
			})

			rec := do(h, http.MethodPost, "/v1/messages", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode[protocol.AnthropicErrorBody](t, rec)
			assert.Equal(t, "error", body.Type)
			assert.Equal(t, tt.wantType, body.Error.Type)
			assert.Equal(t, tt.backend != nil, called)
		})
	}
}

func TestMessagesPassthrough_Health(t *testing.T) {
	h := newPassthroughServer(t, &mockLoop{}, func(http.ResponseWriter, *http.Request) {})

	rec := do(h, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["use_anthropic_api"])
}
