package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/Cyclone1070/toolproxy/internal/provider"
	"github.com/Cyclone1070/toolproxy/internal/workflow"
	"github.com/Cyclone1070/toolproxy/internal/workflow/loop"
	"go.uber.org/zap"
)

// maxBodyBytes caps inbound request bodies.
const maxBodyBytes = 32 << 20

// loopRunner runs one conversation through the tool loop.
type loopRunner interface {
	Run(ctx context.Context, req *loop.Request, events chan<- workflow.Event) (*loop.Result, error)
}

// modelLister lists the models the backend serves.
type modelLister interface {
	ListModels(ctx context.Context) ([]provider.ModelInfo, error)
}

// messagesForwarder relays a raw Anthropic messages request to the backend.
type messagesForwarder interface {
	Forward(ctx context.Context, body json.RawMessage) (*http.Response, error)
}

// Dependencies holds shared state injected into all HTTP handlers.
// Passthrough is nil unless /v1/messages is relayed to the backend unchanged.
type Dependencies struct {
	Loop        loopRunner
	Models      modelLister
	Passthrough messagesForwarder
	Config      *config.Config
	Logger      *zap.Logger
	WorkingDir  string
	ToolCount   int
}

// NewRouter builds the HTTP mux with all routes wired up.
func NewRouter(deps *Dependencies) http.Handler {
	if deps.Loop == nil {
		panic("loop is required")
	}
	if deps.Models == nil {
		panic("models is required")
	}
	if deps.Config == nil {
		panic("config is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	mux := http.NewServeMux()

	// OpenAI shape
	mux.HandleFunc("POST /v1/chat/completions", deps.authMiddleware(deps.handleChatCompletions))
	mux.HandleFunc("GET /v1/models", deps.authMiddleware(deps.handleListModels))

	// Anthropic shape
	mux.HandleFunc("POST /v1/messages", deps.authMiddleware(deps.handleMessages))
	mux.HandleFunc("POST /v1/messages/count_tokens", deps.authMiddleware(deps.handleCountTokens))

	// Client telemetry is accepted and dropped.
	mux.HandleFunc("POST /api/event_logging/batch", deps.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		_ = r.Body.Close()
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))

	mux.HandleFunc("GET /health", deps.handleHealth)

	return requestLogging(mux, deps.Logger)
}

func (d *Dependencies) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"backend":           d.Config.Backend.BaseURL,
		"working_directory": d.WorkingDir,
		"tools":             d.ToolCount,
		"inject_tools":      d.Config.Tools.InjectTools,
		"use_anthropic_api": d.Passthrough != nil,
	})
}

type modelObject struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

func (d *Dependencies) handleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := d.Models.ListModels(r.Context())
	if err != nil {
		d.Logger.Warn("list models failed", zap.Error(err))
		d.writeError(w, shapeOpenAI, err)
		return
	}

	data := make([]modelObject, 0, len(models))
	for _, m := range models {
		data = append(data, modelObject{ID: m.ID, Object: "model", Created: m.Created, OwnedBy: m.OwnedBy})
	}
	writeJSON(w, http.StatusOK, map[string]any{"object": "list", "data": data})
}

// runLoop runs req with a per-request event channel whose events are logged at debug level.
func (d *Dependencies) runLoop(ctx context.Context, req *loop.Request) (*loop.Result, error) {
	events := make(chan workflow.Event, 16)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for ev := range events {
			d.logEvent(ev)
		}
	}()

	result, err := d.Loop.Run(ctx, req, events)
	close(events)
	<-drained
	return result, err
}
