package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Cyclone1070/toolproxy/internal/protocol"
)

func startStream(w http.ResponseWriter) *http.ResponseController {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	return http.NewResponseController(w)
}

// writeEvent writes one server-sent event and flushes it. An empty name omits the event line.
func writeEvent(w http.ResponseWriter, rc *http.ResponseController, name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if name != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", name); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return flush(rc)
}

// flush ignores writers that cannot flush; the data still reaches the client when the handler returns.
func flush(rc *http.ResponseController) error {
	if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

// streamChatCompletion renders a finished response as chat.completion.chunk events followed by [DONE].
func streamChatCompletion(w http.ResponseWriter, resp *protocol.ChatCompletionResponse) error {
	rc := startStream(w)
	for _, chunk := range protocol.ChatCompletionChunks(resp) {
		if err := writeEvent(w, rc, "", chunk); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprint(w, "data: [DONE]\n\n"); err != nil {
		return err
	}
	return flush(rc)
}

// streamMessages renders a finished response as the Anthropic streaming event sequence.
func streamMessages(w http.ResponseWriter, resp *protocol.MessagesResponse) error {
	rc := startStream(w)
	for _, ev := range protocol.MessagesStreamEvents(resp) {
		if err := writeEvent(w, rc, ev.Name, ev.Data); err != nil {
			return err
		}
	}
	return nil
}
