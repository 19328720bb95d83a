package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Cyclone1070/toolproxy/internal/protocol"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const relayChunkSize = 32 << 10

// forwardMessages relays a messages request to the backend's Anthropic-compatible API and
// copies its status, content type and body back, flushing as bytes arrive.
func (d *Dependencies) forwardMessages(w http.ResponseWriter, r *http.Request) {
	var body json.RawMessage
	if err := readJSON(w, r, &body); err != nil {
		d.writeError(w, shapeAnthropic, err)
		return
	}
	if !gjson.ParseBytes(body).IsObject() {
		d.writeError(w, shapeAnthropic, &protocol.RequestError{Field: "body", Reason: "must be a JSON object"})
		return
	}

	resp, err := d.Passthrough.Forward(r.Context(), body)
	if err != nil {
		d.writeError(w, shapeAnthropic, err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	if strings.HasPrefix(contentType, "text/event-stream") {
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
	}
	w.WriteHeader(resp.StatusCode)

	if err := relay(w, resp.Body); err != nil {
		d.Logger.Warn("relay from backend failed", zap.Error(err))
	}
}

// relay copies src to w, flushing after every read.
func relay(w http.ResponseWriter, src io.Reader) error {
	rc := http.NewResponseController(w)
	buf := make([]byte, relayChunkSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			if ferr := flush(rc); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
