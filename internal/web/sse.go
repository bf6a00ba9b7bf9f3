package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

type toolEvent struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Arguments string `json:"arguments,omitempty"`
}

// eventStream writes server-sent events. Write failures after the client
// has gone are ignored so processing can finish.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	gone    bool
}

func newEventStream(w http.ResponseWriter) (*eventStream, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &eventStream{w: w, flusher: flusher}, true
}

func (e *eventStream) send(event string, v any) {
	if e.gone {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		zap.S().Errorw("Failed to encode event", "event", event, "error", err)
		return
	}
	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		e.gone = true
		return
	}
	e.flusher.Flush()
}
