package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Events streams session-change notifications over server-sent events. The
// subscription is released when the client disconnects.
// GET /api/events
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.Error(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.broker.Subscribe()
	defer h.broker.Unsubscribe(sub)

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub.Done():
			return
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			flusher.Flush()
		}
	}
}
