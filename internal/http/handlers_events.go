package http

import (
	"fmt"
	"net/http"
	"time"

	"pocketpal/internal/log"
	"pocketpal/internal/notify"
)

const (
	eventBuffer       = 16
	heartbeatInterval = 30 * time.Second
)

// handleEvents streams change signals as server-sent events. A slow client
// loses signals once its buffer is full; it should re-read on the next one.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flusher, ok := w.(http.Flusher)
	if !ok {
		InternalServerError("streaming unsupported").Write(w)
		return
	}

	events := make(chan notify.Event, eventBuffer)
	unsubscribe := s.ledger.Subscribe(func(ev notify.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	defer unsubscribe()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	logger := log.FromContext(ctx)
	logger.DebugContext(ctx, "Event stream opened")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.DebugContext(ctx, "Event stream closed by client")
			return
		case <-s.stopStreams:
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev := <-events:
			if _, err := fmt.Fprintf(w, "event: %s\ndata: {\"event\":%q,\"at\":%q}\n\n",
				ev.Kind, ev.Kind, ev.At.UTC().Format(time.RFC3339Nano)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
