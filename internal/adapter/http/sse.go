package http

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	// sessionBuffer absorbs bursts between dispatch and the client write
	// loop. A session that stays full is considered dead and gets evicted.
	sessionBuffer     = 64
	heartbeatInterval = 30 * time.Second
)

var sessionSeq atomic.Uint64

// sseSession adapts one event-stream connection to dispatch.Session.
// Dispatch pushes payloads into the channel; the handler goroutine drains it
// onto the wire, preserving per-session event order.
type sseSession struct {
	id string
	ch chan []byte
}

func newSSESession(remoteAddr string) *sseSession {
	return &sseSession{
		id: fmt.Sprintf("%s#%d", remoteAddr, sessionSeq.Add(1)),
		ch: make(chan []byte, sessionBuffer),
	}
}

func (s *sseSession) ID() string { return s.id }

// Send enqueues a payload without blocking the dispatcher. A full buffer
// means the client is not draining; report it as a write failure so the
// registry evicts the session.
func (s *sseSession) Send(payload []byte) error {
	select {
	case s.ch <- payload:
		return nil
	default:
		return fmt.Errorf("session %s buffer full", s.id)
	}
}

// handleStream serves the long-lived text event stream. The session binds to
// its location once at connect time; later profile edits do not re-route an
// open stream.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "location is required"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, "data: {\"message\":\"Connected to weather updates\"}\n\n"); err != nil {
		return
	}
	flusher.Flush()

	session := newSSESession(r.RemoteAddr)
	s.registry.Subscribe(session, location)
	defer s.registry.Unsubscribe(session)

	s.logger.Debug("stream opened", "session", session.ID(), "location", location)
	defer s.logger.Debug("stream closed", "session", session.ID())

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-session.ch:
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ":\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
