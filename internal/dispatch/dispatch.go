// Package dispatch fans bus events out to open streaming sessions, filtered
// by each session's bound location.
package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/cropwatch/weather-alert-service/internal/domain"
	"github.com/cropwatch/weather-alert-service/internal/observability"
)

// Session is one open streaming connection, bound at connect time to a
// single location. Send must be safe to call from the dispatch goroutine; a
// returned error means the connection is dead.
type Session interface {
	ID() string
	Send(payload []byte) error
}

// Registry owns the set of open sessions. It is the only component allowed
// to write through a session handle. Every operation takes a single critical
// section so dispatch never iterates a mid-mutation set.
type Registry struct {
	mu        sync.Mutex
	byLoc     map[string]map[Session]struct{}
	locations map[Session]string

	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRegistry creates an empty session registry. One instance is owned by
// the process and passed to the HTTP adapter and the bus consumer; sessions
// are never reachable through ambient globals.
func NewRegistry(logger *slog.Logger, metrics *observability.Metrics) *Registry {
	return &Registry{
		byLoc:     make(map[string]map[Session]struct{}),
		locations: make(map[Session]string),
		logger:    logger,
		metrics:   metrics,
	}
}

// Subscribe registers a session under a location. A session subscribes
// exactly once for its lifetime; repeated calls are ignored.
func (r *Registry) Subscribe(s Session, location string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.locations[s]; exists {
		r.logger.Warn("session already subscribed, ignoring", "session", s.ID())
		return
	}

	set, ok := r.byLoc[location]
	if !ok {
		set = make(map[Session]struct{})
		r.byLoc[location] = set
	}
	set[s] = struct{}{}
	r.locations[s] = location

	r.metrics.SessionsConnected.Inc()
	r.logger.Debug("session subscribed", "session", s.ID(), "location", location)
}

// Unsubscribe removes a session. Idempotent: removing an unknown or
// already-removed session is a no-op.
func (r *Registry) Unsubscribe(s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(s)
}

// Len reports the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locations)
}

// OnEvent delivers a location update to every session bound to its
// location. A failed write evicts that session and never blocks delivery to
// the rest. Matches the bus consumer's handler signature.
func (r *Registry) OnEvent(_ context.Context, update domain.LocationUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		r.logger.Error("marshal update for dispatch", "location", update.Location, "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for s := range r.byLoc[update.Location] {
		if err := s.Send(payload); err != nil {
			r.logger.Warn("session write failed, evicting",
				"session", s.ID(), "location", update.Location, "error", err)
			r.removeLocked(s)
			r.metrics.SessionEvictions.Inc()
			continue
		}
		r.metrics.SessionWrites.Inc()
	}
}

// removeLocked deletes a session from both indexes. Caller holds r.mu.
func (r *Registry) removeLocked(s Session) {
	location, ok := r.locations[s]
	if !ok {
		return
	}
	delete(r.locations, s)
	if set := r.byLoc[location]; set != nil {
		delete(set, s)
		if len(set) == 0 {
			delete(r.byLoc, location)
		}
	}
	r.metrics.SessionsConnected.Dec()
	r.logger.Debug("session removed", "session", s.ID(), "location", location)
}
