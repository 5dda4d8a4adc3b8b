// Package scheduler drives the fixed-interval ingest-merge-alert-persist-
// publish cycle across all tracked locations.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cropwatch/weather-alert-service/internal/domain"
	"github.com/cropwatch/weather-alert-service/internal/observability"
	"github.com/cropwatch/weather-alert-service/internal/store"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// LocationSource yields the tracked location set and the active crop types.
// Read-only; eventual consistency is acceptable.
type LocationSource interface {
	ActiveLocations(ctx context.Context) ([]string, error)
	ActiveCropTypes(ctx context.Context) ([]string, error)
}

// Fetcher retrieves one normalized reading for a location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (domain.Reading, error)
}

// WindowStore persists readings and serves per-location windows.
type WindowStore interface {
	LoadWindow(location string) domain.Window
	Persist(location string, r domain.Reading, alerts domain.AlertSet) error
}

// Publisher fans a location update out to the bus. Best-effort.
type Publisher interface {
	Publish(ctx context.Context, update domain.LocationUpdate) error
}

// Options tune the tick cadence and per-tick concurrency.
type Options struct {
	Interval     time.Duration
	FetchTimeout time.Duration
	Workers      int             // max concurrent locations per tick
	Clock        clockwork.Clock // nil means real time
}

// Scheduler runs the pipeline tick loop. Per-location failures are contained
// at the location boundary; nothing a single location does can abort a tick,
// and nothing a single tick does can abort the loop.
type Scheduler struct {
	source    LocationSource
	fetcher   Fetcher
	store     WindowStore
	publisher Publisher
	catalog   domain.ThresholdCatalog

	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock

	interval     time.Duration
	fetchTimeout time.Duration
	workers      int
	ready        atomic.Bool
}

// New creates a Scheduler with the given collaborators.
func New(source LocationSource, fetcher Fetcher, ws WindowStore, publisher Publisher,
	catalog domain.ThresholdCatalog, logger *slog.Logger, metrics *observability.Metrics, opts Options,
) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	return &Scheduler{
		source:       source,
		fetcher:      fetcher,
		store:        ws,
		publisher:    publisher,
		catalog:      catalog,
		logger:       logger,
		metrics:      metrics,
		clock:        opts.Clock,
		interval:     opts.Interval,
		fetchTimeout: opts.FetchTimeout,
		workers:      opts.Workers,
	}
}

// CheckReadiness returns nil once at least one tick has completed.
func (s *Scheduler) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("scheduler has not completed a tick yet")
	}
	return nil
}

// Run executes ticks at the configured interval until the context is
// cancelled. Cancellation stops scheduling new ticks; in-flight per-location
// work finishes or aborts via its fetch timeout.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval, "workers", s.workers)
	s.metrics.SchedulerRunning.Set(1)
	defer s.metrics.SchedulerRunning.Set(0)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			s.RunTick(ctx)
		}
	}
}

// RunTick performs one full cycle across the current location set. Exported
// so tests can drive ticks synchronously without waiting on real time.
// Ticks are independent units of work: a failure here carries no state into
// the next tick.
func (s *Scheduler) RunTick(ctx context.Context) {
	start := time.Now()
	s.metrics.TicksTotal.Inc()

	locations, err := s.source.ActiveLocations(ctx)
	if err != nil {
		s.logger.Error("tick aborted: listing active locations", "error", err)
		s.metrics.LocationsSkipped.WithLabelValues("source").Inc()
		return
	}
	cropTypes, err := s.source.ActiveCropTypes(ctx)
	if err != nil {
		s.logger.Error("tick aborted: listing active crop types", "error", err)
		s.metrics.LocationsSkipped.WithLabelValues("source").Inc()
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for _, location := range locations {
		g.Go(func() error {
			s.processLocation(ctx, location, cropTypes)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // per-location errors never escape processLocation

	s.ready.Store(true)
	s.metrics.TickDuration.Observe(time.Since(start).Seconds())
}

// processLocation runs the strictly ordered ingest→merge→alert→persist→
// publish sequence for one location. Every failure is logged and contained
// here.
func (s *Scheduler) processLocation(ctx context.Context, location string, cropTypes []string) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	fetchStart := time.Now()
	reading, err := s.fetcher.Fetch(fetchCtx, location)
	s.metrics.FetchDuration.Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		s.logger.Warn("fetch failed, skipping location", "location", location, "error", err)
		s.metrics.LocationsSkipped.WithLabelValues("fetch").Inc()
		return
	}

	if err := reading.Validate(); err != nil {
		s.logger.Warn("invalid reading dropped", "location", location, "error", err)
		s.metrics.LocationsSkipped.WithLabelValues("validation").Inc()
		return
	}

	window := store.MergeAndTruncate(s.store.LoadWindow(location), reading)
	s.metrics.ReadingsIngested.Inc()

	latest, ok := window.Latest()
	if !ok {
		// Unreachable after a successful merge; guard anyway.
		return
	}
	alerts := domain.EvaluateAlerts(latest, cropTypes, s.catalog)

	if err := s.store.Persist(location, reading, alerts); err != nil {
		s.logger.Error("persist failed, skipping publish", "location", location, "error", err)
		s.metrics.LocationsSkipped.WithLabelValues("persist").Inc()
		return
	}

	update := domain.LocationUpdate{Location: location, Window: window, Alerts: alerts}
	if err := s.publisher.Publish(ctx, update); err != nil {
		// Best-effort: the persisted record stands, the tick goes on.
		s.logger.Error("publish failed", "location", location, "error", err)
		s.metrics.PublishErrors.Inc()
	}

	if !alerts.Empty() {
		s.metrics.AlertsEmitted.Inc()
	}
	s.metrics.LocationsProcessed.Inc()
}
