// Package store persists per-location weather records with an
// engine-enforced retention horizon.
//
// Records are keyed by (location, timestamp) so re-ingesting the same
// observation overwrites instead of duplicating. Expiry is handled inside
// the cache engine: each record's TTL is anchored to its observation
// timestamp, the janitor sweeps expired entries in the background, and reads
// re-check expiry, so retention holds even if the scheduler stalls.
package store

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cropwatch/weather-alert-service/internal/domain"
	gocache "github.com/patrickmn/go-cache"
)

func init() {
	// Snapshots gob-encode records through an interface value.
	gob.Register(Record{})
}

// keySeparator joins location and timestamp in cache keys. Unit separator,
// cannot occur in a location name.
const keySeparator = "\x1f"

// Record is the persisted layout: one reading plus the alert set computed
// from the window it completed.
type Record struct {
	domain.Reading
	Alerts domain.AlertSet `json:"alerts"`
}

// WindowStore holds the durable per-location reading records.
type WindowStore struct {
	cache     *gocache.Cache
	retention time.Duration
	logger    *slog.Logger
}

// New creates a WindowStore that retains records for the given horizon.
// sweepInterval controls how often the engine's janitor removes expired
// entries; reads never observe expired records regardless.
func New(retention, sweepInterval time.Duration, logger *slog.Logger) *WindowStore {
	return &WindowStore{
		cache:     gocache.New(retention, sweepInterval),
		retention: retention,
		logger:    logger,
	}
}

// MergeAndTruncate appends a reading to a window and keeps the newest
// domain.WindowSize entries ordered oldest→newest. A reading that fails the
// mandatory-field invariant leaves the window unchanged. A reading sharing a
// timestamp with an existing entry replaces it.
func MergeAndTruncate(w domain.Window, r domain.Reading) domain.Window {
	if err := r.Validate(); err != nil {
		return w
	}

	merged := make(domain.Window, 0, len(w)+1)
	replaced := false
	for _, existing := range w {
		if existing.Timestamp.Equal(r.Timestamp) {
			merged = append(merged, r)
			replaced = true
			continue
		}
		merged = append(merged, existing)
	}
	if !replaced {
		merged = append(merged, r)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})

	if len(merged) > domain.WindowSize {
		merged = merged[len(merged)-domain.WindowSize:]
	}
	return merged
}

// LoadWindow returns up to domain.WindowSize of the location's most recent
// records within the retention horizon, oldest→newest. Empty window when the
// location has no live records.
func (s *WindowStore) LoadWindow(location string) domain.Window {
	cutoff := domain.Clock().Now().Add(-s.retention)
	prefix := location + keySeparator

	var window domain.Window
	for key, item := range s.cache.Items() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rec, ok := item.Object.(Record)
		if !ok {
			continue
		}
		if rec.Timestamp.Before(cutoff) {
			continue
		}
		window = append(window, rec.Reading)
	}

	sort.Slice(window, func(i, j int) bool {
		return window[i].Timestamp.Before(window[j].Timestamp)
	})
	if len(window) > domain.WindowSize {
		window = window[len(window)-domain.WindowSize:]
	}
	return window
}

// Persist upserts one record keyed by (location, timestamp). The record's
// TTL is anchored to the observation timestamp, so a reading older than the
// horizon is already expired and is not stored.
func (s *WindowStore) Persist(location string, r domain.Reading, alerts domain.AlertSet) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("persist reading for %q: %w", location, err)
	}

	ttl := r.Timestamp.Add(s.retention).Sub(domain.Clock().Now())
	if ttl <= 0 {
		s.logger.Debug("skipping already-expired reading",
			"location", location, "timestamp", r.Timestamp)
		return nil
	}

	s.cache.Set(recordKey(location, r.Timestamp), Record{Reading: r, Alerts: alerts}, ttl)
	return nil
}

// Recent returns up to limit records for a location, newest first.
func (s *WindowStore) Recent(location string, limit int) []Record {
	prefix := location + keySeparator

	var records []Record
	for key, item := range s.cache.Items() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if rec, ok := item.Object.(Record); ok {
			records = append(records, rec)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

// Len reports the number of live records across all locations.
func (s *WindowStore) Len() int {
	return s.cache.ItemCount()
}

// SaveSnapshot writes the live records to a file so a restart can resume
// with warm windows. Best-effort; expiry state travels with each record.
func (s *WindowStore) SaveSnapshot(path string) error {
	if err := s.cache.SaveFile(path); err != nil {
		return fmt.Errorf("save window snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot restores records saved by SaveSnapshot. Records that expired
// while the process was down stay invisible and are swept by the janitor.
func (s *WindowStore) LoadSnapshot(path string) error {
	if err := s.cache.LoadFile(path); err != nil {
		return fmt.Errorf("load window snapshot: %w", err)
	}
	return nil
}

func recordKey(location string, ts time.Time) string {
	return location + keySeparator + ts.UTC().Format(time.RFC3339Nano)
}
