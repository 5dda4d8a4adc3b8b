package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidReading marks a reading missing its location or timestamp.
// Such readings are dropped, never persisted.
var ErrInvalidReading = errors.New("reading missing location or timestamp")

// UpstreamError wraps a weather provider failure (timeout, transport error,
// or non-2xx response). The scheduler treats it as a per-location skip.
type UpstreamError struct {
	Location   string
	StatusCode int // zero when the request never produced a response
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream weather fetch for %q: status %d", e.Location, e.StatusCode)
	}
	return fmt.Sprintf("upstream weather fetch for %q: %v", e.Location, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
