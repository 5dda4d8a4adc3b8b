package domain

import "time"

// WindowSize is the number of readings retained per location. A window never
// grows past this; merging a reading into a full window evicts the oldest.
const WindowSize = 4

// RetentionHorizon is the maximum age a persisted reading may reach before
// the storage engine deletes it.
const RetentionHorizon = 4 * 24 * time.Hour

// Reading is one normalized weather observation for a location.
// Location and Timestamp are mandatory; everything else is best-effort
// enrichment from the upstream provider.
type Reading struct {
	Location    string    `json:"location"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
	Rainfall    float64   `json:"rainfall"` // absent upstream means no rain, stored as 0
	Pressure    float64   `json:"pressure"`

	Perception    string     `json:"perception,omitempty"` // upstream condition text, e.g. "light rain"
	UVIndex       float64    `json:"uvIndex,omitempty"`
	Visibility    float64    `json:"visibility,omitempty"`
	Sunrise       *time.Time `json:"sunrise,omitempty"`
	Sunset        *time.Time `json:"sunset,omitempty"`
	CloudCover    float64    `json:"cloudCover,omitempty"`
	FeelsLike     float64    `json:"feelsLike,omitempty"`
	WindDirection float64    `json:"windDirection,omitempty"`
	DewPoint      float64    `json:"dewPoint,omitempty"`
	AirQuality    float64    `json:"airQuality,omitempty"`
}

// Validate reports whether the reading satisfies the mandatory-field
// invariant. Invalid readings are never persisted or merged.
func (r Reading) Validate() error {
	if r.Location == "" || r.Timestamp.IsZero() {
		return ErrInvalidReading
	}
	return nil
}

// Window is a time-ordered (oldest→newest) recency buffer of readings for a
// single location, at most WindowSize long.
type Window []Reading

// Latest returns the newest reading in the window.
func (w Window) Latest() (Reading, bool) {
	if len(w) == 0 {
		return Reading{}, false
	}
	return w[len(w)-1], true
}

// LocationUpdate is the bus message published once per successfully
// processed location per tick, and the payload streamed to subscribers.
type LocationUpdate struct {
	Location string   `json:"location"`
	Window   Window   `json:"window"`
	Alerts   AlertSet `json:"alerts"`
}
