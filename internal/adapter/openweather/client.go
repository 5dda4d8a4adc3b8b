// Package openweather fetches current-weather observations from
// OpenWeatherMap and normalizes them into domain readings.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"log/slog"

	"github.com/cropwatch/weather-alert-service/internal/domain"
	"github.com/sony/gobreaker"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// Client queries the OpenWeatherMap current-weather endpoint for one
// location at a time. Requests carry a bounded timeout and pass through a
// circuit breaker so a flapping upstream cannot stall every tick.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates a Client with the given per-request timeout.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    cb,
		logger:     logger,
	}
}

// SetBaseURL overrides the API endpoint. For tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// payload mirrors the slice of the OpenWeatherMap response this service
// consumes.
type payload struct {
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Rain struct {
		OneH float64 `json:"1h"`
	} `json:"rain"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Visibility float64 `json:"visibility"`
	Sys        struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

// Fetch retrieves one observation for a location. Timeouts, transport
// failures, and non-2xx responses surface as *domain.UpstreamError so the
// scheduler can skip the location for this tick.
func (c *Client) Fetch(ctx context.Context, location string) (domain.Reading, error) {
	values := url.Values{}
	values.Set("q", location)
	values.Set("appid", c.apiKey)
	values.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("build weather request: %w", err)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &domain.UpstreamError{Location: location, StatusCode: resp.StatusCode}
		}

		var p payload
		if decErr := json.NewDecoder(resp.Body).Decode(&p); decErr != nil {
			return nil, fmt.Errorf("decode weather response: %w", decErr)
		}
		return p, nil
	})
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			return domain.Reading{}, err
		}
		return domain.Reading{}, &domain.UpstreamError{Location: location, Err: err}
	}

	p := result.(payload)
	return normalize(location, p), nil
}

// normalize maps the upstream payload onto a Reading keyed by the requested
// location. Rainfall absent upstream stays 0; a missing observation time
// leaves Timestamp zero so validation rejects the reading.
func normalize(location string, p payload) domain.Reading {
	r := domain.Reading{
		Location:      location,
		Temperature:   p.Main.Temp,
		Humidity:      p.Main.Humidity,
		WindSpeed:     p.Wind.Speed,
		Rainfall:      p.Rain.OneH,
		Pressure:      p.Main.Pressure,
		CloudCover:    p.Clouds.All,
		FeelsLike:     p.Main.FeelsLike,
		WindDirection: p.Wind.Deg,
		Visibility:    p.Visibility,
	}
	if p.Dt != 0 {
		r.Timestamp = time.Unix(p.Dt, 0).UTC()
	}
	if len(p.Weather) > 0 {
		r.Perception = p.Weather[0].Description
	}
	if p.Sys.Sunrise != 0 {
		t := time.Unix(p.Sys.Sunrise, 0).UTC()
		r.Sunrise = &t
	}
	if p.Sys.Sunset != 0 {
		t := time.Unix(p.Sys.Sunset, 0).UTC()
		r.Sunset = &t
	}
	return r
}
