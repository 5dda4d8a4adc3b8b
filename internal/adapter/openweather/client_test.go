package openweather_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cropwatch/weather-alert-service/internal/adapter/openweather"
	"github.com/cropwatch/weather-alert-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
	"name": "Pokhara",
	"dt": 1747040400,
	"main": {"temp": 28.4, "feels_like": 30.1, "humidity": 65, "pressure": 1012},
	"wind": {"speed": 3.6, "deg": 220},
	"weather": [{"description": "light rain"}],
	"rain": {"1h": 0.8},
	"clouds": {"all": 40},
	"visibility": 10000,
	"sys": {"sunrise": 1747008000, "sunset": 1747056000}
}`

func newClient(t *testing.T, handler http.HandlerFunc) *openweather.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := openweather.NewClient("test-key", 2*time.Second, slog.Default())
	c.SetBaseURL(srv.URL)
	return c
}

func TestFetch_NormalizesReading(t *testing.T) {
	var gotQuery string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		fmt.Fprint(w, sampleResponse)
	})

	reading, err := c.Fetch(context.Background(), "Pokhara")
	require.NoError(t, err)

	assert.Equal(t, "Pokhara", gotQuery)
	assert.Equal(t, "Pokhara", reading.Location)
	assert.Equal(t, time.Unix(1747040400, 0).UTC(), reading.Timestamp)
	assert.InEpsilon(t, 28.4, reading.Temperature, 0.0001)
	assert.InEpsilon(t, 65.0, reading.Humidity, 0.0001)
	assert.InEpsilon(t, 3.6, reading.WindSpeed, 0.0001)
	assert.InEpsilon(t, 0.8, reading.Rainfall, 0.0001)
	assert.InEpsilon(t, 1012.0, reading.Pressure, 0.0001)
	assert.Equal(t, "light rain", reading.Perception)
	require.NotNil(t, reading.Sunrise)
	assert.Equal(t, time.Unix(1747008000, 0).UTC(), *reading.Sunrise)
	require.NoError(t, reading.Validate())
}

func TestFetch_RainAbsentDefaultsToZero(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"name":"Pokhara","dt":1747040400,"main":{"temp":20,"humidity":50,"pressure":1010}}`)
	})

	reading, err := c.Fetch(context.Background(), "Pokhara")
	require.NoError(t, err)
	assert.Zero(t, reading.Rainfall)
}

func TestFetch_NonOKStatusIsUpstreamError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Fetch(context.Background(), "Pokhara")
	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
	assert.Equal(t, "Pokhara", upstream.Location)
}

func TestFetch_TimeoutIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	c := openweather.NewClient("test-key", 50*time.Millisecond, slog.Default())
	c.SetBaseURL(srv.URL)

	_, err := c.Fetch(context.Background(), "Pokhara")
	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
}

func TestFetch_MissingObservationTimeFailsValidation(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"name":"Pokhara","main":{"temp":20}}`)
	})

	reading, err := c.Fetch(context.Background(), "Pokhara")
	require.NoError(t, err)
	assert.True(t, errors.Is(reading.Validate(), domain.ErrInvalidReading))
}
