package kafka

import (
	"testing"
	"time"

	"github.com/cropwatch/weather-alert-service/internal/domain"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, time.May, 12, 9, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { domain.SetClock(nil) })

	alerts := domain.NewAlertSet()
	alerts.HeatStress["Wheat"] = "Wheat - Heat stress warning: Temperature exceeds maximum threshold of 35°C."

	update := domain.LocationUpdate{
		Location: "Pokhara",
		Window: domain.Window{
			{Location: "Pokhara", Timestamp: now, Temperature: 38},
		},
		Alerts: alerts,
	}

	msg, err := serializeToMessage(update)
	require.NoError(t, err)

	assert.Equal(t, []byte("Pokhara"), msg.Key)
	assert.Contains(t, string(msg.Value), `"location":"Pokhara"`)
	assert.Contains(t, string(msg.Value), `"heatStress"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "location", msg.Headers[0].Key)
	assert.Equal(t, []byte("Pokhara"), msg.Headers[0].Value)
	assert.Equal(t, "published_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestMapMessageToUpdate(t *testing.T) {
	msg := kafkago.Message{
		Key:   []byte("Kathmandu"),
		Value: []byte(`{"location":"Kathmandu","window":[{"location":"Kathmandu","timestamp":"2025-05-12T09:00:00Z","temperature":22,"humidity":60,"windSpeed":3,"rainfall":0,"pressure":1011}],"alerts":{"heatStress":{},"frost":{},"highHumidity":{},"lowHumidity":{},"windDamage":{},"drought":{},"flooding":{},"irrigation":{},"excessMoisture":{}}}`),
	}

	update, err := mapMessageToUpdate(msg)
	require.NoError(t, err)

	assert.Equal(t, "Kathmandu", update.Location)
	require.Len(t, update.Window, 1)
	assert.InEpsilon(t, 22.0, update.Window[0].Temperature, 0.0001)
	assert.NotNil(t, update.Alerts.HeatStress)
}

func TestMapMessageToUpdate_Malformed(t *testing.T) {
	_, err := mapMessageToUpdate(kafkago.Message{Value: []byte("not json")})
	assert.Error(t, err)
}
