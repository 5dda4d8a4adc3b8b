package domain_test

import (
	"testing"
	"time"

	"github.com/cropwatch/weather-alert-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingValidate(t *testing.T) {
	valid := domain.Reading{Location: "Kathmandu", Timestamp: time.Now()}
	require.NoError(t, valid.Validate())

	missingLocation := domain.Reading{Timestamp: time.Now()}
	assert.ErrorIs(t, missingLocation.Validate(), domain.ErrInvalidReading)

	missingTimestamp := domain.Reading{Location: "Kathmandu"}
	assert.ErrorIs(t, missingTimestamp.Validate(), domain.ErrInvalidReading)
}

func TestWindowLatest(t *testing.T) {
	var empty domain.Window
	_, ok := empty.Latest()
	assert.False(t, ok)

	w := domain.Window{
		{Location: "Pokhara", Timestamp: time.Now().Add(-time.Hour), Temperature: 20},
		{Location: "Pokhara", Timestamp: time.Now(), Temperature: 22},
	}
	latest, ok := w.Latest()
	require.True(t, ok)
	assert.InEpsilon(t, 22.0, latest.Temperature, 0.0001)
}
