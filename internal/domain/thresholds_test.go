package domain_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cropwatch/weather-alert-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := domain.DefaultCatalog()

	for _, crop := range []string{"Wheat", "Maiz", "Paddy", "Barley"} {
		_, ok := catalog.Profile(crop)
		assert.True(t, ok, "missing default profile for %s", crop)
	}

	paddy, _ := catalog.Profile("Paddy")
	assert.InEpsilon(t, 30.0, paddy.MaxTemperature, 0.0001)
	assert.InEpsilon(t, 100.0, paddy.MaxRainfall, 0.0001)
}

func TestLoadCatalog_EmptyPathReturnsDefaults(t *testing.T) {
	catalog, err := domain.LoadCatalog("")
	require.NoError(t, err)
	assert.Len(t, catalog, 4)
}

func TestLoadCatalog_OverridesAndAdds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	content := `
Wheat:
  maxTemperature: 40
  minTemperature: -10
  maxHumidity: 85
  minHumidity: 35
  maxWindSpeed: 30
  minRainfall: 5
  maxRainfall: 60
Millet:
  maxTemperature: 38
  minTemperature: 5
  maxHumidity: 70
  minHumidity: 30
  maxWindSpeed: 25
  minRainfall: 8
  maxRainfall: 40
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	catalog, err := domain.LoadCatalog(path)
	require.NoError(t, err)

	wheat, _ := catalog.Profile("Wheat")
	assert.InEpsilon(t, 40.0, wheat.MaxTemperature, 0.0001)

	_, ok := catalog.Profile("Millet")
	assert.True(t, ok)

	// Untouched defaults survive.
	_, ok = catalog.Profile("Barley")
	assert.True(t, ok)
}

func TestLoadCatalog_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o600))

	_, err := domain.LoadCatalog(path)
	assert.Error(t, err)
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := domain.LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
