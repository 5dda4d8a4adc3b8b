package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ThresholdProfile holds the tolerance bounds for one crop type. Static
// configuration; not editable at runtime.
type ThresholdProfile struct {
	MaxTemperature float64 `yaml:"maxTemperature"`
	MinTemperature float64 `yaml:"minTemperature"`
	MaxHumidity    float64 `yaml:"maxHumidity"`
	MinHumidity    float64 `yaml:"minHumidity"`
	MaxWindSpeed   float64 `yaml:"maxWindSpeed"`
	MinRainfall    float64 `yaml:"minRainfall"`
	MaxRainfall    float64 `yaml:"maxRainfall"`
}

// ThresholdCatalog maps crop type to its tolerance profile.
type ThresholdCatalog map[string]ThresholdProfile

// Profile looks up a crop's thresholds.
func (c ThresholdCatalog) Profile(crop string) (ThresholdProfile, bool) {
	p, ok := c[crop]
	return p, ok
}

// DefaultCatalog returns the built-in crop tolerance table.
func DefaultCatalog() ThresholdCatalog {
	return ThresholdCatalog{
		"Wheat": {
			MaxTemperature: 35, MinTemperature: -5,
			MaxHumidity: 80, MinHumidity: 40,
			MaxWindSpeed: 20,
			MinRainfall:  10, MaxRainfall: 50,
		},
		"Maiz": {
			MaxTemperature: 35, MinTemperature: -5,
			MaxHumidity: 80, MinHumidity: 40,
			MaxWindSpeed: 20,
			MinRainfall:  10, MaxRainfall: 50,
		},
		"Paddy": {
			MaxTemperature: 30, MinTemperature: 10,
			MaxHumidity: 90, MinHumidity: 50,
			MaxWindSpeed: 15,
			MinRainfall:  5, MaxRainfall: 100,
		},
		"Barley": {
			MaxTemperature: 32, MinTemperature: 15,
			MaxHumidity: 85, MinHumidity: 45,
			MaxWindSpeed: 25,
			MinRainfall:  20, MaxRainfall: 70,
		},
	}
}

// LoadCatalog returns the default catalog overlaid with profiles from a YAML
// file. An empty path returns the defaults unchanged. Entries in the file
// replace same-named defaults; new crop types are added.
func LoadCatalog(path string) (ThresholdCatalog, error) {
	catalog := DefaultCatalog()
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read threshold catalog: %w", err)
	}

	var overrides ThresholdCatalog
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse threshold catalog %s: %w", path, err)
	}

	for crop, profile := range overrides {
		catalog[crop] = profile
	}
	return catalog, nil
}
