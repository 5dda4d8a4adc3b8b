package domain

import "fmt"

// AlertSet is the per-category, per-crop alert output for one location's
// latest reading. Every category maps crop type to a human-readable message.
// Violation categories carry entries only for violating crops; irrigation
// and excessMoisture carry one entry per active crop (empty when no
// recommendation applies).
type AlertSet struct {
	HeatStress     map[string]string `json:"heatStress"`
	Frost          map[string]string `json:"frost"`
	HighHumidity   map[string]string `json:"highHumidity"`
	LowHumidity    map[string]string `json:"lowHumidity"`
	WindDamage     map[string]string `json:"windDamage"`
	Drought        map[string]string `json:"drought"`
	Flooding       map[string]string `json:"flooding"`
	Irrigation     map[string]string `json:"irrigation"`
	ExcessMoisture map[string]string `json:"excessMoisture"`
}

// NewAlertSet returns an AlertSet with all category maps initialized, so an
// empty result still serializes with every category present.
func NewAlertSet() AlertSet {
	return AlertSet{
		HeatStress:     map[string]string{},
		Frost:          map[string]string{},
		HighHumidity:   map[string]string{},
		LowHumidity:    map[string]string{},
		WindDamage:     map[string]string{},
		Drought:        map[string]string{},
		Flooding:       map[string]string{},
		Irrigation:     map[string]string{},
		ExcessMoisture: map[string]string{},
	}
}

// Empty reports whether no category holds a non-empty message.
func (a AlertSet) Empty() bool {
	for _, category := range []map[string]string{
		a.HeatStress, a.Frost, a.HighHumidity, a.LowHumidity,
		a.WindDamage, a.Drought, a.Flooding, a.Irrigation, a.ExcessMoisture,
	} {
		for _, msg := range category {
			if msg != "" {
				return false
			}
		}
	}
	return true
}

// EvaluateAlerts compares the latest reading against each active crop's
// thresholds and returns the resulting alert set. Pure: no I/O, and the same
// inputs always produce a structurally identical result. Crops without a
// catalog profile are skipped. Only the latest reading matters; older window
// entries are trend history, not alert input.
func EvaluateAlerts(latest Reading, cropTypes []string, catalog ThresholdCatalog) AlertSet {
	alerts := NewAlertSet()

	for _, crop := range cropTypes {
		p, ok := catalog.Profile(crop)
		if !ok {
			continue
		}

		if latest.Temperature > p.MaxTemperature {
			alerts.HeatStress[crop] = fmt.Sprintf(
				"%s - Heat stress warning: Temperature exceeds maximum threshold of %g°C.", crop, p.MaxTemperature)
		}
		if latest.Temperature < p.MinTemperature {
			alerts.Frost[crop] = fmt.Sprintf(
				"%s - Frost warning: Temperature drops below minimum threshold of %g°C.", crop, p.MinTemperature)
		}
		if latest.Humidity > p.MaxHumidity {
			alerts.HighHumidity[crop] = fmt.Sprintf(
				"%s - High humidity warning: Humidity exceeds maximum threshold of %g%%.", crop, p.MaxHumidity)
		}
		if latest.Humidity < p.MinHumidity {
			alerts.LowHumidity[crop] = fmt.Sprintf(
				"%s - Low humidity warning: Humidity drops below minimum threshold of %g%%.", crop, p.MinHumidity)
		}
		if latest.WindSpeed > p.MaxWindSpeed {
			alerts.WindDamage[crop] = fmt.Sprintf(
				"%s - Wind damage risk: Wind speed exceeds maximum threshold of %g km/h.", crop, p.MaxWindSpeed)
		}

		// Rainfall recommendations always carry a per-crop entry, empty when
		// rainfall is inside the tolerated band.
		irrigation, excessMoisture := "", ""
		if latest.Rainfall < p.MinRainfall {
			alerts.Drought[crop] = fmt.Sprintf(
				"%s - Drought warning: Insufficient rainfall below minimum threshold of %g mm.", crop, p.MinRainfall)
			irrigation = fmt.Sprintf("%s - Irrigation needed to prevent crop stress.", crop)
		}
		if latest.Rainfall > p.MaxRainfall {
			alerts.Flooding[crop] = fmt.Sprintf(
				"%s - Flooding risk: Rainfall exceeds maximum threshold of %g mm.", crop, p.MaxRainfall)
			excessMoisture = fmt.Sprintf("%s - Excess moisture alert: Risk of waterlogging and root damage.", crop)
		}
		alerts.Irrigation[crop] = irrigation
		alerts.ExcessMoisture[crop] = excessMoisture
	}

	return alerts
}
