// Package domain models per-location weather readings and the agronomic
// alerts derived from them.
//
// # Data Source
//
// Readings come from the OpenWeatherMap current-weather endpoint, queried by
// city name with metric units. Field mapping follows OpenWeatherMap's JSON
// layout: main.temp (°C), main.humidity (%), wind.speed, rain["1h"] (mm,
// absent means no rain and maps to 0), main.pressure (hPa), plus optional
// enrichment fields (visibility, clouds.all, sys.sunrise/sunset,
// main.feels_like, wind.deg). A reading without a location name or an
// observation timestamp is invalid and is dropped before it can reach the
// window store.
//
// # Windows
//
// Each location keeps a rolling window of its last [WindowSize] readings,
// ordered oldest to newest. The window exists for trend history; alert
// evaluation looks only at the newest entry.
//
// # Alert Rules
//
// For every active crop type the latest reading is compared against that
// crop's ThresholdProfile:
//
//	temperature > maxTemperature  → heatStress
//	temperature < minTemperature  → frost
//	humidity    > maxHumidity     → highHumidity
//	humidity    < minHumidity     → lowHumidity
//	windSpeed   > maxWindSpeed    → windDamage
//	rainfall    < minRainfall     → drought + irrigation recommendation
//	rainfall    > maxRainfall     → flooding + excessMoisture recommendation
//
// Each category maps crop type to a human-readable message. Crops never
// overwrite each other's lines; a crop with no violation has no entry
// (irrigation and excessMoisture carry an empty entry per active crop so
// consumers can render a stable recommendation table).
package domain
