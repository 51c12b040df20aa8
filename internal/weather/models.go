package weather

import (
	"fmt"
	"time"
)

// Provider names accepted in preferences.
const (
	ProviderOpenWeatherMap = "openweathermap"
	ProviderWeatherAPI     = "weatherapi"
)

// Coords is a latitude/longitude pair.
type Coords struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key returns a canonical string key for indexing this location in stores.
// Coordinates are rounded to two decimals (~1km) so jittery fixes share history.
func (c Coords) Key() string {
	return fmt.Sprintf("%.2f:%.2f", c.Latitude, c.Longitude)
}

// Location identifies the place a snapshot was taken for.
type Location struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Condition is one entry of a provider weather list.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Wind speed is in m/s, direction in degrees.
type Wind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

// Current is the present-moment reading. Temperatures are Celsius.
type Current struct {
	Temp      float64     `json:"temp"`
	FeelsLike float64     `json:"feels_like"`
	TempMin   float64     `json:"temp_min"`
	TempMax   float64     `json:"temp_max"`
	Pressure  float64     `json:"pressure"`
	Humidity  float64     `json:"humidity"`
	Weather   []Condition `json:"weather"`
	Wind      Wind        `json:"wind"`
}

// DayTemps holds a day's temperature profile in Celsius.
type DayTemps struct {
	Day   float64 `json:"day"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}

// FeelsLike mirrors DayTemps without extrema.
type FeelsLike struct {
	Day   float64 `json:"day"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}

// ForecastDay is one day's aggregate.
type ForecastDay struct {
	Dt        int64       `json:"dt"`
	Temp      DayTemps    `json:"temp"`
	FeelsLike FeelsLike   `json:"feels_like"`
	Pressure  float64     `json:"pressure"`
	Humidity  float64     `json:"humidity"`
	Weather   []Condition `json:"weather"`
	Speed     float64     `json:"speed"`
	Deg       float64     `json:"deg"`
	Gust      float64     `json:"gust"`
	Clouds    float64     `json:"clouds"`
	Pop       float64     `json:"pop"` // probability of precipitation, 0-1
}

// Forecast is ordered by Dt ascending, as delivered by the provider.
type Forecast []ForecastDay

// Take returns at most n leading days.
func (f Forecast) Take(n int) Forecast {
	if n < 0 {
		n = 0
	}
	if len(f) <= n {
		return f
	}
	return f[:n]
}

// WeatherData is the canonical snapshot every provider is normalized into.
type WeatherData struct {
	Location Location `json:"location"`
	Current  Current  `json:"current"`
	Forecast Forecast `json:"forecast"`
}

// Snapshot is a WeatherData recorded at a point in time.
type Snapshot struct {
	Coords    Coords      `json:"coords"`
	Provider  string      `json:"provider"`
	Timestamp time.Time   `json:"timestamp"` // always UTC
	Data      WeatherData `json:"data"`
}
