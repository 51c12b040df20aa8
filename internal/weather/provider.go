package weather

import (
	"context"
	"time"
)

// Provider abstracts a weather data source (OpenWeatherMap, WeatherAPI).
// Implementations return *upstream.Error values on failure.
type Provider interface {
	Name() string
	CurrentWeather(ctx context.Context, coords Coords) (WeatherData, error)
}

// DemoSource is implemented by providers that may answer with demo data
// instead of calling upstream.
type DemoSource interface {
	ServesDemo() bool
}

// History is the contract the snapshot store must satisfy.
type History interface {
	SaveSnapshot(snapshot Snapshot)
	GetLatest(coords Coords) (Snapshot, error)
	GetRange(coords Coords, from, to time.Time) ([]Snapshot, error)
}
