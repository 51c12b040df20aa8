package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/i474232898/weather-news-mood/internal/logger"
)

// ProviderSource resolves a configured provider by name and API key.
type ProviderSource interface {
	For(name, apiKey string) (Provider, error)
}

// Service fetches normalized weather through the selected provider and
// records every successful upstream reading in the history store.
type Service struct {
	store     History
	providers ProviderSource
	log       logger.Logger
	now       func() time.Time
}

// NewService creates a new Service.
func NewService(store History, providers ProviderSource, log logger.Logger) *Service {
	return &Service{
		store:     store,
		providers: providers,
		log:       logger.Ensure(log),
		now:       time.Now,
	}
}

// FetchAndStore loads the current weather for coords from the named provider
// and stores a snapshot. Demo data is returned but never stored. Upstream
// errors are returned unchanged.
func (s *Service) FetchAndStore(ctx context.Context, providerName, apiKey string, coords Coords) (WeatherData, error) {
	p, err := s.providers.For(providerName, apiKey)
	if err != nil {
		return WeatherData{}, fmt.Errorf("resolve weather provider: %w", err)
	}

	s.log.DebugObj("fetching weather", "weather_fetch", map[string]any{
		"provider": p.Name(),
		"location": coords.Key(),
	})

	data, err := p.CurrentWeather(ctx, coords)
	if err != nil {
		s.log.WarnObj("weather fetch failed", "weather_fetch_error", map[string]any{
			"provider": p.Name(),
			"location": coords.Key(),
			"error":    err.Error(),
		})
		return WeatherData{}, err
	}

	if d, ok := p.(DemoSource); ok && d.ServesDemo() {
		s.log.DebugObj("demo weather not recorded", "weather_demo", map[string]any{
			"provider": p.Name(),
		})
		return data, nil
	}

	if s.store != nil {
		s.store.SaveSnapshot(Snapshot{
			Coords:    coords,
			Provider:  p.Name(),
			Timestamp: s.now().UTC(),
			Data:      data,
		})
	}
	return data, nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(coords Coords) (Snapshot, error) {
	return s.store.GetLatest(coords)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(coords Coords, from, to time.Time) ([]Snapshot, error) {
	return s.store.GetRange(coords, from, to)
}
