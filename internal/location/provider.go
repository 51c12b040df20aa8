package location

import (
	"context"
	"time"

	"github.com/i474232898/weather-news-mood/internal/logger"
	"github.com/i474232898/weather-news-mood/internal/weather"
)

const DefaultTimeout = 10 * time.Second

// Provider turns a Locator into a source that always answers.
type Provider struct {
	locator  Locator
	fallback weather.Coords
	timeout  time.Duration
	log      logger.Logger
}

func NewProvider(locator Locator, timeout time.Duration, log logger.Logger) *Provider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Provider{
		locator:  locator,
		fallback: weather.DemoCoords,
		timeout:  timeout,
		log:      logger.Ensure(log),
	}
}

// GetCurrentLocation returns the located position, or the fallback
// coordinates when the locator fails or exceeds the timeout.
func (p *Provider) GetCurrentLocation(ctx context.Context) weather.Coords {
	if p.locator == nil {
		return p.fallback
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type result struct {
		coords weather.Coords
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := p.locator.Locate(ctx)
		ch <- result{c, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			p.log.WarnObj("location unavailable, using fallback", "location_fallback", map[string]any{
				"error": r.err.Error(),
			})
			return p.fallback
		}
		return r.coords
	case <-ctx.Done():
		p.log.WarnObj("location timed out, using fallback", "location_fallback", map[string]any{
			"timeout": p.timeout.String(),
		})
		return p.fallback
	}
}
