package location

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-news-mood/internal/logger"
	"github.com/i474232898/weather-news-mood/internal/weather"
)

const UnknownLocation = "Unknown Location"

// DefaultGeocodeTimeout bounds a reverse lookup. The geocoder library's
// HTTP client has no deadline of its own.
const DefaultGeocodeTimeout = 5 * time.Second

// geocoder keeps its key in a package variable.
var geocoderMu sync.Mutex

type reverseFunc func(weather.Coords) ([]geocoder.Address, error)

// Geocoder renders coordinates as a "City, Region" label.
type Geocoder struct {
	apiKey  string
	reverse reverseFunc
	timeout time.Duration
	log     logger.Logger
}

func NewGeocoder(apiKey string, log logger.Logger) *Geocoder {
	g := &Geocoder{apiKey: apiKey, timeout: DefaultGeocodeTimeout, log: logger.Ensure(log)}
	g.reverse = g.googleReverse
	return g
}

func (g *Geocoder) googleReverse(c weather.Coords) ([]geocoder.Address, error) {
	geocoderMu.Lock()
	defer geocoderMu.Unlock()

	geocoder.ApiKey = g.apiKey
	return geocoder.GeocodingReverse(geocoder.Location{Latitude: c.Latitude, Longitude: c.Longitude})
}

// Label returns a display name for c, or UnknownLocation when the lookup
// fails or does not finish before ctx or the geocode timeout.
func (g *Geocoder) Label(ctx context.Context, c weather.Coords) string {
	if g == nil || strings.TrimSpace(g.apiKey) == "" {
		return UnknownLocation
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		addresses []geocoder.Address
		err       error
	}
	ch := make(chan result, 1)
	go func() {
		a, err := g.reverse(c)
		ch <- result{a, err}
	}()

	var r result
	select {
	case r = <-ch:
	case <-ctx.Done():
		r.err = ctx.Err()
	}
	if r.err != nil {
		g.log.WarnObj("reverse geocoding failed", "geocode_error", map[string]any{
			"location": c.Key(),
			"error":    r.err.Error(),
		})
		return UnknownLocation
	}
	if len(r.addresses) == 0 {
		return UnknownLocation
	}
	return formatAddress(r.addresses[0])
}

func formatAddress(a geocoder.Address) string {
	place := firstNonEmpty(a.City, a.District, a.County)
	region := firstNonEmpty(a.State, a.Country)
	switch {
	case place != "" && region != "":
		return place + ", " + region
	case place != "":
		return place
	case region != "":
		return region
	default:
		return UnknownLocation
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
