package providers

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/weather-news-mood/internal/httpclient"
	"github.com/i474232898/weather-news-mood/internal/logger"
	"github.com/i474232898/weather-news-mood/internal/upstream"
	"github.com/i474232898/weather-news-mood/internal/weather"
)

// Options bundles what every provider needs besides its API key.
type Options struct {
	Client httpclient.Client
	// BaseURL overrides the provider's public endpoint (tests, proxies).
	BaseURL string
	// Restricted marks a runtime without outbound access; keyless requests
	// there are answered with demo data instead of a network error.
	Restricted bool
	// Timezone decides which calendar date a forecast step belongs to.
	Timezone *time.Location
	Backoff  upstream.BackoffConfig
	Log      logger.Logger
	Now      func() time.Time
}

func (o Options) withDefaults(baseURL string) Options {
	if o.Client == nil {
		o.Client = httpclient.NewRestyClient(10 * time.Second)
	}
	if o.BaseURL == "" {
		o.BaseURL = baseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Timezone == nil {
		o.Timezone = time.Local
	}
	if o.Backoff.InitialInterval <= 0 {
		o.Backoff = upstream.DefaultBackoff
	}
	o.Log = logger.Ensure(o.Log)
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// useDemo reports whether requests are answered with demo data instead of
// calling upstream: only in a restricted runtime without a key.
func useDemo(opts Options, apiKey string) bool {
	return opts.Restricted && strings.TrimSpace(apiKey) == ""
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Registry caches providers per (name, key) so circuit breakers survive
// between refreshes.
type Registry struct {
	opts Options

	mu        sync.Mutex
	providers map[string]weather.Provider
}

var (
	_ weather.ProviderSource = (*Registry)(nil)
	_ weather.DemoSource     = (*OpenWeatherProvider)(nil)
	_ weather.DemoSource     = (*WeatherAPIProvider)(nil)
)

// NewRegistry returns a registry building providers with opts.
// opts.BaseURL is ignored; each provider uses its public endpoint.
func NewRegistry(opts Options) *Registry {
	opts.BaseURL = ""
	return &Registry{
		opts:      opts,
		providers: make(map[string]weather.Provider),
	}
}

// For returns the provider registered under name for apiKey.
func (r *Registry) For(name, apiKey string) (weather.Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	key := name + "\x00" + apiKey

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.providers[key]; ok {
		return p, nil
	}

	var p weather.Provider
	switch name {
	case weather.ProviderOpenWeatherMap:
		p = NewOpenWeatherProvider(apiKey, r.opts)
	case weather.ProviderWeatherAPI:
		p = NewWeatherAPIProvider(apiKey, r.opts)
	default:
		return nil, fmt.Errorf("unknown weather provider %q", name)
	}
	r.providers[key] = p
	return p, nil
}
