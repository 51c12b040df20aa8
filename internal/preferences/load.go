package preferences

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/weather-news-mood/internal/logger"
)

// Backend names accepted by Open.
const (
	BackendBolt  = "bolt"
	BackendFile  = "file"
	BackendRedis = "redis"
)

type OpenOptions struct {
	Backend       string
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open returns the Store selected by opts.Backend.
func Open(ctx context.Context, opts OpenOptions) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendBolt:
		return OpenBolt(opts.Path)
	case BackendFile:
		return NewFileStore(opts.Path), nil
	case BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect redis %s: %w", opts.RedisAddr, err)
		}
		return NewRedisStore(rdb), nil
	default:
		return nil, fmt.Errorf("unknown preferences backend %q", opts.Backend)
	}
}

// LoadOrDefault overlays stored preferences on defaults. Storage and
// validation failures are logged and yield defaults.
func LoadOrDefault(ctx context.Context, store Store, defaults UserPreferences, log logger.Logger) UserPreferences {
	log = logger.Ensure(log)
	if store == nil {
		return defaults
	}

	stored, ok, err := store.Load(ctx)
	if err != nil {
		log.ErrorObj("loading preferences failed", "preferences_load_error", map[string]any{
			"error": err.Error(),
		})
		return defaults
	}
	if !ok {
		return defaults
	}

	merged := overlay(defaults, stored)
	if err := merged.Validate(); err != nil {
		log.WarnObj("stored preferences invalid, using defaults", "preferences_invalid", map[string]any{
			"error": err.Error(),
		})
		return defaults
	}
	return merged
}

// overlay copies every non-empty field of stored onto base.
func overlay(base, stored UserPreferences) UserPreferences {
	out := base.Clone()
	if stored.TemperatureUnit != "" {
		out.TemperatureUnit = stored.TemperatureUnit
	}
	if len(stored.NewsCategories) > 0 {
		out.NewsCategories = stored.Clone().NewsCategories
	}
	if stored.WeatherProvider != "" {
		out.WeatherProvider = stored.WeatherProvider
	}
	if stored.APIKeys.OpenWeatherMap != "" {
		out.APIKeys.OpenWeatherMap = stored.APIKeys.OpenWeatherMap
	}
	if stored.APIKeys.WeatherAPI != "" {
		out.APIKeys.WeatherAPI = stored.APIKeys.WeatherAPI
	}
	if stored.APIKeys.NewsAPI != "" {
		out.APIKeys.NewsAPI = stored.APIKeys.NewsAPI
	}
	return out
}
