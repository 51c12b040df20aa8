package config

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/weather-news-mood/internal/preferences"
	"github.com/i474232898/weather-news-mood/internal/weather"
)

// Location sources.
const (
	LocationStatic = "static"
	LocationIP     = "ip"
)

type AppConfig struct {
	Port        string
	HTTPTimeout time.Duration

	LogLevel  string
	LogFormat string

	// API keys seed the default preferences. Stored preferences win.
	APIKeys preferences.APIKeys

	WeatherProvider  string
	ForecastTimezone *time.Location

	NewsCountry  string
	NewsPageSize int
	NewsEnrich   bool

	// Restricted marks a runtime without outbound network permission.
	Restricted bool

	LocationSource  string
	LocationCoords  *weather.Coords
	LocationTimeout time.Duration
	GeocoderAPIKey  string

	Preferences preferences.OpenOptions

	// RefreshInterval controls how often the home feed is reloaded.
	RefreshInterval time.Duration

	// In-memory weather history retention.
	HistoryMax    int           // max snapshots per location (0 = unlimited)
	HistoryMaxAge time.Duration // max age of snapshots (0 = unlimited)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("WEATHER_PROVIDER", weather.ProviderWeatherAPI)
	v.SetDefault("NEWS_COUNTRY", "us")
	v.SetDefault("NEWS_PAGE_SIZE", 50)
	v.SetDefault("NEWS_ENRICH", false)
	v.SetDefault("RESTRICTED_NETWORK", false)
	v.SetDefault("LOCATION_SOURCE", LocationStatic)
	v.SetDefault("LOCATION_TIMEOUT", "10s")
	v.SetDefault("PREFERENCES_BACKEND", preferences.BackendBolt)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REFRESH_INTERVAL", "15m")
	v.SetDefault("HISTORY_MAX", 96) // roughly 24h at 15-minute intervals
	v.SetDefault("HISTORY_MAX_AGE", "24h")
	v.SetDefault("FORECAST_TIMEZONE", "Local")

	// Keys without defaults still need binding so AutomaticEnv sees them
	// on Get and Unmarshal.
	for _, key := range []string{
		"CONFIG_FILE", "OPENWEATHER_API_KEY", "WEATHERAPI_API_KEY", "NEWSAPI_API_KEY",
		"LOCATION_LAT", "LOCATION_LON", "GEOCODER_API_KEY", "PREFERENCES_PATH", "REDIS_PASSWORD",
	} {
		_ = v.BindEnv(key)
	}
}

// Load reads configuration from .env, the environment and an optional
// YAML file named by CONFIG_FILE. Environment variables take precedence.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		Port:      v.GetString("PORT"),
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
		APIKeys: preferences.APIKeys{
			OpenWeatherMap: strings.TrimSpace(v.GetString("OPENWEATHER_API_KEY")),
			WeatherAPI:     strings.TrimSpace(v.GetString("WEATHERAPI_API_KEY")),
			NewsAPI:        strings.TrimSpace(v.GetString("NEWSAPI_API_KEY")),
		},
		WeatherProvider: strings.ToLower(v.GetString("WEATHER_PROVIDER")),
		NewsCountry:     strings.ToLower(v.GetString("NEWS_COUNTRY")),
		NewsPageSize:    v.GetInt("NEWS_PAGE_SIZE"),
		NewsEnrich:      v.GetBool("NEWS_ENRICH"),
		Restricted:      v.GetBool("RESTRICTED_NETWORK"),
		LocationSource:  strings.ToLower(v.GetString("LOCATION_SOURCE")),
		GeocoderAPIKey:  v.GetString("GEOCODER_API_KEY"),
		Preferences: preferences.OpenOptions{
			Backend:       strings.ToLower(v.GetString("PREFERENCES_BACKEND")),
			Path:          v.GetString("PREFERENCES_PATH"),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
		},
		HistoryMax: v.GetInt("HISTORY_MAX"),
	}

	var err error
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"HTTP_TIMEOUT", &cfg.HTTPTimeout},
		{"LOCATION_TIMEOUT", &cfg.LocationTimeout},
		{"REFRESH_INTERVAL", &cfg.RefreshInterval},
		{"HISTORY_MAX_AGE", &cfg.HistoryMaxAge},
	}
	for _, d := range durations {
		if *d.dst, err = time.ParseDuration(v.GetString(d.key)); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
	}

	switch cfg.WeatherProvider {
	case weather.ProviderOpenWeatherMap, weather.ProviderWeatherAPI:
	default:
		return nil, fmt.Errorf("invalid WEATHER_PROVIDER %q", cfg.WeatherProvider)
	}
	switch cfg.LocationSource {
	case LocationStatic, LocationIP:
	default:
		return nil, fmt.Errorf("invalid LOCATION_SOURCE %q", cfg.LocationSource)
	}
	switch cfg.Preferences.Backend {
	case preferences.BackendBolt, preferences.BackendFile, preferences.BackendRedis:
	default:
		return nil, fmt.Errorf("invalid PREFERENCES_BACKEND %q", cfg.Preferences.Backend)
	}
	if cfg.Preferences.Path == "" {
		cfg.Preferences.Path = defaultPreferencesPath(cfg.Preferences.Backend)
	}

	if cfg.ForecastTimezone, err = time.LoadLocation(v.GetString("FORECAST_TIMEZONE")); err != nil {
		return nil, fmt.Errorf("invalid FORECAST_TIMEZONE: %w", err)
	}

	coords, err := loadLocationCoords(v.GetString("LOCATION_LAT"), v.GetString("LOCATION_LON"))
	if err != nil {
		return nil, err
	}
	cfg.LocationCoords = coords

	return cfg, nil
}

func defaultPreferencesPath(backend string) string {
	if backend == preferences.BackendFile {
		return "data/preferences.yaml"
	}
	return "data/preferences.db"
}

// loadLocationCoords parses the optional fixed location. Both values or
// neither must be set.
func loadLocationCoords(latStr, lonStr string) (*weather.Coords, error) {
	latStr, lonStr = strings.TrimSpace(latStr), strings.TrimSpace(lonStr)
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, errors.New("LOCATION_LAT and LOCATION_LON must be set together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid LOCATION_LAT %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid LOCATION_LON %q", lonStr)
	}
	return &weather.Coords{Latitude: lat, Longitude: lon}, nil
}
