package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-news-mood/internal/api/http"
	"github.com/i474232898/weather-news-mood/internal/app"
	"github.com/i474232898/weather-news-mood/internal/config"
	"github.com/i474232898/weather-news-mood/internal/httpclient"
	"github.com/i474232898/weather-news-mood/internal/location"
	"github.com/i474232898/weather-news-mood/internal/logger"
	"github.com/i474232898/weather-news-mood/internal/news"
	"github.com/i474232898/weather-news-mood/internal/preferences"
	"github.com/i474232898/weather-news-mood/internal/scheduler"
	"github.com/i474232898/weather-news-mood/internal/store"
	"github.com/i474232898/weather-news-mood/internal/weather"
	"github.com/i474232898/weather-news-mood/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLog, err := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = appLog.Sync() }()

	// Shared HTTP client for outbound provider calls.
	httpClient := httpclient.NewRestyClient(cfg.HTTPTimeout)

	// In-memory weather history with configured retention.
	memStore := store.NewMemoryStore(cfg.HistoryMax, cfg.HistoryMaxAge)

	// Providers with resilience (backoff + circuit breaker), one per key.
	registry := providers.NewRegistry(providers.Options{
		Client:     httpClient,
		Restricted: cfg.Restricted,
		Timezone:   cfg.ForecastTimezone,
		Log:        appLog,
	})
	weatherService := weather.NewService(memStore, registry, appLog)

	newsOpts := news.Options{
		Client:     httpClient,
		Country:    cfg.NewsCountry,
		PageSize:   cfg.NewsPageSize,
		Restricted: cfg.Restricted,
		Log:        appLog,
	}
	if cfg.NewsEnrich {
		newsOpts.Enricher = news.NewEnricher(httpClient, appLog)
	}
	newsClients := news.NewRegistry(newsOpts)

	var locator location.Locator = location.StaticLocator{Coords: cfg.LocationCoords}
	if cfg.LocationSource == config.LocationIP {
		locator = location.NewIPLocator(httpClient, "")
	}
	positions := location.NewProvider(locator, cfg.LocationTimeout, appLog)
	geocoder := location.NewGeocoder(cfg.GeocoderAPIKey, appLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prefsStore, err := preferences.Open(ctx, cfg.Preferences)
	if err != nil {
		log.Fatalf("failed to open preferences store: %v", err)
	}
	defer func() { _ = prefsStore.Close() }()

	defaults := preferences.Defaults(cfg.APIKeys)
	defaults.WeatherProvider = cfg.WeatherProvider

	state := app.NewStore(app.Initial(defaults))
	defer state.Close()
	state.Subscribe(app.PersistPreferences(prefsStore, appLog))

	controller := app.NewController(app.Deps{
		Store:   state,
		Weather: weatherService,
		News:    func(apiKey string) app.NewsSource { return newsClients.For(apiKey) },
		Locator: positions,
		Labeler: geocoder,
		Log:     appLog,
	})
	if _, err := controller.Bootstrap(ctx, prefsStore, defaults); err != nil {
		log.Fatalf("failed to load preferences: %v", err)
	}

	// Scheduler runs the first load right away, then every interval.
	sched := scheduler.New(controller, cfg.RefreshInterval, appLog)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	server := fiber.New(fiber.Config{
		AppName:               "weather-news-mood",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler(appLog),
	})

	// Global middleware
	server.Use(fiberlogger.New())
	server.Use(recover.New())

	// Basic health endpoint
	server.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-news-mood",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(server, httpapi.Deps{
		Controller: controller,
		Weather:    weatherService,
		News:       func(apiKey string) httpapi.NewsClient { return newsClients.For(apiKey) },
		Locator:    positions,
		Labeler:    geocoder,
	})

	go func() {
		appLog.InfoObj("http server listening", "http_listen", map[string]any{"port": cfg.Port})
		if err := server.Listen(":" + cfg.Port); err != nil {
			appLog.ErrorObj("fiber server stopped", "http_stopped", map[string]any{"error": err.Error()})
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		appLog.ErrorObj("error during shutdown", "http_shutdown", map[string]any{"error": err.Error()})
	}
}
