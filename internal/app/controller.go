package app

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-news-mood/internal/location"
	"github.com/i474232898/weather-news-mood/internal/logger"
	"github.com/i474232898/weather-news-mood/internal/news"
	"github.com/i474232898/weather-news-mood/internal/preferences"
	"github.com/i474232898/weather-news-mood/internal/upstream"
	"github.com/i474232898/weather-news-mood/internal/weather"
)

// WeatherSource loads and records weather for the selected provider.
type WeatherSource interface {
	FetchAndStore(ctx context.Context, providerName, apiKey string, coords weather.Coords) (weather.WeatherData, error)
}

type NewsSource interface {
	GetNewsByCategories(ctx context.Context, categories []news.Category) (news.Response, error)
}

// NewsFactory returns a news source bound to apiKey.
type NewsFactory func(apiKey string) NewsSource

type Locator interface {
	GetCurrentLocation(ctx context.Context) weather.Coords
}

type Labeler interface {
	Label(ctx context.Context, coords weather.Coords) string
}

type Deps struct {
	Store   *Store
	Weather WeatherSource
	News    NewsFactory
	Locator Locator
	Labeler Labeler
	Log     logger.Logger
}

// Controller runs the side effects around the pure reducer: loading
// preferences, fetching data and dispatching the results.
type Controller struct {
	store   *Store
	weather WeatherSource
	news    NewsFactory
	locator Locator
	labeler Labeler
	log     logger.Logger
}

func NewController(d Deps) *Controller {
	return &Controller{
		store:   d.Store,
		weather: d.Weather,
		news:    d.News,
		locator: d.Locator,
		labeler: d.Labeler,
		log:     logger.Ensure(d.Log),
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State { return c.store.Snapshot() }

// Bootstrap loads stored preferences over defaults.
func (c *Controller) Bootstrap(ctx context.Context, prefsStore preferences.Store, defaults preferences.UserPreferences) (State, error) {
	prefs := preferences.LoadOrDefault(ctx, prefsStore, defaults, c.log)
	return c.store.Dispatch(ctx, PreferencesLoaded{Preferences: prefs})
}

// LoadData fetches weather and news concurrently and returns the state
// after both finished. Failures end up in State.Errors.
func (c *Controller) LoadData(ctx context.Context) (State, error) {
	prefs := c.store.Snapshot().Preferences

	var g errgroup.Group
	g.Go(func() error { return c.loadWeather(ctx, prefs) })
	g.Go(func() error { return c.loadNews(ctx, prefs) })
	if err := g.Wait(); err != nil {
		return c.store.Snapshot(), err
	}
	return c.store.Snapshot(), nil
}

// Refresh clears both error messages and reloads everything.
func (c *Controller) Refresh(ctx context.Context) (State, error) {
	if _, err := c.store.Dispatch(ctx, ErrorsCleared{}); err != nil {
		return c.store.Snapshot(), err
	}
	return c.LoadData(ctx)
}

func (c *Controller) loadWeather(ctx context.Context, prefs preferences.UserPreferences) error {
	if _, err := c.store.Dispatch(ctx, WeatherLoading{}); err != nil {
		return err
	}

	coords := weather.DemoCoords
	if c.locator != nil {
		coords = c.locator.GetCurrentLocation(ctx)
	}

	data, err := c.weather.FetchAndStore(ctx, prefs.WeatherProvider, prefs.WeatherAPIKey(), coords)
	if err != nil {
		c.log.WarnObj("weather load failed", "weather_load_error", map[string]any{
			"provider": prefs.WeatherProvider,
			"error":    err.Error(),
		})
		_, dispatchErr := c.store.Dispatch(ctx, WeatherFailed{Message: upstream.UserMessage(err)})
		return dispatchErr
	}

	label := data.Location.Name
	if c.labeler != nil {
		if l := c.labeler.Label(ctx, coords); l != "" && l != location.UnknownLocation {
			label = l
		}
	}
	_, err = c.store.Dispatch(ctx, WeatherLoaded{Data: data, Coords: coords, Label: label})
	return err
}

func (c *Controller) loadNews(ctx context.Context, prefs preferences.UserPreferences) error {
	if _, err := c.store.Dispatch(ctx, NewsLoading{}); err != nil {
		return err
	}

	resp, err := c.news(prefs.APIKeys.NewsAPI).GetNewsByCategories(ctx, prefs.NewsCategories)
	if err != nil {
		c.log.WarnObj("news load failed", "news_load_error", map[string]any{
			"categories": prefs.NewsCategories,
			"error":      err.Error(),
		})
		_, dispatchErr := c.store.Dispatch(ctx, NewsFailed{Message: upstream.UserMessage(err)})
		return dispatchErr
	}
	_, err = c.store.Dispatch(ctx, NewsLoaded{Articles: resp.Articles})
	return err
}

// UpdatePreferences validates and applies patch. Changes to keys, provider
// or categories reload the feed.
func (c *Controller) UpdatePreferences(ctx context.Context, patch preferences.Patch) (State, error) {
	if err := patch.Validate(); err != nil {
		return c.store.Snapshot(), err
	}
	prev := c.store.Snapshot().Preferences
	next, err := c.store.Dispatch(ctx, PreferencesUpdated{Patch: patch})
	if err != nil {
		return next, err
	}
	if needsReload(prev, next.Preferences) {
		return c.LoadData(ctx)
	}
	return next, nil
}

// ToggleCategory flips one news category, keeping at least one selected,
// and reloads the feed. The toggle is resolved by the reducer so
// concurrent toggles compose.
func (c *Controller) ToggleCategory(ctx context.Context, category news.Category) (State, error) {
	s, err := c.store.Dispatch(ctx, CategoryToggled{Category: category})
	if err != nil {
		return s, err
	}
	return c.LoadData(ctx)
}

// ToggleUnit switches between celsius and fahrenheit. Display only.
func (c *Controller) ToggleUnit(ctx context.Context) (State, error) {
	return c.store.Dispatch(ctx, UnitToggled{})
}

func needsReload(prev, next preferences.UserPreferences) bool {
	return prev.APIKeys != next.APIKeys ||
		prev.WeatherProvider != next.WeatherProvider ||
		!slices.Equal(prev.NewsCategories, next.NewsCategories)
}
