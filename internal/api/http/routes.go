package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-news-mood/internal/app"
	"github.com/i474232898/weather-news-mood/internal/news"
	"github.com/i474232898/weather-news-mood/internal/preferences"
	"github.com/i474232898/weather-news-mood/internal/weather"
)

var validate = validator.New()

// Controller is the part of app.Controller the handlers drive.
type Controller interface {
	Snapshot() app.State
	Refresh(ctx context.Context) (app.State, error)
	UpdatePreferences(ctx context.Context, patch preferences.Patch) (app.State, error)
	ToggleCategory(ctx context.Context, category news.Category) (app.State, error)
	ToggleUnit(ctx context.Context) (app.State, error)
}

type WeatherService interface {
	FetchAndStore(ctx context.Context, providerName, apiKey string, coords weather.Coords) (weather.WeatherData, error)
	GetLatest(coords weather.Coords) (weather.Snapshot, error)
	GetRange(coords weather.Coords, from, to time.Time) ([]weather.Snapshot, error)
}

type NewsClient interface {
	GetNewsByCategories(ctx context.Context, categories []news.Category) (news.Response, error)
	Search(ctx context.Context, query string) (news.Response, error)
}

// Deps are the collaborators RegisterRoutes wires into handlers.
type Deps struct {
	Controller Controller
	Weather    WeatherService
	// News returns a client bound to the given NewsAPI key.
	News    func(apiKey string) NewsClient
	Locator app.Locator
	Labeler app.Labeler
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(router fiber.Router, d Deps) {
	v1 := router.Group("/api/v1")

	v1.Get("/feed", func(c *fiber.Ctx) error {
		return c.JSON(newFeedView(d.Controller.Snapshot()))
	})

	v1.Post("/feed/refresh", func(c *fiber.Ctx) error {
		s, err := d.Controller.Refresh(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(newFeedView(s))
	})

	v1.Get("/weather", func(c *fiber.Ctx) error {
		var req weatherQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		prefs := d.Controller.Snapshot().Preferences
		if req.Provider != "" {
			prefs.WeatherProvider = req.Provider
		}
		data, err := d.Weather.FetchAndStore(c.UserContext(), prefs.WeatherProvider, prefs.WeatherAPIKey(), req.Location.toCoords())
		if err != nil {
			return err
		}
		return c.JSON(data)
	})

	v1.Get("/weather/latest", func(c *fiber.Ctx) error {
		loc, err := parseCoordsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(loc); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := d.Weather.GetLatest(loc.toCoords())
		if err != nil {
			return err
		}
		return c.JSON(snapshot)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		coords := req.Location.toCoords()
		snapshots, err := d.Weather.GetRange(coords, req.From, req.To)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"coords":    coords,
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})

	v1.Get("/news", func(c *fiber.Ctx) error {
		prefs := d.Controller.Snapshot().Preferences
		categories, err := parseCategories(c.Query("categories"), prefs.NewsCategories)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		resp, err := d.News(prefs.APIKeys.NewsAPI).GetNewsByCategories(c.UserContext(), categories)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	})

	v1.Get("/news/search", func(c *fiber.Ctx) error {
		req := searchQuery{Q: strings.TrimSpace(c.Query("q"))}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "q is required and must be at most 500 characters")
		}
		prefs := d.Controller.Snapshot().Preferences
		resp, err := d.News(prefs.APIKeys.NewsAPI).Search(c.UserContext(), req.Q)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	})

	v1.Get("/location", func(c *fiber.Ctx) error {
		coords := d.Locator.GetCurrentLocation(c.UserContext())
		return c.JSON(fiber.Map{
			"coords": coords,
			"label":  d.Labeler.Label(c.UserContext(), coords),
		})
	})

	v1.Get("/preferences", func(c *fiber.Ctx) error {
		return c.JSON(d.Controller.Snapshot().Preferences.Masked())
	})

	v1.Patch("/preferences", func(c *fiber.Ctx) error {
		var patch preferences.Patch
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
		s, err := d.Controller.UpdatePreferences(c.UserContext(), patch)
		if err != nil {
			return err
		}
		return c.JSON(s.Preferences.Masked())
	})

	v1.Post("/preferences/unit/toggle", func(c *fiber.Ctx) error {
		s, err := d.Controller.ToggleUnit(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(s.Preferences.Masked())
	})

	v1.Post("/preferences/categories/:category/toggle", func(c *fiber.Ctx) error {
		category := news.Category(strings.ToLower(c.Params("category")))
		if !category.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "unknown news category "+strconv.Quote(string(category)))
		}
		s, err := d.Controller.ToggleCategory(c.UserContext(), category)
		if err != nil {
			return err
		}
		return c.JSON(s.Preferences.Masked())
	})
}

// coordsQuery holds query parameters for identifying a location.
type coordsQuery struct {
	Lat *float64 `validate:"required,gte=-90,lte=90"`
	Lon *float64 `validate:"required,gte=-180,lte=180"`
}

func (q coordsQuery) toCoords() weather.Coords {
	return weather.Coords{Latitude: *q.Lat, Longitude: *q.Lon}
}

func parseCoordsQuery(c *fiber.Ctx) (coordsQuery, error) {
	var q coordsQuery
	for _, p := range []struct {
		name string
		dst  **float64
	}{{"lat", &q.Lat}, {"lon", &q.Lon}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, errors.New("invalid " + p.name + ": must be a number")
		}
		*p.dst = &v
	}
	return q, nil
}

type weatherQuery struct {
	Location coordsQuery
	Provider string `validate:"omitempty,oneof=openweathermap weatherapi"`
}

func (w *weatherQuery) bind(c *fiber.Ctx) error {
	loc, err := parseCoordsQuery(c)
	if err != nil {
		return err
	}
	w.Location = loc
	w.Provider = strings.ToLower(c.Query("provider"))
	return nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location coordsQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := parseCoordsQuery(c)
	if err != nil {
		return err
	}
	h.Location = loc

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

type searchQuery struct {
	Q string `validate:"required,max=500"`
}

// parseCategories reads a comma separated list, falling back to def.
func parseCategories(raw string, def []news.Category) ([]news.Category, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	var out []news.Category
	for _, part := range strings.Split(raw, ",") {
		cat := news.Category(strings.ToLower(strings.TrimSpace(part)))
		if cat == "" {
			continue
		}
		if !cat.Valid() {
			return nil, errors.New("unknown news category " + strconv.Quote(string(cat)))
		}
		out = append(out, cat)
	}
	if len(out) == 0 {
		return def, nil
	}
	return out, nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
