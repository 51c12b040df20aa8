package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/weather-news-mood/internal/upstream"
	"github.com/i474232898/weather-news-mood/internal/weather"
)

const (
	openWeatherBaseURL = "https://api.openweathermap.org/data/2.5"
	openWeatherDays    = 5
)

var openWeatherMessages = map[int]string{
	http.StatusUnauthorized:    "invalid OpenWeatherMap API key, new keys can take up to 2 hours to activate",
	http.StatusTooManyRequests: "OpenWeatherMap API rate limit exceeded, try again later",
}

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap. It needs
// two calls: current conditions and the 3-hourly forecast list.
type OpenWeatherProvider struct {
	name   string
	apiKey string
	opts   Options
	caller *upstream.Caller
}

var _ weather.Provider = (*OpenWeatherProvider)(nil)

func NewOpenWeatherProvider(apiKey string, opts Options) *OpenWeatherProvider {
	opts = opts.withDefaults(openWeatherBaseURL)
	return &OpenWeatherProvider{
		name:   weather.ProviderOpenWeatherMap,
		apiKey: apiKey,
		opts:   opts,
		caller: upstream.NewCaller(weather.ProviderOpenWeatherMap, opts.Client, opts.Backoff),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) CurrentWeather(ctx context.Context, coords weather.Coords) (weather.WeatherData, error) {
	if p.ServesDemo() {
		p.opts.Log.InfoObj("using demo weather data, api key not set", "weather_demo", map[string]any{
			"provider": p.name,
		})
		return weather.Demo(p.opts.Now()), nil
	}

	var current owmCurrent
	if err := p.fetch(ctx, "weather", coords, &current); err != nil {
		return weather.WeatherData{}, err
	}

	var forecast owmForecast
	if err := p.fetch(ctx, "forecast", coords, &forecast); err != nil {
		return weather.WeatherData{}, err
	}

	return normalizeOpenWeather(current, forecast, p.opts.Timezone), nil
}

// ServesDemo reports whether CurrentWeather answers with demo data.
func (p *OpenWeatherProvider) ServesDemo() bool {
	return useDemo(p.opts, p.apiKey)
}

func (p *OpenWeatherProvider) fetch(ctx context.Context, endpoint string, coords weather.Coords, out any) error {
	values := url.Values{}
	values.Set("lat", formatCoord(coords.Latitude))
	values.Set("lon", formatCoord(coords.Longitude))
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	u := fmt.Sprintf("%s/%s?%s", p.opts.BaseURL, endpoint, values.Encode())
	body, err := p.caller.Get(ctx, u, openWeatherMessages)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return upstream.DecodeError(p.name, err)
	}
	return nil
}

// Raw OpenWeatherMap schema. Only fields used by the mapping are declared.

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmWind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
	Gust  float64 `json:"gust"`
}

type owmCurrent struct {
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Weather []owmCondition `json:"weather"`
	Wind    owmWind        `json:"wind"`
}

type owmForecastEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Pressure  float64  `json:"pressure"`
		Humidity  float64  `json:"humidity"`
	} `json:"main"`
	Weather []owmCondition `json:"weather"`
	Wind    owmWind        `json:"wind"`
	Clouds  struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Pop float64 `json:"pop"`
}

type owmForecast struct {
	List []owmForecastEntry `json:"list"`
}

func normalizeOpenWeather(current owmCurrent, forecast owmForecast, tz *time.Location) weather.WeatherData {
	samples := make([]weather.Sample, 0, len(forecast.List))
	for _, e := range forecast.List {
		samples = append(samples, weather.Sample{
			Dt:        e.Dt,
			Temp:      e.Main.Temp,
			FeelsLike: e.Main.FeelsLike,
			Pressure:  e.Main.Pressure,
			Humidity:  e.Main.Humidity,
			Weather:   owmConditions(e.Weather),
			Speed:     e.Wind.Speed,
			Deg:       e.Wind.Deg,
			Gust:      e.Wind.Gust,
			Clouds:    e.Clouds.All,
			Pop:       e.Pop,
		})
	}

	return weather.WeatherData{
		Location: weather.Location{
			Name:    current.Name,
			Country: current.Sys.Country,
			Lat:     current.Coord.Lat,
			Lon:     current.Coord.Lon,
		},
		Current: weather.Current{
			Temp:      current.Main.Temp,
			FeelsLike: current.Main.FeelsLike,
			TempMin:   current.Main.TempMin,
			TempMax:   current.Main.TempMax,
			Pressure:  current.Main.Pressure,
			Humidity:  current.Main.Humidity,
			Weather:   owmConditions(current.Weather),
			Wind: weather.Wind{
				Speed: current.Wind.Speed,
				Deg:   current.Wind.Deg,
			},
		},
		Forecast: weather.AggregateSamples(samples, tz, openWeatherDays),
	}
}

func owmConditions(in []owmCondition) []weather.Condition {
	out := make([]weather.Condition, 0, len(in))
	for _, c := range in {
		out = append(out, weather.Condition{Main: c.Main, Description: c.Description, Icon: c.Icon})
	}
	return out
}
