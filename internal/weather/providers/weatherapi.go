package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/i474232898/weather-news-mood/internal/upstream"
	"github.com/i474232898/weather-news-mood/internal/weather"
)

const (
	weatherAPIBaseURL = "https://api.weatherapi.com/v1"
	weatherAPIDays    = 5

	// Hours of the hourly list standing in for morning, evening and night.
	weatherAPIMornHour  = 6
	weatherAPIEveHour   = 18
	weatherAPINightHour = 23
)

var weatherAPIMessages = map[int]string{
	http.StatusUnauthorized:    "invalid WeatherAPI key, check the key configured in preferences",
	http.StatusForbidden:       "WeatherAPI access denied, check your subscription plan",
	http.StatusTooManyRequests: "WeatherAPI rate limit exceeded, try again later",
}

// weatherAPIIcons maps WeatherAPI condition codes to OpenWeatherMap icon
// prefixes. The d/n suffix comes from the is_day flag.
var weatherAPIIcons = map[int]string{
	1000: "01", // clear / sunny
	1003: "02", // partly cloudy
	1006: "03", // cloudy
	1009: "04", // overcast
	1030: "50", // mist
	1063: "10", // patchy rain possible
	1180: "09", // patchy light rain
	1183: "09", // light rain
	1186: "10", // moderate rain at times
	1189: "10", // moderate rain
	1192: "09", // heavy rain at times
	1195: "09", // heavy rain
	1240: "09", // light rain shower
	1243: "09", // moderate or heavy rain shower
	1246: "09", // torrential rain shower
}

// WeatherAPIProvider implements weather.Provider for WeatherAPI.com. A single
// forecast call carries both current conditions and the daily forecast.
type WeatherAPIProvider struct {
	name   string
	apiKey string
	opts   Options
	caller *upstream.Caller
}

var _ weather.Provider = (*WeatherAPIProvider)(nil)

func NewWeatherAPIProvider(apiKey string, opts Options) *WeatherAPIProvider {
	opts = opts.withDefaults(weatherAPIBaseURL)
	return &WeatherAPIProvider{
		name:   weather.ProviderWeatherAPI,
		apiKey: apiKey,
		opts:   opts,
		caller: upstream.NewCaller(weather.ProviderWeatherAPI, opts.Client, opts.Backoff),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) ServesDemo() bool {
	return useDemo(p.opts, p.apiKey)
}

func (p *WeatherAPIProvider) CurrentWeather(ctx context.Context, coords weather.Coords) (weather.WeatherData, error) {
	if p.ServesDemo() {
		p.opts.Log.InfoObj("using demo weather data, api key not set", "weather_demo", map[string]any{
			"provider": p.name,
		})
		return weather.Demo(p.opts.Now()), nil
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI takes "lat,lon" in q.
	values.Set("q", formatCoord(coords.Latitude)+","+formatCoord(coords.Longitude))
	values.Set("days", fmt.Sprint(weatherAPIDays))
	values.Set("aqi", "no")
	values.Set("alerts", "no")

	u := fmt.Sprintf("%s/forecast.json?%s", p.opts.BaseURL, values.Encode())
	body, err := p.caller.Get(ctx, u, weatherAPIMessages)
	if err != nil {
		return weather.WeatherData{}, err
	}

	var payload wapiPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.WeatherData{}, upstream.DecodeError(p.name, err)
	}
	return normalizeWeatherAPI(payload), nil
}

// Raw WeatherAPI.com schema.

type wapiCondition struct {
	Text string `json:"text"`
	Code int    `json:"code"`
}

type wapiHour struct {
	TempC      *float64 `json:"temp_c"`
	FeelslikeC *float64 `json:"feelslike_c"`
}

type wapiForecastDay struct {
	Date      string `json:"date"`
	DateEpoch int64  `json:"date_epoch"`
	Day       struct {
		MaxtempC          float64       `json:"maxtemp_c"`
		MintempC          float64       `json:"mintemp_c"`
		AvgtempC          float64       `json:"avgtemp_c"`
		MaxwindKph        float64       `json:"maxwind_kph"`
		Avghumidity       float64       `json:"avghumidity"`
		AvgvisKm          float64       `json:"avgvis_km"`
		DailyChanceOfRain float64       `json:"daily_chance_of_rain"`
		Condition         wapiCondition `json:"condition"`
	} `json:"day"`
	Hour []wapiHour `json:"hour"`
}

type wapiPayload struct {
	Location struct {
		Name    string  `json:"name"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	} `json:"location"`
	Current struct {
		TempC      float64       `json:"temp_c"`
		FeelslikeC float64       `json:"feelslike_c"`
		PressureMb float64       `json:"pressure_mb"`
		Humidity   float64       `json:"humidity"`
		WindKph    float64       `json:"wind_kph"`
		WindDegree float64       `json:"wind_degree"`
		IsDay      int           `json:"is_day"`
		Condition  wapiCondition `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []wapiForecastDay `json:"forecastday"`
	} `json:"forecast"`
}

func normalizeWeatherAPI(payload wapiPayload) weather.WeatherData {
	cur := payload.Current
	days := payload.Forecast.ForecastDay

	tempMin, tempMax := cur.TempC, cur.TempC
	if len(days) > 0 {
		tempMin, tempMax = days[0].Day.MintempC, days[0].Day.MaxtempC
	}

	forecast := make(weather.Forecast, 0, len(days))
	for _, d := range days {
		forecast = append(forecast, weather.ForecastDay{
			Dt: forecastDate(d),
			Temp: weather.DayTemps{
				Day:   d.Day.AvgtempC,
				Min:   d.Day.MintempC,
				Max:   d.Day.MaxtempC,
				Night: hourValue(d.Hour, weatherAPINightHour, tempC, d.Day.MintempC),
				Eve:   hourValue(d.Hour, weatherAPIEveHour, tempC, d.Day.AvgtempC),
				Morn:  hourValue(d.Hour, weatherAPIMornHour, tempC, d.Day.MintempC),
			},
			FeelsLike: weather.FeelsLike{
				Day:   d.Day.AvgtempC,
				Night: hourValue(d.Hour, weatherAPINightHour, feelsLikeC, d.Day.MintempC),
				Eve:   hourValue(d.Hour, weatherAPIEveHour, feelsLikeC, d.Day.AvgtempC),
				Morn:  hourValue(d.Hour, weatherAPIMornHour, feelsLikeC, d.Day.MintempC),
			},
			Pressure: cur.PressureMb,
			Humidity: d.Day.Avghumidity,
			Weather:  []weather.Condition{wapiToCondition(d.Day.Condition, 1)},
			Speed:    kphToMS(d.Day.MaxwindKph),
			Deg:      cur.WindDegree,
			Clouds:   syntheticClouds(d.Day.AvgvisKm),
			Pop:      d.Day.DailyChanceOfRain / 100,
		})
	}

	return weather.WeatherData{
		Location: weather.Location{
			Name:    payload.Location.Name,
			Country: payload.Location.Country,
			Lat:     payload.Location.Lat,
			Lon:     payload.Location.Lon,
		},
		Current: weather.Current{
			Temp:      cur.TempC,
			FeelsLike: cur.FeelslikeC,
			TempMin:   tempMin,
			TempMax:   tempMax,
			Pressure:  cur.PressureMb,
			Humidity:  cur.Humidity,
			Weather:   []weather.Condition{wapiToCondition(cur.Condition, cur.IsDay)},
			Wind: weather.Wind{
				Speed: kphToMS(cur.WindKph),
				Deg:   cur.WindDegree,
			},
		},
		Forecast: forecast,
	}
}

func wapiToCondition(c wapiCondition, isDay int) weather.Condition {
	return weather.Condition{
		Main:        c.Text,
		Description: strings.ToLower(c.Text),
		Icon:        mapWeatherAPIIcon(c.Code, isDay),
	}
}

// mapWeatherAPIIcon translates a condition code into the OpenWeatherMap icon
// vocabulary. Unknown codes render as clear sky.
func mapWeatherAPIIcon(code, isDay int) string {
	suffix := "n"
	if isDay != 0 {
		suffix = "d"
	}
	prefix, ok := weatherAPIIcons[code]
	if !ok {
		prefix = "01"
	}
	return prefix + suffix
}

func kphToMS(kph float64) float64 {
	return kph / 3.6
}

// syntheticClouds stands in for the cloud cover WeatherAPI does not report.
func syntheticClouds(visibilityKm float64) float64 {
	if visibilityKm < 10 {
		return 80
	}
	return 20
}

// forecastDate returns the day's UTC midnight as Unix seconds.
func forecastDate(d wapiForecastDay) int64 {
	if t, err := time.Parse(time.DateOnly, d.Date); err == nil {
		return t.Unix()
	}
	return d.DateEpoch
}

func tempC(h wapiHour) *float64      { return h.TempC }
func feelsLikeC(h wapiHour) *float64 { return h.FeelslikeC }

func hourValue(hours []wapiHour, idx int, pick func(wapiHour) *float64, fallback float64) float64 {
	if idx < len(hours) {
		if v := pick(hours[idx]); v != nil {
			return *v
		}
	}
	return fallback
}
