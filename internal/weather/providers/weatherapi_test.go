package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-news-mood/internal/upstream"
	"github.com/i474232898/weather-news-mood/internal/weather"
)

const weatherAPIJSON = `{
  "location": {"name": "Paris", "country": "France", "lat": 48.86, "lon": 2.35},
  "current": {
    "temp_c": 12.0, "feelslike_c": 10.5, "pressure_mb": 1015, "humidity": 80,
    "wind_kph": 36, "wind_degree": 200, "is_day": 0,
    "condition": {"text": "Partly cloudy", "code": 1003}
  },
  "forecast": {"forecastday": [
    {
      "date": "2025-06-02", "date_epoch": 1748822400,
      "day": {"maxtemp_c": 19, "mintemp_c": 9, "avgtemp_c": 14, "maxwind_kph": 18,
              "avghumidity": 70, "avgvis_km": 6.5, "daily_chance_of_rain": 85,
              "condition": {"text": "Moderate rain", "code": 1189}},
      "hour": [
        {"temp_c": 9, "feelslike_c": 7}, {"temp_c": 9}, {"temp_c": 9}, {"temp_c": 9},
        {"temp_c": 9}, {"temp_c": 9}, {"temp_c": 11, "feelslike_c": 10}, {"temp_c": 12},
        {"temp_c": 13}, {"temp_c": 14}, {"temp_c": 15}, {"temp_c": 16},
        {"temp_c": 17}, {"temp_c": 18}, {"temp_c": 19}, {"temp_c": 18},
        {"temp_c": 17}, {"temp_c": 16}, {"temp_c": 15, "feelslike_c": 14}, {"temp_c": 14},
        {"temp_c": 13}, {"temp_c": 12}, {"temp_c": 11}, {"temp_c": 10, "feelslike_c": 8}
      ]
    },
    {
      "date": "2025-06-03", "date_epoch": 1748908800,
      "day": {"maxtemp_c": 24, "mintemp_c": 13, "avgtemp_c": 18, "maxwind_kph": 7.2,
              "avghumidity": 55, "avgvis_km": 10, "daily_chance_of_rain": 0,
              "condition": {"text": "Sunny", "code": 1000}},
      "hour": []
    }
  ]}
}`

func TestWeatherAPICurrentWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast.json", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "48.8566,2.3522", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("days"))
		_, _ = w.Write([]byte(weatherAPIJSON))
	}))
	defer srv.Close()

	data, err := NewWeatherAPIProvider("secret", testOptions(srv.URL)).CurrentWeather(context.Background(), paris)
	require.NoError(t, err)

	assert.Equal(t, "France", data.Location.Country)
	assert.Equal(t, 12.0, data.Current.Temp)
	assert.InDelta(t, 10.0, data.Current.Wind.Speed, 1e-9)
	assert.Equal(t, 9.0, data.Current.TempMin)
	assert.Equal(t, 19.0, data.Current.TempMax)
	require.Len(t, data.Current.Weather, 1)
	assert.Equal(t, "02n", data.Current.Weather[0].Icon)
	assert.Equal(t, "partly cloudy", data.Current.Weather[0].Description)

	require.Len(t, data.Forecast, 2)
	d := data.Forecast[0]
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC).Unix(), d.Dt)
	assert.Equal(t, 14.0, d.Temp.Day)
	assert.Equal(t, 10.0, d.Temp.Night)
	assert.Equal(t, 15.0, d.Temp.Eve)
	assert.Equal(t, 11.0, d.Temp.Morn)
	assert.Equal(t, 8.0, d.FeelsLike.Night)
	assert.Equal(t, 14.0, d.FeelsLike.Eve)
	assert.Equal(t, 10.0, d.FeelsLike.Morn)
	assert.InDelta(t, 5.0, d.Speed, 1e-9)
	assert.Equal(t, 80.0, d.Clouds)
	assert.InDelta(t, 0.85, d.Pop, 1e-9)
	assert.Equal(t, 1015.0, d.Pressure)
	assert.Equal(t, "10d", d.Weather[0].Icon)

	// No hourly data: night/morn fall back to min, eve to avg.
	next := data.Forecast[1]
	assert.Equal(t, 13.0, next.Temp.Night)
	assert.Equal(t, 18.0, next.Temp.Eve)
	assert.Equal(t, 13.0, next.Temp.Morn)
	assert.Equal(t, 20.0, next.Clouds)
	assert.Equal(t, 0.0, next.Pop)
	assert.InDelta(t, 2.0, next.Speed, 1e-9)
}

func TestWeatherAPIIconMapping(t *testing.T) {
	assert.Equal(t, "01d", mapWeatherAPIIcon(1000, 1))
	assert.Equal(t, "01n", mapWeatherAPIIcon(1000, 0))
	assert.Equal(t, "01d", mapWeatherAPIIcon(9999, 1))
	assert.Equal(t, "01n", mapWeatherAPIIcon(9999, 0))
	assert.Equal(t, "04d", mapWeatherAPIIcon(1009, 1))
	assert.Equal(t, "50d", mapWeatherAPIIcon(1030, 1))
	assert.Equal(t, "09n", mapWeatherAPIIcon(1246, 0))
	assert.Equal(t, "10d", mapWeatherAPIIcon(1063, 1))
}

func TestWeatherAPIUnitConversion(t *testing.T) {
	assert.InDelta(t, 10.0, kphToMS(36), 1e-9)
	assert.Equal(t, 80.0, syntheticClouds(9.9))
	assert.Equal(t, 20.0, syntheticClouds(10))
}

func TestWeatherAPIErrors(t *testing.T) {
	cases := []struct {
		status int
		kind   error
		msg    string
	}{
		{http.StatusUnauthorized, upstream.ErrAuth, "invalid WeatherAPI key"},
		{http.StatusForbidden, upstream.ErrAuth, "access denied"},
		{http.StatusTooManyRequests, upstream.ErrRateLimited, "rate limit"},
		{http.StatusBadRequest, upstream.ErrFetch, "failed to fetch"},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			_, err := NewWeatherAPIProvider("secret", testOptions(srv.URL)).CurrentWeather(context.Background(), paris)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestWeatherAPIDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := NewWeatherAPIProvider("secret", testOptions(srv.URL)).CurrentWeather(context.Background(), paris)
	assert.ErrorIs(t, err, upstream.ErrFetch)
}

func TestRegistryCachesProviders(t *testing.T) {
	reg := NewRegistry(testOptions(""))

	a, err := reg.For("WeatherAPI", "k1")
	require.NoError(t, err)
	b, err := reg.For("weatherapi", "k1")
	require.NoError(t, err)
	assert.Same(t, a, b)

	c, err := reg.For(weather.ProviderWeatherAPI, "k2")
	require.NoError(t, err)
	assert.NotSame(t, a, c)

	owm, err := reg.For(weather.ProviderOpenWeatherMap, "k1")
	require.NoError(t, err)
	assert.Equal(t, weather.ProviderOpenWeatherMap, owm.Name())

	_, err = reg.For("darksky", "k1")
	assert.Error(t, err)
}
