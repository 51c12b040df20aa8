package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-news-mood/internal/httpclient"
	"github.com/i474232898/weather-news-mood/internal/upstream"
	"github.com/i474232898/weather-news-mood/internal/weather"
)

var paris = weather.Coords{Latitude: 48.8566, Longitude: 2.3522}

func testOptions(baseURL string) Options {
	return Options{
		Client:   httpclient.NewRestyClient(2 * time.Second),
		BaseURL:  baseURL,
		Timezone: time.UTC,
		Backoff: upstream.BackoffConfig{
			MaxRetries:      0,
			InitialInterval: time.Millisecond,
			MaxInterval:     time.Millisecond,
		},
		Now: func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func f(v float64) *float64 { return &v }

const owmCurrentJSON = `{
  "name": "Paris",
  "coord": {"lat": 48.8566, "lon": 2.3522},
  "sys": {"country": "FR"},
  "main": {"temp": 18.5, "feels_like": 17.9, "temp_min": 16, "temp_max": 21, "pressure": 1012, "humidity": 64},
  "weather": [{"main": "Clouds", "description": "broken clouds", "icon": "04d"}],
  "wind": {"speed": 3.1, "deg": 250}
}`

// forecastJSON renders 3-hourly entries starting at start with the given temps.
func forecastJSON(start time.Time, temps []float64) string {
	var entries []string
	for i, temp := range temps {
		dt := start.Add(time.Duration(3*i) * time.Hour).Unix()
		entries = append(entries, fmt.Sprintf(
			`{"dt": %d, "main": {"temp": %g, "feels_like": %g, "pressure": 1010, "humidity": 70},
			  "weather": [{"main": "Rain", "description": "light rain", "icon": "10d"}],
			  "wind": {"speed": 4.2, "deg": 180, "gust": 6.5}, "clouds": {"all": %d}, "pop": %g}`,
			dt, temp, temp-1, 10+i, float64(i)/10))
	}
	return `{"list": [` + strings.Join(entries, ",") + `]}`
}

func TestAggregateSingleDay(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	temps := []float64{20, 22, 24, 23, 21, 19, 18, 20}

	samples := make([]weather.Sample, 0, len(temps))
	for i, temp := range temps {
		samples = append(samples, weather.Sample{
			Dt:     day.Add(time.Duration(3*i) * time.Hour).Unix(),
			Temp:   f(temp),
			Clouds: float64(40 + i),
			Pop:    []float64{0, 0.1, 0.6, 0.2, 0, 0, 0.3, 0}[i],
		})
	}

	got := weather.AggregateSamples(samples, time.UTC, 5)
	require.Len(t, got, 1)
	d := got[0]

	assert.InDelta(t, 20.875, d.Temp.Day, 1e-9)
	assert.Equal(t, 18.0, d.Temp.Min)
	assert.Equal(t, 24.0, d.Temp.Max)
	assert.Equal(t, 20.0, d.Temp.Morn)
	assert.Equal(t, 20.0, d.Temp.Night)
	assert.Equal(t, 18.0, d.Temp.Eve) // index floor(8*0.75) = 6
	assert.Equal(t, 0.6, d.Pop)
	assert.Equal(t, 40.0, d.Clouds)
	assert.Equal(t, day.Unix(), d.Dt)
}

func TestAggregateFallbacksAndOrder(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	samples := []weather.Sample{
		{Dt: day.Unix(), Temp: f(10)},
		{Dt: day.Add(3 * time.Hour).Unix(), Temp: f(14)},
		{Dt: day.Add(6 * time.Hour).Unix(), Temp: nil},
		{Dt: day.Add(9 * time.Hour).Unix(), Temp: nil},
	}

	d := weather.AggregateDay(samples)
	assert.Equal(t, 12.0, d.Temp.Day)
	assert.Equal(t, 14.0, d.Temp.Night, "missing last temp falls back to last present value")
	assert.Equal(t, 10.0, d.Temp.Eve, "missing 75th percentile temp falls back to the first value")

	reversed := []weather.Sample{samples[1], samples[0]}
	assert.NotEqual(t, weather.AggregateDay(samples[:2]).Temp.Morn, weather.AggregateDay(reversed).Temp.Morn)
}

func TestAggregateKeepsFirstFiveDates(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var samples []weather.Sample
	for i := 0; i < 7*8; i++ {
		samples = append(samples, weather.Sample{Dt: start.Add(time.Duration(3*i) * time.Hour).Unix(), Temp: f(float64(i))})
	}

	got := weather.AggregateSamples(samples, time.UTC, 5)
	require.Len(t, got, 5)
	for i, d := range got {
		assert.Equal(t, start.AddDate(0, 0, i).Unix(), d.Dt)
	}
}

func TestAggregateUsesLocalDates(t *testing.T) {
	tz := time.FixedZone("UTC+5", 5*3600)
	// 18:00 and 20:00 UTC land on either side of midnight in UTC+5.
	samples := []weather.Sample{
		{Dt: time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC).Unix(), Temp: f(1)},
		{Dt: time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC).Unix(), Temp: f(2)},
	}
	assert.Len(t, weather.AggregateSamples(samples, time.UTC, 5), 1)
	assert.Len(t, weather.AggregateSamples(samples, tz, 5), 2)
}

func TestOpenWeatherCurrentWeather(t *testing.T) {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "48.8566", r.URL.Query().Get("lat"))
		switch r.URL.Path {
		case "/weather":
			_, _ = w.Write([]byte(owmCurrentJSON))
		case "/forecast":
			_, _ = w.Write([]byte(forecastJSON(start, []float64{20, 22, 24, 23, 21, 19, 18, 20, 15, 16})))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider("secret", testOptions(srv.URL))
	data, err := p.CurrentWeather(context.Background(), paris)
	require.NoError(t, err)

	assert.Equal(t, []string{"/weather", "/forecast"}, paths)
	assert.Equal(t, "Paris", data.Location.Name)
	assert.Equal(t, "FR", data.Location.Country)
	assert.Equal(t, 18.5, data.Current.Temp)
	assert.Equal(t, 3.1, data.Current.Wind.Speed)
	require.Len(t, data.Current.Weather, 1)
	assert.Equal(t, "04d", data.Current.Weather[0].Icon)

	require.Len(t, data.Forecast, 2)
	first := data.Forecast[0]
	assert.InDelta(t, 20.875, first.Temp.Day, 1e-9)
	assert.InDelta(t, 19.875, first.FeelsLike.Day, 1e-9)
	assert.Equal(t, 0.7, first.Pop)
	assert.Equal(t, 10.0, first.Clouds)
	assert.Equal(t, 6.5, first.Gust)
	assert.Equal(t, 15.0, data.Forecast[1].Temp.Morn)
}

func TestOpenWeatherErrors(t *testing.T) {
	cases := []struct {
		status int
		kind   error
	}{
		{http.StatusUnauthorized, upstream.ErrAuth},
		{http.StatusTooManyRequests, upstream.ErrRateLimited},
		{http.StatusForbidden, upstream.ErrFetch},
		{http.StatusInternalServerError, upstream.ErrFetch},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"cod": 0, "message": "nope"}`))
			}))
			defer srv.Close()

			_, err := NewOpenWeatherProvider("secret", testOptions(srv.URL)).CurrentWeather(context.Background(), paris)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)

			var ue *upstream.Error
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tc.status, ue.Status)
		})
	}
}

func TestOpenWeatherDemoOnlyWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // every request now fails at the transport level

	opts := testOptions(url)

	_, err := NewOpenWeatherProvider("secret", opts).CurrentWeather(context.Background(), paris)
	assert.ErrorIs(t, err, upstream.ErrNetwork, "network errors propagate outside restricted runtimes")

	opts.Restricted = true
	_, err = NewOpenWeatherProvider("secret", opts).CurrentWeather(context.Background(), paris)
	assert.ErrorIs(t, err, upstream.ErrNetwork, "a configured key disables the demo substitution")

	keyless := NewOpenWeatherProvider("", opts)
	assert.True(t, keyless.ServesDemo())
	data, err := keyless.CurrentWeather(context.Background(), paris)
	require.NoError(t, err)
	assert.Equal(t, "Bangalore", data.Location.Name)
	assert.Len(t, data.Forecast, 5)

	opts.Restricted = false
	assert.False(t, NewOpenWeatherProvider("", opts).ServesDemo())
	assert.False(t, NewWeatherAPIProvider("", opts).ServesDemo())
}
