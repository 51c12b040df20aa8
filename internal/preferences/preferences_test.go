package preferences

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-news-mood/internal/news"
	"github.com/i474232898/weather-news-mood/internal/weather"
)

func strPtr(s string) *string { return &s }

func TestDefaults(t *testing.T) {
	p := Defaults(APIKeys{NewsAPI: "n"})
	assert.Equal(t, weather.UnitCelsius, p.TemperatureUnit)
	assert.Equal(t, []news.Category{news.CategoryGeneral}, p.NewsCategories)
	assert.Equal(t, weather.ProviderWeatherAPI, p.WeatherProvider)
	assert.Equal(t, "n", p.APIKeys.NewsAPI)
	require.NoError(t, p.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	p := Defaults(APIKeys{})
	p.TemperatureUnit = "kelvin"
	assert.Error(t, p.Validate())

	p = Defaults(APIKeys{})
	p.NewsCategories = nil
	assert.Error(t, p.Validate())

	p = Defaults(APIKeys{})
	p.NewsCategories = []news.Category{"gossip"}
	assert.Error(t, p.Validate())

	p = Defaults(APIKeys{})
	p.NewsCategories = []news.Category{news.CategorySports, news.CategorySports}
	assert.Error(t, p.Validate())

	p = Defaults(APIKeys{})
	p.WeatherProvider = "darksky"
	assert.Error(t, p.Validate())
}

func TestToggleCategory(t *testing.T) {
	p := Defaults(APIKeys{})

	_, err := ToggleCategory(p, news.CategoryGeneral)
	assert.ErrorIs(t, err, ErrLastCategory)

	added, err := ToggleCategory(p, news.CategoryScience)
	require.NoError(t, err)
	assert.Equal(t, []news.Category{news.CategoryGeneral, news.CategoryScience}, added.NewsCategories)
	assert.Len(t, p.NewsCategories, 1, "input must not be modified")

	removed, err := ToggleCategory(added, news.CategoryGeneral)
	require.NoError(t, err)
	assert.Equal(t, []news.Category{news.CategoryScience}, removed.NewsCategories)
	assert.Len(t, added.NewsCategories, 2)

	_, err = ToggleCategory(p, "weather")
	assert.Error(t, err)
}

func TestToggleUnit(t *testing.T) {
	p := Defaults(APIKeys{})
	p = ToggleUnit(p)
	assert.Equal(t, weather.UnitFahrenheit, p.TemperatureUnit)
	assert.Equal(t, weather.UnitCelsius, ToggleUnit(p).TemperatureUnit)
}

func TestPatch(t *testing.T) {
	base := Defaults(APIKeys{WeatherAPI: "w", NewsAPI: "n"})

	patch := Patch{
		TemperatureUnit: strPtr(weather.UnitFahrenheit),
		WeatherProvider: strPtr(weather.ProviderOpenWeatherMap),
		APIKeys:         &APIKeysPatch{OpenWeatherMap: strPtr("  0123456789abcdef0123456789ABCDEF ")},
	}
	require.NoError(t, patch.Validate())

	got := patch.Apply(base)
	assert.Equal(t, weather.UnitFahrenheit, got.TemperatureUnit)
	assert.Equal(t, weather.ProviderOpenWeatherMap, got.WeatherProvider)
	assert.Equal(t, "0123456789abcdef0123456789ABCDEF", got.APIKeys.OpenWeatherMap)
	assert.Equal(t, "0123456789abcdef0123456789ABCDEF", got.WeatherAPIKey())
	assert.Equal(t, "n", got.APIKeys.NewsAPI)
	assert.Equal(t, base.NewsCategories, got.NewsCategories)
	assert.Equal(t, weather.UnitCelsius, base.TemperatureUnit)
}

func TestPatchValidation(t *testing.T) {
	assert.ErrorIs(t, Patch{NewsCategories: []news.Category{}}.Validate(), ErrLastCategory)
	assert.Error(t, Patch{TemperatureUnit: strPtr("kelvin")}.Validate())
	assert.Error(t, Patch{APIKeys: &APIKeysPatch{OpenWeatherMap: strPtr("too-short")}}.Validate())
	assert.Error(t, Patch{APIKeys: &APIKeysPatch{OpenWeatherMap: strPtr("zz23456789abcdef0123456789abcdef")}}.Validate())
	assert.NoError(t, Patch{}.Validate())
	assert.NoError(t, Patch{APIKeys: &APIKeysPatch{OpenWeatherMap: strPtr("")}}.Validate())
	assert.NoError(t, Patch{APIKeys: &APIKeysPatch{WeatherAPI: strPtr("  "), NewsAPI: strPtr("")}}.Validate())
}

func TestPatchClearsKeys(t *testing.T) {
	base := Defaults(APIKeys{OpenWeatherMap: "0123456789abcdef0123456789abcdef", WeatherAPI: "w", NewsAPI: "n"})
	base.WeatherProvider = weather.ProviderOpenWeatherMap

	patch := Patch{APIKeys: &APIKeysPatch{OpenWeatherMap: strPtr(""), NewsAPI: strPtr(" ")}}
	require.NoError(t, patch.Validate())

	got := patch.Apply(base)
	assert.Empty(t, got.APIKeys.OpenWeatherMap)
	assert.Empty(t, got.APIKeys.NewsAPI)
	assert.Equal(t, "w", got.APIKeys.WeatherAPI)
	assert.True(t, got.DemoMode())
}

func TestMaskedAndDemoMode(t *testing.T) {
	p := Defaults(APIKeys{WeatherAPI: "abcdefgh", NewsAPI: "xy"})
	m := p.Masked()
	assert.Equal(t, "abcd****", m.APIKeys.WeatherAPI)
	assert.Equal(t, "**", m.APIKeys.NewsAPI)
	assert.Equal(t, "", m.APIKeys.OpenWeatherMap)
	assert.Equal(t, "abcdefgh", p.APIKeys.WeatherAPI)

	assert.False(t, p.DemoMode())
	p.WeatherProvider = weather.ProviderOpenWeatherMap
	assert.True(t, p.DemoMode())
}

func TestBoltStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := OpenBolt(filepath.Join(t.TempDir(), "nested", "prefs.db"))
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	want := Defaults(APIKeys{NewsAPI: "n"})
	want.NewsCategories = append(want.NewsCategories, news.CategoryHealth)
	require.NoError(t, s.Save(ctx, want))

	got, ok, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, want.Equal(got))
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	s := NewFileStore(path)

	_, ok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	want := ToggleUnit(Defaults(APIKeys{WeatherAPI: "w"}))
	require.NoError(t, s.Save(ctx, want))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "temperatureUnit: fahrenheit")

	got, ok, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, want.Equal(got))
}

type failingStore struct{ err error }

func (f failingStore) Load(context.Context) (UserPreferences, bool, error) {
	return UserPreferences{}, false, f.err
}
func (f failingStore) Save(context.Context, UserPreferences) error { return f.err }
func (f failingStore) Close() error                                { return nil }

func TestLoadOrDefault(t *testing.T) {
	ctx := context.Background()
	defaults := Defaults(APIKeys{WeatherAPI: "from-env", NewsAPI: "from-env"})

	assert.Equal(t, defaults, LoadOrDefault(ctx, failingStore{err: errors.New("disk gone")}, defaults, nil))
	assert.Equal(t, defaults, LoadOrDefault(ctx, nil, defaults, nil))

	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("temperatureUnit: fahrenheit\napiKeys:\n  newsApi: stored\n"), 0o600))
	got := LoadOrDefault(ctx, NewFileStore(path), defaults, nil)
	assert.Equal(t, weather.UnitFahrenheit, got.TemperatureUnit)
	assert.Equal(t, "stored", got.APIKeys.NewsAPI)
	assert.Equal(t, "from-env", got.APIKeys.WeatherAPI)
	assert.Equal(t, defaults.NewsCategories, got.NewsCategories)

	require.NoError(t, os.WriteFile(path, []byte("temperatureUnit: kelvin\n"), 0o600))
	assert.Equal(t, defaults, LoadOrDefault(ctx, NewFileStore(path), defaults, nil))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), OpenOptions{Backend: "sqlite"})
	assert.Error(t, err)

	s, err := Open(context.Background(), OpenOptions{Backend: BackendFile, Path: filepath.Join(t.TempDir(), "p.yaml")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
}
