// Package preferences holds the user's settings and their durable storage.
package preferences

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weather-news-mood/internal/news"
	"github.com/i474232898/weather-news-mood/internal/weather"
)

// ErrLastCategory is returned when a toggle would leave no category selected.
var ErrLastCategory = errors.New("at least one news category must be selected")

var validate = validator.New(validator.WithRequiredStructEnabled())

type APIKeys struct {
	OpenWeatherMap string `json:"openWeatherMap" yaml:"openWeatherMap"`
	WeatherAPI     string `json:"weatherApi" yaml:"weatherApi"`
	NewsAPI        string `json:"newsApi" yaml:"newsApi"`
}

// UserPreferences is persisted as one blob.
type UserPreferences struct {
	TemperatureUnit string          `json:"temperatureUnit" yaml:"temperatureUnit" validate:"oneof=celsius fahrenheit"`
	NewsCategories  []news.Category `json:"newsCategories" yaml:"newsCategories" validate:"min=1,unique,dive,oneof=general business entertainment health science sports technology"`
	WeatherProvider string          `json:"weatherProvider" yaml:"weatherProvider" validate:"oneof=openweathermap weatherapi"`
	APIKeys         APIKeys         `json:"apiKeys" yaml:"apiKeys"`
}

// Defaults returns first-launch preferences seeded with keys.
func Defaults(keys APIKeys) UserPreferences {
	return UserPreferences{
		TemperatureUnit: weather.UnitCelsius,
		NewsCategories:  []news.Category{news.CategoryGeneral},
		WeatherProvider: weather.ProviderWeatherAPI,
		APIKeys:         keys,
	}
}

func (p UserPreferences) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	return nil
}

// Clone returns a copy that shares no slices with p.
func (p UserPreferences) Clone() UserPreferences {
	p.NewsCategories = slices.Clone(p.NewsCategories)
	return p
}

func (p UserPreferences) Equal(o UserPreferences) bool {
	return p.TemperatureUnit == o.TemperatureUnit &&
		p.WeatherProvider == o.WeatherProvider &&
		p.APIKeys == o.APIKeys &&
		slices.Equal(p.NewsCategories, o.NewsCategories)
}

// WeatherAPIKey returns the key for the selected weather provider.
func (p UserPreferences) WeatherAPIKey() string {
	if p.WeatherProvider == weather.ProviderOpenWeatherMap {
		return p.APIKeys.OpenWeatherMap
	}
	return p.APIKeys.WeatherAPI
}

// DemoMode reports whether live data is off for lack of keys.
func (p UserPreferences) DemoMode() bool {
	return strings.TrimSpace(p.WeatherAPIKey()) == "" || strings.TrimSpace(p.APIKeys.NewsAPI) == ""
}

// Masked hides all but the first four characters of every key.
func (p UserPreferences) Masked() UserPreferences {
	p = p.Clone()
	p.APIKeys = APIKeys{
		OpenWeatherMap: mask(p.APIKeys.OpenWeatherMap),
		WeatherAPI:     mask(p.APIKeys.WeatherAPI),
		NewsAPI:        mask(p.APIKeys.NewsAPI),
	}
	return p
}

func mask(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}

// ToggleCategory adds category when absent and removes it when present.
// Removing the only selected category fails with ErrLastCategory.
func ToggleCategory(p UserPreferences, category news.Category) (UserPreferences, error) {
	if !category.Valid() {
		return p, fmt.Errorf("unknown news category %q", category)
	}
	p = p.Clone()
	if i := slices.Index(p.NewsCategories, category); i >= 0 {
		if len(p.NewsCategories) == 1 {
			return p, ErrLastCategory
		}
		p.NewsCategories = slices.Delete(p.NewsCategories, i, i+1)
		return p, nil
	}
	p.NewsCategories = append(p.NewsCategories, category)
	return p, nil
}

// ToggleUnit flips between celsius and fahrenheit.
func ToggleUnit(p UserPreferences) UserPreferences {
	p = p.Clone()
	if p.TemperatureUnit == weather.UnitFahrenheit {
		p.TemperatureUnit = weather.UnitCelsius
	} else {
		p.TemperatureUnit = weather.UnitFahrenheit
	}
	return p
}

type APIKeysPatch struct {
	// OpenWeatherMap keys are 32 hex characters.
	OpenWeatherMap *string `json:"openWeatherMap" validate:"omitempty,len=32,hexadecimal"`
	WeatherAPI     *string `json:"weatherApi" validate:"omitempty,min=1"`
	NewsAPI        *string `json:"newsApi" validate:"omitempty,min=1"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	TemperatureUnit *string         `json:"temperatureUnit" validate:"omitempty,oneof=celsius fahrenheit"`
	NewsCategories  []news.Category `json:"newsCategories" validate:"omitempty,min=1,unique,dive,oneof=general business entertainment health science sports technology"`
	WeatherProvider *string         `json:"weatherProvider" validate:"omitempty,oneof=openweathermap weatherapi"`
	APIKeys         *APIKeysPatch   `json:"apiKeys"`
}

func (patch Patch) Validate() error {
	if patch.NewsCategories != nil && len(patch.NewsCategories) == 0 {
		return ErrLastCategory
	}
	if err := validate.Struct(patch.trimmed().withoutClearedKeys()); err != nil {
		return fmt.Errorf("invalid preferences patch: %w", err)
	}
	return nil
}

// withoutClearedKeys drops keys set to "". Clearing a key is always
// allowed, so only non-empty keys are format checked.
func (patch Patch) withoutClearedKeys() Patch {
	if patch.APIKeys == nil {
		return patch
	}
	keys := *patch.APIKeys
	for _, k := range []**string{&keys.OpenWeatherMap, &keys.WeatherAPI, &keys.NewsAPI} {
		if *k != nil && **k == "" {
			*k = nil
		}
	}
	patch.APIKeys = &keys
	return patch
}

func (patch Patch) trimmed() Patch {
	if patch.APIKeys == nil {
		return patch
	}
	keys := *patch.APIKeys
	for _, k := range []**string{&keys.OpenWeatherMap, &keys.WeatherAPI, &keys.NewsAPI} {
		if *k != nil {
			v := strings.TrimSpace(**k)
			*k = &v
		}
	}
	patch.APIKeys = &keys
	return patch
}

// Apply returns p with the patch merged in. Keys are trimmed.
func (patch Patch) Apply(p UserPreferences) UserPreferences {
	p = p.Clone()
	if patch.TemperatureUnit != nil {
		p.TemperatureUnit = *patch.TemperatureUnit
	}
	if patch.NewsCategories != nil {
		p.NewsCategories = slices.Clone(patch.NewsCategories)
	}
	if patch.WeatherProvider != nil {
		p.WeatherProvider = *patch.WeatherProvider
	}
	if k := patch.trimmed().APIKeys; k != nil {
		if k.OpenWeatherMap != nil {
			p.APIKeys.OpenWeatherMap = *k.OpenWeatherMap
		}
		if k.WeatherAPI != nil {
			p.APIKeys.WeatherAPI = *k.WeatherAPI
		}
		if k.NewsAPI != nil {
			p.APIKeys.NewsAPI = *k.NewsAPI
		}
	}
	return p
}
