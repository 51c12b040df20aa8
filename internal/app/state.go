// Package app holds the home-feed state and the transitions that change it.
package app

import (
	"github.com/i474232898/weather-news-mood/internal/mood"
	"github.com/i474232898/weather-news-mood/internal/news"
	"github.com/i474232898/weather-news-mood/internal/preferences"
	"github.com/i474232898/weather-news-mood/internal/weather"
)

type Loading struct {
	Weather bool `json:"weather"`
	News    bool `json:"news"`
}

// Errors holds the latest user-facing message per data domain.
type Errors struct {
	Weather string `json:"weather,omitempty"`
	News    string `json:"news,omitempty"`
}

// State is treated as immutable: Reduce returns a new value and never
// writes through slices or pointers it received.
type State struct {
	Weather       *weather.WeatherData        `json:"weather"`
	Coords        weather.Coords              `json:"coords"`
	LocationLabel string                      `json:"locationLabel"`
	News          []news.Article              `json:"news"`
	FilteredNews  []news.Article              `json:"filteredNews"`
	Condition     mood.Condition              `json:"condition,omitempty"`
	Preferences   preferences.UserPreferences `json:"preferences"`
	Loading       Loading                     `json:"loading"`
	Errors        Errors                      `json:"errors"`
}

// Initial returns the state before anything was loaded.
func Initial(prefs preferences.UserPreferences) State {
	return State{
		Preferences:  prefs.Clone(),
		News:         []news.Article{},
		FilteredNews: []news.Article{},
	}
}

// Action is a state transition request.
type Action interface {
	isAction()
}

type (
	WeatherLoading struct{}
	NewsLoading    struct{}

	WeatherLoaded struct {
		Data   weather.WeatherData
		Coords weather.Coords
		Label  string
	}
	NewsLoaded struct {
		Articles []news.Article
	}

	WeatherFailed struct{ Message string }
	NewsFailed    struct{ Message string }

	// PreferencesLoaded replaces preferences wholesale at startup.
	PreferencesLoaded  struct{ Preferences preferences.UserPreferences }
	PreferencesUpdated struct{ Patch preferences.Patch }

	// CategoryToggled and UnitToggled flip a setting against the
	// preferences current at the time they are reduced.
	CategoryToggled struct{ Category news.Category }
	UnitToggled     struct{}

	ErrorsCleared struct{}
)

func (WeatherLoading) isAction()     {}
func (NewsLoading) isAction()        {}
func (WeatherLoaded) isAction()      {}
func (NewsLoaded) isAction()         {}
func (WeatherFailed) isAction()      {}
func (NewsFailed) isAction()         {}
func (PreferencesLoaded) isAction()  {}
func (PreferencesUpdated) isAction() {}
func (CategoryToggled) isAction()    {}
func (UnitToggled) isAction()        {}
func (ErrorsCleared) isAction()      {}

// Reduce applies a to s. It has no side effects; unknown and rejected
// actions return s.
func Reduce(s State, a Action) State {
	next, _ := reduce(s, a)
	return next
}

// reduce is Reduce that also reports why an action was rejected. A
// rejected action leaves s untouched.
func reduce(s State, a Action) (State, error) {
	switch a := a.(type) {
	case WeatherLoading:
		s.Loading.Weather = true
		s.Errors.Weather = ""
	case NewsLoading:
		s.Loading.News = true
		s.Errors.News = ""
	case WeatherLoaded:
		data := a.Data
		s.Weather = &data
		s.Coords = a.Coords
		s.LocationLabel = a.Label
		s.Loading.Weather = false
		s.Errors.Weather = ""
		s = refilter(s)
	case NewsLoaded:
		s.News = a.Articles
		if s.News == nil {
			s.News = []news.Article{}
		}
		s.Loading.News = false
		s.Errors.News = ""
		s = refilter(s)
	case WeatherFailed:
		s.Loading.Weather = false
		s.Errors.Weather = a.Message
	case NewsFailed:
		s.Loading.News = false
		s.Errors.News = a.Message
	case PreferencesLoaded:
		s.Preferences = a.Preferences.Clone()
	case PreferencesUpdated:
		s.Preferences = a.Patch.Apply(s.Preferences)
	case CategoryToggled:
		prefs, err := preferences.ToggleCategory(s.Preferences, a.Category)
		if err != nil {
			return s, err
		}
		s.Preferences = prefs
	case UnitToggled:
		s.Preferences = preferences.ToggleUnit(s.Preferences)
	case ErrorsCleared:
		s.Errors = Errors{}
	}
	return s, nil
}

// refilter derives the condition and the mood-filtered list. Without
// weather every article is shown.
func refilter(s State) State {
	if s.Weather == nil {
		s.Condition = ""
		s.FilteredNews = s.News
		return s
	}
	s.Condition = mood.Classify(s.Weather.Current.Temp)
	s.FilteredNews = mood.FilterByCondition(s.News, s.Condition)
	return s
}
