package httpapi

import (
	"time"

	"github.com/i474232898/weather-news-mood/internal/app"
	"github.com/i474232898/weather-news-mood/internal/common"
	"github.com/i474232898/weather-news-mood/internal/mood"
	"github.com/i474232898/weather-news-mood/internal/news"
	"github.com/i474232898/weather-news-mood/internal/weather"
)

const (
	descriptionLimit = 120
	forecastDays     = 5
	articleDate      = "Jan 2, 2006, 03:04 PM"
)

// feedView is the home screen rendered as JSON.
type feedView struct {
	Weather     *weatherView    `json:"weather"`
	Condition   mood.Condition  `json:"condition,omitempty"`
	News        []articleView   `json:"news"`
	Preferences preferencesView `json:"preferences"`
	Loading     app.Loading     `json:"loading"`
	Errors      app.Errors      `json:"errors"`
}

type preferencesView struct {
	TemperatureUnit string          `json:"temperatureUnit"`
	NewsCategories  []news.Category `json:"newsCategories"`
	WeatherProvider string          `json:"weatherProvider"`
	DemoMode        bool            `json:"demoMode"`
}

type weatherView struct {
	Location    string         `json:"location"`
	Coords      weather.Coords `json:"coords"`
	Temperature string         `json:"temperature"`
	FeelsLike   string         `json:"feelsLike"`
	High        string         `json:"high"`
	Low         string         `json:"low"`
	Description string         `json:"description"`
	IconURL     string         `json:"iconUrl,omitempty"`
	Humidity    float64        `json:"humidity"`
	Pressure    float64        `json:"pressure"`
	WindSpeed   float64        `json:"windSpeed"`
	Forecast    []dayView      `json:"forecast"`
}

type dayView struct {
	Day     string `json:"day"`
	Low     string `json:"low"`
	High    string `json:"high"`
	IconURL string `json:"iconUrl,omitempty"`
}

type articleView struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
	Date        string `json:"date"`
}

func newFeedView(s app.State) feedView {
	prefs := s.Preferences
	v := feedView{
		Condition: s.Condition,
		News:      make([]articleView, 0, len(s.FilteredNews)),
		Preferences: preferencesView{
			TemperatureUnit: prefs.TemperatureUnit,
			NewsCategories:  prefs.NewsCategories,
			WeatherProvider: prefs.WeatherProvider,
			DemoMode:        prefs.DemoMode(),
		},
		Loading: s.Loading,
		Errors:  s.Errors,
	}
	if s.Weather != nil {
		w := newWeatherView(*s.Weather, prefs.TemperatureUnit)
		w.Coords = s.Coords
		if s.LocationLabel != "" {
			w.Location = s.LocationLabel
		}
		v.Weather = &w
	}
	for _, a := range s.FilteredNews {
		v.News = append(v.News, newArticleView(a))
	}
	return v
}

func newWeatherView(d weather.WeatherData, unit string) weatherView {
	cur := d.Current
	v := weatherView{
		Location:    d.Location.Name,
		Temperature: weather.FormatTemperature(cur.Temp, unit),
		FeelsLike:   weather.FormatTemperature(cur.FeelsLike, unit),
		High:        weather.FormatTemperature(cur.TempMax, unit),
		Low:         weather.FormatTemperature(cur.TempMin, unit),
		Humidity:    cur.Humidity,
		Pressure:    cur.Pressure,
		WindSpeed:   cur.Wind.Speed,
		Forecast:    []dayView{},
	}
	if len(cur.Weather) > 0 {
		v.Description = cur.Weather[0].Description
		v.IconURL = iconURL(cur.Weather)
	}
	for i, day := range d.Forecast.Take(forecastDays) {
		name := "Today"
		if i > 0 {
			name = time.Unix(day.Dt, 0).UTC().Format("Mon")
		}
		v.Forecast = append(v.Forecast, dayView{
			Day:     name,
			Low:     weather.FormatTemperature(day.Temp.Min, unit),
			High:    weather.FormatTemperature(day.Temp.Max, unit),
			IconURL: iconURL(day.Weather),
		})
	}
	return v
}

func iconURL(conds []weather.Condition) string {
	if len(conds) == 0 || conds[0].Icon == "" {
		return ""
	}
	return weather.IconURL(conds[0].Icon)
}

func newArticleView(a news.Article) articleView {
	v := articleView{
		Title:       a.Title,
		Description: common.Truncate(a.Description, descriptionLimit),
		URL:         a.URL,
		ImageURL:    a.URLToImage,
		Source:      a.Source.Name,
		PublishedAt: a.PublishedAt,
	}
	if t, ok := news.PublishedTime(a); ok {
		v.Date = t.UTC().Format(articleDate)
	}
	return v
}
