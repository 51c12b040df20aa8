// Package mood maps the current temperature to a coarse condition and
// narrows a news list to headlines matching that condition's vocabulary.
package mood

import (
	"strings"

	"github.com/i474232898/weather-news-mood/internal/common"
	"github.com/i474232898/weather-news-mood/internal/news"
)

// Condition is a temperature bucket.
type Condition string

const (
	Cold   Condition = "cold"
	Cool   Condition = "cool"
	Normal Condition = "normal"
	Hot    Condition = "hot"
)

// Classify buckets a Celsius temperature. (20, 30] is Normal.
func Classify(tempC float64) Condition {
	switch {
	case tempC < 10:
		return Cold
	case tempC <= 20:
		return Cool
	case tempC > 30:
		return Hot
	default:
		return Normal
	}
}

var keywords = map[Condition][]string{
	Cold: {
		"crisis", "tragedy", "disaster", "death", "accident", "crime",
		"violence", "war", "conflict", "murder", "crash", "fire",
		"flood", "earthquake", "storm", "recession", "unemployment",
		"poverty", "disease", "pandemic", "terror", "attack",
	},
	Hot: {
		"fear", "terror", "threat", "danger", "risk", "warning",
		"alert", "emergency", "panic", "anxiety", "concern", "worry",
		"caution", "hazard", "outbreak", "crisis", "security",
		"investigation", "suspect", "criminal", "fraud", "scandal",
	},
	Cool: {
		"win", "victory", "success", "achievement", "celebration",
		"happy", "joy", "triumph", "breakthrough", "progress",
		"innovation", "discovery", "award", "prize", "champion",
		"record", "milestone", "accomplishment", "positive",
		"growth", "improvement", "recovery", "hope", "solution",
	},
	Normal: {
		"surprised", "surprising", "unexpected", "shocking", "amazing",
		"incredible", "unbelievable", "astonishing", "remarkable", "stunning",
		"extraordinary", "bizarre", "strange", "unusual", "rare",
		"first time", "never before", "unprecedented", "mystery", "curious",
	},
}

// Keywords returns a copy of the vocabulary for c, or nil for an unknown condition.
func Keywords(c Condition) []string {
	words := keywords[c]
	if words == nil {
		return nil
	}
	out := make([]string, len(words))
	copy(out, words)
	return out
}

// FilterByCondition keeps articles whose title or description mentions one
// of the condition's keywords. A filter that would match nothing returns
// the input unchanged.
func FilterByCondition(articles []news.Article, c Condition) []news.Article {
	words := keywords[c]
	if len(words) == 0 {
		return articles
	}

	var filtered []news.Article
	for _, a := range articles {
		content := strings.ToLower(a.Title + " " + a.Description)
		if common.HasAny(content, words...) {
			filtered = append(filtered, a)
		}
	}
	if len(filtered) == 0 {
		return articles
	}
	return filtered
}
