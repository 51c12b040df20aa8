package mood

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-news-mood/internal/news"
)

func TestClassifyBoundaries(t *testing.T) {
	cases := map[float64]Condition{
		-15:   Cold,
		9.99:  Cold,
		10:    Cool,
		15:    Cool,
		20:    Cool,
		20.01: Normal,
		25:    Normal,
		30:    Normal,
		30.01: Hot,
		45:    Hot,
	}
	for temp, want := range cases {
		assert.Equal(t, want, Classify(temp), "temp %v", temp)
	}
}

func TestClassifyIsTotal(t *testing.T) {
	for temp := -60.0; temp <= 60; temp += 0.25 {
		got := Classify(temp)
		assert.Contains(t, []Condition{Cold, Cool, Normal, Hot}, got)
	}
	// NaN compares false everywhere and lands in the default bucket.
	assert.Equal(t, Normal, Classify(math.NaN()))
}

func TestKeywordsNonEmptyForEveryCondition(t *testing.T) {
	for _, c := range []Condition{Cold, Cool, Normal, Hot} {
		assert.NotEmpty(t, Keywords(c), string(c))
	}
	assert.Nil(t, Keywords("warm"))

	words := Keywords(Cold)
	words[0] = "changed"
	assert.Equal(t, "crisis", Keywords(Cold)[0])
}

func TestFilterByCondition(t *testing.T) {
	articles := []news.Article{
		{URL: "1", Title: "Local team WINS the cup"},
		{URL: "2", Title: "Markets flat", Description: "Nothing to report"},
		{URL: "3", Title: "Quiet day", Description: "A record-breaking heat wave"},
	}

	got := FilterByCondition(articles, Cool)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].URL)
	assert.Equal(t, "3", got[1].URL)
}

func TestFilterMatchesPhrases(t *testing.T) {
	articles := []news.Article{
		{URL: "1", Title: "For the first time", Description: "ever"},
		{URL: "2", Title: "first", Description: "of its time"},
	}
	got := FilterByCondition(articles, Normal)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].URL)
}

func TestFilterNeverEmptiesNonEmptyInput(t *testing.T) {
	articles := []news.Article{
		{URL: "1", Title: "Gardening tips", Description: "Plant tulips now"},
		{URL: "2", Title: "Recipe of the week"},
	}
	for _, c := range []Condition{Cold, Cool, Normal, Hot, "unknown"} {
		assert.Equal(t, articles, FilterByCondition(articles, c), string(c))
	}
	assert.Empty(t, FilterByCondition(nil, Cold))
}

func TestDemoFeedMatchesNormalVocabulary(t *testing.T) {
	demo := news.Demo(time.Now())
	assert.Len(t, FilterByCondition(demo, Normal), len(demo))
}
