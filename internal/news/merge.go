package news

import (
	"sort"
	"time"
)

// Merge concatenates responses in order, drops repeated URLs keeping the
// first occurrence and sorts newest first. Articles with equal or
// unparseable timestamps keep their relative order; unparseable ones sink
// to the end.
func Merge(responses ...Response) []Article {
	seen := make(map[string]struct{})
	var merged []Article
	for _, resp := range responses {
		for _, a := range resp.Articles {
			if _, dup := seen[a.URL]; dup {
				continue
			}
			seen[a.URL] = struct{}{}
			merged = append(merged, a)
		}
	}
	SortByPublished(merged)
	return merged
}

// SortByPublished orders articles newest first, stably.
func SortByPublished(articles []Article) {
	stamps := make(map[int]time.Time, len(articles))
	idx := make([]int, len(articles))
	for i, a := range articles {
		idx[i] = i
		if t, ok := PublishedTime(a); ok {
			stamps[i] = t
		}
	}

	sort.SliceStable(idx, func(i, j int) bool {
		ti, okI := stamps[idx[i]]
		tj, okJ := stamps[idx[j]]
		switch {
		case okI && okJ:
			return ti.After(tj)
		case okI:
			return true
		default:
			return false
		}
	})

	sorted := make([]Article, len(articles))
	for i, k := range idx {
		sorted[i] = articles[k]
	}
	copy(articles, sorted)
}

// PublishedTime parses PublishedAt as RFC 3339.
func PublishedTime(a Article) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, a.PublishedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
