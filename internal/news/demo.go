package news

import (
	"strings"
	"time"
)

// Demo returns the fixed six-article feed served when live news is
// unavailable and no key is configured. Timestamps step back one hour each.
func Demo(now time.Time) []Article {
	stamp := func(hoursAgo int) string {
		return now.Add(-time.Duration(hoursAgo) * time.Hour).UTC().Format(time.RFC3339)
	}
	return []Article{
		{
			Source:      Source{ID: "demo", Name: "Science News"},
			Author:      "Science Reporter",
			Title:       "Scientists Surprised by Breakthrough in Climate Research",
			Description: "Researchers were surprised to discover unexpected developments in renewable energy technology that could revolutionize the field.",
			URL:         "https://example.com/climate-breakthrough",
			URLToImage:  "https://via.placeholder.com/400x200/0066cc/ffffff?text=Climate+Research",
			PublishedAt: stamp(0),
			Content:     "Scientists have announced a surprising breakthrough in renewable energy research...",
		},
		{
			Source:      Source{ID: "demo", Name: "Tech News"},
			Author:      "Tech Reporter",
			Title:       "Amazing Innovation Surprises Technology Industry",
			Description: "A leading technology company has unveiled an amazing innovation that surprised industry experts and promises to revolutionize the field.",
			URL:         "https://example.com/tech-innovation",
			URLToImage:  "https://via.placeholder.com/400x200/ff6600/ffffff?text=Tech+Innovation",
			PublishedAt: stamp(1),
			Content:     "The surprising new technology promises to change how we interact with digital devices...",
		},
		{
			Source:      Source{ID: "demo", Name: "Health News"},
			Author:      "Health Editor",
			Title:       "Unexpected Discovery Shows Surprising Health Benefits",
			Description: "Researchers made an unexpected discovery about the surprising benefits of a common daily activity that shocked the medical community.",
			URL:         "https://example.com/health-study",
			URLToImage:  "https://via.placeholder.com/400x200/00cc66/ffffff?text=Health+Study",
			PublishedAt: stamp(2),
			Content:     "The unexpected study results surprised participants and researchers alike...",
		},
		{
			Source:      Source{ID: "demo", Name: "Sports Network"},
			Author:      "Sports Writer",
			Title:       "Incredible Victory Surprises Championship Fans",
			Description: "The home team secured an incredible victory in a championship game that surprised fans and experts with unexpected overtime drama.",
			URL:         "https://example.com/championship-win",
			URLToImage:  "https://via.placeholder.com/400x200/cc0066/ffffff?text=Championship+Win",
			PublishedAt: stamp(3),
			Content:     "In a surprising finish, the local team emerged victorious in an incredible match...",
		},
		{
			Source:      Source{ID: "demo", Name: "Mystery News"},
			Author:      "Investigation Team",
			Title:       "Mysterious Phenomenon Surprises Scientists Worldwide",
			Description: "An unusual and mysterious phenomenon has surprised scientists around the world, leading to unprecedented research efforts.",
			URL:         "https://example.com/mystery-phenomenon",
			URLToImage:  "https://via.placeholder.com/400x200/666666/ffffff?text=Mystery+News",
			PublishedAt: stamp(4),
			Content:     "The surprising discovery has opened up new questions about our understanding of the world...",
		},
		{
			Source:      Source{ID: "demo", Name: "Business News"},
			Author:      "Business Reporter",
			Title:       "Startling Economic Data Surprises Market Analysts",
			Description: "New economic data has surprised market analysts with unexpected trends that could indicate major changes ahead.",
			URL:         "https://example.com/economic-surprise",
			URLToImage:  "https://via.placeholder.com/400x200/ffcc00/ffffff?text=Economic+News",
			PublishedAt: stamp(5),
			Content:     "The surprising economic indicators have left analysts reconsidering their predictions...",
		},
	}
}

// searchDemo filters the demo feed on title or description, ignoring case.
func searchDemo(now time.Time, query string) []Article {
	q := strings.ToLower(query)
	var out []Article
	for _, a := range Demo(now) {
		if strings.Contains(strings.ToLower(a.Title), q) || strings.Contains(strings.ToLower(a.Description), q) {
			out = append(out, a)
		}
	}
	return out
}
