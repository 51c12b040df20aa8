package news

// Category is a NewsAPI top-headlines category.
type Category string

const (
	CategoryGeneral       Category = "general"
	CategoryBusiness      Category = "business"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryScience       Category = "science"
	CategorySports        Category = "sports"
	CategoryTechnology    Category = "technology"
)

// Categories lists every supported category in display order.
var Categories = []Category{
	CategoryGeneral,
	CategoryBusiness,
	CategoryEntertainment,
	CategoryHealth,
	CategoryScience,
	CategorySports,
	CategoryTechnology,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article is a single headline. URL identifies the article.
type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"` // ISO-8601
	Content     string `json:"content"`
}

// Response mirrors the NewsAPI envelope.
type Response struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

func okResponse(articles []Article) Response {
	if articles == nil {
		articles = []Article{}
	}
	return Response{Status: "ok", TotalResults: len(articles), Articles: articles}
}
