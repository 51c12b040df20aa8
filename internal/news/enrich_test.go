package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-news-mood/internal/httpclient"
)

const articlePage = `<html><head>
<meta property="og:description" content="  Filled from the page  ">
<meta property="og:image" content="/img/cover.jpg">
</head><body></body></html>`

func TestEnricherFillsMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/story":
			_, _ = w.Write([]byte(articlePage))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	in := []Article{
		{URL: srv.URL + "/story", Title: "needs both"},
		{URL: srv.URL + "/story", Title: "complete", Description: "kept", URLToImage: "https://img/x.png"},
		{URL: srv.URL + "/gone", Title: "broken page"},
	}

	e := NewEnricher(httpclient.NewRestyClient(2*time.Second), nil)
	out := e.Enrich(context.Background(), in)
	require.Len(t, out, 3)

	assert.Equal(t, "Filled from the page", out[0].Description)
	assert.Equal(t, srv.URL+"/img/cover.jpg", out[0].URLToImage)
	assert.Equal(t, in[1], out[1])
	assert.Equal(t, in[2], out[2])
	assert.Empty(t, in[0].Description, "input slice must not be modified")
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example/a.png", resolveURL("https://cdn.example/a.png", "https://news.example/x"))
	assert.Equal(t, "https://news.example/img/a.png", resolveURL("/img/a.png", "https://news.example/story/1"))
}
