package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/i474232898/weather-news-mood/internal/httpclient"
	"github.com/i474232898/weather-news-mood/internal/weather"
)

const defaultIPLookupURL = "http://ip-api.com/json/?fields=status,message,lat,lon"

// ErrPermissionDenied is returned when no position source is available.
var ErrPermissionDenied = errors.New("location permission denied")

// Locator yields a position fix or fails.
type Locator interface {
	Locate(ctx context.Context) (weather.Coords, error)
}

// StaticLocator answers with configured coordinates. A nil Coords means
// the operator never granted a position.
type StaticLocator struct {
	Coords *weather.Coords
}

func (l StaticLocator) Locate(ctx context.Context) (weather.Coords, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coords{}, err
	}
	if l.Coords == nil {
		return weather.Coords{}, ErrPermissionDenied
	}
	return *l.Coords, nil
}

// IPLocator approximates the host position from its public IP address.
type IPLocator struct {
	client httpclient.Client
	url    string
}

func NewIPLocator(client httpclient.Client, lookupURL string) *IPLocator {
	if lookupURL == "" {
		lookupURL = defaultIPLookupURL
	}
	return &IPLocator{client: client, url: lookupURL}
}

type ipLookup struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (l *IPLocator) Locate(ctx context.Context) (weather.Coords, error) {
	resp, err := l.client.Get(ctx, l.url, nil)
	if err != nil {
		return weather.Coords{}, fmt.Errorf("ip lookup: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return weather.Coords{}, fmt.Errorf("ip lookup: status %d", resp.StatusCode())
	}

	var body ipLookup
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return weather.Coords{}, fmt.Errorf("ip lookup: decode: %w", err)
	}
	if !strings.EqualFold(body.Status, "success") {
		return weather.Coords{}, fmt.Errorf("ip lookup: %s", body.Message)
	}
	return weather.Coords{Latitude: body.Lat, Longitude: body.Lon}, nil
}
