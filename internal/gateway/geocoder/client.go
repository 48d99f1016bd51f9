package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"courier-dispatch/internal/domain"
)

// StatusError is a non-2xx answer from the geocoding service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geocoder: status %d: %s", e.Code, e.Body)
}

// ClientConfig configures Client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Country string
	Timeout time.Duration
}

// Client talks to an OpenRouteService compatible /geocode/search endpoint.
type Client struct {
	baseURL string
	apiKey  string
	country string
	http    *http.Client
}

// NewClient returns nil when no base URL is configured.
func NewClient(cfg ClientConfig) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		country: cfg.Country,
		http:    &http.Client{Timeout: timeout},
	}
}

type searchResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode returns the best match for address, or nil when there is none.
func (c *Client) Geocode(ctx context.Context, address string) (*domain.Coordinates, error) {
	q := url.Values{}
	q.Set("text", strings.Join(strings.Fields(address), " "))
	q.Set("size", "1")
	if c.country != "" {
		q.Set("boundary.country", c.country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/geocode/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocoder: create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoder: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("geocoder: decode response: %w", err)
	}
	if len(decoded.Features) == 0 {
		return nil, nil
	}
	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return nil, fmt.Errorf("geocoder: invalid coordinates for %q", address)
	}
	// GeoJSON order is lon, lat.
	return &domain.Coordinates{Lat: coords[1], Lng: coords[0]}, nil
}
