// Package geocode resolves free-text places (city, address, ZIP code) to
// coordinates using a Nominatim-compatible search service.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/agonsep/21stCentury/pkg/models"
)

// ErrNotFound is returned when the service has no match for the query
var ErrNotFound = errors.New("location not found")

// ErrEmptyQuery is returned for blank queries
var ErrEmptyQuery = errors.New("search query is empty")

// Result is the best match for a query
type Result struct {
	Position    models.LatLng `json:"position"`
	DisplayName string        `json:"displayName"`
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCountryCodes restricts matches to a comma-separated list of ISO
// country codes
func WithCountryCodes(codes string) Option {
	return func(c *Client) {
		c.countryCodes = codes
	}
}

// WithUserAgent sets the User-Agent header; public Nominatim requires one
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRateLimit caps outgoing requests. A zero limit disables limiting.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		if limit == 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// Client queries the search endpoint of a geocoding service
type Client struct {
	baseURL      string
	countryCodes string
	userAgent    string
	httpClient   *http.Client
	limiter      *rate.Limiter
}

// New creates a client for the service at baseURL. Requests are limited to
// one per second, the public Nominatim usage policy.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "catalog-map-editor/1.0",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search returns the best match for query
func (c *Client) Search(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("limit", "1")
	if c.countryCodes != "" {
		params.Set("countrycodes", c.countryCodes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode service returned %d", resp.StatusCode)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("%q: %w", query, ErrNotFound)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q in geocode response", places[0].Lat)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q in geocode response", places[0].Lon)
	}
	pos := models.LatLng{Lat: lat, Lng: lng}
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("geocode response: %w", err)
	}

	return &Result{Position: pos, DisplayName: places[0].DisplayName}, nil
}
