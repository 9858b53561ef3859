// Package client is a typed HTTP client for the catalog REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agonsep/21stCentury/pkg/models"
)

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is a 401 from the server
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Option configures a Client
type Option func(*Client)

// WithToken sets the admin bearer token sent on every request
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Client talks to a catalog server
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the server at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token
func (c *Client) SetToken(token string) {
	c.token = token
}

// Health is the response of the health endpoint
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Token is an issued admin token
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenInfo describes a verified token
type TokenInfo struct {
	Valid     bool      `json:"valid"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// DeleteResult is returned by delete endpoints
type DeleteResult struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type mapResult struct {
	Message string      `json:"message"`
	Map     *models.Map `json:"map"`
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges the admin password for a token and keeps it for later
// requests
func (c *Client) Login(ctx context.Context, password string) (*Token, error) {
	var out Token
	if err := c.do(ctx, http.MethodPost, "/api/auth/token", map[string]string{"password": password}, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

func (c *Client) VerifyToken(ctx context.Context) (*TokenInfo, error) {
	var out TokenInfo
	if err := c.do(ctx, http.MethodGet, "/api/auth/verify", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]*models.User, error) {
	var out []*models.User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/api/users/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, name, email string) (*models.User, error) {
	var out models.User
	body := map[string]string{"name": name, "email": email}
	if err := c.do(ctx, http.MethodPost, "/api/users", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProducts lists products; query carries the filter, sort and paging
// parameters of the list endpoint
func (c *Client) ListProducts(ctx context.Context, query url.Values) ([]*models.Product, error) {
	path := "/api/products"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var out []*models.Product
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodGet, productPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodPost, "/api/products", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, p *models.Product) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodPut, productPath(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, productPath(id), nil, &DeleteResult{})
}

func (c *Client) Manufacturers(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/api/products/manufacturers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Origins(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/api/products/origins", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := c.do(ctx, http.MethodGet, "/api/products/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListMaps(ctx context.Context) ([]*models.MapSummary, error) {
	var out []*models.MapSummary
	if err := c.do(ctx, http.MethodGet, "/api/maps", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMap(ctx context.Context, id int64) (*models.Map, error) {
	var out models.Map
	if err := c.do(ctx, http.MethodGet, mapPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMap saves m as a new map and returns the stored copy
func (c *Client) CreateMap(ctx context.Context, m *models.Map) (*models.Map, error) {
	var out mapResult
	if err := c.do(ctx, http.MethodPost, "/api/maps", m, &out); err != nil {
		return nil, err
	}
	return out.Map, nil
}

// UpdateMap replaces the stored map id with m
func (c *Client) UpdateMap(ctx context.Context, id int64, m *models.Map) (*models.Map, error) {
	var out mapResult
	if err := c.do(ctx, http.MethodPut, mapPath(id), m, &out); err != nil {
		return nil, err
	}
	return out.Map, nil
}

func (c *Client) DeleteMap(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, mapPath(id), nil, &DeleteResult{})
}

func (c *Client) IconTypes(ctx context.Context) ([]models.IconType, error) {
	var out []models.IconType
	if err := c.do(ctx, http.MethodGet, "/api/icon-types", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Layers(ctx context.Context) ([]models.TileConfig, error) {
	var out []models.TileConfig
	if err := c.do(ctx, http.MethodGet, "/api/layers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func productPath(id int64) string {
	return "/api/products/" + strconv.FormatInt(id, 10)
}

func mapPath(id int64) string {
	return "/api/maps/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
