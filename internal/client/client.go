// Package client is an HTTP client for the packzen API. Trip binds it to
// one trip and implements the packing board's operations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainerrors "github.com/erazemk/packzen/internal/errors"
	"github.com/erazemk/packzen/internal/model"
)

// Client talks to a packzen server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	log        *slog.Logger
}

// New creates a client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logger.With("component", "client"),
	}
}

// SetToken sets the bearer token used for requests.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current bearer token.
func (c *Client) Token() string { return c.token }

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details"`
}

// do sends a JSON request to path (relative to /api) and decodes the
// response into out. Non-2xx responses become *errors.Error values.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.DebugContext(ctx, "api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var eb errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &eb); err != nil || eb.Error == "" {
		eb.Error = http.StatusText(resp.StatusCode)
	}

	code := domainerrors.Code(eb.Code)
	if code == "" {
		code = codeForStatus(resp.StatusCode)
	}
	return &domainerrors.Error{Code: code, Message: eb.Error, Details: eb.Details}
}

func codeForStatus(status int) domainerrors.Code {
	switch status {
	case http.StatusNotFound:
		return domainerrors.CodeNotFound
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return domainerrors.CodeValidation
	case http.StatusConflict:
		return domainerrors.CodeConflict
	case http.StatusUnauthorized:
		return domainerrors.CodeUnauthorized
	case http.StatusForbidden:
		return domainerrors.CodeForbidden
	case http.StatusTooManyRequests:
		return domainerrors.CodeRateLimited
	default:
		return domainerrors.CodeInternal
	}
}

// Login exchanges credentials for a token and keeps it for later requests.
func (c *Client) Login(ctx context.Context, username, password string) (*model.User, error) {
	var resp struct {
		Token string      `json:"token"`
		User  *model.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	c.token = resp.Token
	return resp.User, nil
}

// Logout revokes the current token.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	c.token = ""
	return nil
}

// ListTrips returns the user's trips.
func (c *Client) ListTrips(ctx context.Context) ([]model.Trip, error) {
	var trips []model.Trip
	if err := c.do(ctx, http.MethodGet, "/trips", nil, &trips); err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	return trips, nil
}

// NewTrip is the body for CreateTrip.
type NewTrip struct {
	Name        string `json:"name"`
	Destination string `json:"destination,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

// CreateTrip creates a trip.
func (c *Client) CreateTrip(ctx context.Context, in NewTrip) (*model.Trip, error) {
	var trip model.Trip
	if err := c.do(ctx, http.MethodPost, "/trips", in, &trip); err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}
	return &trip, nil
}

// ListCategories returns the user's categories.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &cats); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, name, icon string) (*model.Category, error) {
	var cat model.Category
	err := c.do(ctx, http.MethodPost, "/categories", map[string]string{"name": name, "icon": icon}, &cat)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &cat, nil
}

// ListMasterItems returns the user's master items.
func (c *Client) ListMasterItems(ctx context.Context) ([]model.MasterItem, error) {
	var items []model.MasterItem
	if err := c.do(ctx, http.MethodGet, "/master-items", nil, &items); err != nil {
		return nil, fmt.Errorf("list master items: %w", err)
	}
	return items, nil
}

// Catalog returns built-in templates matching q (all when empty).
func (c *Client) Catalog(ctx context.Context, q string) ([]model.CatalogTemplate, error) {
	path := "/catalog"
	if q != "" {
		path += "?q=" + url.QueryEscape(q)
	}
	var templates []model.CatalogTemplate
	if err := c.do(ctx, http.MethodGet, path, nil, &templates); err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return templates, nil
}

// Trip returns a client bound to one trip.
func (c *Client) Trip(tripID string) *Trip {
	return &Trip{c: c, id: tripID}
}
