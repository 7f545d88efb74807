// Package api is the HTTP client for the back-office REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jask/baydesk/internal/catalog"
)

// CredentialProvider returns the bearer token for a request. An empty token
// sends the request unauthenticated.
type CredentialProvider func(ctx context.Context) (string, error)

// Config is resolved once at startup and injected into the client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Error is a non-2xx response the client could not map to a catalog error.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Client implements catalog.Catalog against the REST backend.
type Client struct {
	base  *url.URL
	http  *http.Client
	creds CredentialProvider
	ua    string
	log   *slog.Logger
}

var _ catalog.Catalog = (*Client)(nil)

// New builds a client. BaseURL must be an absolute http(s) URL.
func New(cfg Config, creds CredentialProvider, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute http(s)", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if creds == nil {
		creds = func(context.Context) (string, error) { return "", nil }
	}
	if logger == nil {
		logger = slog.Default()
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "baydesk"
	}
	return &Client{
		base:  base,
		http:  &http.Client{Timeout: timeout},
		creds: creds,
		ua:    ua,
		log:   logger.With(slog.String("component", "api")),
	}, nil
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) ListModels(ctx context.Context, q catalog.ModelQuery) (catalog.ModelPage, error) {
	params := url.Values{}
	if s := strings.TrimSpace(q.Search); s != "" {
		params.Set("search", s)
	}
	params.Set("offset", strconv.Itoa(q.Offset))
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	var page catalog.ModelPage
	if err := c.do(ctx, http.MethodGet, "/models", params, nil, "", &page); err != nil {
		return catalog.ModelPage{}, err
	}
	if page.Models == nil {
		page.Models = []catalog.Model{}
	}
	return page, nil
}

func (c *Client) CreateModel(ctx context.Context, m catalog.NewModel) (catalog.Model, error) {
	var out catalog.Model
	err := c.do(ctx, http.MethodPost, "/models", nil, m.Normalize(), m.RequestKey, &out)
	return out, err
}

func (c *Client) ListSKUs(ctx context.Context, limit int) ([]catalog.SKU, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var body struct {
		SKUs []catalog.SKU `json:"skus"`
	}
	if err := c.do(ctx, http.MethodGet, "/skus", params, nil, "", &body); err != nil {
		return nil, err
	}
	return body.SKUs, nil
}

func (c *Client) CreateSKU(ctx context.Context, s catalog.NewSKU) (catalog.SKU, error) {
	var out catalog.SKU
	err := c.do(ctx, http.MethodPost, "/skus", nil, s.Normalize(), s.RequestKey, &out)
	return out, err
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, in any, requestKey string, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestKey != "" {
		req.Header.Set("Idempotency-Key", requestKey)
	}
	token, err := c.creds(ctx)
	if err != nil {
		return fmt.Errorf("api: credentials: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", slog.String("method", method), slog.String("path", path), slog.Any("err", err))
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("request", slog.String("method", method), slog.String("path", path),
		slog.Int("status", resp.StatusCode), slog.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil {
		eb.Error = strings.TrimSpace(string(raw))
	}
	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest && len(eb.Fields) > 0:
		return &catalog.ValidationError{Fields: eb.Fields}
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", catalog.ErrNotFound, eb.Error)
	}
	return &Error{Status: resp.StatusCode, Message: eb.Error}
}

// IsUnauthorized reports whether err is a 401 or 403 from the backend.
func IsUnauthorized(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && (ae.Status == http.StatusUnauthorized || ae.Status == http.StatusForbidden)
}
