// Package api is the HTTP client for the FitCompare backend. It resolves the
// base URL and prefix, attaches the bearer token from durable storage to every
// request, and turns non-2xx responses into *APIError values.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atinyakov/fitcompare/internal/client/storage"
	"github.com/atinyakov/fitcompare/internal/logger"
	"go.uber.org/zap"
)

// Config describes where the backend lives.
type Config struct {
	// BaseURL is the backend origin. Trailing slashes are ignored.
	BaseURL string
	// Prefix is the API path prefix, e.g. "/api". A leading slash is added when missing.
	Prefix string
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
}

// TokenSource yields the current access token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// StoredToken reads the token from durable storage on every call.
type StoredToken struct {
	Store storage.Store
}

// Token implements TokenSource.
func (s StoredToken) Token() (string, bool) {
	if s.Store == nil {
		return "", false
	}
	tok, ok := s.Store.Get(storage.TokenKey)
	return tok, ok && tok != ""
}

type ctxKey string

const tokenKey ctxKey = "token"

// WithToken returns a context whose requests authenticate with token instead of
// the stored one. Used while a freshly issued token is not yet persisted.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func tokenFromContext(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(tokenKey).(string)
	return tok, ok && tok != ""
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = logger.OrNop(log) }
}

// Client talks to the backend REST API.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	log    *zap.Logger
}

// NewClient builds a Client. tokens may be nil for anonymous use.
func NewClient(cfg Config, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		base:   ResolveBaseURL(cfg.BaseURL, cfg.Prefix),
		http:   &http.Client{Timeout: cfg.Timeout},
		tokens: tokens,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the resolved base URL including the prefix.
func (c *Client) BaseURL() string {
	return c.base
}

// ResolveBaseURL strips trailing slashes from base and joins a prefix that carries
// exactly one leading slash and no trailing slash.
func ResolveBaseURL(base, prefix string) string {
	base = strings.TrimRight(base, "/")
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return base
	}
	return base + "/" + prefix
}

// APIError is a non-2xx response.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Detail is the server-provided human-readable message, possibly empty.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// UserMessage returns the server detail carried by err, or fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// do sends a request and decodes a JSON response into out (when out is non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok, ok := tokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	} else if c.tokens != nil {
		if tok, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, nil, body, contentType, out)
}

// decodeError reads the FastAPI-style {"detail": ...} body. detail may be a
// string or a list of validation errors carrying "msg".
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.Detail) == 0 {
		return apiErr
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		apiErr.Detail = text
		return apiErr
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil && len(items) > 0 {
		apiErr.Detail = items[0].Msg
	}
	return apiErr
}
