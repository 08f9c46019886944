package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 32 << 20

// Observer receives one callback per completed backend request. Status is 0
// for transport failures.
type Observer interface {
	ObserveRequest(endpoint string, status int, duration time.Duration)
}

// Client talks to the log-analysis backend. The base URL is fixed at
// construction; there is no package-level default client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
	observer   Observer
	requestID  func() string
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithLogger attaches a logger for request tracing
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithObserver reports request outcomes, e.g. to Prometheus collectors
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient constructs a client targeting baseURL. A zero timeout leaves the
// transport without a deadline; callers may still bound requests via ctx.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        zap.NewNop(),
		requestID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend origin
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// resolvePath joins p onto the base URL, keeping a trailing slash when p has
// one (FastAPI treats /anomalies and /anomalies/ as different routes).
func (c *Client) resolvePath(p string) string {
	if c.baseURL == "" {
		return ""
	}
	cleaned := "/" + strings.TrimLeft(p, "/")
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + cleaned
	}
	joined := path.Join(u.Path, cleaned)
	if strings.HasSuffix(cleaned, "/") && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}
	u.Path = joined
	return u.String()
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

// do executes req and returns the response body for 2xx responses
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	if c == nil {
		return nil, errors.New("api client not initialised")
	}
	if c.baseURL == "" {
		return nil, &Error{Method: req.method, Path: req.path, Err: errors.New("backend base URL not configured")}
	}

	endpoint := c.resolvePath(req.path)
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, req.body)
	if err != nil {
		return nil, &Error{Method: req.method, Path: req.path, Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	reqID := c.requestID()
	httpReq.Header.Set("X-Request-ID", reqID)

	log := c.log.With(
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.String("request_id", reqID),
	)
	log.Debug("backend request")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(req.path, 0, time.Since(start))
		log.Debug("backend request failed", zap.Error(err))
		return nil, &Error{Method: req.method, Path: req.path, Err: err}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	c.observe(req.path, resp.StatusCode, elapsed)
	log.Debug("backend response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
		zap.Int("bytes", len(body)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Method:  req.method,
			Path:    req.path,
			Status:  resp.StatusCode,
			Message: serverMessage(body),
			Err:     fmt.Errorf("backend returned %s", resp.Status),
		}
	}
	if readErr != nil {
		return nil, &Error{Method: req.method, Path: req.path, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", readErr)}
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, p string, query url.Values) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodGet, path: p, query: query})
}

func (c *Client) post(ctx context.Context, p string) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodPost, path: p})
}

func (c *Client) observe(endpoint string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(endpoint, status, d)
	}
}
