// Package httpclient is the single point of outbound HTTP configuration for
// the backend: base URL, timeout, bearer-token injection and the global
// handling of 401 responses.
package httpclient

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

	"github.com/google/uuid"
	"github.com/jonathan/teammatch/internal/logging"
	"github.com/jonathan/teammatch/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 10 * time.Second

// DefaultLoginPath is where a 401 redirects.
const DefaultLoginPath = "/login"

// Header names.
const (
	HeaderAuthorization = "Authorization"
	HeaderActor         = "X-Username"
	HeaderRequestID     = "X-Request-ID"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 1 << 20

// Navigator receives the redirect issued on a 401.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// Options configures the client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// LegacyActorHeader adds X-Username, taken from the stored session, to
	// authenticated requests for backends that still read it.
	LegacyActorHeader bool
	LoginPath         string
	Registerer        prometheus.Registerer
	HTTPClient        *http.Client
}

// Client issues JSON requests against the backend.
type Client struct {
	baseURL   string
	http      *http.Client
	store     *storage.Local
	nav       Navigator
	logger    *zap.Logger
	metrics   *metrics
	actor     bool
	loginPath string
}

// New builds a client. store supplies the bearer token and is cleared on 401;
// nav may be nil.
func New(opts Options, store *storage.Local, nav Navigator, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}
	if store == nil {
		return nil, fmt.Errorf("a session store is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.LoginPath == "" {
		opts.LoginPath = DefaultLoginPath
	}
	logger = logging.OrNop(logger)

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	clone := *httpClient
	clone.Timeout = opts.Timeout

	c := &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		http:      &clone,
		store:     store,
		nav:       nav,
		logger:    logger,
		actor:     opts.LegacyActorHeader,
		loginPath: opts.LoginPath,
	}
	if opts.Registerer != nil {
		m, err := newMetrics(opts.Registerer)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		c.metrics = m
	}
	return c, nil
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOption adjusts a single request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	query   url.Values
	headers http.Header
}

// WithQuery appends query parameters.
func WithQuery(q url.Values) RequestOption {
	return func(rc *requestConfig) {
		for k, vs := range q {
			for _, v := range vs {
				rc.query.Add(k, v)
			}
		}
	}
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) {
		rc.headers.Set(key, value)
	}
}

// Get issues a GET and decodes the response into out (which may be nil).
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post issues a POST with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put issues a PUT with body encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, body, out, opts...)
}

// Patch issues a PATCH with body encoded as JSON.
func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPatch, path, body, out, opts...)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out, opts...)
}

// Do performs one request attempt. There is no retry.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	rc := &requestConfig{query: url.Values{}, headers: http.Header{}}
	for _, opt := range opts {
		opt(rc)
	}

	req, err := c.newRequest(ctx, method, path, body, rc)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(method, "error", time.Since(start))
		return &TransportError{Method: method, Path: path, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	elapsed := time.Since(start)
	c.metrics.observe(method, strconv.Itoa(resp.StatusCode), elapsed)
	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", elapsed),
		zap.String("request_id", req.Header.Get(HeaderRequestID)),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx)
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, Path: path, Cause: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, rc *requestConfig) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := c.baseURL + path
	if len(rc.query) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		target += sep + rc.query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: failed to encode request: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to create request: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(HeaderRequestID, uuid.NewString())

	if token := c.store.Value(ctx, storage.KeyAccessToken); token != "" {
		req.Header.Set(HeaderAuthorization, "Bearer "+token)
		if c.actor {
			if username := c.store.Value(ctx, storage.KeyUsername); username != "" {
				req.Header.Set(HeaderActor, username)
			}
		}
	}

	for k, vs := range rc.headers {
		// The actor header only ever comes from the session.
		if http.CanonicalHeaderKey(k) == HeaderActor {
			continue
		}
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

// handleUnauthorized clears the whole store and redirects to login. It runs
// even when the caller's context is already cancelled.
func (c *Client) handleUnauthorized(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("failed to clear session after 401", zap.Error(err))
	}
	c.logger.Info("session rejected by backend, redirecting to login")
	if c.nav != nil {
		c.nav.Navigate(ctx, c.loginPath)
	}
}

func errorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(data) > 0 {
		var body struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(data, &body) == nil {
			if body.Message != "" {
				return body.Message
			}
			if body.Error != "" {
				return body.Error
			}
		}
		text := strings.TrimSpace(string(data))
		if text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
			return text
		}
	}
	return http.StatusText(resp.StatusCode)
}

// IsCanceled reports whether err came from a cancelled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
