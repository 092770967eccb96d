// Package explorer fetches transaction history and verification status from
// Etherscan-compatible block explorers and from Sourcify.
package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pendergraft/trustscore/internal/observability/metrics"
)

// Client performs GET requests and decodes JSON bodies, retrying transient
// transport failures with exponential backoff.
type Client struct {
	httpClient      *http.Client
	maxRetries      uint64
	initialInterval time.Duration
	logger          *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithMaxRetries sets how many times a transient failure is retried.
// Zero disables retries.
func WithMaxRetries(n int) Option {
	return func(client *Client) {
		if n < 0 {
			n = 0
		}
		client.maxRetries = uint64(n)
	}
}

// WithInitialBackoff sets the first retry delay.
func WithInitialBackoff(d time.Duration) Option {
	return func(client *Client) {
		client.initialInterval = d
	}
}

// WithLogger sets the logger used for retry notices.
func WithLogger(l *slog.Logger) Option {
	return func(client *Client) {
		client.logger = l
	}
}

// New creates a new explorer HTTP client
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxRetries:      2,
		initialInterval: 200 * time.Millisecond,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchJSON GETs rawURL and decodes the body into a T.
//
// Non-2xx responses fail with a KindTransport *Error carrying the status code
// and text. The inner status/message envelope of explorer responses is not
// inspected here.
func FetchJSON[T any](ctx context.Context, c *Client, rawURL string) (T, error) {
	var v T
	if err := c.GetJSON(ctx, rawURL, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// GetJSON is the non-generic form of FetchJSON.
func (c *Client) GetJSON(ctx context.Context, rawURL string, dst any) error {
	endpoint := endpointLabel(rawURL)

	op := func() error {
		err := c.once(ctx, rawURL, dst)
		if err == nil {
			return nil
		}
		var e *Error
		if ctx.Err() == nil && errors.As(err, &e) && e.retryable() {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("retrying explorer request",
			"request_id", middleware.GetReqID(ctx),
			"endpoint", endpoint,
			"wait", wait,
			"error", err,
		)
	}

	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx), notify)
	if err != nil {
		var e *Error
		if !errors.As(err, &e) {
			// backoff reports context cancellation on its own
			err = &Error{Kind: KindTransport, URL: redact(rawURL), Err: err}
		}
		metrics.ExplorerRequest(endpoint, KindOf(err).String())
		return err
	}

	metrics.ExplorerRequest(endpoint, "ok")
	return nil
}

func (c *Client) once(ctx context.Context, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &Error{Kind: KindTransport, URL: redact(rawURL), Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, URL: redact(rawURL), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			Kind:       KindTransport,
			URL:        redact(rawURL),
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &Error{Kind: KindDecode, URL: redact(rawURL), Err: err}
	}
	return nil
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxInterval = 2 * time.Second
	// the retry count and the caller's context bound the total time
	b.MaxElapsedTime = 0
	return b
}

// statusText strips the numeric code from resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// endpointLabel names a request for metrics without leaking addresses.
func endpointLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	if action := u.Query().Get("action"); action != "" {
		return action
	}
	return path.Base(u.Path)
}
