package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/deusflow/okolica/internal/metrics"
	"github.com/deusflow/okolica/internal/ratelimit"
	"github.com/deusflow/okolica/internal/retry"
)

const (
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	accept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguage = "ru-RU,ru;q=0.9,en;q=0.8"
)

// ErrStatus is returned by Body when the server answered with a non-2xx status.
var ErrStatus = errors.New("unexpected HTTP status")

// Getter is the fetch capability consumed by the source adapters.
type Getter interface {
	Fetch(ctx context.Context, rawURL string, params url.Values) ([]byte, int, error)
}

// Options configures a Client.
type Options struct {
	Timeout time.Duration
	Retries int // additional attempts after the first one

	// Delays between attempts. Zero values fall back to the defaults.
	UnavailableBackoff time.Duration // multiplied by the attempt number on 503
	NetworkBackoff     time.Duration // flat delay after a transport error

	Limiter *ratelimit.HostLimiter
}

// Client performs GET requests with browser headers, a timeout and retries.
type Client struct {
	http *http.Client
	opts Options

	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a Client. Retries < 0 is treated as 0.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.UnavailableBackoff <= 0 {
		opts.UnavailableBackoff = 1500 * time.Millisecond
	}
	if opts.NetworkBackoff <= 0 {
		opts.NetworkBackoff = time.Second
	}
	return &Client{
		http:  &http.Client{Timeout: opts.Timeout},
		opts:  opts,
		sleep: retry.Sleep,
	}
}

// errUnavailable marks a 503 answer that is worth another attempt.
var errUnavailable = errors.New("service unavailable")

// Fetch downloads rawURL with params appended to its query string. It returns the body and
// status of the last response received. An error is returned only when no response could be
// obtained at all; non-2xx statuses are reported through the status code.
func (c *Client) Fetch(ctx context.Context, rawURL string, params url.Values) ([]byte, int, error) {
	target, err := withParams(rawURL, params)
	if err != nil {
		return nil, 0, err
	}

	var (
		body   []byte
		status int
	)
	attempts := c.opts.Retries + 1

	cfg := retry.RetryConfig{
		MaxAttempts: attempts,
		Sleep:       c.sleep,
		DelayFor: func(attempt int, err error) time.Duration {
			if errors.Is(err, errUnavailable) {
				return time.Duration(attempt) * c.opts.UnavailableBackoff
			}
			return c.opts.NetworkBackoff
		},
	}

	err = retry.WithRetry(ctx, cfg, func() error {
		b, code, err := c.once(ctx, target)
		if err != nil {
			metrics.FetchRequestsTotal.WithLabelValues("error").Inc()
			slog.Debug("fetch failed", "url", target, "error", err)
			return err
		}
		metrics.FetchRequestsTotal.WithLabelValues(strconv.Itoa(code)).Inc()
		body, status = b, code
		if code == http.StatusServiceUnavailable {
			slog.Debug("fetch got 503", "url", target)
			return errUnavailable
		}
		return nil
	})

	if err != nil && !errors.Is(err, errUnavailable) {
		return nil, 0, fmt.Errorf("GET %s: %w", target, err)
	}
	return body, status, nil
}

func (c *Client) once(ctx context.Context, target string) ([]byte, int, error) {
	if err := c.opts.Limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			slog.Debug("failed to close response body", "error", err)
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// Body fetches rawURL and converts any non-2xx status into ErrStatus.
func Body(ctx context.Context, g Getter, rawURL string, params url.Values) ([]byte, error) {
	body, status, err := g.Fetch(ctx, rawURL, params)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w %d for %s", ErrStatus, status, rawURL)
	}
	return body, nil
}

func withParams(rawURL string, params url.Values) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
