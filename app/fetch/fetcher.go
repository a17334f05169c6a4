// Package fetch performs bounded-time HTTP GET requests against upstream
// content providers and classifies their failures.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "AI News Comb/1.0"
	MaxBodySize      = 10 << 20
)

// Params are query parameters; values are stringified with fmt.Sprint.
type Params map[string]any

type Fetcher struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	metrics    *Metrics
}

type Option func(*Fetcher)

func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) { f.httpClient = client }
}

func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) { f.timeout = timeout }
}

func WithUserAgent(userAgent string) Option {
	return func(f *Fetcher) { f.userAgent = userAgent }
}

func WithMetrics(metrics *Metrics) Option {
	return func(f *Fetcher) { f.metrics = metrics }
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchText returns the response body as a string.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string, params Params) (string, error) {
	data, err := f.fetch(ctx, rawURL, params)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FetchJSON decodes the response body into out.
func (f *Fetcher) FetchJSON(ctx context.Context, rawURL string, params Params, out any) error {
	data, err := f.fetch(ctx, rawURL, params)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &UnexpectedError{URL: rawURL, Err: fmt.Errorf("failed to decode JSON: %w", err)}
	}

	return nil
}

// BuildURL appends params to rawURL. Without params the URL is returned
// verbatim.
func BuildURL(rawURL string, params Params) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	query := u.Query()
	for key, value := range params {
		query.Set(key, fmt.Sprint(value))
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, params Params) ([]byte, error) {
	target, err := BuildURL(rawURL, params)
	if err != nil {
		return nil, &UnexpectedError{URL: rawURL, Err: err}
	}

	host := hostOf(target)
	start := time.Now()

	data, err := f.do(ctx, target)

	elapsed := time.Since(start)
	f.metrics.observe(host, outcomeOf(err), elapsed.Seconds())

	if err != nil {
		slog.Debug("Upstream request failed", "url", target, "duration", elapsed, "error", err)
		return nil, err
	}

	slog.Debug("Upstream request completed", "url", target, "duration", elapsed, "bytes", len(data))
	return data, nil
}

func (f *Fetcher) do(ctx context.Context, target string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &UnexpectedError{URL: target, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, f.classify(timeoutCtx, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: target, Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, f.classify(timeoutCtx, target, fmt.Errorf("failed to read response body: %w", err))
	}
	if len(data) > MaxBodySize {
		return nil, &UnexpectedError{URL: target, Err: fmt.Errorf("response body exceeds %d bytes", MaxBodySize)}
	}

	return data, nil
}

func (f *Fetcher) classify(ctx context.Context, target string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{URL: target, Timeout: f.timeout}
	}
	return &UnexpectedError{URL: target, Err: err}
}

func hostOf(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

func outcomeOf(err error) string {
	var statusErr *StatusError
	var timeoutErr *TimeoutError

	switch {
	case err == nil:
		return outcomeOK
	case errors.As(err, &statusErr):
		return outcomeStatus
	case errors.As(err, &timeoutErr):
		return outcomeTimeout
	default:
		return outcomeUnexpected
	}
}
