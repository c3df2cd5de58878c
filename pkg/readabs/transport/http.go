package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single request when Config.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// DefaultMaxConcurrency is the batch fan-out limit when Config.MaxConcurrency is unset.
const DefaultMaxConcurrency = 8

// Config configures the HTTP transport.
type Config struct {
	// Timeout bounds each request. Ignored when Client is set.
	Timeout time.Duration
	// UserAgent is sent with every request when non-empty.
	UserAgent string
	// MaxConcurrency limits in-flight requests within one batch.
	MaxConcurrency int
	// RateLimit caps requests per second across all batches (0 means unlimited).
	RateLimit float64
	// Client overrides the HTTP client.
	Client *http.Client
	// Logger receives request-level debug logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// HTTP is a Transport backed by net/http. One attempt is made per request.
type HTTP struct {
	client         *http.Client
	userAgent      string
	maxConcurrency int
	limiter        *rate.Limiter
	logger         *slog.Logger
}

// NewHTTP creates an HTTP transport.
func NewHTTP(cfg Config) *HTTP {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), maxConcurrency)
	}

	return &HTTP{
		client:         client,
		userAgent:      cfg.UserAgent,
		maxConcurrency: maxConcurrency,
		limiter:        limiter,
		logger:         logger,
	}
}

// FetchText implements Transport.
func (h *HTTP) FetchText(ctx context.Context, url string) (string, error) {
	data, err := h.get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FetchTextMany implements Transport.
func (h *HTTP) FetchTextMany(ctx context.Context, urls []string) ([]string, error) {
	return Gather(ctx, urls, h.maxConcurrency, h.FetchText)
}

// FetchBytes implements Transport.
func (h *HTTP) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	return h.get(ctx, url)
}

func (h *HTTP) get(ctx context.Context, url string) ([]byte, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, &Error{URL: url, Err: fmt.Errorf("rate limiter wait: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &Error{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}

	h.logger.Debug("fetched",
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start),
	)
	return data, nil
}
