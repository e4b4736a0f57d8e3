// Package datasource fetches historical race entries from remote providers.
package datasource

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout           time.Duration
	MaxRetries        int
	RetryWaitMin      time.Duration
	RetryWaitMax      time.Duration
	RateLimit         float64 // requests per second
	CircuitBreakerMax int     // max consecutive failures before circuit break
}

// DefaultHTTPClientConfig returns recommended defaults
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           30 * time.Second,
		MaxRetries:        3,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      5 * time.Second,
		RateLimit:         5.0,
		CircuitBreakerMax: 5,
	}
}

// RateLimitedHTTPClient wraps retryablehttp.Client with rate limiting and a
// consecutive-failure circuit breaker.
type RateLimitedHTTPClient struct {
	client            *retryablehttp.Client
	limiter           *rate.Limiter
	circuitBreakerMax int
	logger            *logrus.Logger

	mu                sync.Mutex
	consecutiveErrors int
	isOpen            bool
	lastError         error
}

// NewRateLimitedHTTPClient creates a new rate-limited HTTP client
func NewRateLimitedHTTPClient(cfg HTTPClientConfig, logger *logrus.Logger) *RateLimitedHTTPClient {
	if logger == nil {
		logger = logrus.New()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = customRetryPolicy()
	retryClient.Logger = nil

	breaker := cfg.CircuitBreakerMax
	if breaker <= 0 {
		breaker = 1
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &RateLimitedHTTPClient{
		client:            retryClient,
		limiter:           rate.NewLimiter(limit, 1),
		circuitBreakerMax: breaker,
		logger:            logger,
	}
}

// Do executes an HTTP request with rate limiting and circuit breaker
func (c *RateLimitedHTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	if c.isOpen {
		err := c.lastError
		c.mu.Unlock()
		return nil, fmt.Errorf("circuit breaker open: %w", err)
	}
	c.mu.Unlock()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	retryReq, err := retryablehttp.FromRequest(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.client.Do(retryReq)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.consecutiveErrors++
		c.lastError = err
		if c.consecutiveErrors >= c.circuitBreakerMax {
			c.isOpen = true
			c.logger.WithError(err).WithField("failures", c.consecutiveErrors).Warn("Circuit breaker opened")
		}
		return nil, err
	}
	if resp.StatusCode < 500 {
		c.consecutiveErrors = 0
	}
	return resp, nil
}

// Get executes a GET request
func (c *RateLimitedHTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.Do(ctx, req)
}

// Close closes any resources held by the client
func (c *RateLimitedHTTPClient) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

// customRetryPolicy retries network errors, 429 and 5xx gateway responses.
func customRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true, nil
		}
		return false, nil
	}
}
