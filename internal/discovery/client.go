package discovery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/kikitori/internal/cache"
	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/time/rate"
)

// ClientConfig holds configuration for the shared HTTP client.
type ClientConfig struct {
	Timeout time.Duration
	// RequestsPerMinute throttles outgoing requests, 0 disables throttling.
	RequestsPerMinute int
	// BodyCacheSize bounds the in-memory body cache in bytes, 0 disables it.
	BodyCacheSize int64
	UserAgent     string
	// MaxBodySize caps a single response body.
	MaxBodySize int64
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:           15 * time.Second,
		RequestsPerMinute: 120,
		BodyCacheSize:     32 * 1024 * 1024,
		UserAgent:         "kikitori/1.0",
		MaxBodySize:       20 * 1024 * 1024,
	}
}

// Client is the HTTP client every remote handler shares. Responses are
// transparently decompressed, throttled and cached per session.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	bodies    *cache.BodyCache
	userAgent string
	maxBody   int64
	log       *log.Logger
}

// NewClient creates a Client.
func NewClient(config ClientConfig, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = DefaultClientConfig().MaxBodySize
	}

	c := &Client{
		http: &http.Client{
			Timeout:   config.Timeout,
			Transport: gzhttp.Transport(http.DefaultTransport),
		},
		userAgent: config.UserAgent,
		maxBody:   config.MaxBodySize,
		log:       logger.WithPrefix("http"),
	}
	if config.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 4)
	}
	if config.BodyCacheSize > 0 {
		c.bodies = cache.NewBodyCache(config.BodyCacheSize)
	}
	return c
}

// BodyStats returns body cache statistics, zero when caching is off.
func (c *Client) BodyStats() cache.BodyStats {
	if c.bodies == nil {
		return cache.BodyStats{}
	}
	return c.bodies.Stats()
}

// Get fetches rawURL, serving repeated requests from the body cache.
func (c *Client) Get(ctx context.Context, rawURL string) (cache.Body, error) {
	return c.cached(ctx, "GET "+rawURL, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	})
}

// PostForm posts form to rawURL. Identical posts are served from the body
// cache.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) (cache.Body, error) {
	encoded := form.Encode()
	return c.cached(ctx, "POST "+rawURL+"?"+encoded, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
}

// FetchAudio downloads an audio file.
func (c *Client) FetchAudio(ctx context.Context, rawURL string) ([]byte, string, error) {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}
	return body.Data, body.ContentType, nil
}

func (c *Client) cached(ctx context.Context, key string, build func() (*http.Request, error)) (cache.Body, error) {
	if c.bodies != nil {
		if body, ok := c.bodies.Get(key); ok {
			return body, nil
		}
	}

	req, err := build()
	if err != nil {
		return cache.Body{}, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return cache.Body{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return cache.Body{}, &StatusError{URL: req.URL.String(), Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return cache.Body{}, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > c.maxBody {
		return cache.Body{}, fmt.Errorf("response from %s exceeds %d bytes", req.URL, c.maxBody)
	}

	body := cache.Body{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}
	if c.bodies != nil {
		if err := c.bodies.Put(key, body); err != nil {
			c.log.Debug("not caching body", "url", body.URL, "err", err)
		}
	}
	return body, nil
}

// do sends req after waiting for the rate limiter and retries once on 5xx
// or network errors.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
		}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.log.Debug("request", "method", req.Method, "url", req.URL)
	resp, err := c.http.Do(req)

	shouldRetry := err != nil || resp.StatusCode >= 500
	if !shouldRetry || ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
		resp.Body.Close()
	}
	c.log.Warn("retrying request", "url", req.URL, "reason", reason)

	if req.GetBody != nil {
		body, gerr := req.GetBody()
		if gerr != nil {
			return nil, gerr
		}
		req.Body = body
	}

	select {
	case <-time.After(500 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return c.http.Do(req)
}

// stream starts a request whose body the caller reads incrementally. The
// body cache is bypassed.
func (c *Client) stream(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: rawURL, Status: resp.StatusCode}
	}
	return resp, nil
}
