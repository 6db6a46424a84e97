// Package mychem is a thin client for the MyChem.info REST API.
// It owns the transport concerns the tools should not care about:
// retry with backoff on transient failures, identifier batching,
// client-side rate limiting and optional response caching.
package mychem

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/chembridge/mychem-mcp/cache"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	resty "github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var logger = xlog.NewPackageLogger("github.com/chembridge/mychem-mcp", "mychem")

const (
	// DefaultBaseURL is the public MyChem.info v1 endpoint.
	DefaultBaseURL = "https://mychem.info/v1"

	// MaxBatchSize is the upstream limit on IDs per POST request.
	// Longer lists are chunked by the client.
	MaxBatchSize = 1000

	defaultTimeout = 30 * time.Second
	defaultRetries = 3
)

// Config controls the client transport.
type Config struct {
	// BaseURL of the MyChem.info API, DefaultBaseURL when empty.
	BaseURL string
	// Timeout per HTTP request.
	Timeout time.Duration
	// Retries on transient failures (network errors and 5xx).
	Retries int
	// RateLimit is the max requests per second, 0 disables limiting.
	RateLimit int
}

// Option mutates the client at construction time.
type Option func(*Client)

// WithCache enables response caching for GET requests.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(cl *Client) {
		cl.rc = newRestyClient(hc, cl.cfg)
	}
}

// Client talks to the MyChem.info API.
type Client struct {
	cfg      Config
	rc       *resty.Client
	limiter  *rate.Limiter
	cache    cache.Cache
	cacheTTL time.Duration
}

// New creates a client.
func New(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = defaultRetries
	}

	c := &Client{
		cfg: cfg,
		rc:  newRestyClient(nil, cfg),
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newRestyClient(hc *http.Client, cfg Config) *resty.Client {
	var rc *resty.Client
	if hc != nil {
		rc = resty.NewWithClient(hc)
	} else {
		rc = resty.New()
	}
	return rc.
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
}

// Get issues a GET request against the given endpoint and returns the raw
// JSON body. Responses are served from the cache when one is configured.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, error) {
	key := cacheKey(http.MethodGet, endpoint, params)
	if c.cache != nil {
		if raw, ok := c.cache.Get(ctx, key); ok {
			return raw, nil
		}
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	rid := requestID()
	logger.ContextKV(ctx, xlog.DEBUG, "req", rid, "method", "GET", "endpoint", endpoint)

	res, err := c.rc.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/" + endpoint)
	if err != nil {
		logger.ContextKV(ctx, xlog.WARNING, "req", rid, "endpoint", endpoint, "err", err.Error())
		return nil, errors.WithMessagef(ErrUnavailable, "GET %s: %s", endpoint, err.Error())
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return nil, upstreamError("GET", endpoint, res)
	}

	body := json.RawMessage(res.Body())
	if c.cache != nil {
		c.cache.Set(ctx, key, body, c.cacheTTL)
	}
	return body, nil
}

// Post issues a POST request with a JSON body against the given endpoint.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	rid := requestID()
	logger.ContextKV(ctx, xlog.DEBUG, "req", rid, "method", "POST", "endpoint", endpoint)

	res, err := c.rc.R().
		SetContext(ctx).
		SetBody(body).
		Post("/" + endpoint)
	if err != nil {
		logger.ContextKV(ctx, xlog.WARNING, "req", rid, "endpoint", endpoint, "err", err.Error())
		return nil, errors.WithMessagef(ErrUnavailable, "POST %s: %s", endpoint, err.Error())
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return nil, upstreamError("POST", endpoint, res)
	}
	return json.RawMessage(res.Body()), nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.WithMessage(ErrUnavailable, err.Error())
	}
	return nil
}

func upstreamError(method, endpoint string, res *resty.Response) error {
	body := string(res.Body())
	if len(body) > 512 {
		body = body[:512]
	}
	return errors.WithMessagef(ErrUpstream, "%s %s: HTTP %d: %s", method, endpoint, res.StatusCode(), body)
}

func cacheKey(method, endpoint string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(method)
	sb.WriteByte('|')
	sb.WriteString(endpoint)
	for _, k := range keys {
		sb.WriteByte('|')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
	}
	return cache.Key(sb.String())
}

func requestID() string {
	return uuid.NewString()[:8]
}

// escapePath makes a caller-supplied identifier safe in a URL path.
func escapePath(id string) string {
	return url.PathEscape(id)
}
