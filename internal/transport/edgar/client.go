// Package edgar is the Document Access Client for SEC EDGAR.
package edgar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/edgarsearch/internal/domain"
	"github.com/kailas-cloud/edgarsearch/internal/metrics"
)

// Defaults for the public SEC endpoints.
const (
	DefaultBaseURL = "https://www.sec.gov"
	DefaultDataURL = "https://data.sec.gov"
	// DefaultRequestsPerSecond is SEC's fair-access limit.
	DefaultRequestsPerSecond = 10
	DefaultTimeout           = 30 * time.Second
	// maxBodyBytes caps a single response read.
	maxBodyBytes = 64 << 20
)

// Listing modes.
const (
	ListingSubmissions = "submissions"
	ListingAtom        = "atom"
)

// Limiter paces outbound requests.
type Limiter interface {
	Wait(ctx context.Context) error
}

// NewLimiter returns a token bucket allowing rps requests per second with the given burst.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Config holds the EDGAR client settings.
type Config struct {
	BaseURL    string
	DataURL    string
	UserAgent  string
	Listing    string
	Timeout    time.Duration
	Limiter    Limiter
	HTTPClient *http.Client
	Logger     *zap.Logger
	Now        func() time.Time
}

// Client talks to EDGAR over HTTP. Safe for concurrent use.
type Client struct {
	http      *http.Client
	baseURL   string
	dataURL   string
	userAgent string
	listing   string
	limiter   Limiter
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	tickers *tickerIndex
}

// NewClient creates an EDGAR client.
func NewClient(cfg *Config) *Client {
	c := &Client{
		http:      cfg.HTTPClient,
		baseURL:   cfg.BaseURL,
		dataURL:   cfg.DataURL,
		userAgent: cfg.UserAgent,
		listing:   cfg.Listing,
		limiter:   cfg.Limiter,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.dataURL == "" {
		c.dataURL = DefaultDataURL
	}
	if c.listing == "" {
		c.listing = ListingSubmissions
	}
	if c.limiter == nil {
		c.limiter = NewLimiter(DefaultRequestsPerSecond, 1)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// get fetches url through the limiter and maps failures onto domain errors.
func (c *Client) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, endpoint, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", endpoint, domain.ErrUpstream, err)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, url string) (*http.Response, error) {
	start := time.Now()
	defer func() {
		metrics.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "canceled").Inc()
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/html, application/atom+xml, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", endpoint, err)
		}
		return nil, fmt.Errorf("%s: %w: %w", endpoint, domain.ErrUpstream, err)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 300 {
		return resp, nil
	}
	_ = resp.Body.Close()
	c.logger.Debug("edgar request failed",
		zap.String("endpoint", endpoint),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
	)
	return nil, statusError(endpoint, resp.StatusCode)
}

// statusError maps an HTTP status to a domain error.
func statusError(endpoint string, status int) error {
	var wrap error
	switch {
	case status == http.StatusNotFound:
		wrap = domain.ErrNotFound
	case status == http.StatusTooManyRequests:
		wrap = domain.ErrRateLimited
	default:
		wrap = domain.ErrUpstream
	}
	return fmt.Errorf("%s returned %d: %w", endpoint, status, wrap)
}

// Ping checks that EDGAR answers with the ticker file.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodHead, "tickers", c.baseURL+tickersPath)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}
