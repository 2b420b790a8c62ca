package edgarsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/edgarsearch/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	engine config.Config

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithContact sets the contact address sent to SEC in the User-Agent. Required
// unless WithUserAgent is given.
func WithContact(email string) Option {
	return optionFunc(func(c *clientConfig) {
		c.engine.EDGAR.Contact = email
	})
}

// WithUserAgent replaces the whole User-Agent header sent to SEC.
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) {
		c.engine.EDGAR.UserAgent = ua
	})
}

// WithRateLimit sets the EDGAR request rate. SEC allows at most 10 requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.engine.EDGAR.RequestsPerSecond = rps
		c.engine.EDGAR.Burst = burst
	})
}

// WithAtomListing lists filings from the browse-edgar Atom feed instead of the
// submissions JSON API.
func WithAtomListing() Option {
	return optionFunc(func(c *clientConfig) {
		c.engine.EDGAR.Listing = "atom"
	})
}

// WithBaseURLs points the client at other EDGAR hosts, e.g. a mirror or a test server.
func WithBaseURLs(baseURL, dataURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.engine.EDGAR.BaseURL = baseURL
		c.engine.EDGAR.DataURL = dataURL
	})
}

// WithValkeyCache caches EDGAR responses in a Valkey instance.
func WithValkeyCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.engine.Cache.Driver = config.DriverValkey
		c.engine.Cache.Addrs = []string{addr}
		c.engine.Cache.Password = password
	})
}

// WithRedisCache caches EDGAR responses in a Redis instance.
func WithRedisCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.engine.Cache.Driver = config.DriverRedis
		c.engine.Cache.Addrs = []string{addr}
		c.engine.Cache.Password = password
	})
}

// WithCacheTTL sets how long cached EDGAR responses live. Default: 5 minutes.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.engine.Cache.TTLSec = int(ttl / time.Second)
	})
}

// WithConcurrency sets how many issuers or documents are fetched at once and the
// pause between two dispatches. Default: 1 worker, no pause.
func WithConcurrency(workers int, delay time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.engine.Engine.MaxConcurrency = workers
		c.engine.Engine.InterItemDelayMS = int(delay / time.Millisecond)
	})
}

// WithKnowledgeFile merges a YAML file of issuers, industries and topics over the
// built-in tables.
func WithKnowledgeFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.engine.Knowledge.Path = path
	})
}

// WithHybridConcurrent runs the company and thematic halves of hybrid queries in parallel.
func WithHybridConcurrent() Option {
	return optionFunc(func(c *clientConfig) {
		c.engine.Engine.HybridConcurrent = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
