package edgarsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/edgarsearch/internal/app"
	"github.com/kailas-cloud/edgarsearch/internal/domain/entity"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/progress"
	"github.com/kailas-cloud/edgarsearch/internal/domain/query"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/result"
)

// Internal interfaces for substitution in tests.
type orchestratorUseCase interface {
	Orchestrate(ctx context.Context, q string, qc *query.Context) query.Result
}

type extractorUseCase interface {
	Extract(q string) entity.Entities
}

type classifierUseCase interface {
	Classify(q string, qc *query.Context) (query.Classification, error)
}

type discoveryUseCase interface {
	Discover(ctx context.Context, p request.Discovery, report progress.Func) ([]filing.Discovered, error)
}

type searchUseCase interface {
	Search(ctx context.Context, p request.Search, report progress.Func) ([]result.Result, error)
}

type thematicUseCase interface {
	Search(ctx context.Context, p request.Thematic, report progress.Func) (result.Thematic, error)
}

// Client is the edgarsearch SDK entry point. Safe for concurrent use.
type Client struct {
	orchestrator orchestratorUseCase
	extractor    extractorUseCase
	classifier   classifierUseCase
	discovery    discoveryUseCase
	search       searchUseCase
	thematic     thematicUseCase
	health       healthUseCase
	close        func()
	obs          *observer
}

// New creates a Client. When a cache is configured, the provided context bounds the
// initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	cfg.engine.ApplyDefaults()
	if err := validate(cfg); err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	engine, err := app.Build(ctx, cfg.engine, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("edgarsearch: %w", err)
	}

	return &Client{
		orchestrator: engine.Orchestrator,
		extractor:    engine.Extractor,
		classifier:   engine.Classifier,
		discovery:    engine.Discovery,
		search:       engine.Search,
		thematic:     engine.Thematic,
		health:       engine.Health,
		close:        engine.Close,
		obs:          obs,
	}, nil
}

func validate(cfg *clientConfig) error {
	e := cfg.engine.EDGAR
	if e.UserAgent == "" && e.Contact == "" {
		return errors.New("edgarsearch: contact address required (use WithContact or WithUserAgent)")
	}
	if e.RequestsPerSecond > 10 {
		return fmt.Errorf("edgarsearch: rate %v exceeds the SEC limit of 10 requests per second", e.RequestsPerSecond)
	}
	if cfg.engine.Cache.Enabled() && len(cfg.engine.Cache.Addrs) == 0 {
		return errors.New("edgarsearch: cache address required")
	}
	return nil
}

// Close releases the cache connection, if any.
func (c *Client) Close() {
	if c.close != nil {
		c.close()
	}
}

// Query answers a free-text question. It never fails outright: errors are reported in
// the result's metadata with Success=false and whatever partial data completed.
func (c *Client) Query(ctx context.Context, q string, qc *QueryContext) QueryResult {
	start := time.Now()
	res := c.orchestrator.Orchestrate(ctx, q, qc)

	var err error
	if !res.Success {
		err = fmt.Errorf("query failed with %d errors", len(res.Metadata.Errors))
	}
	c.obs.observe("query", start, err)
	return res
}

// Extract returns the entities found in q. It does not touch the network.
func (c *Client) Extract(q string) Entities {
	return c.extractor.Extract(q)
}

// Classify returns how q would be routed. It does not touch the network.
func (c *Client) Classify(q string, qc *QueryContext) (_ Classification, err error) {
	start := time.Now()
	defer func() { c.obs.observe("classify", start, err) }()

	cls, err := c.classifier.Classify(q, qc)
	if err != nil {
		return Classification{}, fmt.Errorf("classify: %w", err)
	}
	return cls, nil
}

// Discover lists recent filings across issuers.
func (c *Client) Discover(ctx context.Context, p DiscoveryParams, report ProgressFunc) (_ []Filing, err error) {
	start := time.Now()
	defer func() { c.obs.observe("discover", start, err) }()

	docs, err := c.discovery.Discover(ctx, p, report)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	return docs, nil
}

// Search scores passages of the given filings against a keyword query.
func (c *Client) Search(ctx context.Context, p SearchParams, report ProgressFunc) (_ []Passage, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	hits, err := c.search.Search(ctx, p, report)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return hits, nil
}

// Thematic discovers filings for a theme and searches them in one call.
func (c *Client) Thematic(ctx context.Context, p ThematicParams, report ProgressFunc) (_ ThematicResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("thematic", start, err) }()

	out, err := c.thematic.Search(ctx, p, report)
	if err != nil {
		return ThematicResult{}, fmt.Errorf("thematic: %w", err)
	}
	return out, nil
}
