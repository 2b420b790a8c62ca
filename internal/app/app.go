// Package app wires the query engine from configuration. Both binaries share it.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/edgarsearch/internal/config"
	"github.com/kailas-cloud/edgarsearch/internal/db"
	dbRedis "github.com/kailas-cloud/edgarsearch/internal/db/redis"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/knowledge"
	"github.com/kailas-cloud/edgarsearch/internal/metrics"
	"github.com/kailas-cloud/edgarsearch/internal/repository/doccache"
	"github.com/kailas-cloud/edgarsearch/internal/transport/edgar"
	"github.com/kailas-cloud/edgarsearch/internal/usecase/batch"
	"github.com/kailas-cloud/edgarsearch/internal/usecase/classify"
	"github.com/kailas-cloud/edgarsearch/internal/usecase/discovery"
	"github.com/kailas-cloud/edgarsearch/internal/usecase/extract"
	healthuc "github.com/kailas-cloud/edgarsearch/internal/usecase/health"
	"github.com/kailas-cloud/edgarsearch/internal/usecase/orchestrator"
	"github.com/kailas-cloud/edgarsearch/internal/usecase/search"
	"github.com/kailas-cloud/edgarsearch/internal/usecase/thematic"
	"github.com/kailas-cloud/edgarsearch/internal/version"
)

// Offline holds the parts of the engine that never touch the network.
type Offline struct {
	Knowledge  *knowledge.Base
	Extractor  *extract.Extractor
	Classifier *classify.Classifier
}

// Engine is the fully wired query engine.
type Engine struct {
	Offline

	Source       *edgar.Client
	Client       filing.Client
	Discovery    *discovery.Service
	Search       *search.Service
	Thematic     *thematic.Service
	Orchestrator *orchestrator.Service
	Health       *healthuc.Service
	// Cache is nil when no cache store is configured.
	Cache *doccache.Client

	store db.Store
}

// BuildOffline loads the knowledge tables and builds extraction and classification.
func BuildOffline(cfg config.Config) (Offline, error) {
	kb := knowledge.Default()
	if cfg.Knowledge.Path != "" {
		loaded, err := knowledge.LoadFile(cfg.Knowledge.Path)
		if err != nil {
			return Offline{}, fmt.Errorf("load knowledge: %w", err)
		}
		kb = loaded
	}
	ex := extract.New(kb)
	return Offline{
		Knowledge:  kb,
		Extractor:  ex,
		Classifier: classify.New(ex, classify.WithKnowledge(kb)),
	}, nil
}

// Build assembles the engine. When the cache is enabled it connects and waits for the
// store before returning; Close releases it.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Engine, error) {
	off, err := BuildOffline(cfg)
	if err != nil {
		return nil, err
	}

	metrics.Register()

	source := edgar.NewClient(&edgar.Config{
		BaseURL:   cfg.EDGAR.BaseURL,
		DataURL:   cfg.EDGAR.DataURL,
		UserAgent: version.UserAgent(cfg.EDGAR.UserAgent, cfg.EDGAR.Contact),
		Listing:   cfg.EDGAR.Listing,
		Timeout:   time.Duration(cfg.EDGAR.TimeoutSec) * time.Second,
		Limiter:   edgar.NewLimiter(cfg.EDGAR.RequestsPerSecond, cfg.EDGAR.Burst),
		Logger:    logger,
	})

	e := &Engine{Offline: off, Source: source, Client: source}

	// Pass nil interface (not typed nil pointer!) to health when the cache is off.
	var cachePinger healthuc.CachePinger
	if cfg.Cache.Enabled() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:        cfg.Cache.Addrs,
			Password:     cfg.Cache.Password,
			WriteTimeout: time.Duration(cfg.EDGAR.TimeoutSec) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		logger.Info("Connected to cache store",
			zap.String("driver", cfg.Cache.Driver),
			zap.Strings("addrs", cfg.Cache.Addrs),
		)
		e.store = store
		cachePinger = store
		e.Cache = doccache.New(source, store,
			time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.DocCacheTotal, logger)
		e.Client = e.Cache
	}

	runner := batch.New(
		batch.WithWorkers(cfg.Engine.MaxConcurrency),
		batch.WithDelay(time.Duration(cfg.Engine.InterItemDelayMS)*time.Millisecond),
	)

	e.Discovery = discovery.New(e.Client, off.Knowledge, discovery.WithRunner(runner))
	e.Search = search.New(e.Client, search.WithRunner(runner))
	e.Thematic = thematic.New(e.Discovery, e.Search,
		thematic.WithFilingsCeiling(cfg.Engine.ThematicMaxFilings),
		thematic.WithScoreFloor(cfg.Engine.ScoreFloor),
		thematic.WithSnippetLength(cfg.Engine.SnippetLength),
	)
	e.Orchestrator = orchestrator.New(off.Classifier, e.Client, e.Discovery, e.Search, e.Thematic,
		orchestrator.WithKnowledge(off.Knowledge),
		orchestrator.WithHybridConcurrent(cfg.Engine.HybridConcurrent),
		orchestrator.WithFilingsCeiling(cfg.Engine.ThematicMaxFilings),
		orchestrator.WithScoreFloor(cfg.Engine.ScoreFloor),
		orchestrator.WithSnippetLength(cfg.Engine.SnippetLength),
	)
	e.Health = healthuc.New(cachePinger, source)
	return e, nil
}

// Close releases the cache store, if any.
func (e *Engine) Close() {
	if e.store != nil {
		e.store.Close()
	}
}
