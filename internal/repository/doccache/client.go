// Package doccache caches Document Access Client responses in a key-value store.
package doccache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/edgarsearch/internal/db"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
)

const cacheKeyPrefix = "edgarsearch:doc:"

// DefaultTTL keeps EDGAR responses for five minutes.
const DefaultTTL = 300 * time.Second

// store is the consumer interface for the document cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// Compile-time check: Client implements filing.Client.
var _ filing.Client = (*Client)(nil)

// Client decorates a document client with a short-TTL cache.
// Cache failures never fail a call; the inner client answers instead.
type Client struct {
	inner      filing.Client
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner filing.Client,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Client {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// ResolveIssuerID returns a cached issuer id or asks the inner client.
func (c *Client) ResolveIssuerID(ctx context.Context, identifier string) (string, error) {
	key := cacheKey("resolve", strings.ToUpper(strings.TrimSpace(identifier)))
	return cached(ctx, c, key, func() (string, error) {
		return c.inner.ResolveIssuerID(ctx, identifier)
	})
}

// GetIssuerProfile returns a cached profile or asks the inner client.
func (c *Client) GetIssuerProfile(ctx context.Context, id string) (filing.Issuer, error) {
	return cached(ctx, c, cacheKey("profile", id), func() (filing.Issuer, error) {
		return c.inner.GetIssuerProfile(ctx, id)
	})
}

// ListRecentDocuments returns a cached listing or asks the inner client.
func (c *Client) ListRecentDocuments(ctx context.Context, params filing.ListParams) ([]filing.Filing, error) {
	key := cacheKey("list",
		params.IssuerID,
		strings.ToUpper(strings.Join(params.FormTypes, ",")),
		strconv.Itoa(params.Days),
		strconv.Itoa(params.Limit),
	)
	return cached(ctx, c, key, func() ([]filing.Filing, error) {
		return c.inner.ListRecentDocuments(ctx, params)
	})
}

// GetDocumentBody returns a cached body or asks the inner client.
func (c *Client) GetDocumentBody(ctx context.Context, id, documentID string) (filing.Body, error) {
	return cached(ctx, c, cacheKey("body", id, documentID), func() (filing.Body, error) {
		return c.inner.GetDocumentBody(ctx, id, documentID)
	})
}

// GetDocumentSections is not cached.
func (c *Client) GetDocumentSections(ctx context.Context, id, documentID string, hints []string) ([]filing.Section, error) {
	sections, err := c.inner.GetDocumentSections(ctx, id, documentID, hints)
	if err != nil {
		return nil, fmt.Errorf("document sections: %w", err)
	}
	return sections, nil
}

// Purge drops every cached response and reports how many entries went.
func (c *Client) Purge(ctx context.Context) (int, error) {
	n, err := c.store.DeletePrefix(ctx, cacheKeyPrefix)
	if err != nil {
		return n, fmt.Errorf("purge document cache: %w", err)
	}
	c.logger.Info("Purged document cache", zap.Int("entries", n))
	return n, nil
}

func cached[T any](ctx context.Context, c *Client, key string, load func() (T, error)) (T, error) {
	if v, ok := getFromCache[T](ctx, c, key); ok {
		c.incCache("hit")
		return v, nil
	}
	c.incCache("miss")

	v, err := load()
	if err != nil {
		// Errors are never cached.
		return v, err
	}
	c.putToCache(ctx, key, v)
	return v, nil
}

func (c *Client) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(op string, parts ...string) string {
	h := sha256.Sum256([]byte(op + "\x00" + strings.Join(parts, "\x00")))
	return cacheKeyPrefix + op + ":" + hex.EncodeToString(h[:])
}

func getFromCache[T any](ctx context.Context, c *Client, key string) (T, bool) {
	var v T
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached document response", zap.String("key", key), zap.Error(err))
		}
		return v, false
	}
	if len(data) == 0 {
		return v, false
	}

	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Warn("Failed to parse cached document response", zap.String("key", key), zap.Error(err))
		if delErr := c.store.Del(ctx, key); delErr != nil {
			c.logger.Warn("Failed to drop corrupt cache entry", zap.String("key", key), zap.Error(delErr))
		}
		var zero T
		return zero, false
	}
	return v, true
}

func (c *Client) putToCache(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to encode document response", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache document response", zap.String("key", key), zap.Error(err))
	}
}
