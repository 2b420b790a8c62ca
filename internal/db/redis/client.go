// Package redis implements db.Store over rueidis. It serves Redis and Valkey alike.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/edgarsearch/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	clientName = "edgarsearch"

	readyBackoffMin = 50 * time.Millisecond
	readyBackoffMax = time.Second
)

// Config holds connection parameters. Addrs with more than one entry connect in
// cluster mode.
type Config struct {
	Addrs        []string
	Username     string
	Password     string
	DB           int
	WriteTimeout time.Duration
}

// Store talks to the cache backend. Client-side caching stays off: entries are
// short-lived and every read is already a cache lookup.
type Store struct {
	client rueidis.Client
}

// NewStore connects to the backend.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      cfg.Addrs,
		Username:         cfg.Username,
		Password:         cfg.Password,
		SelectDB:         cfg.DB,
		ClientName:       clientName,
		ConnWriteTimeout: cfg.WriteTimeout,
		DisableCache:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w", cfg.Addrs, err)
	}
	return newStore(client), nil
}

func newStore(c rueidis.Client) *Store {
	return &Store{client: c}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings with doubling pauses until the backend answers or timeout elapses.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pause := readyBackoffMin
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("cache not ready after %s (last error: %v): %w", timeout, err, ctx.Err())
		case <-time.After(pause):
		}
		pause = min(pause*2, readyBackoffMax)
	}
}
