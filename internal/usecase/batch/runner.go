// Package batch fans per-item work out over a bounded goroutine pool.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	dombatch "github.com/kailas-cloud/edgarsearch/internal/domain/batch"
)

// DefaultWorkers keeps fetches strictly one at a time.
const DefaultWorkers = 1

// Runner caps concurrent items and paces dispatches. The zero value is not usable; use New.
type Runner struct {
	workers int
	delay   time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets the maximum number of items in flight.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithDelay sets the pause between two dispatches.
func WithDelay(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.delay = d
		}
	}
}

// WithSleep replaces the pacing sleep, mostly for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) {
		if fn != nil {
			r.sleep = fn
		}
	}
}

// New creates a runner.
func New(opts ...Option) *Runner {
	r := &Runner{workers: DefaultWorkers, sleep: sleepCtx}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Workers returns the concurrency cap.
func (r *Runner) Workers() int { return r.workers }

// Task describes one run. Before is called on the dispatching goroutine right before
// item i is handed to the pool, in index order.
type Task[T any] struct {
	Keys   []string
	Before func(i int)
	Do     func(ctx context.Context, i int) (T, error)
}

// Run processes every key and returns results in key order. A failing or panicking
// item never affects its siblings. Items not dispatched because ctx ended fail with ctx.Err().
func Run[T any](ctx context.Context, r *Runner, task Task[T]) ([]dombatch.Result[T], error) {
	results := make([]dombatch.Result[T], len(task.Keys))
	if len(task.Keys) == 0 {
		return results, nil
	}

	pool, err := ants.NewPool(r.workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, key := range task.Keys {
		if i > 0 && r.delay > 0 {
			if err := r.sleep(ctx, r.delay); err != nil {
				failRest(results, task.Keys, i, err)
				break
			}
		}
		if err := ctx.Err(); err != nil {
			failRest(results, task.Keys, i, err)
			break
		}
		if task.Before != nil {
			task.Before(i)
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i] = runOne(ctx, key, i, task.Do)
		})
		if submitErr != nil {
			wg.Done()
			results[i] = dombatch.NewError[T](key, fmt.Errorf("submit: %w", submitErr))
		}
	}
	wg.Wait()
	return results, nil
}

func runOne[T any](ctx context.Context, key string, i int, do func(context.Context, int) (T, error)) (res dombatch.Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			res = dombatch.NewError[T](key, fmt.Errorf("panic: %v", p))
		}
	}()
	v, err := do(ctx, i)
	if err != nil {
		return dombatch.NewError[T](key, err)
	}
	return dombatch.NewOK(key, v)
}

func failRest[T any](results []dombatch.Result[T], keys []string, from int, err error) {
	for j := from; j < len(keys); j++ {
		results[j] = dombatch.NewError[T](keys[j], err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
