package edgarsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/edgarsearch/internal/domain"
)

// Outcome labels. Anything unclassified is "error".
const (
	outcomeOK            = "ok"
	outcomeInvalid       = "invalid_query"
	outcomeNotFound      = "not_found"
	outcomeRateLimited   = "rate_limited"
	outcomeUpstream      = "upstream"
	outcomeEmptyUniverse = "empty_universe"
	outcomeCanceled      = "canceled"
	outcomeError         = "error"
)

var outcomes = []struct {
	err   error
	label string
}{
	{domain.ErrInvalidQuery, outcomeInvalid},
	{domain.ErrNotFound, outcomeNotFound},
	{domain.ErrRateLimited, outcomeRateLimited},
	{domain.ErrUpstream, outcomeUpstream},
	{domain.ErrEmptyUniverse, outcomeEmptyUniverse},
	{context.Canceled, outcomeCanceled},
	{context.DeadlineExceeded, outcomeCanceled},
}

func outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.label
		}
	}
	return outcomeError
}

// callerFault reports outcomes caused by the caller's input rather than EDGAR or the engine.
func callerFault(label string) bool {
	return label == outcomeInvalid || label == outcomeNotFound || label == outcomeCanceled
}

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edgarsearch",
		Subsystem: "sdk",
		Name:      "operations_total",
		Help:      "SDK operations by name and outcome.",
	}, []string{"operation", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "edgarsearch",
		Subsystem: "sdk",
		Name:      "operation_duration_seconds",
		Help:      "SDK operation latency. Thematic calls fan out over many filings.",
		Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"operation"})

	var err error
	if operations, err = registerOrReuse(reg, operations); err != nil {
		return nil, err
	}
	if duration, err = registerOrReuse(reg, duration); err != nil {
		return nil, err
	}
	return &sdkMetrics{operations: operations, duration: duration}, nil
}

// registerOrReuse lets several Clients share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, fmt.Errorf("edgarsearch: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("edgarsearch: metric already registered as %T", are.ExistingCollector)
	}
	return existing, nil
}

// observer records every public operation. A nil observer records nothing.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := outcome(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	switch {
	case err == nil:
		o.logger.Debug("edgarsearch operation done", "op", op, "duration", dur)
	case callerFault(status):
		o.logger.Info("edgarsearch operation rejected", "op", op, "status", status, "error", err)
	default:
		o.logger.Warn("edgarsearch operation failed", "op", op, "status", status, "duration", dur, "error", err)
	}
}
