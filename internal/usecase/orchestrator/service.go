// Package orchestrator routes a free-text query to a plan, runs it and consolidates
// the outputs into one result.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/edgarsearch/internal/domain/knowledge"
	"github.com/kailas-cloud/edgarsearch/internal/domain/plan"
	"github.com/kailas-cloud/edgarsearch/internal/domain/query"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
	"github.com/kailas-cloud/edgarsearch/internal/logger"
	"github.com/kailas-cloud/edgarsearch/internal/metrics"
)

// Query outcome labels.
const (
	statusOK      = "ok"
	statusPartial = "partial"
	statusFailed  = "failed"
)

// Service orchestrates queries.
type Service struct {
	classifier       Classifier
	client           IssuerClient
	discoverer       Discoverer
	searcher         ContentSearcher
	thematic         ThematicSearcher
	kb               Knowledge
	ops              map[plan.Operation]handler
	hybridConcurrent bool
	filingsCeiling   int
	scoreFloor       float64
	snippetLength    int
	now              func() time.Time
	newID            func() string
}

// Option configures a Service.
type Option func(*Service)

// WithKnowledge sets the lookup tables used while planning.
func WithKnowledge(kb Knowledge) Option {
	return func(s *Service) {
		if kb != nil {
			s.kb = kb
		}
	}
}

// WithHybridConcurrent runs the two chains of a hybrid plan concurrently.
func WithHybridConcurrent(on bool) Option {
	return func(s *Service) { s.hybridConcurrent = on }
}

// WithFilingsCeiling bounds thematic discovery.
func WithFilingsCeiling(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.filingsCeiling = n
		}
	}
}

// WithScoreFloor sets the minimum passage score for content steps.
func WithScoreFloor(f float64) Option {
	return func(s *Service) {
		if f > 0 && f <= 1 {
			s.scoreFloor = f
		}
	}
}

// WithSnippetLength sets the snippet length for content steps.
func WithSnippetLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.snippetLength = n
		}
	}
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides query id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New creates an orchestrator.
func New(
	classifier Classifier,
	client IssuerClient,
	discoverer Discoverer,
	searcher ContentSearcher,
	thematic ThematicSearcher,
	opts ...Option,
) *Service {
	s := &Service{
		classifier:     classifier,
		client:         client,
		discoverer:     discoverer,
		searcher:       searcher,
		thematic:       thematic,
		kb:             knowledge.Default(),
		filingsCeiling: request.ThematicFilingsCeiling,
		scoreFloor:     request.DefaultScoreFloor,
		snippetLength:  request.DefaultSnippetLength,
		now:            time.Now,
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ops = s.handlers()
	return s
}

// run tracks one orchestration so a failure anywhere can still report partial data.
type run struct {
	id      string
	started time.Time
	cls     *query.Classification
	plan    plan.Plan
	st      *state
}

// Orchestrate answers one query. It never panics or returns an error: failures become
// a result with Success=false and whatever partial data completed.
func (s *Service) Orchestrate(ctx context.Context, q string, qc *query.Context) (res query.Result) {
	r := &run{id: s.newID(), started: s.now()}
	ctx, log := logger.WithFields(ctx, zap.String("query_id", r.id))

	defer func() {
		if p := recover(); p != nil {
			log.Error("orchestration panicked", zap.Any("panic", p))
			res = s.finish(r, fmt.Errorf("internal error: %v", p))
		}
		s.observe(log, res)
	}()

	cls, err := s.classifier.Classify(q, qc)
	if err != nil {
		return s.finish(r, err)
	}
	r.cls = &cls
	r.plan = s.BuildPlan(q, cls, qc)

	prefer := qc != nil && qc.PreferRecent
	r.st = newState(selectionPriority(cls.Intent, prefer))
	s.execute(ctx, r.plan, r.st)
	return s.finish(r, nil)
}

func (s *Service) finish(r *run, fatal error) query.Result {
	res := query.Result{
		Success: fatal == nil,
		Sources: []query.Source{},
		Metadata: query.Metadata{
			QueryID:       r.id,
			Strategy:      string(r.plan.Strategy),
			ExecutionTime: s.now().Sub(r.started),
			Operations:    []string{},
		},
	}
	if r.cls != nil {
		res.Pattern = r.cls.Pattern
		res.Classification = r.cls
	}
	if r.st != nil {
		res.Success = res.Success && !r.st.aborted
		res.Shape = r.plan.Shape
		res.Data = consolidate(r.plan, r.st)
		res.Sources = append(res.Sources, r.st.sources...)
		res.Citations = r.st.citations
		res.Metadata.Operations = append(res.Metadata.Operations, r.st.operations...)
		res.Metadata.Errors = append(res.Metadata.Errors, r.st.errors...)
	}
	if fatal != nil {
		res.Metadata.Errors = append(res.Metadata.Errors, fatal.Error())
	}
	return res
}

func (s *Service) observe(log *zap.Logger, res query.Result) {
	status := statusOK
	switch {
	case !res.Success:
		status = statusFailed
	case len(res.Metadata.Errors) > 0:
		status = statusPartial
	}
	pat := string(res.Pattern)
	if pat == "" {
		pat = "unclassified"
	}
	metrics.QueriesTotal.WithLabelValues(pat, status).Inc()

	confidence := 0.0
	if res.Classification != nil {
		confidence = res.Classification.Confidence
	}
	log.Info("query orchestrated",
		zap.String("pattern", pat),
		zap.Float64("confidence", confidence),
		zap.String("status", status),
		zap.Strings("operations", res.Metadata.Operations),
		zap.Duration("duration", res.Metadata.ExecutionTime),
		zap.Int("errors", len(res.Metadata.Errors)),
	)
}
