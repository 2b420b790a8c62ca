// Package discovery lists candidate filings across a universe of issuers.
package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/edgarsearch/internal/domain"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/knowledge"
	"github.com/kailas-cloud/edgarsearch/internal/domain/progress"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
	"github.com/kailas-cloud/edgarsearch/internal/logger"
	"github.com/kailas-cloud/edgarsearch/internal/usecase/batch"
)

// maxListLimit bounds the per-issuer listing size.
const maxListLimit = 100

// Service discovers filings across issuers.
type Service struct {
	client   Client
	universe Universe
	runner   *batch.Runner
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRunner sets the worker pool used to fan out over issuers.
func WithRunner(r *batch.Runner) Option {
	return func(s *Service) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithClock overrides the clock used for day windows and ETAs.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a discovery service. A nil universe uses the built-in knowledge base.
func New(client Client, universe Universe, opts ...Option) *Service {
	if universe == nil {
		universe = knowledge.Default()
	}
	s := &Service{client: client, universe: universe, runner: batch.New(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Discover lists filings for every issuer in the resolved universe, then sorts and truncates.
// A failing issuer is skipped. The only error before any fetch is an empty universe.
func (s *Service) Discover(
	ctx context.Context, params request.Discovery, report progress.Func,
) ([]filing.Discovered, error) {
	p, err := params.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	issuers := s.Universe(p)
	if len(issuers) == 0 {
		return nil, domain.ErrEmptyUniverse
	}

	log := logger.FromContext(ctx)
	started := s.now()
	listing := filing.ListParams{
		FormTypes: p.FormTypes,
		Days:      s.windowDays(p.DateRange),
		Limit:     min(p.MaxResults, maxListLimit),
	}

	results, err := batch.Run(ctx, s.runner, batch.Task[[]filing.Discovered]{
		Keys: issuers,
		Before: func(i int) {
			report.Report(progress.Event{
				Operation: progress.OpDiscovery,
				Completed: i,
				Total:     len(issuers),
				Current:   issuers[i],
				ETA:       progress.LinearETA(started, s.now(), i, len(issuers)),
			})
		},
		Do: func(ctx context.Context, i int) ([]filing.Discovered, error) {
			return s.discoverIssuer(ctx, issuers[i], listing, p)
		},
	})
	if err != nil {
		return nil, err
	}

	var out []filing.Discovered
	for _, r := range results {
		if r.Err() != nil {
			log.Warn("discovery skipped issuer", zap.String("issuer", r.Key()), zap.Error(r.Err()))
			continue
		}
		out = append(out, r.Value()...)
	}

	sortDiscovered(out, p.SortBy, p.SortOrder)
	if len(out) > p.MaxResults {
		out = out[:p.MaxResults]
	}
	if out == nil {
		out = []filing.Discovered{}
	}
	return out, nil
}

// Universe resolves the issuer identifiers to scan: explicit companies, else the union of
// industry issuers, else the default universe.
func (s *Service) Universe(p request.Discovery) []string {
	if ids := dedupe(p.Companies); len(ids) > 0 {
		return ids
	}
	var fromIndustries []string
	for _, ind := range p.Industries {
		fromIndustries = append(fromIndustries, s.universe.IndustryIssuers(ind)...)
	}
	if ids := dedupe(fromIndustries); len(ids) > 0 {
		return ids
	}
	ids := dedupe(s.universe.DefaultUniverse())
	if len(ids) > knowledge.DefaultUniverseCap {
		ids = ids[:knowledge.DefaultUniverseCap]
	}
	return ids
}

func (s *Service) discoverIssuer(
	ctx context.Context, identifier string, listing filing.ListParams, p request.Discovery,
) ([]filing.Discovered, error) {
	id, err := s.client.ResolveIssuerID(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", identifier, err)
	}
	issuer, err := s.client.GetIssuerProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", id, err)
	}
	listing.IssuerID = id
	filings, err := s.client.ListRecentDocuments(ctx, listing)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", id, err)
	}

	ticker := ""
	for _, t := range issuer.Tickers {
		if strings.EqualFold(t, identifier) {
			ticker = t
			break
		}
	}

	out := make([]filing.Discovered, 0, len(filings))
	for _, f := range filings {
		if !filing.MatchesForm(f.Form, p.FormTypes) {
			continue
		}
		if p.DateRange != nil && !p.DateRange.Contains(f.FiledAt) {
			continue
		}
		out = append(out, filing.FromFiling(issuer, ticker, f))
	}
	return out, nil
}

// windowDays converts a range start into a listing day window. Zero means unbounded.
func (s *Service) windowDays(r *filing.DateRange) int {
	if r == nil || r.From.IsZero() {
		return 0
	}
	d := s.now().Sub(r.From)
	if d <= 0 {
		return 1
	}
	return int(d/(24*time.Hour)) + 1
}

func sortDiscovered(docs []filing.Discovered, key request.SortKey, order request.SortOrder) {
	var less func(a, b filing.Discovered) bool
	switch key {
	case request.SortFiledDate:
		less = func(a, b filing.Discovered) bool { return a.FiledAt.Before(b.FiledAt) }
	case request.SortIssuerName:
		less = func(a, b filing.Discovered) bool {
			return strings.ToLower(a.IssuerName) < strings.ToLower(b.IssuerName)
		}
	default:
		// Relevance keeps universe order.
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if order == request.Asc {
			return less(docs[i], docs[j])
		}
		return less(docs[j], docs[i])
	})
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		k := strings.ToUpper(id)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, id)
	}
	return out
}
