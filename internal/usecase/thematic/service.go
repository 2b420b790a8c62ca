// Package thematic composes discovery and search into one cross-issuer theme lookup.
package thematic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/edgarsearch/internal/domain"
	"github.com/kailas-cloud/edgarsearch/internal/domain/progress"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/result"
)

// Service runs thematic searches.
type Service struct {
	discoverer    Discoverer
	searcher      Searcher
	ceiling       int
	scoreFloor    float64
	snippetLength int
	now           func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithFilingsCeiling bounds how many filings one thematic run may discover.
func WithFilingsCeiling(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.ceiling = n
		}
	}
}

// WithScoreFloor sets the minimum passage score passed to search.
func WithScoreFloor(f float64) Option {
	return func(s *Service) {
		if f > 0 && f <= 1 {
			s.scoreFloor = f
		}
	}
}

// WithSnippetLength sets the snippet length passed to search.
func WithSnippetLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.snippetLength = n
		}
	}
}

// WithClock overrides the clock used to time a run.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a thematic search service.
func New(d Discoverer, s Searcher, opts ...Option) *Service {
	svc := &Service{
		discoverer:    d,
		searcher:      s,
		ceiling:       request.ThematicFilingsCeiling,
		scoreFloor:    request.DefaultScoreFloor,
		snippetLength: request.DefaultSnippetLength,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Search discovers filings for the theme, searches them with the same query and
// optionally aggregates the hits. Zero discovered filings is a valid, empty result.
func (s *Service) Search(ctx context.Context, params request.Thematic, report progress.Func) (result.Thematic, error) {
	started := s.now()
	q := strings.TrimSpace(params.Query)
	if q == "" {
		return result.Thematic{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}

	maxResults := params.MaxResults
	if maxResults <= 0 {
		maxResults = request.DefaultThematicMax
	}
	dp := request.Discovery{
		FormTypes:  params.FormTypes,
		DateRange:  params.DateRange,
		Industries: params.Industries,
		Companies:  params.Companies,
		MaxResults: params.FilingsCap(s.ceiling),
		SortBy:     request.SortFiledDate,
		SortOrder:  request.Desc,
	}
	out := result.Thematic{
		Query:           q,
		Results:         []result.Result{},
		DiscoveryParams: dp,
	}

	docs, err := s.discoverer.Discover(ctx, dp, report)
	if err != nil && !errors.Is(err, domain.ErrEmptyUniverse) {
		return result.Thematic{}, fmt.Errorf("discover: %w", err)
	}
	sp := request.Search{
		Query:         q,
		Sections:      params.Sections,
		MaxResults:    maxResults,
		MinScore:      request.ScoreFloor(s.scoreFloor),
		Snippets:      true,
		SnippetLength: s.snippetLength,
		Dedupe:        true,
	}
	out.TotalFilingsScanned = len(docs)
	if len(docs) == 0 {
		out.SearchParams = sp
		out.ExecutionTime = s.now().Sub(started)
		return out, nil
	}

	sp.Documents = docs
	out.SearchParams = sp
	results, err := s.searcher.Search(ctx, sp, report)
	if err != nil {
		return result.Thematic{}, fmt.Errorf("search: %w", err)
	}
	out.Results = results
	out.MatchingFilings = distinctDocuments(results)
	if params.Aggregate && len(results) > 0 {
		out.Aggregations = []result.Theme{Aggregate(q, results)}
	}
	out.ExecutionTime = s.now().Sub(started)
	return out, nil
}

func distinctDocuments(results []result.Result) int {
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		seen[r.Document.DocumentID] = struct{}{}
	}
	return len(seen)
}
