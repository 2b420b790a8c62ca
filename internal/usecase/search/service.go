// Package search scores filing sections against a keyword query across many documents.
package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/edgarsearch/internal/domain"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/progress"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/result"
	"github.com/kailas-cloud/edgarsearch/internal/logger"
	"github.com/kailas-cloud/edgarsearch/internal/usecase/batch"
)

// Service runs cross-document keyword search.
type Service struct {
	client ContentClient
	runner *batch.Runner
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRunner sets the worker pool used to fetch documents.
func WithRunner(r *batch.Runner) Option {
	return func(s *Service) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithClock overrides the clock used for ETAs.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a search service.
func New(client ContentClient, opts ...Option) *Service {
	s := &Service{client: client, runner: batch.New(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type fetched struct {
	doc      filing.Discovered
	sections []filing.Section
}

// Search fetches every document, scores its sections and returns passages sorted by score
// desc then filed date desc. Parameters are validated before any fetch.
func (s *Service) Search(ctx context.Context, params request.Search, report progress.Func) ([]result.Result, error) {
	p, err := params.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	terms := Tokenize(p.Query)
	if len(terms) == 0 || len(p.Documents) == 0 {
		return []result.Result{}, nil
	}

	docs, err := s.fetchAll(ctx, p, report)
	if err != nil {
		return nil, err
	}

	started := s.now()
	var results []result.Result
	for i, d := range docs {
		report.Report(progress.Event{
			Operation: progress.OpSearch,
			Completed: i,
			Total:     len(docs),
			Current:   d.doc.DocumentID,
			ETA:       progress.LinearETA(started, s.now(), i, len(docs)),
		})
		for _, sec := range d.sections {
			if r, ok := scorePassage(d.doc, sec, terms, p); ok {
				results = append(results, r)
			}
		}
	}

	return PostProcess(results, *p.MinScore, p.MaxResults, p.Dedupe), nil
}

// fetchAll collects sections for every document, skipping failures, in input order.
func (s *Service) fetchAll(ctx context.Context, p request.Search, report progress.Func) ([]fetched, error) {
	log := logger.FromContext(ctx)
	keys := make([]string, len(p.Documents))
	for i, d := range p.Documents {
		keys[i] = d.DocumentID
	}

	started := s.now()
	results, err := batch.Run(ctx, s.runner, batch.Task[[]filing.Section]{
		Keys: keys,
		Before: func(i int) {
			report.Report(progress.Event{
				Operation: progress.OpContentFetch,
				Completed: i,
				Total:     len(keys),
				Current:   keys[i],
				ETA:       progress.LinearETA(started, s.now(), i, len(keys)),
			})
		},
		Do: func(ctx context.Context, i int) ([]filing.Section, error) {
			return s.sections(ctx, p.Documents[i], p.Sections)
		},
	})
	if err != nil {
		return nil, err
	}

	out := make([]fetched, 0, len(results))
	for i, r := range results {
		if r.Err() != nil {
			log.Warn("search skipped document",
				zap.String("document", r.Key()),
				zap.String("issuer", p.Documents[i].IssuerID),
				zap.Error(r.Err()),
			)
			continue
		}
		out = append(out, fetched{doc: p.Documents[i].WithFetched(), sections: r.Value()})
	}
	return out, nil
}

// sections asks the source for native sections and falls back to the heuristic sectionizer.
func (s *Service) sections(ctx context.Context, d filing.Discovered, allow []string) ([]filing.Section, error) {
	secs, err := s.client.GetDocumentSections(ctx, d.IssuerID, d.DocumentID, allow)
	if err != nil || len(secs) == 0 {
		body, bodyErr := s.client.GetDocumentBody(ctx, d.IssuerID, d.DocumentID)
		if bodyErr != nil {
			return nil, fmt.Errorf("fetch body: %w", bodyErr)
		}
		secs = Sectionize(d.Form, body.Content)
	}

	out := make([]filing.Section, 0, len(secs))
	for _, sec := range secs {
		if len(sec.Text) < MinSectionLength || !allowSection(sec, allow) {
			continue
		}
		out = append(out, sec)
	}
	return out, nil
}

func scorePassage(d filing.Discovered, sec filing.Section, terms []string, p request.Search) (result.Result, bool) {
	sc := scoreSection(sec.Text, terms)
	if !sc.hasMatches {
		return result.Result{}, false
	}
	r := result.Result{
		Document:     d,
		Section:      sec.Tag,
		SectionTitle: sec.Title,
		Score:        sc.score,
		MatchCount:   sc.matches,
		SourceURL:    d.URL,
		Citation:     result.Citation(d, sec.Title),
		SnippetStart: sc.best.start,
		SnippetEnd:   sc.best.end,
	}
	if p.Snippets {
		r.Snippet, r.SnippetStart, r.SnippetEnd = Snippet(sec.Text, sc.best.start, sc.best.end, p.SnippetLength)
	}
	return r, true
}

// PostProcess drops results below floor, sorts by score desc then filed date desc,
// truncates to limit and then optionally dedupes.
func PostProcess(results []result.Result, floor float64, limit int, dedupe bool) []result.Result {
	out := make([]result.Result, 0, len(results))
	for _, r := range results {
		if r.Score >= floor {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Document.FiledAt.After(out[j].Document.FiledAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if dedupe {
		out = Dedupe(out)
	}
	return out
}

// Dedupe keeps the first result per (document, section, snippet start), preserving order.
func Dedupe(results []result.Result) []result.Result {
	type key struct {
		doc, section string
		start        int
	}
	seen := make(map[key]struct{}, len(results))
	out := make([]result.Result, 0, len(results))
	for _, r := range results {
		k := key{r.Document.DocumentID, r.Section, r.SnippetStart}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
