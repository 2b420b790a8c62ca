package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/edgarsearch/internal/domain"
	"github.com/kailas-cloud/edgarsearch/internal/domain/entity"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/plan"
	"github.com/kailas-cloud/edgarsearch/internal/domain/query"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/result"
	"github.com/kailas-cloud/edgarsearch/internal/metrics"
)

// Source tag prefixes.
const (
	sourceTickers     = "edgar:company_tickers"
	sourceSubmissions = "edgar:submissions:"
	sourceFiling      = "edgar:filing:"
)

// handler runs one step against the execution state.
type handler func(ctx context.Context, step plan.Step, st *state) error

// state accumulates step outputs. Each chain owns its state; hybrid chains are merged.
type state struct {
	priority   entity.Priority
	issuerID   string
	issuer     *filing.Issuer
	filings    []filing.Filing
	discovered []filing.Discovered
	selected   *filing.Filing
	passages   []result.Result
	thematic   *result.Thematic
	produced   map[plan.Operation]bool
	operations []string
	sources    []query.Source
	citations  []query.Citation
	errors     []string
	aborted    bool
}

func newState(priority entity.Priority) *state {
	return &state{priority: priority, produced: make(map[plan.Operation]bool)}
}

func (st *state) touch(tag string, at time.Time) {
	for _, s := range st.sources {
		if s.Tag == tag {
			return
		}
	}
	st.sources = append(st.sources, query.Source{Tag: tag, At: at})
}

func (st *state) cite(d filing.Discovered, sectionTitle string) {
	for _, c := range st.citations {
		if c.URL == d.URL && c.Form == d.Form && c.FiledAt.Equal(d.FiledAt) {
			return
		}
	}
	st.citations = append(st.citations, query.Citation{
		Label:   result.Citation(d, sectionTitle),
		Issuer:  d.IssuerName,
		Form:    d.Form,
		FiledAt: d.FiledAt,
		URL:     d.URL,
	})
}

// merge appends other's outputs after st's, keeping st's pipeline fields when set.
func (st *state) merge(other *state) {
	if other.thematic != nil {
		st.thematic = other.thematic
	}
	if st.issuer == nil {
		st.issuer = other.issuer
	}
	for op := range other.produced {
		st.produced[op] = true
	}
	st.operations = append(st.operations, other.operations...)
	for _, s := range other.sources {
		st.touch(s.Tag, s.At)
	}
	st.citations = append(st.citations, other.citations...)
	st.errors = append(st.errors, other.errors...)
	st.aborted = st.aborted || other.aborted
}

func (s *Service) handlers() map[plan.Operation]handler {
	return map[plan.Operation]handler{
		plan.OpResolveIssuer:  s.resolveIssuer,
		plan.OpGetProfile:     s.getProfile,
		plan.OpListFilings:    s.listFilings,
		plan.OpSearchContent:  s.searchContent,
		plan.OpThematicSearch: s.thematicSearch,
	}
}

// execute runs the plan into st. A parallel plan runs the company chain and the thematic
// chain in two goroutines, each sequential on its own; any other plan runs in priority order.
func (s *Service) execute(ctx context.Context, p plan.Plan, st *state) {
	steps := p.Ordered()
	if p.Strategy != plan.Parallel {
		s.runChain(ctx, steps, st)
		return
	}

	var company, theme []plan.Step
	for _, step := range steps {
		if step.Priority >= plan.ThematicBand {
			theme = append(theme, step)
		} else {
			company = append(company, step)
		}
	}
	other := newState(st.priority)
	var wg sync.WaitGroup
	wg.Go(func() { s.runChain(ctx, company, st) })
	wg.Go(func() { s.runChain(ctx, theme, other) })
	wg.Wait()
	st.merge(other)
}

// runChain runs steps in order. A failed step is recorded and skipped; a failed
// entity-resolution step stops the chain.
func (s *Service) runChain(ctx context.Context, steps []plan.Step, st *state) {
	for _, step := range steps {
		if st.aborted {
			return
		}
		op := string(step.Operation)
		st.operations = append(st.operations, op)

		err := s.runStep(ctx, step, st)
		if err == nil {
			st.produced[step.Operation] = true
			continue
		}
		metrics.StepErrorsTotal.WithLabelValues(op).Inc()
		st.errors = append(st.errors, domain.NewExecutionError(string(step.Type), op, err).Error())
		if step.Type == plan.EntityResolution {
			st.aborted = true
		}
	}
}

func (s *Service) runStep(ctx context.Context, step plan.Step, st *state) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step panicked: %v", r)
		}
	}()

	var missing []string
	for _, dep := range step.DependsOn {
		if !st.produced[dep] {
			missing = append(missing, string(dep))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrDependencyNotMet, strings.Join(missing, ", "))
	}
	h, ok := s.ops[step.Operation]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownOperation, step.Operation)
	}
	started := s.now()
	err = h(ctx, step, st)
	metrics.StepDuration.WithLabelValues(string(step.Operation)).Observe(s.now().Sub(started).Seconds())
	return err
}

func (s *Service) resolveIssuer(ctx context.Context, step plan.Step, st *state) error {
	if step.Params.Identifier == "" {
		return fmt.Errorf("%w: no issuer identifier in query", domain.ErrNotFound)
	}
	id, err := s.client.ResolveIssuerID(ctx, step.Params.Identifier)
	st.touch(sourceTickers, s.now())
	if err != nil {
		return fmt.Errorf("resolve %q: %w", step.Params.Identifier, err)
	}
	st.issuerID = id
	return nil
}

func (s *Service) getProfile(ctx context.Context, _ plan.Step, st *state) error {
	is, err := s.client.GetIssuerProfile(ctx, st.issuerID)
	st.touch(sourceSubmissions+st.issuerID, s.now())
	if err != nil {
		return fmt.Errorf("profile %s: %w", st.issuerID, err)
	}
	st.issuer = &is
	return nil
}

// listFilings lists the resolved issuer's filings, or discovers across issuers when the
// plan resolved none.
func (s *Service) listFilings(ctx context.Context, step plan.Step, st *state) error {
	p := step.Params
	if st.issuerID == "" {
		return s.discoverFilings(ctx, p, st)
	}

	filings, err := s.client.ListRecentDocuments(ctx, filing.ListParams{
		IssuerID:  st.issuerID,
		FormTypes: p.FormTypes,
		Days:      p.Days,
		Limit:     p.Limit,
	})
	st.touch(sourceSubmissions+st.issuerID, s.now())
	if err != nil {
		return fmt.Errorf("list filings %s: %w", st.issuerID, err)
	}
	out := make([]filing.Filing, 0, len(filings))
	for _, f := range filings {
		if p.DateRange == nil || p.DateRange.Contains(f.FiledAt) {
			out = append(out, f)
		}
	}
	st.filings = out
	return nil
}

func (s *Service) discoverFilings(ctx context.Context, p plan.Params, st *state) error {
	docs, err := s.discoverer.Discover(ctx, request.Discovery{
		FormTypes:  p.FormTypes,
		DateRange:  p.DateRange,
		Industries: p.Industries,
		Companies:  p.Companies,
		MaxResults: p.Limit,
	}, nil)
	if err != nil {
		return fmt.Errorf("discover filings: %w", err)
	}
	now := s.now()
	for _, d := range docs {
		st.touch(sourceSubmissions+d.IssuerID, now)
	}
	st.discovered = docs
	return nil
}

// searchContent searches one filing: the one named by the step, else the one the
// selection policy picks from the latest listing.
func (s *Service) searchContent(ctx context.Context, step plan.Step, st *state) error {
	p := step.Params
	f, ok := s.pickFiling(p.DocumentID, st)
	if !ok {
		// A listing that matched nothing is an empty answer, not a failed step.
		if p.DocumentID == "" && st.produced[plan.OpListFilings] && len(st.filings) == 0 {
			st.passages = []result.Result{}
			return nil
		}
		return fmt.Errorf("%w: no filing to search", domain.ErrNotFound)
	}
	var issuer filing.Issuer
	if st.issuer != nil {
		issuer = *st.issuer
	}
	doc := filing.FromFiling(issuer, "", f)
	if doc.IssuerID == "" {
		doc.IssuerID = st.issuerID
	}
	st.selected = &f

	passages, err := s.searcher.Search(ctx, request.Search{
		Documents:     []filing.Discovered{doc},
		Query:         p.Query,
		Sections:      p.Sections,
		MaxResults:    p.MaxResults,
		MinScore:      request.ScoreFloor(s.scoreFloor),
		Snippets:      true,
		SnippetLength: s.snippetLength,
		Dedupe:        true,
	}, nil)
	st.touch(sourceFiling+f.AccessionNumber, s.now())
	if err != nil {
		return fmt.Errorf("search filing %s: %w", f.AccessionNumber, err)
	}
	st.passages = passages
	st.cite(doc.WithFetched(), "")
	return nil
}

func (s *Service) pickFiling(documentID string, st *state) (filing.Filing, bool) {
	if documentID != "" {
		for _, f := range st.filings {
			if f.AccessionNumber == documentID {
				return f, true
			}
		}
		return filing.Filing{AccessionNumber: documentID}, true
	}
	return SelectFiling(st.filings, st.priority, s.kb)
}

func (s *Service) thematicSearch(ctx context.Context, step plan.Step, st *state) error {
	p := step.Params
	out, err := s.thematic.Search(ctx, request.Thematic{
		Query:      p.Query,
		Companies:  p.Companies,
		Industries: p.Industries,
		FormTypes:  p.FormTypes,
		DateRange:  p.DateRange,
		Sections:   p.Sections,
		MaxResults: p.MaxResults,
		Aggregate:  true,
	}, nil)
	if err != nil {
		return fmt.Errorf("thematic search: %w", err)
	}
	now := s.now()
	for _, r := range out.Results {
		st.touch(sourceFiling+r.Document.DocumentID, now)
		st.cite(r.Document, r.SectionTitle)
	}
	st.thematic = &out
	return nil
}
