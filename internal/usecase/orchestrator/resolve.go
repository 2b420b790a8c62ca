package orchestrator

import (
	"strings"

	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/query"
)

// input is what plan parameters are resolved from.
type input struct {
	query string
	cls   query.Classification
	qc    *query.Context
	kb    Knowledge
}

// resolver proposes a value or declines with false.
type resolver[T any] func(in input) (T, bool)

// firstMatch returns the value of the first resolver that accepts.
func firstMatch[T any](in input, chain ...resolver[T]) (T, bool) {
	for _, r := range chain {
		if v, ok := r(in); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Form types: caller context, then extracted codes, then the intent's recommendation.

func formsFromContext(in input) ([]string, bool) {
	if in.qc == nil || len(in.qc.FormTypes) == 0 {
		return nil, false
	}
	return in.qc.FormTypes, true
}

func formsFromEntities(in input) ([]string, bool) {
	codes := in.cls.Entities.FormCodes()
	return codes, len(codes) > 0
}

func formsFromIntent(in input) ([]string, bool) {
	if in.cls.Intent == nil || len(in.cls.Intent.FormTypes) == 0 {
		return nil, false
	}
	return in.cls.Intent.FormTypes, true
}

var formChain = []resolver[[]string]{formsFromContext, formsFromEntities, formsFromIntent}

// Date range: caller bounds, then the first bounded time expression.

func rangeFromContext(in input) (*filing.DateRange, bool) {
	if in.qc == nil || (in.qc.DateFrom == nil && in.qc.DateTo == nil) {
		return nil, false
	}
	r := &filing.DateRange{}
	if in.qc.DateFrom != nil {
		r.From = *in.qc.DateFrom
	}
	if in.qc.DateTo != nil {
		r.To = *in.qc.DateTo
	}
	return r, true
}

func rangeFromTimeExpr(in input) (*filing.DateRange, bool) {
	for _, t := range in.cls.Entities.TimeExprs {
		if t.Start == nil && t.End == nil {
			continue
		}
		r := &filing.DateRange{}
		if t.Start != nil {
			r.From = *t.Start
		}
		if t.End != nil {
			// End is the last day at midnight; include the whole day.
			r.To = t.End.AddDate(0, 0, 1).Add(-1)
		}
		return r, true
	}
	return nil, false
}

var rangeChain = []resolver[*filing.DateRange]{rangeFromContext, rangeFromTimeExpr}

// Issuer identifier: caller company, then an extracted ticker, then a company match.

func identifierFromContext(in input) (string, bool) {
	if in.qc == nil {
		return "", false
	}
	for _, c := range in.qc.Companies {
		if c = strings.TrimSpace(c); c != "" {
			return c, true
		}
	}
	return "", false
}

func identifierFromCompany(in input) (string, bool) {
	for _, c := range in.cls.Entities.Companies {
		if c.Ticker != "" {
			return c.Ticker, true
		}
		if c.Name != "" {
			return c.Name, true
		}
	}
	return "", false
}

func identifierFromTicker(in input) (string, bool) {
	for _, t := range in.cls.Entities.Tickers {
		if t.Symbol != "" {
			return t.Symbol, true
		}
	}
	return "", false
}

var identifierChain = []resolver[string]{identifierFromContext, identifierFromCompany, identifierFromTicker}

// Result cap: caller context only; callers fall back to a per-plan default.

func maxFromContext(in input) (int, bool) {
	if in.qc == nil || in.qc.MaxResults <= 0 {
		return 0, false
	}
	return in.qc.MaxResults, true
}

// Companies for a thematic run: caller list, then every extracted issuer.

func companiesFromContext(in input) ([]string, bool) {
	if in.qc == nil || len(in.qc.Companies) == 0 {
		return nil, false
	}
	return in.qc.Companies, true
}

func companiesFromEntities(in input) ([]string, bool) {
	var out []string
	seen := make(map[string]struct{})
	add := func(id string) {
		key := strings.ToUpper(id)
		if _, dup := seen[key]; dup || id == "" {
			return
		}
		seen[key] = struct{}{}
		out = append(out, id)
	}
	for _, c := range in.cls.Entities.Companies {
		if c.Ticker != "" {
			add(c.Ticker)
		} else {
			add(c.Name)
		}
	}
	for _, t := range in.cls.Entities.Tickers {
		add(t.Symbol)
	}
	return out, len(out) > 0
}

var companiesChain = []resolver[[]string]{companiesFromContext, companiesFromEntities}

// Industries: topic keywords first, then the industry of a named known issuer.

func industriesFromTopics(in input) ([]string, bool) {
	var out []string
	seen := make(map[string]struct{})
	for _, kw := range in.cls.Entities.Keywords() {
		for _, ind := range in.kb.TopicIndustries(kw) {
			if _, dup := seen[ind]; dup {
				continue
			}
			seen[ind] = struct{}{}
			out = append(out, ind)
		}
	}
	return out, len(out) > 0
}

func industriesFromCompany(in input) ([]string, bool) {
	for _, c := range in.cls.Entities.Companies {
		if is, ok := in.kb.IssuerByTicker(c.Ticker); ok && is.Industry != "" {
			return []string{is.Industry}, true
		}
	}
	return nil, false
}

var industriesChain = []resolver[[]string]{industriesFromTopics, industriesFromCompany}

// Search query: the topic keywords when present, else the raw query.

func searchQueryFromTopics(in input) (string, bool) {
	kws := in.cls.Entities.Keywords()
	return strings.Join(kws, " "), len(kws) > 0
}

func searchQueryFromText(in input) (string, bool) {
	q := strings.TrimSpace(in.query)
	return q, q != ""
}

var searchQueryChain = []resolver[string]{searchQueryFromTopics, searchQueryFromText}
