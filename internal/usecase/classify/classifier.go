// Package classify routes a free-text query to one of four execution patterns.
package classify

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/edgarsearch/internal/domain"
	"github.com/kailas-cloud/edgarsearch/internal/domain/entity"
	"github.com/kailas-cloud/edgarsearch/internal/domain/knowledge"
	"github.com/kailas-cloud/edgarsearch/internal/domain/pattern"
	"github.com/kailas-cloud/edgarsearch/internal/domain/query"
)

const (
	// fallbackThreshold is the best score below which the pattern is chosen by entities alone.
	fallbackThreshold = 0.3
	// hybridThreshold is the score both company and thematic must exceed to force hybrid.
	hybridThreshold = 0.4
	baseConfidence  = 0.5
	scoreWeight     = 0.25
)

// Extractor pulls entities from query text.
type Extractor interface {
	Extract(query string) entity.Entities
}

// Classifier is deterministic for fixed tables and safe for concurrent use.
type Classifier struct {
	extract Extractor
	table   Table
	kb      *knowledge.Base
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTable swaps the scoring rules.
func WithTable(t Table) Option {
	return func(c *Classifier) {
		if t != nil {
			c.table = t
		}
	}
}

// WithKnowledge sets the tables used to resolve context companies.
func WithKnowledge(kb *knowledge.Base) Option {
	return func(c *Classifier) {
		if kb != nil {
			c.kb = kb
		}
	}
}

// New creates a classifier.
func New(ex Extractor, opts ...Option) *Classifier {
	c := &Classifier{extract: ex, table: DefaultTable(), kb: knowledge.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify extracts entities and scores each pattern. Empty input is a ClassificationError.
func (c *Classifier) Classify(q string, qctx *query.Context) (query.Classification, error) {
	trimmed := strings.TrimSpace(q)
	if trimmed == "" {
		return query.Classification{}, domain.NewClassificationError(q, "query is empty")
	}

	ents := c.extract.Extract(trimmed)
	if qctx != nil {
		ents.Companies = c.withContextCompanies(ents.Companies, qctx.Companies)
	}

	f := newFeatures(strings.ToLower(trimmed), ents)
	scores := map[pattern.Pattern]float64{}
	fired := map[string]bool{}
	var reasoning []string
	reasoning = append(reasoning, describeEntities(ents)...)

	for _, r := range c.table.Rules() {
		if !r.Fires(f) {
			continue
		}
		scores[r.Target] += r.Weight
		fired[r.Name] = true
		reasoning = append(reasoning, fmt.Sprintf("%s (+%.2f %s)", r.Reason, r.Weight, r.Target))
	}
	for p, v := range scores {
		scores[p] = entity.Clamp(v)
	}
	company, thematic := scores[pattern.CompanySpecific], scores[pattern.Thematic]
	if company > 0 && thematic > 0 {
		scores[pattern.Hybrid] = math.Min(company+thematic, 1)
	}
	reasoning = append(reasoning, fmt.Sprintf(
		"scores: company_specific=%.2f thematic=%.2f metadata_only=%.2f hybrid=%.2f",
		company, thematic, scores[pattern.MetadataOnly], scores[pattern.Hybrid],
	))

	winner, best := pattern.CompanySpecific, -1.0
	for _, p := range pattern.All() {
		if v, ok := scores[p]; ok && v > best {
			winner, best = p, v
		}
	}
	if best < 0 {
		best = 0
	}

	switch {
	case company > hybridThreshold && thematic > hybridThreshold:
		winner, best = pattern.Hybrid, scores[pattern.Hybrid]
		reasoning = append(reasoning, "company and thematic signals both strong, forcing hybrid")
	case best < fallbackThreshold:
		if f.HasCompany {
			winner = pattern.CompanySpecific
		} else {
			winner = pattern.Thematic
		}
		best = scores[winner]
		reasoning = append(reasoning, fmt.Sprintf("weak signals, falling back to %s", winner))
	}
	reasoning = append(reasoning, fmt.Sprintf("selected %s", winner))
	if n := ents.DistinctIssuers(); winner == pattern.CompanySpecific && n > 1 {
		reasoning = append(reasoning, fmt.Sprintf(
			"%d issuers named, company plan answers for the first (%s) only", n, firstIssuer(ents)))
	}

	conf := baseConfidence + scoreWeight*best + entityQuality(winner, ents, fired) + lengthBonus(trimmed)
	return query.Classification{
		Pattern:     winner,
		Confidence:  math.Min(conf, 1),
		Companies:   companyNames(ents),
		Tickers:     tickerSymbols(ents),
		FormTypes:   ents.FormCodes(),
		TimePeriods: timePeriods(ents),
		Topics:      ents.Keywords(),
		Intent:      ents.Intent,
		Entities:    ents,
		Reasoning:   reasoning,
	}, nil
}

func firstIssuer(ents entity.Entities) string {
	for _, co := range ents.Companies {
		if co.Name != "" {
			return co.Name
		}
		if co.Ticker != "" {
			return co.Ticker
		}
	}
	if len(ents.Tickers) > 0 {
		return ents.Tickers[0].Symbol
	}
	return ""
}

func (c *Classifier) withContextCompanies(found []entity.Company, names []string) []entity.Company {
	out := append([]entity.Company(nil), found...)
	seen := make(map[string]struct{}, len(out))
	for _, co := range out {
		seen[strings.ToUpper(co.Name)] = struct{}{}
		if co.Ticker != "" {
			seen[strings.ToUpper(co.Ticker)] = struct{}{}
		}
	}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		co := entity.Company{Name: n, Confidence: 1, Source: entity.SourceContext}
		if is, ok := c.kb.IssuerByTicker(n); ok {
			co.Name, co.Ticker = is.Name, is.Ticker
		}
		if _, dup := seen[strings.ToUpper(co.Name)]; dup {
			continue
		}
		seen[strings.ToUpper(co.Name)] = struct{}{}
		out = append(out, co)
	}
	return out
}

func entityQuality(p pattern.Pattern, e entity.Entities, fired map[string]bool) float64 {
	q := 0.0
	switch p {
	case pattern.CompanySpecific:
		if len(e.Companies) > 0 {
			q += 0.15
		}
		if len(e.Tickers) > 0 {
			q += 0.1
		}
		if len(e.Topics) > 0 || len(e.FormTypes) > 0 {
			q += 0.05
		}
	case pattern.Thematic:
		if len(e.Topics) > 0 {
			q += 0.15
		}
		if len(e.TimeExprs) > 0 {
			q += 0.05
		}
		if len(e.FormTypes) > 0 {
			q += 0.05
		}
		if fired["plural_companies"] {
			q += 0.1
		}
	case pattern.Hybrid:
		if e.HasCompany() {
			q += 0.1
		}
		if len(e.Topics) > 0 {
			q += 0.1
		}
	case pattern.MetadataOnly:
		if len(e.FormTypes) > 0 {
			q += 0.1
		}
		if e.HasCompany() {
			q += 0.05
		}
	}
	return q
}

func lengthBonus(q string) float64 {
	switch n := len(strings.Fields(q)); {
	case n >= 10:
		return 0.1
	case n >= 5:
		return 0.05
	default:
		return 0
	}
}

func describeEntities(e entity.Entities) []string {
	var out []string
	if names := companyNames(e); len(names) > 0 {
		out = append(out, "companies: "+strings.Join(names, ", "))
	}
	if syms := tickerSymbols(e); len(syms) > 0 {
		out = append(out, "tickers: "+strings.Join(syms, ", "))
	}
	if forms := e.FormCodes(); len(forms) > 0 {
		out = append(out, "filing types: "+strings.Join(forms, ", "))
	}
	if kws := e.Keywords(); len(kws) > 0 {
		out = append(out, "topics: "+strings.Join(kws, ", "))
	}
	if periods := timePeriods(e); len(periods) > 0 {
		out = append(out, "time: "+strings.Join(periods, ", "))
	}
	if e.Intent != nil {
		out = append(out, fmt.Sprintf("intent: %s (%.2f)", e.Intent.Label, e.Intent.Confidence))
	}
	return out
}

func companyNames(e entity.Entities) []string {
	out := make([]string, 0, len(e.Companies))
	for _, c := range e.Companies {
		out = append(out, c.Name)
	}
	return out
}

func tickerSymbols(e entity.Entities) []string {
	out := make([]string, 0, len(e.Tickers))
	for _, t := range e.Tickers {
		out = append(out, t.Symbol)
	}
	return out
}

func timePeriods(e entity.Entities) []string {
	out := make([]string, 0, len(e.TimeExprs))
	for _, t := range e.TimeExprs {
		if t.Period != "" {
			out = append(out, t.Period)
		} else {
			out = append(out, t.Raw)
		}
	}
	return out
}
