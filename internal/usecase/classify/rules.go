package classify

import (
	"regexp"

	"github.com/kailas-cloud/edgarsearch/internal/domain/entity"
	"github.com/kailas-cloud/edgarsearch/internal/domain/pattern"
)

var (
	pluralRe      = regexp.MustCompile(`\b(?:companies|firms|issuers|corporations|businesses|peers|competitors)\b`)
	comparativeRe = regexp.MustCompile(`\b(?:compare|compared|comparing|comparison|versus|vs\.?|relative to)\b`)
	possessiveRe  = regexp.MustCompile(`(?:\w's\b|\b(?:its|their)\b)`)
)

// Features are the precomputed facts rules are evaluated against.
type Features struct {
	Text        string
	Entities    entity.Entities
	HasCompany  bool
	Distinct    int
	Plural      bool
	Comparative bool
	Possessive  bool
}

// Broad reports cross-issuer language, or no issuer reference at all.
func (f Features) Broad() bool {
	return f.Plural || f.Comparative || !f.HasCompany
}

func newFeatures(lower string, e entity.Entities) Features {
	return Features{
		Text:        lower,
		Entities:    e,
		HasCompany:  e.HasCompany(),
		Distinct:    e.DistinctIssuers(),
		Plural:      pluralRe.MatchString(lower),
		Comparative: comparativeRe.MatchString(lower),
		Possessive:  possessiveRe.MatchString(lower),
	}
}

// Rule adds Weight to Target's score when Match (if set) matches the lowercased query
// and When (if set) holds.
type Rule struct {
	Name   string
	Target pattern.Pattern
	Weight float64
	Match  *regexp.Regexp
	When   func(Features) bool
	Reason string
}

// Fires evaluates the rule.
func (r Rule) Fires(f Features) bool {
	if r.Match != nil && !r.Match.MatchString(f.Text) {
		return false
	}
	return r.When == nil || r.When(f)
}

// Table supplies scoring rules.
type Table interface {
	Rules() []Rule
}

// StaticTable is an immutable rule list.
type StaticTable struct {
	rules []Rule
}

// NewTable freezes rules into a table.
func NewTable(rules []Rule) StaticTable {
	return StaticTable{rules: append([]Rule(nil), rules...)}
}

// Rules implements Table.
func (t StaticTable) Rules() []Rule { return append([]Rule(nil), t.rules...) }

// DefaultTable returns the built-in scoring rules.
func DefaultTable() StaticTable {
	return NewTable([]Rule{
		{
			Name:   "company_entity",
			Target: pattern.CompanySpecific,
			Weight: 0.4,
			When:   func(f Features) bool { return len(f.Entities.Companies) > 0 },
			Reason: "names a known company",
		},
		{
			Name:   "ticker",
			Target: pattern.CompanySpecific,
			Weight: 0.3,
			When:   func(f Features) bool { return len(f.Entities.Tickers) > 0 },
			Reason: "contains a ticker symbol",
		},
		{
			Name:   "possessive",
			Target: pattern.CompanySpecific,
			Weight: 0.15,
			When:   func(f Features) bool { return f.Possessive && len(f.Entities.Companies) > 0 },
			Reason: "uses possessive phrasing about a company",
		},
		{
			Name:   "single_issuer",
			Target: pattern.CompanySpecific,
			Weight: 0.2,
			When:   func(f Features) bool { return f.Distinct == 1 && !f.Plural },
			Reason: "refers to exactly one issuer",
		},
		{
			Name:   "plural_companies",
			Target: pattern.Thematic,
			Weight: 0.4,
			Match:  pluralRe,
			Reason: "uses plural company language",
		},
		{
			Name:   "breadth",
			Target: pattern.Thematic,
			Weight: 0.2,
			Match:  regexp.MustCompile(`\b(?:all|every|which|any)\s+(?:companies|firms|issuers)\b|\b(?:across|sector|sectors|industry|industries)\b`),
			When:   Features.Broad,
			Reason: "asks across a sector or industry",
		},
		{
			Name:   "comparison",
			Target: pattern.Thematic,
			Weight: 0.3,
			Match:  comparativeRe,
			Reason: "uses comparison words",
		},
		{
			Name:   "topic_without_company",
			Target: pattern.Thematic,
			Weight: 0.3,
			When:   func(f Features) bool { return len(f.Entities.Topics) > 0 && !f.HasCompany },
			Reason: "has topics but no company",
		},
		{
			Name:   "multiple_forms",
			Target: pattern.Thematic,
			Weight: 0.1,
			When:   func(f Features) bool { return len(f.Entities.FormTypes) >= 2 && !f.HasCompany },
			Reason: "requests several filing types",
		},
		{
			Name:   "time_without_company",
			Target: pattern.Thematic,
			Weight: 0.1,
			When:   func(f Features) bool { return len(f.Entities.TimeExprs) > 0 && !f.HasCompany },
			Reason: "time-bound search without a company",
		},
		{
			Name:   "listing_words",
			Target: pattern.MetadataOnly,
			Weight: 0.4,
			Match:  regexp.MustCompile(`\b(?:list|show|filed|filings|filing history)\b`),
			When:   metadataEligible,
			Reason: "asks for a filing listing",
		},
		{
			Name:   "form_without_topic",
			Target: pattern.MetadataOnly,
			Weight: 0.2,
			When:   func(f Features) bool { return metadataEligible(f) && len(f.Entities.FormTypes) > 0 },
			Reason: "names a filing type without a topic",
		},
		{
			Name:   "when_filed",
			Target: pattern.MetadataOnly,
			Weight: 0.3,
			Match:  regexp.MustCompile(`\bwhen\s+(?:did|was|were)\b.*\bfiled?\b`),
			When:   metadataEligible,
			Reason: "asks when something was filed",
		},
	})
}

// metadataEligible holds when no topic was asked about and no single issuer was named;
// a one-company listing is served by the company plan.
func metadataEligible(f Features) bool {
	return len(f.Entities.Topics) == 0 && f.Distinct != 1
}
