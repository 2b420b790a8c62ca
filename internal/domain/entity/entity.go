// Package entity holds the typed output of query entity extraction.
package entity

import (
	"strings"
	"time"
)

// Category groups topic keywords.
type Category string

// Topic categories.
const (
	Financial  Category = "financial"
	Risk       Category = "risk"
	Governance Category = "governance"
	Operations Category = "operations"
	Regulatory Category = "regulatory"
)

// Priority biases which single filing is picked for a content step.
type Priority string

// Intent priorities.
const (
	Latest        Priority = "latest"
	Recent        Priority = "recent"
	Comprehensive Priority = "comprehensive"
)

// Match sources for company entities.
const (
	SourceKnownIssuer = "known_issuer"
	SourceAlias       = "alias"
	SourceContext     = "context"
)

// Company is a company reference found in the query.
type Company struct {
	Name       string  `json:"name"`
	Ticker     string  `json:"ticker,omitempty"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Ticker is an uppercase ticker-like token.
type Ticker struct {
	Symbol     string  `json:"symbol"`
	Confidence float64 `json:"confidence"`
}

// FormType is a canonical filing type code plus the raw spellings that produced it.
type FormType struct {
	Code       string   `json:"code"`
	Confidence float64  `json:"confidence"`
	Variants   []string `json:"variants,omitempty"`
}

// TimeExpr is a time expression with its normalized bounds.
type TimeExpr struct {
	Raw        string     `json:"raw"`
	Start      *time.Time `json:"start,omitempty"`
	End        *time.Time `json:"end,omitempty"`
	Period     string     `json:"period,omitempty"`
	Confidence float64    `json:"confidence"`
}

// Normalize trims the raw text, orders the bounds and clamps the confidence.
// Applying it to an already normalized value returns the same value.
func (t TimeExpr) Normalize() TimeExpr {
	out := TimeExpr{
		Raw:        strings.TrimSpace(t.Raw),
		Period:     strings.TrimSpace(t.Period),
		Confidence: Clamp(t.Confidence),
	}
	if t.Start != nil {
		s := *t.Start
		out.Start = &s
	}
	if t.End != nil {
		e := *t.End
		out.End = &e
	}
	if out.Start != nil && out.End != nil && out.End.Before(*out.Start) {
		out.Start, out.End = out.End, out.Start
	}
	return out
}

// Topic is a topic keyword with its category.
type Topic struct {
	Keyword    string   `json:"keyword"`
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}

// Intent is the best guess of what the query is after.
type Intent struct {
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	FormTypes  []string `json:"form_types"`
	Priority   Priority `json:"priority"`
}

// Entities is everything extracted from one query.
type Entities struct {
	Companies []Company  `json:"companies"`
	Tickers   []Ticker   `json:"tickers"`
	FormTypes []FormType `json:"form_types"`
	TimeExprs []TimeExpr `json:"time_expressions"`
	Topics    []Topic    `json:"topics"`
	Intent    *Intent    `json:"intent,omitempty"`
}

// HasCompany reports whether any company or ticker was found.
func (e Entities) HasCompany() bool {
	return len(e.Companies) > 0 || len(e.Tickers) > 0
}

// DistinctIssuers counts distinct issuer references, folding a company and its own ticker together.
func (e Entities) DistinctIssuers() int {
	seen := make(map[string]struct{})
	for _, c := range e.Companies {
		key := strings.ToUpper(c.Ticker)
		if key == "" {
			key = strings.ToUpper(c.Name)
		}
		seen[key] = struct{}{}
	}
	for _, t := range e.Tickers {
		seen[strings.ToUpper(t.Symbol)] = struct{}{}
	}
	return len(seen)
}

// Keywords returns topic keywords in extraction order.
func (e Entities) Keywords() []string {
	out := make([]string, 0, len(e.Topics))
	for _, t := range e.Topics {
		out = append(out, t.Keyword)
	}
	return out
}

// FormCodes returns the extracted form codes in extraction order.
func (e Entities) FormCodes() []string {
	out := make([]string, 0, len(e.FormTypes))
	for _, f := range e.FormTypes {
		out = append(out, f.Code)
	}
	return out
}

// Clamp bounds a confidence to [0, 1].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
