package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
)

// Parameter limits and defaults.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength       = 4096
	DefaultDiscoveryMax  = 50
	DefaultSearchMax     = 20
	DefaultThematicMax   = 20
	DefaultScoreFloor    = 0.1
	DefaultSnippetLength = 300
	// ThematicFilingsCeiling bounds how many filings a thematic search may discover.
	ThematicFilingsCeiling = 100
)

// SortKey orders discovered documents.
type SortKey string

// Sort keys.
const (
	SortFiledDate  SortKey = "filed_date"
	SortIssuerName SortKey = "issuer_name"
	SortRelevance  SortKey = "relevance"
)

// SortOrder is the sort direction.
type SortOrder string

// Sort orders.
const (
	Desc SortOrder = "desc"
	Asc  SortOrder = "asc"
)

// DefaultFormTypes is the form filter used when discovery gets none.
func DefaultFormTypes() []string {
	return []string{filing.Form10K, filing.Form10Q, filing.Form8K}
}

// Discovery configures a bulk discovery run.
type Discovery struct {
	FormTypes  []string          `json:"form_types,omitempty"`
	DateRange  *filing.DateRange `json:"date_range,omitempty"`
	Industries []string          `json:"industries,omitempty"`
	Companies  []string          `json:"companies,omitempty"`
	MaxResults int               `json:"max_results,omitempty"`
	SortBy     SortKey           `json:"sort_by,omitempty"`
	SortOrder  SortOrder         `json:"sort_order,omitempty"`
}

// Normalize fills defaults and validates enum fields.
func (d Discovery) Normalize() (Discovery, error) {
	if len(d.FormTypes) == 0 {
		d.FormTypes = DefaultFormTypes()
	}
	if d.MaxResults <= 0 {
		d.MaxResults = DefaultDiscoveryMax
	}
	if d.SortBy == "" {
		d.SortBy = SortFiledDate
	}
	if d.SortOrder == "" {
		d.SortOrder = Desc
	}
	switch d.SortBy {
	case SortFiledDate, SortIssuerName, SortRelevance:
	default:
		return Discovery{}, fmt.Errorf("invalid sort key: %q", d.SortBy)
	}
	if d.SortOrder != Desc && d.SortOrder != Asc {
		return Discovery{}, fmt.Errorf("invalid sort order: %q", d.SortOrder)
	}
	return d, nil
}

// Search configures a cross-document search.
type Search struct {
	Documents     []filing.Discovered `json:"documents"`
	Query         string              `json:"query"`
	Sections      []string            `json:"sections,omitempty"`
	MaxResults    int                 `json:"max_results,omitempty"`
	MinScore      *float64            `json:"min_score,omitempty"`
	Snippets      bool                `json:"snippets"`
	SnippetLength int                 `json:"snippet_length,omitempty"`
	Dedupe        bool                `json:"dedupe"`
}

// ScoreFloor returns f as an explicit Search.MinScore. A nil MinScore means the default floor.
func ScoreFloor(f float64) *float64 { return &f }

// Normalize validates the query and fills defaults.
func (s Search) Normalize() (Search, error) {
	s.Query = strings.TrimSpace(s.Query)
	if s.Query == "" {
		return Search{}, fmt.Errorf("query is required")
	}
	if len(s.Query) > MaxQueryLength {
		return Search{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if s.MaxResults <= 0 {
		s.MaxResults = DefaultSearchMax
	}
	if s.MinScore == nil {
		s.MinScore = ScoreFloor(DefaultScoreFloor)
	}
	if f := *s.MinScore; f < 0 || f > 1 {
		return Search{}, fmt.Errorf("min_score must be between 0 and 1")
	}
	if s.SnippetLength <= 0 {
		s.SnippetLength = DefaultSnippetLength
	}
	return s, nil
}

// Thematic configures a discovery + search composition.
type Thematic struct {
	Query      string            `json:"query"`
	Companies  []string          `json:"companies,omitempty"`
	Industries []string          `json:"industries,omitempty"`
	FormTypes  []string          `json:"form_types,omitempty"`
	DateRange  *filing.DateRange `json:"date_range,omitempty"`
	Sections   []string          `json:"sections,omitempty"`
	MaxResults int               `json:"max_results,omitempty"`
	Aggregate  bool              `json:"aggregate"`
}

// FilingsCap returns the discovery cap: twice the result cap, bounded by ceiling.
func (t Thematic) FilingsCap(ceiling int) int {
	if ceiling <= 0 {
		ceiling = ThematicFilingsCeiling
	}
	maxResults := t.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultThematicMax
	}
	if n := maxResults * 2; n < ceiling {
		return n
	}
	return ceiling
}
