// Package query holds the classification and the response envelope of one orchestrated query.
package query

import (
	"time"

	"github.com/kailas-cloud/edgarsearch/internal/domain/entity"
	"github.com/kailas-cloud/edgarsearch/internal/domain/pattern"
)

// Context carries caller-supplied hints that override extracted values.
type Context struct {
	Companies    []string   `json:"companies,omitempty"`
	FormTypes    []string   `json:"form_types,omitempty"`
	MaxResults   int        `json:"max_results,omitempty"`
	DateFrom     *time.Time `json:"date_from,omitempty"`
	DateTo       *time.Time `json:"date_to,omitempty"`
	PreferRecent bool       `json:"prefer_recent,omitempty"`
}

// Classification is the routing decision for one query. Treat as immutable.
type Classification struct {
	Pattern     pattern.Pattern `json:"pattern"`
	Confidence  float64         `json:"confidence"`
	Companies   []string        `json:"companies"`
	Tickers     []string        `json:"tickers"`
	FormTypes   []string        `json:"form_types"`
	TimePeriods []string        `json:"time_periods"`
	Topics      []string        `json:"topics"`
	Intent      *entity.Intent  `json:"intent,omitempty"`
	Entities    entity.Entities `json:"entities"`
	Reasoning   []string        `json:"reasoning"`
}

// Source is an external source touched while answering.
type Source struct {
	Tag string    `json:"tag"`
	At  time.Time `json:"at"`
}

// Citation references one filing backing the answer.
type Citation struct {
	Label   string    `json:"label"`
	Issuer  string    `json:"issuer"`
	Form    string    `json:"form"`
	FiledAt time.Time `json:"filed_at"`
	URL     string    `json:"url"`
}

// Metadata describes how the result was produced.
type Metadata struct {
	QueryID       string        `json:"query_id"`
	Strategy      string        `json:"strategy,omitempty"`
	ExecutionTime time.Duration `json:"execution_time"`
	Operations    []string      `json:"operations"`
	Errors        []string      `json:"errors,omitempty"`
}

// Result is the terminal response of an orchestrated query.
type Result struct {
	Success        bool            `json:"success"`
	Pattern        pattern.Pattern `json:"pattern,omitempty"`
	Classification *Classification `json:"classification,omitempty"`
	Shape          Shape           `json:"shape,omitempty"`
	Data           Data            `json:"data,omitempty"`
	Sources        []Source        `json:"sources"`
	Citations      []Citation      `json:"citations,omitempty"`
	Metadata       Metadata        `json:"metadata"`
}

// Empty reports a successful run with no data and no errors.
func (r Result) Empty() bool {
	return r.Success && len(r.Metadata.Errors) == 0 && (r.Data == nil || r.Data.Len() == 0)
}
