package result

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
)

// Result is a single scored passage from one filing section.
type Result struct {
	Document     filing.Discovered `json:"document"`
	Section      string            `json:"section,omitempty"`
	SectionTitle string            `json:"section_title"`
	Score        float64           `json:"score"`
	MatchCount   int               `json:"match_count"`
	Snippet      string            `json:"snippet,omitempty"`
	SnippetStart int               `json:"snippet_start,omitempty"`
	SnippetEnd   int               `json:"snippet_end,omitempty"`
	SourceURL    string            `json:"source_url"`
	Citation     string            `json:"citation"`
}

// Citation formats the human-readable reference for a section of a filing.
func Citation(d filing.Discovered, sectionTitle string) string {
	c := fmt.Sprintf("%s, Form %s, filed %s", d.IssuerName, d.Form, d.FiledAt.Format("2006-01-02"))
	if sectionTitle != "" {
		c += ", " + sectionTitle
	}
	if d.DocumentID != "" {
		c += " (accession " + d.DocumentID + ")"
	}
	return c
}

// IssuerStat summarizes one issuer inside a theme.
type IssuerStat struct {
	Name      string  `json:"name"`
	Ticker    string  `json:"ticker,omitempty"`
	Matches   int     `json:"matches"`
	MeanScore float64 `json:"mean_score"`
}

// Theme is a rollup of a result set around one theme label.
type Theme struct {
	Label             string         `json:"label"`
	MatchingDocuments int            `json:"matching_documents"`
	DistinctIssuers   int            `json:"distinct_issuers"`
	TopIssuers        []IssuerStat   `json:"top_issuers"`
	Histogram         map[string]int `json:"histogram,omitempty"`
	KeyTerms          []string       `json:"key_terms,omitempty"`
	TopSnippets       []string       `json:"top_snippets,omitempty"`
}

// Thematic is the output of a thematic search.
type Thematic struct {
	Query               string            `json:"query"`
	TotalFilingsScanned int               `json:"total_filings_scanned"`
	MatchingFilings     int               `json:"matching_filings"`
	Results             []Result          `json:"results"`
	Aggregations        []Theme           `json:"aggregations,omitempty"`
	DiscoveryParams     request.Discovery `json:"discovery_params"`
	SearchParams        request.Search    `json:"search_params"`
	ExecutionTime       time.Duration     `json:"execution_time"`
}
