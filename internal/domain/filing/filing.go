// Package filing holds issuer and filing types returned by the document source.
package filing

import (
	"context"
	"strings"
	"time"
)

// Common form type codes.
const (
	Form10K    = "10-K"
	Form10Q    = "10-Q"
	Form8K     = "8-K"
	Form20F    = "20-F"
	Form40F    = "40-F"
	FormDEF14A = "DEF 14A"
	FormS1     = "S-1"
	Form4      = "4"
)

// Issuer is the profile of an entity that files documents.
type Issuer struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Tickers    []string `json:"tickers,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Industry   string   `json:"industry,omitempty"`
}

// PrimaryTicker returns the first ticker or an empty string.
func (i Issuer) PrimaryTicker() string {
	if len(i.Tickers) == 0 {
		return ""
	}
	return i.Tickers[0]
}

// Filing is one document listed for an issuer.
type Filing struct {
	AccessionNumber string    `json:"accession_number"`
	Form            string    `json:"form"`
	FiledAt         time.Time `json:"filed_at"`
	ReportDate      string    `json:"report_date,omitempty"`
	PrimaryDocument string    `json:"primary_document,omitempty"`
	Description     string    `json:"description,omitempty"`
	URL             string    `json:"url"`
	Size            int64     `json:"size,omitempty"`
}

// ListParams narrows a recent-filings listing.
type ListParams struct {
	IssuerID  string
	FormTypes []string
	Days      int
	Limit     int
}

// Body is the fetched content of a filing.
type Body struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Section is a heuristically delimited region of a filing body.
type Section struct {
	Tag   string `json:"tag"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Client is the Document Access Client contract.
// Implementations are expected to rate-limit and may cache.
type Client interface {
	ResolveIssuerID(ctx context.Context, identifier string) (string, error)
	GetIssuerProfile(ctx context.Context, id string) (Issuer, error)
	ListRecentDocuments(ctx context.Context, params ListParams) ([]Filing, error)
	GetDocumentBody(ctx context.Context, id, documentID string) (Body, error)
	GetDocumentSections(ctx context.Context, id, documentID string, hints []string) ([]Section, error)
}

// DateRange is an inclusive filed-date window. Zero bounds are open.
type DateRange struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// IsZero reports whether both bounds are open.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Discovered is a candidate document found by bulk discovery.
type Discovered struct {
	IssuerID       string    `json:"issuer_id"`
	IssuerName     string    `json:"issuer_name"`
	Ticker         string    `json:"ticker,omitempty"`
	DocumentID     string    `json:"document_id"`
	Form           string    `json:"form"`
	FiledAt        time.Time `json:"filed_at"`
	URL            string    `json:"url"`
	Size           int64     `json:"size,omitempty"`
	Industry       string    `json:"industry,omitempty"`
	ContentFetched bool      `json:"content_fetched"`
}

// FromFiling maps a listed filing of issuer to a discovered document.
func FromFiling(issuer Issuer, ticker string, f Filing) Discovered {
	if ticker == "" {
		ticker = issuer.PrimaryTicker()
	}
	return Discovered{
		IssuerID:   issuer.ID,
		IssuerName: issuer.Name,
		Ticker:     strings.ToUpper(ticker),
		DocumentID: f.AccessionNumber,
		Form:       f.Form,
		FiledAt:    f.FiledAt,
		URL:        f.URL,
		Size:       f.Size,
		Industry:   issuer.Industry,
	}
}

// WithFetched returns a copy marked as content-fetched.
func (d Discovered) WithFetched() Discovered {
	d.ContentFetched = true
	return d
}

// MatchesForm reports whether form is in allowed. An empty allow-list matches all.
func MatchesForm(form string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, form) {
			return true
		}
	}
	return false
}
