package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/edgarsearch/internal/domain"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
)

const filedDateLayout = "2006-01-02"

type submissions struct {
	CIK            string   `json:"cik"`
	Name           string   `json:"name"`
	Tickers        []string `json:"tickers"`
	SICDescription string   `json:"sicDescription"`
	Category       string   `json:"category"`
	EntityType     string   `json:"entityType"`
	Filings        struct {
		Recent recentFilings `json:"recent"`
	} `json:"filings"`
}

// recentFilings is the column-oriented "recent" block of a submissions file.
type recentFilings struct {
	AccessionNumber    []string `json:"accessionNumber"`
	FilingDate         []string `json:"filingDate"`
	ReportDate         []string `json:"reportDate"`
	Form               []string `json:"form"`
	PrimaryDocument    []string `json:"primaryDocument"`
	PrimaryDescription []string `json:"primaryDocDescription"`
	Size               []int64  `json:"size"`
}

func (r recentFilings) at(i int) (filing.Filing, bool) {
	if i >= len(r.AccessionNumber) || i >= len(r.Form) || i >= len(r.FilingDate) {
		return filing.Filing{}, false
	}
	filed, err := time.Parse(filedDateLayout, r.FilingDate[i])
	if err != nil {
		return filing.Filing{}, false
	}
	f := filing.Filing{
		AccessionNumber: r.AccessionNumber[i],
		Form:            r.Form[i],
		FiledAt:         filed,
		ReportDate:      pick(r.ReportDate, i),
		PrimaryDocument: pick(r.PrimaryDocument, i),
		Description:     pick(r.PrimaryDescription, i),
	}
	if i < len(r.Size) {
		f.Size = r.Size[i]
	}
	return f, true
}

func pick(col []string, i int) string {
	if i < len(col) {
		return col[i]
	}
	return ""
}

func (c *Client) fetchSubmissions(ctx context.Context, id string) (*submissions, string, error) {
	cik := PadCIK(id)
	if !isDigits(cik) {
		return nil, "", fmt.Errorf("%w: invalid cik %q", domain.ErrNotFound, id)
	}
	body, err := c.get(ctx, "submissions", fmt.Sprintf("%s/submissions/CIK%s.json", c.dataURL, cik))
	if err != nil {
		return nil, cik, err
	}
	var sub submissions
	if err := json.Unmarshal(body, &sub); err != nil {
		return nil, cik, fmt.Errorf("decode submissions %s: %w: %w", cik, domain.ErrUpstream, err)
	}
	return &sub, cik, nil
}

// GetIssuerProfile returns the issuer's name, tickers and category tags.
func (c *Client) GetIssuerProfile(ctx context.Context, id string) (filing.Issuer, error) {
	sub, cik, err := c.fetchSubmissions(ctx, id)
	if err != nil {
		return filing.Issuer{}, err
	}
	is := filing.Issuer{
		ID:       cik,
		Name:     sub.Name,
		Tickers:  sub.Tickers,
		Industry: sub.SICDescription,
	}
	for _, tag := range []string{sub.Category, sub.EntityType, sub.SICDescription} {
		if tag != "" {
			is.Categories = append(is.Categories, tag)
		}
	}
	return is, nil
}

// ListRecentDocuments lists the issuer's filings newest first.
func (c *Client) ListRecentDocuments(ctx context.Context, params filing.ListParams) ([]filing.Filing, error) {
	if c.listing == ListingAtom {
		return c.listAtom(ctx, params)
	}

	sub, cik, err := c.fetchSubmissions(ctx, params.IssuerID)
	if err != nil {
		return nil, err
	}
	cutoff := c.cutoff(params.Days)

	recent := sub.Filings.Recent
	out := make([]filing.Filing, 0)
	for i := range recent.AccessionNumber {
		f, ok := recent.at(i)
		if !ok {
			continue
		}
		if !filing.MatchesForm(f.Form, params.FormTypes) {
			continue
		}
		// Recent arrays are newest first, so the first filing past the window ends the scan.
		if !cutoff.IsZero() && f.FiledAt.Before(cutoff) {
			break
		}
		f.URL = c.ArchiveURL(cik, f.AccessionNumber, f.PrimaryDocument)
		out = append(out, f)
		if params.Limit > 0 && len(out) >= params.Limit {
			break
		}
	}
	return out, nil
}

func (c *Client) cutoff(days int) time.Time {
	if days <= 0 {
		return time.Time{}
	}
	now := c.now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -days)
}

// ArchiveURL builds the archive locator of a filing's primary document, or of the
// filing index when the primary document is unknown.
func (c *Client) ArchiveURL(cik, accession, primary string) string {
	n, err := strconv.ParseInt(cik, 10, 64)
	if err != nil {
		n = 0
	}
	folder := fmt.Sprintf("%s/Archives/edgar/data/%d/%s", c.baseURL, n, strings.ReplaceAll(accession, "-", ""))
	if primary == "" {
		return folder + "/" + accession + "-index.htm"
	}
	return folder + "/" + primary
}
