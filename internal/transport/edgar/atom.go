package edgar

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/atom"

	"github.com/kailas-cloud/edgarsearch/internal/domain"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
)

// atomPageSize is the largest count browse-edgar accepts.
const atomPageSize = 100

const accessionMarker = "accession-number="

// listAtom lists filings from the browse-edgar company feed.
func (c *Client) listAtom(ctx context.Context, params filing.ListParams) ([]filing.Filing, error) {
	cik := PadCIK(params.IssuerID)
	if !isDigits(cik) {
		return nil, fmt.Errorf("%w: invalid cik %q", domain.ErrNotFound, params.IssuerID)
	}

	q := url.Values{}
	q.Set("action", "getcompany")
	q.Set("CIK", cik)
	q.Set("owner", "include")
	q.Set("output", "atom")
	q.Set("count", strconv.Itoa(atomPageSize))
	// browse-edgar filters by one form prefix only; narrower filters are applied below.
	if len(params.FormTypes) == 1 {
		q.Set("type", params.FormTypes[0])
	}

	body, err := c.get(ctx, "atom", c.baseURL+"/cgi-bin/browse-edgar?"+q.Encode())
	if err != nil {
		return nil, err
	}
	// The Atom parser keeps category terms; the universal translator keeps only labels.
	feed, err := (&atom.Parser{}).Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse atom feed %s: %w: %w", cik, domain.ErrUpstream, err)
	}

	cutoff := c.cutoff(params.Days)
	out := make([]filing.Filing, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		f, ok := atomFiling(entry)
		if !ok || !filing.MatchesForm(f.Form, params.FormTypes) {
			continue
		}
		if !cutoff.IsZero() && f.FiledAt.Before(cutoff) {
			continue
		}
		out = append(out, f)
		if params.Limit > 0 && len(out) >= params.Limit {
			break
		}
	}
	return out, nil
}

func atomFiling(entry *atom.Entry) (filing.Filing, bool) {
	accession := accessionFromGUID(entry.ID)
	if accession == "" {
		return filing.Filing{}, false
	}

	form := atomFormTerm(entry.Categories)
	if form == "" {
		// Titles read "10-K  - Annual report [Section 13 and 15(d), not S-K Item 405]".
		form = strings.TrimSpace(strings.SplitN(entry.Title, " - ", 2)[0])
	}

	var filed time.Time
	switch {
	case entry.UpdatedParsed != nil:
		filed = *entry.UpdatedParsed
	case entry.PublishedParsed != nil:
		filed = *entry.PublishedParsed
	default:
		return filing.Filing{}, false
	}
	filed = time.Date(filed.Year(), filed.Month(), filed.Day(), 0, 0, 0, 0, time.UTC)

	return filing.Filing{
		AccessionNumber: accession,
		Form:            form,
		FiledAt:         filed,
		Description:     strings.TrimSpace(entry.Title),
		URL:             atomLink(entry.Links),
	}, true
}

// atomFormTerm returns the term of the "form type" category, e.g. "10-K".
func atomFormTerm(categories []*atom.Category) string {
	for _, cat := range categories {
		if cat == nil {
			continue
		}
		term := strings.TrimSpace(cat.Term)
		if term != "" && (cat.Label == "" || strings.EqualFold(cat.Label, "form type")) {
			return term
		}
	}
	return ""
}

func atomLink(links []*atom.Link) string {
	for _, l := range links {
		if l != nil && (l.Rel == "" || l.Rel == "alternate") {
			return l.Href
		}
	}
	return ""
}

// accessionFromGUID pulls the accession number out of an entry id such as
// "urn:tag:sec.gov,2008:accession-number=0000320193-24-000123".
func accessionFromGUID(guid string) string {
	i := strings.Index(guid, accessionMarker)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(guid[i+len(accessionMarker):])
}
