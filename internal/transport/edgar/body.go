package edgar

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/kailas-cloud/edgarsearch/internal/domain"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
)

// Compile-time check: Client implements filing.Client.
var _ filing.Client = (*Client)(nil)

// minReadableText is the shortest readability output accepted before falling back
// to a plain tag strip.
const minReadableText = 500

var (
	scriptPattern = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	blockPattern  = regexp.MustCompile(`(?i)</?(p|div|br|tr|td|th|li|table|h[1-6])\b[^>]*>`)
	tagPattern    = regexp.MustCompile(`<[^>]+>`)
	spacePattern  = regexp.MustCompile(`[ \t\r\f\v]+`)
	blankLines    = regexp.MustCompile(`\n{3,}`)
)

// GetDocumentBody fetches a filing's primary document as plain text.
func (c *Client) GetDocumentBody(ctx context.Context, id, documentID string) (filing.Body, error) {
	if documentID == "" {
		return filing.Body{}, fmt.Errorf("%w: empty document id", domain.ErrNotFound)
	}
	cik := PadCIK(id)
	primary, form := c.primaryDocument(ctx, cik, documentID)

	loc := c.ArchiveURL(cik, documentID, primary)
	if primary == "" {
		// The complete submission text file exists for every filing.
		loc = c.ArchiveURL(cik, documentID, documentID+".txt")
	}
	raw, err := c.get(ctx, "archives", loc)
	if err != nil {
		return filing.Body{}, err
	}

	content := extractText(raw, loc)
	meta := map[string]string{
		"url":              loc,
		"accession_number": documentID,
		"cik":              cik,
	}
	if form != "" {
		meta["form"] = form
	}
	if primary != "" {
		meta["primary_document"] = primary
	}
	return filing.Body{Content: content, Metadata: meta}, nil
}

// primaryDocument looks the filing up in the issuer's recent submissions. A miss is
// not an error: older filings fall outside the recent block.
func (c *Client) primaryDocument(ctx context.Context, cik, accession string) (primary, form string) {
	sub, _, err := c.fetchSubmissions(ctx, cik)
	if err != nil {
		c.logger.Debug("primary document lookup failed",
			zap.String("cik", cik),
			zap.String("accession", accession),
			zap.Error(err),
		)
		return "", ""
	}
	r := sub.Filings.Recent
	for i, acc := range r.AccessionNumber {
		if acc == accession {
			return pick(r.PrimaryDocument, i), pick(r.Form, i)
		}
	}
	return "", ""
}

// GetDocumentSections is not offered by EDGAR; callers section bodies themselves.
func (c *Client) GetDocumentSections(_ context.Context, _, _ string, _ []string) ([]filing.Section, error) {
	return nil, fmt.Errorf("document sections: %w", domain.ErrNotImplemented)
}

// extractText turns an archive document into text. HTML goes through readability;
// filings are long and tabular, so a short extraction falls back to stripping tags.
func extractText(raw []byte, loc string) string {
	if !looksLikeHTML(raw) {
		return strings.TrimSpace(string(raw))
	}
	stripped := stripTags(string(raw))

	u, err := url.Parse(loc)
	if err != nil {
		return stripped
	}
	article, err := readability.FromReader(bytes.NewReader(raw), u)
	if err != nil {
		return stripped
	}
	text := strings.TrimSpace(article.TextContent)
	if len(text) < minReadableText || len(text) < len(stripped)/2 {
		return stripped
	}
	return text
}

func looksLikeHTML(raw []byte) bool {
	head := raw
	if len(head) > 2048 {
		head = head[:2048]
	}
	lower := bytes.ToLower(head)
	return bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<body")) ||
		bytes.Contains(lower, []byte("<div"))
}

func stripTags(s string) string {
	s = scriptPattern.ReplaceAllString(s, "")
	s = blockPattern.ReplaceAllString(s, "\n")
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(html.UnescapeString(s), "\u00a0", " ")
	s = spacePattern.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		out = append(out, strings.TrimSpace(l))
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(out, "\n"), "\n\n"))
}
