package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/edgarsearch/internal/domain"
)

const tickersPath = "/files/company_tickers.json"

type tickerEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// tickerIndex is the in-process copy of the SEC ticker file.
type tickerIndex struct {
	entries  []tickerEntry
	byTicker map[string]tickerEntry
	byCIK    map[string]tickerEntry
}

func newTickerIndex(raw map[string]tickerEntry) *tickerIndex {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	// The file is keyed "0".."N" in popularity order; keep that order for name lookups.
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})

	idx := &tickerIndex{
		entries:  make([]tickerEntry, 0, len(raw)),
		byTicker: make(map[string]tickerEntry, len(raw)),
		byCIK:    make(map[string]tickerEntry, len(raw)),
	}
	for _, k := range keys {
		e := raw[k]
		idx.entries = append(idx.entries, e)
		idx.byTicker[strings.ToUpper(e.Ticker)] = e
		cik := PadCIK(strconv.FormatInt(e.CIK, 10))
		if _, ok := idx.byCIK[cik]; !ok {
			idx.byCIK[cik] = e
		}
	}
	return idx
}

// PadCIK left-pads a numeric CIK to ten digits.
func PadCIK(cik string) string {
	cik = strings.TrimSpace(cik)
	if len(cik) >= 10 {
		return cik
	}
	return strings.Repeat("0", 10-len(cik)) + cik
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (c *Client) loadTickers(ctx context.Context) (*tickerIndex, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tickers != nil {
		return c.tickers, nil
	}

	body, err := c.get(ctx, "tickers", c.baseURL+tickersPath)
	if err != nil {
		return nil, err
	}
	var raw map[string]tickerEntry
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode ticker file: %w: %w", domain.ErrUpstream, err)
	}
	c.tickers = newTickerIndex(raw)
	c.logger.Debug("edgar ticker file loaded")
	return c.tickers, nil
}

// ResolveIssuerID maps a ticker, a CIK (padded or not) or a company name substring to a
// ten-digit CIK.
func (c *Client) ResolveIssuerID(ctx context.Context, identifier string) (string, error) {
	ident := strings.TrimSpace(identifier)
	if ident == "" {
		return "", fmt.Errorf("%w: empty identifier", domain.ErrNotFound)
	}

	idx, err := c.loadTickers(ctx)
	if err != nil {
		// A numeric identifier is already a CIK; the ticker file is only a lookup aid.
		if isDigits(ident) {
			return PadCIK(ident), nil
		}
		return "", err
	}

	if isDigits(ident) {
		cik := PadCIK(ident)
		if _, ok := idx.byCIK[cik]; ok {
			return cik, nil
		}
		return "", fmt.Errorf("%w: cik %s", domain.ErrNotFound, ident)
	}

	ticker := strings.ToUpper(strings.ReplaceAll(ident, ".", "-"))
	if e, ok := idx.byTicker[ticker]; ok {
		return PadCIK(strconv.FormatInt(e.CIK, 10)), nil
	}

	name := strings.ToLower(ident)
	for _, e := range idx.entries {
		if strings.Contains(strings.ToLower(e.Title), name) {
			return PadCIK(strconv.FormatInt(e.CIK, 10)), nil
		}
	}
	return "", fmt.Errorf("%w: issuer %q", domain.ErrNotFound, identifier)
}
