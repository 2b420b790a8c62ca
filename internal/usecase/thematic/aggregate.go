package thematic

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/edgarsearch/internal/domain/search/result"
	"github.com/kailas-cloud/edgarsearch/internal/usecase/search"
)

// Rollup sizes.
const (
	topIssuers  = 5
	topSnippets = 3
)

// Aggregate rolls a result set up into one theme: document and issuer counts, the top
// issuers by match count then mean score, a filed-year histogram, the query terms seen
// in snippets by frequency, and the best snippets.
func Aggregate(label string, results []result.Result) result.Theme {
	type acc struct {
		stat  result.IssuerStat
		total float64
	}
	issuers := make(map[string]*acc)
	var order []string
	docs := make(map[string]struct{})
	histogram := make(map[string]int)

	for _, r := range results {
		id := r.Document.IssuerID
		a, ok := issuers[id]
		if !ok {
			a = &acc{stat: result.IssuerStat{Name: r.Document.IssuerName, Ticker: r.Document.Ticker}}
			issuers[id] = a
			order = append(order, id)
		}
		a.stat.Matches++
		a.total += r.Score

		if _, seen := docs[r.Document.DocumentID]; !seen {
			docs[r.Document.DocumentID] = struct{}{}
			if !r.Document.FiledAt.IsZero() {
				histogram[strconv.Itoa(r.Document.FiledAt.Year())]++
			}
		}
	}

	stats := make([]result.IssuerStat, 0, len(order))
	for _, id := range order {
		a := issuers[id]
		a.stat.MeanScore = a.total / float64(a.stat.Matches)
		stats = append(stats, a.stat)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Matches != stats[j].Matches {
			return stats[i].Matches > stats[j].Matches
		}
		return stats[i].MeanScore > stats[j].MeanScore
	})
	if len(stats) > topIssuers {
		stats = stats[:topIssuers]
	}

	return result.Theme{
		Label:             label,
		MatchingDocuments: len(docs),
		DistinctIssuers:   len(order),
		TopIssuers:        stats,
		Histogram:         histogram,
		KeyTerms:          keyTerms(label, results),
		TopSnippets:       bestSnippets(results),
	}
}

// keyTerms returns the query terms that occur in snippets, most frequent first.
func keyTerms(query string, results []result.Result) []string {
	terms := search.Tokenize(query)
	counts := make(map[string]int, len(terms))
	for _, r := range results {
		text := strings.ToLower(r.Snippet)
		if text == "" {
			continue
		}
		for _, t := range terms {
			counts[t] += strings.Count(text, t)
		}
	}
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if counts[t] > 0 {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return counts[out[i]] > counts[out[j]] })
	return out
}

// bestSnippets returns the first non-empty snippets in result order.
func bestSnippets(results []result.Result) []string {
	var out []string
	for _, r := range results {
		if r.Snippet == "" {
			continue
		}
		out = append(out, r.Snippet)
		if len(out) == topSnippets {
			break
		}
	}
	return out
}
