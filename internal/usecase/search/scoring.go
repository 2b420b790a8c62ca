package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scoring constants.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
	// avgSectionWords is the assumed average section length used for length normalization.
	avgSectionWords = 3000
	// clusterWindow is the span, in bytes, within which occurrences form one match cluster.
	clusterWindow = 200
	clusterWeight = 0.6
	bm25Weight    = 0.4
	minTermLength = 3
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {}, "you": {}, "all": {},
	"any": {}, "can": {}, "had": {}, "has": {}, "have": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "his": {}, "how": {}, "its": {}, "may": {}, "who": {}, "did": {},
	"does": {}, "what": {}, "when": {}, "where": {}, "which": {}, "while": {}, "with": {},
	"that": {}, "this": {}, "these": {}, "those": {}, "from": {}, "they": {}, "them": {},
	"their": {}, "there": {}, "were": {}, "been": {}, "being": {}, "into": {}, "about": {},
	"than": {}, "then": {}, "also": {}, "such": {}, "some": {}, "more": {}, "most": {},
	"other": {}, "over": {}, "only": {}, "very": {}, "will": {}, "would": {}, "should": {},
	"could": {}, "each": {}, "between": {}, "mention": {}, "mentioned": {}, "mentions": {},
	"describe": {}, "described": {}, "show": {}, "tell": {}, "find": {}, "list": {},
	"companies": {}, "company": {}, "filing": {}, "filings": {},
}

// Tokenize lowercases text and returns distinct terms longer than two characters,
// minus stop words, in first-seen order.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "-")
		if utf8.RuneCountInString(f) < minTermLength {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

type occurrence struct {
	pos  int
	term int
}

type cluster struct {
	start, end int
	distinct   int
}

type sectionScore struct {
	score      float64
	matches    int
	best       cluster
	hasMatches bool
}

// scoreSection finds term occurrences in text, picks the best proximity cluster and
// combines its distinct-term ratio with a bounded BM25 section score.
func scoreSection(text string, terms []string) sectionScore {
	if len(terms) == 0 {
		return sectionScore{}
	}
	lower := strings.ToLower(text)

	var occ []occurrence
	tf := make([]int, len(terms))
	for i, term := range terms {
		for _, p := range termPositions(lower, term) {
			occ = append(occ, occurrence{pos: p, term: i})
			tf[i]++
		}
	}
	if len(occ) == 0 {
		return sectionScore{}
	}
	sort.Slice(occ, func(i, j int) bool { return occ[i].pos < occ[j].pos })

	best := bestCluster(occ, terms)
	clusterScore := float64(best.distinct) / float64(len(terms))
	bm25 := bm25Mean(tf, len(strings.Fields(text)))

	return sectionScore{
		score:      clamp01(clusterWeight*clusterScore + bm25Weight*bm25),
		matches:    len(occ),
		best:       best,
		hasMatches: true,
	}
}

// bestCluster greedily groups occurrences whose distance from the cluster start stays
// within clusterWindow. The earliest cluster with the most distinct terms wins.
func bestCluster(occ []occurrence, terms []string) cluster {
	var best cluster
	for i := 0; i < len(occ); {
		start := occ[i].pos
		seen := make(map[int]struct{})
		end := start
		j := i
		for ; j < len(occ) && occ[j].pos-start <= clusterWindow; j++ {
			seen[occ[j].term] = struct{}{}
			if e := occ[j].pos + len(terms[occ[j].term]); e > end {
				end = e
			}
		}
		if len(seen) > best.distinct {
			best = cluster{start: start, end: end, distinct: len(seen)}
		}
		i = j
	}
	return best
}

// bm25Mean averages per-term BM25 contributions, each divided by (k1+1) so it stays below 1.
func bm25Mean(tf []int, docLen int) float64 {
	if len(tf) == 0 {
		return 0
	}
	norm := 1 - bm25B + bm25B*float64(docLen)/avgSectionWords
	sum := 0.0
	for _, f := range tf {
		if f == 0 {
			continue
		}
		t := float64(f)
		sum += t * (bm25K1 + 1) / (t + bm25K1*norm) / (bm25K1 + 1)
	}
	return sum / float64(len(tf))
}

// termPositions returns byte offsets of word-bounded occurrences of term in lower.
func termPositions(lower, term string) []int {
	var out []int
	from := 0
	for {
		i := strings.Index(lower[from:], term)
		if i < 0 {
			return out
		}
		start := from + i
		end := start + len(term)
		if boundaryBefore(lower, start) && boundaryAfter(lower, end) {
			out = append(out, start)
		}
		from = start + 1
	}
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
