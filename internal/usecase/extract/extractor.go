// Package extract pulls companies, tickers, form types, time expressions, topics and a
// best-guess intent out of raw query text. It performs no I/O.
package extract

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/kailas-cloud/edgarsearch/internal/domain/entity"
	"github.com/kailas-cloud/edgarsearch/internal/domain/knowledge"
)

// minQueryLength is the shortest trimmed input worth scanning.
const minQueryLength = 2

// intentFloor is the minimum intent score kept.
const intentFloor = 0.3

var tickerRe = regexp.MustCompile(`\b[A-Z]{1,5}\b`)

// Extractor is safe for concurrent use.
type Extractor struct {
	kb     *knowledge.Base
	formRe *regexp.Regexp
	now    func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock overrides the clock used to resolve relative time expressions.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an extractor over the given knowledge base.
func New(kb *knowledge.Base, opts ...Option) *Extractor {
	if kb == nil {
		kb = knowledge.Default()
	}
	e := &Extractor{kb: kb, formRe: buildFormRegexp(kb.FormCodes()), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Knowledge returns the tables the extractor was built with.
func (e *Extractor) Knowledge() *knowledge.Base { return e.kb }

// Extract scans query and returns all entities found. Short input yields empty sets.
func (e *Extractor) Extract(query string) entity.Entities {
	out := entity.Entities{
		Companies: []entity.Company{},
		Tickers:   []entity.Ticker{},
		FormTypes: []entity.FormType{},
		TimeExprs: []entity.TimeExpr{},
		Topics:    []entity.Topic{},
	}
	query = strings.TrimSpace(query)
	if len(query) < minQueryLength {
		return out
	}
	lower := strings.ToLower(query)

	out.Companies = e.companies(lower)
	out.Topics = e.topics(lower)
	out.Tickers = e.tickers(query)
	out.FormTypes = e.formTypes(query, lower)
	out.TimeExprs = newTimeScanner(e.now()).scan(query)
	out.Intent = e.intent(lower)
	return out
}

func (e *Extractor) companies(lower string) []entity.Company {
	out := []entity.Company{}
	seen := make(map[string]struct{})
	for _, is := range e.kb.Issuers() {
		conf, source := 0.0, ""
		if containsPhrase(lower, strings.ToLower(is.Name)) {
			conf, source = 0.9, entity.SourceKnownIssuer
		} else {
			for _, alias := range is.Aliases {
				if containsPhrase(lower, strings.ToLower(alias)) {
					conf, source = 0.8, entity.SourceAlias
					break
				}
			}
		}
		if source == "" {
			continue
		}
		if _, dup := seen[is.Name]; dup {
			continue
		}
		seen[is.Name] = struct{}{}
		out = append(out, entity.Company{Name: is.Name, Ticker: is.Ticker, Confidence: conf, Source: source})
	}
	return out
}

func (e *Extractor) topics(lower string) []entity.Topic {
	out := []entity.Topic{}
	for _, t := range e.kb.Topics() {
		conf := 0.0
		if containsPhrase(lower, strings.ToLower(t.Keyword)) {
			conf = 0.8
		} else {
			for _, syn := range t.Synonyms {
				if containsPhrase(lower, strings.ToLower(syn)) {
					conf = 0.7
					break
				}
			}
		}
		if conf > 0 {
			out = append(out, entity.Topic{Keyword: t.Keyword, Category: t.Category, Confidence: conf})
		}
	}
	return out
}

func (e *Extractor) tickers(query string) []entity.Ticker {
	out := []entity.Ticker{}
	seen := make(map[string]struct{})
	for _, loc := range tickerRe.FindAllStringIndex(query, -1) {
		if loc[0] > 0 {
			// "10-K", "8-K/A" and similar codes are not tickers.
			prev := query[loc[0]-1]
			if prev == '-' || prev == '/' || (prev >= '0' && prev <= '9') {
				continue
			}
		}
		tok := query[loc[0]:loc[1]]
		_, known := e.kb.IssuerByTicker(tok)
		if e.kb.IsStopWord(tok) && !(known && len(tok) > 1) {
			continue
		}
		if len(tok) == 1 && !known {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		conf := 0.6
		if known {
			conf = 0.9
		}
		out = append(out, entity.Ticker{Symbol: tok, Confidence: conf})
	}
	return out
}

func (e *Extractor) formTypes(query, lower string) []entity.FormType {
	byCode := make(map[string]*entity.FormType)
	var order []string
	add := func(code, raw string, conf float64) {
		ft, ok := byCode[code]
		if !ok {
			ft = &entity.FormType{Code: code}
			byCode[code] = ft
			order = append(order, code)
		}
		if conf > ft.Confidence {
			ft.Confidence = conf
		}
		for _, v := range ft.Variants {
			if v == raw {
				return
			}
		}
		ft.Variants = append(ft.Variants, raw)
	}

	if e.formRe != nil {
		for _, loc := range e.formRe.FindAllStringIndex(query, -1) {
			if !formBounded(query, loc[0], loc[1]) {
				continue
			}
			raw := query[loc[0]:loc[1]]
			if code, ok := e.kb.CanonicalForm(raw); ok {
				add(code, raw, 0.95)
			}
		}
	}
	synonyms := e.kb.FormSynonyms()
	keys := make([]string, 0, len(synonyms))
	for k := range synonyms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, syn := range keys {
		if containsPhrase(lower, syn) {
			add(synonyms[syn], syn, 0.8)
		}
	}

	out := make([]entity.FormType, 0, len(order))
	for _, code := range order {
		out = append(out, *byCode[code])
	}
	return out
}

// intent scores every intent by keyword-length-weighted hits plus a multi-match bonus.
func (e *Extractor) intent(lower string) *entity.Intent {
	var best *entity.Intent
	for _, in := range e.kb.Intents() {
		score, hits := 0.0, 0
		for _, kw := range in.Keywords {
			if !containsPhrase(lower, strings.ToLower(kw)) {
				continue
			}
			hits++
			w := float64(len(kw)) / 10
			if w > 1 {
				w = 1
			}
			score += 0.5 * w
		}
		if hits == 0 {
			continue
		}
		if hits > 1 {
			score += 0.15 * float64(hits-1)
		}
		score = entity.Clamp(score)
		if score < intentFloor {
			continue
		}
		if best == nil || score > best.Confidence {
			best = &entity.Intent{
				Label:      in.Label,
				Confidence: score,
				FormTypes:  append([]string(nil), in.FormTypes...),
				Priority:   in.Priority,
			}
		}
	}
	return best
}

func buildFormRegexp(codes []string) *regexp.Regexp {
	if len(codes) == 0 {
		return nil
	}
	sorted := append([]string(nil), codes...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	parts := make([]string, len(sorted))
	for i, c := range sorted {
		parts[i] = strings.ReplaceAll(regexp.QuoteMeta(c), " ", `\s+`)
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(parts, "|") + `)`)
}

// formBounded rejects codes glued to other code characters, such as "10-K" inside "10-K405".
func formBounded(s string, start, end int) bool {
	if start > 0 {
		if c := s[start-1]; isWordByte(c) || c == '-' {
			return false
		}
	}
	if end < len(s) {
		if c := s[end]; isWordByte(c) || c == '-' || c == '/' {
			return false
		}
	}
	return true
}

// containsPhrase reports a case-sensitive match of phrase bounded by non-alphanumerics.
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	from := 0
	for {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(phrase)
		if (start == 0 || !isWordByte(text[start-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		from = start + 1
	}
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
