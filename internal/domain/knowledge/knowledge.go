// Package knowledge holds the read-only lookup tables used by extraction, classification
// and discovery. A Base is built once and never mutated, so several may coexist.
package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/edgarsearch/internal/domain/entity"
)

// DefaultUniverseCap bounds the fallback issuer universe.
const DefaultUniverseCap = 20

// Issuer is a well-known issuer matched by name in free text.
type Issuer struct {
	Name     string   `yaml:"name"`
	Aliases  []string `yaml:"aliases"`
	Ticker   string   `yaml:"ticker"`
	Industry string   `yaml:"industry"`
}

// Topic is a topic keyword and the spellings that map to it.
type Topic struct {
	Keyword  string          `yaml:"keyword"`
	Category entity.Category `yaml:"category"`
	Synonyms []string        `yaml:"synonyms"`
}

// Intent maps keywords to the filing types that usually answer them.
type Intent struct {
	Label     string          `yaml:"label"`
	Keywords  []string        `yaml:"keywords"`
	FormTypes []string        `yaml:"form_types"`
	Priority  entity.Priority `yaml:"priority"`
}

// Tables is the raw, serializable form of a knowledge base.
type Tables struct {
	Issuers         []Issuer            `yaml:"issuers"`
	Topics          []Topic             `yaml:"topics"`
	Intents         []Intent            `yaml:"intents"`
	Industries      map[string][]string `yaml:"industries"`
	TopicIndustries map[string][]string `yaml:"topic_industries"`
	FormCodes       []string            `yaml:"form_codes"`
	FormSynonyms    map[string]string   `yaml:"form_synonyms"`
	TickerStopWords []string            `yaml:"ticker_stop_words"`
	DefaultUniverse []string            `yaml:"default_universe"`
	FormAuthority   map[string]int      `yaml:"form_authority"`
}

// Base is an immutable knowledge base.
type Base struct {
	issuers         []Issuer
	topics          []Topic
	intents         []Intent
	industries      map[string][]string
	topicIndustries map[string][]string
	formCodes       []string
	formCanon       map[string]string
	formSynonyms    map[string]string
	stopWords       map[string]struct{}
	byTicker        map[string]Issuer
	universe        []string
	authority       map[string]int
	unranked        int
}

// New freezes tables into a Base.
func New(t Tables) *Base {
	b := &Base{
		issuers:         slices.Clone(t.Issuers),
		topics:          slices.Clone(t.Topics),
		intents:         slices.Clone(t.Intents),
		industries:      make(map[string][]string, len(t.Industries)),
		topicIndustries: make(map[string][]string, len(t.TopicIndustries)),
		formCodes:       slices.Clone(t.FormCodes),
		formCanon:       make(map[string]string, len(t.FormCodes)),
		formSynonyms:    make(map[string]string, len(t.FormSynonyms)),
		stopWords:       make(map[string]struct{}, len(t.TickerStopWords)),
		byTicker:        make(map[string]Issuer, len(t.Issuers)),
		universe:        slices.Clone(t.DefaultUniverse),
		authority:       make(map[string]int, len(t.FormAuthority)),
	}
	for k, v := range t.Industries {
		b.industries[strings.ToLower(k)] = slices.Clone(v)
	}
	for k, v := range t.TopicIndustries {
		b.topicIndustries[strings.ToLower(k)] = slices.Clone(v)
	}
	for _, code := range t.FormCodes {
		b.formCanon[strings.ToUpper(code)] = code
	}
	for k, v := range t.FormSynonyms {
		b.formSynonyms[strings.ToLower(k)] = v
	}
	for _, w := range t.TickerStopWords {
		b.stopWords[strings.ToUpper(w)] = struct{}{}
	}
	for _, is := range t.Issuers {
		if is.Ticker != "" {
			b.byTicker[strings.ToUpper(is.Ticker)] = is
		}
	}
	maxRank := 0
	for f, r := range t.FormAuthority {
		b.authority[strings.ToUpper(f)] = r
		if r > maxRank {
			maxRank = r
		}
	}
	b.unranked = maxRank + 1
	if len(b.universe) > DefaultUniverseCap {
		b.universe = b.universe[:DefaultUniverseCap]
	}
	return b
}

// Issuers returns the known issuers.
func (b *Base) Issuers() []Issuer { return slices.Clone(b.issuers) }

// Topics returns the topic table.
func (b *Base) Topics() []Topic { return slices.Clone(b.topics) }

// Intents returns the intent table.
func (b *Base) Intents() []Intent { return slices.Clone(b.intents) }

// FormCodes returns the canonical form codes.
func (b *Base) FormCodes() []string { return slices.Clone(b.formCodes) }

// FormSynonyms returns a copy of the lowercase synonym → code table.
func (b *Base) FormSynonyms() map[string]string {
	out := make(map[string]string, len(b.formSynonyms))
	for k, v := range b.formSynonyms {
		out[k] = v
	}
	return out
}

// CanonicalForm returns the canonical spelling of a form code.
func (b *Base) CanonicalForm(raw string) (string, bool) {
	raw = strings.Join(strings.Fields(raw), " ")
	if code, ok := b.formCanon[strings.ToUpper(raw)]; ok {
		return code, true
	}
	code, ok := b.formSynonyms[strings.ToLower(raw)]
	return code, ok
}

// IsStopWord reports whether an uppercase token must not be taken as a ticker.
func (b *Base) IsStopWord(token string) bool {
	_, ok := b.stopWords[strings.ToUpper(token)]
	return ok
}

// IssuerByTicker looks up a known issuer by ticker.
func (b *Base) IssuerByTicker(ticker string) (Issuer, bool) {
	is, ok := b.byTicker[strings.ToUpper(ticker)]
	return is, ok
}

// IndustryIssuers returns the issuer identifiers listed for an industry.
func (b *Base) IndustryIssuers(industry string) []string {
	return slices.Clone(b.industries[strings.ToLower(industry)])
}

// TopicIndustries returns the industries associated with a topic keyword.
func (b *Base) TopicIndustries(keyword string) []string {
	return slices.Clone(b.topicIndustries[strings.ToLower(keyword)])
}

// DefaultUniverse returns the fallback issuer universe, capped at DefaultUniverseCap.
func (b *Base) DefaultUniverse() []string { return slices.Clone(b.universe) }

// AuthorityRank ranks a form by how comprehensive it is. Lower is more authoritative;
// forms outside the table rank after all listed ones.
func (b *Base) AuthorityRank(form string) int {
	if r, ok := b.authority[strings.ToUpper(form)]; ok {
		return r
	}
	return b.unranked
}

// IsAuthoritative reports whether the form is the most comprehensive kind.
func (b *Base) IsAuthoritative(form string) bool {
	return b.AuthorityRank(form) == 0
}

// LoadFile merges a YAML override file over the defaults and freezes the result.
// Issuers replace defaults with the same ticker, intents replace by label, topics
// replace by keyword, map tables merge by key, list tables replace when non-empty.
func LoadFile(path string) (*Base, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read knowledge file %s: %w", path, err)
	}
	var override Tables
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse knowledge file: %w", err)
	}
	return New(Merge(DefaultTables(), override)), nil
}

// Merge overlays o onto base.
func Merge(base, o Tables) Tables {
	out := base
	out.Issuers = mergeBy(base.Issuers, o.Issuers, issuerKey)
	out.Topics = mergeBy(base.Topics, o.Topics, func(t Topic) string { return strings.ToLower(t.Keyword) })
	out.Intents = mergeBy(base.Intents, o.Intents, func(i Intent) string { return i.Label })
	out.Industries = mergeMap(base.Industries, o.Industries)
	out.TopicIndustries = mergeMap(base.TopicIndustries, o.TopicIndustries)
	out.FormSynonyms = make(map[string]string, len(base.FormSynonyms)+len(o.FormSynonyms))
	for k, v := range base.FormSynonyms {
		out.FormSynonyms[k] = v
	}
	for k, v := range o.FormSynonyms {
		out.FormSynonyms[k] = v
	}
	if len(o.FormCodes) > 0 {
		out.FormCodes = o.FormCodes
	}
	if len(o.TickerStopWords) > 0 {
		out.TickerStopWords = o.TickerStopWords
	}
	if len(o.DefaultUniverse) > 0 {
		out.DefaultUniverse = o.DefaultUniverse
	}
	if len(o.FormAuthority) > 0 {
		out.FormAuthority = o.FormAuthority
	}
	return out
}

func issuerKey(i Issuer) string {
	if i.Ticker != "" {
		return strings.ToUpper(i.Ticker)
	}
	return strings.ToLower(i.Name)
}

func mergeBy[T any](base, override []T, key func(T) string) []T {
	out := slices.Clone(base)
	index := make(map[string]int, len(out))
	for i, v := range out {
		index[key(v)] = i
	}
	for _, v := range override {
		if i, ok := index[key(v)]; ok {
			out[i] = v
			continue
		}
		index[key(v)] = len(out)
		out = append(out, v)
	}
	return out
}

func mergeMap(base, override map[string][]string) map[string][]string {
	out := make(map[string][]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
