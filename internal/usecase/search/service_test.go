package search

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/edgarsearch/internal/domain"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/progress"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/result"
	"github.com/kailas-cloud/edgarsearch/internal/usecase/batch"
)

// --- Mocks ---

type mockContent struct {
	mu         sync.Mutex
	bodies     map[string]string
	sections   map[string][]filing.Section
	bodyErr    map[string]error
	bodyCalls  int
	sectsCalls int
}

func (m *mockContent) GetDocumentBody(_ context.Context, _, documentID string) (filing.Body, error) {
	m.mu.Lock()
	m.bodyCalls++
	m.mu.Unlock()
	if err := m.bodyErr[documentID]; err != nil {
		return filing.Body{}, err
	}
	b, ok := m.bodies[documentID]
	if !ok {
		return filing.Body{}, domain.ErrNotFound
	}
	return filing.Body{Content: b}, nil
}

func (m *mockContent) GetDocumentSections(_ context.Context, _, documentID string, _ []string) ([]filing.Section, error) {
	m.mu.Lock()
	m.sectsCalls++
	m.mu.Unlock()
	if s, ok := m.sections[documentID]; ok {
		return s, nil
	}
	return nil, domain.ErrNotImplemented
}

func filler(n int) string {
	return strings.Repeat("The company operates in several markets and reports results annually. ", n)
}

func doc(id, issuer, form string, filed time.Time) filing.Discovered {
	return filing.Discovered{
		IssuerID: issuer, IssuerName: "Issuer " + issuer, DocumentID: id, Form: form,
		FiledAt: filed, URL: "https://sec.example/" + id,
	}
}

var (
	older = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	newer = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
)

func newMockContent() *mockContent {
	return &mockContent{
		bodies: map[string]string{
			"d1": filler(3) + "Cybersecurity risks include ransomware attacks on our systems. " + filler(3),
			"d2": filler(3) + "Cybersecurity risks include ransomware attacks on our systems. " + filler(3),
			"d3": filler(5) + "We face cybersecurity threats. " + filler(20) + "Other risks exist. " + filler(2),
			"d4": filler(10),
		},
		bodyErr: map[string]error{},
	}
}

func baseDocs() []filing.Discovered {
	return []filing.Discovered{
		doc("d1", "1", "8-K", older),
		doc("d2", "2", "8-K", newer),
		doc("d3", "3", "8-K", newer),
		doc("d4", "4", "8-K", newer),
	}
}

// --- Tests ---

func TestSearch_EmptyQueryFailsBeforeFetch(t *testing.T) {
	m := newMockContent()
	svc := New(m)
	for _, q := range []string{"", "   "} {
		_, err := svc.Search(context.Background(), request.Search{Documents: baseDocs(), Query: q}, nil)
		if !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("expected ErrInvalidQuery for %q, got %v", q, err)
		}
	}
	if m.bodyCalls != 0 || m.sectsCalls != 0 {
		t.Errorf("expected no fetches, got body=%d sections=%d", m.bodyCalls, m.sectsCalls)
	}
}

func TestSearch_SortedAndAboveFloor(t *testing.T) {
	svc := New(newMockContent())
	res, err := svc.Search(context.Background(), request.Search{
		Documents: baseDocs(),
		Query:     "cybersecurity risks",
		MinScore:  request.ScoreFloor(0.2),
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) == 0 {
		t.Fatal("expected results")
	}
	for i, r := range res {
		if r.Score < 0.2 {
			t.Errorf("result %d below floor: %v", i, r.Score)
		}
		if r.Score > 1 {
			t.Errorf("result %d above 1: %v", i, r.Score)
		}
		if i == 0 {
			continue
		}
		prev := res[i-1]
		if r.Score > prev.Score {
			t.Errorf("not sorted by score at %d", i)
		}
		if r.Score == prev.Score && r.Document.FiledAt.After(prev.Document.FiledAt) {
			t.Errorf("tie not broken by filed date at %d", i)
		}
	}
	// d1 and d2 score identically; the newer filing wins the tie.
	if res[0].Document.DocumentID != "d2" || res[1].Document.DocumentID != "d1" {
		t.Errorf("expected d2 then d1, got %s then %s", res[0].Document.DocumentID, res[1].Document.DocumentID)
	}
	for _, r := range res {
		if r.Document.DocumentID == "d4" {
			t.Error("document without matches returned")
		}
		if !r.Document.ContentFetched {
			t.Error("expected content-fetched flag")
		}
		if r.Citation == "" || r.SourceURL == "" {
			t.Errorf("missing citation or url: %+v", r)
		}
	}
}

func TestSearch_ProximityBeatsScattered(t *testing.T) {
	svc := New(newMockContent())
	res, err := svc.Search(context.Background(), request.Search{
		Documents: baseDocs()[1:3],
		Query:     "cybersecurity risks",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) < 2 || res[0].Document.DocumentID != "d2" {
		t.Fatalf("expected clustered d2 first, got %+v", res)
	}
	if res[0].Score <= res[1].Score {
		t.Errorf("expected clustered score above scattered: %v vs %v", res[0].Score, res[1].Score)
	}
}

func TestSearch_SkipsFailedDocument(t *testing.T) {
	m := newMockContent()
	m.bodyErr["d2"] = fmt.Errorf("status 503: %w", domain.ErrUpstream)
	res, err := New(m).Search(context.Background(), request.Search{
		Documents: baseDocs(),
		Query:     "ransomware",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 1 || res[0].Document.DocumentID != "d1" {
		t.Errorf("expected only d1, got %+v", res)
	}
}

func TestSearch_NativeSectionsPreferred(t *testing.T) {
	m := newMockContent()
	m.sections = map[string][]filing.Section{
		"d1": {{Tag: "item_1a", Title: "Item 1A. Risk Factors", Text: filler(2) + "ransomware " + filler(2)}},
	}
	res, err := New(m).Search(context.Background(), request.Search{
		Documents: baseDocs()[:1],
		Query:     "ransomware",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.bodyCalls != 0 {
		t.Errorf("expected no body fetch, got %d", m.bodyCalls)
	}
	if len(res) != 1 || res[0].Section != "item_1a" {
		t.Errorf("expected item_1a passage, got %+v", res)
	}
}

func TestSearch_SectionAllowList(t *testing.T) {
	m := newMockContent()
	m.sections = map[string][]filing.Section{
		"d1": {
			{Tag: "item_1a", Title: "Item 1A. Risk Factors", Text: filler(2) + "ransomware " + filler(2)},
			{Tag: "item_7", Title: "Item 7. Management's Discussion", Text: filler(2) + "ransomware " + filler(2)},
		},
	}
	res, err := New(m).Search(context.Background(), request.Search{
		Documents: baseDocs()[:1],
		Query:     "ransomware",
		Sections:  []string{"risk factors"},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 1 || res[0].Section != "item_1a" {
		t.Errorf("expected only item_1a, got %+v", res)
	}
}

func TestSearch_Snippets(t *testing.T) {
	res, err := New(newMockContent()).Search(context.Background(), request.Search{
		Documents:     baseDocs()[:1],
		Query:         "ransomware",
		Snippets:      true,
		SnippetLength: 80,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 1 {
		t.Fatalf("expected 1 result, got %d", len(res))
	}
	s := res[0].Snippet
	if !strings.Contains(s, "ransomware") {
		t.Errorf("snippet misses the match: %q", s)
	}
	if len(s) > 80 {
		t.Errorf("snippet too long: %d", len(s))
	}
	if strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		t.Errorf("snippet not trimmed: %q", s)
	}
}

func TestSearch_ProgressOperations(t *testing.T) {
	var ops []string
	_, err := New(newMockContent()).Search(context.Background(), request.Search{
		Documents: baseDocs()[:2],
		Query:     "ransomware",
	}, func(e progress.Event) { ops = append(ops, e.Operation) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{progress.OpContentFetch, progress.OpContentFetch, progress.OpSearch, progress.OpSearch}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("progress = %v, want %v", ops, want)
	}
}

func TestSearch_ConcurrentMatchesSequential(t *testing.T) {
	params := request.Search{Documents: baseDocs(), Query: "cybersecurity risks ransomware"}
	seq, err := New(newMockContent()).Search(context.Background(), params, nil)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	par, err := New(newMockContent(), WithRunner(batch.New(batch.WithWorkers(4)))).
		Search(context.Background(), params, nil)
	if err != nil {
		t.Fatalf("concurrent: %v", err)
	}
	if !reflect.DeepEqual(seq, par) {
		t.Errorf("concurrent results differ from sequential")
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	d := doc("d1", "1", "10-K", older)
	in := []result.Result{
		{Document: d, Section: "full_document", SnippetStart: 10, Score: 0.9},
		{Document: d, Section: "full_document", SnippetStart: 10, Score: 0.8},
		{Document: d, Section: "item_1a", SnippetStart: 10, Score: 0.7},
		{Document: d, Section: "full_document", SnippetStart: 50, Score: 0.6},
	}
	once := Dedupe(in)
	twice := Dedupe(once)
	if len(once) != 3 {
		t.Errorf("expected 3 unique results, got %d", len(once))
	}
	if !reflect.DeepEqual(once, twice) {
		t.Error("dedupe not idempotent")
	}
	if once[0].Score != 0.9 {
		t.Error("dedupe must keep the first occurrence")
	}
}

func TestPostProcess_TruncatesAndFilters(t *testing.T) {
	d := doc("d1", "1", "10-K", older)
	in := []result.Result{
		{Document: d, Section: "a", Score: 0.05},
		{Document: d, Section: "b", Score: 0.5},
		{Document: d, Section: "c", Score: 0.9},
		{Document: d, Section: "d", Score: 0.3},
	}
	out := PostProcess(in, 0.1, 2, false)
	if len(out) != 2 || out[0].Section != "c" || out[1].Section != "b" {
		t.Errorf("unexpected post-process output: %+v", out)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("What are the Cybersecurity risks, AI and supply-chain risks?")
	want := []string{"cybersecurity", "risks", "supply-chain"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestBM25Bounded(t *testing.T) {
	for _, tc := range []struct {
		tf  []int
		len int
	}{
		{[]int{1}, 10}, {[]int{1000}, 50}, {[]int{3, 0}, 100000}, {[]int{0, 0}, 10},
	} {
		v := bm25Mean(tc.tf, tc.len)
		if v < 0 || v >= 1 {
			t.Errorf("bm25Mean(%v, %d) = %v, want [0,1)", tc.tf, tc.len, v)
		}
	}
}

func TestSnippet_WordBoundaries(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda"
	i := strings.Index(text, "epsilon")
	s, start, end := Snippet(text, i, i+len("epsilon"), 20)
	if !strings.Contains(s, "epsilon") {
		t.Errorf("snippet %q misses center word", s)
	}
	if start > 0 && text[start-1] != ' ' {
		t.Errorf("snippet starts mid-word at %d", start)
	}
	if end < len(text) && text[end] != ' ' {
		t.Errorf("snippet ends mid-word at %d", end)
	}
}
