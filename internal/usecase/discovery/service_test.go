package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/edgarsearch/internal/domain"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/knowledge"
	"github.com/kailas-cloud/edgarsearch/internal/domain/progress"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
	"github.com/kailas-cloud/edgarsearch/internal/usecase/batch"
)

// --- Mocks ---

type mockClient struct {
	mu       sync.Mutex
	issuers  map[string]filing.Issuer
	filings  map[string][]filing.Filing
	failList map[string]error
	listed   []filing.ListParams
	calls    int
}

func (m *mockClient) ResolveIssuerID(_ context.Context, identifier string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	for id, is := range m.issuers {
		for _, t := range is.Tickers {
			if strings.EqualFold(t, identifier) {
				return id, nil
			}
		}
	}
	return "", fmt.Errorf("ticker %s: %w", identifier, domain.ErrNotFound)
}

func (m *mockClient) GetIssuerProfile(_ context.Context, id string) (filing.Issuer, error) {
	is, ok := m.issuers[id]
	if !ok {
		return filing.Issuer{}, domain.ErrNotFound
	}
	return is, nil
}

func (m *mockClient) ListRecentDocuments(_ context.Context, p filing.ListParams) ([]filing.Filing, error) {
	m.mu.Lock()
	m.listed = append(m.listed, p)
	m.mu.Unlock()
	if err := m.failList[p.IssuerID]; err != nil {
		return nil, err
	}
	var out []filing.Filing
	for _, f := range m.filings[p.IssuerID] {
		if filing.MatchesForm(f.Form, p.FormTypes) {
			out = append(out, f)
		}
	}
	return out, nil
}

var testNow = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func newMockClient() *mockClient {
	return &mockClient{
		issuers: map[string]filing.Issuer{
			"0000320193": {ID: "0000320193", Name: "Apple Inc.", Tickers: []string{"AAPL"}, Industry: "technology"},
			"0000789019": {ID: "0000789019", Name: "Microsoft Corp", Tickers: []string{"MSFT"}, Industry: "technology"},
			"0000019617": {ID: "0000019617", Name: "JPMorgan Chase & Co", Tickers: []string{"JPM"}, Industry: "banking"},
		},
		filings: map[string][]filing.Filing{
			"0000320193": {
				{AccessionNumber: "a-10k-2024", Form: "10-K", FiledAt: day(2024, 11, 1), URL: "https://sec.example/a1"},
				{AccessionNumber: "a-10q-2025", Form: "10-Q", FiledAt: day(2025, 5, 2), URL: "https://sec.example/a2"},
				{AccessionNumber: "a-10k-2023", Form: "10-K", FiledAt: day(2023, 11, 3), URL: "https://sec.example/a3"},
			},
			"0000789019": {
				{AccessionNumber: "m-10k-2024", Form: "10-K", FiledAt: day(2024, 7, 30), URL: "https://sec.example/m1"},
				{AccessionNumber: "m-8k-2025", Form: "8-K", FiledAt: day(2025, 4, 25), URL: "https://sec.example/m2"},
			},
			"0000019617": {
				{AccessionNumber: "j-10k-2025", Form: "10-K", FiledAt: day(2025, 2, 14), URL: "https://sec.example/j1"},
			},
		},
		failList: map[string]error{},
	}
}

func newTestService(c Client, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return New(c, knowledge.Default(), opts...)
}

// --- Tests ---

func TestDiscover_ExplicitCompanies(t *testing.T) {
	svc := newTestService(newMockClient())
	docs, err := svc.Discover(context.Background(), request.Discovery{
		Companies:  []string{"AAPL", "MSFT"},
		FormTypes:  []string{"10-K"},
		MaxResults: 10,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) == 0 || len(docs) > 10 {
		t.Fatalf("expected 1..10 docs, got %d", len(docs))
	}
	for _, d := range docs {
		if d.IssuerID == "" {
			t.Error("expected non-empty issuer id")
		}
		if d.Form != "10-K" {
			t.Errorf("expected 10-K, got %s", d.Form)
		}
		if !strings.HasPrefix(d.URL, "https://") {
			t.Errorf("expected resolvable URL, got %q", d.URL)
		}
	}
	for i := 1; i < len(docs); i++ {
		if docs[i].FiledAt.After(docs[i-1].FiledAt) {
			t.Errorf("not sorted by filed date desc at %d", i)
		}
	}
	if docs[0].Ticker != "AAPL" {
		t.Errorf("expected newest AAPL 10-K first, got %+v", docs[0])
	}
}

func TestDiscover_ImpossibleDateRange(t *testing.T) {
	svc := newTestService(newMockClient())
	docs, err := svc.Discover(context.Background(), request.Discovery{
		Companies: []string{"AAPL", "MSFT"},
		DateRange: &filing.DateRange{From: day(1990, 1, 1), To: day(1990, 12, 31)},
	}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("expected empty non-nil list, got %v", docs)
	}
}

func TestDiscover_DateWindowDays(t *testing.T) {
	c := newMockClient()
	svc := newTestService(c)
	_, err := svc.Discover(context.Background(), request.Discovery{
		Companies: []string{"AAPL"},
		DateRange: &filing.DateRange{From: day(2025, 6, 5)},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.listed) != 1 || c.listed[0].Days != 11 {
		t.Errorf("expected an 11-day window, got %+v", c.listed)
	}
}

func TestDiscover_SkipsFailingIssuer(t *testing.T) {
	c := newMockClient()
	c.failList["0000789019"] = fmt.Errorf("status 503: %w", domain.ErrUpstream)
	svc := newTestService(c)
	docs, err := svc.Discover(context.Background(), request.Discovery{
		Companies: []string{"AAPL", "UNKNOWN", "MSFT", "JPM"},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := map[string]bool{}
	for _, d := range docs {
		seen[d.IssuerID] = true
	}
	if !seen["0000320193"] || !seen["0000019617"] {
		t.Errorf("healthy issuers missing: %v", seen)
	}
	if seen["0000789019"] {
		t.Error("failing issuer should contribute nothing")
	}
}

func TestDiscover_IndustryUniverse(t *testing.T) {
	c := newMockClient()
	svc := newTestService(c)
	got := svc.Universe(request.Discovery{Industries: []string{"banking", "financial"}})
	if len(got) == 0 || got[0] != "JPM" {
		t.Fatalf("expected banking issuers first, got %v", got)
	}
	seen := map[string]int{}
	for _, id := range got {
		seen[id]++
		if seen[id] > 1 {
			t.Errorf("duplicate issuer %s in universe", id)
		}
	}
}

func TestDiscover_DefaultUniverseCapped(t *testing.T) {
	tickers := make([]string, 30)
	for i := range tickers {
		tickers[i] = fmt.Sprintf("T%02d", i)
	}
	kb := knowledge.New(knowledge.Tables{DefaultUniverse: tickers})
	svc := New(newMockClient(), kb)
	if got := svc.Universe(request.Discovery{}); len(got) != knowledge.DefaultUniverseCap {
		t.Errorf("expected %d issuers, got %d", knowledge.DefaultUniverseCap, len(got))
	}
}

func TestDiscover_EmptyUniverse(t *testing.T) {
	c := newMockClient()
	svc := New(c, knowledge.New(knowledge.Tables{}))
	_, err := svc.Discover(context.Background(), request.Discovery{}, nil)
	if !errors.Is(err, domain.ErrEmptyUniverse) {
		t.Fatalf("expected ErrEmptyUniverse, got %v", err)
	}
	if c.calls != 0 {
		t.Errorf("expected no fetches, got %d", c.calls)
	}
}

func TestDiscover_InvalidSort(t *testing.T) {
	svc := newTestService(newMockClient())
	_, err := svc.Discover(context.Background(), request.Discovery{Companies: []string{"AAPL"}, SortBy: "size"}, nil)
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestDiscover_ProgressBeforeEachIssuer(t *testing.T) {
	svc := newTestService(newMockClient())
	var events []progress.Event
	_, err := svc.Discover(context.Background(), request.Discovery{
		Companies: []string{"AAPL", "MSFT", "JPM"},
	}, func(e progress.Event) { events = append(events, e) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, e := range events {
		if e.Operation != progress.OpDiscovery || e.Completed != i || e.Total != 3 {
			t.Errorf("event %d = %+v", i, e)
		}
	}
	if events[1].Current != "MSFT" {
		t.Errorf("expected current MSFT, got %q", events[1].Current)
	}
}

func TestDiscover_SortOrders(t *testing.T) {
	tests := []struct {
		name  string
		by    request.SortKey
		order request.SortOrder
		first string
	}{
		{"filed desc", request.SortFiledDate, request.Desc, "a-10q-2025"},
		{"filed asc", request.SortFiledDate, request.Asc, "a-10k-2023"},
		{"issuer asc", request.SortIssuerName, request.Asc, "a-10k-2024"},
		{"issuer desc", request.SortIssuerName, request.Desc, "m-10k-2024"},
		{"relevance keeps universe order", request.SortRelevance, request.Desc, "m-10k-2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMockClient())
			docs, err := svc.Discover(context.Background(), request.Discovery{
				Companies: []string{"MSFT", "AAPL"},
				FormTypes: []string{"10-K", "10-Q"},
				SortBy:    tt.by,
				SortOrder: tt.order,
			}, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if docs[0].DocumentID != tt.first {
				t.Errorf("first = %s, want %s", docs[0].DocumentID, tt.first)
			}
		})
	}
}

func TestDiscover_ConcurrentMatchesSequential(t *testing.T) {
	params := request.Discovery{Companies: []string{"AAPL", "MSFT", "JPM"}, MaxResults: 4}
	seq, err := newTestService(newMockClient()).Discover(context.Background(), params, nil)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	par, err := newTestService(newMockClient(), WithRunner(batch.New(batch.WithWorkers(3)))).
		Discover(context.Background(), params, nil)
	if err != nil {
		t.Fatalf("concurrent: %v", err)
	}
	if len(seq) != len(par) {
		t.Fatalf("length mismatch %d vs %d", len(seq), len(par))
	}
	for i := range seq {
		if seq[i].DocumentID != par[i].DocumentID {
			t.Errorf("order mismatch at %d: %s vs %s", i, seq[i].DocumentID, par[i].DocumentID)
		}
	}
}
