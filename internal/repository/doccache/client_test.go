package doccache

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/edgarsearch/internal/domain"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
)

func TestGetIssuerProfile_MissThenHit(t *testing.T) {
	inner := newMockClient()
	c, ms := newTestClient(t, inner)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		is, err := c.GetIssuerProfile(ctx, "0000320193")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if is.Name != "Apple Inc." || is.PrimaryTicker() != "AAPL" {
			t.Fatalf("unexpected issuer: %+v", is)
		}
	}
	if inner.calls["profile"] != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls["profile"])
	}
	for key, ttl := range ms.ttls {
		if !strings.HasPrefix(key, cacheKeyPrefix+"profile:") {
			t.Errorf("unexpected key: %s", key)
		}
		if ttl != DefaultTTL {
			t.Errorf("expected default ttl, got %v", ttl)
		}
	}
}

func TestListRecentDocuments_KeyedByParams(t *testing.T) {
	inner := newMockClient()
	c, _ := newTestClient(t, inner)
	ctx := context.Background()

	p := filing.ListParams{IssuerID: "0000320193", FormTypes: []string{"10-K"}, Limit: 5}
	if _, err := c.ListRecentDocuments(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := c.ListRecentDocuments(ctx, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || !got[0].FiledAt.Equal(inner.filings[0].FiledAt) {
		t.Fatalf("unexpected cached listing: %+v", got)
	}

	p.Days = 30
	if _, err := c.ListRecentDocuments(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls["list"] != 2 {
		t.Errorf("expected a distinct key per params, got %d inner calls", inner.calls["list"])
	}
	if inner.lastList.Days != 30 {
		t.Errorf("expected params passed through, got %+v", inner.lastList)
	}
}

func TestResolveIssuerID_CaseInsensitiveKey(t *testing.T) {
	inner := newMockClient()
	c, _ := newTestClient(t, inner)
	ctx := context.Background()

	for _, ident := range []string{"AAPL", "aapl", " Aapl "} {
		id, err := c.ResolveIssuerID(ctx, ident)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != "0000320193" {
			t.Errorf("unexpected id: %s", id)
		}
	}
	if inner.calls["resolve"] != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls["resolve"])
	}
}

func TestGetDocumentBody_Cached(t *testing.T) {
	inner := newMockClient()
	c, _ := newTestClient(t, inner)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		b, err := c.GetDocumentBody(ctx, "0000320193", "0000320193-24-000123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.Content != inner.body.Content || b.Metadata["form"] != "10-K" {
			t.Fatalf("unexpected body: %+v", b)
		}
	}
	if inner.calls["body"] != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls["body"])
	}
}

func TestErrorsNotCached(t *testing.T) {
	inner := newMockClient()
	inner.err = domain.ErrRateLimited
	c, ms := newTestClient(t, inner)
	ctx := context.Background()

	_, err := c.GetIssuerProfile(ctx, "0000320193")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if len(ms.data) != 0 {
		t.Errorf("expected nothing cached, got %d entries", len(ms.data))
	}

	inner.err = nil
	if _, err := c.GetIssuerProfile(ctx, "0000320193"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls["profile"] != 2 {
		t.Errorf("expected retry to reach inner client, got %d calls", inner.calls["profile"])
	}
}

func TestStoreFailuresPassThrough(t *testing.T) {
	inner := newMockClient()
	c, ms := newTestClient(t, inner)
	ms.getErr = errors.New("connection refused")
	ms.setErr = errors.New("connection refused")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := c.GetIssuerProfile(ctx, "0000320193"); err != nil {
			t.Fatalf("cache failure must not fail the call: %v", err)
		}
	}
	if inner.calls["profile"] != 2 {
		t.Errorf("expected every call to reach inner client, got %d", inner.calls["profile"])
	}
}

func TestCorruptEntryDropped(t *testing.T) {
	inner := newMockClient()
	c, ms := newTestClient(t, inner)
	ctx := context.Background()

	key := cacheKey("profile", "0000320193")
	ms.data[key] = []byte("{not json")

	is, err := c.GetIssuerProfile(ctx, "0000320193")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if is.Name != "Apple Inc." {
		t.Errorf("expected fresh profile, got %+v", is)
	}
	if len(ms.dels) != 1 || ms.dels[0] != key {
		t.Errorf("expected corrupt key deleted, got %v", ms.dels)
	}
}

func TestGetDocumentSections_PassThrough(t *testing.T) {
	inner := newMockClient()
	c, ms := newTestClient(t, inner)

	_, err := c.GetDocumentSections(context.Background(), "0000320193", "x", nil)
	if !errors.Is(err, domain.ErrNotImplemented) {
		t.Errorf("expected ErrNotImplemented, got %v", err)
	}
	if len(ms.data) != 0 {
		t.Errorf("sections must not be cached")
	}
}

func TestCacheMetrics(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_doc_cache_total"}, []string{"result"})
	inner := newMockClient()
	c := New(inner, newMockKVStore(), 0, counter, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.GetIssuerProfile(ctx, "0000320193"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("expected 1 miss, got %v", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 2 {
		t.Errorf("expected 2 hits, got %v", got)
	}
}

func TestCacheKey_Distinct(t *testing.T) {
	a := cacheKey("body", "1", "23")
	b := cacheKey("body", "12", "3")
	if a == b {
		t.Errorf("expected distinct keys for distinct parts")
	}
}

func TestPurge_DropsOnlyDocumentKeys(t *testing.T) {
	inner := newMockClient()
	c, ms := newTestClient(t, inner)
	ctx := context.Background()

	if _, err := c.GetIssuerProfile(ctx, "0000320193"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.GetDocumentBody(ctx, "0000320193", "0000320193-24-000123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ms.data["someone-else:key"] = []byte("x")

	n, err := c.Purge(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("purged = %d, want 2", n)
	}
	if _, ok := ms.data["someone-else:key"]; !ok {
		t.Error("foreign key should survive a purge")
	}

	if _, err := c.GetIssuerProfile(ctx, "0000320193"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls["profile"] != 2 {
		t.Errorf("expected refetch after purge, got %d calls", inner.calls["profile"])
	}
}
