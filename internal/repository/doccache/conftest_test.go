package doccache

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/edgarsearch/internal/db"
	"github.com/kailas-cloud/edgarsearch/internal/domain"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
)

type mockClient struct {
	issuer   filing.Issuer
	filings  []filing.Filing
	body     filing.Body
	err      error
	calls    map[string]int
	lastList filing.ListParams
}

func newMockClient() *mockClient {
	return &mockClient{
		issuer: filing.Issuer{ID: "0000320193", Name: "Apple Inc.", Tickers: []string{"AAPL"}},
		filings: []filing.Filing{
			{AccessionNumber: "0000320193-24-000123", Form: "10-K", FiledAt: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)},
		},
		body:  filing.Body{Content: "Item 1A. Risk Factors", Metadata: map[string]string{"form": "10-K"}},
		calls: make(map[string]int),
	}
}

func (m *mockClient) ResolveIssuerID(_ context.Context, _ string) (string, error) {
	m.calls["resolve"]++
	return m.issuer.ID, m.err
}

func (m *mockClient) GetIssuerProfile(_ context.Context, _ string) (filing.Issuer, error) {
	m.calls["profile"]++
	return m.issuer, m.err
}

func (m *mockClient) ListRecentDocuments(_ context.Context, p filing.ListParams) ([]filing.Filing, error) {
	m.calls["list"]++
	m.lastList = p
	return m.filings, m.err
}

func (m *mockClient) GetDocumentBody(_ context.Context, _, _ string) (filing.Body, error) {
	m.calls["body"]++
	return m.body, m.err
}

func (m *mockClient) GetDocumentSections(_ context.Context, _, _ string, _ []string) ([]filing.Section, error) {
	m.calls["sections"]++
	return nil, domain.ErrNotImplemented
}

// mockKVStore is an in-memory store with injectable failures.
type mockKVStore struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
	dels   []string
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockKVStore) Del(_ context.Context, key string) error {
	m.dels = append(m.dels, key)
	delete(m.data, key)
	return nil
}

func (m *mockKVStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	n := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func newTestClient(t *testing.T, inner *mockClient) (*Client, *mockKVStore) {
	t.Helper()
	ms := newMockKVStore()
	return New(inner, ms, 0, nil, zap.NewNop()), ms
}
