package edgarsearch

import (
	"context"

	"github.com/kailas-cloud/edgarsearch/internal/domain/entity"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/progress"
	"github.com/kailas-cloud/edgarsearch/internal/domain/query"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/edgarsearch/internal/usecase/health"
)

// --- use case mocks ---

type mockOrchestrator struct {
	fn func(ctx context.Context, q string, qc *query.Context) query.Result
}

func (m *mockOrchestrator) Orchestrate(ctx context.Context, q string, qc *query.Context) query.Result {
	return m.fn(ctx, q, qc)
}

type mockExtractor struct {
	fn func(q string) entity.Entities
}

func (m *mockExtractor) Extract(q string) entity.Entities { return m.fn(q) }

type mockClassifier struct {
	fn func(q string, qc *query.Context) (query.Classification, error)
}

func (m *mockClassifier) Classify(q string, qc *query.Context) (query.Classification, error) {
	return m.fn(q, qc)
}

type mockDiscovery struct {
	fn func(ctx context.Context, p request.Discovery, report progress.Func) ([]filing.Discovered, error)
}

func (m *mockDiscovery) Discover(
	ctx context.Context, p request.Discovery, report progress.Func,
) ([]filing.Discovered, error) {
	return m.fn(ctx, p, report)
}

type mockSearch struct {
	fn func(ctx context.Context, p request.Search, report progress.Func) ([]result.Result, error)
}

func (m *mockSearch) Search(ctx context.Context, p request.Search, report progress.Func) ([]result.Result, error) {
	return m.fn(ctx, p, report)
}

type mockThematic struct {
	fn func(ctx context.Context, p request.Thematic, report progress.Func) (result.Thematic, error)
}

func (m *mockThematic) Search(ctx context.Context, p request.Thematic, report progress.Func) (result.Thematic, error) {
	return m.fn(ctx, p, report)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }
