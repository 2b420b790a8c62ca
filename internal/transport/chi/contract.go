package chi

import (
	"context"

	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/progress"
	"github.com/kailas-cloud/edgarsearch/internal/domain/query"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/edgarsearch/internal/usecase/health"
)

// Orchestrator answers free-text queries.
type Orchestrator interface {
	Orchestrate(ctx context.Context, q string, qc *query.Context) query.Result
}

// Classifier routes a query without running it.
type Classifier interface {
	Classify(q string, qc *query.Context) (query.Classification, error)
}

// Discoverer lists candidate filings across issuers.
type Discoverer interface {
	Discover(ctx context.Context, params request.Discovery, report progress.Func) ([]filing.Discovered, error)
}

// Searcher searches the content of given filings.
type Searcher interface {
	Search(ctx context.Context, params request.Search, report progress.Func) ([]result.Result, error)
}

// ThematicSearcher runs discovery and search as one call.
type ThematicSearcher interface {
	Search(ctx context.Context, params request.Thematic, report progress.Func) (result.Thematic, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
