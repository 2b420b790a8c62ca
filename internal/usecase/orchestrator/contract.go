package orchestrator

import (
	"context"

	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/knowledge"
	"github.com/kailas-cloud/edgarsearch/internal/domain/progress"
	"github.com/kailas-cloud/edgarsearch/internal/domain/query"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/result"
)

// Classifier routes a query to a pattern.
type Classifier interface {
	Classify(q string, qc *query.Context) (query.Classification, error)
}

// IssuerClient is the subset of the document source used by company steps.
type IssuerClient interface {
	ResolveIssuerID(ctx context.Context, identifier string) (string, error)
	GetIssuerProfile(ctx context.Context, id string) (filing.Issuer, error)
	ListRecentDocuments(ctx context.Context, params filing.ListParams) ([]filing.Filing, error)
}

// Discoverer lists filings across issuers for issuer-less listings.
type Discoverer interface {
	Discover(ctx context.Context, params request.Discovery, report progress.Func) ([]filing.Discovered, error)
}

// ContentSearcher searches the content of selected filings.
type ContentSearcher interface {
	Search(ctx context.Context, params request.Search, report progress.Func) ([]result.Result, error)
}

// ThematicSearcher runs a cross-issuer theme lookup.
type ThematicSearcher interface {
	Search(ctx context.Context, params request.Thematic, report progress.Func) (result.Thematic, error)
}

// Knowledge supplies the lookup tables used while planning and selecting.
type Knowledge interface {
	TopicIndustries(keyword string) []string
	IssuerByTicker(ticker string) (knowledge.Issuer, bool)
	AuthorityRank(form string) int
	IsAuthoritative(form string) bool
}
