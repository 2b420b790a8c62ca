package thematic

import (
	"context"

	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/progress"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/result"
)

// Discoverer lists candidate filings.
type Discoverer interface {
	Discover(ctx context.Context, params request.Discovery, report progress.Func) ([]filing.Discovered, error)
}

// Searcher scores passages across filings.
type Searcher interface {
	Search(ctx context.Context, params request.Search, report progress.Func) ([]result.Result, error)
}
