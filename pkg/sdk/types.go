package edgarsearch

import (
	"github.com/kailas-cloud/edgarsearch/internal/domain/entity"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/pattern"
	"github.com/kailas-cloud/edgarsearch/internal/domain/progress"
	"github.com/kailas-cloud/edgarsearch/internal/domain/query"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/result"
)

// Query types.
type (
	// QueryContext carries caller hints that override what is extracted from the query.
	QueryContext = query.Context
	// QueryResult is the answer envelope of Query.
	QueryResult = query.Result
	// Classification is the routing decision for a query.
	Classification = query.Classification
	// Entities are the values extracted from a query.
	Entities = entity.Entities
	// Pattern is a query routing pattern.
	Pattern = pattern.Pattern
)

// Query patterns.
const (
	PatternCompanySpecific = pattern.CompanySpecific
	PatternThematic        = pattern.Thematic
	PatternHybrid          = pattern.Hybrid
	PatternMetadataOnly    = pattern.MetadataOnly
)

// Discovery and search types.
type (
	DiscoveryParams = request.Discovery
	SearchParams    = request.Search
	ThematicParams  = request.Thematic
	DateRange       = filing.DateRange
	Filing          = filing.Discovered
	Passage         = result.Result
	ThematicResult  = result.Thematic
)

// Progress reporting.
type (
	ProgressEvent = progress.Event
	// ProgressFunc receives progress of long-running calls. nil drops events.
	ProgressFunc = progress.Func
)
