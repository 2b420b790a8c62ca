package edgarsearch

import "github.com/kailas-cloud/edgarsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound       = domain.ErrNotFound
	ErrInvalidQuery   = domain.ErrInvalidQuery
	ErrRateLimited    = domain.ErrRateLimited
	ErrUpstream       = domain.ErrUpstream
	ErrEmptyUniverse  = domain.ErrEmptyUniverse
	ErrNotImplemented = domain.ErrNotImplemented
)
