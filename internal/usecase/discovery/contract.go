package discovery

import (
	"context"

	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
)

// Client is the subset of the document source discovery needs.
type Client interface {
	ResolveIssuerID(ctx context.Context, identifier string) (string, error)
	GetIssuerProfile(ctx context.Context, id string) (filing.Issuer, error)
	ListRecentDocuments(ctx context.Context, params filing.ListParams) ([]filing.Filing, error)
}

// Universe supplies issuer identifiers when the caller names none.
type Universe interface {
	IndustryIssuers(industry string) []string
	DefaultUniverse() []string
}
