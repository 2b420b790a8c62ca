package search

import (
	"context"

	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
)

// ContentClient fetches filing content.
type ContentClient interface {
	GetDocumentBody(ctx context.Context, id, documentID string) (filing.Body, error)
	GetDocumentSections(ctx context.Context, id, documentID string, hints []string) ([]filing.Section, error)
}
