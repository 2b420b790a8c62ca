package result

import (
	"testing"
	"time"

	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
)

func TestCitation(t *testing.T) {
	d := filing.Discovered{
		IssuerName: "Apple Inc.",
		Form:       "10-K",
		FiledAt:    time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		DocumentID: "0000320193-24-000123",
	}
	tests := []struct {
		name    string
		doc     filing.Discovered
		section string
		want    string
	}{
		{"with section", d, "Item 1A. Risk Factors",
			"Apple Inc., Form 10-K, filed 2024-11-01, Item 1A. Risk Factors (accession 0000320193-24-000123)"},
		{"without section", d, "",
			"Apple Inc., Form 10-K, filed 2024-11-01 (accession 0000320193-24-000123)"},
		{"without accession", filing.Discovered{IssuerName: "X", Form: "8-K", FiledAt: d.FiledAt}, "",
			"X, Form 8-K, filed 2024-11-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Citation(tt.doc, tt.section); got != tt.want {
				t.Errorf("Citation = %q, want %q", got, tt.want)
			}
		})
	}
}
