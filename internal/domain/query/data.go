package query

import (
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/result"
)

// Shape is the declared form of consolidated data.
type Shape string

// Result shapes.
const (
	ShapeSnapshot   Shape = "company_snapshot"
	ShapeFilings    Shape = "filing_list"
	ShapeContent    Shape = "content_bundle"
	ShapeThematic   Shape = "thematic_bundle"
	ShapeComparison Shape = "comparison"
)

// Data is the consolidated payload. Implemented only by the types in this file.
type Data interface {
	Shape() Shape
	// Len counts the top-level items carried, used to tell empty answers apart.
	Len() int
	sealed()
}

// Snapshot is the profile of one issuer.
type Snapshot struct {
	Issuer  *filing.Issuer  `json:"issuer,omitempty"`
	Filings []filing.Filing `json:"recent_filings,omitempty"`
}

// Shape implements Data.
func (Snapshot) Shape() Shape { return ShapeSnapshot }

// Len implements Data.
func (s Snapshot) Len() int {
	n := len(s.Filings)
	if s.Issuer != nil {
		n++
	}
	return n
}

func (Snapshot) sealed() {}

// FilingList is a listing for one issuer or across many.
type FilingList struct {
	Issuer     *filing.Issuer      `json:"issuer,omitempty"`
	Filings    []filing.Filing     `json:"filings,omitempty"`
	Discovered []filing.Discovered `json:"discovered,omitempty"`
}

// Shape implements Data.
func (FilingList) Shape() Shape { return ShapeFilings }

// Len implements Data.
func (f FilingList) Len() int { return len(f.Filings) + len(f.Discovered) }

func (FilingList) sealed() {}

// ContentBundle is the searched content of one selected filing.
type ContentBundle struct {
	Issuer   *filing.Issuer  `json:"issuer,omitempty"`
	Filing   *filing.Filing  `json:"filing,omitempty"`
	Filings  []filing.Filing `json:"recent_filings,omitempty"`
	Passages []result.Result `json:"passages"`
}

// Shape implements Data.
func (ContentBundle) Shape() Shape { return ShapeContent }

// Len implements Data.
func (c ContentBundle) Len() int { return len(c.Passages) }

func (ContentBundle) sealed() {}

// ThematicBundle is a cross-issuer thematic answer.
type ThematicBundle struct {
	Thematic result.Thematic `json:"thematic"`
}

// Shape implements Data.
func (ThematicBundle) Shape() Shape { return ShapeThematic }

// Len implements Data.
func (t ThematicBundle) Len() int { return len(t.Thematic.Results) }

func (ThematicBundle) sealed() {}

// Comparison places one issuer's content next to the cross-issuer theme.
type Comparison struct {
	Company  ContentBundle  `json:"company"`
	Thematic ThematicBundle `json:"thematic"`
}

// Shape implements Data.
func (Comparison) Shape() Shape { return ShapeComparison }

// Len implements Data.
func (c Comparison) Len() int { return c.Company.Len() + c.Thematic.Len() }

func (Comparison) sealed() {}
