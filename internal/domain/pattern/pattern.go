package pattern

// Pattern is the routing decision for a free-text query.
type Pattern string

// Query pattern constants.
const (
	// CompanySpecific targets one identified issuer.
	CompanySpecific Pattern = "company_specific"
	// Thematic searches a theme across many issuers.
	Thematic Pattern = "thematic"
	// Hybrid runs both the company and the thematic chains.
	Hybrid Pattern = "hybrid"
	// MetadataOnly lists filings without fetching content.
	MetadataOnly Pattern = "metadata_only"
)

// All returns the patterns in scoring order.
func All() []Pattern {
	return []Pattern{CompanySpecific, Thematic, MetadataOnly, Hybrid}
}

// IsValid checks if the pattern is one of the supported values.
func (p Pattern) IsValid() bool {
	return p == CompanySpecific || p == Thematic || p == Hybrid || p == MetadataOnly
}
