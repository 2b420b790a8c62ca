// Package version holds build metadata injected via ldflags.
package version

import "strings"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// UserAgent builds the User-Agent sent to SEC EDGAR, which requires a contact address.
// An explicit value wins; otherwise contact is appended to the product token.
func UserAgent(explicit, contact string) string {
	if ua := strings.TrimSpace(explicit); ua != "" {
		return ua
	}
	ua := "edgarsearch/" + Version
	if c := strings.TrimSpace(contact); c != "" {
		ua += " " + c
	}
	return ua
}
