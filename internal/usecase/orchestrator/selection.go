package orchestrator

import (
	"sort"

	"github.com/kailas-cloud/edgarsearch/internal/domain/entity"
	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
)

// SelectFiling picks the one filing a content step reads when none was named.
// latest and recent both sort strictly by filed date; comprehensive prefers the most
// authoritative form and falls back to recency; without a priority the first listed
// filing wins.
func SelectFiling(filings []filing.Filing, priority entity.Priority, kb Knowledge) (filing.Filing, bool) {
	if len(filings) == 0 {
		return filing.Filing{}, false
	}
	switch priority {
	case entity.Latest, entity.Recent:
		return newest(filings), true
	case entity.Comprehensive:
		var annual []filing.Filing
		for _, f := range filings {
			if kb.IsAuthoritative(f.Form) {
				annual = append(annual, f)
			}
		}
		if len(annual) > 0 {
			return newest(annual), true
		}
		return newest(filings), true
	default:
		return filings[0], true
	}
}

func newest(filings []filing.Filing) filing.Filing {
	sorted := make([]filing.Filing, len(filings))
	copy(sorted, filings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FiledAt.After(sorted[j].FiledAt)
	})
	return sorted[0]
}

// selectionPriority is the intent's priority, or latest when the caller asked for recency.
func selectionPriority(intent *entity.Intent, preferRecent bool) entity.Priority {
	if intent != nil && intent.Priority != "" {
		return intent.Priority
	}
	if preferRecent {
		return entity.Latest
	}
	return ""
}
