package progress

import "time"

// Operation names reported by long-running calls.
const (
	OpDiscovery    = "discovery"
	OpContentFetch = "content-fetch"
	OpSearch       = "search"
)

// Event is one progress notification.
type Event struct {
	Operation string        `json:"operation"`
	Completed int           `json:"completed"`
	Total     int           `json:"total"`
	Current   string        `json:"current,omitempty"`
	ETA       time.Duration `json:"eta"`
}

// Func receives progress events. A nil Func is valid and drops events.
type Func func(Event)

// Report emits an event if fn is set.
func (fn Func) Report(e Event) {
	if fn != nil {
		fn(e)
	}
}

// LinearETA estimates the remaining time from the average per-item time so far.
func LinearETA(started time.Time, now time.Time, completed, total int) time.Duration {
	if completed <= 0 || total <= completed {
		return 0
	}
	perItem := now.Sub(started) / time.Duration(completed)
	return perItem * time.Duration(total-completed)
}
