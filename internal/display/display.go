// Package display derives the human-readable values shown next to todos.
package display

import "time"

const (
	clockLayout = "3:04 PM"
	dateLayout  = "Jan 2, 2006"
	separator   = " • "
)

// FormatDate renders ts relative to now, e.g. "Today • 2:43 PM",
// "Yesterday • 9:05 AM" or "Mar 4, 2025 • 2:43 PM".
// Calendar days are compared in UTC.
func FormatDate(ts, now time.Time) string {
	if ts.IsZero() {
		return ""
	}

	ts = ts.UTC()
	now = now.UTC()
	clock := ts.Format(clockLayout)

	switch {
	case sameDay(ts, now):
		return "Today" + separator + clock
	case sameDay(ts, now.AddDate(0, 0, -1)):
		return "Yesterday" + separator + clock
	default:
		return ts.Format(dateLayout) + separator + clock
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Summary holds the aggregate counters shown above the list.
type Summary struct {
	Total     int
	Completed int
	Pending   int
}

// Summarize derives the pending count from the total and completed counts.
func Summarize(total, completed int) Summary {
	pending := total - completed
	if pending < 0 {
		pending = 0
	}
	return Summary{Total: total, Completed: completed, Pending: pending}
}
