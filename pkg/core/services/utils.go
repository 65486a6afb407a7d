package services

import (
	"time"
)

const dateLayout = "2006-01-02"

// civilDate returns t's calendar date as UTC midnight, ignoring time of day.
// The date is taken in t's own location so a caller's local "today" is preserved.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the number of whole days from now's date to the given date.
// Zero means today; negative values are in the past.
func DaysUntil(date, now time.Time) int {
	return int(civilDate(date).Sub(civilDate(now)).Hours() / 24)
}

// dedupeIDs returns ids with empty strings and repeats removed, keeping first-seen order
func dedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
