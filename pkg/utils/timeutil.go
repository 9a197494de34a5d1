package utils

import (
	"time"
)

// StartOfYear returns midnight on January 1st of t's year, in t's location.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// FormatDate formats a date as "2006-01-02".
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDateTime formats a timestamp for display, e.g. "16 Oct 2026, 09:30 UTC".
func FormatDateTime(t time.Time) string {
	return t.Format("02 Jan 2006, 15:04 MST")
}
