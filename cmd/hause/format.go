package main

import "time"

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatDate renders a timestamp as a calendar date, "-" when zero.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// formatDateTime renders a timestamp to the minute, "-" when zero.
func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

// orDash substitutes "-" for an empty string in table cells.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
