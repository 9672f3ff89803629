package commands

import (
	"fmt"
	"time"
)

// parseTimeFlag parses an RFC3339 timestamp or a plain date (2006-01-02, UTC).
// An empty value yields nil.
func parseTimeFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if ts, err := time.Parse(layout, value); err == nil {
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("--%s: expected RFC3339 time or YYYY-MM-DD, got %q", name, value)
}

// formatTimeAgo formats a timestamp as "X ago" for human-friendly display.
func formatTimeAgo(ts *time.Time, now time.Time) string {
	if ts == nil || ts.IsZero() {
		return "never"
	}
	d := now.Sub(*ts)
	if d < 0 {
		d = 0
	}
	secs := int(d.Seconds())
	if secs < 60 {
		return fmt.Sprintf("%ds ago", secs)
	}
	mins := secs / 60
	if mins < 60 {
		return fmt.Sprintf("%dm ago", mins)
	}
	hours := mins / 60
	if hours < 48 {
		return fmt.Sprintf("%dh ago", hours)
	}
	days := hours / 24
	return fmt.Sprintf("%dd ago", days)
}
