package utils

import (
	"fmt"
	"time"
)

const defaultLookback = 7 * 24 * time.Hour

// ParseDateRange reads RFC3339 start/end values. Empty start defaults to
// seven days before now, empty end to now.
func ParseDateRange(startParam, endParam string) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	if endParam != "" {
		parsed, err := time.Parse(time.RFC3339, endParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'end' timestamp format, use RFC3339: %w", err)
		}
		end = parsed
	}

	start := end.Add(-defaultLookback)
	if startParam != "" {
		parsed, err := time.Parse(time.RFC3339, startParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'start' timestamp format, use RFC3339: %w", err)
		}
		start = parsed
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start %s is after end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return start, end, nil
}

// FormatRecency turns a days-since-last-activity count into dashboard text.
func FormatRecency(days *int) string {
	if days == nil || *days < 0 {
		return "No activity"
	}
	d := *days
	switch {
	case d == 0:
		return "Today"
	case d == 1:
		return "Yesterday"
	case d < 7:
		return fmt.Sprintf("%d days ago", d)
	case d < 30:
		return plural(d/7, "week")
	case d < 365:
		return plural(d/30, "month")
	default:
		return plural(d/365, "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
