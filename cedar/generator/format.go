package generator

import (
	"fmt"
	"strings"

	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/validation"
)

// formatDatetime rewrites a validated datetime literal in the form Cedar
// parses: UTC timestamps end in Z, other offsets are written as +hhmm and
// milliseconds are kept only when non zero. Precision below milliseconds is dropped.
func formatDatetime(s string) (string, error) {
	d, err := validation.ParseDatetime(s)
	if err != nil {
		return "", err
	}
	if d.DateOnly {
		return d.Time.Format("2006-01-02"), nil
	}
	t := d.Time
	millis := t.Nanosecond() / 1e6
	if _, offset := t.Zone(); offset == 0 {
		if millis > 0 {
			return t.UTC().Format("2006-01-02T15:04:05.000Z"), nil
		}
		return t.UTC().Format("2006-01-02T15:04:05Z"), nil
	}
	if millis > 0 {
		return t.Format("2006-01-02T15:04:05.000-0700"), nil
	}
	return t.Format("2006-01-02T15:04:05-0700"), nil
}

// formatDuration rewrites an ISO 8601 duration with Cedar units. Calendar
// units are approximated: a year is 365 days and a month 30 days.
func formatDuration(s string) (string, error) {
	d, err := validation.ParseDuration(s)
	if err != nil {
		return "", err
	}
	days, err := d.TotalDays()
	if err != nil {
		return "", fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if strings.HasSuffix(s, "W") {
		return fmt.Sprintf("%dd", days), nil
	}
	return fmt.Sprintf("%dd%dh%dm%ds%dms", days, d.Hours, d.Minutes, d.Seconds, d.Millis), nil
}

func formatIPAddr(s string) (string, error) {
	return validation.ParseIPAddr(s)
}
