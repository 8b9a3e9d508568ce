// Package cli provides the command-line interface for the journal
// application.
package cli

import (
	"fmt"
	"time"
)

// FormatPnL formats P&L with an explicit sign.
func FormatPnL(pnl float64) string {
	if pnl > 0 {
		return fmt.Sprintf("+%.2f", pnl)
	}
	return fmt.Sprintf("%.2f", pnl)
}

// FormatPercent formats a percentage without sign.
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.0f%%", value)
}

// FormatSignedPercent formats a percentage with sign.
func FormatSignedPercent(value float64) string {
	if value > 0 {
		return fmt.Sprintf("+%.0f%%", value)
	}
	return fmt.Sprintf("%.0f%%", value)
}

// FormatDate formats a date.
func FormatDate(t time.Time) string {
	return t.Format("02-Jan-2006")
}

// FormatDateTime formats a datetime.
func FormatDateTime(t time.Time) string {
	return t.Format("02-Jan-2006 15:04")
}

// FormatConfidence formats a confidence percentage.
func FormatConfidence(conf float64) string {
	return fmt.Sprintf("%.0f%%", conf)
}

// FormatRange formats an emotion level range, or a dash when empty.
func FormatRange(low, high int) string {
	if low == 0 && high == 0 {
		return "-"
	}
	if low == high {
		return fmt.Sprintf("%d", low)
	}
	return fmt.Sprintf("%d-%d", low, high)
}

// TruncateString truncates a string to maxLen with an ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// ParseDate parses a CLI-supplied date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
