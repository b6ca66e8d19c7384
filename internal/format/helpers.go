package format

import (
	"fmt"
	"time"

	"jestfail/internal/results"
)

// FmtDuration formats a suite duration: "250ms", "1.5s" or "2m 5s".
// Zero means the runner did not record one and prints as "-".
func FmtDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	s := int(d.Seconds())
	return fmt.Sprintf("%dm %ds", s/60, s%60)
}

// TruncateLeft keeps the last maxLen characters of s, marking the cut with
// "...". Test paths differ at the end, not the start.
func TruncateLeft(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[len(r)-maxLen:])
	}
	return "..." + string(r[len(r)-maxLen+3:])
}

// StatusMark returns "✓" for passed, "✗" for failed and "○" otherwise.
func StatusMark(status string) string {
	switch status {
	case results.StatusPassed:
		return "✓"
	case results.StatusFailed:
		return "✗"
	}
	return "○"
}
