// Package sanitize turns raw Jest failure messages into short one-line
// summaries. The rules are heuristics tuned to Jest's assertion message
// layout; they never fail, they only degrade.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const (
	snapshotMarker  = "does not match stored snapshot"
	snapshotSummary = "Snapshot has changed"
	stackMarker     = "   at"
	differenceMark  = "Difference:"
	// headerLines is the assertion-type header plus the blank separator Jest
	// puts before the expected/received block.
	headerLines = 2
)

// whitespaceRun matches what JavaScript counts as whitespace, not just ASCII.
var whitespaceRun = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]{2,}`)

// StripANSI removes terminal escape sequences.
func StripANSI(s string) string {
	if s == "" {
		return ""
	}
	return ansi.Strip(s)
}

// Short summarises one raw failure message.
func Short(raw string) string {
	msg := StripANSI(raw)
	if msg == "" {
		return ""
	}
	if strings.Contains(msg, snapshotMarker) {
		return snapshotSummary
	}

	head, _, _ := strings.Cut(msg, stackMarker)
	lines := strings.Split(strings.TrimSpace(head), "\n")
	if len(lines) <= headerLines {
		return ""
	}

	s := strings.Join(lines[headerLines:], "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.Replace(s, "Received:", ", received:", 1)
	s = strings.Replace(s, "., received", ", received", 1)
	s, _, _ = strings.Cut(s, differenceMark)
	return s
}

// Full joins every failure message of an assertion and strips styling,
// keeping the stack traces.
func Full(messages []string) string {
	if len(messages) == 0 {
		return ""
	}
	return StripANSI(strings.Join(messages, "\n"))
}
