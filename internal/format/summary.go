package format

import (
	"jestfail/internal/results"
)

// SummaryOptions tune SummaryTable.
type SummaryOptions struct {
	Mode Mode
	// MaxPathLen left-truncates suite paths. Zero keeps them whole.
	MaxPathLen int
	// FailedOnly drops suites without failures.
	FailedOnly bool
}

// SummaryTable renders one row per suite of r in document order, with a
// totals footer taken from the document counters.
func SummaryTable(r results.Report, opts SummaryOptions) string {
	tb := NewTable(opts.Mode)
	tb.Header("", "Suite", "Failed", "Passed", "Skipped", "Time")
	tb.AlignRight(3, 4, 5, 6)

	for _, s := range r.Suites() {
		if opts.FailedOnly && s.Status != results.StatusFailed {
			continue
		}
		tb.Row(StatusMark(s.Status), TruncateLeft(s.Path, opts.MaxPathLen), s.Failed, s.Passed, s.Pending, FmtDuration(s.Duration))
	}

	t := r.Totals()
	mark := StatusMark(results.StatusFailed)
	if t.Success {
		mark = StatusMark(results.StatusPassed)
	}
	tb.Footer(mark, "TOTAL", t.NumFailedTests, t.NumPassedTests, t.NumPendingTests, "")
	return tb.String()
}
