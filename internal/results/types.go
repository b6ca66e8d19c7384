package results

import (
	"encoding/json"
	"time"
)

// Shape names the historical layout of a Jest JSON result document.
type Shape int

const (
	ShapeModern Shape = iota // suites carry testResults / testFilePath / numFailingTests
	ShapeLegacy              // suites carry assertionResults / name / status
)

func (s Shape) String() string {
	switch s {
	case ShapeModern:
		return "modern"
	case ShapeLegacy:
		return "legacy"
	}
	return "unknown"
}

// Status values used by Jest for suites and assertions.
const (
	StatusFailed  = "failed"
	StatusPassed  = "passed"
	StatusPending = "pending"
)

// Summary holds the aggregate counters shared by both shapes.
type Summary struct {
	Success                   bool  `json:"success"`
	NumFailedTestSuites       int   `json:"numFailedTestSuites"`
	NumFailedTests            int   `json:"numFailedTests"`
	NumPassedTestSuites       int   `json:"numPassedTestSuites"`
	NumPassedTests            int   `json:"numPassedTests"`
	NumPendingTestSuites      int   `json:"numPendingTestSuites"`
	NumPendingTests           int   `json:"numPendingTests"`
	NumRuntimeErrorTestSuites int   `json:"numRuntimeErrorTestSuites"`
	NumTotalTestSuites        int   `json:"numTotalTestSuites"`
	NumTotalTests             int   `json:"numTotalTests"`
	StartTime                 int64 `json:"startTime"`
	WasInterrupted            bool  `json:"wasInterrupted"`
}

// Assertion is one test case outcome. Both shapes use the same layout.
type Assertion struct {
	AncestorTitles  []string `json:"ancestorTitles"`
	Title           string   `json:"title"`
	FullName        string   `json:"fullName"`
	Status          string   `json:"status"`
	FailureMessages []string `json:"failureMessages"`
	Duration        *float64 `json:"duration,omitempty"`
}

// FirstMessage returns the first raw failure message, or "" when there is none.
func (a Assertion) FirstMessage() string {
	if len(a.FailureMessages) == 0 {
		return ""
	}
	return a.FailureMessages[0]
}

// PerfStats are epoch-millisecond bounds of a modern suite run.
type PerfStats struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// ModernSuite is one test file in the modern layout.
type ModernSuite struct {
	TestFilePath    string      `json:"testFilePath"`
	TestResults     []Assertion `json:"testResults"`
	NumFailingTests int         `json:"numFailingTests"`
	NumPassingTests int         `json:"numPassingTests"`
	NumPendingTests int         `json:"numPendingTests"`
	FailureMessage  string      `json:"failureMessage,omitempty"`
	PerfStats       PerfStats   `json:"perfStats"`
	Skipped         bool        `json:"skipped,omitempty"`
}

// LegacySuite is one test file in the legacy layout.
type LegacySuite struct {
	Name             string      `json:"name"`
	AssertionResults []Assertion `json:"assertionResults"`
	Status           string      `json:"status"`
	Message          string      `json:"message,omitempty"`
	Summary          string      `json:"summary,omitempty"`
	StartTime        int64       `json:"startTime,omitempty"`
	EndTime          int64       `json:"endTime,omitempty"`
}

// Report is a parsed result document. The concrete type is either
// *ModernReport or *LegacyReport, decided once by Classify at load time.
type Report interface {
	Shape() Shape
	Totals() Summary
	// Suites lists every suite in document order, failing or not.
	Suites() []SuiteInfo
	failing() []FailedSuite
}

// SuiteInfo is a shape-independent view of one suite, used for summaries.
type SuiteInfo struct {
	Path     string
	Failed   int
	Passed   int
	Pending  int
	Status   string
	Duration time.Duration
}

// ModernReport is a document whose suites use the modern layout.
type ModernReport struct {
	Summary
	TestResults []ModernSuite `json:"testResults"`
}

// LegacyReport is a document whose suites use the legacy layout.
type LegacyReport struct {
	Summary
	TestResults []LegacySuite `json:"testResults"`
}

func (r *ModernReport) Shape() Shape    { return ShapeModern }
func (r *ModernReport) Totals() Summary { return r.Summary }

func (r *LegacyReport) Shape() Shape    { return ShapeLegacy }
func (r *LegacyReport) Totals() Summary { return r.Summary }

func (r *ModernReport) Suites() []SuiteInfo {
	out := make([]SuiteInfo, 0, len(r.TestResults))
	for _, s := range r.TestResults {
		status := StatusPassed
		if s.NumFailingTests > 0 {
			status = StatusFailed
		}
		out = append(out, SuiteInfo{
			Path:     s.TestFilePath,
			Failed:   s.NumFailingTests,
			Passed:   s.NumPassingTests,
			Pending:  s.NumPendingTests,
			Status:   status,
			Duration: millisBetween(s.PerfStats.Start, s.PerfStats.End),
		})
	}
	return out
}

func (r *LegacyReport) Suites() []SuiteInfo {
	out := make([]SuiteInfo, 0, len(r.TestResults))
	for _, s := range r.TestResults {
		info := SuiteInfo{
			Path:     s.Name,
			Status:   s.Status,
			Duration: millisBetween(s.StartTime, s.EndTime),
		}
		for _, a := range s.AssertionResults {
			switch a.Status {
			case StatusFailed:
				info.Failed++
			case StatusPassed:
				info.Passed++
			default:
				info.Pending++
			}
		}
		out = append(out, info)
	}
	return out
}

func millisBetween(start, end int64) time.Duration {
	if start <= 0 || end < start {
		return 0
	}
	return time.Duration(end-start) * time.Millisecond
}

// document is the first-pass decode: shared counters plus raw suites, so the
// shape can be decided before the suites are decoded.
type document struct {
	Summary
	TestResults []json.RawMessage `json:"testResults"`
}
