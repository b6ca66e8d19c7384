package results

import (
	"os"
	"path/filepath"
)

// FailedSuite is one failing test file with only its failing assertions.
// Path has already been re-rooted (see Extract).
type FailedSuite struct {
	Path       string
	Assertions []Assertion
}

// ExtractOptions control how suite file paths are re-rooted.
type ExtractOptions struct {
	// WorkDir is the directory paths are made relative to. Empty means the
	// process working directory.
	WorkDir string
	// RelativePath is prepended verbatim to every relative path.
	RelativePath string
}

// Extract returns the failing suites of r in document order.
func Extract(r Report, opts ExtractOptions) []FailedSuite {
	if r == nil {
		return nil
	}
	workDir := opts.WorkDir
	if workDir == "" {
		workDir, _ = os.Getwd()
	}

	raw := r.failing()
	out := make([]FailedSuite, 0, len(raw))
	for _, fs := range raw {
		out = append(out, FailedSuite{
			Path:       opts.RelativePath + relativeTo(workDir, fs.Path),
			Assertions: fs.Assertions,
		})
	}
	return out
}

func (r *ModernReport) failing() []FailedSuite {
	var out []FailedSuite
	for _, s := range r.TestResults {
		if s.NumFailingTests <= 0 {
			continue
		}
		out = append(out, FailedSuite{Path: s.TestFilePath, Assertions: failedOnly(s.TestResults)})
	}
	return out
}

func (r *LegacyReport) failing() []FailedSuite {
	var out []FailedSuite
	for _, s := range r.TestResults {
		if s.Status != StatusFailed {
			continue
		}
		out = append(out, FailedSuite{Path: s.Name, Assertions: failedOnly(s.AssertionResults)})
	}
	return out
}

func failedOnly(in []Assertion) []Assertion {
	out := make([]Assertion, 0, len(in))
	for _, a := range in {
		if a.Status == StatusFailed {
			out = append(out, a)
		}
	}
	return out
}

// relativeTo mirrors Node's path.relative: both sides are resolved to
// absolute paths first. When that is impossible the path is returned as is.
func relativeTo(base, target string) string {
	if target == "" {
		return ""
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return target
	}
	absTarget := target
	if !filepath.IsAbs(absTarget) {
		absTarget = filepath.Join(absBase, target)
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return target
	}
	return rel
}
