// Package render turns a Jest result file into failure notices for a code
// review host. It is the entry point the CLI and the MCP server call.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"jestfail/internal/config"
	"jestfail/internal/host"
	"jestfail/internal/link"
	"jestfail/internal/logging"
	"jestfail/internal/results"
	"jestfail/internal/sanitize"
	"jestfail/internal/sink"
)

// FatalMessage is reported once when the result file cannot be read.
const FatalMessage = "[jestfail] Could not read test results. Cannot pass or fail the build."

//go:embed templates/*.tmpl
var templateFS embed.FS

var defaultTemplates = template.Must(
	template.New("suite").Funcs(template.FuncMap{"indent": indent}).ParseFS(templateFS, "templates/*.tmpl"),
)

// Result is the terminal state of a run.
type Result int

const (
	ResultSuccess Result = iota
	ResultFailed
	ResultFatal
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultFailed:
		return "failed"
	}
	return "fatal"
}

// Options configure one run.
type Options struct {
	Config config.Config
	// Host selects the link and markup dialect. Nil means host.None.
	Host host.Context
	// Sink receives the notices. Nil means sink.Discard.
	Sink sink.Sink
	// Logger defaults to the "render" component logger.
	Logger *slog.Logger
	// WorkDir re-roots suite paths. Empty means the process working directory.
	WorkDir string
}

// Outcome summarises what Run reported.
type Outcome struct {
	Result   Result
	Shape    results.Shape
	Totals   results.Summary
	Failures int
	Err      error
}

// Run loads the configured result file and reports it to opts.Sink: one
// success notice when the run passed, otherwise one Fail per failing suite
// in document order. A load error is reported once with FatalMessage. Run
// never returns an error; Outcome.Err carries the load error, if any.
func Run(ctx context.Context, opts Options) Outcome {
	cfg := opts.Config.WithDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = logging.New("render")
	}
	hc := opts.Host
	if hc == nil {
		hc = host.None{}
	}
	if opts.Sink == nil {
		opts.Sink = sink.Discard{}
	}

	report, err := results.LoadFile(cfg.TestResultsJSONPath)
	if err != nil {
		logger.ErrorContext(ctx, "could not read test results", "path", cfg.TestResultsJSONPath, "error", err)
		opts.Sink.Fail(FatalMessage)
		return Outcome{Result: ResultFatal, Err: err}
	}

	totals := report.Totals()
	out := Outcome{Shape: report.Shape(), Totals: totals}

	if totals.Success {
		out.Result = ResultSuccess
		if cfg.ShowSuccessMessage {
			opts.Sink.Message(SuccessMessage(totals))
			return out
		}
		logger.InfoContext(ctx, "Jest tests passed :+1:",
			"passed", totals.NumPassedTests, "total", totals.NumTotalTests, "skipped", totals.NumPendingTests)
		return out
	}

	failing := results.Extract(report, results.ExtractOptions{
		WorkDir:      opts.WorkDir,
		RelativePath: cfg.RelativePath,
	})
	logger.InfoContext(ctx, "reporting failing suites",
		"shape", out.Shape, "suites", len(failing), "platform", hc.Platform())

	for _, fs := range failing {
		text, err := Suite(hc, fs)
		if err != nil {
			logger.WarnContext(ctx, "suite block fell back to plain text", "path", fs.Path, "error", err)
		}
		opts.Sink.Fail(text)
		out.Failures++
	}
	out.Result = ResultFailed
	return out
}

// SuccessMessage is the host-visible notice for a passing run.
func SuccessMessage(s results.Summary) string {
	return fmt.Sprintf(":+1: Jest tests passed: %d/%d (%d skipped)", s.NumPassedTests, s.NumTotalTests, s.NumPendingTests)
}

// Suite renders the failure block of one suite in the dialect of hc. On a
// template error the returned text is a plain fallback and err is set.
func Suite(hc host.Context, fs results.FailedSuite) (string, error) {
	return renderSuite(defaultTemplates, hc, fs)
}

type blockData struct {
	Header     string
	Assertions []assertionData
}

type assertionData struct {
	Link  string
	Short string
	Full  string
}

func renderSuite(tmpl *template.Template, hc host.Context, fs results.FailedSuite) (string, error) {
	if hc == nil {
		hc = host.None{}
	}
	data := blockData{
		Header:     header(hc, fs.Path),
		Assertions: make([]assertionData, 0, len(fs.Assertions)),
	}
	for _, a := range fs.Assertions {
		data.Assertions = append(data.Assertions, assertionData{
			Link:  link.ToTest(hc, fs.Path, a.FirstMessage(), a.Title),
			Short: sanitize.Short(a.FirstMessage()),
			Full:  sanitize.Full(a.FailureMessages),
		})
	}

	name := "markdown"
	if hc.Platform() == host.PlatformGitHub {
		name = "github"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fallback(fs), fmt.Errorf("execute %s template for %s: %w", name, fs.Path, err)
	}
	return buf.String(), nil
}

func header(hc host.Context, path string) string {
	switch c := hc.(type) {
	case *host.GitHub:
		return c.FileLinks(path)
	case *host.BitbucketServer:
		return "[" + path + "](" + link.BitbucketFileURL(c, path) + ")"
	}
	return path
}

func fallback(fs results.FailedSuite) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Jest FAIL in %s\n", fs.Path)
	for _, a := range fs.Assertions {
		fmt.Fprintf(&b, "\n* %s\n", a.Title)
	}
	return b.String()
}

// indent prefixes every line of s with n spaces.
func indent(n int, s string) string {
	if s == "" {
		return ""
	}
	pad := strings.Repeat(" ", n)
	return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
}
