// Package mcp exposes the failure report over the Model Context Protocol so
// editor agents can summarise and render Jest failures.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"jestfail/internal/config"
	"jestfail/internal/format"
	"jestfail/internal/host"
	"jestfail/internal/link"
	"jestfail/internal/logging"
	"jestfail/internal/render"
	"jestfail/internal/results"
	"jestfail/internal/sanitize"
	"jestfail/internal/sink"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server. Relative paths in tool inputs resolve
// against ProjectRoot.
type Server struct {
	MCPServer   *sdkmcp.Server
	ProjectRoot string
	Logger      *slog.Logger
}

// NewServer creates an MCP server with the report tools registered. It
// captures the current working directory as the project root.
func NewServer(version string) *Server {
	cwd, _ := os.Getwd()
	if version == "" {
		version = "dev"
	}
	s := &Server{ProjectRoot: cwd, Logger: logging.New("mcp")}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "jestfail", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "summarize_failure",
		Description: "Reduce one raw Jest failure message to a single line and find the failing line number in the given test file.",
	}, s.handleSummarizeFailure)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "render_failures",
		Description: "Read a Jest JSON result file and return the failure notices that would be posted to the pull request.",
	}, s.handleRenderFailures)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "summarize_results",
		Description: "Read a Jest JSON result file and return a per-suite Markdown table with counts and durations.",
	}, s.handleSummarizeResults)
}

// --- Tool input/output types ---

type summarizeFailureInput struct {
	Message string `json:"message" jsonschema:"raw failure message as written by Jest, ANSI codes included"`
	File    string `json:"file,omitempty" jsonschema:"test file path used to locate the failing line"`
}

type summarizeFailureOutput struct {
	Short   string `json:"short"`
	Line    int    `json:"line,omitempty"`
	HasLine bool   `json:"has_line"`
}

type renderFailuresInput struct {
	ResultsPath  string `json:"results_path,omitempty" jsonschema:"Jest JSON result file (default test-results.json)"`
	RelativePath string `json:"relative_path,omitempty" jsonschema:"prefix prepended verbatim to suite paths"`
	ContextPath  string `json:"context_path,omitempty" jsonschema:"YAML or JSON host context file; omit for unlinked Markdown"`
	ShowSuccess  bool   `json:"show_success,omitempty" jsonschema:"emit a message with counts when the run passed"`
}

type renderFailuresOutput struct {
	Result   string   `json:"result"`
	Shape    string   `json:"shape,omitempty"`
	Platform string   `json:"platform"`
	Fails    []string `json:"fails"`
	Messages []string `json:"messages"`
	Error    string   `json:"error,omitempty"`
}

type summarizeResultsInput struct {
	ResultsPath string `json:"results_path,omitempty" jsonschema:"Jest JSON result file (default test-results.json)"`
	FailedOnly  bool   `json:"failed_only,omitempty" jsonschema:"list only suites with failures"`
}

type summarizeResultsOutput struct {
	Shape   string `json:"shape"`
	Success bool   `json:"success"`
	Table   string `json:"table"`
}

// --- Handlers ---

func (s *Server) handleSummarizeFailure(ctx context.Context, _ *sdkmcp.CallToolRequest, input summarizeFailureInput) (*sdkmcp.CallToolResult, summarizeFailureOutput, error) {
	out := summarizeFailureOutput{Short: sanitize.Short(input.Message)}
	if input.File != "" {
		out.Line, out.HasLine = link.LineOfError(sanitize.StripANSI(input.Message), input.File)
	}
	return nil, out, nil
}

func (s *Server) handleRenderFailures(ctx context.Context, _ *sdkmcp.CallToolRequest, input renderFailuresInput) (*sdkmcp.CallToolResult, renderFailuresOutput, error) {
	var hc host.Context = host.None{}
	if input.ContextPath != "" {
		c, err := host.LoadFromPath(s.resolve(input.ContextPath), s.Logger)
		if err != nil {
			return nil, renderFailuresOutput{}, fmt.Errorf("render_failures: %w", err)
		}
		hc = c
	}

	cfg := config.Config{
		TestResultsJSONPath: s.resolve(input.ResultsPath),
		RelativePath:        input.RelativePath,
		ShowSuccessMessage:  input.ShowSuccess,
	}
	rec := sink.NewRecorder()
	outcome := render.Run(ctx, render.Options{
		Config:  cfg,
		Host:    hc,
		Sink:    rec,
		Logger:  s.Logger,
		WorkDir: s.ProjectRoot,
	})

	out := renderFailuresOutput{
		Result:   outcome.Result.String(),
		Platform: hc.Platform().String(),
		Fails:    nonNil(rec.Fails()),
		Messages: nonNil(rec.Messages()),
	}
	if outcome.Result != render.ResultFatal {
		out.Shape = outcome.Shape.String()
	}
	if outcome.Err != nil {
		out.Error = outcome.Err.Error()
	}
	return nil, out, nil
}

func (s *Server) handleSummarizeResults(ctx context.Context, _ *sdkmcp.CallToolRequest, input summarizeResultsInput) (*sdkmcp.CallToolResult, summarizeResultsOutput, error) {
	r, err := results.LoadFile(s.resolve(input.ResultsPath))
	if err != nil {
		return nil, summarizeResultsOutput{}, fmt.Errorf("summarize_results: %w", err)
	}
	return nil, summarizeResultsOutput{
		Shape:   r.Shape().String(),
		Success: r.Totals().Success,
		Table:   format.SummaryTable(r, format.SummaryOptions{Mode: format.Markdown, FailedOnly: input.FailedOnly}),
	}, nil
}

// resolve makes p absolute against ProjectRoot. Empty means the default
// result file.
func (s *Server) resolve(p string) string {
	if p == "" {
		p = results.DefaultPath
	}
	if filepath.IsAbs(p) || s.ProjectRoot == "" {
		return p
	}
	return filepath.Join(s.ProjectRoot, p)
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
