package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jestfail/internal/host"
	"jestfail/internal/logging"
	"jestfail/internal/render"
	"jestfail/internal/sink"
)

type reportOptions struct {
	resultsPath  string
	relativePath string
	showSuccess  bool
	contextPath  string
	workDir      string
	publish      bool
	exitCode     bool
	timeout      time.Duration
}

func newReportCmd(root *rootOptions) *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Turn failing suites into failure notices",
		Long: `Reads the Jest JSON result file and produces one failure notice per failing
suite. The review platform is taken from --context, or from the GitHub Actions
pull_request event when running there. Without either, notices are rendered
as unlinked Markdown.

Notices are printed to stdout unless --publish is set, in which case they are
posted as a single pull request comment using GITHUB_TOKEN or
BITBUCKET_SERVER_HOST and BITBUCKET_SERVER_TOKEN.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.resultsPath, "results", "r", "", "Jest JSON result file (overrides testResultsJsonPath)")
	f.StringVar(&opts.relativePath, "relative-path", "", "Prefix prepended to suite paths (overrides relativePath)")
	f.BoolVar(&opts.showSuccess, "show-success", false, "Post a message with counts when all tests pass")
	f.StringVar(&opts.contextPath, "context", "", "YAML or JSON review context file")
	f.StringVar(&opts.workDir, "work-dir", "", "Directory suite paths are made relative to (default: current directory)")
	f.BoolVar(&opts.publish, "publish", false, "Post the notices as a pull request comment")
	f.BoolVar(&opts.exitCode, "exit-code", false, "Exit with status 1 when a failure notice was produced")
	f.DurationVar(&opts.timeout, "timeout", 30*time.Second, "HTTP timeout when publishing")
	return cmd
}

func runReport(cmd *cobra.Command, root *rootOptions, opts *reportOptions) error {
	cfg, err := loadConfig(root.configPath)
	if err != nil {
		return err
	}
	if opts.resultsPath != "" {
		cfg.TestResultsJSONPath = opts.resultsPath
	}
	if cmd.Flags().Changed("relative-path") {
		cfg.RelativePath = opts.relativePath
	}
	if cmd.Flags().Changed("show-success") {
		cfg.ShowSuccessMessage = opts.showSuccess
	}

	hc, err := host.Detect(host.DetectOptions{
		ContextPath: opts.contextPath,
		Logger:      logging.New("host"),
	})
	if err != nil {
		return fmt.Errorf("detect review context: %w", err)
	}

	rec := sink.NewRecorder()
	outcome := render.Run(cmd.Context(), render.Options{
		Config:  cfg,
		Host:    hc,
		Sink:    rec,
		Logger:  logging.New("render"),
		WorkDir: opts.workDir,
	})

	out := cmd.OutOrStdout()
	if opts.publish {
		pub, err := sink.NewPublisher(hc, host.CredentialsFromEnv(nil),
			sink.WithLogger(logging.New("sink")),
			sink.WithTimeout(opts.timeout),
		)
		if err != nil {
			return fmt.Errorf("publish: %w", err)
		}
		c, err := pub.Publish(cmd.Context(), rec.Notices())
		if err != nil {
			return fmt.Errorf("publish: %w", err)
		}
		if c != nil {
			fmt.Fprintf(out, "Published comment %d on %s pull request\n", c.ID, hc.Platform())
		} else {
			fmt.Fprintln(out, "Nothing to publish")
		}
	} else if err := sink.WriteTo(out, rec.Notices()); err != nil {
		return err
	}

	if fails := len(rec.Fails()); opts.exitCode && fails > 0 {
		return &exitError{code: 1, msg: fmt.Sprintf("jestfail: %s reported (%s)", plural(fails, "failure notice"), outcome.Result)}
	}
	return nil
}
