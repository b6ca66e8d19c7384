package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jestfail/internal/host"
	"jestfail/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootOptions struct {
	logLevel   string
	logFormat  string
	configPath string
	envFiles   []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "jestfail",
		Short: "Report failing Jest suites on GitHub and Bitbucket Server pull requests",
		Long: "jestfail reads a Jest JSON result file and turns every failing suite into\n" +
			"a failure notice with links to the failing lines on the pull request.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logging.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			logging.Init(level, opts.logFormat, cmd.ErrOrStderr())
			if err := host.LoadEnv(opts.envFiles...); err != nil {
				return fmt.Errorf("load env files: %w", err)
			}
			return nil
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.StringVar(&opts.logFormat, "log-format", "text", "Log format (text, json)")
	f.StringVarP(&opts.configPath, "config", "c", "", "Config file (default .jestfail.yaml when present)")
	f.StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files loaded before running; missing files are skipped")

	cmd.AddCommand(newReportCmd(opts))
	cmd.AddCommand(newSummaryCmd(opts))
	cmd.AddCommand(newServeCmd())
	return cmd
}

// exitError ends the process with code after printing msg.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
