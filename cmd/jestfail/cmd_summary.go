package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jestfail/internal/format"
	"jestfail/internal/results"
)

type summaryOptions struct {
	resultsPath string
	format      string
	failedOnly  bool
	maxPath     int
}

func newSummaryCmd(root *rootOptions) *cobra.Command {
	opts := &summaryOptions{}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a per-suite table of the Jest result file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.resultsPath, "results", "r", "", "Jest JSON result file (overrides testResultsJsonPath)")
	f.StringVarP(&opts.format, "format", "f", "ascii", "Table format (ascii, markdown)")
	f.BoolVar(&opts.failedOnly, "failed-only", false, "List only suites with failures")
	f.IntVar(&opts.maxPath, "max-path", 60, "Left-truncate suite paths longer than this (0 = never)")
	return cmd
}

func runSummary(cmd *cobra.Command, root *rootOptions, opts *summaryOptions) error {
	mode, err := format.ParseMode(opts.format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root.configPath)
	if err != nil {
		return err
	}
	path := cfg.WithDefaults().TestResultsJSONPath
	if opts.resultsPath != "" {
		path = opts.resultsPath
	}

	r, err := results.LoadFile(path)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), format.SummaryTable(r, format.SummaryOptions{
		Mode:       mode,
		MaxPathLen: opts.maxPath,
		FailedOnly: opts.failedOnly,
	}))
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
