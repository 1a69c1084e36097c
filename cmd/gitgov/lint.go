package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/gitgovernance/gitgovernance/internal/lint"
)

var (
	lintFix               bool
	lintFixValidators     []string
	lintExcludeValidators []string
	lintCheckMigrations   bool
	lintFormatJSON        bool
	lintSummaryOnly       bool
	lintQuiet             bool
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Run the record validation pipeline: schema, checksum, signature, referential, bidirectional, naming, temporal",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(flagOverrides())
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}

		opts := lint.Options{
			Fix:               lintFix,
			FixValidators:     lintFixValidators,
			ExcludeValidators: lintExcludeValidators,
			CheckMigrations:   lintCheckMigrations,
		}
		report, err := a.lint.Run(args, opts)
		if err != nil {
			return err
		}

		if lintFormatJSON || a.cfg.Output == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			printLintReport(cmd, report, lintSummaryOnly, lintQuiet)
		}

		if report.Summary.Errors > 0 {
			return &lintFailure{count: report.Summary.Errors}
		}
		return nil
	},
}

// lintFailure signals that lint ran cleanly (no IO/validation-pipeline
// error) but found record errors — mapped to ggerr's validation exit
// code without needing a ggerr.SchemaError's file/line shape.
type lintFailure struct{ count int }

func (e *lintFailure) Error() string { return "lint found record errors" }

func printLintReport(cmd *cobra.Command, report lint.Report, summaryOnly, quiet bool) {
	if !summaryOnly {
		for _, r := range report.Results {
			if quiet && r.Level == lint.LevelWarning {
				continue
			}
			printf(cmd, "%s\t%s\t%s\t%s\n", r.Level, r.Validator, r.FilePath, r.Message)
		}
	}
	printf(cmd, "%d files checked, %d errors, %d warnings, %d fixable (%s)\n",
		report.Summary.FilesChecked, report.Summary.Errors, report.Summary.Warnings, report.Summary.Fixable, report.Summary.ExecutionTime)
}

func init() {
	lintCmd.Flags().BoolVar(&lintFix, "fix", false, "auto-repair fixable findings")
	lintCmd.Flags().StringSliceVar(&lintFixValidators, "fix-validators", nil, "restrict --fix to these validators")
	lintCmd.Flags().StringSliceVar(&lintExcludeValidators, "exclude-validators", nil, "skip these validators entirely")
	lintCmd.Flags().BoolVar(&lintCheckMigrations, "check-migrations", false, "recorded in the report's metadata options; no migration check is run")
	lintCmd.Flags().BoolVar(&lintFormatJSON, "format-json", false, "emit the report as JSON (shorthand for --output json)")
	lintCmd.Flags().BoolVar(&lintSummaryOnly, "summary", false, "print only the summary line")
	lintCmd.Flags().BoolVar(&lintQuiet, "quiet", false, "suppress warning-level results")
	rootCmd.AddCommand(lintCmd)
}
