package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/ukaji3/staffquoter-go/pkg/staffquoter"
)

var (
	runWorkbook           string
	runRecalc             bool
	runAllowFormulaIssues bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Validate a workbook and write the quote JSON and PDF",
	Long: `Run the quote pipeline: optionally recalculate the workbook, validate its
formulas, extract the quote record and write <quote_id>.json and <quote_id>.pdf.

Examples:
  staffquoter run                                  # Default workbook
  staffquoter run --workbook quote.xlsx --run-recalc
  staffquoter run --workbook quote.xlsx --allow-formula-issues`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().StringVar(&runWorkbook, "workbook", "", "Workbook path (default: configured default workbook)")
	runCmd.Flags().BoolVar(&runRecalc, "run-recalc", false, "Recalculate the workbook before validation")
	runCmd.Flags().BoolVar(&runAllowFormulaIssues, "allow-formula-issues", false, "Continue when formula issues are found")
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	path := runWorkbook
	if path == "" {
		path = settings.DefaultWorkbook
	}

	opts := staffquoter.RunOptions{
		FailOnFormulaIssues: !runAllowFormulaIssues,
		RunRecalc:           runRecalc,
	}
	result, err := newPipeline().Run(cmd.Context(), path, opts)
	if err != nil {
		var fve *staffquoter.FormulaValidationError
		if errors.As(err, &fve) {
			printReport(cmd.ErrOrStderr(), fve.Report)
		}
		return err
	}
	return jsonPrint(cmd.OutOrStdout(), result)
}
