package main

import (
	"github.com/spf13/cobra"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate <workbook>",
	Short: "Check workbook formulas for error tokens and unknown sheet references",
	Long: `Check every formula in a workbook. Exits 2 when issues are found.

Examples:
  staffquoter validate quote.xlsx
  staffquoter validate quote.xlsx --json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output the report as JSON")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	report, err := newPipeline().Validate(args[0])
	if err != nil {
		return err
	}

	if validateJSON {
		if err := jsonPrint(cmd.OutOrStdout(), report.Projection()); err != nil {
			return err
		}
	} else {
		printReport(cmd.OutOrStdout(), report)
	}

	if report.HasErrors() {
		return &ExitError{Code: 2}
	}
	return nil
}
