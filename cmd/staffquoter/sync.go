package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ukaji3/staffquoter-go/pkg/staffquoter/sheets"
)

var (
	syncCSVDir string
	syncTabs   []string
)

var syncCmd = &cobra.Command{
	Use:   "sync-csv",
	Short: "Upload a directory of CSV files to the configured Google Spreadsheet",
	Long: `Upload every <tab>.csv file in a directory to the tab of the same name,
clearing the tab first. Requires GOOGLE_SHEETS_ID and GOOGLE_CREDENTIALS_FILE.

Examples:
  staffquoter sync-csv --csv-dir ../artifacts/rebuild_template_csv
  staffquoter sync-csv --tabs INPUT_QUOTE --tabs CALC_OUTPUTS`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncCSVDir, "csv-dir", "../artifacts/rebuild_template_csv", "Directory of CSV files")
	syncCmd.Flags().StringArrayVar(&syncTabs, "tabs", nil, "Only sync these tabs (repeatable)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()

	gw, err := sheets.NewGateway(ctx, settings.Google.SheetsID, settings.Google.CredentialsFile)
	if err != nil {
		return err
	}

	results, err := sheets.NewCSVSyncer(gw, logger).Sync(ctx, syncCSVDir, syncTabs)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows\n", r.Tab, r.Rows)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "synced_tabs=%d\n", len(results))
	return nil
}
