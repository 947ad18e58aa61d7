package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ukaji3/staffquoter-go/internal/secrets"
)

var secretsStaged bool

var secretsCmd = &cobra.Command{
	Use:   "scan-secrets",
	Short: "Scan tracked files for credentials and blocked file names",
	Long: `Scan git-tracked files, or only staged changes, for leaked credentials.
Exits 1 when anything is found.`,
	Args: cobra.NoArgs,
	RunE: runScanSecrets,
}

func init() {
	secretsCmd.Flags().BoolVar(&secretsStaged, "staged", false, "Scan only staged files")
	rootCmd.AddCommand(secretsCmd)
}

func runScanSecrets(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	scanner, err := secrets.Open(cmd.Context(), ".")
	if err != nil {
		return err
	}
	files, err := scanner.Files(cmd.Context(), secretsStaged)
	if err != nil {
		return err
	}

	violations := scanner.Scan(files)
	if len(violations) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No secret leak patterns detected.")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Potential secret leaks detected:")
	for _, v := range violations {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", v)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Fix before commit/push.")
	return &ExitError{Code: 1}
}
