package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ukaji3/staffquoter-go/pkg/staffquoter/models"
)

// ExitError signals a non-zero exit code without printing an error message.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return "" }

func jsonPrint(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, r *models.FormulaValidationReport) {
	fmt.Fprintf(w, "Workbook: %s\n", r.WorkbookPath)
	fmt.Fprintf(w, "Formulas: %d\n", r.TotalFormulas)
	fmt.Fprintf(w, "Issues: %d\n", len(r.Issues))
	for _, issue := range r.Issues {
		fmt.Fprintf(w, "  %s!%s %s %s\n", issue.Sheet, issue.Cell, issue.Code, issue.Detail)
	}
}
