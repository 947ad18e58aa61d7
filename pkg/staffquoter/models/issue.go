// Package models defines data structures produced by the quote pipeline.
package models

// IssueCode classifies a formula finding.
type IssueCode string

const (
	// CodeErrorToken marks a formula containing a literal error token such as #REF!.
	CodeErrorToken IssueCode = "ERROR_TOKEN"
	// CodeUnknownSheetRef marks a formula referencing a sheet missing from the workbook.
	CodeUnknownSheetRef IssueCode = "UNKNOWN_SHEET_REF"
)

// FormulaIssue is a single finding in one formula cell.
// Two issues are the same finding when all four fields are equal.
type FormulaIssue struct {
	// Sheet is the title of the sheet holding the cell.
	Sheet string `json:"sheet"`
	// Cell is the A1 coordinate of the cell.
	Cell string `json:"cell"`
	// Code is the finding class.
	Code IssueCode `json:"code"`
	// Detail is a human-readable description.
	Detail string `json:"detail"`
}
