package models

// FormulaValidationReport aggregates the findings of one validation run.
type FormulaValidationReport struct {
	// WorkbookPath is the path the workbook was read from.
	WorkbookPath string
	// TotalFormulas counts every formula cell visited, with or without issues.
	TotalFormulas int
	// Issues holds de-duplicated findings in discovery order.
	Issues []FormulaIssue
}

// HasErrors reports whether any issue was found.
func (r *FormulaValidationReport) HasErrors() bool {
	return len(r.Issues) > 0
}

// ReportProjection is the serialized shape of a report consumed by
// downstream JSON tooling.
type ReportProjection struct {
	WorkbookPath  string         `json:"workbook_path"`
	TotalFormulas int            `json:"total_formulas"`
	IssueCount    int            `json:"issue_count"`
	Issues        []FormulaIssue `json:"issues"`
}

// Projection returns the interchange record for r. Issues is never nil so
// that an empty report encodes as [] rather than null.
func (r *FormulaValidationReport) Projection() ReportProjection {
	issues := make([]FormulaIssue, len(r.Issues))
	copy(issues, r.Issues)
	return ReportProjection{
		WorkbookPath:  r.WorkbookPath,
		TotalFormulas: r.TotalFormulas,
		IssueCount:    len(issues),
		Issues:        issues,
	}
}
