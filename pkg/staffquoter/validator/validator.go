// Package validator inspects workbook formulas for error tokens and
// references to sheets that do not exist.
package validator

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/ukaji3/staffquoter-go/pkg/staffquoter/models"
	"github.com/ukaji3/staffquoter-go/pkg/staffquoter/workbook"
)

// ErrorTokens are the literal error values flagged in formula text.
var ErrorTokens = []string{"#REF!", "#DIV/0!", "#VALUE!", "#N/A", "#NAME?"}

// Validator checks formula cells of a workbook.
type Validator struct {
	log logrus.FieldLogger
}

// New returns a Validator. A nil logger discards output.
func New(log logrus.FieldLogger) *Validator {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Validator{log: log}
}

// Validate opens the workbook at path and checks every formula cell.
// Findings are returned in the report; only an unreadable workbook is an error.
func (v *Validator) Validate(path string) (*models.FormulaValidationReport, error) {
	wb, err := workbook.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	return v.ValidateSource(path, wb)
}

// ValidateSource checks an already loaded workbook.
func (v *Validator) ValidateSource(path string, src workbook.Source) (*models.FormulaValidationReport, error) {
	sheetNames := src.SheetNames()
	knownSheets := make(map[string]struct{}, len(sheetNames))
	for _, name := range sheetNames {
		knownSheets[name] = struct{}{}
	}

	report := &models.FormulaValidationReport{WorkbookPath: path}
	var issues []models.FormulaIssue

	for _, sheet := range sheetNames {
		cells, err := src.FormulaCells(sheet)
		if err != nil {
			return nil, err
		}

		for _, cell := range cells {
			report.TotalFormulas++
			issues = append(issues, checkFormula(cell, knownSheets)...)
		}
	}

	report.Issues = dedupeIssues(issues)
	v.log.WithFields(logrus.Fields{
		"workbook": path,
		"formulas": report.TotalFormulas,
		"issues":   len(report.Issues),
	}).Debug("formula validation finished")

	return report, nil
}

func checkFormula(cell workbook.Cell, knownSheets map[string]struct{}) []models.FormulaIssue {
	var issues []models.FormulaIssue

	// Tokens are matched on the raw text, string literals included.
	upper := strings.ToUpper(cell.Formula)
	for _, token := range ErrorTokens {
		if strings.Contains(upper, token) {
			issues = append(issues, models.FormulaIssue{
				Sheet:  cell.Sheet,
				Cell:   cell.Coordinate,
				Code:   models.CodeErrorToken,
				Detail: fmt.Sprintf("Found token %s", token),
			})
		}
	}

	for _, ref := range SheetReferences(cell.Formula) {
		if _, ok := knownSheets[ref]; ok {
			continue
		}
		issues = append(issues, models.FormulaIssue{
			Sheet:  cell.Sheet,
			Cell:   cell.Coordinate,
			Code:   models.CodeUnknownSheetRef,
			Detail: fmt.Sprintf("Unknown sheet reference: %s", ref),
		})
	}

	return issues
}

// dedupeIssues keeps the first occurrence of each distinct issue.
func dedupeIssues(issues []models.FormulaIssue) []models.FormulaIssue {
	seen := make(map[models.FormulaIssue]struct{}, len(issues))
	unique := make([]models.FormulaIssue, 0, len(issues))
	for _, issue := range issues {
		if _, ok := seen[issue]; ok {
			continue
		}
		seen[issue] = struct{}{}
		unique = append(unique, issue)
	}
	return unique
}
