package staffquoter

import (
	"fmt"

	"github.com/ukaji3/staffquoter-go/pkg/staffquoter/models"
	"github.com/ukaji3/staffquoter-go/pkg/staffquoter/workbook"
)

// ErrFileNotFound indicates the input workbook does not exist.
var ErrFileNotFound = workbook.ErrFileNotFound

// ErrInvalidFormat indicates the input file is not a valid xlsx workbook.
var ErrInvalidFormat = workbook.ErrInvalidFormat

// Pipeline stages reported by StageError.
const (
	StageRecalc    = "recalc"
	StageValidate  = "validate"
	StageBuild     = "build"
	StageWriteJSON = "write_json"
	StageRenderPDF = "render_pdf"
)

// StageError represents a failure in one pipeline stage.
type StageError struct {
	Stage string
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s failed for %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new StageError.
func NewStageError(stage, path string, err error) *StageError {
	return &StageError{
		Stage: stage,
		Path:  path,
		Err:   err,
	}
}

// FormulaValidationError is returned when formula issues abort a run.
type FormulaValidationError struct {
	Report *models.FormulaValidationReport
}

func (e *FormulaValidationError) Error() string {
	return fmt.Sprintf("formula validation failed with %d issues", len(e.Report.Issues))
}
