// Package staffquoter runs the quote pipeline: validate workbook formulas,
// extract the quote record, and write it as JSON and PDF.
package staffquoter

import (
	"github.com/sirupsen/logrus"
	"github.com/ukaji3/staffquoter-go/pkg/staffquoter/recalc"
)

// Config locates pipeline inputs and outputs.
type Config struct {
	// JSONDir receives <quote_id>.json.
	JSONDir string
	// PDFDir receives <quote_id>.pdf.
	PDFDir string
	// RecalcScript is the external recalculation script.
	RecalcScript string
	// RecalcInterpreter runs RecalcScript. Defaults to python3.
	RecalcInterpreter string
	// RecalcTimeoutSeconds is passed to the script. Defaults to 60.
	RecalcTimeoutSeconds int
}

// RunOptions configures a single pipeline run.
type RunOptions struct {
	// FailOnFormulaIssues aborts the run when validation finds any issue.
	FailOnFormulaIssues bool
	// RunRecalc recalculates the workbook before validation.
	RunRecalc bool
}

// DefaultRunOptions returns the options used by the CLI without flags.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		FailOnFormulaIssues: true,
	}
}

func (c Config) recalcRunner(log logrus.FieldLogger) *recalc.Runner {
	r := recalc.NewRunner(c.RecalcScript, log)
	if c.RecalcInterpreter != "" {
		r.Interpreter = c.RecalcInterpreter
	}
	if c.RecalcTimeoutSeconds > 0 {
		r.TimeoutSeconds = c.RecalcTimeoutSeconds
	}
	return r
}
