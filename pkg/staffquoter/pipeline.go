package staffquoter

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/ukaji3/staffquoter-go/pkg/staffquoter/models"
	"github.com/ukaji3/staffquoter-go/pkg/staffquoter/quote"
	"github.com/ukaji3/staffquoter-go/pkg/staffquoter/recalc"
	"github.com/ukaji3/staffquoter-go/pkg/staffquoter/render"
	"github.com/ukaji3/staffquoter-go/pkg/staffquoter/validator"
)

// Result describes a completed pipeline run.
type Result struct {
	RunID          string                  `json:"run_id"`
	WorkbookPath   string                  `json:"workbook_path"`
	FormulaReport  models.ReportProjection `json:"formula_report"`
	JSONOutputPath string                  `json:"json_output_path"`
	PDFOutputPath  string                  `json:"pdf_output_path"`
	RecalcOutput   *recalc.Result          `json:"recalc_output"`
}

// Pipeline turns a quote workbook into JSON and PDF artifacts.
type Pipeline struct {
	cfg       Config
	log       logrus.FieldLogger
	validator *validator.Validator
	builder   *quote.Builder
	renderer  *render.PDFRenderer
	recalc    *recalc.Runner
}

// New returns a Pipeline. A nil logger discards output.
func New(cfg Config, log logrus.FieldLogger) *Pipeline {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Pipeline{
		cfg:       cfg,
		log:       log,
		validator: validator.New(log),
		builder:   quote.NewBuilder(),
		renderer:  render.NewPDFRenderer(),
		recalc:    cfg.recalcRunner(log),
	}
}

// Validate checks the formulas of the workbook at path.
func (p *Pipeline) Validate(path string) (*models.FormulaValidationReport, error) {
	report, err := p.validator.Validate(path)
	if err != nil {
		return nil, NewStageError(StageValidate, path, err)
	}
	return report, nil
}

// Run executes the pipeline for the workbook at path.
func (p *Pipeline) Run(ctx context.Context, path string, opts RunOptions) (*Result, error) {
	runID := uuid.NewString()
	log := p.log.WithFields(logrus.Fields{"run_id": runID, "workbook": path})

	var recalcOutput *recalc.Result
	if opts.RunRecalc {
		out, err := p.recalc.Run(ctx, path)
		if err != nil {
			return nil, NewStageError(StageRecalc, path, err)
		}
		recalcOutput = out
	}

	report, err := p.Validate(path)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"formulas": report.TotalFormulas,
		"issues":   len(report.Issues),
	}).Info("formulas validated")
	if opts.FailOnFormulaIssues && report.HasErrors() {
		return nil, &FormulaValidationError{Report: report}
	}

	payload, err := p.builder.Build(path)
	if err != nil {
		return nil, NewStageError(StageBuild, path, err)
	}

	jsonPath, err := p.writeJSON(payload)
	if err != nil {
		return nil, NewStageError(StageWriteJSON, path, err)
	}

	pdfPath, err := p.renderer.Render(payload, filepath.Join(p.cfg.PDFDir, outputName(payload.QuoteID, ".pdf")))
	if err != nil {
		return nil, NewStageError(StageRenderPDF, path, err)
	}

	log.WithFields(logrus.Fields{
		"quote_id": payload.QuoteID,
		"json":     jsonPath,
		"pdf":      pdfPath,
	}).Info("quote written")

	return &Result{
		RunID:          runID,
		WorkbookPath:   path,
		FormulaReport:  report.Projection(),
		JSONOutputPath: jsonPath,
		PDFOutputPath:  pdfPath,
		RecalcOutput:   recalcOutput,
	}, nil
}

func (p *Pipeline) writeJSON(payload *models.QuotePayload) (string, error) {
	data, err := payload.ToJSON()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(p.cfg.JSONDir, 0755); err != nil {
		return "", err
	}
	out := filepath.Join(p.cfg.JSONDir, outputName(payload.QuoteID, ".json"))
	if err := os.WriteFile(out, data, 0644); err != nil {
		return "", err
	}
	return out, nil
}

// outputName keeps quote ids containing path separators inside the output dir.
func outputName(quoteID, ext string) string {
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(quoteID)
	if name == "" || name == "." || name == ".." {
		name = quote.UnknownQuoteID
	}
	return name + ext
}
