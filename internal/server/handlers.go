package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ukaji3/staffquoter-go/pkg/staffquoter"
)

// ValidateRequest is the body of POST /api/validate.
type ValidateRequest struct {
	WorkbookPath string `json:"workbook_path" binding:"required"`
}

// QuoteRequest is the body of POST /api/quotes.
type QuoteRequest struct {
	WorkbookPath       string `json:"workbook_path" binding:"required"`
	AllowFormulaIssues bool   `json:"allow_formula_issues"`
	RunRecalc          bool   `json:"run_recalc"`
}

// ErrorResponse is returned for failed requests.
type ErrorResponse struct {
	Error         string `json:"error"`
	FormulaReport any    `json:"formula_report,omitempty"`
}

// RegisterRoutes mounts the API on group.
func (s *Server) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/health", s.Health)
	group.POST("/validate", s.ValidateWorkbook)
	group.POST("/quotes", s.CreateQuote)
}

// Health reports liveness.
// GET /api/health
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ValidateWorkbook returns the formula report of a workbook.
// POST /api/validate
func (s *Server) ValidateWorkbook(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	report, err := s.pipeline.Validate(req.WorkbookPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, report.Projection())
}

// CreateQuote runs the full pipeline.
// POST /api/quotes
func (s *Server) CreateQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	opts := staffquoter.RunOptions{
		FailOnFormulaIssues: !req.AllowFormulaIssues,
		RunRecalc:           req.RunRecalc,
	}
	result, err := s.pipeline.Run(c.Request.Context(), req.WorkbookPath, opts)
	if err != nil {
		var fve *staffquoter.FormulaValidationError
		var stageErr *staffquoter.StageError
		switch {
		case errors.As(err, &fve):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:         err.Error(),
				FormulaReport: fve.Report.Projection(),
			})
		case errors.As(err, &stageErr) && stageErr.Stage == staffquoter.StageValidate:
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			s.log.WithError(err).Error("quote run failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}
