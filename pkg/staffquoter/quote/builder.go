// Package quote maps fixed workbook cells to a quote record.
package quote

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ukaji3/staffquoter-go/pkg/staffquoter/models"
	"github.com/xuri/excelize/v2"
)

// Sheet names holding the quote fields.
const (
	SheetInput       = "INPUT_QUOTE"
	SheetCalcOutputs = "CALC_OUTPUTS"
	SheetQuoteOutput = "QUOTE_OUTPUT"
)

// UnknownQuoteID is used when the workbook has no quote id.
const UnknownQuoteID = "UNKNOWN"

// Builder reads quote payloads from recalculated workbooks.
type Builder struct {
	// Now returns the generation timestamp. Defaults to models.NowISO.
	Now func() string
}

// NewBuilder returns a Builder stamping payloads with the current time.
func NewBuilder() *Builder {
	return &Builder{Now: models.NowISO}
}

// Build opens the workbook at path and reads the quote fields from the
// cached cell values.
func (b *Builder) Build(path string) (*models.QuotePayload, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return b.BuildFrom(f)
}

// BuildFrom reads the quote fields from an open workbook.
func (b *Builder) BuildFrom(f *excelize.File) (*models.QuotePayload, error) {
	r := &cellReader{f: f}

	quoteID := r.text(SheetInput, "A2")
	if quoteID == "" {
		quoteID = UnknownQuoteID
	}

	now := b.Now
	if now == nil {
		now = models.NowISO
	}

	payload := &models.QuotePayload{
		QuoteID:        quoteID,
		EngineType:     r.text(SheetInput, "C2"),
		CustomerName:   r.text(SheetInput, "D2"),
		PartNumber:     r.text(SheetInput, "G2"),
		TotalCost:      toFloat(r.raw(SheetCalcOutputs, "B2")),
		TotalPrice:     toFloat(r.raw(SheetCalcOutputs, "C2")),
		MarginPct:      toFloat(r.raw(SheetCalcOutputs, "D2")),
		LeadTimeWeeks:  toFloat(r.raw(SheetCalcOutputs, "E2")),
		MOQ:            toInt(r.raw(SheetCalcOutputs, "F2")),
		PDFReadyFlag:   toBool(r.text(SheetQuoteOutput, "C2")),
		GeneratedAtUTC: now(),
	}
	if r.err != nil {
		return nil, r.err
	}

	return payload, nil
}

// cellReader keeps the first read error so the field list stays flat.
type cellReader struct {
	f   *excelize.File
	err error
}

func (r *cellReader) text(sheet, cell string) string {
	return r.read(sheet, cell, false)
}

func (r *cellReader) raw(sheet, cell string) string {
	return r.read(sheet, cell, true)
}

func (r *cellReader) read(sheet, cell string, raw bool) string {
	if r.err != nil {
		return ""
	}
	v, err := r.f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: raw})
	if err != nil {
		r.err = fmt.Errorf("reading %s!%s: %w", sheet, cell, err)
		return ""
	}
	return v
}

// toFloat parses a cell value, returning 0 for blank or non-numeric text.
func toFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// toInt parses a cell value as a number and truncates it toward zero.
func toInt(s string) int {
	return int(toFloat(s))
}

func toBool(s string) bool {
	return strings.ToUpper(strings.TrimSpace(s)) == "TRUE"
}
