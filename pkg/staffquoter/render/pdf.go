// Package render draws the one-page quote summary PDF.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/ukaji3/staffquoter-go/pkg/staffquoter/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Page layout in points, measured from the top-left corner of a US Letter page.
const (
	marginLeft    = 72.0
	marginTop     = 72.0
	titleGap      = 26.0
	headerGap     = 28.0
	lineLeading   = 20.0
	titleFontSize = 16.0
	metaFontSize  = 10.0
	bodyFontSize  = 11.0
)

// Title is the heading printed on every summary.
const Title = "Staff Quoter - Quote Summary"

var amountPrinter = message.NewPrinter(language.English)

// PDFRenderer renders quote payloads as PDF files.
type PDFRenderer struct{}

// NewPDFRenderer returns a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render writes the summary for payload to outPath, creating parent
// directories as needed, and returns the written path.
func (r *PDFRenderer) Render(payload *models.QuotePayload, outPath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return "", err
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetTitle(Title, true)
	pdf.SetCreator("staffquoter", true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	y := marginTop
	pdf.SetFont("Helvetica", "B", titleFontSize)
	pdf.Text(marginLeft, y, Title)

	y += titleGap
	pdf.SetFont("Helvetica", "", metaFontSize)
	pdf.Text(marginLeft, y, tr("Generated UTC: "+payload.GeneratedAtUTC))

	y += headerGap
	pdf.SetFont("Helvetica", "", bodyFontSize)
	for _, line := range SummaryLines(payload) {
		pdf.Text(marginLeft, y, tr(line.Label+": "+line.Value))
		y += lineLeading
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return "", fmt.Errorf("writing pdf %s: %w", outPath, err)
	}
	return outPath, nil
}

// SummaryLine is one labelled value on the summary page.
type SummaryLine struct {
	Label string
	Value string
}

// SummaryLines returns the body lines of the summary in print order.
func SummaryLines(p *models.QuotePayload) []SummaryLine {
	ready := "FALSE"
	if p.PDFReadyFlag {
		ready = "TRUE"
	}
	return []SummaryLine{
		{"Quote ID", p.QuoteID},
		{"Engine", p.EngineType},
		{"Customer", p.CustomerName},
		{"Part Number", p.PartNumber},
		{"Total Cost", FormatAmount(p.TotalCost)},
		{"Total Price", FormatAmount(p.TotalPrice)},
		{"Margin %", strconv.FormatFloat(p.MarginPct, 'f', 4, 64)},
		{"Lead Time (weeks)", strconv.FormatFloat(p.LeadTimeWeeks, 'f', 2, 64)},
		{"MOQ", strconv.Itoa(p.MOQ)},
		{"PDF Ready", ready},
	}
}

// FormatAmount formats v with thousands separators and two decimals.
func FormatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}
