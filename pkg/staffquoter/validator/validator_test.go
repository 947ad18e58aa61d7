package validator

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ukaji3/staffquoter-go/pkg/staffquoter/models"
	"github.com/ukaji3/staffquoter-go/pkg/staffquoter/workbook"
	"github.com/xuri/excelize/v2"
)

// memSource is an in-memory workbook.Source.
type memSource struct {
	sheets []string
	cells  map[string][]workbook.Cell
	err    error
}

func (m *memSource) SheetNames() []string { return m.sheets }

func (m *memSource) FormulaCells(sheet string) ([]workbook.Cell, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cells[sheet], nil
}

func newSource(sheets []string, formulas map[string]map[string]string, order map[string][]string) *memSource {
	src := &memSource{sheets: sheets, cells: make(map[string][]workbook.Cell)}
	for sheet, coords := range order {
		for _, coord := range coords {
			src.cells[sheet] = append(src.cells[sheet], workbook.Cell{
				Sheet:      sheet,
				Coordinate: coord,
				Formula:    formulas[sheet][coord],
			})
		}
	}
	return src
}

func issueCodes(report *models.FormulaValidationReport) map[models.IssueCode]int {
	codes := make(map[models.IssueCode]int)
	for _, issue := range report.Issues {
		codes[issue.Code]++
	}
	return codes
}

func TestValidateDetectsTokensAndUnknownSheets(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "MAIN")
	f.NewSheet("DATA")
	f.SetCellFormula("MAIN", "A1", "=1+1")
	f.SetCellFormula("MAIN", "A2", "=#REF!")
	f.SetCellFormula("MAIN", "A3", "=MISSING_SHEET!A1")

	path := filepath.Join(t.TempDir(), "validator_case.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	report, err := New(nil).Validate(path)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if report.TotalFormulas != 3 {
		t.Errorf("Expected 3 formulas, got %d", report.TotalFormulas)
	}
	if !report.HasErrors() {
		t.Fatal("Expected errors")
	}
	codes := issueCodes(report)
	if codes[models.CodeErrorToken] == 0 {
		t.Errorf("Expected an ERROR_TOKEN issue, got %+v", report.Issues)
	}
	if codes[models.CodeUnknownSheetRef] == 0 {
		t.Errorf("Expected an UNKNOWN_SHEET_REF issue, got %+v", report.Issues)
	}
	if report.WorkbookPath != path {
		t.Errorf("Expected workbook path %q, got %q", path, report.WorkbookPath)
	}
}

func TestValidateNoFormulas(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "plain")
	f.SetCellValue("Sheet1", "B2", 42)

	path := filepath.Join(t.TempDir(), "plain.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	report, err := New(nil).Validate(path)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if report.TotalFormulas != 0 || len(report.Issues) != 0 || report.HasErrors() {
		t.Errorf("Expected empty report, got %+v", report)
	}
}

func TestValidateMissingWorkbook(t *testing.T) {
	_, err := New(nil).Validate(filepath.Join(t.TempDir(), "missing.xlsx"))
	if !errors.Is(err, workbook.ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
}

func TestValidateSourceEdgeCases(t *testing.T) {
	src := newSource(
		[]string{"MAIN", "My Sheet", "Data"},
		map[string]map[string]string{
			"MAIN": {
				"A1": "=MAIN!B1+'My Sheet'!A1",
				"A2": "=Missing!A1+Missing!A2+Missing!A3",
				"A3": `=IF(A1>0,"Ghost!A1","none")`,
				"A4": `="#n/a"`,
				"A5": "=data!A1",
				"A6": "=#REF!+#DIV/0!+#VALUE!+#N/A+#NAME?",
				"A7": "=SUM(B1:B9)",
			},
		},
		map[string][]string{"MAIN": {"A1", "A2", "A3", "A4", "A5", "A6", "A7"}},
	)

	report, err := New(nil).ValidateSource("mem.xlsx", src)
	if err != nil {
		t.Fatalf("ValidateSource failed: %v", err)
	}
	if report.TotalFormulas != 7 {
		t.Errorf("Expected 7 formulas, got %d", report.TotalFormulas)
	}

	expected := []models.FormulaIssue{
		{Sheet: "MAIN", Cell: "A2", Code: models.CodeUnknownSheetRef, Detail: "Unknown sheet reference: Missing"},
		{Sheet: "MAIN", Cell: "A4", Code: models.CodeErrorToken, Detail: "Found token #N/A"},
		{Sheet: "MAIN", Cell: "A5", Code: models.CodeUnknownSheetRef, Detail: "Unknown sheet reference: data"},
		{Sheet: "MAIN", Cell: "A6", Code: models.CodeErrorToken, Detail: "Found token #REF!"},
		{Sheet: "MAIN", Cell: "A6", Code: models.CodeErrorToken, Detail: "Found token #DIV/0!"},
		{Sheet: "MAIN", Cell: "A6", Code: models.CodeErrorToken, Detail: "Found token #VALUE!"},
		{Sheet: "MAIN", Cell: "A6", Code: models.CodeErrorToken, Detail: "Found token #N/A"},
		{Sheet: "MAIN", Cell: "A6", Code: models.CodeErrorToken, Detail: "Found token #NAME?"},
		// #REF! and #VALUE! also read as bare sheet references.
		{Sheet: "MAIN", Cell: "A6", Code: models.CodeUnknownSheetRef, Detail: "Unknown sheet reference: REF"},
		{Sheet: "MAIN", Cell: "A6", Code: models.CodeUnknownSheetRef, Detail: "Unknown sheet reference: VALUE"},
	}
	if len(report.Issues) != len(expected) {
		t.Fatalf("Expected %d issues, got %d: %+v", len(expected), len(report.Issues), report.Issues)
	}
	for i, want := range expected {
		if report.Issues[i] != want {
			t.Errorf("Issues[%d] = %+v, expected %+v", i, report.Issues[i], want)
		}
	}
}

func TestValidateSourceIsIdempotent(t *testing.T) {
	src := newSource(
		[]string{"A", "B"},
		map[string]map[string]string{
			"A": {"A1": "=Z!A1", "B1": "=#REF!"},
			"B": {"C3": "=A!A1+Y!A1"},
		},
		map[string][]string{"A": {"A1", "B1"}, "B": {"C3"}},
	)

	v := New(nil)
	first, err := v.ValidateSource("x.xlsx", src)
	if err != nil {
		t.Fatalf("ValidateSource failed: %v", err)
	}
	second, err := v.ValidateSource("x.xlsx", src)
	if err != nil {
		t.Fatalf("ValidateSource failed: %v", err)
	}

	if first.TotalFormulas != second.TotalFormulas {
		t.Errorf("TotalFormulas differ: %d vs %d", first.TotalFormulas, second.TotalFormulas)
	}
	set := make(map[models.FormulaIssue]bool)
	for _, issue := range first.Issues {
		set[issue] = true
	}
	if len(set) != len(second.Issues) {
		t.Fatalf("Issue sets differ: %+v vs %+v", first.Issues, second.Issues)
	}
	for _, issue := range second.Issues {
		if !set[issue] {
			t.Errorf("Issue %+v missing from first run", issue)
		}
	}
}

func TestValidateSourcePropagatesReadErrors(t *testing.T) {
	boom := errors.New("boom")
	src := &memSource{sheets: []string{"A"}, err: boom}

	_, err := New(nil).ValidateSource("x.xlsx", src)
	if !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
}

func TestDedupeIssues(t *testing.T) {
	a := models.FormulaIssue{Sheet: "S", Cell: "A1", Code: models.CodeErrorToken, Detail: "x"}
	b := models.FormulaIssue{Sheet: "S", Cell: "A2", Code: models.CodeErrorToken, Detail: "x"}

	result := dedupeIssues([]models.FormulaIssue{a, b, a, b, a})
	if len(result) != 2 || result[0] != a || result[1] != b {
		t.Errorf("dedupeIssues = %+v", result)
	}
	if got := dedupeIssues(nil); got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", got)
	}
}
