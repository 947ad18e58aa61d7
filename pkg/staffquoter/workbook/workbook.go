// Package workbook loads xlsx workbooks and exposes their formula cells.
package workbook

import (
	"archive/zip"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/xuri/excelize/v2"
)

// ErrFileNotFound indicates the workbook file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the file is not a readable xlsx package.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// Cell is a formula-bearing cell.
type Cell struct {
	// Sheet is the title of the containing sheet.
	Sheet string
	// Coordinate is the A1 reference of the cell.
	Coordinate string
	// Formula is the raw formula text.
	Formula string
}

// Source is a loaded workbook as seen by the formula validator.
type Source interface {
	// SheetNames returns every sheet title in declaration order.
	SheetNames() []string
	// FormulaCells returns the formula cells of a sheet in row-major order.
	FormulaCells(sheet string) ([]Cell, error)
}

// File is an open xlsx workbook. It must be closed after use.
type File struct {
	path   string
	xl     *excelize.File
	zr     *zip.ReadCloser
	sheets []string
	parts  map[string]string // sheet name -> worksheet part path
}

// Open opens the workbook at path for formula inspection.
func Open(path string) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFormat, path, err)
	}

	xl, err := excelize.OpenFile(path)
	if err != nil {
		zr.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFormat, path, err)
	}

	parts, err := worksheetParts(&zr.Reader)
	if err != nil {
		xl.Close()
		zr.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFormat, path, err)
	}

	return &File{
		path:   path,
		xl:     xl,
		zr:     zr,
		sheets: xl.GetSheetList(),
		parts:  parts,
	}, nil
}

// Path returns the path the workbook was opened from.
func (f *File) Path() string {
	return f.path
}

// SheetNames returns every sheet title in declaration order.
func (f *File) SheetNames() []string {
	names := make([]string, len(f.sheets))
	copy(names, f.sheets)
	return names
}

// FormulaCells returns the formula cells of sheet in document order.
// Sheets without a worksheet part, such as chartsheets, have none.
func (f *File) FormulaCells(sheet string) ([]Cell, error) {
	part, ok := f.parts[sheet]
	if !ok {
		return nil, nil
	}

	data, err := readZipFile(&f.zr.Reader, part)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	raw, err := scanFormulaCells(data)
	if err != nil {
		return nil, fmt.Errorf("parsing sheet %q: %w", sheet, err)
	}

	var cells []Cell
	for _, rc := range raw {
		// excelize expands shared formulas that only carry an index in the XML.
		formula, err := f.xl.GetCellFormula(sheet, rc.coordinate)
		if err != nil || formula == "" {
			formula = rc.text
		}
		if formula == "" {
			continue
		}
		cells = append(cells, Cell{
			Sheet:      sheet,
			Coordinate: rc.coordinate,
			Formula:    formula,
		})
	}

	return cells, nil
}

// Close releases the workbook handles.
func (f *File) Close() error {
	err := f.xl.Close()
	if zerr := f.zr.Close(); err == nil {
		err = zerr
	}
	return err
}
