package workbook

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// rawFormulaCell is a <c> element that carried an <f> child.
type rawFormulaCell struct {
	coordinate string
	text       string
}

// worksheetParts maps sheet names to worksheet part paths inside the package.
func worksheetParts(r *zip.Reader) (map[string]string, error) {
	workbookXML, err := readZipFile(r, "xl/workbook.xml")
	if err != nil {
		return nil, err
	}
	relsXML, err := readZipFile(r, "xl/_rels/workbook.xml.rels")
	if err != nil {
		return nil, err
	}

	return parseWorkbookRels(relsXML, parseWorkbookSheets(workbookXML)), nil
}

// scanFormulaCells walks a worksheet part and collects cells with formulas.
func scanFormulaCells(data []byte) ([]rawFormulaCell, error) {
	var (
		result  []rawFormulaCell
		row     int
		col     int
		inCell  bool
		hasF    bool
		current rawFormulaCell
	)

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				col = 0
				row++
				if v, err := strconv.Atoi(attrValue(t, "r")); err == nil {
					row = v
				}
			case "c":
				col++
				inCell, hasF = true, false
				current = rawFormulaCell{}
				if ref := attrValue(t, "r"); ref != "" {
					if c, r, err := excelize.CellNameToCoordinates(ref); err == nil {
						col, row = c, r
					}
				}
				current.coordinate, _ = excelize.CoordinatesToCellName(col, row)
			case "f":
				if !inCell {
					continue
				}
				text, err := readElementText(decoder)
				if err != nil {
					return nil, err
				}
				hasF = true
				current.text = text
			}
		case xml.EndElement:
			if t.Name.Local == "c" {
				if hasF {
					result = append(result, current)
				}
				inCell, hasF = false, false
			}
		}
	}

	return result, nil
}

func attrValue(se xml.StartElement, local string) string {
	for _, attr := range se.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("part %s: %w", name, fs.ErrNotExist)
}

func readElementText(decoder *xml.Decoder) (string, error) {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text.String(), nil
}

// resolvePartPath turns a relationship target from xl/_rels/workbook.xml.rels
// into a package path.
func resolvePartPath(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	clean := target
	for strings.HasPrefix(clean, "../") {
		clean = strings.TrimPrefix(clean, "../")
	}
	if strings.HasPrefix(clean, "xl/") {
		return clean
	}
	return "xl/" + clean
}

func parseWorkbookSheets(data []byte) map[string]string {
	result := make(map[string]string) // rId -> sheet name
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "sheet" {
			var name, rID string
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "name":
					name = attr.Value
				case "id":
					rID = attr.Value
				}
			}
			if name != "" && rID != "" {
				result[rID] = name
			}
		}
	}

	return result
}

func parseWorkbookRels(data []byte, sheetsInfo map[string]string) map[string]string {
	result := make(map[string]string) // sheet name -> part path
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			var rID, target, relType string
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "Id":
					rID = attr.Value
				case "Target":
					target = attr.Value
				case "Type":
					relType = attr.Value
				}
			}
			sheetName, ok := sheetsInfo[rID]
			if !ok || !strings.HasSuffix(strings.ToLower(relType), "/worksheet") {
				continue
			}
			result[sheetName] = resolvePartPath(target)
		}
	}

	return result
}
