package validator

import (
	"regexp"
	"strings"
)

var (
	// A literal is a double-quoted span where "" escapes a quote.
	stringLiteralPattern = regexp.MustCompile(`"(?:[^"]|"")*"`)
	// Group 1 is a quoted sheet name, group 2 a bare identifier.
	sheetRefPattern = regexp.MustCompile(`(?:'([^']+)'|([A-Za-z_][A-Za-z0-9_]*))!`)
)

// StripStringLiterals removes every double-quoted literal from formula.
func StripStringLiterals(formula string) string {
	return stringLiteralPattern.ReplaceAllLiteralString(formula, "")
}

// SheetReferences returns the sheet names referenced as Name! or 'Name'!
// outside string literals, trimmed, in order of appearance. Duplicates are kept.
func SheetReferences(formula string) []string {
	if !strings.Contains(formula, "!") {
		return nil
	}

	var refs []string
	for _, m := range sheetRefPattern.FindAllStringSubmatch(StripStringLiterals(formula), -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		name = strings.TrimSpace(name)
		if name != "" {
			refs = append(refs, name)
		}
	}
	return refs
}
