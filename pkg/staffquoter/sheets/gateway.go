// Package sheets pushes and pulls tabular data to a Google Spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// DefaultScopes grant read/write access to spreadsheets.
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
}

var (
	// ErrSpreadsheetIDRequired is returned when no spreadsheet ID is configured.
	ErrSpreadsheetIDRequired = errors.New("spreadsheet ID is required")
	// ErrCredentialsRequired is returned when no credentials file is configured.
	ErrCredentialsRequired = errors.New("credentials file is required")
)

// valueInputOption makes the API parse values as if typed by a user.
const valueInputOption = "USER_ENTERED"

// Gateway reads and writes tabs of a single spreadsheet.
type Gateway struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// NewGateway authenticates with a service-account credentials file.
func NewGateway(ctx context.Context, spreadsheetID, credentialsFile string, scopes ...string) (*Gateway, error) {
	if spreadsheetID == "" {
		return nil, ErrSpreadsheetIDRequired
	}
	if credentialsFile == "" {
		return nil, ErrCredentialsRequired
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("google credentials file not found: %s: %w", credentialsFile, err)
	}
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(scopes...),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return NewGatewayWithService(svc, spreadsheetID), nil
}

// NewGatewayWithService wraps an existing Sheets service.
func NewGatewayWithService(svc *gsheets.Service, spreadsheetID string) *Gateway {
	return &Gateway{svc: svc, spreadsheetID: spreadsheetID}
}

// ListTabs returns the tab titles in spreadsheet order.
func (g *Gateway) ListTabs(ctx context.Context) ([]string, error) {
	ss, err := g.svc.Spreadsheets.Get(g.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing tabs: %w", err)
	}

	tabs := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			tabs = append(tabs, sh.Properties.Title)
		}
	}
	return tabs, nil
}

// ReadValues returns the cell values of a tab, optionally restricted to an
// A1 range within it.
func (g *Gateway) ReadValues(ctx context.Context, tab, rangeA1 string) ([][]string, error) {
	rng := tabRange(tab)
	if rangeA1 != "" {
		rng += "!" + rangeA1
	}

	vr, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading tab %q: %w", tab, err)
	}

	values := make([][]string, len(vr.Values))
	for i, row := range vr.Values {
		values[i] = make([]string, len(row))
		for j, cell := range row {
			values[i][j] = fmt.Sprint(cell)
		}
	}
	return values, nil
}

// ReadRecords returns the rows of a tab keyed by the header row. Missing
// trailing cells read as empty strings.
func (g *Gateway) ReadRecords(ctx context.Context, tab string) ([]map[string]string, error) {
	values, err := g.ReadValues(ctx, tab, "")
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}

	header := values[0]
	records := make([]map[string]string, 0, len(values)-1)
	for _, row := range values[1:] {
		rec := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(row) {
				rec[key] = row[i]
			} else {
				rec[key] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ClearTab removes every value from a tab.
func (g *Gateway) ClearTab(ctx context.Context, tab string) error {
	_, err := g.svc.Spreadsheets.Values.Clear(g.spreadsheetID, tabRange(tab), &gsheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clearing tab %q: %w", tab, err)
	}
	return nil
}

// WriteRecords writes header followed by one line per record starting at A1
// and returns the number of records written. Keys missing from a record are
// written as empty cells.
func (g *Gateway) WriteRecords(ctx context.Context, tab string, header []string, rows []map[string]string, clearFirst bool) (int, error) {
	if clearFirst {
		if err := g.ClearTab(ctx, tab); err != nil {
			return 0, err
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}

	values := make([][]interface{}, 0, len(rows)+1)
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	values = append(values, headerRow)
	for _, row := range rows {
		line := make([]interface{}, len(header))
		for i, h := range header {
			line[i] = row[h]
		}
		values = append(values, line)
	}

	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, tabRange(tab)+"!A1", &gsheets.ValueRange{Values: values}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("writing tab %q: %w", tab, err)
	}
	return len(rows), nil
}

// tabRange quotes a tab title for use in A1 notation.
func tabRange(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}
