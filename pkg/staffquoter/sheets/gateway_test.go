package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// fakeSheetsAPI serves the subset of the Sheets v4 REST API the gateway uses.
type fakeSheetsAPI struct {
	t      *testing.T
	mu     sync.Mutex
	tabs   []string
	values map[string][][]interface{}
	inputs []string
}

func tabFromRange(rng string) string {
	rng = strings.TrimSuffix(rng, ":clear")
	if i := strings.LastIndex(rng, "!"); i >= 0 && strings.HasSuffix(rng[:i], "'") {
		rng = rng[:i]
	}
	rng = strings.TrimPrefix(rng, "'")
	rng = strings.TrimSuffix(rng, "'")
	return strings.ReplaceAll(rng, "''", "'")
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const prefix = "/v4/spreadsheets/sheet-123"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		f.t.Errorf("unexpected path %s", r.URL.Path)
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		var sheets []map[string]any
		for _, tab := range f.tabs {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": tab}})
		}
		json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-123", "sheets": sheets})
	case strings.HasPrefix(rest, "/values/") && r.Method == http.MethodGet:
		tab := tabFromRange(strings.TrimPrefix(rest, "/values/"))
		json.NewEncoder(w).Encode(map[string]any{"range": tab, "values": f.values[tab]})
	case strings.HasSuffix(rest, ":clear") && r.Method == http.MethodPost:
		tab := tabFromRange(strings.TrimPrefix(rest, "/values/"))
		delete(f.values, tab)
		json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-123"})
	case strings.HasPrefix(rest, "/values/") && r.Method == http.MethodPut:
		tab := tabFromRange(strings.TrimPrefix(rest, "/values/"))
		var body struct {
			Values [][]interface{} `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			f.t.Errorf("decoding update body: %v", err)
		}
		f.values[tab] = body.Values
		f.inputs = append(f.inputs, r.URL.Query().Get("valueInputOption"))
		json.NewEncoder(w).Encode(map[string]any{"updatedRows": len(body.Values)})
	default:
		f.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		http.Error(w, `{"error":{"code":400,"message":"bad request"}}`, http.StatusBadRequest)
	}
}

func newTestGateway(t *testing.T, api *fakeSheetsAPI) *Gateway {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	svc, err := gsheets.NewService(context.Background(),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
		option.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("creating sheets service: %v", err)
	}
	return NewGatewayWithService(svc, "sheet-123")
}

func TestNewGatewayValidation(t *testing.T) {
	ctx := context.Background()

	if _, err := NewGateway(ctx, "", "/tmp/cred.json"); !errors.Is(err, ErrSpreadsheetIDRequired) {
		t.Errorf("Expected ErrSpreadsheetIDRequired, got %v", err)
	}
	if _, err := NewGateway(ctx, "abc", ""); !errors.Is(err, ErrCredentialsRequired) {
		t.Errorf("Expected ErrCredentialsRequired, got %v", err)
	}

	missing := filepath.Join(t.TempDir(), "missing.json")
	if _, err := NewGateway(ctx, "abc", missing); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got %v", err)
	}
}

func TestGatewayRoundTrip(t *testing.T) {
	api := &fakeSheetsAPI{
		t:    t,
		tabs: []string{"Quotes", "Rates"},
		values: map[string][][]interface{}{
			"Quotes": {{"stale"}},
		},
	}
	g := newTestGateway(t, api)
	ctx := context.Background()

	tabs, err := g.ListTabs(ctx)
	if err != nil {
		t.Fatalf("ListTabs failed: %v", err)
	}
	if !reflect.DeepEqual(tabs, []string{"Quotes", "Rates"}) {
		t.Errorf("Unexpected tabs %v", tabs)
	}

	n, err := g.WriteRecords(ctx, "Quotes", []string{"id", "price"}, []map[string]string{
		{"id": "Q-1", "price": "10"},
		{"id": "Q-2"},
	}, true)
	if err != nil {
		t.Fatalf("WriteRecords failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 rows written, got %d", n)
	}
	if len(api.inputs) != 1 || api.inputs[0] != "USER_ENTERED" {
		t.Errorf("Expected USER_ENTERED input option, got %v", api.inputs)
	}

	records, err := g.ReadRecords(ctx, "Quotes")
	if err != nil {
		t.Fatalf("ReadRecords failed: %v", err)
	}
	expected := []map[string]string{
		{"id": "Q-1", "price": "10"},
		{"id": "Q-2", "price": ""},
	}
	if !reflect.DeepEqual(records, expected) {
		t.Errorf("ReadRecords = %v, expected %v", records, expected)
	}

	if err := g.ClearTab(ctx, "Quotes"); err != nil {
		t.Fatalf("ClearTab failed: %v", err)
	}
	values, err := g.ReadValues(ctx, "Quotes", "")
	if err != nil {
		t.Fatalf("ReadValues failed: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("Expected cleared tab, got %v", values)
	}
}

func TestWriteRecordsEmptyClearsOnly(t *testing.T) {
	api := &fakeSheetsAPI{t: t, values: map[string][][]interface{}{"Rates": {{"x"}}}}
	g := newTestGateway(t, api)

	n, err := g.WriteRecords(context.Background(), "Rates", []string{"a"}, nil, true)
	if err != nil {
		t.Fatalf("WriteRecords failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0, got %d", n)
	}
	if _, ok := api.values["Rates"]; ok {
		t.Error("Expected tab to be cleared")
	}
	if len(api.inputs) != 0 {
		t.Errorf("Expected no update call, got %d", len(api.inputs))
	}
}

func TestTabRange(t *testing.T) {
	tests := []struct {
		tab      string
		expected string
	}{
		{"Quotes", "'Quotes'"},
		{"Bob's Tab", "'Bob''s Tab'"},
	}
	for _, tt := range tests {
		if result := tabRange(tt.tab); result != tt.expected {
			t.Errorf("tabRange(%q) = %q, expected %q", tt.tab, result, tt.expected)
		}
	}
}
