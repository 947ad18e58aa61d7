package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TabWriter replaces the contents of a spreadsheet tab.
type TabWriter interface {
	WriteRecords(ctx context.Context, tab string, header []string, rows []map[string]string, clearFirst bool) (int, error)
}

// SyncResult reports one synced tab.
type SyncResult struct {
	Tab    string `json:"tab"`
	Rows   int    `json:"rows"`
	Source string `json:"source"`
}

// CSVSyncer uploads a directory of CSV files, one tab per file named after
// the file stem.
type CSVSyncer struct {
	w   TabWriter
	log logrus.FieldLogger
}

// NewCSVSyncer returns a syncer writing through w.
func NewCSVSyncer(w TabWriter, log logrus.FieldLogger) *CSVSyncer {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &CSVSyncer{w: w, log: log}
}

// Sync writes every *.csv file in dir, in name order, to its tab. When tabs
// is non-empty only files whose stem is listed are synced.
func (s *CSVSyncer) Sync(ctx context.Context, dir string, tabs []string) ([]SyncResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("CSV directory not found: %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("CSV directory not found: %s is not a directory", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	wanted := make(map[string]bool, len(tabs))
	for _, t := range tabs {
		wanted[t] = true
	}

	var results []SyncResult
	for _, file := range files {
		tab := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		if len(wanted) > 0 && !wanted[tab] {
			continue
		}

		header, rows, err := ReadCSV(file)
		if err != nil {
			return results, fmt.Errorf("reading %s: %w", file, err)
		}
		if _, err := s.w.WriteRecords(ctx, tab, header, rows, true); err != nil {
			return results, err
		}

		s.log.WithFields(logrus.Fields{
			"tab":    tab,
			"rows":   len(rows),
			"source": file,
		}).Info("synced tab")
		results = append(results, SyncResult{Tab: tab, Rows: len(rows), Source: file})
	}

	s.log.WithField("synced_tabs", len(results)).Info("csv sync done")
	return results, nil
}

// ReadCSV reads a CSV file whose first line is the header. A leading UTF-8
// byte order mark is ignored. Short lines leave the remaining keys empty.
func ReadCSV(path string) ([]string, []map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var rows []map[string]string
	for {
		line, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		row := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(line) {
				row[key] = line[i]
			} else {
				row[key] = ""
			}
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}
