package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// table is the intermediate tabular shape both the CSV and the XLSX readers
// produce: normalized headers plus raw string cells, one slice per row.
type table struct {
	headers []string
	rows    [][]string
}

// column returns the index of a header, or -1 when absent.
func (t *table) column(name string) int {
	for i, h := range t.headers {
		if h == name {
			return i
		}
	}
	return -1
}

// cell returns the trimmed cell value at (row, col), tolerating short rows.
func (t *table) cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// normalizeHeader lowercases and trims a column header.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// isSpreadsheet reports whether the filename points at an Excel workbook
// rather than delimited text.
func isSpreadsheet(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls", ".xlsm":
		return true
	}
	return false
}

// parseCSV reads comma-separated text into a table. The first row is the
// header row. Rows may have ragged lengths; short rows are padded on access.
func parseCSV(text string) (*table, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(all) == 0 {
		return &table{}, nil
	}

	headers := make([]string, len(all[0]))
	for i, h := range all[0] {
		headers[i] = normalizeHeader(h)
	}

	return &table{headers: headers, rows: all[1:]}, nil
}

// parseWorkbook extracts the first sheet of an Excel workbook into the same
// header+rows shape the CSV reader produces, so both formats share one
// validation pipeline.
func parseWorkbook(data []byte) (*table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &table{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &table{}, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = normalizeHeader(h)
	}

	return &table{headers: headers, rows: rows[1:]}, nil
}
