package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"adpulse/pkg/contracts/domain"
)

// RequiredColumns are the headers every upload must carry. Validation aborts
// when any of them is missing.
var RequiredColumns = []string{"date", "product", "revenue", "cost", "commission"}

// optionalColumns are preserved when present; their absence is not a defect.
var optionalColumns = []string{"time", "platform", "status", "category", "sub_id1"}

// numericColumns are parsed as currency amounts and clamped at zero.
var numericColumns = []string{"revenue", "cost", "commission"}

// dateLayouts are the accepted date formats, tried in order. Time-of-day is
// discarded after parsing.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2006/01/02",
}

// ValidationError is a structural failure: the upload as a whole was rejected
// and no records were produced. Reasons are user-facing strings.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Reasons, "; ")
}

func structural(reasons ...string) error {
	return &ValidationError{Reasons: reasons}
}

// Result is a successful validation outcome: the cleaned record sequence plus
// the ordered list of non-fatal warnings accumulated along the way. Dropped
// counts the rows discarded by row-level checks.
type Result struct {
	Records  []domain.TransactionRecord `json:"records"`
	Warnings []string                   `json:"warnings"`
	Dropped  int                        `json:"dropped"`
}

// Service validates raw uploads and turns them into typed transaction
// records. Bad rows are dropped (with a warning per defect class); a
// malformed schema aborts the whole file.
type Service struct {
	logger *slog.Logger
}

// NewService creates a new ingestion validator.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Validate decodes, parses and cleans an uploaded payload. The filename is
// used for diagnostics and to choose the workbook reader for Excel files;
// it never affects the validation rules.
func (s *Service) Validate(ctx context.Context, data []byte, filename string) (*Result, error) {
	tbl, err := s.readTable(data, filename)
	if err != nil {
		s.logger.WarnContext(ctx, "upload is not decodable",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return nil, structural("could not decode the file; check its character encoding")
	}

	if len(tbl.rows) == 0 {
		return nil, structural("the file is empty")
	}

	if missing := missingColumns(tbl); len(missing) > 0 {
		return nil, structural(fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	result := s.cleanRows(tbl)

	if len(result.Records) == 0 {
		reasons := append([]string{}, result.Warnings...)
		reasons = append(reasons, "no valid rows remained after validation")
		return nil, structural(reasons...)
	}

	s.logger.InfoContext(ctx, "upload validated",
		slog.String("filename", filename),
		slog.Int("rows", len(result.Records)),
		slog.Int("warnings", len(result.Warnings)))

	return result, nil
}

// readTable decodes the payload and parses it into the shared tabular shape.
func (s *Service) readTable(data []byte, filename string) (*table, error) {
	if isSpreadsheet(filename) {
		return parseWorkbook(data)
	}
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}
	return parseCSV(text)
}

func missingColumns(tbl *table) []string {
	var missing []string
	for _, col := range RequiredColumns {
		if tbl.column(col) < 0 {
			missing = append(missing, col)
		}
	}
	return missing
}

// cleanRows runs the row-level part of the pipeline: drop fully-empty rows,
// coerce types, drop rows per defect class, clamp negatives, derive profit.
func (s *Service) cleanRows(tbl *table) *Result {
	cols := make(map[string]int, len(RequiredColumns)+len(optionalColumns))
	for _, c := range RequiredColumns {
		cols[c] = tbl.column(c)
	}
	for _, c := range optionalColumns {
		cols[c] = tbl.column(c)
	}

	var (
		records      []domain.TransactionRecord
		invalidDates int
		invalidNum   = map[string]int{}
		badProducts  int
		clamped      = map[string]int{}
	)

rows:
	for _, row := range tbl.rows {
		if allRequiredEmpty(tbl, row, cols) {
			continue
		}

		date, ok := parseDate(tbl.cell(row, cols["date"]))
		if !ok {
			invalidDates++
			continue
		}

		amounts := make(map[string]decimal.Decimal, len(numericColumns))
		for _, col := range numericColumns {
			v, ok := parseAmount(tbl.cell(row, cols[col]))
			if !ok {
				invalidNum[col]++
				continue rows
			}
			amounts[col] = v
		}

		product := tbl.cell(row, cols["product"])
		if product == "" || strings.EqualFold(product, "nan") {
			badProducts++
			continue
		}

		for _, col := range numericColumns {
			if amounts[col].IsNegative() {
				clamped[col]++
				amounts[col] = decimal.Zero
			}
		}

		rec := domain.TransactionRecord{
			Date:       date,
			Product:    product,
			Revenue:    amounts["revenue"],
			Cost:       amounts["cost"],
			Commission: amounts["commission"],
			Platform:   optionalValue(tbl, row, cols, "platform"),
			Status:     optionalValue(tbl, row, cols, "status"),
			Category:   optionalValue(tbl, row, cols, "category"),
			SubID:      optionalValue(tbl, row, cols, "sub_id1"),
			YearMonth:  date.Format("2006-01"),
			Raw:        snapshotRow(tbl, row),
		}
		rec.ComputeProfit()
		records = append(records, rec)
	}

	var warnings []string
	if invalidDates > 0 {
		warnings = append(warnings, fmt.Sprintf("%d row(s) with an invalid date were dropped", invalidDates))
	}
	for _, col := range numericColumns {
		if n := invalidNum[col]; n > 0 {
			warnings = append(warnings, fmt.Sprintf("%d row(s) with invalid values in '%s' were dropped", n, col))
		}
	}
	if badProducts > 0 {
		warnings = append(warnings, fmt.Sprintf("%d row(s) with an empty or invalid product were dropped", badProducts))
	}
	for _, col := range numericColumns {
		if n := clamped[col]; n > 0 {
			warnings = append(warnings, fmt.Sprintf("%d row(s) with negative values in '%s' were corrected to 0", n, col))
		}
	}

	dropped := invalidDates + badProducts
	for _, n := range invalidNum {
		dropped += n
	}

	return &Result{Records: records, Warnings: warnings, Dropped: dropped}
}

func allRequiredEmpty(tbl *table, row []string, cols map[string]int) bool {
	for _, c := range RequiredColumns {
		if tbl.cell(row, cols[c]) != "" {
			return false
		}
	}
	return true
}

func optionalValue(tbl *table, row []string, cols map[string]int, name string) string {
	v := tbl.cell(row, cols[name])
	if strings.EqualFold(v, "nan") {
		return ""
	}
	return v
}

// snapshotRow captures the original cells keyed by header, for audit storage.
func snapshotRow(tbl *table, row []string) map[string]string {
	snap := make(map[string]string, len(tbl.headers))
	for i, h := range tbl.headers {
		if h == "" {
			continue
		}
		snap[h] = tbl.cell(row, i)
	}
	return snap
}

// parseDate parses a cell against the accepted layouts and truncates the
// result to calendar-date granularity in UTC.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseAmount parses a currency cell. A decimal comma is normalized to a dot
// when the value carries no dot already.
func parseAmount(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}
