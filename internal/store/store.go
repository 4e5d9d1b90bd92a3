package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"adpulse/pkg/contracts/domain"
)

// ErrNotFound is returned when a dataset does not exist or belongs to a
// different user. Callers must not be able to distinguish the two cases.
var ErrNotFound = errors.New("dataset not found")

const dateLayout = "2006-01-02"

// Store persists datasets and their validated rows in SQLite. All reads and
// writes are scoped by user ID; a dataset is only ever visible to its owner.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates the database file if needed, runs migrations and returns a
// ready store.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateDataset inserts the dataset header and all of its rows in a single
// transaction, so a failed upload never leaves a partial batch behind.
func (s *Store) CreateDataset(ctx context.Context, ds domain.Dataset, rows []domain.TransactionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO datasets (id, user_id, filename, uploaded_at, row_count) VALUES (?, ?, ?, ?, ?)`,
		ds.ID, ds.UserID, ds.Filename, ds.UploadedAt.UTC(), len(rows))
	if err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO dataset_rows (dataset_id, date, product, revenue, cost, commission, profit,
		                           platform, status, category, sub_id1, year_month, raw_row)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare row insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		raw, err := encodeRaw(r.Raw)
		if err != nil {
			return fmt.Errorf("encode raw row: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			ds.ID, r.Date.Format(dateLayout), r.Product,
			r.Revenue.String(), r.Cost.String(), r.Commission.String(), r.Profit.String(),
			r.Platform, r.Status, r.Category, r.SubID, r.MonthKey(), raw)
		if err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit dataset: %w", err)
	}

	s.logger.InfoContext(ctx, "dataset stored",
		slog.String("dataset_id", ds.ID),
		slog.String("user_id", ds.UserID),
		slog.Int("rows", len(rows)))
	return nil
}

// ListDatasets returns the user's datasets, newest first.
func (s *Store) ListDatasets(ctx context.Context, userID string) ([]domain.Dataset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, filename, uploaded_at, row_count
		 FROM datasets WHERE user_id = ? ORDER BY uploaded_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	out := []domain.Dataset{}
	for rows.Next() {
		var ds domain.Dataset
		if err := rows.Scan(&ds.ID, &ds.UserID, &ds.Filename, &ds.UploadedAt, &ds.RowCount); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}

// GetDataset fetches one dataset owned by the user.
func (s *Store) GetDataset(ctx context.Context, userID, datasetID string) (domain.Dataset, error) {
	var ds domain.Dataset
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, filename, uploaded_at, row_count
		 FROM datasets WHERE id = ? AND user_id = ?`, datasetID, userID).
		Scan(&ds.ID, &ds.UserID, &ds.Filename, &ds.UploadedAt, &ds.RowCount)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Dataset{}, ErrNotFound
	}
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("get dataset: %w", err)
	}
	return ds, nil
}

// DeleteDataset removes a dataset and its rows. Rows are deleted explicitly
// rather than relying on the foreign key pragma being enabled.
func (s *Store) DeleteDataset(ctx context.Context, userID, datasetID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM datasets WHERE id = ? AND user_id = ?`, datasetID, userID)
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM dataset_rows WHERE dataset_id = ?`, datasetID); err != nil {
		return fmt.Errorf("delete dataset rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	s.logger.InfoContext(ctx, "dataset deleted",
		slog.String("dataset_id", datasetID),
		slog.String("user_id", userID))
	return nil
}

// ListRows returns the user's stored transaction rows. When datasetID is
// empty, rows from all of the user's datasets are returned; otherwise the
// dataset must exist and belong to the user.
func (s *Store) ListRows(ctx context.Context, userID, datasetID string) ([]domain.TransactionRecord, error) {
	query := `SELECT r.date, r.product, r.revenue, r.cost, r.commission, r.profit,
	                 r.platform, r.status, r.category, r.sub_id1, r.year_month, r.raw_row
	          FROM dataset_rows r
	          JOIN datasets d ON d.id = r.dataset_id
	          WHERE d.user_id = ?`
	args := []any{userID}
	if datasetID != "" {
		if _, err := s.GetDataset(ctx, userID, datasetID); err != nil {
			return nil, err
		}
		query += ` AND r.dataset_id = ?`
		args = append(args, datasetID)
	}
	query += ` ORDER BY r.date, r.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	defer rows.Close()

	out := []domain.TransactionRecord{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRecord(rows *sql.Rows) (domain.TransactionRecord, error) {
	var (
		r                                       domain.TransactionRecord
		date, revenue, cost, commission, profit string
		raw                                     string
	)
	err := rows.Scan(&date, &r.Product, &revenue, &cost, &commission, &profit,
		&r.Platform, &r.Status, &r.Category, &r.SubID, &r.YearMonth, &raw)
	if err != nil {
		return r, fmt.Errorf("scan row: %w", err)
	}

	if r.Date, err = time.ParseInLocation(dateLayout, date, time.UTC); err != nil {
		return r, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	if r.Revenue, err = decimal.NewFromString(revenue); err != nil {
		return r, fmt.Errorf("parse stored revenue %q: %w", revenue, err)
	}
	if r.Cost, err = decimal.NewFromString(cost); err != nil {
		return r, fmt.Errorf("parse stored cost %q: %w", cost, err)
	}
	if r.Commission, err = decimal.NewFromString(commission); err != nil {
		return r, fmt.Errorf("parse stored commission %q: %w", commission, err)
	}
	if r.Profit, err = decimal.NewFromString(profit); err != nil {
		return r, fmt.Errorf("parse stored profit %q: %w", profit, err)
	}
	if raw != "" && raw != "{}" {
		if err := json.Unmarshal([]byte(raw), &r.Raw); err != nil {
			return r, fmt.Errorf("decode raw row: %w", err)
		}
	}
	return r, nil
}

func encodeRaw(raw map[string]string) (string, error) {
	if len(raw) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
