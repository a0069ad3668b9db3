// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/tipsplit/internal/calculator"
	"github.com/mmynk/tipsplit/internal/models"
	"github.com/mmynk/tipsplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSplit persists a new split to the database.
func (s *SQLiteStore) CreateSplit(ctx context.Context, split *models.SavedSplit) error {
	// Generate fields if not set
	if split.ID == "" {
		split.ID = uuid.New().String()
	}
	if split.CreatedAt == 0 {
		split.CreatedAt = time.Now().Unix()
	}
	split.People = calculator.EffectivePeople(split.People)
	if split.Label == "" {
		split.Label = generateLabel(split)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO splits (id, label, bill, tip_percent, people, tip_per_person, total_per_person, rules, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		split.ID, split.Label, split.Bill, split.TipPercent, split.People,
		split.TipPerPerson, split.TotalPerPerson, split.Rules, split.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert split: %w", err)
	}
	return nil
}

const splitColumns = "id, label, bill, tip_percent, people, tip_per_person, total_per_person, rules, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanSplit(row scanner) (*models.SavedSplit, error) {
	split := &models.SavedSplit{}
	err := row.Scan(
		&split.ID, &split.Label, &split.Bill, &split.TipPercent, &split.People,
		&split.TipPerPerson, &split.TotalPerPerson, &split.Rules, &split.CreatedAt,
	)
	return split, err
}

// GetSplit retrieves a split by ID.
func (s *SQLiteStore) GetSplit(ctx context.Context, splitID string) (*models.SavedSplit, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+splitColumns+" FROM splits WHERE id = ?",
		splitID,
	)
	split, err := scanSplit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, splitID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	return split, nil
}

// ListSplits returns saved splits, newest first.
func (s *SQLiteStore) ListSplits(ctx context.Context, limit int) ([]*models.SavedSplit, error) {
	query := "SELECT " + splitColumns + " FROM splits ORDER BY created_at DESC, rowid DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var splits []*models.SavedSplit
	for rows.Next() {
		split, err := scanSplit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}

// DeleteSplit removes a split by ID.
func (s *SQLiteStore) DeleteSplit(ctx context.Context, splitID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM splits WHERE id = ?", splitID)
	if err != nil {
		return fmt.Errorf("failed to delete split: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, splitID)
	}
	return nil
}

// generateLabel creates an auto-generated label from the split amounts.
func generateLabel(split *models.SavedSplit) string {
	label := fmt.Sprintf("%s + %s tip", calculator.FormatCurrency(split.Bill), calculator.FormatPercent(split.TipPercent))
	if split.People > 1 {
		label += fmt.Sprintf(" split %d ways", split.People)
	}
	return label
}
