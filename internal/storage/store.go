// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tipsplit/internal/models"
)

// ErrNotFound is returned when a split does not exist.
var ErrNotFound = errors.New("split not found")

// Store defines the interface for saved-split storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateSplit persists a new split.
	// The split.ID, Label and CreatedAt fields are populated by the store when empty.
	CreateSplit(ctx context.Context, split *models.SavedSplit) error

	// GetSplit retrieves a split by its ID.
	// Returns an error matching ErrNotFound if the split does not exist.
	GetSplit(ctx context.Context, splitID string) (*models.SavedSplit, error)

	// ListSplits returns the most recent splits first, at most limit of them.
	// A limit <= 0 returns every split.
	ListSplits(ctx context.Context, limit int) ([]*models.SavedSplit, error)

	// DeleteSplit removes a split.
	// Returns an error matching ErrNotFound if the split does not exist.
	DeleteSplit(ctx context.Context, splitID string) error

	// Close releases any resources held by the store.
	Close() error
}
