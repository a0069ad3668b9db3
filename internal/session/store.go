// Package session keeps the state of open forms between requests. Entries
// expire after a TTL so no form outlives its session.
package session

import (
	"context"
	"errors"

	"github.com/mmynk/tipsplit/internal/form"
	"github.com/mmynk/tipsplit/internal/models"
)

// ErrNotFound is returned for an unknown or expired session.
var ErrNotFound = errors.New("session not found")

// Record is what a Store keeps per session.
type Record struct {
	models.Session
	State form.State `json:"state"`
}

// Store persists session records for a limited time. Every Put refreshes
// the record's expiry.
type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	Put(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id string) error
	Close() error
}
