// Package sessions persists conversation histories between runs.
package sessions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/devbv/not-agent/pkg/models"
)

// ErrNotFound is returned when no session exists for the requested id.
var ErrNotFound = errors.New("session not found")

// Entry summarizes a stored session for listings.
type Entry struct {
	ID           string
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store is the interface for session persistence.
type Store interface {
	Save(ctx context.Context, session *models.Session) error
	Load(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context, limit int) ([]Entry, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// DefaultPath returns the database path under the user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".not-agent", "sessions.db")
	}
	return filepath.Join(home, ".not-agent", "sessions.db")
}
