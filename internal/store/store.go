package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/nhle/mailkit/internal/model"
)

// Store defines the persistence interface for the local send log.
type Store interface {
	RecordDispatch(ctx context.Context, d model.Dispatch) error
	ListDispatches(ctx context.Context, limit int) ([]model.Dispatch, error)
	Close() error
}

// DefaultDBPath returns the default location of the send-log database,
// ~/.config/mailkit/sendlog.db.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "sendlog.db")
	}
	return filepath.Join(home, ".config", "mailkit", "sendlog.db")
}
