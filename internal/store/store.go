// Package store provides lore entry persistence, the chat log, and the
// prompt injection table on top of SQLite.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/lorebook/internal/model"
)

// ErrNotFound is returned when an entry does not exist or was deleted.
var ErrNotFound = errors.New("not found")

// PutParams holds the editable fields of a lore entry.
type PutParams struct {
	Book            string
	Comment         string
	Content         string
	Key             []string
	KeySecondary    []string
	Constant        bool
	Disable         bool
	Probability     *int // nil means always
	CaseSensitive   bool
	MatchWholeWords bool
	ScanDepth       *int // nil means the configured default
	Position        model.Position
	Depth           *int // nil means model.DefaultDepth
	Role            model.Role
	Extensions      map[string]any
}

// ListParams holds parameters for listing entries.
type ListParams struct {
	Book            string
	IncludeDisabled bool
	Limit           int // 0 means no limit
}

// RmParams holds parameters for deleting an entry.
type RmParams struct {
	UID  string
	Hard bool
}

// Store defines the lore entry storage interface.
type Store interface {
	// Put creates an entry at the end of its book's order.
	Put(ctx context.Context, p PutParams) (*model.LoreEntry, error)

	// Update replaces the editable fields of an existing entry.
	Update(ctx context.Context, uid string, p PutParams) (*model.LoreEntry, error)

	// Get retrieves a live entry by uid.
	Get(ctx context.Context, uid string) (*model.LoreEntry, error)

	// List lists entries in book order.
	List(ctx context.Context, p ListParams) ([]model.LoreEntry, error)

	// Rm soft-deletes (or hard-deletes) an entry.
	Rm(ctx context.Context, p RmParams) error

	// Reorder moves the given entries to the front of the book, in order.
	Reorder(ctx context.Context, book string, uids []string) error

	// Close closes the store.
	Close() error
}
