// Package chat provides chat history sources for activation scans.
package chat

import (
	"context"

	"github.com/rcliao/lorebook/internal/model"
	"github.com/rcliao/lorebook/internal/store"
)

// Source reads and appends chat messages.
type Source interface {
	// Append adds a message at the end of chat.
	Append(ctx context.Context, chat string, m model.Message) error

	// Recent returns the last n messages of chat, oldest first.
	Recent(ctx context.Context, chat string, n int) ([]model.Message, error)

	// Clear deletes every message of chat.
	Clear(ctx context.Context, chat string) error
}

var (
	_ Source = (*store.ChatLog)(nil)
	_ Source = (*RedisSource)(nil)
)
