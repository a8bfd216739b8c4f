package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rcliao/lorebook/internal/model"
)

// ChatLog stores chat messages per chat id in the messages table.
type ChatLog struct {
	s *SQLiteStore
}

// ChatLog returns the chat log backed by this store.
func (s *SQLiteStore) ChatLog() *ChatLog {
	return &ChatLog{s: s}
}

// Append adds a message at the end of chat.
func (c *ChatLog) Append(ctx context.Context, chat string, m model.Message) error {
	if m.ID == "" {
		m.ID = c.s.newID()
	}
	if m.SendDate.IsZero() {
		m.SendDate = time.Now().UTC()
	}
	_, err := c.s.db.ExecContext(ctx,
		`INSERT INTO messages (id, chat, name, text, is_user, send_date) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, chat, m.Name, m.Text, m.IsUser, m.SendDate.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Recent returns the last n messages of chat, oldest first.
func (c *ChatLog) Recent(ctx context.Context, chat string, n int) ([]model.Message, error) {
	if n <= 0 {
		return []model.Message{}, nil
	}
	rows, err := c.s.db.QueryContext(ctx,
		`SELECT id, name, text, is_user, send_date FROM messages
		 WHERE chat = ? ORDER BY seq DESC LIMIT ?`, chat, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		var sent string
		if err := rows.Scan(&m.ID, &m.Name, &m.Text, &m.IsUser, &sent); err != nil {
			return nil, err
		}
		m.SendDate, _ = time.Parse(time.RFC3339Nano, sent)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Clear deletes every message of chat.
func (c *ChatLog) Clear(ctx context.Context, chat string) error {
	_, err := c.s.db.ExecContext(ctx, `DELETE FROM messages WHERE chat = ?`, chat)
	return err
}
