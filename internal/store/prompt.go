package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rcliao/lorebook/internal/model"
)

// Injection is one row of the prompt injection table.
type Injection struct {
	Key       string         `json:"key"`
	Value     string         `json:"value"`
	Position  model.Position `json:"position"`
	Depth     int            `json:"depth"`
	Role      model.Role     `json:"role"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// PromptSink persists injections so the next generation can read them.
// An empty value clears the key.
type PromptSink struct {
	s *SQLiteStore
}

// PromptSink returns the injection table backed by this store.
func (s *SQLiteStore) PromptSink() *PromptSink {
	return &PromptSink{s: s}
}

func (p *PromptSink) SetInjection(ctx context.Context, key, value string, pos model.Position, depth int, role model.Role) error {
	if value == "" {
		_, err := p.s.db.ExecContext(ctx, `DELETE FROM injections WHERE key = ?`, key)
		if err != nil {
			return fmt.Errorf("clear injection %s: %w", key, err)
		}
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := p.s.db.ExecContext(ctx,
		`INSERT INTO injections (key, value, position, depth, role, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, position = excluded.position,
		   depth = excluded.depth, role = excluded.role, updated_at = excluded.updated_at`,
		key, value, string(pos), depth, string(role), now)
	if err != nil {
		return fmt.Errorf("set injection %s: %w", key, err)
	}
	return nil
}

// Injections lists the current injections by key.
func (p *PromptSink) Injections(ctx context.Context) ([]Injection, error) {
	rows, err := p.s.db.QueryContext(ctx,
		`SELECT key, value, position, depth, role, updated_at FROM injections ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Injection{}
	for rows.Next() {
		var in Injection
		var pos, role, updated string
		if err := rows.Scan(&in.Key, &in.Value, &pos, &in.Depth, &role, &updated); err != nil {
			return nil, err
		}
		in.Position = model.Position(pos)
		in.Role = model.Role(role)
		in.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, in)
	}
	return out, rows.Err()
}
