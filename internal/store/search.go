package store

import (
	"context"
	"strings"

	"github.com/rcliao/lorebook/internal/model"
)

// SearchParams holds parameters for searching entries.
type SearchParams struct {
	Book  string
	Query string
	Limit int
}

// Search finds live entries whose comment, content or keywords contain the
// query substring.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.LoreEntry, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := "%" + p.Query + "%"

	where := []string{"deleted_at IS NULL"}
	var args []interface{}

	if p.Book != "" {
		where = append(where, "book = ?")
		args = append(args, p.Book)
	}
	where = append(where, `(comment LIKE ? OR content LIKE ? OR keys LIKE ? OR keys_secondary LIKE ?)`)
	args = append(args, query, query, query, query, limit)

	sql := `SELECT ` + entryColumns + ` FROM entries WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY book, ord LIMIT ?`

	return s.queryEntries(ctx, sql, args...)
}
