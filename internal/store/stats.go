package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath          string      `json:"db_path"`
	DBSizeBytes     int64       `json:"db_size_bytes"`
	TotalEntries    int         `json:"total_entries"`
	ActiveEntries   int         `json:"active_entries"`
	ConstantEntries int         `json:"constant_entries"`
	Messages        int         `json:"messages"`
	Injections      int         `json:"injections"`
	Books           []BookStats `json:"books"`
}

// BookStats holds per-book counts.
type BookStats struct {
	Book     string `json:"book"`
	Entries  int    `json:"entries"`
	Disabled int    `json:"disabled"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&st.TotalEntries)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE deleted_at IS NULL AND disable = 0`).Scan(&st.ActiveEntries)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE deleted_at IS NULL AND constant = 1`).Scan(&st.ConstantEntries)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&st.Messages)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM injections`).Scan(&st.Injections)

	books, err := s.ListBooks(ctx)
	if err != nil {
		return st, err
	}
	st.Books = books
	return st, nil
}

// ListBooks returns every book with live entries and its counts.
func (s *SQLiteStore) ListBooks(ctx context.Context) ([]BookStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT book, COUNT(*) AS cnt, COALESCE(SUM(disable), 0) AS disabled
		FROM entries WHERE deleted_at IS NULL
		GROUP BY book ORDER BY book`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []BookStats{}
	for rows.Next() {
		var b BookStats
		if err := rows.Scan(&b.Book, &b.Entries, &b.Disabled); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}
