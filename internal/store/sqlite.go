package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/lorebook/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id                TEXT PRIMARY KEY,
		book              TEXT NOT NULL,
		comment           TEXT NOT NULL DEFAULT '',
		content           TEXT NOT NULL DEFAULT '',
		keys              TEXT,
		keys_secondary    TEXT,
		constant          INTEGER NOT NULL DEFAULT 0,
		disable           INTEGER NOT NULL DEFAULT 0,
		probability       INTEGER,
		case_sensitive    INTEGER NOT NULL DEFAULT 0,
		match_whole_words INTEGER NOT NULL DEFAULT 0,
		scan_depth        INTEGER,
		position          TEXT NOT NULL DEFAULT 'at_depth',
		depth             INTEGER NOT NULL DEFAULT 4,
		role              TEXT NOT NULL DEFAULT 'system',
		ord               INTEGER NOT NULL DEFAULT 0,
		extensions        TEXT,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL,
		deleted_at        TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_entries_book_ord ON entries(book, ord);
	CREATE INDEX IF NOT EXISTS idx_entries_deleted ON entries(deleted_at);

	CREATE TABLE IF NOT EXISTS messages (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL UNIQUE,
		chat       TEXT NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		text       TEXT NOT NULL,
		is_user    INTEGER NOT NULL DEFAULT 0,
		send_date  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat, seq);

	CREATE TABLE IF NOT EXISTS injections (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		position   TEXT NOT NULL,
		depth      INTEGER NOT NULL,
		role       TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

const entryColumns = `id, book, comment, content, keys, keys_secondary, constant, disable,
	probability, case_sensitive, match_whole_words, scan_depth, position, depth, role,
	ord, extensions, created_at, updated_at, deleted_at`

// columns holds the normalized values shared by insert and update.
type columns struct {
	keys, keysSecondary *string
	extensions          *string
	position            model.Position
	depth               int
	role                model.Role
}

func normalize(p PutParams) (columns, error) {
	var r columns
	if len(p.Key) > 0 {
		b, _ := json.Marshal(p.Key)
		k := string(b)
		r.keys = &k
	}
	if len(p.KeySecondary) > 0 {
		b, _ := json.Marshal(p.KeySecondary)
		k := string(b)
		r.keysSecondary = &k
	}
	if len(p.Extensions) > 0 {
		b, err := json.Marshal(p.Extensions)
		if err != nil {
			return r, fmt.Errorf("encode extensions: %w", err)
		}
		e := string(b)
		r.extensions = &e
	}

	r.position = p.Position
	if r.position == "" {
		r.position = model.DefaultPosition
	}
	if !model.ValidPositions[r.position] {
		return r, fmt.Errorf("invalid position %q (valid: before_char, after_char, at_depth)", r.position)
	}
	r.role = p.Role
	if r.role == "" {
		r.role = model.DefaultRole
	}
	if !model.ValidRoles[r.role] {
		return r, fmt.Errorf("invalid role %q (valid: system, user, assistant)", r.role)
	}
	r.depth = model.DefaultDepth
	if p.Depth != nil {
		if *p.Depth < 0 {
			return r, fmt.Errorf("invalid depth %d", *p.Depth)
		}
		r.depth = *p.Depth
	}
	if p.ScanDepth != nil && *p.ScanDepth < 0 {
		return r, fmt.Errorf("invalid scan depth %d", *p.ScanDepth)
	}
	return r, nil
}

func (s *SQLiteStore) Put(ctx context.Context, p PutParams) (*model.LoreEntry, error) {
	if strings.TrimSpace(p.Book) == "" {
		return nil, fmt.Errorf("book is required")
	}
	r, err := normalize(p)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	id := s.newID()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var ord int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(ord) + 1, 0) FROM entries WHERE book = ? AND deleted_at IS NULL`,
		p.Book).Scan(&ord)
	if err != nil {
		return nil, fmt.Errorf("next order: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (`+entryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		id, p.Book, p.Comment, p.Content, r.keys, r.keysSecondary, p.Constant, p.Disable,
		p.Probability, p.CaseSensitive, p.MatchWholeWords, p.ScanDepth,
		string(r.position), r.depth, string(r.role), ord, r.extensions,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *SQLiteStore) Update(ctx context.Context, uid string, p PutParams) (*model.LoreEntry, error) {
	current, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if p.Book != "" && p.Book != current.Book {
		return nil, fmt.Errorf("entry %s belongs to book %q, cannot move to %q", uid, current.Book, p.Book)
	}
	r, err := normalize(p)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		`UPDATE entries SET comment = ?, content = ?, keys = ?, keys_secondary = ?,
		        constant = ?, disable = ?, probability = ?, case_sensitive = ?,
		        match_whole_words = ?, scan_depth = ?, position = ?, depth = ?, role = ?,
		        extensions = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		p.Comment, p.Content, r.keys, r.keysSecondary, p.Constant, p.Disable,
		p.Probability, p.CaseSensitive, p.MatchWholeWords, p.ScanDepth,
		string(r.position), r.depth, string(r.role), r.extensions, now, uid)
	if err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}
	return s.Get(ctx, uid)
}

func (s *SQLiteStore) Get(ctx context.Context, uid string) (*model.LoreEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = ? AND deleted_at IS NULL`, uid)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("entry %s: %w", uid, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.LoreEntry, error) {
	where := []string{"deleted_at IS NULL"}
	var args []interface{}

	if p.Book != "" {
		where = append(where, "book = ?")
		args = append(args, p.Book)
	}
	if !p.IncludeDisabled {
		where = append(where, "disable = 0")
	}

	query := `SELECT ` + entryColumns + ` FROM entries WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY book, ord, created_at`
	if p.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, p.Limit)
	}

	return s.queryEntries(ctx, query, args...)
}

// Rm deletes an entry and clears its prompt injection.
func (s *SQLiteStore) Rm(ctx context.Context, p RmParams) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var res sql.Result
	if p.Hard {
		res, err = tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, p.UID)
	} else {
		now := time.Now().UTC().Format(time.RFC3339Nano)
		res, err = tx.ExecContext(ctx,
			`UPDATE entries SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, now, p.UID)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("entry %s: %w", p.UID, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM injections WHERE key = ?`, model.InjectionKey(p.UID)); err != nil {
		return fmt.Errorf("clear injection: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Reorder(ctx context.Context, book string, uids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM entries WHERE book = ? AND deleted_at IS NULL ORDER BY ord, created_at`, book)
	if err != nil {
		return err
	}
	var existing []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		existing = append(existing, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	inBook := make(map[string]bool, len(existing))
	for _, id := range existing {
		inBook[id] = true
	}
	placed := make(map[string]bool, len(uids))
	order := make([]string, 0, len(existing))
	for _, id := range uids {
		if !inBook[id] {
			return fmt.Errorf("entry %s in book %q: %w", id, book, ErrNotFound)
		}
		if placed[id] {
			return fmt.Errorf("entry %s listed twice", id)
		}
		placed[id] = true
		order = append(order, id)
	}
	for _, id := range existing {
		if !placed[id] {
			order = append(order, id)
		}
	}

	for i, id := range order {
		if _, err := tx.ExecContext(ctx, `UPDATE entries SET ord = ? WHERE id = ?`, i, id); err != nil {
			return fmt.Errorf("set order: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryEntries(ctx context.Context, query string, args ...interface{}) ([]model.LoreEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.LoreEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (model.LoreEntry, error) {
	var e model.LoreEntry
	var keys, keysSecondary, extensions, deletedAt sql.NullString
	var probability, scanDepth sql.NullInt64
	var position, role, createdAt, updatedAt string

	err := row.Scan(
		&e.UID, &e.Book, &e.Comment, &e.Content, &keys, &keysSecondary,
		&e.Constant, &e.Disable, &probability, &e.CaseSensitive, &e.MatchWholeWords,
		&scanDepth, &position, &e.Depth, &role, &e.Order, &extensions,
		&createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return e, err
	}

	e.Position = model.Position(position)
	e.Role = model.Role(role)
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	if keys.Valid {
		json.Unmarshal([]byte(keys.String), &e.Key)
	}
	if keysSecondary.Valid {
		json.Unmarshal([]byte(keysSecondary.String), &e.KeySecondary)
	}
	if extensions.Valid {
		json.Unmarshal([]byte(extensions.String), &e.Extensions)
	}
	if probability.Valid {
		p := int(probability.Int64)
		e.Probability = &p
	}
	if scanDepth.Valid {
		d := int(scanDepth.Int64)
		e.ScanDepth = &d
	}
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, deletedAt.String)
		e.DeletedAt = &t
	}

	return e, nil
}
