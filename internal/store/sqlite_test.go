package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rcliao/lorebook/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func intPtr(n int) *int { return &n }

func TestPutAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e, err := s.Put(ctx, PutParams{
		Book:         "eldoria",
		Comment:      "The capital",
		Content:      "Eldoria's capital is Vey.",
		Key:          []string{"Vey", "capital"},
		KeySecondary: []string{"city"},
		Probability:  intPtr(70),
		ScanDepth:    intPtr(3),
		Extensions:   map[string]any{"role": "user"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if e.UID == "" {
		t.Error("expected non-empty UID")
	}
	if e.Order != 0 {
		t.Errorf("expected order 0, got %d", e.Order)
	}
	if e.Depth != model.DefaultDepth || e.Role != model.RoleSystem || e.Position != model.PositionAtDepth {
		t.Errorf("defaults not applied: depth=%d role=%s position=%s", e.Depth, e.Role, e.Position)
	}

	got, err := s.Get(ctx, e.UID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content != "Eldoria's capital is Vey." {
		t.Errorf("unexpected content %q", got.Content)
	}
	if len(got.Key) != 2 || got.Key[0] != "Vey" || len(got.KeySecondary) != 1 {
		t.Errorf("keys not persisted: %v / %v", got.Key, got.KeySecondary)
	}
	if got.Probability == nil || *got.Probability != 70 {
		t.Errorf("expected probability 70, got %v", got.Probability)
	}
	if got.ScanDepth == nil || *got.ScanDepth != 3 {
		t.Errorf("expected scan depth 3, got %v", got.ScanDepth)
	}
	if got.Extensions["role"] != "user" {
		t.Errorf("extensions not persisted: %v", got.Extensions)
	}
}

func TestPutLeavesOptionalFieldsNil(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e, err := s.Put(ctx, PutParams{Book: "b", Content: "x", Key: []string{"k"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if e.Probability != nil || e.ScanDepth != nil {
		t.Errorf("expected nil probability and scan depth, got %v %v", e.Probability, e.ScanDepth)
	}
	if r := e.Resolve(); r.Probability != 100 || r.ScanDepth != 10 {
		t.Errorf("expected resolved defaults 100/10, got %d/%d", r.Probability, r.ScanDepth)
	}
}

func TestPutValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cases := []PutParams{
		{Content: "no book"},
		{Book: "b", Role: "narrator"},
		{Book: "b", Position: "top"},
		{Book: "b", Depth: intPtr(-1)},
		{Book: "b", ScanDepth: intPtr(-2)},
	}
	for i, p := range cases {
		if _, err := s.Put(ctx, p); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestOrderAppends(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Put(ctx, PutParams{Book: "b", Comment: "a"})
	b, _ := s.Put(ctx, PutParams{Book: "b", Comment: "b"})
	other, _ := s.Put(ctx, PutParams{Book: "other", Comment: "c"})

	if a.Order != 0 || b.Order != 1 {
		t.Errorf("expected orders 0,1 got %d,%d", a.Order, b.Order)
	}
	if other.Order != 0 {
		t.Errorf("orders are per book, got %d", other.Order)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e, _ := s.Put(ctx, PutParams{Book: "b", Comment: "old", Key: []string{"x"}, Probability: intPtr(10)})
	got, err := s.Update(ctx, e.UID, PutParams{Comment: "new", Key: []string{"y"}, Constant: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Comment != "new" || !got.Constant || got.Key[0] != "y" {
		t.Errorf("update not applied: %+v", got)
	}
	if got.Probability != nil {
		t.Errorf("expected probability cleared, got %v", *got.Probability)
	}
	if got.Book != "b" || got.Order != e.Order {
		t.Errorf("book/order must survive update, got %s/%d", got.Book, got.Order)
	}

	if _, err := s.Update(ctx, e.UID, PutParams{Book: "elsewhere"}); err == nil {
		t.Error("expected error moving entry across books")
	}
	if _, err := s.Update(ctx, "missing", PutParams{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{Book: "b", Comment: "a"})
	s.Put(ctx, PutParams{Book: "b", Comment: "off", Disable: true})
	s.Put(ctx, PutParams{Book: "other", Comment: "c"})

	all, _ := s.List(ctx, ListParams{IncludeDisabled: true})
	if len(all) != 3 {
		t.Errorf("expected 3, got %d", len(all))
	}

	enabled, _ := s.List(ctx, ListParams{Book: "b"})
	if len(enabled) != 1 || enabled[0].Comment != "a" {
		t.Errorf("expected only the enabled entry of b, got %d", len(enabled))
	}

	limited, _ := s.List(ctx, ListParams{IncludeDisabled: true, Limit: 2})
	if len(limited) != 2 {
		t.Errorf("expected 2 with limit, got %d", len(limited))
	}
}

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e, _ := s.Put(ctx, PutParams{Book: "b", Content: "data"})
	if err := s.Rm(ctx, RmParams{UID: e.UID}); err != nil {
		t.Fatalf("rm: %v", err)
	}

	if _, err := s.Get(ctx, e.UID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after soft delete, got %v", err)
	}
	if err := s.Rm(ctx, RmParams{UID: e.UID}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}

	st, _ := s.Stats(ctx, "")
	if st.TotalEntries != 1 || st.ActiveEntries != 0 {
		t.Errorf("soft delete should keep the row: total=%d active=%d", st.TotalEntries, st.ActiveEntries)
	}
}

func TestHardDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e, _ := s.Put(ctx, PutParams{Book: "b", Content: "data"})
	if err := s.Rm(ctx, RmParams{UID: e.UID, Hard: true}); err != nil {
		t.Fatalf("rm hard: %v", err)
	}

	st, _ := s.Stats(ctx, "")
	if st.TotalEntries != 0 {
		t.Errorf("expected row removed, got %d", st.TotalEntries)
	}
}

func TestReorder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Put(ctx, PutParams{Book: "b", Comment: "a"})
	b, _ := s.Put(ctx, PutParams{Book: "b", Comment: "b"})
	c, _ := s.Put(ctx, PutParams{Book: "b", Comment: "c"})

	if err := s.Reorder(ctx, "b", []string{c.UID, a.UID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	list, _ := s.List(ctx, ListParams{Book: "b"})
	got := []string{list[0].Comment, list[1].Comment, list[2].Comment}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
	_ = b

	if err := s.Reorder(ctx, "b", []string{"nope"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown uid, got %v", err)
	}
	if err := s.Reorder(ctx, "b", []string{a.UID, a.UID}); err == nil {
		t.Error("expected error for duplicate uid")
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}

func TestListBooks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{Book: "alpha", Comment: "1"})
	s.Put(ctx, PutParams{Book: "alpha", Comment: "2", Disable: true})
	s.Put(ctx, PutParams{Book: "beta", Comment: "3"})

	books, err := s.ListBooks(ctx)
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
	if books[0].Book != "alpha" || books[0].Entries != 2 || books[0].Disabled != 1 {
		t.Errorf("unexpected alpha stats: %+v", books[0])
	}
}
