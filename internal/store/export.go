package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/rcliao/lorebook/internal/model"
)

// WorldInfoFile is the import/export shape of a book: entries keyed by
// their position in the book.
type WorldInfoFile struct {
	Entries map[string]WorldInfoEntry `json:"entries"`
}

// WorldInfoEntry is one entry in a WorldInfoFile.
type WorldInfoEntry struct {
	UID             string         `json:"uid,omitempty"`
	Key             []string       `json:"key"`
	KeySecondary    []string       `json:"keysecondary"`
	Comment         string         `json:"comment"`
	Content         string         `json:"content"`
	Constant        bool           `json:"constant"`
	Disable         bool           `json:"disable"`
	Probability     *int           `json:"probability,omitempty"`
	Order           int            `json:"order"`
	Position        model.Position `json:"position,omitempty"`
	Depth           *int           `json:"depth,omitempty"`
	Role            model.Role     `json:"role,omitempty"`
	ScanDepth       *int           `json:"scanDepth,omitempty"`
	CaseSensitive   bool           `json:"caseSensitive"`
	MatchWholeWords bool           `json:"matchWholeWords"`
	Extensions      map[string]any `json:"extensions,omitempty"`
}

// ExportBook returns every live entry of a book, disabled ones included.
func (s *SQLiteStore) ExportBook(ctx context.Context, book string) (*WorldInfoFile, error) {
	entries, err := s.List(ctx, ListParams{Book: book, IncludeDisabled: true})
	if err != nil {
		return nil, err
	}

	f := &WorldInfoFile{Entries: make(map[string]WorldInfoEntry, len(entries))}
	for i, e := range entries {
		depth := e.Depth
		f.Entries[strconv.Itoa(i)] = WorldInfoEntry{
			UID:             e.UID,
			Key:             nonNil(e.Key),
			KeySecondary:    nonNil(e.KeySecondary),
			Comment:         e.Comment,
			Content:         e.Content,
			Constant:        e.Constant,
			Disable:         e.Disable,
			Probability:     e.Probability,
			Order:           e.Order,
			Position:        e.Position,
			Depth:           &depth,
			Role:            e.Role,
			ScanDepth:       e.ScanDepth,
			CaseSensitive:   e.CaseSensitive,
			MatchWholeWords: e.MatchWholeWords,
			Extensions:      e.Extensions,
		}
	}
	return f, nil
}

// ImportBook appends the file's entries to book, sorted by their order
// field. Source uids are not kept; every entry gets a fresh one.
func (s *SQLiteStore) ImportBook(ctx context.Context, book string, f *WorldInfoFile) (int, error) {
	if f == nil || len(f.Entries) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(f.Entries))
	for k := range f.Entries {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := f.Entries[keys[i]], f.Entries[keys[j]]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return lessKey(keys[i], keys[j])
	})

	imported := 0
	for _, k := range keys {
		w := f.Entries[k]
		_, err := s.Put(ctx, PutParams{
			Book:            book,
			Comment:         w.Comment,
			Content:         w.Content,
			Key:             w.Key,
			KeySecondary:    w.KeySecondary,
			Constant:        w.Constant,
			Disable:         w.Disable,
			Probability:     w.Probability,
			CaseSensitive:   w.CaseSensitive,
			MatchWholeWords: w.MatchWholeWords,
			ScanDepth:       w.ScanDepth,
			Position:        w.Position,
			Depth:           w.Depth,
			Role:            w.Role,
			Extensions:      w.Extensions,
		})
		if err != nil {
			return imported, fmt.Errorf("entry %s: %w", k, err)
		}
		imported++
	}
	return imported, nil
}

// lessKey orders numeric map keys numerically and everything else lexically.
func lessKey(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
