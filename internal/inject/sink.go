package inject

import (
	"context"
	"sort"

	"github.com/rcliao/lorebook/internal/model"
	"github.com/rcliao/lorebook/internal/store"
)

// Sink receives keyed prompt injections. An empty value clears the key.
type Sink interface {
	SetInjection(ctx context.Context, key, value string, pos model.Position, depth int, role model.Role) error
}

var (
	_ Sink = (*MemorySink)(nil)
	_ Sink = (*store.PromptSink)(nil)
)

// Injection is one live entry of a MemorySink.
type Injection struct {
	Key      string         `json:"key"`
	Value    string         `json:"value"`
	Position model.Position `json:"position"`
	Depth    int            `json:"depth"`
	Role     model.Role     `json:"role"`
}

// MemorySink keeps injections in process.
type MemorySink struct {
	table  map[string]Injection
	writes int
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{table: make(map[string]Injection)}
}

func (m *MemorySink) SetInjection(_ context.Context, key, value string, pos model.Position, depth int, role model.Role) error {
	m.writes++
	if value == "" {
		delete(m.table, key)
		return nil
	}
	m.table[key] = Injection{Key: key, Value: value, Position: pos, Depth: depth, Role: role}
	return nil
}

// Get returns the injection stored under key.
func (m *MemorySink) Get(key string) (Injection, bool) {
	in, ok := m.table[key]
	return in, ok
}

// Writes counts every SetInjection call, clears included.
func (m *MemorySink) Writes() int {
	return m.writes
}

// Snapshot returns the live injections sorted by key.
func (m *MemorySink) Snapshot() []Injection {
	out := make([]Injection, 0, len(m.table))
	for _, in := range m.table {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
