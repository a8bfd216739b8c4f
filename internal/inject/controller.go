// Package inject owns the configured lore entries and pushes the active ones
// into a prompt sink before each generation.
package inject

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/rcliao/lorebook/internal/activation"
	"github.com/rcliao/lorebook/internal/model"
)

// Result is the outcome for one entry in a BeforeGeneration pass.
type Result struct {
	Key     string            `json:"key"`
	UID     string            `json:"uid"`
	Comment string            `json:"comment"`
	Active  bool              `json:"active"`
	Reason  activation.Reason `json:"reason"`
}

// Report summarizes a BeforeGeneration pass.
type Report struct {
	Results   []Result `json:"results"`
	Activated int      `json:"activated"`
}

// Controller holds the ordered entry collection. Only its own methods
// mutate the collection; everything handed out is a copy.
type Controller struct {
	entries []model.LoreEntry
	eval    *activation.Evaluator
	sink    Sink
	log     zerolog.Logger
	last    *Report
}

// NewController wires an evaluator to a sink.
func NewController(eval *activation.Evaluator, sink Sink, log zerolog.Logger) *Controller {
	return &Controller{eval: eval, sink: sink, log: log}
}

// Load replaces the collection, sorted by each entry's Order.
func (c *Controller) Load(entries []model.LoreEntry) {
	c.entries = make([]model.LoreEntry, len(entries))
	for i, e := range entries {
		c.entries[i] = e.Clone()
	}
	sort.SliceStable(c.entries, func(i, j int) bool {
		return c.entries[i].Order < c.entries[j].Order
	})
	c.renumber()
}

// Entries returns a copy of the collection in order.
func (c *Controller) Entries() []model.LoreEntry {
	out := make([]model.LoreEntry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Clone()
	}
	return out
}

// Add appends an entry. Its UID must be set and unused.
func (c *Controller) Add(e model.LoreEntry) error {
	if e.UID == "" {
		return fmt.Errorf("entry uid is required")
	}
	if c.index(e.UID) >= 0 {
		return fmt.Errorf("entry %s already loaded", e.UID)
	}
	c.entries = append(c.entries, e.Clone())
	c.renumber()
	return nil
}

// Update replaces the entry with the same UID, keeping its position.
func (c *Controller) Update(e model.LoreEntry) error {
	i := c.index(e.UID)
	if i < 0 {
		return fmt.Errorf("entry %s not loaded", e.UID)
	}
	c.entries[i] = e.Clone()
	c.renumber()
	return nil
}

// Remove drops an entry from the collection.
func (c *Controller) Remove(uid string) error {
	i := c.index(uid)
	if i < 0 {
		return fmt.Errorf("entry %s not loaded", uid)
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	c.renumber()
	return nil
}

// Move places an entry at index, clamped to the collection bounds.
func (c *Controller) Move(uid string, index int) error {
	i := c.index(uid)
	if i < 0 {
		return fmt.Errorf("entry %s not loaded", uid)
	}
	e := c.entries[i]
	rest := append(c.entries[:i:i], c.entries[i+1:]...)
	if index < 0 {
		index = 0
	}
	if index > len(rest) {
		index = len(rest)
	}
	moved := make([]model.LoreEntry, 0, len(c.entries))
	moved = append(moved, rest[:index]...)
	moved = append(moved, e)
	moved = append(moved, rest[index:]...)
	c.entries = moved
	c.renumber()
	return nil
}

// UIDs returns the entry uids in order.
func (c *Controller) UIDs() []string {
	uids := make([]string, len(c.entries))
	for i, e := range c.entries {
		uids[i] = e.UID
	}
	return uids
}

// MaxScanDepth is the deepest history window any entry will look at.
func (c *Controller) MaxScanDepth(defaultDepth int) int {
	deepest := 0
	for _, e := range c.entries {
		if d := e.ResolveWithScanDepth(defaultDepth).ScanDepth; d > deepest {
			deepest = d
		}
	}
	return deepest
}

// LastReport returns the report of the most recent BeforeGeneration pass,
// or nil before the first one.
func (c *Controller) LastReport() *Report {
	return c.last
}

// Attach registers BeforeGeneration on h.
func (c *Controller) Attach(h *Hook) {
	h.Register(func(ctx context.Context, history []model.Message) error {
		_, err := c.BeforeGeneration(ctx, history)
		return err
	})
}

// BeforeGeneration evaluates every entry against history. Active entries
// are written to the sink with their content and resolved placement,
// inactive ones with an empty value to clear a previous injection. Every
// entry is visited even when the sink fails; the first sink error is
// returned.
func (c *Controller) BeforeGeneration(ctx context.Context, history []model.Message) (*Report, error) {
	report := &Report{Results: make([]Result, 0, len(c.entries))}
	var firstErr error

	for _, e := range c.entries {
		d := c.eval.Explain(e, history)
		key := model.InjectionKey(e.UID)
		r := e.Resolve()

		value := ""
		if d.Active {
			value = e.Content
			report.Activated++
		}

		c.log.Debug().
			Str("uid", e.UID).
			Bool("active", d.Active).
			Str("reason", string(d.Reason)).
			Msg("evaluated entry")

		if err := c.sink.SetInjection(ctx, key, value, r.Position, r.Depth, r.Role); err != nil {
			c.log.Error().Err(err).Str("key", key).Msg("sink write failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("inject %s: %w", key, err)
			}
		}

		report.Results = append(report.Results, Result{
			Key:     key,
			UID:     e.UID,
			Comment: e.Comment,
			Active:  d.Active,
			Reason:  d.Reason,
		})
	}
	c.last = report
	return report, firstErr
}

func (c *Controller) index(uid string) int {
	for i, e := range c.entries {
		if e.UID == uid {
			return i
		}
	}
	return -1
}

func (c *Controller) renumber() {
	for i := range c.entries {
		c.entries[i].Order = i
	}
}
