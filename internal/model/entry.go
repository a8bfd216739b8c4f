// Package model defines the core lore entry and chat data types.
package model

import (
	"strconv"
	"strings"
	"time"
)

// Position is where an injected entry lands in the prompt.
type Position string

const (
	PositionBeforeChar Position = "before_char"
	PositionAfterChar  Position = "after_char"
	PositionAtDepth    Position = "at_depth"
)

// Role is the chat role an at-depth injection is attributed to.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Defaults applied when an entry leaves a field unset.
const (
	DefaultProbability = 100
	DefaultScanDepth   = 10
	DefaultDepth       = 4
	DefaultRole        = RoleSystem
	DefaultPosition    = PositionAtDepth
)

// ValidPositions are the allowed injection positions.
var ValidPositions = map[Position]bool{
	PositionBeforeChar: true,
	PositionAfterChar:  true,
	PositionAtDepth:    true,
}

// ValidRoles are the allowed injection roles.
var ValidRoles = map[Role]bool{
	RoleSystem:    true,
	RoleUser:      true,
	RoleAssistant: true,
}

// LoreEntry is a block of background text with trigger conditions.
type LoreEntry struct {
	UID             string         `json:"uid"`
	Book            string         `json:"book"`
	Comment         string         `json:"comment"`
	Content         string         `json:"content"`
	Key             []string       `json:"key"`
	KeySecondary    []string       `json:"keysecondary"`
	Constant        bool           `json:"constant"`
	Disable         bool           `json:"disable"`
	Probability     *int           `json:"probability,omitempty"`
	CaseSensitive   bool           `json:"case_sensitive"`
	MatchWholeWords bool           `json:"match_whole_words"`
	ScanDepth       *int           `json:"scan_depth,omitempty"`
	Position        Position       `json:"position,omitempty"`
	Depth           int            `json:"depth"` // 0 is the bottom of the chat; negative means default
	Role            Role           `json:"role,omitempty"`
	Order           int            `json:"order"`
	Extensions      map[string]any `json:"extensions,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       *time.Time     `json:"deleted_at,omitempty"`
}

// Clone returns a deep copy so callers can hand out entries without
// sharing slices or the extensions map.
func (e LoreEntry) Clone() LoreEntry {
	c := e
	c.Key = append([]string(nil), e.Key...)
	c.KeySecondary = append([]string(nil), e.KeySecondary...)
	if e.Probability != nil {
		p := *e.Probability
		c.Probability = &p
	}
	if e.ScanDepth != nil {
		d := *e.ScanDepth
		c.ScanDepth = &d
	}
	if e.Extensions != nil {
		c.Extensions = make(map[string]any, len(e.Extensions))
		for k, v := range e.Extensions {
			c.Extensions[k] = v
		}
	}
	if e.DeletedAt != nil {
		t := *e.DeletedAt
		c.DeletedAt = &t
	}
	return c
}

// Resolved holds the effective activation and injection settings of an entry.
type Resolved struct {
	Probability     int
	ScanDepth       int
	CaseSensitive   bool
	MatchWholeWords bool
	Position        Position
	Depth           int
	Role            Role
}

// Resolve applies extension overrides on top of the entry's own fields and
// fills defaults for anything left unset. Malformed overrides are ignored.
func (e LoreEntry) Resolve() Resolved {
	return e.ResolveWithScanDepth(DefaultScanDepth)
}

// ResolveWithScanDepth is Resolve with a caller-chosen fallback scan depth.
func (e LoreEntry) ResolveWithScanDepth(scanDepth int) Resolved {
	if scanDepth < 0 {
		scanDepth = DefaultScanDepth
	}
	r := Resolved{
		Probability:     DefaultProbability,
		ScanDepth:       scanDepth,
		CaseSensitive:   e.CaseSensitive,
		MatchWholeWords: e.MatchWholeWords,
		Position:        DefaultPosition,
		Depth:           e.Depth,
		Role:            DefaultRole,
	}
	if e.Probability != nil {
		r.Probability = *e.Probability
	}
	if e.ScanDepth != nil && *e.ScanDepth >= 0 {
		r.ScanDepth = *e.ScanDepth
	}
	if ValidPositions[e.Position] {
		r.Position = e.Position
	}
	if ValidRoles[e.Role] {
		r.Role = e.Role
	}
	if r.Depth < 0 {
		r.Depth = DefaultDepth
	}

	ext := e.Extensions
	if n, ok := intValue(ext["probability"]); ok {
		r.Probability = n
	}
	if n, ok := intValue(ext["scan_depth"]); ok && n >= 0 {
		r.ScanDepth = n
	}
	if n, ok := intValue(ext["depth"]); ok && n >= 0 {
		r.Depth = n
	}
	if b, ok := boolValue(ext["case_sensitive"]); ok {
		r.CaseSensitive = b
	}
	if b, ok := boolValue(ext["match_whole_words"]); ok {
		r.MatchWholeWords = b
	}
	if s, ok := ext["role"].(string); ok && ValidRoles[Role(s)] {
		r.Role = Role(s)
	}
	if s, ok := ext["position"].(string); ok && ValidPositions[Position(s)] {
		r.Position = Position(s)
	}
	return r
}

// InjectionKey is the stable sink key for an entry.
func InjectionKey(uid string) string {
	return "worldinfo_" + uid
}

// intValue accepts the numeric shapes that come out of JSON, YAML and
// hand-built maps.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

func boolValue(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		p, err := strconv.ParseBool(strings.TrimSpace(b))
		return p, err == nil
	}
	return false, false
}
