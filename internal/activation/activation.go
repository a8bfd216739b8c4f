// Package activation decides whether a lore entry is injected into the next
// generation, given the entry and the recent chat history.
package activation

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/rcliao/lorebook/internal/model"
)

// Reason names the step that settled an activation decision.
type Reason string

const (
	ReasonConstant    Reason = "constant"
	ReasonDisabled    Reason = "disabled"
	ReasonProbability Reason = "probability"
	ReasonNoKeywords  Reason = "no_keywords"
	ReasonPrimary     Reason = "primary"
	ReasonSecondary   Reason = "secondary"
	ReasonNoMatch     Reason = "no_match"
)

// Decision is the outcome of one evaluation. Roll is set only when the
// probability gate drew a number.
type Decision struct {
	Active bool     `json:"active"`
	Reason Reason   `json:"reason"`
	Roll   *float64 `json:"roll,omitempty"`
}

// Evaluator runs the activation policy. It keeps no state between calls
// apart from its random source, so it is not safe for concurrent use.
type Evaluator struct {
	rng              *rand.Rand
	log              zerolog.Logger
	defaultScanDepth int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithRand sets the random source used by the probability gate.
func WithRand(r *rand.Rand) Option {
	return func(e *Evaluator) { e.rng = r }
}

// WithLogger sets where warnings go.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Evaluator) { e.log = l }
}

// WithDefaultScanDepth sets the scan depth for entries that do not carry one.
func WithDefaultScanDepth(n int) Option {
	return func(e *Evaluator) {
		if n >= 0 {
			e.defaultScanDepth = n
		}
	}
}

// New creates an Evaluator. Without options it draws from a time-seeded
// source and logs nothing.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
		log:              zerolog.Nop(),
		defaultScanDepth: model.DefaultScanDepth,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Activate reports whether entry should be injected this turn.
func (e *Evaluator) Activate(entry model.LoreEntry, history []model.Message) bool {
	return e.Explain(entry, history).Active
}

// Explain evaluates entry against history and reports which step decided.
// The steps short-circuit in order: constant, disable, probability gate,
// empty keyword lists, keyword scan. The probability gate draws a fresh
// number on every call.
func (e *Evaluator) Explain(entry model.LoreEntry, history []model.Message) Decision {
	if entry.Constant {
		return Decision{Active: true, Reason: ReasonConstant}
	}
	if entry.Disable {
		return Decision{Reason: ReasonDisabled}
	}

	r := entry.ResolveWithScanDepth(e.defaultScanDepth)

	var d Decision
	if r.Probability < 100 {
		roll := e.rng.Float64() * 100
		d.Roll = &roll
		if roll > float64(r.Probability) {
			d.Reason = ReasonProbability
			return d
		}
	}

	primary := cleanKeywords(entry.Key)
	secondary := cleanKeywords(entry.KeySecondary)
	if len(primary) == 0 && len(secondary) == 0 {
		e.log.Warn().
			Str("uid", entry.UID).
			Str("comment", entry.Comment).
			Msg("keyword-mode entry has no keywords")
		d.Reason = ReasonNoKeywords
		return d
	}

	corpus := Corpus(Window(history, r.ScanDepth))
	switch {
	case Match(corpus, primary, r.CaseSensitive, r.MatchWholeWords):
		d.Active, d.Reason = true, ReasonPrimary
	case len(secondary) > 0 && Match(corpus, secondary, r.CaseSensitive, r.MatchWholeWords):
		d.Active, d.Reason = true, ReasonSecondary
	default:
		d.Reason = ReasonNoMatch
	}
	return d
}
