// Package scoring parses raw score cells and derives the final grade of a
// roster record from its score slots.
package scoring

import (
	"context"
	"fmt"

	"github.com/okian/gradematch/internal/domain/model"
	"github.com/okian/gradematch/pkg/logger"
	"github.com/okian/gradematch/pkg/metrics"
)

// Default derivation constants.
const (
	DefaultPassThreshold = 80
	DefaultFallbackScore = 78
)

// Rule names which branch of the derivation produced a final score.
type Rule string

// Derivation rules.
const (
	RuleSlot1    Rule = "slot1"    // slot 1 passed; its own value is kept
	RuleFallback Rule = "fallback" // a later slot passed; the fixed fallback is granted
	RuleEmpty    Rule = "empty"    // nothing passed; no final score
)

// Option applies a configuration option to the Deriver.
type Option func(*Deriver)

// WithPassThreshold sets the minimum slot value that counts as passing.
func WithPassThreshold(threshold float64) Option {
	return func(d *Deriver) {
		d.passThreshold = threshold
	}
}

// WithFallbackScore sets the final score granted when only slots 2-6 pass.
func WithFallbackScore(score float64) Option {
	return func(d *Deriver) {
		d.fallbackScore = score
	}
}

// WithLogger sets the structured logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Deriver) {
		if l != nil {
			d.logger = l
		}
	}
}

// Summary counts the rules applied over a roster.
type Summary struct {
	Slot1    int `json:"slot1"`
	Fallback int `json:"fallback"`
	Empty    int `json:"empty"`
}

// Deriver computes final scores once matching has finished.
type Deriver struct {
	passThreshold float64
	fallbackScore float64
	logger        logger.Logger
}

// NewDeriver creates a Deriver with the default 80/78 rule.
func NewDeriver(opts ...Option) *Deriver {
	d := &Deriver{
		passThreshold: DefaultPassThreshold,
		fallbackScore: DefaultFallbackScore,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Derive computes the final score from the six slot scores:
// slot 1 >= threshold keeps slot 1, otherwise any later slot >= threshold
// yields the fallback score, otherwise the result is null.
func (d *Deriver) Derive(slots [model.SlotCount]model.Score) (model.Score, Rule) {
	if slots[0].AtLeast(d.passThreshold) {
		return slots[0], RuleSlot1
	}
	for _, s := range slots[1:] {
		if s.AtLeast(d.passThreshold) {
			return model.ScoreOf(d.fallbackScore), RuleFallback
		}
	}
	return model.Score{}, RuleEmpty
}

// Apply sets Final on every record of the roster.
func (d *Deriver) Apply(ctx context.Context, roster *model.Roster) (Summary, error) {
	if roster == nil {
		return Summary{}, fmt.Errorf("derive: %w", ErrNilRoster)
	}
	var sum Summary
	for _, rec := range roster.Records() {
		final, rule := d.Derive(rec.Scores())
		rec.Final = final
		switch rule {
		case RuleSlot1:
			sum.Slot1++
		case RuleFallback:
			sum.Fallback++
		default:
			sum.Empty++
		}
		metrics.RecordFinalScore(string(rule))
	}
	d.logger.Debug(ctx, "final scores derived",
		logger.Int("slot1", sum.Slot1),
		logger.Int("fallback", sum.Fallback),
		logger.Int("empty", sum.Empty),
	)
	return sum, nil
}
