// Package matching assigns response records to roster records.
//
// Each response is resolved by the first tier that yields a candidate:
//
//  1. name containment: the first roster name (in roster order) that equals,
//     contains, or is contained in the response name;
//  2. identifier equality, when the response carries an identifier;
//  3. fuzzy name similarity: the first roster name with the strictly highest
//     score, accepted when the score reaches the threshold.
//
// The matched response's parsed score goes into the lowest empty slot of the
// roster record. Matches against a record whose slots are all filled are
// dropped without notice.
package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/gradematch/internal/domain/model"
	"github.com/okian/gradematch/internal/domain/scoring"
	"github.com/okian/gradematch/internal/domain/similarity"
	"github.com/okian/gradematch/pkg/logger"
	"github.com/okian/gradematch/pkg/metrics"
)

// DefaultFuzzyThreshold is the minimum similarity accepted by the fuzzy tier.
const DefaultFuzzyThreshold = 65

// Tier identifies the strategy that produced a match.
type Tier int

// Matching tiers in evaluation order.
const (
	TierNone Tier = iota
	TierName
	TierIdentifier
	TierFuzzy
)

func (t Tier) String() string {
	switch t {
	case TierName:
		return metrics.TierName
	case TierIdentifier:
		return metrics.TierIdentifier
	case TierFuzzy:
		return metrics.TierFuzzy
	default:
		return "none"
	}
}

// Candidate is the roster record chosen for one response.
type Candidate struct {
	Index      int     // roster scan position, -1 when unmatched
	Tier       Tier    // TierNone when unmatched
	Similarity float64 // fuzzy score of the chosen record; 0 for other tiers
}

// Summary reports the outcome of one matching pass.
type Summary struct {
	Processed  int      `json:"processed"`
	Name       int      `json:"byName"`
	Identifier int      `json:"byIdentifier"`
	Fuzzy      int      `json:"byFuzzy"`
	Dropped    int      `json:"droppedFull"` // matched but the roster record had no empty slot
	Unmatched  []string `json:"unmatched"`   // response names as written, in input order
}

// Matched returns the number of responses that found a roster record.
func (s Summary) Matched() int {
	return s.Name + s.Identifier + s.Fuzzy
}

// Matcher runs the tiered matching pass. It holds no per-run state and is
// not safe for concurrent use on the same roster.
type Matcher struct {
	similarity     similarity.Func
	fuzzyThreshold float64
	lineLog        func(string)
	progress       func(int)
	logger         logger.Logger
}

// New creates a Matcher using the token-set similarity and a threshold of 65.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		similarity:     similarity.TokenSetRatio,
		fuzzyThreshold: DefaultFuzzyThreshold,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Find resolves the roster record for one response without mutating anything.
func (m *Matcher) Find(resp model.ResponseRecord, roster *model.Roster) Candidate {
	name := model.NormalizeName(resp.Name)

	for i := 0; i < roster.Len(); i++ {
		target := roster.NormalizedName(i)
		if strings.Contains(target, name) || strings.Contains(name, target) {
			return Candidate{Index: i, Tier: TierName}
		}
	}

	if id := model.NormalizeIdentifier(resp.Identifier); id != "" {
		for i := 0; i < roster.Len(); i++ {
			if roster.Identifier(i) == id {
				return Candidate{Index: i, Tier: TierIdentifier}
			}
		}
	}

	if name != "" {
		best, bestIdx := 0.0, -1
		for i := 0; i < roster.Len(); i++ {
			if sc := m.similarity(name, roster.NormalizedName(i)); sc > best {
				best, bestIdx = sc, i
			}
		}
		if bestIdx >= 0 && best >= m.fuzzyThreshold {
			return Candidate{Index: bestIdx, Tier: TierFuzzy, Similarity: best}
		}
	}

	return Candidate{Index: -1, Tier: TierNone}
}

// Match processes responses in order, writing each matched score into the
// roster in place. It stops before the next response once ctx is done and
// returns the partial summary with an ErrStopped-wrapped error.
func (m *Matcher) Match(ctx context.Context, responses []model.ResponseRecord, roster *model.Roster) (Summary, error) {
	var sum Summary
	if roster == nil {
		return sum, fmt.Errorf("match: %w", ErrNilRoster)
	}

	total := len(responses)
	for _, resp := range responses {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("%w after %d of %d responses: %w", ErrStopped, sum.Processed, total, err)
		}

		m.apply(ctx, resp, roster, &sum)

		sum.Processed++
		metrics.RecordResponseProcessed()
		if m.progress != nil {
			m.progress(sum.Processed * 100 / total)
		}
	}

	m.logger.Info(ctx, "matching pass finished",
		logger.Int("processed", sum.Processed),
		logger.Int("by_name", sum.Name),
		logger.Int("by_identifier", sum.Identifier),
		logger.Int("by_fuzzy", sum.Fuzzy),
		logger.Int("unmatched", len(sum.Unmatched)),
		logger.Int("dropped_full", sum.Dropped),
	)
	return sum, nil
}

func (m *Matcher) apply(ctx context.Context, resp model.ResponseRecord, roster *model.Roster, sum *Summary) {
	c := m.Find(resp, roster)
	if c.Tier == TierNone {
		sum.Unmatched = append(sum.Unmatched, resp.Name)
		metrics.RecordUnmatched()
		if m.lineLog != nil {
			m.lineLog("no match found: " + resp.Name)
		}
		return
	}

	switch c.Tier {
	case TierName:
		sum.Name++
	case TierIdentifier:
		sum.Identifier++
	case TierFuzzy:
		sum.Fuzzy++
	}
	metrics.RecordMatch(c.Tier.String())

	rec := roster.Record(c.Index)
	slot, ok := rec.Assign(scoring.ParseScore(resp.RawScore))
	if !ok {
		sum.Dropped++
		metrics.RecordDroppedFull()
		return
	}
	m.logger.Debug(ctx, "response matched",
		logger.Int("response_row", resp.Index),
		logger.Int("roster_row", rec.Index),
		logger.String("tier", c.Tier.String()),
		logger.Float64("similarity", c.Similarity),
		logger.Int("slot", slot),
	)
}
