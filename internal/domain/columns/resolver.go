// Package columns maps loosely named spreadsheet headers onto the fixed
// schema the matcher needs and turns table rows into domain records.
package columns

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/gradematch/internal/domain/model"
	"github.com/okian/gradematch/pkg/logger"
)

// FinalColumn is the output column holding the derived final score.
const FinalColumn = "SCORE"

// SlotColumn returns the header of the n-th score slot (1-based).
func SlotColumn(n int) string {
	return "Score_" + strconv.Itoa(n)
}

// Keywords are matched as lowercase substrings of the trimmed header names.
// Lists are tried in order; the first keyword hitting any column wins.
type Keywords struct {
	Name       []string
	Score      []string
	Identifier []string
	Time       []string
}

// DefaultKeywords returns the stock keyword lists.
func DefaultKeywords() Keywords {
	return Keywords{
		Name:       []string{"nama", "name"},
		Score:      []string{"score", "nilai", "skor"},
		Identifier: []string{"absen", "no", "nomor", "nis", "id"},
		Time:       []string{"time", "timestamp", "tgl", "waktu"},
	}
}

// Schema names the columns a run reads. Empty strings mark optional columns
// that are absent.
type Schema struct {
	ResponseName       string `json:"responseName"`
	ResponseScore      string `json:"responseScore"`
	ResponseIdentifier string `json:"responseIdentifier"` // empty disables identifier matching
	ResponseTime       string `json:"responseTime"`       // informational only

	RosterName       string                  `json:"rosterName"`
	RosterIdentifier string                  `json:"rosterIdentifier"`
	RosterSlots      [model.SlotCount]string `json:"rosterSlots"` // existing Score_n columns
}

// Resolver picks the schema for a pair of tables.
type Resolver interface {
	Resolve(ctx context.Context, responses, roster model.Table) (Schema, error)
}

// KeywordResolver detects columns by keyword, falling back to fixed positions.
type KeywordResolver struct {
	keywords Keywords
	logger   logger.Logger
}

// NewKeywordResolver creates a resolver using DefaultKeywords.
func NewKeywordResolver(opts ...Option) *KeywordResolver {
	r := &KeywordResolver{
		keywords: DefaultKeywords(),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Detect returns the first column whose lowercase trimmed name contains one
// of keywords, trying keywords in order.
func Detect(columns, keywords []string) (string, bool) {
	for _, kw := range keywords {
		for _, col := range columns {
			if strings.Contains(strings.ToLower(strings.TrimSpace(col)), kw) {
				return col, true
			}
		}
	}
	return "", false
}

// Resolve implements Resolver. Positional fallbacks: response name is the
// third column, response score the second, response time the first, roster
// name the second and roster identifier the first. The response identifier
// has no fallback.
func (r *KeywordResolver) Resolve(ctx context.Context, responses, roster model.Table) (Schema, error) {
	var (
		s   Schema
		err error
	)

	if s.ResponseName, err = detectOr(responses, "name", r.keywords.Name, 2); err != nil {
		return Schema{}, err
	}
	if s.ResponseScore, err = detectOr(responses, "score", r.keywords.Score, 1); err != nil {
		return Schema{}, err
	}
	if s.ResponseTime, err = detectOr(responses, "time", r.keywords.Time, 0); err != nil {
		return Schema{}, err
	}
	s.ResponseIdentifier, _ = Detect(responses.Columns, r.keywords.Identifier)

	if s.RosterName, err = detectOr(roster, "name", r.keywords.Name, 1); err != nil {
		return Schema{}, err
	}
	if s.RosterIdentifier, err = detectOr(roster, "identifier", r.keywords.Identifier, 0); err != nil {
		return Schema{}, err
	}
	for i := range s.RosterSlots {
		if col := SlotColumn(i + 1); roster.HasColumn(col) {
			s.RosterSlots[i] = col
		}
	}

	r.logger.Debug(ctx, "columns resolved",
		logger.String("response_name", s.ResponseName),
		logger.String("response_score", s.ResponseScore),
		logger.String("response_identifier", s.ResponseIdentifier),
		logger.String("roster_name", s.RosterName),
		logger.String("roster_identifier", s.RosterIdentifier),
	)
	return s, nil
}

func detectOr(t model.Table, role string, keywords []string, fallback int) (string, error) {
	if col, ok := Detect(t.Columns, keywords); ok {
		return col, nil
	}
	if fallback < len(t.Columns) {
		return t.Columns[fallback], nil
	}
	return "", fmt.Errorf("%w: %s %s: no keyword match and no column %d",
		ErrColumnNotFound, t.Name, role, fallback+1)
}
