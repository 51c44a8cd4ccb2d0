package columns

import (
	"fmt"
	"strings"

	"github.com/okian/gradematch/internal/domain/model"
	"github.com/okian/gradematch/internal/domain/scoring"
)

// BuildResponses reads response records from t using the response columns
// of s. Blank score cells become nil raw scores.
func BuildResponses(s Schema, t model.Table) ([]model.ResponseRecord, error) {
	out := make([]model.ResponseRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		name, err := cell(t, i, row, s.ResponseName)
		if err != nil {
			return nil, err
		}
		raw, err := cell(t, i, row, s.ResponseScore)
		if err != nil {
			return nil, err
		}
		var id string
		if s.ResponseIdentifier != "" {
			if id, err = cell(t, i, row, s.ResponseIdentifier); err != nil {
				return nil, err
			}
		}

		rec := model.ResponseRecord{Index: i, Name: name, Identifier: id}
		if strings.TrimSpace(raw) != "" {
			rec.RawScore = raw
		}
		out = append(out, rec)
	}
	return out, nil
}

// BuildRoster reads the roster arena from t. Non-blank cells of existing
// Score_n columns pre-fill the matching slots.
func BuildRoster(s Schema, t model.Table) (*model.Roster, error) {
	recs := make([]*model.RosterRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		name, err := cell(t, i, row, s.RosterName)
		if err != nil {
			return nil, err
		}
		id, err := cell(t, i, row, s.RosterIdentifier)
		if err != nil {
			return nil, err
		}

		rec := &model.RosterRecord{Index: i, Name: name, Identifier: id, Row: row}
		for n, col := range s.RosterSlots {
			if col == "" {
				continue
			}
			v, err := cell(t, i, row, col)
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(v) != "" {
				rec.Slots[n] = model.Slot{Filled: true, Score: scoring.ParseScore(v)}
			}
		}
		recs = append(recs, rec)
	}
	return model.NewRoster(recs), nil
}

func cell(t model.Table, i int, row model.Row, col string) (string, error) {
	v, ok := row[col]
	if !ok {
		return "", fmt.Errorf("%w: %s row %d has no %q cell", ErrMalformedRow, t.Name, i+1, col)
	}
	return v, nil
}
