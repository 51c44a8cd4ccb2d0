// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"strings"
)

// SlotCount is the number of score slots on every roster record.
const SlotCount = 6

// Score is a parsed score value. A zero Score is null.
type Score struct {
	Value float64
	Valid bool
}

// ScoreOf returns a non-null score.
func ScoreOf(v float64) Score {
	return Score{Value: v, Valid: true}
}

// AtLeast reports whether the score is non-null and >= threshold.
func (s Score) AtLeast(threshold float64) bool {
	return s.Valid && s.Value >= threshold
}

// String renders the value without trailing zeros, or "" for null.
func (s Score) String() string {
	if !s.Valid {
		return ""
	}
	return strconv.FormatFloat(s.Value, 'f', -1, 64)
}

// Slot is one score position on a roster record. A filled slot may hold a
// null score: a matched response without a parseable score still occupies it.
type Slot struct {
	Filled bool
	Score  Score
}

// Row is one table row keyed by column header. A missing key means the
// column was absent for that row, an empty value means a blank cell.
type Row map[string]string

// ResponseRecord is one submitted response. Immutable once read.
type ResponseRecord struct {
	Index      int    // zero-based data row position in the response table
	Name       string // name as written by the respondent
	Identifier string // roll number / student id; empty when the table has none
	RawScore   any    // unparsed score cell; nil when absent
}

// RosterRecord is one student row of the roster. Slots are filled in place
// by the matcher; Final is set once by the score deriver.
type RosterRecord struct {
	Index      int
	Name       string
	Identifier string
	Slots      [SlotCount]Slot
	Final      Score
	Row        Row // original cells, written back unchanged
}

// Assign writes s into the lowest empty slot and returns its 1-based
// number. It returns false, leaving the record untouched, when every slot
// is already filled.
func (r *RosterRecord) Assign(s Score) (int, bool) {
	for i := range r.Slots {
		if !r.Slots[i].Filled {
			r.Slots[i] = Slot{Filled: true, Score: s}
			return i + 1, true
		}
	}
	return 0, false
}

// Filled returns how many slots are occupied.
func (r *RosterRecord) Filled() int {
	n := 0
	for _, s := range r.Slots {
		if s.Filled {
			n++
		}
	}
	return n
}

// Scores returns the slot scores in order; empty slots read as null.
func (r *RosterRecord) Scores() [SlotCount]Score {
	var out [SlotCount]Score
	for i, s := range r.Slots {
		out[i] = s.Score
	}
	return out
}

// NormalizeName lowercases s and collapses all whitespace runs to one space.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NormalizeIdentifier trims surrounding whitespace.
func NormalizeIdentifier(s string) string {
	return strings.TrimSpace(s)
}
