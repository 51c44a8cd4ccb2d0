package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/gradematch/internal/domain/model"
)

// ParseScore turns a raw score cell into a Score. It never fails: nil,
// blank or unparseable input yields a null score.
//
// Accepted shapes include "85", "8/10" (numerator only), "90%" and "7,5"
// (decimal comma). Every character other than digits, '.' and ',' is
// dropped before parsing, so signs and units are ignored.
func ParseScore(raw any) model.Score {
	s, ok := rawText(raw)
	if !ok {
		return model.Score{}
	}
	s = strings.TrimSpace(s)
	if before, _, found := strings.Cut(s, "/"); found {
		s = strings.TrimSpace(before)
	}
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == ',':
			b.WriteByte('.')
		}
	}

	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return model.Score{}
	}
	return model.ScoreOf(v)
}

// rawText renders a cell value as text. ok is false for null cells.
func rawText(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case float64:
		if math.IsNaN(v) {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		if math.IsNaN(float64(v)) {
			return "", false
		}
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case model.Score:
		return v.String(), v.Valid
	default:
		return fmt.Sprint(v), true
	}
}
