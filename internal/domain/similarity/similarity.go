// Package similarity scores how alike two normalized names are on a 0-100
// scale.
//
// The default measure is a token-set ratio: both names are split into
// unique whitespace tokens, and the result is the best normalized Indel
// similarity among the sorted shared tokens and each side's shared+own
// tokens. A name whose tokens are all contained in the other scores 100.
package similarity

import (
	"sort"
	"strings"
)

// Func returns a 0-100 similarity for two normalized strings. Any Func used
// by the matcher must be symmetric in spirit and grow as the inputs share
// more characters or tokens.
type Func func(a, b string) float64

// Ratio is the normalized Indel similarity of a and b:
// 100 * (1 - indel(a, b) / (len(a) + len(b))), measured in runes.
// Two empty strings are identical and score 100.
func Ratio(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 100
	}
	dist := total - 2*lcsLength(ar, br)
	return 100 * (1 - float64(dist)/float64(total))
}

// TokenSetRatio compares the token sets of a and b. It returns 0 when
// either side has no tokens.
func TokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var shared, onlyA, onlyB []string
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			shared = append(shared, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tb {
		if _, ok := ta[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	if len(shared) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	sect := joinSorted(shared)
	combinedA := joinNonEmpty(sect, joinSorted(onlyA))
	combinedB := joinNonEmpty(sect, joinSorted(onlyB))

	best := Ratio(combinedA, combinedB)
	if sect == "" {
		return best
	}
	if r := Ratio(sect, combinedA); r > best {
		best = r
	}
	if r := Ratio(sect, combinedB); r > best {
		best = r
	}
	return best
}

// lcsLength computes the longest common subsequence length with a single
// rolling row.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	dp := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0 // dp[i-1][j-1]
		for j := 1; j <= len(b); j++ {
			tmp := dp[j]
			if a[i-1] == b[j-1] {
				dp[j] = prev + 1
			} else if dp[j-1] > dp[j] {
				dp[j] = dp[j-1]
			}
			prev = tmp
		}
	}
	return dp[len(b)]
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func joinSorted(tokens []string) string {
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
