package resolver

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"inventory-workers/internal/inventory/textnorm"
)

const (
	tokenWeight   = 0.95
	partialWeight = 0.90
	// fragmentWeight replaces partialWeight when one side is a short
	// fragment of the other.
	fragmentWeight = 0.60
	// partialLengthRatio is how much longer one side must be before
	// substring alignment is considered.
	partialLengthRatio  = 1.5
	fragmentLengthRatio = 8.0
)

// Similarity scores two strings in [0,100]. Case, diacritics and punctuation are
// ignored; identical normalized strings score exactly 100.
func Similarity(a, b string) float64 {
	return similarity(textnorm.Words(a), textnorm.Words(b))
}

func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	best := ratio(a, b)
	if s := tokenSortRatio(a, b) * tokenWeight; s > best {
		best = s
	}
	if s := tokenSetRatio(a, b) * tokenWeight; s > best {
		best = s
	}

	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longer, shorter := max(la, lb), min(la, lb)
	if lengthRatio := float64(longer) / float64(shorter); lengthRatio >= partialLengthRatio {
		weight := partialWeight
		if lengthRatio > fragmentLengthRatio {
			weight = fragmentWeight
		}
		if s := partialRatio(a, b) * weight; s > best {
			best = s
		}
	}
	return best
}

// ratio is the normalized edit similarity.
func ratio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(longest))
}

func tokenSortRatio(a, b string) float64 {
	return ratio(sortedTokens(a), sortedTokens(b))
}

// tokenSetRatio compares the shared tokens against each side's remainder. When
// every token of one side appears in the other the result is 100.
func tokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	var common, onlyA, onlyB []string
	for t := range ta {
		if tb[t] {
			common = append(common, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if !ta[t] {
			onlyB = append(onlyB, t)
		}
	}
	if len(common) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(common, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := ratio(withA, withB)
	if base != "" {
		best = max(best, ratio(base, withA), ratio(base, withB))
	}
	return best
}

// partialRatio aligns the shorter string against every same-length window of the longer one.
func partialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	short := string(ra)
	best := 0.0
	for i := 0; i+len(ra) <= len(rb); i++ {
		if s := ratio(short, string(rb[i:i+len(ra)])); s > best {
			best = s
			if best == 100 {
				break
			}
		}
	}
	return best
}

func sortedTokens(s string) string {
	toks := strings.Fields(s)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}

func tokenSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		out[t] = true
	}
	return out
}
