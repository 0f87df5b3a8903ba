package grading

import (
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// canonical trims s, composes it to NFC and, unless caseSensitive is set,
// applies Unicode case folding. Every comparator compares canonical forms.
//
// A cases.Caser carries state, so a fresh one is built per call to keep the
// validator safe for concurrent use.
func canonical(s string, caseSensitive bool) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	if !caseSensitive {
		s = cases.Fold().String(s)
	}
	return s
}

// equalText reports whether a and b are equal after canonicalization.
func equalText(a, b string, caseSensitive bool) bool {
	return canonical(a, caseSensitive) == canonical(b, caseSensitive)
}

// matchAny returns the index of the first candidate equal to s, or -1.
func matchAny(s string, candidates []string, caseSensitive bool) int {
	want := canonical(s, caseSensitive)
	for i, c := range candidates {
		if canonical(c, caseSensitive) == want {
			return i
		}
	}
	return -1
}

// sameMembers reports whether a and b hold the same canonical members with
// the same multiplicities, ignoring order.
func sameMembers(a, b []string, caseSensitive bool) bool {
	if len(a) != len(b) {
		return false
	}
	return slices.Equal(canonicalSorted(a, caseSensitive), canonicalSorted(b, caseSensitive))
}

func canonicalSorted(items []string, caseSensitive bool) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = canonical(item, caseSensitive)
	}
	slices.Sort(out)
	return out
}

// nearestDistance returns the smallest Levenshtein distance from s to any of
// the accepted phrasings, or -1 when there are none.
func nearestDistance(s string, accepted []string, caseSensitive bool) int {
	got := canonical(s, caseSensitive)
	best := -1
	for _, a := range accepted {
		d := levenshtein.ComputeDistance(got, canonical(a, caseSensitive))
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// truncate shortens s to at most limit runes, marking the cut with "...".
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
