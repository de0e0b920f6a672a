// Package suffix implements the read-name suffix analyzer (C6): it
// guesses how many trailing characters of a read name distinguish
// mates ("/1" vs "/2"-style suffixes), verifies a candidate length,
// and checks that mates appear consecutively in the input stream.
package suffix

import (
	"sort"

	"github.com/dnmtools/format/internal/ferrors"
)

// maxRepeatCount returns the largest run of consecutive names (names
// must already be sorted) that agree on their length-(L-suffLen)
// prefix, where L is each name's own length (names of differing
// length never match). The scan stops early once a run of 2 is found,
// since that already indicates suffLen is too long to uniquely
// identify pairs.
func maxRepeatCount(names []string, suffLen int) int {
	repeatCount := 0
	run := 0
	for i := 1; i < len(names) && repeatCount < 2; i++ {
		prev, cur := names[i-1], names[i]
		if len(prev) == len(cur) && len(prev) >= suffLen &&
			prev[:len(prev)-suffLen] == cur[:len(cur)-suffLen] {
			run++
		} else {
			run = 0
		}
		if run > repeatCount {
			repeatCount = run
		}
	}
	return repeatCount
}

// GuessLength guesses the read-name suffix length from names (which
// need not be pre-sorted; GuessLength sorts its own copy). It returns
// the guessed length and whether that length is 0 — a signal that the
// names may be genuinely unique end-to-end, which for truly
// single-end data would otherwise masquerade as paired (spec.md's
// open question). It fails with ferrors.ErrSuffixIndeterminate if any
// suffix length produces a run of 2 or more identical prefixes
// (indicating triplets, or that the data is not actually paired in
// the expected way).
func GuessLength(names []string) (length int, trivial bool, err error) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	minLen := minNameLen(sorted)
	if minLen == 0 {
		return 0, false, ferrors.ErrSuffixIndeterminate
	}

	suffLen := 0
	repeatCount := 0
	maxSuffLen := minLen - 1
	for suffLen < maxSuffLen && repeatCount == 0 {
		repeatCount = maxRepeatCount(sorted, suffLen)
		if repeatCount == 0 {
			suffLen++
		}
	}
	if repeatCount > 1 {
		return 0, false, ferrors.ErrSuffixIndeterminate
	}
	return suffLen, suffLen == 0, nil
}

// VerifyLength confirms that suffLen does not identify any group of
// more than two mutually-matching names.
func VerifyLength(names []string, suffLen int) error {
	sorted := append([]string(nil), names...)
	minLen := minNameLen(sorted)
	if minLen <= suffLen {
		return ferrors.ErrSuffixIndeterminate
	}
	sort.Strings(sorted)
	if maxRepeatCount(sorted, suffLen) >= 2 {
		return ferrors.ErrSuffixIndeterminate
	}
	return nil
}

// VerifyAdjacency strips suffLen characters from every name (in
// input order) and confirms that whenever a stripped name recurs, it
// does so at the position immediately following its first occurrence
// — i.e. mates are consecutive in the stream.
func VerifyAdjacency(names []string, suffLen int) error {
	firstSeen := make(map[string]int, len(names))
	for i, name := range names {
		stripped := removeSuffix(name, suffLen)
		if prev, ok := firstSeen[stripped]; ok {
			if prev != i-1 {
				return ferrors.ErrMatesNotConsecutive
			}
		} else {
			firstSeen[stripped] = i
		}
	}
	return nil
}

func removeSuffix(s string, suffLen int) string {
	if len(s) > suffLen {
		return s[:len(s)-suffLen]
	}
	return s
}

func minNameLen(names []string) int {
	if len(names) == 0 {
		return 0
	}
	m := len(names[0])
	for _, n := range names[1:] {
		if len(n) < m {
			m = len(n)
		}
	}
	return m
}
