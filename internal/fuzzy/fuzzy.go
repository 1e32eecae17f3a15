// Package fuzzy decides whether two page snapshots carry the same content
// while tolerating small drifts such as counters, dates or rotating ads.
//
// The comparison skips past each divergence and looks for the texts to line
// up again within Threshold characters, so it costs O(n*Threshold) instead
// of a full edit distance.
package fuzzy

import (
	"errors"
	"unicode/utf8"
)

// DefaultResyncLength is how many characters must match after a skipped
// divergence before the texts are considered back in step. A match has to
// be strictly longer than this.
const DefaultResyncLength = 10

var (
	ErrNegativeThreshold = errors.New("fuzzy: threshold must not be negative")
	ErrNegativeResync    = errors.New("fuzzy: resync length must not be negative")
)

// Comparator holds the tolerances for one comparison.
type Comparator struct {
	// Threshold is the number of characters of drift tolerated at each
	// divergence point. Zero means exact equality.
	Threshold int
	// ResyncLength is the run of matching characters needed to resume
	// comparing after a divergence. Equivalent falls back to
	// DefaultResyncLength when it is negative.
	ResyncLength int
}

func New(threshold int) Comparator {
	return Comparator{Threshold: threshold, ResyncLength: DefaultResyncLength}
}

func (c Comparator) Validate() error {
	if c.Threshold < 0 {
		return ErrNegativeThreshold
	}
	if c.ResyncLength < 0 {
		return ErrNegativeResync
	}
	return nil
}

// IsEquivalent reports whether a and b are the same content within threshold
// characters of drift per divergence. A negative threshold is treated as 0.
func IsEquivalent(a, b string, threshold int) bool {
	return New(threshold).Equivalent(a, b)
}

// Equivalent is IsEquivalent with the comparator's tolerances.
// Comparison is case and whitespace sensitive.
func (c Comparator) Equivalent(a, b string) bool {
	if a == b {
		return true
	}
	threshold := max(c.Threshold, 0)
	resync := c.ResyncLength
	if resync < 0 {
		resync = DefaultResyncLength
	}

	na, nb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if min(na, nb)+threshold < max(na, nb) {
		return false
	}

	x, y := []rune(a), []rune(b)

	for !equal(x, y) {
		index := diffIndex(x, y)
		shortest := min(len(x), len(y))
		if index+threshold*2 >= shortest {
			// the divergence runs into the end of the shorter text
			return true
		}

		x = x[index+threshold:]
		y = y[index+threshold:]

		resynced := false
		for i := 0; i <= threshold; i++ {
			if diffIndex(x, tail(y, i)) > resync {
				y = tail(y, i)
				resynced = true
				break
			}
			if diffIndex(y, tail(x, i)) > resync {
				x = tail(x, i)
				resynced = true
				break
			}
		}
		if !resynced {
			return false
		}
	}

	return true
}

// diffIndex returns the first index where a and b differ, or the length of
// the shorter one when it is a prefix of the other.
func diffIndex(a, b []rune) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func equal(a, b []rune) bool {
	return len(a) == len(b) && diffIndex(a, b) == len(a)
}

func tail(s []rune, i int) []rune {
	if i >= len(s) {
		return s[len(s):]
	}
	return s[i:]
}
