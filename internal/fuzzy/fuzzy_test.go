package fuzzy

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	pre  = "Welcome to the weekly bulletin of the village allotment society. "
	post = "this is stable text afterwards, long enough to line up again without any trouble at all."
)

func TestIsEquivalent_IdenticalForAnyThreshold(t *testing.T) {
	texts := []string{"", "a", "hello world", strings.Repeat("lorem ipsum ", 200), "héllo wörld ✓"}
	for _, text := range texts {
		for _, threshold := range []int{0, 1, 5, 100, 10_000} {
			assert.True(t, IsEquivalent(text, text, threshold), "threshold %d", threshold)
		}
	}
}

func TestIsEquivalent_ZeroThresholdIsExactEquality(t *testing.T) {
	assert.False(t, IsEquivalent("hello world", "hello World", 0))
	assert.False(t, IsEquivalent("hello world", "hello world ", 0))
	assert.False(t, IsEquivalent("", "x", 0))
	assert.True(t, IsEquivalent("same", "same", 0))
}

func TestIsEquivalent_CaseAndWhitespaceSensitive(t *testing.T) {
	a := pre + "THE END" + post
	b := pre + "the end" + post
	assert.False(t, IsEquivalent(a, b, 3))
	assert.True(t, IsEquivalent(a, b, 10))
}

func TestIsEquivalent_LengthGate(t *testing.T) {
	assert.False(t, IsEquivalent("abc", "abcdef", 2))
	assert.True(t, IsEquivalent("abc", "abcdef", 3))
}

func TestIsEquivalent_LengthGateSkipsScanning(t *testing.T) {
	a := strings.Repeat("abcdefghij", 500_000)
	b := a + strings.Repeat("z", 50)

	start := time.Now()
	assert.False(t, IsEquivalent(a, b, 10))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestIsEquivalent_LengthGateDoesNotAllocate(t *testing.T) {
	a := strings.Repeat("abcdefghij", 100_000)
	b := a + strings.Repeat("z", 50)

	allocs := testing.AllocsPerRun(10, func() {
		IsEquivalent(a, b, 10)
	})
	assert.Zero(t, allocs)
}

func TestIsEquivalent_LengthGateCountsRunes(t *testing.T) {
	// "€" is three bytes, so the byte lengths differ by eight.
	assert.True(t, IsEquivalent("€€€€"+post, "eeee"+post, 4))
	assert.False(t, IsEquivalent("€€"+post, "€€€€€"+post, 2))
}

func TestIsEquivalent_CounterDriftTolerated(t *testing.T) {
	a := pre + "Visitors: 123. " + post
	b := pre + "Visitors: 456. " + post
	assert.True(t, IsEquivalent(a, b, 5))
	assert.False(t, IsEquivalent(a, b, 0))
}

func TestIsEquivalent_InsertionResyncs(t *testing.T) {
	a := pre + post
	b := pre + "XYZ" + post
	assert.True(t, IsEquivalent(a, b, 3))
	assert.True(t, IsEquivalent(b, a, 3))
	assert.False(t, IsEquivalent(a, b, 2))
}

func TestIsEquivalent_DivergenceNearEnd(t *testing.T) {
	a := pre + "1"
	b := pre + "2"
	assert.True(t, IsEquivalent(a, b, 1))
}

func TestIsEquivalent_UnrelatedContent(t *testing.T) {
	a := strings.Repeat("abcdefghij", 10)
	b := strings.Repeat("klmnopqrst", 10)
	assert.False(t, IsEquivalent(a, b, 5))
	assert.False(t, IsEquivalent(a, b, 20))
}

func TestIsEquivalent_TwoSeparateDrifts(t *testing.T) {
	a := pre + "Updated 10:45. " + post + "Visitors: 12. " + post
	b := pre + "Updated 11:02. " + post + "Visitors: 98. " + post
	assert.True(t, IsEquivalent(a, b, 5))
}

func TestIsEquivalent_CountsRunesNotBytes(t *testing.T) {
	a := "€€€" + post
	b := "eee" + post
	assert.True(t, IsEquivalent(a, b, 3))
}

func TestIsEquivalent_NegativeThresholdClampedToZero(t *testing.T) {
	assert.True(t, IsEquivalent("abc", "abc", -5))
	assert.False(t, IsEquivalent("abc", "abd", -5))
}

func TestIsEquivalent_ThresholdMonotonic(t *testing.T) {
	fixtures := []struct {
		a, b string
	}{
		{pre + post, pre + "XYZ" + post},
		{pre + "Visitors: 123. " + post, pre + "Visitors: 456. " + post},
		{pre + "1", pre + "2"},
		{pre + "Updated 10:45. " + post, pre + "Updated 11:02. " + post},
	}
	for _, f := range fixtures {
		matched := false
		for threshold := 0; threshold <= 40; threshold++ {
			got := IsEquivalent(f.a, f.b, threshold)
			if matched {
				assert.True(t, got, "match lost at threshold %d for %q", threshold, f.b)
			}
			matched = matched || got
		}
		assert.True(t, matched)
	}
}

func TestComparator_Validate(t *testing.T) {
	assert.NoError(t, New(0).Validate())
	assert.NoError(t, New(50).Validate())
	assert.ErrorIs(t, New(-1).Validate(), ErrNegativeThreshold)
	assert.NoError(t, Comparator{Threshold: 3}.Validate())
	assert.ErrorIs(t, Comparator{Threshold: 3, ResyncLength: -5}.Validate(), ErrNegativeResync)
}

func TestComparator_ResyncLengthTunable(t *testing.T) {
	// After the drift only six characters line up again.
	a := pre + "Visitors: 123. end."
	b := pre + "Visitors: 456. end."

	strict := Comparator{Threshold: 3, ResyncLength: DefaultResyncLength}
	loose := Comparator{Threshold: 3, ResyncLength: 4}

	assert.False(t, strict.Equivalent(a, b))
	assert.True(t, loose.Equivalent(a, b))
}

func TestDiffIndex(t *testing.T) {
	assert.Equal(t, 0, diffIndex([]rune("abc"), []rune("xbc")))
	assert.Equal(t, 2, diffIndex([]rune("abc"), []rune("abx")))
	assert.Equal(t, 3, diffIndex([]rune("abc"), []rune("abcdef")))
	assert.Equal(t, 0, diffIndex([]rune(""), []rune("abc")))
}
