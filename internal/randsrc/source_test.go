package randsrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Deterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestSource_SeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	same := true
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			same = false
		}
	}
	assert.False(t, same)
}

func TestUniform_StaysInRange(t *testing.T) {
	s := New(7)
	for i := 0; i < 1000; i++ {
		v := s.Uniform(2.5, 3.5)
		assert.GreaterOrEqual(t, v, 2.5)
		assert.Less(t, v, 3.5)
	}
}

func TestIntInRange_InclusiveEndpoints(t *testing.T) {
	s := New(7)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		v := s.IntInRange(1, 3)
		require.GreaterOrEqual(t, v, 1)
		require.LessOrEqual(t, v, 3)
		seen[v] = true
	}
	assert.Len(t, seen, 3)

	// Degenerate interval returns the lower bound.
	assert.Equal(t, 5, s.IntInRange(5, 5))
	assert.Equal(t, 5, s.IntInRange(5, 3))
}

func TestRead_DeterministicBytes(t *testing.T) {
	a, b := New(42), New(42)
	bufA := make([]byte, 32)
	bufB := make([]byte, 32)

	n, err := a.Read(bufA)
	require.NoError(t, err)
	require.Equal(t, 32, n)
	_, err = b.Read(bufB)
	require.NoError(t, err)
	assert.Equal(t, bufA, bufB)

	other := make([]byte, 32)
	_, err = New(43).Read(other)
	require.NoError(t, err)
	assert.NotEqual(t, bufA, other)
}

func TestChance_Extremes(t *testing.T) {
	s := New(7)
	for i := 0; i < 50; i++ {
		assert.False(t, s.Chance(0))
		assert.True(t, s.Chance(1.0))
	}
}

func TestWeightedIndex(t *testing.T) {
	s := New(7)

	// A single dominant weight should win almost always.
	counts := make([]int, 3)
	for i := 0; i < 1000; i++ {
		counts[s.WeightedIndex([]float64{0.001, 0.001, 100})]++
	}
	assert.Greater(t, counts[2], 950)

	// Non-positive total degenerates to index 0.
	assert.Equal(t, 0, s.WeightedIndex([]float64{0, 0}))
	assert.Equal(t, 0, s.WeightedIndex(nil))
}

func TestShuffle_PreservesElements(t *testing.T) {
	s := New(7)
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	Shuffle(s, items)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, items)
}

func TestSample(t *testing.T) {
	s := New(7)
	items := []string{"a", "b", "c", "d"}

	got := Sample(s, items, 2)
	assert.Len(t, got, 2)
	assert.Subset(t, items, got)

	// Requesting more than available returns everything.
	all := Sample(s, items, 10)
	assert.ElementsMatch(t, items, all)

	// The input is left untouched.
	assert.Equal(t, []string{"a", "b", "c", "d"}, items)
}

func TestWeightedChoice(t *testing.T) {
	s := New(7)
	v := WeightedChoice(s, []string{"x", "y"}, []float64{0, 10})
	assert.Equal(t, "y", v)
}

func TestRoundTenth(t *testing.T) {
	assert.Equal(t, 4.3, RoundTenth(4.31))
	assert.Equal(t, 4.4, RoundTenth(4.36))
	assert.Equal(t, 0.0, RoundTenth(0.04))
	assert.Equal(t, -1.2, RoundTenth(-1.16))
}
