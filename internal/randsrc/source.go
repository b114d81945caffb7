package randsrc

import (
	"math"
	"math/rand"
)

// Source is the single seeded PRNG behind every stochastic decision in a
// run. (seed, config) fully determines a run's statistical profile, so
// no component may draw randomness from anywhere else.
type Source struct {
	rng *rand.Rand
}

// New creates a Source from an explicit seed. Time-based seeding is
// deliberately not offered.
func New(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Float64 draws from U[0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Uniform draws from U[a, b).
func (s *Source) Uniform(a, b float64) float64 {
	return a + (b-a)*s.rng.Float64()
}

// Normal draws from N(mean, stddev).
func (s *Source) Normal(mean, stddev float64) float64 {
	return mean + stddev*s.rng.NormFloat64()
}

// IntInRange draws an integer from [a, b], both endpoints included.
func (s *Source) IntInRange(a, b int) int {
	if b <= a {
		return a
	}
	return a + s.rng.Intn(b-a+1)
}

// Chance reports true with probability p.
func (s *Source) Chance(p float64) bool {
	return s.rng.Float64() < p
}

// Read fills p with pseudo-random bytes and never fails, so the source
// doubles as an io.Reader for id generation. Ids drawn from anywhere
// else would break same-seed reproducibility.
func (s *Source) Read(p []byte) (int, error) {
	return s.rng.Read(p)
}

// WeightedIndex picks an index of weights proportionally to its value.
// Non-positive total weight degenerates to index 0.
func (s *Source) WeightedIndex(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 || math.IsNaN(total) {
		return 0
	}
	target := s.rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		if target < acc {
			return i
		}
	}
	return len(weights) - 1
}

// Shuffle permutes items in place.
func Shuffle[T any](s *Source, items []T) {
	s.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// Sample draws k items without replacement, preserving nothing of the
// input order. If k exceeds len(items) the whole set is returned.
func Sample[T any](s *Source, items []T, k int) []T {
	if k >= len(items) {
		k = len(items)
	}
	cp := make([]T, len(items))
	copy(cp, items)
	Shuffle(s, cp)
	return cp[:k]
}

// WeightedChoice picks one value proportionally to its paired weight.
func WeightedChoice[T any](s *Source, values []T, weights []float64) T {
	return values[s.WeightedIndex(weights)]
}

// RoundTenth rounds to one decimal place, half away from zero. Charged
// hours are contracted to 0.1h resolution.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
