// Package rng provides the single seeded pseudo-random stream threaded
// through the tick call graph. Every stochastic decision in a tick draws
// from one Stream, so a full tick is reproducible given the same seed and
// input sequence.
package rng

import "math/rand"

// Stream is a deterministic random source with the helpers the behavior
// systems need. It is not safe for concurrent use; the simulation owns
// exactly one per region.
type Stream struct {
	src *rand.Rand
}

// NewStream creates a stream from an explicit seed.
func NewStream(seed int64) *Stream {
	return &Stream{src: rand.New(rand.NewSource(seed))}
}

// Chance returns true with the given probability in [0, 1].
func (s *Stream) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.src.Float64() < p
}

// IntN returns a uniform integer in [0, n).
func (s *Stream) IntN(n int) int {
	return s.src.Intn(n)
}

// IntRange returns a uniform integer in [lo, hi).
func (s *Stream) IntRange(lo, hi int) int {
	return lo + s.src.Intn(hi-lo)
}

// Float64 returns a uniform float in [0, 1).
func (s *Stream) Float64() float64 {
	return s.src.Float64()
}
