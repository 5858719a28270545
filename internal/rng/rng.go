// Package rng provides the per-request seedable random stream used by the
// Enumerator and Finalizer's sampling draws (spec §4.4, §5). No suitable
// third-party splittable-PRNG library appears anywhere in the example
// pack, so this wraps the standard library's math/rand/v2 PCG generator
// (a seedable generator with 128 bits of state) rather than hand-roll
// one; see DESIGN.md.
package rng

import "math/rand/v2"

// Stream is a single PRNG stream for one request's pathfinding iteration.
// Deterministic seeding from (person_id, trip_id, iteration) gives
// reproducibility across runs with identical inputs (spec §5's ordering
// guarantee for stochastic search).
type Stream struct {
	r *rand.Rand
}

// New constructs a Stream seeded from two 64-bit words, typically derived
// by the caller from a hash of (person_id, trip_id, iteration_id).
func New(seedHi, seedLo uint64) *Stream {
	return &Stream{r: rand.New(rand.NewPCG(seedHi, seedLo))}
}

// Float64 returns a pseudo-random value in [0,1), used for the Enumerator's
// and Finalizer's categorical draws over choice probabilities.
func (s *Stream) Float64() float64 {
	return s.r.Float64()
}

// Choose draws an index in [0,len(weights)) with probability proportional
// to weights[i]/sum(weights). Returns -1 if the weight sum is non-positive
// or weights is empty (caller should treat this as a dead end, spec §4.4).
func (s *Stream) Choose(weights []float64) int {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 || len(weights) == 0 {
		return -1
	}
	r := s.Float64() * sum
	var cum float64
	for i, w := range weights {
		cum += w
		if r < cum {
			return i
		}
	}
	return len(weights) - 1
}

// SeedFromRequest derives a deterministic two-word seed from a request and
// iteration identity, per spec §9's "deterministic seeding from request id
// + iteration id" design note. Uses a SplitMix64-style finalizer so
// adjacent integer ids produce well-mixed streams.
func SeedFromRequest(personID, tripID string, iteration int) (hi, lo uint64) {
	h := fnv1a(personID) ^ rotl(fnv1a(tripID), 17) ^ uint64(iteration)*0x9E3779B97F4A7C15
	hi = splitmix64(h)
	lo = splitmix64(h ^ 0xD1B54A32D192ED03)
	return hi, lo
}

func fnv1a(s string) uint64 {
	const offset = 14695981039346656037
	const prime = 1099511628211
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}

func rotl(x uint64, k uint) uint64 {
	return (x << k) | (x >> (64 - k))
}

func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	x = x ^ (x >> 31)
	return x
}
