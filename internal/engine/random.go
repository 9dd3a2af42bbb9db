package engine

import (
	"math/rand/v2"
)

// Random is the injectable random source consulted by Chance, RandomInt,
// RandomFloat, evasion rolls and plugin rolls. The engine never reads a
// global generator.
type Random interface {
	// IntN returns a uniform integer in [lo, hi].
	IntN(lo, hi int) int
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
}

// SeededRandom is a PCG generator that counts draws. Two SeededRandoms with
// equal seeds produce equal sequences, so a battle replays exactly.
//
// Not safe for concurrent use; a battle is resolved on one goroutine.
type SeededRandom struct {
	seed uint64
	rng  *rand.Rand
	pos  int64
}

// NewRandom creates a seeded random source.
func NewRandom(seed uint64) *SeededRandom {
	return &SeededRandom{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// IntN returns a uniform integer in [lo, hi]. A reversed range is swapped.
func (r *SeededRandom) IntN(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	r.pos++
	return lo + r.rng.IntN(hi-lo+1)
}

// Float64 returns a uniform float in [0, 1).
func (r *SeededRandom) Float64() float64 {
	r.pos++
	return r.rng.Float64()
}

// Seed returns the seed the source was created with.
func (r *SeededRandom) Seed() uint64 {
	return r.seed
}

// Position returns the number of draws taken so far.
func (r *SeededRandom) Position() int64 {
	return r.pos
}
