package testutil

import (
	"fmt"
	"sync"
)

// FixedRandom replays predetermined draws. It satisfies engine.Random.
//
// Float64 returns the queued floats in order and IntN the queued ints in
// order, each clamped into the requested range. Running out of draws panics:
// the test consumed more randomness than it declared.
//
// Thread-safety: FixedRandom is safe for concurrent use via internal mutex.
type FixedRandom struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
	fi, ii int
}

// NewFixedRandom creates a source that returns floats in order.
func NewFixedRandom(floats ...float64) *FixedRandom {
	return &FixedRandom{floats: floats}
}

// WithInts queues integer draws and returns r.
func (r *FixedRandom) WithInts(ints ...int) *FixedRandom {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ints = append(r.ints, ints...)
	return r
}

// Float64 returns the next queued float.
func (r *FixedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fi >= len(r.floats) {
		panic(fmt.Sprintf("FixedRandom: float draws exhausted after %d", r.fi))
	}
	f := r.floats[r.fi]
	r.fi++
	return f
}

// IntN returns the next queued int clamped into [lo, hi].
func (r *FixedRandom) IntN(lo, hi int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ii >= len(r.ints) {
		panic(fmt.Sprintf("FixedRandom: int draws exhausted after %d", r.ii))
	}
	n := r.ints[r.ii]
	r.ii++
	if hi < lo {
		lo, hi = hi, lo
	}
	return min(max(n, lo), hi)
}

// Draws returns how many floats and ints were consumed.
func (r *FixedRandom) Draws() (floats, ints int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fi, r.ii
}

// Remaining reports whether any queued draw was not consumed.
func (r *FixedRandom) Remaining() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fi < len(r.floats) || r.ii < len(r.ints)
}
