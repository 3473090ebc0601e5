package sim

import (
	"math/rand"
	"time"
)

// Fib is the synthetic CPU-bound workload standing in for "barber busy".
// It is naive and non-memoized on purpose: the cost is the point. It is a
// timing knob, not a correctness-relevant computation.
func Fib(n int) int {
	if n <= 1 {
		return n
	}
	return Fib(n-1) + Fib(n-2)
}

// HaircutTimer draws pseudo-random service durations from a configured
// millisecond range. Draws are fully determined by the seed, independent
// of scheduling, so a fixed seed reproduces the same sequence.
//
// Not safe for concurrent use; the barber is its only caller.
type HaircutTimer struct {
	rng *rand.Rand
	min int
	max int
}

// NewHaircutTimer creates a timer drawing from [minMS, maxMS] inclusive.
func NewHaircutTimer(seed int64, minMS, maxMS int) *HaircutTimer {
	if maxMS < minMS {
		maxMS = minMS
	}
	return &HaircutTimer{
		rng: rand.New(rand.NewSource(seed)),
		min: minMS,
		max: maxMS,
	}
}

// Next returns the next haircut duration.
func (h *HaircutTimer) Next() time.Duration {
	ms := h.min
	if span := h.max - h.min; span > 0 {
		ms += h.rng.Intn(span + 1)
	}
	return time.Duration(ms) * time.Millisecond
}
