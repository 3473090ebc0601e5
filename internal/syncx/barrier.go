package syncx

import (
	"context"
	"errors"
	"sync"
)

// ErrBarrierBroken is returned to every waiter when a party abandons the
// barrier before the generation filled. Callers treat it as non-fatal and
// proceed rather than deadlock.
var ErrBarrierBroken = errors.New("barrier broken")

// Barrier releases parties callers simultaneously once all have arrived,
// then resets for the next generation.
type Barrier struct {
	parties int

	mu    sync.Mutex
	count int
	gen   *generation
}

type generation struct {
	release chan struct{}
	broken  bool // guarded by Barrier.mu
}

// NewBarrier creates a barrier for the given number of parties.
func NewBarrier(parties int) *Barrier {
	if parties < 1 {
		parties = 1
	}
	return &Barrier{
		parties: parties,
		gen:     &generation{release: make(chan struct{})},
	}
}

// Parties returns the number of participants per generation.
func (b *Barrier) Parties() int {
	return b.parties
}

// Await blocks until parties callers have arrived in the current
// generation, then releases all of them at once. The last arriver trips
// the barrier. A canceled context breaks the generation: every waiter
// unblocks with ErrBarrierBroken.
func (b *Barrier) Await(ctx context.Context) error {
	b.mu.Lock()
	g := b.gen
	b.count++
	if b.count >= b.parties {
		b.trip(g)
		b.mu.Unlock()
		if g.broken {
			return ErrBarrierBroken
		}
		return nil
	}
	b.mu.Unlock()

	select {
	case <-g.release:
		b.mu.Lock()
		broken := g.broken
		b.mu.Unlock()
		if broken {
			return ErrBarrierBroken
		}
		return nil
	case <-ctx.Done():
		b.mu.Lock()
		if b.gen != g {
			// Released concurrently with the cancellation.
			broken := g.broken
			b.mu.Unlock()
			if broken {
				return ErrBarrierBroken
			}
			return nil
		}
		g.broken = true
		b.trip(g)
		b.mu.Unlock()
		return ErrBarrierBroken
	}
}

// trip releases the current generation and installs the next one.
// Callers must hold b.mu.
func (b *Barrier) trip(g *generation) {
	if b.gen != g {
		return
	}
	close(g.release)
	b.count = 0
	b.gen = &generation{release: make(chan struct{})}
}
