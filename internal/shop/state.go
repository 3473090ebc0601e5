package shop

import (
	"time"

	"github.com/okulov/barbersim/internal/syncx"
)

// State is the shared waiting room. All fields are guarded by mu; when
// the safety toggle is off, mu is a no-op lock and the guarantees here
// hold only by luck.
type State struct {
	mu       syncx.Locker
	capacity int
	hold     time.Duration

	queue   []*Ticket
	arrived int
	served  int
	lost    int
}

// Options configures a waiting room.
type Options struct {
	// Capacity is the number of chairs.
	Capacity int
	// LockHold is kept inside every mutating critical section. It is a
	// contention amplifier for observation, not incidental latency.
	LockHold time.Duration
	// Safety selects the real lock; off swaps in the no-op variant.
	Safety bool
}

// New creates an empty waiting room.
func New(opts Options) *State {
	return &State{
		mu:       syncx.NewLocker(opts.Safety),
		capacity: opts.Capacity,
		hold:     opts.LockHold,
	}
}

// Capacity returns the number of chairs.
func (s *State) Capacity() int {
	return s.capacity
}

// Arrive increments the arrival counter and returns the occupancy as it
// was before this client's own admission attempt. The pre-admission
// snapshot is intentional: the arrive record reflects the room the client
// walked into, not the room after it sat down.
func (s *State) Arrive() (queueLen, free int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arrived++
	return len(s.queue), s.capacity - len(s.queue)
}

// TrySeat appends the ticket when a chair is free. The returned snapshot
// is taken in the same critical section as the mutation so it is never
// torn. At most one attempt per client; there is no retry path.
func (s *State) TrySeat(t *Ticket) (admitted bool, queueLen, free int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdLock()
	if len(s.queue) < s.capacity {
		s.queue = append(s.queue, t)
		admitted = true
	}
	return admitted, len(s.queue), s.capacity - len(s.queue)
}

// DequeueNext pops the head of the queue, or nil when it is empty.
// Service order is queue insertion order.
func (s *State) DequeueNext() *Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdLock()
	if len(s.queue) == 0 {
		return nil
	}
	t := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return t
}

// MarkServed increments the served counter.
func (s *State) MarkServed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.served++
}

// MarkLost increments the lost counter and returns the current occupancy
// for the rejection record.
func (s *State) MarkLost() (queueLen, free int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lost++
	return len(s.queue), s.capacity - len(s.queue)
}

// Snapshot returns the current queue length and free chairs.
func (s *State) Snapshot() (queueLen, free int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue), s.capacity - len(s.queue)
}

// Counters returns the arrived/served/lost counters.
func (s *State) Counters() (arrived, served, lost int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arrived, s.served, s.lost
}

// holdLock sleeps inside the critical section. Callers must hold mu.
func (s *State) holdLock() {
	if s.hold > 0 {
		time.Sleep(s.hold)
	}
}
