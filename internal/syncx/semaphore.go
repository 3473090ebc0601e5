package syncx

import "time"

// Semaphore is a counting semaphore built on a buffered channel.
//
// Acquire supports a bounded wait so a consumer can poll for work and
// still observe a stop flag promptly. Release tolerates over-signaling:
// permits beyond the channel's capacity are dropped silently, which lets
// shutdown paths wake a blocked waiter without tracking exact counts.
type Semaphore struct {
	permits chan struct{}
}

// NewSemaphore creates a semaphore with the given initial count and an
// upper bound on outstanding permits.
func NewSemaphore(initial, bound int) *Semaphore {
	if bound < 1 {
		bound = 1
	}
	if initial > bound {
		initial = bound
	}
	s := &Semaphore{permits: make(chan struct{}, bound)}
	for i := 0; i < initial; i++ {
		s.permits <- struct{}{}
	}
	return s
}

// Acquire takes one permit, waiting up to timeout. It returns false when
// the timeout elapses first; a timed-out acquire is an expected outcome,
// not an error.
func (s *Semaphore) Acquire(timeout time.Duration) bool {
	if timeout <= 0 {
		select {
		case <-s.permits:
			return true
		default:
			return false
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.permits:
		return true
	case <-timer.C:
		return false
	}
}

// Release returns n permits. Releases beyond the semaphore's bound are
// swallowed; shutdown is allowed to over-signal.
func (s *Semaphore) Release(n int) {
	for i := 0; i < n; i++ {
		select {
		case s.permits <- struct{}{}:
		default:
			return
		}
	}
}

// Available reports the current permit count. Advisory only.
func (s *Semaphore) Available() int {
	return len(s.permits)
}
