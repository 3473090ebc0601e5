package syncx

import (
	"sync"
	"time"
)

// Event is a one-shot signal with exactly one transition from unset to
// signaled. Signaling more than once is harmless.
type Event struct {
	once sync.Once
	done chan struct{}
}

// NewEvent creates an unsignaled event.
func NewEvent() *Event {
	return &Event{done: make(chan struct{})}
}

// Signal marks the event. Redundant signals are swallowed.
func (e *Event) Signal() {
	e.once.Do(func() { close(e.done) })
}

// Wait blocks until the event is signaled or the timeout elapses.
// A timeout of zero or less waits indefinitely.
func (e *Event) Wait(timeout time.Duration) bool {
	if timeout <= 0 {
		<-e.done
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-e.done:
		return true
	case <-timer.C:
		return false
	}
}

// Done exposes the signal channel for select-based waiters.
func (e *Event) Done() <-chan struct{} {
	return e.done
}

// Signaled reports whether Signal has been called.
func (e *Event) Signaled() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}
