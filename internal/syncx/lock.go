package syncx

import "sync"

// Locker is the exclusive lock the shared shop state is guarded by.
// It matches sync.Locker so a *sync.Mutex satisfies it directly.
type Locker interface {
	Lock()
	Unlock()
}

// NopLocker performs no exclusion at all. It exists so the safety toggle
// can swap the real mutex out without callers noticing; with it active,
// critical sections overlap freely and invariant violations become
// observable.
type NopLocker struct{}

// Lock is a no-op.
func (NopLocker) Lock() {}

// Unlock is a no-op.
func (NopLocker) Unlock() {}

// NewLocker returns a real mutex when safety is enabled and a NopLocker
// otherwise.
func NewLocker(safety bool) Locker {
	if safety {
		return &sync.Mutex{}
	}
	return NopLocker{}
}
