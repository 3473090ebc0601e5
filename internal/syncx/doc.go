// Package syncx provides the synchronization capabilities the waiting-room
// simulation is built on: a swappable exclusive lock, a counting semaphore
// with bounded-wait acquire, a one-shot event, and a reusable multi-party
// barrier.
//
// The lock is deliberately swappable with a no-op variant behind the same
// interface. Running the simulation with the no-op lock is how the race
// demonstration works; callers never know which variant is active.
package syncx
