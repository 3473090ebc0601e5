// Package shop owns the shared state of the bounded waiting room: the
// FIFO ticket queue, the chair capacity, and the arrived/served/lost
// counters. Every mutation and snapshot funnels through the state's lock;
// the raw queue is never exposed.
//
// The lock is a syncx.Locker so the safety toggle can swap in the no-op
// variant, and an optional hold delay is kept inside the critical
// sections to widen the interleaving windows under observation.
package shop
