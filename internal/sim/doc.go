// Package sim wires the waiting room together: the barber draining the
// queue, one short-lived task per arriving client, and the orchestrator
// that releases every arrival simultaneously through a shared barrier,
// joins them, and reports the final account.
package sim
