package shop

import "github.com/okulov/barbersim/internal/syncx"

// Ticket is the admission record for one client. It is owned by the
// (client, barber) pair for its lifetime: the client creates it, the
// barber dequeues it and signals Done exactly once when service finishes.
type Ticket struct {
	ID   int
	Done *syncx.Event
}

// NewTicket creates a ticket with an unsignaled completion event.
func NewTicket(id int) *Ticket {
	return &Ticket{ID: id, Done: syncx.NewEvent()}
}
