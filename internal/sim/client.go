package sim

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/okulov/barbersim/internal/eventlog"
	"github.com/okulov/barbersim/internal/logging"
	"github.com/okulov/barbersim/internal/monitoring"
	"github.com/okulov/barbersim/internal/shop"
	"github.com/okulov/barbersim/internal/syncx"
)

// Client is one short-lived arrival task. It joins the release barrier,
// makes exactly one admission attempt, and either waits for its ticket
// to be served or leaves. A rejected client never retries.
type Client struct {
	id        int
	shop      *shop.State
	customers *syncx.Semaphore
	barrier   *syncx.Barrier
	events    *eventlog.Log
	oplog     *logging.Logger
	metrics   *monitoring.Metrics

	// waits receives the admission-to-service duration of a served
	// client; nil disables reporting.
	waits chan<- time.Duration
}

// NewClient creates an arrival task with the given id.
func NewClient(id int, room *shop.State, customers *syncx.Semaphore, barrier *syncx.Barrier, events *eventlog.Log, oplog *logging.Logger, metrics *monitoring.Metrics, waits chan<- time.Duration) *Client {
	if oplog == nil {
		oplog = logging.NewNop()
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	return &Client{
		id:        id,
		shop:      room,
		customers: customers,
		barrier:   barrier,
		events:    events,
		oplog:     oplog,
		metrics:   metrics,
		waits:     waits,
	}
}

// Run executes the arrival sequence. A broken release barrier is
// non-fatal: the client proceeds alone rather than deadlock.
func (c *Client) Run(ctx context.Context) error {
	if err := c.barrier.Await(ctx); err != nil {
		c.oplog.Warn("release barrier broken, proceeding", zap.Int("client", c.id), zap.Error(err))
	}

	// The arrive record reflects occupancy before this client's own
	// admission attempt.
	qLen, free := c.shop.Arrive()
	c.metrics.RecordArrival()
	c.append(eventlog.KindArrive, qLen, free)

	ticket := shop.NewTicket(c.id)
	admitted, qLen, free := c.shop.TrySeat(ticket)
	if !admitted {
		qLen, free = c.shop.MarkLost()
		c.metrics.RecordLost()
		c.append(eventlog.KindQueueFull, qLen, free)
		return nil
	}

	c.metrics.SetOccupancy(qLen, free)
	c.append(eventlog.KindSeatTaken, qLen, free)
	seatedAt := time.Now()

	// Wake the barber, then block until this ticket is served.
	c.customers.Release(1)
	select {
	case <-ticket.Done.Done():
	case <-ctx.Done():
		return fmt.Errorf("client %d abandoned while seated: %w", c.id, ctx.Err())
	}

	wait := time.Since(seatedAt)
	c.metrics.RecordWait(wait)
	if c.waits != nil {
		c.waits <- wait
	}

	qLen, free = c.shop.Snapshot()
	c.append(eventlog.KindServed, qLen, free)
	return nil
}

func (c *Client) append(kind eventlog.Kind, qLen, free int) {
	c.events.Append(eventlog.Record{
		Task:     c.task(),
		Client:   c.id,
		Kind:     kind,
		QueueLen: qLen,
		Free:     free,
	})
}

func (c *Client) task() string {
	return fmt.Sprintf("client-%02d", c.id)
}
