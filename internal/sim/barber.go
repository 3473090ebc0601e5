package sim

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/okulov/barbersim/internal/logging"
	"github.com/okulov/barbersim/internal/monitoring"
	"github.com/okulov/barbersim/internal/shop"
	"github.com/okulov/barbersim/internal/syncx"
)

// BarberState tracks where the barber is in its loop.
type BarberState int32

const (
	BarberIdle BarberState = iota
	BarberWaiting
	BarberServing
	BarberStopped
)

// String returns the string representation of the state.
func (s BarberState) String() string {
	switch s {
	case BarberIdle:
		return "idle"
	case BarberWaiting:
		return "waiting"
	case BarberServing:
		return "serving"
	case BarberStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// BarberConfig configures the server worker.
type BarberConfig struct {
	// FibWork is the depth of the synthetic CPU workload per client.
	FibWork int
	// Poll bounds each semaphore wait so the stop flag is observed
	// promptly.
	Poll time.Duration
}

// Barber is the single long-lived worker draining the waiting room.
// It polls the admission semaphore with a bounded wait, dequeues the
// next ticket under the shop lock, burns CPU, sleeps the drawn haircut
// duration, signals the ticket, and records the service.
type Barber struct {
	cfg       BarberConfig
	shop      *shop.State
	customers *syncx.Semaphore
	haircuts  *HaircutTimer
	oplog     *logging.Logger
	metrics   *monitoring.Metrics

	state atomic.Int32
	stop  atomic.Bool
	done  chan struct{}
}

// NewBarber creates a barber draining the given room. The semaphore is
// the admission signal clients release after a successful seat.
func NewBarber(cfg BarberConfig, room *shop.State, customers *syncx.Semaphore, haircuts *HaircutTimer, oplog *logging.Logger, metrics *monitoring.Metrics) *Barber {
	if cfg.Poll <= 0 {
		cfg.Poll = 100 * time.Millisecond
	}
	if oplog == nil {
		oplog = logging.NewNop()
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	return &Barber{
		cfg:       cfg,
		shop:      room,
		customers: customers,
		haircuts:  haircuts,
		oplog:     oplog,
		metrics:   metrics,
		done:      make(chan struct{}),
	}
}

// Start launches the barber goroutine.
func (b *Barber) Start() {
	go b.loop()
}

// State returns the barber's current state.
func (b *Barber) State() BarberState {
	return BarberState(b.state.Load())
}

// Stop sets the stop flag and over-signals the semaphore once so a
// blocked final wait unblocks and observes the flag.
func (b *Barber) Stop() {
	b.stop.Store(true)
	b.customers.Release(1)
}

// Join waits for the barber goroutine to exit, best-effort. A false
// return means the barber is late and has been abandoned, not killed.
func (b *Barber) Join(timeout time.Duration) bool {
	if timeout <= 0 {
		<-b.done
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-b.done:
		return true
	case <-timer.C:
		return false
	}
}

func (b *Barber) loop() {
	defer close(b.done)
	defer b.state.Store(int32(BarberStopped))

	for !b.stop.Load() {
		b.state.Store(int32(BarberWaiting))
		if !b.customers.Acquire(b.cfg.Poll) {
			// Timed-out poll: expected, just re-check the stop flag.
			continue
		}
		ticket := b.shop.DequeueNext()
		if ticket == nil {
			// Spurious wake, typically the shutdown over-signal.
			continue
		}

		b.state.Store(int32(BarberServing))
		Fib(b.cfg.FibWork)
		duration := b.haircuts.Next()
		time.Sleep(duration)

		ticket.Done.Signal()
		b.shop.MarkServed()
		b.metrics.RecordServed(duration)
		b.metrics.SetOccupancy(b.shop.Snapshot())

		b.oplog.Debug("client served",
			zap.Int("client", ticket.ID),
			zap.Duration("haircut", duration),
		)
		b.state.Store(int32(BarberIdle))
	}
}
