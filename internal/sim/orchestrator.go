package sim

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/okulov/barbersim/internal/config"
	"github.com/okulov/barbersim/internal/eventlog"
	"github.com/okulov/barbersim/internal/logging"
	"github.com/okulov/barbersim/internal/monitoring"
	"github.com/okulov/barbersim/internal/shop"
	"github.com/okulov/barbersim/internal/syncx"
)

// Orchestrator runs bursts: it builds the room, starts the barber,
// releases all arrivals simultaneously through a shared barrier, joins
// them, stops the barber, and reports the final account.
type Orchestrator struct {
	cfg     config.SimConfig
	oplog   *logging.Logger
	metrics *monitoring.Metrics
	mirror  io.Writer
	onBurst func(*Summary)
}

// NewOrchestrator creates an orchestrator for the given parameters.
// Event rows and summaries are mirrored to stdout by default.
func NewOrchestrator(cfg config.SimConfig, oplog *logging.Logger, metrics *monitoring.Metrics) *Orchestrator {
	if oplog == nil {
		oplog = logging.NewNop()
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	return &Orchestrator{
		cfg:     cfg,
		oplog:   oplog,
		metrics: metrics,
		mirror:  os.Stdout,
	}
}

// WithMirror redirects the live console stream. Used by tests.
func (o *Orchestrator) WithMirror(w io.Writer) *Orchestrator {
	o.mirror = w
	return o
}

// WithOnBurst registers a callback invoked after every completed burst,
// e.g. to feed a live status endpoint.
func (o *Orchestrator) WithOnBurst(fn func(*Summary)) *Orchestrator {
	o.onBurst = fn
	return o
}

// Run executes the configured number of consecutive bursts. It stops
// early when the context is canceled, returning the summaries collected
// so far.
func (o *Orchestrator) Run(ctx context.Context) ([]*Summary, error) {
	summaries := make([]*Summary, 0, o.cfg.Repeat)
	for i := 0; i < o.cfg.Repeat; i++ {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}
		summary, err := o.RunBurst(ctx)
		if err != nil {
			return summaries, fmt.Errorf("burst %d/%d failed: %w", i+1, o.cfg.Repeat, err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// RunBurst executes a single burst and returns its summary. An error is
// returned only for setup failures; invariant violations are reported in
// the summary and the operational log, they never abort the run.
func (o *Orchestrator) RunBurst(ctx context.Context) (*Summary, error) {
	cfg := o.cfg
	runID := uuid.New().String()

	name := fmt.Sprintf("burst_%s_%s.csv", time.Now().Format("20060102_150405"), runID[:8])
	path := filepath.Join(cfg.LogDir, name)
	events, err := eventlog.Open(path, o.mirror, o.oplog)
	if err != nil {
		return nil, err
	}
	defer events.Close()

	room := shop.New(shop.Options{
		Capacity: cfg.Capacity,
		LockHold: cfg.LockHold(),
		Safety:   cfg.Safety,
	})
	customers := syncx.NewSemaphore(0, cfg.BurstSize+1)
	haircuts := NewHaircutTimer(cfg.Seed, cfg.HaircutMinMS, cfg.HaircutMaxMS)

	barber := NewBarber(BarberConfig{FibWork: cfg.FibWork, Poll: cfg.Poll()}, room, customers, haircuts, o.oplog, o.metrics)
	barber.Start()

	// Without the real lock a seated ticket can be lost to a race and
	// its owner would wait forever; bound the whole burst instead.
	runCtx := ctx
	if !cfg.Safety {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.unsafeBound())
		defer cancel()
	}

	// Arrivals plus the orchestrator itself; the orchestrator's own
	// await is what triggers the simultaneous release.
	barrier := syncx.NewBarrier(cfg.BurstSize + 1)
	waits := make(chan time.Duration, cfg.BurstSize)

	g, gctx := errgroup.WithContext(runCtx)
	for i := 1; i <= cfg.BurstSize; i++ {
		client := NewClient(i, room, customers, barrier, events, o.oplog, o.metrics, waits)
		g.Go(func() error { return client.Run(gctx) })
	}

	if err := barrier.Await(runCtx); err != nil {
		o.oplog.Warn("release barrier broken", zap.String("run_id", runID), zap.Error(err))
	}
	releasedAt := time.Now()
	o.oplog.Info("burst released",
		zap.String("run_id", runID),
		zap.Int("burst_size", cfg.BurstSize),
		zap.Int("capacity", cfg.Capacity),
		zap.Bool("safety", cfg.Safety),
	)

	if err := g.Wait(); err != nil {
		o.oplog.Warn("arrival task aborted", zap.String("run_id", runID), zap.Error(err))
	}
	duration := time.Since(releasedAt)

	// Let in-flight log writes land before stopping the barber.
	time.Sleep(cfg.Settle())
	barber.Stop()
	if !barber.Join(cfg.JoinTimeout()) {
		o.oplog.Warn("barber missed the join deadline, abandoned", zap.String("run_id", runID))
	}
	events.Close()

	close(waits)
	collected := make([]time.Duration, 0, cfg.BurstSize)
	for w := range waits {
		collected = append(collected, w)
	}

	violations := room.CheckInvariants()
	o.metrics.RecordViolations(len(violations))
	for _, v := range violations {
		o.oplog.Warn("invariant violated",
			zap.String("run_id", runID),
			zap.String("rule", v.Rule),
			zap.String("detail", v.Detail),
		)
	}

	arrived, served, lost := room.Counters()
	qLen, free := room.Snapshot()
	o.metrics.SetOccupancy(qLen, free)
	o.metrics.RecordBurst()

	summary := &Summary{
		RunID:      runID,
		LogPath:    path,
		Arrived:    arrived,
		Served:     served,
		Lost:       lost,
		QueueLen:   qLen,
		Free:       free,
		Duration:   duration,
		Waits:      computeWaitStats(collected),
		Violations: violations,
	}
	// The summary line and the log path stay adjacent so scripted
	// consumers can read them as a pair.
	fmt.Fprintln(o.mirror, summary.Line())
	fmt.Fprintln(o.mirror, path)
	fmt.Fprintln(o.mirror, summary.WaitLine())
	if o.onBurst != nil {
		o.onBurst(summary)
	}
	return summary, nil
}

// unsafeBound is a generous ceiling on one burst without the real lock.
func (o *Orchestrator) unsafeBound() time.Duration {
	cfg := o.cfg
	perClient := time.Duration(cfg.HaircutMaxMS+2*cfg.LockHoldMS+cfg.PollMS) * time.Millisecond
	return time.Duration(cfg.BurstSize+1)*perClient + 5*time.Second
}
