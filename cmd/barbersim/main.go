package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/okulov/barbersim/internal/config"
	"github.com/okulov/barbersim/internal/logging"
	"github.com/okulov/barbersim/internal/monitoring"
	"github.com/okulov/barbersim/internal/server"
	"github.com/okulov/barbersim/internal/sim"
)

func main() {
	cfg := config.LoadOrDefault()

	// Flag defaults mirror the environment-derived values; only flags
	// the user actually set override the scenario file.
	scenario := flag.String("scenario", "", "YAML scenario file")
	capacity := flag.Int("capacity", cfg.Sim.Capacity, "Number of chairs in the waiting room")
	burst := flag.Int("burst", cfg.Sim.BurstSize, "Number of clients released simultaneously")
	haircutMin := flag.Int("haircut-min", cfg.Sim.HaircutMinMS, "Minimum haircut duration (ms)")
	haircutMax := flag.Int("haircut-max", cfg.Sim.HaircutMaxMS, "Maximum haircut duration (ms)")
	fibWork := flag.Int("fib", cfg.Sim.FibWork, "Synthetic CPU work size")
	lockHold := flag.Int("hold", cfg.Sim.LockHoldMS, "Artificial critical-section hold (ms)")
	safety := flag.Bool("safety", cfg.Sim.Safety, "Use the real lock; false demonstrates races")
	seed := flag.Int64("seed", cfg.Sim.Seed, "Seed for haircut-duration draws")
	repeat := flag.Int("repeat", cfg.Sim.Repeat, "Number of consecutive bursts")
	logDir := flag.String("log-dir", cfg.Sim.LogDir, "Directory for event log files")
	httpAddr := flag.String("http", cfg.HTTP.Addr, "Observation endpoint address (empty disables)")
	dev := flag.Bool("dev", cfg.Logging.Development, "Verbose development logging")
	flag.Parse()

	if *scenario != "" {
		if err := cfg.ApplyScenario(*scenario); err != nil {
			log.Fatalf("Failed to load scenario: %v", err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "capacity":
			cfg.Sim.Capacity = *capacity
		case "burst":
			cfg.Sim.BurstSize = *burst
		case "haircut-min":
			cfg.Sim.HaircutMinMS = *haircutMin
		case "haircut-max":
			cfg.Sim.HaircutMaxMS = *haircutMax
		case "fib":
			cfg.Sim.FibWork = *fibWork
		case "hold":
			cfg.Sim.LockHoldMS = *lockHold
		case "safety":
			cfg.Sim.Safety = *safety
		case "seed":
			cfg.Sim.Seed = *seed
		case "repeat":
			cfg.Sim.Repeat = *repeat
		case "log-dir":
			cfg.Sim.LogDir = *logDir
		case "http":
			cfg.HTTP.Addr = *httpAddr
		case "dev":
			cfg.Logging.Development = *dev
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		log.Printf("Invalid log level %q, using defaults: %v", cfg.Logging.Level, err)
		logger = logging.NewDefault()
	}
	defer logger.Sync()

	logger.Info("Starting waiting-room simulation",
		zap.Int("capacity", cfg.Sim.Capacity),
		zap.Int("burst_size", cfg.Sim.BurstSize),
		zap.Int("repeat", cfg.Sim.Repeat),
		zap.Bool("safety", cfg.Sim.Safety),
		zap.Int64("seed", cfg.Sim.Seed),
	)

	metrics := monitoring.NewMetrics()
	tracker := &server.Tracker{}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var obs *server.Server
	if cfg.HTTP.Addr != "" {
		obs = server.New(cfg.HTTP.Addr, metrics, tracker, logger)
		obs.Start()
	}

	orchestrator := sim.NewOrchestrator(cfg.Sim, logger, metrics).WithOnBurst(tracker.Record)
	summaries, err := orchestrator.Run(ctx)
	if err != nil {
		// An interrupted or failed burst is reported, not fatal; the
		// summaries collected so far still stand.
		logger.Warn("Run ended early", zap.Error(err))
	}

	violations := 0
	for _, s := range summaries {
		violations += len(s.Violations)
	}
	logger.Info("Run complete",
		zap.Int("bursts", len(summaries)),
		zap.Int("invariant_violations", violations),
	)

	if obs != nil {
		if err := obs.Shutdown(context.Background()); err != nil {
			logger.Warn("Observation endpoint shutdown failed", zap.Error(err))
		}
	}
}
