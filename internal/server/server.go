// Package server exposes an optional observation endpoint for long
// repeated-burst runs: Prometheus metrics, a health probe, and a JSON
// snapshot of the latest burst outcome. It is off unless an address is
// configured.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/okulov/barbersim/internal/logging"
	"github.com/okulov/barbersim/internal/monitoring"
	"github.com/okulov/barbersim/internal/sim"
)

// Status is the JSON snapshot served at /status.
type Status struct {
	Bursts     int     `json:"bursts"`
	Arrived    int     `json:"arrived"`
	Served     int     `json:"served"`
	Lost       int     `json:"lost"`
	Violations int     `json:"violations"`
	LastRunID  string  `json:"last_run_id,omitempty"`
	LastLog    string  `json:"last_log,omitempty"`
	LastMS     int64   `json:"last_duration_ms"`
	MeanWaitMS float64 `json:"mean_wait_ms"`
}

// Tracker accumulates burst summaries for /status. Safe for concurrent
// use; wire Record as the orchestrator's per-burst callback.
type Tracker struct {
	mu     sync.Mutex
	status Status
}

// Record folds one burst summary into the status.
func (t *Tracker) Record(s *sim.Summary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Bursts++
	t.status.Arrived += s.Arrived
	t.status.Served += s.Served
	t.status.Lost += s.Lost
	t.status.Violations += len(s.Violations)
	t.status.LastRunID = s.RunID
	t.status.LastLog = s.LogPath
	t.status.LastMS = s.Duration.Milliseconds()
	t.status.MeanWaitMS = s.Waits.MeanMS
}

// Snapshot returns a copy of the current status.
func (t *Tracker) Snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Server is the observation HTTP server.
type Server struct {
	addr   string
	router *gin.Engine
	http   *http.Server
	logger *logging.Logger
}

// New creates the observation server. It does not listen until Start.
func New(addr string, metrics *monitoring.Metrics, tracker *Tracker, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, tracker.Snapshot())
	})

	return &Server{
		addr:   addr,
		router: router,
		http:   &http.Server{Addr: addr, Handler: router},
		logger: logger,
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens in a background goroutine.
func (s *Server) Start() {
	s.logger.Info("observation endpoint listening", zap.String("addr", s.addr))
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("observation endpoint failed", zap.Error(err))
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
