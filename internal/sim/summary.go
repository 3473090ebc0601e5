package sim

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/okulov/barbersim/internal/shop"
)

// WaitStats summarizes the admission-to-service waits of the served
// clients in one burst.
type WaitStats struct {
	Count  int
	MeanMS float64
	StdMS  float64
	MinMS  float64
	MaxMS  float64
}

func computeWaitStats(waits []time.Duration) WaitStats {
	if len(waits) == 0 {
		return WaitStats{}
	}
	ms := make([]float64, len(waits))
	for i, w := range waits {
		ms[i] = float64(w.Milliseconds())
	}
	stats := WaitStats{
		Count:  len(ms),
		MeanMS: stat.Mean(ms, nil),
		MinMS:  floats.Min(ms),
		MaxMS:  floats.Max(ms),
	}
	if len(ms) > 1 {
		stats.StdMS = stat.StdDev(ms, nil)
	}
	return stats
}

// Summary is the final account of one burst.
type Summary struct {
	RunID    string
	LogPath  string
	Arrived  int
	Served   int
	Lost     int
	QueueLen int
	Free     int
	// Duration is measured from the barrier release to the completion
	// of the join on all arrivals.
	Duration   time.Duration
	Waits      WaitStats
	Violations []shop.Violation
}

// Line renders the one-line account printed at the end of a burst.
func (s *Summary) Line() string {
	return fmt.Sprintf("arrived=%d served=%d lost=%d q_len=%d free=%d duration_ms=%d",
		s.Arrived, s.Served, s.Lost, s.QueueLen, s.Free, s.Duration.Milliseconds())
}

// WaitLine renders the waiting-time statistics of the served clients.
func (s *Summary) WaitLine() string {
	if s.Waits.Count == 0 {
		return "waits: none"
	}
	return fmt.Sprintf("waits: n=%d mean_ms=%.1f std_ms=%.1f min_ms=%.0f max_ms=%.0f",
		s.Waits.Count, s.Waits.MeanMS, s.Waits.StdMS, s.Waits.MinMS, s.Waits.MaxMS)
}
