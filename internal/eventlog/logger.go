// Package eventlog is the append-only, timestamped record sink for the
// simulation. Every record is written to a durable CSV file with an
// immediate flush and mirrored to a live console stream. Records are
// never rewritten or removed.
package eventlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/okulov/barbersim/internal/logging"
)

// processStart anchors the monotonic PerfNanos counter.
var processStart = time.Now()

// PerfNanos returns nanoseconds since process start, drawn from the
// monotonic clock.
func PerfNanos() int64 {
	return time.Since(processStart).Nanoseconds()
}

// Log serializes writers through its own mutex, kept distinct from the
// shop lock so no one holds the shop state during file I/O.
type Log struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	csv    *csv.Writer
	mirror io.Writer
	oplog  *logging.Logger
	closed bool
}

// Open creates the log file, writes the header row, and returns the log.
// Each appended record is mirrored to the mirror writer; pass nil to
// disable mirroring.
func Open(path string, mirror io.Writer, oplog *logging.Logger) (*Log, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}
	if oplog == nil {
		oplog = logging.NewNop()
	}
	l := &Log{
		path:   path,
		file:   file,
		csv:    csv.NewWriter(file),
		mirror: mirror,
		oplog:  oplog,
	}
	if err := l.csv.Write(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write event log header: %w", err)
	}
	l.csv.Flush()
	if err := l.csv.Error(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to flush event log header: %w", err)
	}
	return l, nil
}

// Path returns the location of the persisted log file.
func (l *Log) Path() string {
	return l.path
}

// Append writes one record to the file, flushes it, and mirrors the same
// line to the console stream. Missing timestamps are stamped at append
// time. Sink failures are logged, never propagated: a failing row must
// not take the run down.
func (l *Log) Append(r Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	// Stamped under the lock so file order and counter order agree.
	if r.WallClock.IsZero() {
		r.WallClock = time.Now()
	}
	if r.PerfNanos == 0 {
		r.PerfNanos = PerfNanos()
	}
	if l.closed {
		l.oplog.Warn("append to closed event log dropped", zap.String("event", string(r.Kind)))
		return
	}
	if err := l.csv.Write(r.fields()); err != nil {
		l.oplog.Error("event log write failed", zap.Error(err))
	}
	l.csv.Flush()
	if err := l.csv.Error(); err != nil {
		l.oplog.Error("event log flush failed", zap.Error(err))
	}
	if l.mirror != nil {
		if _, err := fmt.Fprintln(l.mirror, r.consoleLine()); err != nil {
			l.oplog.Error("event log mirror failed", zap.Error(err))
		}
	}
}

// Close flushes and closes the sink. Failures are logged and swallowed;
// closing must never prevent process exit.
func (l *Log) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.csv.Flush()
	if err := l.csv.Error(); err != nil {
		l.oplog.Error("event log final flush failed", zap.Error(err))
	}
	if err := l.file.Close(); err != nil {
		l.oplog.Error("event log close failed", zap.Error(err))
	}
}

// ReadRecords parses a persisted log back into records, skipping the
// header row. It exists for post-run verification.
func ReadRecords(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse event log: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("event log %s has no header", path)
	}
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		r, err := parseRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
