package eventlog

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the event a record describes.
type Kind string

const (
	KindArrive    Kind = "arrive"
	KindSeatTaken Kind = "seat_taken"
	KindServed    Kind = "served"
	KindQueueFull Kind = "queue_full"
)

// Record is one immutable event log row. Ordering between concurrent
// writers is whatever order they acquired the log's lock in, tie-broken
// by PerfNanos.
type Record struct {
	// WallClock is the local timestamp, millisecond precision.
	WallClock time.Time
	// PerfNanos is a monotonic nanosecond counter for relative ordering.
	PerfNanos int64
	// Task is the opaque identity of the writing task.
	Task string
	// Client is the client id; zero means the record has no client.
	Client int
	Kind   Kind
	// QueueLen and Free are the occupancy at the event; they always sum
	// to the room capacity.
	QueueLen int
	Free     int
}

// tsLayout is second precision plus a 3-digit millisecond suffix.
const tsLayout = "2006-01-02 15:04:05.000"

// header is the first row of every log file.
var header = []string{"ts", "perf_ns", "thread", "client", "event", "q_len", "free"}

// fields renders the record as one CSV row.
func (r Record) fields() []string {
	client := ""
	if r.Client != 0 {
		client = strconv.Itoa(r.Client)
	}
	return []string{
		r.WallClock.Format(tsLayout),
		strconv.FormatInt(r.PerfNanos, 10),
		r.Task,
		client,
		string(r.Kind),
		strconv.Itoa(r.QueueLen),
		strconv.Itoa(r.Free),
	}
}

// consoleLine renders the record for the live mirror.
func (r Record) consoleLine() string {
	client := "-"
	if r.Client != 0 {
		client = strconv.Itoa(r.Client)
	}
	return fmt.Sprintf("%s thr=%s client=%s %s q_len=%d free=%d",
		r.WallClock.Format(tsLayout), r.Task, client, r.Kind, r.QueueLen, r.Free)
}

// parseRecord is the inverse of fields, used when reading a log back.
func parseRecord(row []string) (Record, error) {
	if len(row) != len(header) {
		return Record{}, fmt.Errorf("expected %d columns, got %d", len(header), len(row))
	}
	ts, err := time.ParseInLocation(tsLayout, row[0], time.Local)
	if err != nil {
		return Record{}, fmt.Errorf("bad timestamp %q: %w", row[0], err)
	}
	perf, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("bad perf_ns %q: %w", row[1], err)
	}
	client := 0
	if row[3] != "" {
		client, err = strconv.Atoi(row[3])
		if err != nil {
			return Record{}, fmt.Errorf("bad client %q: %w", row[3], err)
		}
	}
	qLen, err := strconv.Atoi(row[5])
	if err != nil {
		return Record{}, fmt.Errorf("bad q_len %q: %w", row[5], err)
	}
	free, err := strconv.Atoi(row[6])
	if err != nil {
		return Record{}, fmt.Errorf("bad free %q: %w", row[6], err)
	}
	return Record{
		WallClock: ts,
		PerfNanos: perf,
		Task:      row[2],
		Client:    client,
		Kind:      Kind(row[4]),
		QueueLen:  qLen,
		Free:      free,
	}, nil
}
