// Package perf collects request and query timings in a fixed-size ring
// buffer. Writes are cheap and lock-bounded; aggregation happens only
// when a snapshot is read.
package perf

import (
	"sort"
	"sync"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Path       string // HTTP path or "store.Method"
	StatusCode int    // HTTP status (0 for queries)
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer for timing entries. When full,
// the oldest entries are overwritten.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int
	filled  bool
}

// NewCollector creates a collector with the given ring capacity.
// PRE: size > 0 (non-positive falls back to DefaultRingSize)
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size), size: size}
}

// Record appends an entry, overwriting the oldest when full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos++
	if c.pos == c.size {
		c.pos = 0
		c.filled = true
	}
	c.mu.Unlock()
}

// PathStats is the aggregated timing for one path.
type PathStats struct {
	Path      string
	Count     int
	MeanMs    float64
	P95Ms     float64
	SlowestMs float64
}

// Snapshot aggregates the buffered entries of one kind per path.
// INVARIANT: the buffer is not modified
func (c *Collector) Snapshot(kind EntryKind) []PathStats {
	c.mu.Lock()
	n := c.pos
	if c.filled {
		n = c.size
	}
	byPath := make(map[string][]float64)
	for i := 0; i < n; i++ {
		e := c.entries[i]
		if e.Kind != kind {
			continue
		}
		byPath[e.Path] = append(byPath[e.Path], e.DurationMs)
	}
	c.mu.Unlock()

	out := make([]PathStats, 0, len(byPath))
	for path, durations := range byPath {
		sort.Float64s(durations)
		var sum float64
		for _, d := range durations {
			sum += d
		}
		idx := (len(durations) * 95) / 100
		if idx >= len(durations) {
			idx = len(durations) - 1
		}
		out = append(out, PathStats{
			Path:      path,
			Count:     len(durations),
			MeanMs:    sum / float64(len(durations)),
			P95Ms:     durations[idx],
			SlowestMs: durations[len(durations)-1],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].P95Ms > out[j].P95Ms })
	return out
}
