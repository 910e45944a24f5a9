// Package metrics exposes process-wide Prometheus metrics for the case store.
//
// # Basic Usage
//
//	metrics.PagesIn.Inc()
//	timer := metrics.NewTimer()
//	page, err := load()
//	metrics.PageInLatency.Observe(float64(timer.Stop().Nanoseconds()))
//
// Every datasheet in the process updates the same collectors; per-sheet
// figures are available from the datasheet's own Stats.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesIn counts pages decoded from a spill backing.
	PagesIn = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casesheet_pages_in_total",
			Help: "Total number of pages read back from spill storage",
		},
	)

	// PagesOut counts pages encoded and written to a spill backing.
	PagesOut = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casesheet_pages_out_total",
			Help: "Total number of pages written to spill storage",
		},
	)

	// PageCache counts page lookups. Labels: result (hit/miss)
	PageCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casesheet_page_cache_lookups_total",
			Help: "Page cache lookups by result",
		},
		[]string{"result"},
	)

	// PageIOErrors counts failed paging operations. Labels: op (read/write/source)
	PageIOErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casesheet_page_io_errors_total",
			Help: "Failed page reads, page writes and source reads",
		},
		[]string{"op"},
	)

	// ResidentPages tracks pages currently held in memory across all sheets.
	ResidentPages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "casesheet_resident_pages",
			Help: "Number of datasheet pages resident in memory",
		},
	)

	// SpillBytes tracks bytes currently allocated in spill backings.
	SpillBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "casesheet_spill_bytes",
			Help: "Bytes written to live spill backings",
		},
	)

	// PageInLatency tracks the time to fetch and decode one page in nanoseconds.
	PageInLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "casesheet_page_in_latency_nanoseconds",
			Help: "Page-in latency in nanoseconds",
			Buckets: []float64{
				1000,  // 1μs - decode from page cache of the OS
				10000, // 10μs
				1e5,   // 100μs
				1e6,   // 1ms - cold disk read
				1e7,   // 10ms
				1e8,   // 100ms
			},
		},
	)

	// ImportThroughput tracks records per second of the running text import.
	ImportThroughput = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "casesheet_import_records_per_second",
			Help: "Current text import throughput in records per second",
		},
	)
)

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed duration since creation. It may be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ThroughputTracker tracks records per second over time windows and
// publishes the figure to a gauge when queried. Safe for concurrent use.
type ThroughputTracker struct {
	mu        sync.Mutex
	count     int64
	lastReset time.Time
	gauge     prometheus.Gauge
}

// NewThroughputTracker creates a tracker publishing to gauge. A nil gauge
// only computes the rate.
func NewThroughputTracker(gauge prometheus.Gauge) *ThroughputTracker {
	return &ThroughputTracker{lastReset: time.Now(), gauge: gauge}
}

// Increment adds n to the record count.
func (t *ThroughputTracker) Increment(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count += n
}

// GetAndReset returns the throughput since the last reset, updates the gauge
// and starts a new window.
func (t *ThroughputTracker) GetAndReset() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.lastReset).Seconds()
	if elapsed == 0 {
		return 0
	}

	throughput := float64(t.count) / elapsed
	t.count = 0
	t.lastReset = time.Now()

	if t.gauge != nil {
		t.gauge.Set(throughput)
	}
	return throughput
}
