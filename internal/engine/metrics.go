package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// stats accumulates one leaf invocation's iteration outcomes: counts and
// a latency histogram, no time-series bucketing and no per-phase history,
// since nothing downstream of one leaf's callback consumes that.
type stats struct {
	hist   *hdrhistogram.Histogram
	histMu sync.Mutex

	iterations atomic.Int64
	successes  atomic.Int64
	failures   atomic.Int64
	bytesRead  atomic.Int64
}

func newStats() *stats {
	// 1 microsecond to 1 hour, 3 significant figures: comfortably covers
	// a load-test iteration's latency range.
	return &stats{hist: hdrhistogram.New(1, 3_600_000_000, 3)}
}

func (s *stats) record(latency time.Duration, success bool, bytes int64) {
	micros := latency.Microseconds()
	if micros < 1 {
		micros = 1
	}
	s.histMu.Lock()
	s.hist.RecordValue(micros)
	s.histMu.Unlock()

	s.iterations.Add(1)
	s.bytesRead.Add(bytes)
	if success {
		s.successes.Add(1)
	} else {
		s.failures.Add(1)
	}
}

// Summary is the aggregated, sample-free view of a leaf's run attached to
// its Report: percentiles and counts only, never the raw per-iteration
// latency series.
type Summary struct {
	Iterations int64         `json:"iterations"`
	Successes  int64         `json:"successes"`
	Failures   int64         `json:"failures"`
	BytesRead  int64         `json:"bytesRead"`
	P50        time.Duration `json:"p50"`
	P95        time.Duration `json:"p95"`
	P99        time.Duration `json:"p99"`
	Max        time.Duration `json:"max"`
}

func (s *stats) summary() Summary {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	return Summary{
		Iterations: s.iterations.Load(),
		Successes:  s.successes.Load(),
		Failures:   s.failures.Load(),
		BytesRead:  s.bytesRead.Load(),
		P50:        time.Duration(s.hist.ValueAtQuantile(50)) * time.Microsecond,
		P95:        time.Duration(s.hist.ValueAtQuantile(95)) * time.Microsecond,
		P99:        time.Duration(s.hist.ValueAtQuantile(99)) * time.Microsecond,
		Max:        time.Duration(s.hist.Max()) * time.Microsecond,
	}
}
