package report

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// LatencyStats aggregates scenario durations into a latency distribution.
type LatencyStats struct {
	histogram *hdrhistogram.Histogram
	count     int64
}

// NewLatencyStats creates a collector covering 1us to 60s with 3
// significant digits.
func NewLatencyStats() *LatencyStats {
	return &LatencyStats{
		histogram: hdrhistogram.New(1, 60_000_000, 3),
	}
}

// Record adds one scenario duration.
func (s *LatencyStats) Record(d time.Duration) {
	_ = s.histogram.RecordValue(d.Microseconds())
	s.count++
}

func (s *LatencyStats) Count() int64 {
	return s.count
}

// Summary holds the latency percentiles of a run, in milliseconds.
type Summary struct {
	Count int64   `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
}

func (s *LatencyStats) Summarize() Summary {
	if s.count == 0 {
		return Summary{}
	}
	toMs := func(us int64) float64 { return float64(us) / 1000 }
	return Summary{
		Count: s.count,
		Min:   toMs(s.histogram.Min()),
		Max:   toMs(s.histogram.Max()),
		Mean:  s.histogram.Mean() / 1000,
		P50:   toMs(s.histogram.ValueAtQuantile(50)),
		P95:   toMs(s.histogram.ValueAtQuantile(95)),
		P99:   toMs(s.histogram.ValueAtQuantile(99)),
	}
}
