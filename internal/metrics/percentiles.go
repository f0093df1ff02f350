package metrics

import (
	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
)

// PercentileSet is the statistical summary of one measurement layer,
// extracted from its histogram. Values are microseconds at the histogram's
// three-significant-figure resolution.
type PercentileSet struct {
	Min   int64   `json:"min"`
	Max   int64   `json:"max"`
	Mean  float64 `json:"mean"`
	P50   int64   `json:"p50"`
	P95   int64   `json:"p95"`
	P99   int64   `json:"p99"`
	P999  int64   `json:"p999"`
	Count int64   `json:"count"`
}

// percentileSetFrom extracts a full percentile set from a histogram.
// An empty histogram yields the zero value.
func percentileSetFrom(h *hdrhistogram.Histogram) PercentileSet {
	if h.TotalCount() == 0 {
		return PercentileSet{}
	}
	return PercentileSet{
		Min:   h.Min(),
		Max:   h.Max(),
		Mean:  h.Mean(),
		P50:   h.ValueAtQuantile(50),
		P95:   h.ValueAtQuantile(95),
		P99:   h.ValueAtQuantile(99),
		P999:  h.ValueAtQuantile(99.9),
		Count: h.TotalCount(),
	}
}

// HasData reports whether the set is backed by at least one observation.
func (p PercentileSet) HasData() bool {
	return p.Count > 0
}
