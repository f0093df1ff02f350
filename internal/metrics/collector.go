package metrics

import (
	"sort"
	"sync"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// maxRecentSamples bounds the live request feed.
	maxRecentSamples = 200

	// timelineWindowMS is the aggregate timeline resolution: one point per window.
	timelineWindowMS = 500

	// Histogram range: 1 µs to 60 s at 3 significant figures.
	histLowestUS  = 1
	histHighestUS = 60_000_000
	histSigFigs   = 3
)

// distBoundariesUS are the fixed bucket edges for the latency distribution
// bar chart. Covers the typical localhost Redis range with good resolution;
// everything beyond the last edge lands in a single overflow bucket.
var distBoundariesUS = []int64{
	25, 50, 100, 150, 200, 300, 400, 500, 750, 1_000, 1_500, 2_000,
	3_000, 5_000, 10_000, 50_000,
}

// TimelinePoint is one aggregated point on the latency timeline.
type TimelinePoint struct {
	TimestampMS uint64  `json:"timestamp_ms"`
	AvgRedisUS  float64 `json:"avg_redis_us"`
	AvgAppUS    float64 `json:"avg_app_us"`
	AvgTotalUS  float64 `json:"avg_total_us"`
	Count       uint64  `json:"count"`
}

// DistBucket is one bar of the end-to-end latency distribution.
type DistBucket struct {
	RangeStartUS int64 `json:"range_start_us"`
	RangeEndUS   int64 `json:"range_end_us"`
	Count        int64 `json:"count"`
}

// Snapshot is a complete, self-contained view of collector state at one
// instant. It holds no references back into the collector and is safe to
// serialize and ship to any consumer.
type Snapshot struct {
	RedisRead   PercentileSet `json:"redis_read"`
	RedisWrite  PercentileSet `json:"redis_write"`
	AppOverhead PercentileSet `json:"app_overhead"`
	E2E         PercentileSet `json:"e2e"`

	TotalRequests  uint64  `json:"total_requests"`
	TotalErrors    uint64  `json:"total_errors"`
	TotalReads     uint64  `json:"total_reads"`
	TotalWrites    uint64  `json:"total_writes"`
	RequestsPerSec float64 `json:"requests_per_sec"`
	ElapsedSecs    float64 `json:"elapsed_secs"`

	RecentSamples []SampleRecord  `json:"recent_samples"`
	Timeline      []TimelinePoint `json:"timeline"`
	Distribution  []DistBucket    `json:"distribution"`
}

// Collector records per-operation samples in a thread-safe manner.
// Record, Snapshot and Reset serialize on one mutex.
type Collector struct {
	mu    sync.Mutex
	state *collectorState
	now   func() time.Time
}

type collectorState struct {
	redisRead   *hdrhistogram.Histogram
	redisWrite  *hdrhistogram.Histogram
	appOverhead *hdrhistogram.Histogram
	e2e         *hdrhistogram.Histogram

	totalRequests uint64
	totalErrors   uint64
	totalReads    uint64
	totalWrites   uint64

	recent   []SampleRecord
	timeline []TimelinePoint
	window   *windowAccumulator

	// start anchors relative timestamps. Set lazily on the first sample so
	// idle time before a run does not inflate elapsed time.
	start time.Time
}

// windowAccumulator holds running sums for the still-open timeline window.
type windowAccumulator struct {
	startMS  uint64
	redisSum uint64
	appSum   uint64
	totalSum uint64
	count    uint64
}

func NewCollector() *Collector {
	return &Collector{
		state: newCollectorState(),
		now:   time.Now,
	}
}

func newCollectorState() *collectorState {
	return &collectorState{
		redisRead:   hdrhistogram.New(histLowestUS, histHighestUS, histSigFigs),
		redisWrite:  hdrhistogram.New(histLowestUS, histHighestUS, histSigFigs),
		appOverhead: hdrhistogram.New(histLowestUS, histHighestUS, histSigFigs),
		e2e:         hdrhistogram.New(histLowestUS, histHighestUS, histSigFigs),
		recent:      make([]SampleRecord, 0, maxRecentSamples+1),
	}
}

// Record appends one observation. It never fails: out-of-range durations are
// clamped into the histogram bounds, not rejected.
func (c *Collector) Record(s Sample) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state
	now := c.now()
	if st.start.IsZero() {
		st.start = now
	}
	elapsedMS := uint64(now.Sub(st.start) / time.Millisecond)

	st.totalRequests++
	if !s.Success {
		st.totalErrors++
	}

	redisUS := clampUS(s.RedisUS)
	appUS := clampUS(s.AppUS)
	totalUS := clampUS(s.TotalUS)

	if s.IsRead {
		st.totalReads++
		_ = st.redisRead.RecordValue(redisUS)
	} else {
		st.totalWrites++
		_ = st.redisWrite.RecordValue(redisUS)
	}
	_ = st.appOverhead.RecordValue(appUS)
	_ = st.e2e.RecordValue(totalUS)

	st.pushToTimeline(elapsedMS, uint64(redisUS), uint64(appUS), uint64(totalUS))

	// The feed echoes the sample as observed, before clamping.
	st.recent = append(st.recent, SampleRecord{
		TimestampMS: elapsedMS,
		Endpoint:    s.Endpoint,
		RedisUS:     s.RedisUS,
		AppUS:       s.AppUS,
		TotalUS:     s.TotalUS,
		IsRead:      s.IsRead,
		Success:     s.Success,
	})
	if len(st.recent) > maxRecentSamples {
		st.recent = st.recent[1:]
	}
}

// Reset discards all state and starts over with fresh histograms. Callers
// racing with Reset see either the old state or the new one, never a mix.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = newCollectorState()
}

// Snapshot materializes the current state into an independently-owned value.
// Cost is O(histogram buckets), not O(samples recorded).
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state

	var elapsedSecs float64
	if !st.start.IsZero() {
		elapsedSecs = c.now().Sub(st.start).Seconds()
	}
	var rps float64
	if elapsedSecs > 0 {
		rps = float64(st.totalRequests) / elapsedSecs
	}

	timeline := make([]TimelinePoint, len(st.timeline), len(st.timeline)+1)
	copy(timeline, st.timeline)
	// Render the still-open window as a synthetic tail point so the chart
	// reflects the latest partial data without mutating stored history.
	if w := st.window; w != nil && w.count > 0 {
		timeline = append(timeline, w.point())
	}

	recent := make([]SampleRecord, len(st.recent))
	copy(recent, st.recent)

	return Snapshot{
		RedisRead:   percentileSetFrom(st.redisRead),
		RedisWrite:  percentileSetFrom(st.redisWrite),
		AppOverhead: percentileSetFrom(st.appOverhead),
		E2E:         percentileSetFrom(st.e2e),

		TotalRequests:  st.totalRequests,
		TotalErrors:    st.totalErrors,
		TotalReads:     st.totalReads,
		TotalWrites:    st.totalWrites,
		RequestsPerSec: rps,
		ElapsedSecs:    elapsedSecs,

		RecentSamples: recent,
		Timeline:      timeline,
		Distribution:  computeDistribution(st.e2e),
	}
}

// pushToTimeline buckets the sample into the current window, or closes the
// window and opens a new one when the sample falls past its edge.
func (st *collectorState) pushToTimeline(elapsedMS, redisUS, appUS, totalUS uint64) {
	windowStart := (elapsedMS / timelineWindowMS) * timelineWindowMS

	if w := st.window; w != nil {
		if w.startMS == windowStart {
			w.redisSum += redisUS
			w.appSum += appUS
			w.totalSum += totalUS
			w.count++
			return
		}
		st.timeline = append(st.timeline, w.point())
	}
	st.window = &windowAccumulator{
		startMS:  windowStart,
		redisSum: redisUS,
		appSum:   appUS,
		totalSum: totalUS,
		count:    1,
	}
}

func (w *windowAccumulator) point() TimelinePoint {
	n := float64(w.count)
	return TimelinePoint{
		TimestampMS: w.startMS,
		AvgRedisUS:  float64(w.redisSum) / n,
		AvgAppUS:    float64(w.appSum) / n,
		AvgTotalUS:  float64(w.totalSum) / n,
		Count:       w.count,
	}
}

// clampUS forces a microsecond reading into the trackable histogram range.
// A literal 0 is nonsense for a timed operation and must not pollute the
// distribution; values past the top bound land in the top bucket.
func clampUS(v uint64) int64 {
	if v < histLowestUS {
		return histLowestUS
	}
	if v > histHighestUS {
		return histHighestUS
	}
	return int64(v)
}

// computeDistribution walks every recorded bucket of the end-to-end
// histogram and assigns its count to the first fixed boundary at or above
// the bucket's value. Only non-empty buckets are emitted; the overflow
// bucket's upper edge is the observed maximum rather than a constant.
func computeDistribution(h *hdrhistogram.Histogram) []DistBucket {
	if h.TotalCount() == 0 {
		return nil
	}

	counts := make([]int64, len(distBoundariesUS)+1)
	for _, bar := range h.Distribution() {
		if bar.Count == 0 {
			continue
		}
		v := bar.To
		idx := sort.Search(len(distBoundariesUS), func(i int) bool {
			return distBoundariesUS[i] >= v
		})
		counts[idx] += bar.Count
	}

	out := make([]DistBucket, 0, len(counts))
	prev := int64(0)
	for i, edge := range distBoundariesUS {
		if counts[i] > 0 {
			out = append(out, DistBucket{RangeStartUS: prev, RangeEndUS: edge, Count: counts[i]})
		}
		prev = edge
	}
	if overflow := counts[len(distBoundariesUS)]; overflow > 0 {
		out = append(out, DistBucket{
			RangeStartUS: distBoundariesUS[len(distBoundariesUS)-1],
			RangeEndUS:   h.Max(),
			Count:        overflow,
		})
	}
	return out
}
