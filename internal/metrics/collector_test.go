package metrics

import (
	"testing"
	"time"
)

// fakeClock lets timeline tests control elapsed time precisely.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCollector() (*Collector, *fakeClock) {
	clk := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := NewCollector()
	c.now = func() time.Time { return clk.now }
	return c, clk
}

func sampleUS(redis, app, total uint64) Sample {
	return Sample{
		Endpoint: "GET /api/users/{id}",
		RedisUS:  redis,
		AppUS:    app,
		TotalUS:  total,
		IsRead:   true,
		Success:  true,
	}
}

func TestTimelineSameWindowAggregates(t *testing.T) {
	c, clk := newTestCollector()

	c.Record(sampleUS(100, 20, 120))
	clk.advance(300 * time.Millisecond)
	c.Record(sampleUS(200, 40, 240))

	snap := c.Snapshot()
	if len(snap.Timeline) != 1 {
		t.Fatalf("expected 1 timeline point, got %d", len(snap.Timeline))
	}
	p := snap.Timeline[0]
	if p.TimestampMS != 0 {
		t.Errorf("expected window start 0, got %d", p.TimestampMS)
	}
	if p.Count != 2 {
		t.Errorf("expected count 2, got %d", p.Count)
	}
	if p.AvgRedisUS != 150 {
		t.Errorf("expected avg redis 150, got %g", p.AvgRedisUS)
	}
	if p.AvgTotalUS != 180 {
		t.Errorf("expected avg total 180, got %g", p.AvgTotalUS)
	}
}

func TestTimelineRollsOverOnNewWindow(t *testing.T) {
	c, clk := newTestCollector()

	c.Record(sampleUS(100, 20, 120))
	clk.advance(100 * time.Millisecond)
	c.Record(sampleUS(300, 60, 360))

	// 600 ms after the first sample: lands in the second 500 ms window and
	// finalizes the first.
	clk.advance(500 * time.Millisecond)
	c.Record(sampleUS(500, 100, 600))

	snap := c.Snapshot()
	if len(snap.Timeline) != 2 {
		t.Fatalf("expected 2 timeline points, got %d", len(snap.Timeline))
	}
	first, second := snap.Timeline[0], snap.Timeline[1]
	if first.TimestampMS != 0 || first.Count != 2 {
		t.Errorf("first point: got ts=%d count=%d, want ts=0 count=2", first.TimestampMS, first.Count)
	}
	if first.AvgRedisUS != 200 {
		t.Errorf("first point avg redis: got %g, want 200", first.AvgRedisUS)
	}
	if second.TimestampMS != 500 || second.Count != 1 {
		t.Errorf("second point: got ts=%d count=%d, want ts=500 count=1", second.TimestampMS, second.Count)
	}
	if second.TimestampMS <= first.TimestampMS {
		t.Error("timeline timestamps must be strictly increasing across windows")
	}
}

func TestTimelineCountsSumToTotalRequests(t *testing.T) {
	c, clk := newTestCollector()

	for i := 0; i < 37; i++ {
		c.Record(sampleUS(50, 10, 60))
		clk.advance(137 * time.Millisecond)
	}

	snap := c.Snapshot()
	var sum uint64
	for _, p := range snap.Timeline {
		sum += p.Count
	}
	if sum != snap.TotalRequests {
		t.Errorf("timeline counts sum %d != total requests %d", sum, snap.TotalRequests)
	}
}

func TestSnapshotDoesNotFinalizeOpenWindow(t *testing.T) {
	c, _ := newTestCollector()
	c.Record(sampleUS(100, 20, 120))

	// Two snapshots in a row must both synthesize the open tail without
	// growing stored history.
	if got := len(c.Snapshot().Timeline); got != 1 {
		t.Fatalf("expected 1 point, got %d", got)
	}
	if got := len(c.Snapshot().Timeline); got != 1 {
		t.Fatalf("expected 1 point after second snapshot, got %d", got)
	}
	if got := len(c.state.timeline); got != 0 {
		t.Fatalf("stored timeline should still be empty, got %d points", got)
	}
}

func TestStartAnchorIsLazy(t *testing.T) {
	c, clk := newTestCollector()

	// Idle time before the first sample must not count as elapsed.
	clk.advance(10 * time.Second)
	c.Record(sampleUS(50, 10, 60))
	clk.advance(2 * time.Second)

	snap := c.Snapshot()
	if snap.ElapsedSecs < 1.9 || snap.ElapsedSecs > 2.1 {
		t.Errorf("expected ~2s elapsed, got %g", snap.ElapsedSecs)
	}
}

func TestZeroDurationsAreClamped(t *testing.T) {
	c, _ := newTestCollector()
	c.Record(Sample{Endpoint: "GET /api/users/{id}", IsRead: true, Success: true})

	snap := c.Snapshot()
	if snap.RedisRead.Min != 1 || snap.RedisRead.P50 != 1 {
		t.Errorf("zero redis duration should be recorded as 1, got min=%d p50=%d",
			snap.RedisRead.Min, snap.RedisRead.P50)
	}
	if snap.E2E.Min != 1 {
		t.Errorf("zero total duration should be recorded as 1, got min=%d", snap.E2E.Min)
	}
	// The feed keeps the raw observation.
	if snap.RecentSamples[0].TotalUS != 0 {
		t.Errorf("feed should echo the raw value, got %d", snap.RecentSamples[0].TotalUS)
	}
}

func TestOversizedValueLandsInTopBucket(t *testing.T) {
	c, _ := newTestCollector()
	c.Record(sampleUS(1, 1, 90_000_000_000)) // 25 hours, way past the 60s bound

	snap := c.Snapshot()
	if snap.E2E.Count != 1 {
		t.Fatalf("oversized value must be clamped, not dropped: count=%d", snap.E2E.Count)
	}
	if snap.E2E.Max < histHighestUS-histHighestUS/1000 {
		t.Errorf("expected max near the 60s bound, got %d", snap.E2E.Max)
	}
}
