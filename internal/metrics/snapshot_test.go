package metrics_test

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/redlens/redlens/internal/metrics"
)

func TestSingleReadSample(t *testing.T) {
	c := metrics.NewCollector()
	c.Record(metrics.Sample{
		Endpoint: "GET /api/users/{id}",
		RedisUS:  50,
		AppUS:    10,
		TotalUS:  60,
		IsRead:   true,
		Success:  true,
	})

	snap := c.Snapshot()
	if snap.TotalRequests != 1 {
		t.Errorf("expected total 1, got %d", snap.TotalRequests)
	}
	if snap.TotalReads != 1 || snap.TotalWrites != 0 {
		t.Errorf("expected 1 read / 0 writes, got %d/%d", snap.TotalReads, snap.TotalWrites)
	}
	if snap.TotalErrors != 0 {
		t.Errorf("expected 0 errors, got %d", snap.TotalErrors)
	}
	if snap.RedisRead.P50 != 50 {
		t.Errorf("expected redis read p50 50, got %d", snap.RedisRead.P50)
	}
	if snap.AppOverhead.P50 != 10 {
		t.Errorf("expected app overhead p50 10, got %d", snap.AppOverhead.P50)
	}
	if snap.E2E.P50 != 60 {
		t.Errorf("expected e2e p50 60, got %d", snap.E2E.P50)
	}
	if snap.RedisWrite.HasData() {
		t.Error("write histogram should be empty after a read sample")
	}
}

func TestWriteAndFailureCounters(t *testing.T) {
	c := metrics.NewCollector()
	c.Record(metrics.Sample{Endpoint: "POST /api/users", RedisUS: 80, AppUS: 5, TotalUS: 85, Success: true})
	c.Record(metrics.Sample{Endpoint: "POST /api/sessions", RedisUS: 90, AppUS: 5, TotalUS: 95, Success: false})

	snap := c.Snapshot()
	if snap.TotalWrites != 2 {
		t.Errorf("expected 2 writes, got %d", snap.TotalWrites)
	}
	if snap.TotalErrors != 1 {
		t.Errorf("expected 1 error, got %d", snap.TotalErrors)
	}
	if snap.RedisWrite.Count != 2 {
		t.Errorf("failed writes must still be recorded in the histogram, got count %d", snap.RedisWrite.Count)
	}
}

func TestPercentilesAreOrdered(t *testing.T) {
	c := metrics.NewCollector()
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		v := uint64(rng.Intn(10_000) + 1)
		c.Record(metrics.Sample{RedisUS: v, AppUS: v / 4, TotalUS: v + v/4, IsRead: true, Success: true})
	}

	snap := c.Snapshot()
	for _, set := range []metrics.PercentileSet{snap.RedisRead, snap.AppOverhead, snap.E2E} {
		if set.P50 > set.P95 || set.P95 > set.P99 || set.P99 > set.P999 || set.P999 > set.Max {
			t.Errorf("percentiles out of order: p50=%d p95=%d p99=%d p999=%d max=%d",
				set.P50, set.P95, set.P99, set.P999, set.Max)
		}
	}
}

func TestRecentFeedEviction(t *testing.T) {
	c := metrics.NewCollector()
	for i := 0; i < 201; i++ {
		c.Record(metrics.Sample{
			Endpoint: fmt.Sprintf("GET /api/users/usr_%08d", i),
			RedisUS:  10,
			AppUS:    2,
			TotalUS:  12,
			IsRead:   true,
			Success:  true,
		})
	}

	snap := c.Snapshot()
	if len(snap.RecentSamples) != 200 {
		t.Fatalf("feed must cap at 200, got %d", len(snap.RecentSamples))
	}
	if snap.RecentSamples[0].Endpoint != "GET /api/users/usr_00000001" {
		t.Errorf("oldest entry should have been evicted, feed starts at %q", snap.RecentSamples[0].Endpoint)
	}
	if last := snap.RecentSamples[199].Endpoint; last != "GET /api/users/usr_00000200" {
		t.Errorf("newest entry missing, feed ends at %q", last)
	}
}

func TestResetClearsEverything(t *testing.T) {
	c := metrics.NewCollector()
	for i := 0; i < 50; i++ {
		c.Record(metrics.Sample{RedisUS: 100, AppUS: 10, TotalUS: 110, IsRead: i%2 == 0, Success: false})
	}
	c.Reset()

	snap := c.Snapshot()
	if snap.TotalRequests != 0 || snap.TotalErrors != 0 || snap.TotalReads != 0 || snap.TotalWrites != 0 {
		t.Errorf("counters not zeroed: %+v", snap)
	}
	if len(snap.RecentSamples) != 0 || len(snap.Timeline) != 0 || len(snap.Distribution) != 0 {
		t.Error("collections not emptied by reset")
	}
	if snap.ElapsedSecs != 0 {
		t.Errorf("elapsed should be 0 until the first post-reset sample, got %g", snap.ElapsedSecs)
	}
	if snap.E2E.HasData() {
		t.Error("histograms not cleared by reset")
	}
}

func TestDistributionBuckets(t *testing.T) {
	c := metrics.NewCollector()
	record := func(totalUS uint64) {
		c.Record(metrics.Sample{RedisUS: 1, AppUS: 1, TotalUS: totalUS, IsRead: true, Success: true})
	}
	record(30)     // (25, 50]
	record(50)     // (25, 50] — boundary belongs to its own bucket
	record(400)    // (300, 400]
	record(1_800)  // (1500, 2000]
	record(55_000) // overflow

	snap := c.Snapshot()
	if len(snap.Distribution) != 4 {
		t.Fatalf("expected 4 non-empty buckets, got %d: %+v", len(snap.Distribution), snap.Distribution)
	}
	first := snap.Distribution[0]
	if first.RangeStartUS != 25 || first.RangeEndUS != 50 || first.Count != 2 {
		t.Errorf("bucket (25,50] wrong: %+v", first)
	}
	overflow := snap.Distribution[3]
	if overflow.RangeStartUS != 50_000 {
		t.Errorf("overflow bucket should start at the last boundary, got %d", overflow.RangeStartUS)
	}
	if overflow.RangeEndUS < 55_000 {
		t.Errorf("overflow bucket must end at the observed max, got %d", overflow.RangeEndUS)
	}
	if overflow.Count != 1 {
		t.Errorf("overflow count wrong: %d", overflow.Count)
	}
}

func TestConcurrentRecordSnapshotReset(t *testing.T) {
	c := metrics.NewCollector()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 1000; i++ {
				c.Record(metrics.Sample{
					RedisUS: uint64(rng.Intn(500) + 1),
					AppUS:   uint64(rng.Intn(50) + 1),
					TotalUS: uint64(rng.Intn(600) + 1),
					IsRead:  rng.Intn(2) == 0,
					Success: rng.Intn(10) != 0,
				})
				if i%100 == 0 {
					_ = c.Snapshot()
				}
				if i == 500 && seed == 0 {
					c.Reset()
				}
			}
		}(int64(w))
	}
	wg.Wait()

	// After the dust settles the snapshot must be internally consistent.
	snap := c.Snapshot()
	if snap.TotalReads+snap.TotalWrites != snap.TotalRequests {
		t.Errorf("reads+writes=%d, total=%d", snap.TotalReads+snap.TotalWrites, snap.TotalRequests)
	}
	var sum uint64
	for _, p := range snap.Timeline {
		sum += p.Count
	}
	if sum != snap.TotalRequests {
		t.Errorf("timeline counts %d != total %d", sum, snap.TotalRequests)
	}
}

func TestSnapshotJSONShape(t *testing.T) {
	c := metrics.NewCollector()
	c.Record(metrics.Sample{Endpoint: "GET /api/products/{id}", RedisUS: 40, AppUS: 8, TotalUS: 48, IsRead: true, Success: true})

	raw, err := json.Marshal(c.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{
		"redis_read", "redis_write", "app_overhead", "e2e",
		"total_requests", "total_errors", "total_reads", "total_writes",
		"requests_per_sec", "elapsed_secs",
		"recent_samples", "timeline", "distribution",
	} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("snapshot JSON missing key %q", key)
		}
	}
}
