package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redlens/redlens/internal/metrics"
	"github.com/redlens/redlens/internal/store"
)

// sessionTTL matches the expiry used by the session endpoint.
const sessionTTL = 300 * time.Second

// worker owns everything mutable for one goroutine: its RNG and nothing
// else. Store and collector are shared but internally synchronized.
type worker struct {
	rng       *rand.Rand
	store     store.Store
	collector *metrics.Collector
}

// doRead performs one synthetic lookup: 60% user fetches, 40% product
// fetches, mirroring the seeded keyspace. A miss counts as a failure.
func (w *worker) doRead(ctx context.Context) {
	t0 := time.Now()

	var key, endpoint string
	if w.rng.Intn(10) < 6 {
		id := w.rng.Intn(10_000) + 1
		key = fmt.Sprintf("user:usr_%08d", id)
		endpoint = "GET /api/users/{id}"
	} else {
		id := w.rng.Intn(500) + 1
		key = fmt.Sprintf("product:prod_%04d", id)
		endpoint = "GET /api/products/{id}"
	}

	tStore := time.Now()
	fields, err := w.store.GetFields(ctx, key)
	redisUS := uint64(time.Since(tStore).Microseconds())

	totalUS := uint64(time.Since(t0).Microseconds())

	w.collector.Record(metrics.Sample{
		Endpoint: endpoint,
		RedisUS:  redisUS,
		AppUS:    saturatingSub(totalUS, redisUS),
		TotalUS:  totalUS,
		IsRead:   true,
		Success:  err == nil && len(fields) > 0,
	})
}

// doWrite performs one synthetic write: 50% session creates (SET with
// expiry), 50% user creates (HSET). Failures are recorded, never retried.
func (w *worker) doWrite(ctx context.Context) {
	if w.rng.Intn(2) == 0 {
		w.createSession(ctx)
	} else {
		w.createUser(ctx)
	}
}

func (w *worker) createSession(ctx context.Context) {
	t0 := time.Now()

	sessID := fmt.Sprintf("sess_%08x", w.rng.Uint32())
	payload, _ := json.Marshal(map[string]any{
		"id":         sessID,
		"user_id":    fmt.Sprintf("usr_%08d", w.rng.Intn(10_000)+1),
		"token":      fmt.Sprintf("tok_%016x", w.rng.Uint64()),
		"ip":         fmt.Sprintf("10.0.%d.%d", w.rng.Intn(256), w.rng.Intn(254)+1),
		"created_at": "2025-06-19T00:00:00Z",
		"ttl_secs":   300,
	})

	tStore := time.Now()
	err := w.store.SetValue(ctx, "session:"+sessID, string(payload), sessionTTL)
	redisUS := uint64(time.Since(tStore).Microseconds())

	totalUS := uint64(time.Since(t0).Microseconds())

	w.collector.Record(metrics.Sample{
		Endpoint: "POST /api/sessions",
		RedisUS:  redisUS,
		AppUS:    saturatingSub(totalUS, redisUS),
		TotalUS:  totalUS,
		IsRead:   false,
		Success:  err == nil,
	})
}

func (w *worker) createUser(ctx context.Context) {
	t0 := time.Now()

	// IDs above the seeded range so benchmark writes never collide with
	// seeded users.
	i := w.rng.Intn(90_000-1) + 10_001
	id := fmt.Sprintf("usr_%08d", i)
	fields := map[string]string{
		"id":         id,
		"name":       "Bench User",
		"email":      fmt.Sprintf("bench%d@test.com", i),
		"role":       "viewer",
		"prefs":      `{"theme":"dark","lang":"en","notifications":false}`,
		"created_at": "2025-06-19T00:00:00Z",
	}

	tStore := time.Now()
	err := w.store.SetFields(ctx, "user:"+id, fields)
	redisUS := uint64(time.Since(tStore).Microseconds())

	totalUS := uint64(time.Since(t0).Microseconds())

	w.collector.Record(metrics.Sample{
		Endpoint: "POST /api/users",
		RedisUS:  redisUS,
		AppUS:    saturatingSub(totalUS, redisUS),
		TotalUS:  totalUS,
		IsRead:   false,
		Success:  err == nil,
	})
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
