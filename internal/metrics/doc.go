// Package metrics is the aggregation engine behind the latency dashboard.
//
// Handlers and load-generator workers push one [Sample] per store operation
// into the [Collector]. The collector maintains four HdrHistograms (one per
// measurement layer), global counters, a rolling feed of the most recent
// requests, and a 500 ms windowed timeline. The SSE/WebSocket stream calls
// [Collector.Snapshot] on a fixed cadence and ships the result to the
// browser as JSON.
//
//	collector := metrics.NewCollector()
//
//	collector.Record(metrics.Sample{
//		Endpoint: "GET /api/users/{id}",
//		RedisUS:  50,
//		AppUS:    10,
//		TotalUS:  60,
//		IsRead:   true,
//		Success:  true,
//	})
//
//	snap := collector.Snapshot()
//
// # Thread Safety
//
// Record, Snapshot and Reset share a single mutex. Contention is low at the
// request rates this tool targets, and one critical section keeps the
// reset/record race impossible by construction: no caller can ever observe
// a half-reset collector.
//
// # Histogram Contract
//
// Every histogram tracks microsecond values in [1, 60_000_000] at three
// significant figures. Values are clamped into that range before being
// recorded, never dropped, so counts stay accurate even for nonsense inputs
// like a zero-duration measurement.
package metrics
