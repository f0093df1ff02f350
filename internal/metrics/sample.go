package metrics

// Sample is a single timing observation of one store operation.
// Producers build a Sample, hand it to [Collector.Record], and let go of it;
// the collector copies what it keeps.
type Sample struct {
	// Endpoint labels the logical operation, e.g. "GET /api/users/{id}".
	Endpoint string
	// RedisUS is the time spent inside the Redis round-trip, in microseconds.
	RedisUS uint64
	// AppUS is the application-side overhead (key building, serialization,
	// routing) in microseconds.
	AppUS uint64
	// TotalUS is the end-to-end wall time of the operation in microseconds.
	TotalUS uint64
	// IsRead distinguishes read operations from writes.
	IsRead bool
	// Success is false when the operation failed or the key was missing.
	Success bool
}

// SampleRecord is one entry in the live request feed: a Sample echo plus a
// timestamp relative to the collector's start anchor.
type SampleRecord struct {
	TimestampMS uint64 `json:"timestamp_ms"`
	Endpoint    string `json:"endpoint"`
	RedisUS     uint64 `json:"redis_us"`
	AppUS       uint64 `json:"app_us"`
	TotalUS     uint64 `json:"total_us"`
	IsRead      bool   `json:"is_read"`
	Success     bool   `json:"success"`
}
