package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// TimedResponse wraps every successful data response with a timing
// breakdown, so clients can show per-request latency without parsing
// headers.
type TimedResponse struct {
	Data   any           `json:"data"`
	Timing RequestTiming `json:"timing"`
}

// RequestTiming is a microsecond breakdown of where handler wall time went.
type RequestTiming struct {
	TotalUS       uint64 `json:"total_us"`
	RedisUS       uint64 `json:"redis_us"`
	AppOverheadUS uint64 `json:"app_overhead_us"`
}

type apiError struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg, Status: status})
}

func writeTimed(w http.ResponseWriter, data any, totalUS, redisUS uint64) {
	writeJSON(w, http.StatusOK, TimedResponse{
		Data: data,
		Timing: RequestTiming{
			TotalUS:       totalUS,
			RedisUS:       redisUS,
			AppOverheadUS: saturatingSub(totalUS, redisUS),
		},
	})
}

func microsSince(t time.Time) uint64 {
	us := time.Since(t).Microseconds()
	if us < 0 {
		return 0
	}
	return uint64(us)
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
