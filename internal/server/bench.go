package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redlens/redlens/internal/loadgen"
)

type benchRequest struct {
	Concurrency  *int `json:"concurrency"`
	DurationSecs *int `json:"duration_secs"`
	ReadPct      *int `json:"read_pct"`
}

type benchStatus struct {
	Running bool   `json:"running"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

func (s *Server) startBenchmark(w http.ResponseWriter, r *http.Request) {
	var req benchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	concurrency, durationSecs, readPct := 10, 30, 70
	if req.Concurrency != nil {
		concurrency = *req.Concurrency
	}
	if req.DurationSecs != nil {
		durationSecs = *req.DurationSecs
	}
	if req.ReadPct != nil {
		readPct = *req.ReadPct
	}

	switch {
	case concurrency < 1 || concurrency > 500:
		writeError(w, http.StatusBadRequest, "concurrency must be between 1 and 500")
		return
	case durationSecs < 1 || durationSecs > 300:
		writeError(w, http.StatusBadRequest, "duration_secs must be between 1 and 300")
		return
	case readPct < 0 || readPct > 100:
		writeError(w, http.StatusBadRequest, "read_pct must be between 0 and 100")
		return
	}

	// A clean run starts from empty metrics.
	s.collector.Reset()

	// The run outlives this request, so it gets its own context.
	runID, err := s.bench.Start(context.Background(), s.collector, s.store, loadgen.Opts{
		Workers:     concurrency,
		Duration:    time.Duration(durationSecs) * time.Second,
		ReadPercent: readPct,
	})
	if errors.Is(err, loadgen.ErrAlreadyRunning) {
		writeError(w, http.StatusConflict, "Benchmark already running")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, benchStatus{
		Running: true,
		RunID:   runID,
		Message: fmt.Sprintf("Started: %d workers x %ds, %d%% reads / %d%% writes",
			concurrency, durationSecs, readPct, 100-readPct),
	})
}

func (s *Server) stopBenchmark(w http.ResponseWriter, r *http.Request) {
	if !s.bench.Stop() {
		writeJSON(w, http.StatusOK, benchStatus{Running: false, Message: "No benchmark is running"})
		return
	}
	writeJSON(w, http.StatusOK, benchStatus{Running: false, Message: "Benchmark stopped"})
}

func (s *Server) benchmarkStatus(w http.ResponseWriter, r *http.Request) {
	if s.bench.Running() {
		writeJSON(w, http.StatusOK, benchStatus{
			Running: true,
			RunID:   s.bench.RunID(),
			Message: "Benchmark in progress",
		})
		return
	}
	writeJSON(w, http.StatusOK, benchStatus{Running: false, Message: "Idle"})
}
