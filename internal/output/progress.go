package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/redlens/redlens/internal/metrics"
)

// ProgressReporter prints a one-line live status at a fixed interval while a
// benchmark runs.
type ProgressReporter struct {
	collector *metrics.Collector
	ticker    *time.Ticker
	done      chan struct{}
	finished  chan struct{}
	writer    io.Writer
	active    int32
}

// NewProgressReporter creates a reporter updating at the given interval.
func NewProgressReporter(collector *metrics.Collector, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		collector: collector,
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
		writer:    writer,
	}
}

// Start begins printing updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts updates and waits for the printer goroutine to exit.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			snap := p.collector.Snapshot()
			line := fmt.Sprintf("\rRequests: %d | Reads: %d | Writes: %d | Errors: %d | RPS: %.1f",
				snap.TotalRequests, snap.TotalReads, snap.TotalWrites, snap.TotalErrors, snap.RequestsPerSec)
			if snap.E2E.HasData() {
				line += fmt.Sprintf(" | e2e p99: %dµs", snap.E2E.P99)
			}
			fmt.Fprint(p.writer, line)
		case <-p.done:
			return
		}
	}
}
