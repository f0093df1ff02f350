package output_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redlens/redlens/internal/metrics"
	"github.com/redlens/redlens/internal/output"
)

// syncBuffer guards the buffer against the reporter goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestProgressReporterEmitsUpdates(t *testing.T) {
	c := metrics.NewCollector()
	c.Record(metrics.Sample{Endpoint: "GET /api/users/{id}", RedisUS: 50, AppUS: 10, TotalUS: 60, IsRead: true, Success: true})

	buf := &syncBuffer{}
	p := output.NewProgressReporter(c, 10*time.Millisecond, buf)
	p.Start()
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	out := buf.String()
	if !strings.Contains(out, "Requests: 1") {
		t.Errorf("progress line missing request count: %q", out)
	}
	if !strings.Contains(out, "e2e p99") {
		t.Errorf("progress line missing p99: %q", out)
	}
}

func TestProgressReporterStopIsIdempotent(t *testing.T) {
	p := output.NewProgressReporter(metrics.NewCollector(), 10*time.Millisecond, nil)
	p.Start()
	p.Stop()
	p.Stop() // must not panic or block
}

func TestProgressReporterDoubleStart(t *testing.T) {
	p := output.NewProgressReporter(metrics.NewCollector(), 10*time.Millisecond, nil)
	p.Start()
	p.Start() // second start is a no-op
	p.Stop()
}
