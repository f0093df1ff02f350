package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/redlens/redlens/internal/metrics"
	"github.com/redlens/redlens/internal/output"
)

func sampleSnapshot() metrics.Snapshot {
	c := metrics.NewCollector()
	c.Record(metrics.Sample{Endpoint: "GET /api/users/{id}", RedisUS: 50, AppUS: 10, TotalUS: 60, IsRead: true, Success: true})
	c.Record(metrics.Sample{Endpoint: "POST /api/users", RedisUS: 90, AppUS: 15, TotalUS: 105, Success: false})
	return c.Snapshot()
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	output.PrintReport(&buf, sampleSnapshot())

	out := buf.String()
	for _, want := range []string{
		"Total Requests:    2",
		"Errors:            1",
		"Redis read",
		"Redis write",
		"End-to-end",
		"E2E Distribution:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestPrintReportSkipsEmptyLayers(t *testing.T) {
	c := metrics.NewCollector()
	c.Record(metrics.Sample{Endpoint: "GET /api/users/{id}", RedisUS: 50, AppUS: 10, TotalUS: 60, IsRead: true, Success: true})

	var buf bytes.Buffer
	output.PrintReport(&buf, c.Snapshot())
	if strings.Contains(buf.String(), "Redis write") {
		t.Error("empty write layer should be omitted")
	}
}

func TestPrintJSONReport(t *testing.T) {
	var buf bytes.Buffer
	if err := output.PrintJSONReport(&buf, sampleSnapshot()); err != nil {
		t.Fatalf("PrintJSONReport: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := decoded["total_requests"]; !ok {
		t.Error("JSON report missing total_requests")
	}
}
