package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/redlens/redlens/internal/metrics"
)

// PrintReport writes a human-readable benchmark summary.
func PrintReport(w io.Writer, snap metrics.Snapshot) {
	fmt.Fprintln(w, "\n--- Benchmark Results ---")
	fmt.Fprintf(w, "Total Requests:    %d\n", snap.TotalRequests)
	fmt.Fprintf(w, "Reads / Writes:    %d / %d\n", snap.TotalReads, snap.TotalWrites)
	fmt.Fprintf(w, "Errors:            %d\n", snap.TotalErrors)
	fmt.Fprintf(w, "Elapsed:           %.1fs\n", snap.ElapsedSecs)
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", snap.RequestsPerSec)

	printLayer(w, "Redis read", snap.RedisRead)
	printLayer(w, "Redis write", snap.RedisWrite)
	printLayer(w, "App overhead", snap.AppOverhead)
	printLayer(w, "End-to-end", snap.E2E)

	if len(snap.Distribution) > 0 {
		fmt.Fprintln(w, "\nE2E Distribution:")
		for _, b := range snap.Distribution {
			fmt.Fprintf(w, "  %7d - %-7d µs: %d\n", b.RangeStartUS, b.RangeEndUS, b.Count)
		}
	}
}

func printLayer(w io.Writer, name string, set metrics.PercentileSet) {
	if !set.HasData() {
		return
	}
	fmt.Fprintf(w, "\n%s (µs):\n", name)
	fmt.Fprintf(w, "  Min:             %d\n", set.Min)
	fmt.Fprintf(w, "  Mean:            %.1f\n", set.Mean)
	fmt.Fprintf(w, "  P50:             %d\n", set.P50)
	fmt.Fprintf(w, "  P95:             %d\n", set.P95)
	fmt.Fprintf(w, "  P99:             %d\n", set.P99)
	fmt.Fprintf(w, "  P99.9:           %d\n", set.P999)
	fmt.Fprintf(w, "  Max:             %d\n", set.Max)
	fmt.Fprintf(w, "  Count:           %d\n", set.Count)
}

// PrintJSONReport writes the full snapshot as indented JSON.
func PrintJSONReport(w io.Writer, snap metrics.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
