// Package threshold evaluates performance assertions against a metrics
// snapshot, e.g. "e2e.p99 < 500" or "total_errors == 0".
package threshold

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/redlens/redlens/internal/metrics"
)

// Threshold is one assertion over a snapshot field. Metric is a gjson path
// into the snapshot JSON, so any histogram layer or counter is addressable:
// "redis_read.p95", "app_overhead.mean", "requests_per_sec".
type Threshold struct {
	Metric   string  // gjson path into the snapshot
	Operator string  // <, <=, >, >=, ==, !=
	Value    float64 // comparison value
	Raw      string  // original expression for display
}

// Result is the outcome of evaluating one threshold.
type Result struct {
	Threshold Threshold
	Actual    float64
	Pass      bool
	Message   string
}

var exprPattern = regexp.MustCompile(`^\s*([A-Za-z0-9_.]+)\s*(<=|>=|==|!=|<|>)\s*([0-9]+(?:\.[0-9]+)?)\s*$`)

// Parse converts an expression like "e2e.p99 < 500" into a Threshold.
func Parse(expr string) (Threshold, error) {
	m := exprPattern.FindStringSubmatch(expr)
	if m == nil {
		return Threshold{}, fmt.Errorf("invalid threshold %q: want <metric> <op> <number>", expr)
	}
	value, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value in %q: %w", expr, err)
	}
	return Threshold{Metric: m[1], Operator: m[2], Value: value, Raw: expr}, nil
}

// ParseAll parses a list of expressions, failing on the first bad one.
func ParseAll(exprs []string) ([]Threshold, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	out := make([]Threshold, 0, len(exprs))
	for _, e := range exprs {
		t, err := Parse(e)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Evaluator checks thresholds against snapshots.
type Evaluator struct {
	thresholds []Threshold
}

func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate checks every threshold against the snapshot. The snapshot is
// marshaled once and each metric path resolved through it.
func (e *Evaluator) Evaluate(snap metrics.Snapshot) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		// Snapshot types marshal cleanly by construction; treat failure as
		// every threshold failing rather than panicking mid-report.
		results := make([]Result, len(e.thresholds))
		for i, t := range e.thresholds {
			results[i] = Result{Threshold: t, Message: fmt.Sprintf("error: %v", err)}
		}
		return results
	}

	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		results = append(results, evaluateOne(t, raw))
	}
	return results
}

// AllPassed reports whether no result failed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}

func evaluateOne(t Threshold, snapshotJSON []byte) Result {
	field := gjson.GetBytes(snapshotJSON, t.Metric)
	if !field.Exists() {
		return Result{
			Threshold: t,
			Message:   fmt.Sprintf("error: metric %q not found in snapshot", t.Metric),
		}
	}
	actual := field.Float()
	pass := compare(actual, t.Operator, t.Value)

	status := "PASS"
	if !pass {
		status = "FAIL"
	}
	return Result{
		Threshold: t,
		Actual:    actual,
		Pass:      pass,
		Message:   fmt.Sprintf("%s %s (actual %.2f)", status, t.Raw, actual),
	}
}

func compare(actual float64, op string, value float64) bool {
	switch op {
	case "<":
		return actual < value
	case "<=":
		return actual <= value
	case ">":
		return actual > value
	case ">=":
		return actual >= value
	case "==":
		return math.Abs(actual-value) < 1e-9
	case "!=":
		return math.Abs(actual-value) >= 1e-9
	default:
		return false
	}
}
