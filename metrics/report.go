// Package metrics measures scenario flakiness by repeating one scenario
// execution out-of-process and aggregating pass/fail, duration, and failure
// reasoning across runs.
package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// RunRecord captures one failing run for the report's failure sample.
type RunRecord struct {
	RunIndex     int      `json:"runIndex"`
	DurationMs   int64    `json:"durationMs"`
	FailingTests int      `json:"failingTestCount"`
	Reasons      []string `json:"reasoningSummary,omitempty"`
	RawTail      string   `json:"rawTail,omitempty"`
}

// Report is the aggregate of one repeated-run session. It is built
// incrementally by the single run loop, finalized once all runs (or the
// abort threshold) complete, and persisted exactly once.
type Report struct {
	SessionID string `json:"sessionId"`
	SpecID    string `json:"specId"`
	Browser   string `json:"browser"`

	// TotalRuns counts runs actually issued, which is less than the
	// requested count when the abort threshold triggered.
	TotalRuns int  `json:"totalRuns"`
	PassRuns  int  `json:"passRuns"`
	FailRuns  int  `json:"failRuns"`
	Aborted   bool `json:"aborted,omitempty"`

	Durations []int64     `json:"durations"`
	Failures  []RunRecord `json:"failures,omitempty"`

	SumMs  int64   `json:"sumMs"`
	MeanMs float64 `json:"meanMs"`
	MinMs  int64   `json:"minMs"`
	MaxMs  int64   `json:"maxMs"`
}

// finalize computes the duration aggregates from the recorded runs.
func (r *Report) finalize() {
	if len(r.Durations) == 0 {
		return
	}

	r.MinMs = r.Durations[0]
	r.MaxMs = r.Durations[0]
	r.SumMs = 0
	for _, d := range r.Durations {
		r.SumMs += d
		if d < r.MinMs {
			r.MinMs = d
		}
		if d > r.MaxMs {
			r.MaxMs = d
		}
	}
	r.MeanMs = float64(r.SumMs) / float64(len(r.Durations))
}

// Save persists the report as JSON under dir, keyed by spec identity, and
// returns the written path.
func (r *Report) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create metrics directory: %w", err)
	}

	path := filepath.Join(dir, r.SpecID+".json")
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metrics report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write metrics report: %w", err)
	}

	return path, nil
}

var specIDPattern = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SpecID derives a filesystem-safe report key from a spec file path.
func SpecID(specPath string) string {
	base := filepath.Base(specPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	id := specIDPattern.ReplaceAllString(base, "-")
	if id == "" {
		return "spec"
	}
	return id
}
