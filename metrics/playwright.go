package metrics

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Playwright JSON reporter shapes, reduced to the fields the runner reads.

type playwrightReport struct {
	Suites []playwrightSuite `json:"suites"`
	Stats  *playwrightStats  `json:"stats"`
}

type playwrightStats struct {
	Expected   int `json:"expected"`
	Unexpected int `json:"unexpected"`
	Flaky      int `json:"flaky"`
	Skipped    int `json:"skipped"`
}

type playwrightSuite struct {
	Title  string            `json:"title"`
	Suites []playwrightSuite `json:"suites"`
	Specs  []playwrightSpec  `json:"specs"`
}

type playwrightSpec struct {
	Title string           `json:"title"`
	OK    bool             `json:"ok"`
	Tests []playwrightTest `json:"tests"`
}

type playwrightTest struct {
	Results []playwrightResult `json:"results"`
}

type playwrightResult struct {
	Status string `json:"status"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// parseRunReport reads one execution's structured report and returns the
// failing-test count plus a compact reasoning digest: each failed test's
// error message truncated to its first line. An unparseable report is an
// error; the caller falls back to a fixed failure token.
func parseRunReport(data []byte) (failing int, reasons []string, err error) {
	var report playwrightReport
	if err := json.Unmarshal(data, &report); err != nil {
		return 0, nil, fmt.Errorf("parse run report: %w", err)
	}
	if report.Stats == nil && len(report.Suites) == 0 {
		return 0, nil, fmt.Errorf("parse run report: no stats or suites present")
	}

	for _, suite := range report.Suites {
		f, r := walkSuite(suite)
		failing += f
		reasons = append(reasons, r...)
	}

	// Prefer the reporter's own accounting when present; the suite walk
	// still supplies the reasoning digest.
	if report.Stats != nil {
		failing = report.Stats.Unexpected
	}

	return failing, reasons, nil
}

func walkSuite(suite playwrightSuite) (failing int, reasons []string) {
	for _, child := range suite.Suites {
		f, r := walkSuite(child)
		failing += f
		reasons = append(reasons, r...)
	}

	for _, spec := range suite.Specs {
		if spec.OK {
			continue
		}
		failing++
		for _, test := range spec.Tests {
			for _, result := range test.Results {
				if result.Status == "passed" || result.Error == nil {
					continue
				}
				if msg := firstLine(result.Error.Message); msg != "" {
					reasons = append(reasons, msg)
				}
			}
		}
	}

	return failing, reasons
}

// firstLine truncates a failure message to its first non-empty line.
func firstLine(msg string) string {
	for _, line := range strings.Split(msg, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
