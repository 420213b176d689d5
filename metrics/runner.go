package metrics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// failureToken is the fixed reasoning digest used when a failed run left no
// parseable structured report behind.
const failureToken = "Failure"

// rawTailLimit bounds the diagnostic output kept per failed run.
const rawTailLimit = 2000

// Spec describes one repeated-run measurement session.
type Spec struct {
	// SpecPath is the scenario spec file to execute.
	SpecPath string

	// TotalRuns is the number of independent executions requested.
	TotalRuns int

	// Browser selects the capture target ("chromium", "firefox", "webkit").
	Browser string

	// Grep optionally filters scenarios within the spec file.
	Grep string

	// Delay is an optional pause between consecutive runs.
	Delay time.Duration

	// AbortOnFails stops the session once this many runs have failed.
	// Zero disables early termination.
	AbortOnFails int
}

// Execution is the raw outcome of one out-of-process run.
type Execution struct {
	// ReportJSON is the structured report the run produced, empty when the
	// process left none behind.
	ReportJSON []byte

	// OutputTail is the trailing combined stdout/stderr, for diagnostics.
	OutputTail string

	// Failed indicates the process exited non-zero.
	Failed bool
}

// Executor runs one scenario execution out-of-process. The command executor
// is the real implementation; tests substitute fakes.
type Executor interface {
	RunOnce(ctx context.Context, spec Spec, runIndex int) (*Execution, error)
}

// Runner drives N independent scenario executions strictly one at a time.
// Sequential execution is deliberate: the capture target is a single shared
// browser/render resource that cannot serve concurrent automated sessions.
type Runner struct {
	executor  Executor
	outputDir string
	logger    *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithExecutor substitutes the out-of-process executor.
func WithExecutor(e Executor) RunnerOption {
	return func(r *Runner) {
		r.executor = e
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a metrics runner. command is the execution command
// template (e.g., ["npx", "playwright", "test"]); outputDir is where the
// finalized report is persisted.
func NewRunner(command []string, outputDir string, opts ...RunnerOption) *Runner {
	r := &Runner{
		executor:  &commandExecutor{command: command},
		outputDir: outputDir,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes the session and persists the finalized report. It returns
// the report even when runs failed; the caller derives the exit code from
// FailRuns. Only infrastructure failures (the command cannot be spawned,
// the report cannot be written) come back as errors.
func (r *Runner) Run(ctx context.Context, spec Spec) (*Report, error) {
	if spec.TotalRuns <= 0 {
		return nil, fmt.Errorf("totalRuns must be positive, got %d", spec.TotalRuns)
	}

	report := &Report{
		SessionID: uuid.New().String(),
		SpecID:    SpecID(spec.SpecPath),
		Browser:   spec.Browser,
	}

	r.logger.Info("Starting metrics session",
		"session_id", report.SessionID,
		"spec", spec.SpecPath,
		"browser", spec.Browser,
		"runs", spec.TotalRuns)

	for i := 1; i <= spec.TotalRuns; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if spec.Delay > 0 && i > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(spec.Delay):
			}
		}

		start := time.Now()
		execution, err := r.executor.RunOnce(ctx, spec, i)
		durationMs := time.Since(start).Milliseconds()
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}

		record := r.recordRun(i, durationMs, execution)

		report.TotalRuns++
		report.Durations = append(report.Durations, durationMs)
		if record == nil {
			report.PassRuns++
			r.logger.Info("Run passed", "run", i, "duration_ms", durationMs)
		} else {
			report.FailRuns++
			report.Failures = append(report.Failures, *record)
			r.logger.Warn("Run failed",
				"run", i,
				"duration_ms", durationMs,
				"failing_tests", record.FailingTests,
				"reasons", strings.Join(record.Reasons, "; "))
		}

		if spec.AbortOnFails > 0 && report.FailRuns >= spec.AbortOnFails {
			report.Aborted = true
			r.logger.Warn("Abort threshold reached, stopping session",
				"fail_runs", report.FailRuns,
				"runs_issued", report.TotalRuns)
			break
		}
	}

	report.finalize()

	path, err := report.Save(r.outputDir)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Metrics session complete",
		"session_id", report.SessionID,
		"pass_runs", report.PassRuns,
		"fail_runs", report.FailRuns,
		"mean_ms", report.MeanMs,
		"report", path)

	return report, nil
}

// recordRun classifies one execution. It returns nil for a passing run and
// a populated RunRecord for a failing one.
func (r *Runner) recordRun(runIndex int, durationMs int64, execution *Execution) *RunRecord {
	failing, reasons, parseErr := parseRunReport(execution.ReportJSON)

	failed := execution.Failed || failing > 0
	if parseErr != nil {
		// No structured report to consult; trust the exit status.
		failed = execution.Failed
		failing = 0
		reasons = nil
	}
	if !failed {
		return nil
	}

	if len(reasons) == 0 {
		reasons = []string{failureToken}
	}

	return &RunRecord{
		RunIndex:     runIndex,
		DurationMs:   durationMs,
		FailingTests: failing,
		Reasons:      reasons,
		RawTail:      execution.OutputTail,
	}
}

// commandExecutor spawns the configured command for each run, pointing the
// JSON reporter at a per-run temp file.
type commandExecutor struct {
	command []string
}

func (c *commandExecutor) RunOnce(ctx context.Context, spec Spec, runIndex int) (*Execution, error) {
	if len(c.command) == 0 {
		return nil, fmt.Errorf("execution command is not configured")
	}

	reportFile, err := os.CreateTemp("", "vizjudge-run-*.json")
	if err != nil {
		return nil, fmt.Errorf("create report file: %w", err)
	}
	reportPath := reportFile.Name()
	reportFile.Close()
	defer os.Remove(reportPath)

	args := append([]string{}, c.command[1:]...)
	args = append(args, spec.SpecPath, "--reporter=json")
	if spec.Browser != "" {
		args = append(args, "--project="+spec.Browser)
	}
	if spec.Grep != "" {
		args = append(args, "--grep", spec.Grep)
	}

	cmd := exec.CommandContext(ctx, c.command[0], args...)
	cmd.Env = append(os.Environ(), "PLAYWRIGHT_JSON_OUTPUT_NAME="+reportPath)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			// Spawn failure, not a test failure.
			return nil, fmt.Errorf("execute %s: %w", filepath.Base(c.command[0]), runErr)
		}
	}

	reportJSON, _ := os.ReadFile(reportPath)

	return &Execution{
		ReportJSON: reportJSON,
		OutputTail: tail(output.String(), rawTailLimit),
		Failed:     runErr != nil,
	}, nil
}

// tail returns at most limit trailing bytes of s.
func tail(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[len(s)-limit:]
}
