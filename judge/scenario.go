package judge

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360studio/vizjudge/config"
	"github.com/c360studio/vizjudge/evidence"
	"github.com/c360studio/vizjudge/gateway"
)

// Invoker is the judge gateway seam. *gateway.Client implements it; tests
// substitute stubs.
type Invoker interface {
	Invoke(ctx context.Context, req *gateway.Request) (*gateway.Reply, error)
}

// Default pipeline tuning.
const (
	// DefaultThreshold is the certainty a PASS verdict must reach.
	DefaultThreshold = 0.8
	// DefaultMaxAttempts is the total attempt budget: the first attempt
	// plus three retries.
	DefaultMaxAttempts = 4
	// DefaultCaptureTimeout bounds one evidence capture.
	DefaultCaptureTimeout = 30 * time.Second
	// DefaultJudgeTimeout bounds one judge round trip.
	DefaultJudgeTimeout = 120 * time.Second
)

// Runner drives the capture -> build -> judge -> parse -> decide pipeline
// for one scenario, with a bounded number of independent attempts. Each
// attempt resets the capture target and captures fresh evidence: capture
// itself may be noisy, so re-judging stale evidence would measure the wrong
// thing. Ordering within an attempt is strict; the verdict is only
// meaningful relative to the evidence snapshot it was asked about.
type Runner struct {
	capturer       evidence.Capturer
	invoker        Invoker
	threshold      float64
	maxAttempts    int
	captureTimeout time.Duration
	judgeTimeout   time.Duration
	intent         Intent
	logger         *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithThreshold sets the certainty threshold.
func WithThreshold(t float64) RunnerOption {
	return func(r *Runner) {
		r.threshold = t
	}
}

// WithMaxAttempts sets the total attempt budget (first attempt included).
func WithMaxAttempts(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithCaptureTimeout bounds each evidence capture.
func WithCaptureTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.captureTimeout = d
	}
}

// WithJudgeTimeout bounds each judge round trip.
func WithJudgeTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.judgeTimeout = d
	}
}

// WithIntent overrides the movement-detection heuristic with an explicit
// intent.
func WithIntent(i Intent) RunnerOption {
	return func(r *Runner) {
		r.intent = i
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a scenario runner over a capture source and a judge
// gateway.
func NewRunner(capturer evidence.Capturer, invoker Invoker, opts ...RunnerOption) *Runner {
	r := &Runner{
		capturer:       capturer,
		invoker:        invoker,
		threshold:      DefaultThreshold,
		maxAttempts:    DefaultMaxAttempts,
		captureTimeout: DefaultCaptureTimeout,
		judgeTimeout:   DefaultJudgeTimeout,
		intent:         IntentAuto,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// NewRunnerFromConfig creates a scenario runner tuned by the loaded
// configuration: certainty threshold, attempt budget, and the capture and
// judge timeouts. Later opts override the configured values.
func NewRunnerFromConfig(capturer evidence.Capturer, invoker Invoker, cfg *config.Config, opts ...RunnerOption) *Runner {
	tuned := make([]RunnerOption, 0, len(opts)+4)
	tuned = append(tuned,
		WithThreshold(cfg.Judge.Threshold),
		WithMaxAttempts(cfg.Judge.MaxAttempts))
	if cfg.Judge.Timeout > 0 {
		tuned = append(tuned, WithJudgeTimeout(cfg.Judge.Timeout))
	}
	if cfg.Capture.Timeout > 0 {
		tuned = append(tuned, WithCaptureTimeout(cfg.Capture.Timeout))
	}
	tuned = append(tuned, opts...)

	return NewRunner(capturer, invoker, tuned...)
}

// Run executes the scenario: up to maxAttempts independent attempts, each
// capturing fresh evidence and judging it from scratch, short-circuiting on
// the first PASS decision. Judge-side failures (transport errors, malformed
// responses) degrade to synthetic FAIL verdicts and consume an attempt.
// Only capture failures and configuration errors abort the loop: without
// evidence there is nothing to judge, and a missing credential will not fix
// itself by retrying.
func (r *Runner) Run(ctx context.Context, tc TestContext, diffText string) (*Outcome, error) {
	var last Outcome

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		outcome, err := r.attempt(ctx, tc, diffText)
		if err != nil {
			return nil, err
		}

		last = *outcome
		last.Attempts = attempt

		if last.Decision == StatusPass {
			r.logger.Debug("Scenario passed",
				"subject", tc.Subject,
				"attempt", attempt,
				"certainty", last.Verdict.Certainty)
			return &last, nil
		}

		r.logger.Warn("Scenario attempt failed",
			"subject", tc.Subject,
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
			"status", last.Verdict.Status,
			"certainty", last.Verdict.Certainty,
			"reasoning", last.Verdict.Reasoning)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return &last, nil
}

// attempt performs one capture -> judge -> decide round.
func (r *Runner) attempt(ctx context.Context, tc TestContext, diffText string) (*Outcome, error) {
	// Reset any scene state a previous attempt mutated so attempts stay
	// comparable.
	if err := r.capturer.Reset(ctx); err != nil {
		return nil, evidence.NewCaptureError("reset", err)
	}

	captureCtx, cancelCapture := context.WithTimeout(ctx, r.captureTimeout)
	ev, err := r.capturer.Capture(captureCtx)
	cancelCapture()
	if err != nil {
		if evidence.IsCaptureError(err) {
			return nil, err
		}
		return nil, evidence.NewCaptureError("evidence", err)
	}

	req := BuildRequest(ev, tc, diffText, r.intent)

	judgeCtx, cancelJudge := context.WithTimeout(ctx, r.judgeTimeout)
	reply, err := r.invoker.Invoke(judgeCtx, req)
	cancelJudge()

	var verdict Verdict
	switch {
	case err == nil:
		var ok bool
		verdict, ok = parseVerdict(reply.RawText)
		if ok {
			// Token usage only belongs to verdicts the judge actually
			// produced; synthetic failures carry none.
			verdict.Usage = reply.Usage
		}
	case gateway.IsConfigError(err):
		return nil, err
	default:
		// Transport and service failures degrade to a structured FAIL so
		// the threshold and retry machinery still run.
		verdict = SyntheticFailure(err.Error())
	}

	outcome := Decide(verdict, r.threshold)
	return &outcome, nil
}
