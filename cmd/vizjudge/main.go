// Package main provides the vizjudge binary entry point.
// Vizjudge measures visual-regression scenarios judged by a multimodal
// model: the metrics command repeats one scenario out-of-process and reports
// its flakiness.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	// Register judge providers via init()
	_ "github.com/c360studio/vizjudge/gateway/providers"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/c360studio/vizjudge/config"
	"github.com/c360studio/vizjudge/gateway"
	"github.com/c360studio/vizjudge/metrics"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "vizjudge"
)

// errRunsFailed signals a completed session with failing runs, for CI
// gating via the exit code.
var errRunsFailed = errors.New("one or more runs failed")

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	// Credentials typically live in a local .env during development
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errRunsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "AI visual regression judge harness",
		Long: `Vizjudge replaces brittle pixel-diff screenshot assertions with a
model-judged visual-regression check. Scenario tests capture visual evidence
of an interactive scene around a simulated user action and ask a multimodal
judge whether the expected change happened.

The metrics command measures scenario flakiness by repeating one scenario
out-of-process and aggregating pass rate, latency, and failure reasons.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(logLevel)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(metricsCmd())
	cmd.AddCommand(checkCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func metricsCmd() *cobra.Command {
	var (
		specGlob     string
		runs         int
		browser      string
		grep         string
		delayMs      int
		abortOnFails int
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Measure scenario flakiness across repeated runs",
		Long: `Executes a scenario spec N times as independent OS processes, strictly
one at a time, and persists a JSON report with pass/fail counts, duration
statistics, and failure reasoning per spec.

Exits non-zero if any run failed, for CI gating.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if specGlob == "" {
				return fmt.Errorf("--spec is required")
			}

			cfg, err := config.NewLoader(slog.Default()).Load()
			if err != nil {
				return err
			}

			specPaths, err := expandSpecGlob(specGlob)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner := metrics.NewRunner(cfg.Metrics.Command, cfg.Metrics.OutputDir)

			anyFailed := false
			for _, specPath := range specPaths {
				report, err := runner.Run(ctx, metrics.Spec{
					SpecPath:     specPath,
					TotalRuns:    runs,
					Browser:      browser,
					Grep:         grep,
					Delay:        time.Duration(delayMs) * time.Millisecond,
					AbortOnFails: abortOnFails,
				})
				if err != nil {
					return err
				}
				if report.FailRuns > 0 {
					anyFailed = true
				}
			}

			if anyFailed {
				return errRunsFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&specGlob, "spec", "", "Scenario spec file or doublestar glob (required)")
	cmd.Flags().IntVar(&runs, "runs", 20, "Number of independent runs per spec")
	cmd.Flags().StringVar(&browser, "browser", "chromium", "Capture target (chromium, firefox, webkit)")
	cmd.Flags().StringVar(&grep, "grep", "", "Filter scenarios within the spec by pattern")
	cmd.Flags().IntVar(&delayMs, "delay", 0, "Delay between runs in milliseconds")
	cmd.Flags().IntVar(&abortOnFails, "abortOnFails", 0, "Stop after this many failed runs (0 = disabled)")

	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and judge credentials",
		Long: `Loads the layered configuration and constructs the judge gateway
client, verifying the provider credential without making any network call.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(slog.Default()).Load()
			if err != nil {
				return err
			}

			if _, err := gateway.NewClient(cfg.Judge.Provider, cfg.Judge.Model, gateway.WithEndpoint(cfg.Judge.Endpoint)); err != nil {
				return err
			}

			fmt.Printf("Configuration OK: provider=%s model=%s threshold=%.2f maxAttempts=%d\n",
				cfg.Judge.Provider, cfg.Judge.Model, cfg.Judge.Threshold, cfg.Judge.MaxAttempts)
			return nil
		},
	}
}

// expandSpecGlob resolves the --spec argument: a literal path passes
// through, a doublestar glob expands to every matching spec file.
func expandSpecGlob(pattern string) ([]string, error) {
	if _, err := os.Stat(pattern); err == nil {
		return []string{pattern}, nil
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid spec pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no spec files match %q", pattern)
	}
	return matches, nil
}

func setupLogging(level string) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(handler))
}
