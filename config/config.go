// Package config provides configuration loading and management for vizjudge.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete vizjudge configuration
type Config struct {
	Judge   JudgeConfig   `yaml:"judge"`
	Capture CaptureConfig `yaml:"capture"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// JudgeConfig configures the judge gateway and decision gate
type JudgeConfig struct {
	// Provider is the judge backend ("gemini" or "openai")
	Provider string `yaml:"provider"`
	// Model is the multimodal model name
	Model string `yaml:"model"`
	// Endpoint overrides the provider's default API endpoint
	Endpoint string `yaml:"endpoint"`
	// Threshold is the certainty a PASS verdict must reach (0.0-1.0)
	Threshold float64 `yaml:"threshold"`
	// MaxAttempts is the total scenario attempt budget (first attempt included)
	MaxAttempts int `yaml:"maxAttempts"`
	// Timeout is the maximum time to wait for one judge round trip
	Timeout time.Duration `yaml:"timeout"`
}

// CaptureConfig configures evidence capture
type CaptureConfig struct {
	// Timeout is the maximum time to wait for one evidence capture
	Timeout time.Duration `yaml:"timeout"`
	// SettleDelay is the pause after an action before capturing, letting
	// the scene render the action's effect
	SettleDelay time.Duration `yaml:"settleDelay"`
}

// MetricsConfig configures the metrics runner
type MetricsConfig struct {
	// OutputDir is where run-session reports are persisted
	OutputDir string `yaml:"outputDir"`
	// Command is the out-of-process execution command template
	Command []string `yaml:"command"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Judge: JudgeConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash",
			Endpoint:    "", // Provider default
			Threshold:   0.8,
			MaxAttempts: 4,
			Timeout:     2 * time.Minute,
		},
		Capture: CaptureConfig{
			Timeout:     30 * time.Second,
			SettleDelay: 250 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			OutputDir: ".vizjudge/metrics",
			Command:   []string{"npx", "playwright", "test"},
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Judge.Provider == "" {
		return fmt.Errorf("judge.provider is required")
	}
	if c.Judge.Model == "" {
		return fmt.Errorf("judge.model is required")
	}
	if c.Judge.Threshold < 0 || c.Judge.Threshold > 1 {
		return fmt.Errorf("judge.threshold must be between 0 and 1")
	}
	if c.Judge.MaxAttempts < 1 {
		return fmt.Errorf("judge.maxAttempts must be at least 1")
	}
	if c.Metrics.OutputDir == "" {
		return fmt.Errorf("metrics.outputDir is required")
	}
	if len(c.Metrics.Command) == 0 {
		return fmt.Errorf("metrics.command is required")
	}
	return nil
}

// Merge overlays non-zero fields from other onto c
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Judge.Provider != "" {
		c.Judge.Provider = other.Judge.Provider
	}
	if other.Judge.Model != "" {
		c.Judge.Model = other.Judge.Model
	}
	if other.Judge.Endpoint != "" {
		c.Judge.Endpoint = other.Judge.Endpoint
	}
	if other.Judge.Threshold != 0 {
		c.Judge.Threshold = other.Judge.Threshold
	}
	if other.Judge.MaxAttempts != 0 {
		c.Judge.MaxAttempts = other.Judge.MaxAttempts
	}
	if other.Judge.Timeout != 0 {
		c.Judge.Timeout = other.Judge.Timeout
	}
	if other.Capture.Timeout != 0 {
		c.Capture.Timeout = other.Capture.Timeout
	}
	if other.Capture.SettleDelay != 0 {
		c.Capture.SettleDelay = other.Capture.SettleDelay
	}
	if other.Metrics.OutputDir != "" {
		c.Metrics.OutputDir = other.Metrics.OutputDir
	}
	if len(other.Metrics.Command) > 0 {
		c.Metrics.Command = other.Metrics.Command
	}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
