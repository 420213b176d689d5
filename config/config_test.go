package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "gemini", cfg.Judge.Provider)
	assert.Equal(t, 0.8, cfg.Judge.Threshold)
	assert.Equal(t, 4, cfg.Judge.MaxAttempts)
	assert.NotEmpty(t, cfg.Metrics.Command)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing provider",
			mutate:  func(c *Config) { c.Judge.Provider = "" },
			wantErr: "judge.provider",
		},
		{
			name:    "missing model",
			mutate:  func(c *Config) { c.Judge.Model = "" },
			wantErr: "judge.model",
		},
		{
			name:    "threshold above 1",
			mutate:  func(c *Config) { c.Judge.Threshold = 1.5 },
			wantErr: "judge.threshold",
		},
		{
			name:    "threshold below 0",
			mutate:  func(c *Config) { c.Judge.Threshold = -0.1 },
			wantErr: "judge.threshold",
		},
		{
			name:    "zero attempts",
			mutate:  func(c *Config) { c.Judge.MaxAttempts = 0 },
			wantErr: "judge.maxAttempts",
		},
		{
			name:    "missing metrics command",
			mutate:  func(c *Config) { c.Metrics.Command = nil },
			wantErr: "metrics.command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	overlay := &Config{}
	overlay.Judge.Provider = "openai"
	overlay.Judge.Threshold = 0.95
	overlay.Capture.SettleDelay = time.Second

	base.Merge(overlay)

	assert.Equal(t, "openai", base.Judge.Provider)
	assert.Equal(t, 0.95, base.Judge.Threshold)
	assert.Equal(t, time.Second, base.Capture.SettleDelay)
	// Fields absent from the overlay keep their values.
	assert.Equal(t, "gemini-2.0-flash", base.Judge.Model)
	assert.Equal(t, 4, base.Judge.MaxAttempts)
}

func TestMerge_Nil(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(nil)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vizjudge.yaml")
	yaml := `
judge:
  provider: openai
  model: gpt-4o
  threshold: 0.9
  timeout: 90s
metrics:
  outputDir: out/metrics
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Judge.Provider)
	assert.Equal(t, "gpt-4o", cfg.Judge.Model)
	assert.Equal(t, 0.9, cfg.Judge.Threshold)
	assert.Equal(t, 90*time.Second, cfg.Judge.Timeout)
	assert.Equal(t, "out/metrics", cfg.Metrics.OutputDir)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vizjudge.yaml")

	cfg := DefaultConfig()
	cfg.Judge.Threshold = 0.85
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0.85, loaded.Judge.Threshold)
	assert.Equal(t, cfg.Metrics.Command, loaded.Metrics.Command)
}
