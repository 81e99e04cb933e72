package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"

	"github.com/Swind/go-longtask/generator"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "longtask.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault_MatchesGeneratorPlan(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if diff := cmp.Diff(generator.DefaultPlan(), cfg.GeneratorPlan()); diff != "" {
		t.Fatalf("GeneratorPlan() mismatch (-want +got):\n%s", diff)
	}
}

// TestLoad_OverridesDefaults verifies a partial file keeps unset defaults
func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
plan:
  delays: [100ms, 250ms]
  duration: 75ms
main_thread:
  long_task_threshold: 20ms
metrics:
  addr: 127.0.0.1:0
log:
  level: info
  development: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := generator.Plan{
		Delays:   []time.Duration{100 * time.Millisecond, 250 * time.Millisecond},
		Duration: 75 * time.Millisecond,
	}
	if diff := cmp.Diff(want, cfg.GeneratorPlan()); diff != "" {
		t.Fatalf("GeneratorPlan() mismatch (-want +got):\n%s", diff)
	}
	if cfg.MainThread.LongTaskThreshold != 20*time.Millisecond {
		t.Fatalf("LongTaskThreshold = %v, want 20ms", cfg.MainThread.LongTaskThreshold)
	}
	if cfg.MainThread.Name != "main" {
		t.Fatalf("MainThread.Name = %q, want default main", cfg.MainThread.Name)
	}
	if cfg.Metrics.Addr != "127.0.0.1:0" || cfg.Metrics.Namespace != "longtask" {
		t.Fatalf("Metrics = %+v", cfg.Metrics)
	}
	if !cfg.Profiling.Pprof || cfg.Profiling.Datadog.Enabled {
		t.Fatalf("Profiling = %+v, want defaults", cfg.Profiling)
	}
	if cfg.Log.Level != "info" || !cfg.Log.Development {
		t.Fatalf("Log = %+v", cfg.Log)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		invalid bool
	}{
		{name: "unknown field", body: "plan:\n  repeat: true\n"},
		{name: "bad duration", body: "plan:\n  duration: soon\n"},
		{name: "empty delays", body: "plan:\n  delays: []\n", invalid: true},
		{name: "negative delay", body: "plan:\n  delays: [-1s]\n", invalid: true},
		{name: "negative duration", body: "plan:\n  duration: -5ms\n", invalid: true},
		{name: "negative threshold", body: "main_thread:\n  long_task_threshold: -1ms\n", invalid: true},
		{name: "negative poll", body: "metrics:\n  poll_interval: -1s\n", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			if got := errors.Is(err, ErrInvalidConfig); got != tt.invalid {
				t.Fatalf("errors.Is(%v, ErrInvalidConfig) = %v, want %v", err, got, tt.invalid)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load() error = %v, want os.ErrNotExist", err)
	}
}

func TestLogConfig_NewLogger(t *testing.T) {
	logger, err := LogConfig{Level: "warn"}.NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if logger.Zap().Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug enabled at warn level")
	}

	if _, err := (LogConfig{Level: "loud"}).NewLogger(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("NewLogger() error = %v, want ErrInvalidConfig", err)
	}
}
