// Package config loads the YAML configuration for the longtask command.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Swind/go-longtask/generator"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the top-level file layout.
type Config struct {
	Plan       PlanConfig       `yaml:"plan"`
	MainThread MainThreadConfig `yaml:"main_thread"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Profiling  ProfilingConfig  `yaml:"profiling"`
	Log        LogConfig        `yaml:"log"`
}

// PlanConfig describes the seeded busy-wait invocations.
type PlanConfig struct {
	Delays   []time.Duration `yaml:"delays"`
	Duration time.Duration   `yaml:"duration"`
}

type MainThreadConfig struct {
	Name              string        `yaml:"name"`
	LongTaskThreshold time.Duration `yaml:"long_task_threshold"`
	HistoryCapacity   int           `yaml:"history_capacity"`
}

type MetricsConfig struct {
	Addr      string `yaml:"addr"`
	Namespace string `yaml:"namespace"`
	// PollInterval drives the snapshot poller.
	PollInterval time.Duration `yaml:"poll_interval"`
}

type ProfilingConfig struct {
	Pprof   bool          `yaml:"pprof"`
	Fgprof  bool          `yaml:"fgprof"`
	Datadog DatadogConfig `yaml:"datadog"`
}

type DatadogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Service string `yaml:"service"`
	Env     string `yaml:"env"`
	Version string `yaml:"version"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	plan := generator.DefaultPlan()
	return &Config{
		Plan: PlanConfig{
			Delays:   plan.Delays,
			Duration: plan.Duration,
		},
		MainThread: MainThreadConfig{
			Name:              "main",
			LongTaskThreshold: 50 * time.Millisecond,
			HistoryCapacity:   100,
		},
		Metrics: MetricsConfig{
			Addr:         "127.0.0.1:2112",
			Namespace:    "longtask",
			PollInterval: time.Second,
		},
		Profiling: ProfilingConfig{
			Pprof:  true,
			Fgprof: true,
			Datadog: DatadogConfig{
				Service: "longtask",
				Env:     "localhost",
				Version: "dev",
			},
		},
		Log: LogConfig{
			Level: "debug",
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	d.KnownFields(true)
	if err := d.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if len(c.Plan.Delays) == 0 {
		return fmt.Errorf("%w: plan.delays is empty", ErrInvalidConfig)
	}
	for i, d := range c.Plan.Delays {
		if d < 0 {
			return fmt.Errorf("%w: plan.delays[%d] is negative (%v)", ErrInvalidConfig, i, d)
		}
	}
	if c.Plan.Duration < 0 {
		return fmt.Errorf("%w: plan.duration is negative (%v)", ErrInvalidConfig, c.Plan.Duration)
	}
	if c.MainThread.LongTaskThreshold < 0 {
		return fmt.Errorf("%w: main_thread.long_task_threshold is negative", ErrInvalidConfig)
	}
	if c.Metrics.PollInterval < 0 {
		return fmt.Errorf("%w: metrics.poll_interval is negative", ErrInvalidConfig)
	}
	return nil
}

// GeneratorPlan converts the plan section.
func (c *Config) GeneratorPlan() generator.Plan {
	delays := make([]time.Duration, len(c.Plan.Delays))
	copy(delays, c.Plan.Delays)
	return generator.Plan{Delays: delays, Duration: c.Plan.Duration}
}
