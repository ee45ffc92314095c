package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	RunID  string       `yaml:"run_id"`
	Engine EngineConfig `yaml:"engine"`
	Bench  BenchConfig  `yaml:"bench"`
	Stress StressConfig `yaml:"stress"`
}

// EngineConfig tunes every thread context a run creates.
type EngineConfig struct {
	LogCapacity int `yaml:"log_capacity"`

	// Backoff replaces the engine's grace-period polling schedule.
	// Nil keeps the engine default; an all-zero schedule yields on every poll.
	Backoff *BackoffConfig `yaml:"backoff"`
}

type BackoffConfig struct {
	Spins  int           `yaml:"spins"`
	Yields int           `yaml:"yields"`
	Sleep  time.Duration `yaml:"sleep"`
}

// BenchConfig drives the throughput benchmark.
type BenchConfig struct {
	Threads     int           `yaml:"threads"`
	UpdateRatio float64       `yaml:"update_ratio"`
	MinValue    int32         `yaml:"min_value"`
	MaxValue    int32         `yaml:"max_value"`
	InitialSize int           `yaml:"initial_size"`
	Duration    time.Duration `yaml:"duration"`
	StartDelay  time.Duration `yaml:"start_delay"`
	Seed        int64         `yaml:"seed"`
}

// StressConfig drives the ordering stress test.
type StressConfig struct {
	Threads     int           `yaml:"threads"`
	Iterations  int           `yaml:"iterations"`
	WriterEvery int           `yaml:"writer_every"`
	MinValue    int32         `yaml:"min_value"`
	MaxValue    int32         `yaml:"max_value"`
	Stagger     time.Duration `yaml:"stagger"`
	Seed        int64         `yaml:"seed"`
}

// Read loads a YAML file over the defaults, so keys absent from the file
// keep their default values.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.PopulateDefaults()
	return cfg, nil
}
