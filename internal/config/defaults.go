package config

import (
	"time"

	"github.com/google/uuid"
)

var defaultEngine = EngineConfig{
	LogCapacity: 1 << 20,
}

// defaultBackoff matches the engine's own default schedule.
var defaultBackoff = BackoffConfig{
	Spins:  128,
	Yields: 64,
	Sleep:  20 * time.Microsecond,
}

var defaultBench = BenchConfig{
	Threads:     8,
	UpdateRatio: 0.02,
	MinValue:    -1024,
	MaxValue:    1023,
	InitialSize: 512,
	Duration:    2 * time.Second,
	StartDelay:  time.Second,
}

var defaultStress = StressConfig{
	Threads:     128,
	Iterations:  1000,
	WriterEvery: 32,
	MinValue:    -2048,
	MaxValue:    2048,
	Stagger:     100 * time.Millisecond / 8,
}

func Default() *Config {
	return &Config{
		RunID:  uuid.New().String(),
		Engine: defaultEngine,
		Bench:  defaultBench,
		Stress: defaultStress,
	}
}

// PopulateDefaults fills LogCapacity. Backoff is left alone: nil already
// means the default schedule and a zero schedule is a valid setting.
func (c *EngineConfig) PopulateDefaults() {
	if c.LogCapacity == 0 {
		c.LogCapacity = defaultEngine.LogCapacity
	}
}

// OverrideBackoff returns the backoff to modify, starting from the default
// schedule when none is set yet.
func (c *EngineConfig) OverrideBackoff() *BackoffConfig {
	if c.Backoff == nil {
		b := defaultBackoff
		c.Backoff = &b
	}
	return c.Backoff
}

// PopulateDefaults fills zero fields. UpdateRatio, the value bounds and
// StartDelay are left alone: zero is a meaningful setting for each.
func (c *BenchConfig) PopulateDefaults() {
	if c.Threads == 0 {
		c.Threads = defaultBench.Threads
	}

	if c.InitialSize == 0 {
		c.InitialSize = defaultBench.InitialSize
	}

	if c.Duration == 0 {
		c.Duration = defaultBench.Duration
	}
}

func (c *StressConfig) PopulateDefaults() {
	if c.Threads == 0 {
		c.Threads = defaultStress.Threads
	}

	if c.Iterations == 0 {
		c.Iterations = defaultStress.Iterations
	}

	if c.WriterEvery == 0 {
		c.WriterEvery = defaultStress.WriterEvery
	}
}

func (c *Config) PopulateDefaults() {
	if c.RunID == "" {
		c.RunID = uuid.New().String()
	}

	c.Engine.PopulateDefaults()
	c.Bench.PopulateDefaults()
	c.Stress.PopulateDefaults()
}
