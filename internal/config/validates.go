package config

import (
	"fmt"
	"math"
)

// maxThreads mirrors the registry capacity of an RLU global context.
const maxThreads = 256

func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigIsNil
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if err := c.Bench.Validate(); err != nil {
		return err
	}
	if err := c.Stress.Validate(); err != nil {
		return err
	}
	return nil
}

func (c *EngineConfig) Validate() error {
	if c.LogCapacity < 0 {
		return fmt.Errorf("%w: log_capacity %d", ErrInvalidEngine, c.LogCapacity)
	}

	if b := c.Backoff; b != nil && (b.Spins < 0 || b.Yields < 0 || b.Sleep < 0) {
		return fmt.Errorf("%w: negative backoff", ErrInvalidEngine)
	}

	return nil
}

func (c *BenchConfig) Validate() error {
	if c.Threads < 1 || c.Threads > maxThreads {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidThreads, c.Threads, maxThreads)
	}

	if c.UpdateRatio < 0 || c.UpdateRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidUpdateRatio, c.UpdateRatio)
	}

	if err := validateRange(c.MinValue, c.MaxValue); err != nil {
		return err
	}

	if span := int64(c.MaxValue) - int64(c.MinValue) + 1; int64(c.InitialSize) > span || c.InitialSize < 0 {
		return fmt.Errorf("%w: %d keys in [%d, %d]", ErrInitialSizeTooLarge, c.InitialSize, c.MinValue, c.MaxValue)
	}

	if c.Duration <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidDuration, c.Duration)
	}

	if c.StartDelay < 0 {
		return fmt.Errorf("%w: start_delay %v", ErrInvalidDuration, c.StartDelay)
	}

	return nil
}

func (c *StressConfig) Validate() error {
	if c.Threads < 1 || c.Threads > maxThreads {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidThreads, c.Threads, maxThreads)
	}

	if c.Iterations < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidIterations, c.Iterations)
	}

	if c.WriterEvery < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidWriterEvery, c.WriterEvery)
	}

	if err := validateRange(c.MinValue, c.MaxValue); err != nil {
		return err
	}

	if c.Stagger < 0 {
		return fmt.Errorf("%w: stagger %v", ErrInvalidDuration, c.Stagger)
	}

	return nil
}

// validateRange rejects inverted ranges and the int32 extremes, which the
// list reserves for its sentinels.
func validateRange(lo, hi int32) error {
	if lo > hi {
		return fmt.Errorf("%w: min %d above max %d", ErrInvalidRange, lo, hi)
	}

	if lo == math.MinInt32 || hi == math.MaxInt32 {
		return fmt.Errorf("%w: [%d, %d] includes a sentinel value", ErrInvalidRange, lo, hi)
	}

	return nil
}
