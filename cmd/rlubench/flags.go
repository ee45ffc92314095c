package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"time"

	"github.com/kolkov/rlu/internal/config"
)

var errUnexpectedArgs = errors.New("unexpected arguments")

// engineFlags are shared by bench and stress.
type engineFlags struct {
	configPath  string
	runID       string
	logCapacity int
	spins       int
	yields      int
	sleep       time.Duration
}

func (e *engineFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&e.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&e.runID, "run-id", "", "run identifier for logs (default: random UUID)")
	fs.IntVar(&e.logCapacity, "log-capacity", 0, "write-log budget per thread in bytes")
	fs.IntVar(&e.spins, "spins", 0, "busy polls before yielding in a grace period")
	fs.IntVar(&e.yields, "yields", 0, "yielding polls before sleeping in a grace period")
	fs.DurationVar(&e.sleep, "sleep", 0, "pause between late grace-period polls")
}

// load reads the configuration file, if any, over the defaults.
func (e *engineFlags) load() (*config.Config, error) {
	if e.configPath == "" {
		return config.Default(), nil
	}
	return config.Read(e.configPath)
}

// apply copies an explicitly set engine flag into cfg.
func (e *engineFlags) apply(name string, cfg *config.Config) bool {
	switch name {
	case "run-id":
		cfg.RunID = e.runID
	case "log-capacity":
		cfg.Engine.LogCapacity = e.logCapacity
	case "spins":
		cfg.Engine.OverrideBackoff().Spins = e.spins
	case "yields":
		cfg.Engine.OverrideBackoff().Yields = e.yields
	case "sleep":
		cfg.Engine.OverrideBackoff().Sleep = e.sleep
	default:
		return false
	}
	return true
}

// parseBenchArgs builds the bench configuration from args.
func parseBenchArgs(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)

	var (
		engine      engineFlags
		threads     int
		ratio       float64
		minValue    int
		maxValue    int
		initialSize int
		duration    time.Duration
		delay       time.Duration
		seed        int64
	)
	engine.register(fs)
	for _, name := range []string{"n", "threads"} {
		fs.IntVar(&threads, name, 0, "number of worker threads")
	}
	for _, name := range []string{"r", "update-ratio"} {
		fs.Float64Var(&ratio, name, 0, "fraction of operations that add or erase")
	}
	for _, name := range []string{"m", "min-value"} {
		fs.IntVar(&minValue, name, 0, "smallest key")
	}
	for _, name := range []string{"M", "max-value"} {
		fs.IntVar(&maxValue, name, 0, "largest key")
	}
	for _, name := range []string{"s", "initial-size"} {
		fs.IntVar(&initialSize, name, 0, "keys inserted before the run")
	}
	for _, name := range []string{"d", "duration"} {
		fs.DurationVar(&duration, name, 0, "measured run time")
	}
	fs.DurationVar(&delay, "delay", 0, "wait before all workers start together")
	fs.Int64Var(&seed, "seed", 0, "random seed (0: from the clock)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: %v", errUnexpectedArgs, fs.Args())
	}

	cfg, err := engine.load()
	if err != nil {
		return nil, err
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		if engine.apply(f.Name, cfg) {
			return
		}
		switch f.Name {
		case "n", "threads":
			cfg.Bench.Threads = threads
		case "r", "update-ratio":
			cfg.Bench.UpdateRatio = ratio
		case "m", "min-value":
			cfg.Bench.MinValue, flagErr = toInt32(f.Name, minValue, flagErr)
		case "M", "max-value":
			cfg.Bench.MaxValue, flagErr = toInt32(f.Name, maxValue, flagErr)
		case "s", "initial-size":
			cfg.Bench.InitialSize = initialSize
		case "d", "duration":
			cfg.Bench.Duration = duration
		case "delay":
			cfg.Bench.StartDelay = delay
		case "seed":
			cfg.Bench.Seed = seed
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}

	cfg.PopulateDefaults()
	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Bench.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseStressArgs builds the stress configuration from args.
func parseStressArgs(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("stress", flag.ContinueOnError)

	var (
		engine      engineFlags
		threads     int
		iterations  int
		writerEvery int
		minValue    int
		maxValue    int
		stagger     time.Duration
		seed        int64
	)
	engine.register(fs)
	fs.IntVar(&threads, "threads", 0, "number of worker threads")
	fs.IntVar(&iterations, "iterations", 0, "traversals per reader and inserts per writer")
	fs.IntVar(&writerEvery, "writer-every", 0, "thread i writes when i is a multiple of this")
	fs.IntVar(&minValue, "min-value", 0, "smallest key writers insert")
	fs.IntVar(&maxValue, "max-value", 0, "largest key writers insert")
	fs.DurationVar(&stagger, "stagger", 0, "start delay between consecutive threads")
	fs.Int64Var(&seed, "seed", 0, "random seed (0: from the clock)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: %v", errUnexpectedArgs, fs.Args())
	}

	cfg, err := engine.load()
	if err != nil {
		return nil, err
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		if engine.apply(f.Name, cfg) {
			return
		}
		switch f.Name {
		case "threads":
			cfg.Stress.Threads = threads
		case "iterations":
			cfg.Stress.Iterations = iterations
		case "writer-every":
			cfg.Stress.WriterEvery = writerEvery
		case "min-value":
			cfg.Stress.MinValue, flagErr = toInt32(f.Name, minValue, flagErr)
		case "max-value":
			cfg.Stress.MaxValue, flagErr = toInt32(f.Name, maxValue, flagErr)
		case "stagger":
			cfg.Stress.Stagger = stagger
		case "seed":
			cfg.Stress.Seed = seed
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}

	cfg.PopulateDefaults()
	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Stress.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// toInt32 narrows a key flag, keeping the first error seen.
func toInt32(name string, v int, prev error) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		if prev == nil {
			prev = fmt.Errorf("%w: -%s %d does not fit in 32 bits", config.ErrInvalidRange, name, v)
		}
		return 0, prev
	}
	return int32(v), prev
}
