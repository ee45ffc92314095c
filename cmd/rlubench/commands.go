package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/kolkov/rlu/internal/bench"
	"github.com/kolkov/rlu/internal/logging"
	"github.com/kolkov/rlu/rlu"
)

// benchCommand implements 'rlubench bench' and returns the exit code.
func benchCommand(args []string) int {
	cfg, err := parseBenchArgs(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	logging.InitDefault(cfg.RunID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Bench.StartDelay > 0 {
		fmt.Fprintf(os.Stderr, "Starting the benchmark in %v...\n", cfg.Bench.StartDelay)
	}

	res, err := bench.Run(ctx, cfg.Bench, cfg.Engine, slog.Default())
	if err != nil {
		slog.Error("benchmark failed", "err", err)
		return 1
	}

	if err := res.Stats.WriteCSV(os.Stdout); err != nil {
		slog.Error("write results", "err", err)
		return 1
	}
	if err := res.Stats.WriteSummary(os.Stderr); err != nil {
		slog.Error("write summary", "err", err)
		return 1
	}
	return 0
}

// stressCommand implements 'rlubench stress' and returns the exit code.
func stressCommand(args []string) int {
	cfg, err := parseStressArgs(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	logging.InitDefault(cfg.RunID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := bench.Stress(ctx, cfg.Stress, cfg.Engine, slog.Default())
	if err != nil {
		slog.Error("stress failed", "err", err)
		return 1
	}

	fmt.Fprintf(os.Stderr, "OK: %d readers made %d traversals, %d writers inserted %d of %d keys (final size %d)\n",
		res.Readers, res.Traversals, res.Writers, res.Inserted, res.Adds, res.FinalKeys)
	return 0
}

// versionCommand implements 'rlubench version'.
//
// With -require, it exits 1 unless the engine satisfies the given version.
// With -gomod, it checks the engine requirement of a dependent go.mod.
func versionCommand(args []string) int {
	return runVersion(args, os.Stdout, os.Stderr)
}

func runVersion(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	fs.SetOutput(stderr)
	require := fs.String("require", "", "minimum compatible engine version")
	goMod := fs.String("gomod", "", "go.mod of a module depending on the engine")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	info := rlu.GetInfo()
	fmt.Fprintf(stdout, "rlubench version %s\n", rlu.Version)
	fmt.Fprintf(stdout, "engine %s (%s), %d threads max, %s write logs\n",
		info.Version, info.Algorithm, info.MaxThreads, humanize.IBytes(uint64(info.LogCapacity)))

	if *require != "" && !rlu.Compatible(*require) {
		fmt.Fprintf(stderr, "engine %s does not satisfy %s\n", info.Version, *require)
		return 1
	}

	if *goMod != "" {
		req, err := readRequirement(*goMod)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		switch {
		case req.Local:
			fmt.Fprintf(stdout, "%s uses a local replacement of %s\n", req.Module, rlu.ModulePath)
		case !req.compatible():
			fmt.Fprintf(stderr, "%s requires %s %s, engine is %s\n",
				req.Module, rlu.ModulePath, req.effective(), info.Version)
			return 1
		default:
			fmt.Fprintf(stdout, "%s requires %s %s: compatible\n", req.Module, rlu.ModulePath, req.effective())
		}
	}
	return 0
}
