package bench

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/kolkov/rlu/internal/config"
	"github.com/kolkov/rlu/internal/rlu/thread"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func smallBench() config.BenchConfig {
	cfg := config.Default().Bench
	cfg.Threads = 4
	cfg.UpdateRatio = 0.2
	cfg.MinValue, cfg.MaxValue = -128, 127
	cfg.InitialSize = 64
	cfg.Duration = 100 * time.Millisecond
	cfg.StartDelay = 10 * time.Millisecond
	cfg.Seed = 7
	return cfg
}

// TestStatsMerge verifies counters add and the window widens.
func TestStatsMerge(t *testing.T) {
	t0 := time.Unix(1000, 0)

	var agg Stats
	agg.Merge(Stats{Start: t0.Add(time.Second), End: t0.Add(3 * time.Second), Add: 1, Contains: 10, Found: 4})
	agg.Merge(Stats{Start: t0, End: t0.Add(2 * time.Second), Erase: 2, Contains: 5, Found: 1,
		Engine: thread.Stats{Commits: 3}})
	agg.Merge(Stats{})

	if !agg.Start.Equal(t0) || !agg.End.Equal(t0.Add(3*time.Second)) {
		t.Errorf("window = [%v, %v], want [%v, %v]", agg.Start, agg.End, t0, t0.Add(3*time.Second))
	}
	if agg.Add != 1 || agg.Erase != 2 || agg.Contains != 15 || agg.Found != 5 {
		t.Errorf("counters = %+v", agg)
	}
	if agg.Total() != 18 || agg.Engine.Commits != 3 {
		t.Errorf("Total() = %d, Commits = %d, want 18 and 3", agg.Total(), agg.Engine.Commits)
	}
	if got := agg.OpsPerMicrosecond(); got != 18.0/3e6 {
		t.Errorf("OpsPerMicrosecond() = %v, want %v", got, 18.0/3e6)
	}
}

// TestStatsOutput verifies the CSV row and summary layout.
func TestStatsOutput(t *testing.T) {
	t0 := time.Unix(1000, 0)
	st := Stats{Start: t0, End: t0.Add(2 * time.Second), Add: 10, Erase: 10, Contains: 80, Found: 40}

	var csv bytes.Buffer
	if err := st.WriteCSV(&csv); err != nil {
		t.Fatalf("WriteCSV() = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(csv.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "# ops,") {
		t.Fatalf("CSV = %q", csv.String())
	}
	if want := "100,2000000,0.000,10,10,80,40"; lines[1] != want {
		t.Errorf("CSV row = %q, want %q", lines[1], want)
	}

	var sum bytes.Buffer
	if err := st.WriteSummary(&sum); err != nil {
		t.Fatalf("WriteSummary() = %v", err)
	}
	for _, want := range []string{"Duration: 2.000s", "Add: 10 (10.00%)", "Found: 40 (50.00%)"} {
		if !strings.Contains(sum.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, sum.String())
		}
	}

	st.Contains = 1234567
	sum.Reset()
	if err := st.WriteSummary(&sum); err != nil {
		t.Fatalf("WriteSummary() = %v", err)
	}
	if want := "Contains: 1,234,567"; !strings.Contains(sum.String(), want) {
		t.Errorf("summary missing %q:\n%s", want, sum.String())
	}
}

// TestRun executes a short benchmark end to end.
func TestRun(t *testing.T) {
	cfg := smallBench()

	res, err := Run(context.Background(), cfg, config.Default().Engine, quietLogger())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}

	if res.InitialKeys != cfg.InitialSize {
		t.Errorf("InitialKeys = %d, want %d", res.InitialKeys, cfg.InitialSize)
	}
	if len(res.Workers) != cfg.Threads {
		t.Fatalf("%d worker stats, want %d", len(res.Workers), cfg.Threads)
	}
	for i, w := range res.Workers {
		if w.Total() == 0 {
			t.Errorf("worker %d did no work", i)
		}
	}
	if res.Stats.Contains == 0 || res.Stats.Add+res.Stats.Erase == 0 {
		t.Errorf("operation mix = %+v", res.Stats)
	}
	if res.Stats.Duration() < cfg.Duration/2 {
		t.Errorf("measured %v, want about %v", res.Stats.Duration(), cfg.Duration)
	}
	if res.FinalKeys > int(cfg.MaxValue-cfg.MinValue+1) {
		t.Errorf("FinalKeys = %d exceeds the key range", res.FinalKeys)
	}
	t.Logf("%d ops, %.3f ops/us, %d commits, %d conflicts",
		res.Stats.Total(), res.Stats.OpsPerMicrosecond(), res.Stats.Engine.Commits, res.Stats.Engine.Conflicts)
}

// TestRun_ReadOnly verifies an update ratio of zero never writes.
func TestRun_ReadOnly(t *testing.T) {
	cfg := smallBench()
	cfg.UpdateRatio = 0

	res, err := Run(context.Background(), cfg, config.Default().Engine, quietLogger())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if res.Stats.Add != 0 || res.Stats.Erase != 0 || res.Stats.Engine.Commits != 0 {
		t.Errorf("read-only run wrote: %+v", res.Stats)
	}
	if res.FinalKeys != res.InitialKeys {
		t.Errorf("FinalKeys = %d, want %d", res.FinalKeys, res.InitialKeys)
	}
}

// TestRun_Cancelled verifies cancellation before the start returns promptly.
func TestRun_Cancelled(t *testing.T) {
	cfg := smallBench()
	cfg.StartDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	res, err := Run(ctx, cfg, config.Default().Engine, quietLogger())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("cancelled run took %v", time.Since(start))
	}
	if res.Stats.Total() != 0 {
		t.Errorf("cancelled run did %d ops", res.Stats.Total())
	}
}

// TestRun_InvalidConfig verifies validation happens before any work.
func TestRun_InvalidConfig(t *testing.T) {
	cfg := smallBench()
	cfg.Threads = 0

	if _, err := Run(context.Background(), cfg, config.Default().Engine, quietLogger()); !errors.Is(err, config.ErrInvalidThreads) {
		t.Errorf("Run() = %v, want ErrInvalidThreads", err)
	}
}

// TestRun_LogFull verifies an engine error from a worker fails the run.
func TestRun_LogFull(t *testing.T) {
	cfg := smallBench()
	cfg.UpdateRatio = 1

	engine := config.Default().Engine
	engine.LogCapacity = 1

	if _, err := Run(context.Background(), cfg, engine, quietLogger()); !errors.Is(err, thread.ErrLogFull) {
		t.Errorf("Run() = %v, want ErrLogFull", err)
	}
}

// TestStress runs a reduced ordering test.
func TestStress(t *testing.T) {
	cfg := config.Default().Stress
	cfg.Seed = 3
	cfg.Stagger = time.Millisecond
	if testing.Short() {
		cfg.Threads, cfg.Iterations = 32, 100
	} else {
		cfg.Iterations = 300
	}

	res, err := Stress(context.Background(), cfg, config.Default().Engine, quietLogger())
	if err != nil {
		t.Fatalf("Stress() = %v", err)
	}

	if res.Writers != cfg.Threads/cfg.WriterEvery || res.Readers+res.Writers != cfg.Threads {
		t.Errorf("readers=%d writers=%d for %d threads", res.Readers, res.Writers, cfg.Threads)
	}
	if want := uint64(res.Readers * cfg.Iterations); res.Traversals != want {
		t.Errorf("Traversals = %d, want %d", res.Traversals, want)
	}
	if want := uint64(res.Writers * cfg.Iterations); res.Adds != want {
		t.Errorf("Adds = %d, want %d", res.Adds, want)
	}
	if uint64(res.FinalKeys) != res.Inserted {
		t.Errorf("FinalKeys = %d, Inserted = %d", res.FinalKeys, res.Inserted)
	}
}

// TestValidate_DetectsDisorder corrupts a list and checks the reader notices.
func TestValidate_DetectsDisorder(t *testing.T) {
	threads, err := newThreads(1, threadOptions(config.Default().Engine, quietLogger()))
	if err != nil {
		t.Fatalf("newThreads() = %v", err)
	}
	th := threads[0]

	l := newList(1)
	for _, v := range []int32{1, 2, 3} {
		if _, err := l.Add(th, v); err != nil {
			t.Fatalf("Add(%d) = %v", v, err)
		}
	}
	if err := validate(th, l); err != nil {
		t.Fatalf("validate(sorted) = %v", err)
	}

	// Swap the values of the first two keys behind the engine's back.
	first := l.Head().Payload.Next
	second := first.Payload.Next
	first.Payload.Value, second.Payload.Value = second.Payload.Value, first.Payload.Value

	if err := validate(th, l); !errors.Is(err, ErrInconsistent) {
		t.Errorf("validate(unsorted) = %v, want ErrInconsistent", err)
	}
	if th.InEpisode() {
		t.Error("validate left the episode open")
	}
}

// TestThreadOptions verifies an unset backoff defers to the engine and an
// explicit one, zero included, is passed through.
func TestThreadOptions(t *testing.T) {
	engine := config.Default().Engine
	if opts := threadOptions(engine, quietLogger()); opts.Backoff != nil {
		t.Errorf("Backoff = %+v, want nil", *opts.Backoff)
	}

	engine.Backoff = &config.BackoffConfig{}
	opts := threadOptions(engine, quietLogger())
	if opts.Backoff == nil || *opts.Backoff != (thread.Backoff{}) {
		t.Errorf("Backoff = %+v, want explicit zero schedule", opts.Backoff)
	}
}
