package bench

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kolkov/rlu/internal/config"
	"github.com/kolkov/rlu/internal/rlu/list"
	"github.com/kolkov/rlu/internal/rlu/thread"
)

// deadlineCheckMask sets how often workers read the wall clock.
const deadlineCheckMask = 63

// Result is the outcome of one benchmark run.
type Result struct {
	Stats Stats

	// Workers holds the per-worker counters in thread id order.
	Workers []Stats

	// InitialKeys and FinalKeys are the set sizes before and after the run.
	InitialKeys int
	FinalKeys   int
}

// Run executes the throughput benchmark.
//
// Workers wait for a common start time (now + StartDelay), then loop until
// Duration has elapsed or ctx is cancelled. Each iteration draws a key from
// [MinValue, MaxValue]; with probability UpdateRatio it adds or erases the
// key with equal odds, otherwise it looks the key up.
func Run(ctx context.Context, cfg config.BenchConfig, engine config.EngineConfig, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	threads, err := newThreads(cfg.Threads, threadOptions(engine, logger))
	if err != nil {
		return nil, wrapSetup(err)
	}

	l := newList(cfg.Threads)
	if err := l.Prefill(cfg.InitialSize, cfg.MinValue, cfg.MaxValue, newRand(cfg.Seed, -1)); err != nil {
		return nil, wrapSetup(err)
	}

	res := &Result{
		Workers:     make([]Stats, cfg.Threads),
		InitialKeys: l.Len(),
	}

	start := time.Now().Add(cfg.StartDelay)
	end := start.Add(cfg.Duration)

	logger.Info("benchmark starting",
		"threads", cfg.Threads,
		"update_ratio", cfg.UpdateRatio,
		"range", []int32{cfg.MinValue, cfg.MaxValue},
		"initial_size", res.InitialKeys,
		"duration", cfg.Duration,
		"start_delay", cfg.StartDelay)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i, t := range threads {
		wg.Add(1)
		go func(id int, t *thread.Context) {
			defer wg.Done()

			st, err := runWorker(ctx, t, l, cfg, id, start, end)
			res.Workers[id] = st
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(i, t)
	}
	wg.Wait()

	if len(errs) > 0 {
		return nil, errs[0]
	}

	for _, st := range res.Workers {
		res.Stats.Merge(st)
	}
	res.FinalKeys = l.Len()

	logger.Info("benchmark finished",
		"ops", res.Stats.Total(),
		"ops_per_us", res.Stats.OpsPerMicrosecond(),
		"commits", res.Stats.Engine.Commits,
		"conflicts", res.Stats.Engine.Conflicts,
		"final_size", res.FinalKeys)
	return res, nil
}

func runWorker(ctx context.Context, t *thread.Context, l *list.List[int32], cfg config.BenchConfig,
	id int, start, end time.Time) (st Stats, err error) {
	rng := newRand(cfg.Seed, id)

	if !sleepCtx(ctx, time.Until(start)) {
		return st, nil
	}

	st.Start = time.Now()
	defer func() {
		st.End = time.Now()
		st.Engine = t.Stats()
	}()

	for n := 0; ; n++ {
		if n&deadlineCheckMask == 0 {
			if ctx.Err() != nil || !time.Now().Before(end) {
				break
			}
		}

		v := randValue(rng, cfg.MinValue, cfg.MaxValue)
		if rng.Float64() >= cfg.UpdateRatio {
			if l.Contains(t, v) {
				st.Found++
			}
			st.Contains++
			continue
		}

		if rng.Intn(2) == 0 {
			if _, err = l.Add(t, v); err != nil {
				return st, err
			}
			st.Add++
		} else {
			if _, err = l.Erase(t, v); err != nil {
				return st, err
			}
			st.Erase++
		}
	}
	return st, nil
}
