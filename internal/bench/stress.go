package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/kolkov/rlu/internal/config"
	"github.com/kolkov/rlu/internal/rlu/list"
	"github.com/kolkov/rlu/internal/rlu/thread"
)

// ErrInconsistent reports a traversal that saw the list out of order or
// failed to reach the MAX sentinel.
var ErrInconsistent = errors.New("bench: inconsistent list")

// StressResult summarises a stress run.
type StressResult struct {
	Readers    int
	Writers    int
	Traversals uint64
	Adds       uint64
	Inserted   uint64
	FinalKeys  int
	Engine     thread.Stats
}

// Stress runs the ordering test.
//
// Thread i writes when i is a multiple of WriterEvery and reads otherwise.
// Thread i starts after i*Stagger. Readers traverse the list Iterations
// times, checking every step is ascending and the walk ends on the MAX
// sentinel; writers add Iterations random keys from [MinValue, MaxValue].
// The first inconsistency stops the run with ErrInconsistent.
func Stress(ctx context.Context, cfg config.StressConfig, engine config.EngineConfig, logger *slog.Logger) (*StressResult, error) {
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

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	res := &StressResult{}
	for i := range threads {
		if i%cfg.WriterEvery == 0 {
			res.Writers++
		} else {
			res.Readers++
		}
	}

	logger.Info("stress starting",
		"threads", cfg.Threads,
		"readers", res.Readers,
		"writers", res.Writers,
		"iterations", cfg.Iterations)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	counts := make([][2]uint64, cfg.Threads)
	for i, t := range threads {
		wg.Add(1)
		go func(id int, t *thread.Context) {
			defer wg.Done()

			if !sleepCtx(ctx, cfg.Stagger*time.Duration(id)) {
				return
			}

			var err error
			if id%cfg.WriterEvery == 0 {
				counts[id][0], counts[id][1], err = stressWriter(ctx, t, l, cfg, id)
			} else {
				counts[id][0], err = stressReader(ctx, t, l, cfg.Iterations)
			}
			if err != nil {
				fail(fmt.Errorf("thread %d: %w", id, err))
			}
		}(i, t)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	for id, c := range counts {
		if id%cfg.WriterEvery == 0 {
			res.Adds += c[0]
			res.Inserted += c[1]
		} else {
			res.Traversals += c[0]
		}
	}
	res.FinalKeys = l.Len()
	res.Engine = engineStats(threads)

	logger.Info("stress finished",
		"traversals", res.Traversals,
		"adds", res.Adds,
		"final_size", res.FinalKeys,
		"steals", res.Engine.Steals)
	return res, nil
}

// stressReader traverses the list n times, validating each pass.
func stressReader(ctx context.Context, t *thread.Context, l *list.List[int32], n int) (uint64, error) {
	var done uint64
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			return done, nil
		}
		if err := validate(t, l); err != nil {
			return done, err
		}
		done++
	}
	return done, nil
}

// validate walks the whole list, MIN sentinel to MAX, in one episode.
func validate(t *thread.Context, l *list.List[int32]) error {
	t.ReaderLock()
	defer t.ReaderUnlock()

	last := int32(math.MinInt32)
	for node := l.Head(); node != nil; node = node.Payload.Next {
		node = thread.Dereference(t, node)
		if node.Payload.Value < last {
			return fmt.Errorf("%w: %d after %d", ErrInconsistent, node.Payload.Value, last)
		}
		last = node.Payload.Value
	}
	if last != math.MaxInt32 {
		return fmt.Errorf("%w: walk ended at %d", ErrInconsistent, last)
	}
	return nil
}

// stressWriter adds Iterations random keys and returns attempts and
// inserts.
func stressWriter(ctx context.Context, t *thread.Context, l *list.List[int32], cfg config.StressConfig, id int) (uint64, uint64, error) {
	rng := newRand(cfg.Seed, id)

	var adds, inserted uint64
	for i := 0; i < cfg.Iterations; i++ {
		if ctx.Err() != nil {
			break
		}
		ok, err := l.Add(t, randValue(rng, cfg.MinValue, cfg.MaxValue))
		if err != nil {
			return adds, inserted, err
		}
		adds++
		if ok {
			inserted++
		}
	}
	return adds, inserted, nil
}

// sleepCtx sleeps for d and reports whether ctx is still live.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
