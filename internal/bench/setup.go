package bench

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/kolkov/rlu/internal/config"
	"github.com/kolkov/rlu/internal/rlu/alloc"
	"github.com/kolkov/rlu/internal/rlu/global"
	"github.com/kolkov/rlu/internal/rlu/list"
	"github.com/kolkov/rlu/internal/rlu/thread"
)

// threadOptions converts engine settings into thread context options.
func threadOptions(c config.EngineConfig, logger *slog.Logger) thread.Options {
	opts := thread.Options{
		LogCapacity: c.LogCapacity,
		Logger:      logger,
	}
	if b := c.Backoff; b != nil {
		opts.Backoff = &thread.Backoff{
			Spins:  b.Spins,
			Yields: b.Yields,
			Sleep:  b.Sleep,
		}
	}
	return opts
}

// newThreads registers n thread contexts with a fresh global context.
func newThreads(n int, opts thread.Options) ([]*thread.Context, error) {
	g := global.New()
	threads := make([]*thread.Context, n)
	for i := range threads {
		t, err := thread.NewWithOptions(i, g, opts)
		if err != nil {
			return nil, err
		}
		threads[i] = t
	}
	return threads, nil
}

// newList builds an int32 set whose erased nodes are recycled.
func newList(threads int) *list.List[int32] {
	pool := alloc.NewPool[list.Node[int32]](threads * 64)
	return list.New[int32](list.WithPool(pool))
}

// newRand seeds a worker generator; seed 0 picks one from the clock.
func newRand(seed int64, worker int) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed + int64(worker)))
}

// randValue draws uniformly from [lo, hi].
func randValue(rng *rand.Rand, lo, hi int32) int32 {
	return lo + int32(rng.Int63n(int64(hi)-int64(lo)+1))
}

func engineStats(threads []*thread.Context) thread.Stats {
	var st thread.Stats
	for _, t := range threads {
		st.Merge(t.Stats())
	}
	return st
}

func wrapSetup(err error) error {
	return fmt.Errorf("bench setup: %w", err)
}
