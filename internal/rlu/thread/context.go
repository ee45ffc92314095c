package thread

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/kolkov/rlu/internal/rlu/clock"
	"github.com/kolkov/rlu/internal/rlu/global"
	"github.com/kolkov/rlu/internal/rlu/writelog"
)

// Options configures a thread context.
type Options struct {
	// LogCapacity is the byte budget of each write log.
	// Zero selects writelog.DefaultCapacity.
	LogCapacity int

	// Backoff is the grace-period polling schedule.
	// Nil selects DefaultBackoff; a zero Backoff yields on every poll.
	Backoff *Backoff

	// Logger receives registration and failure events.
	// Nil selects slog.Default().
	Logger *slog.Logger
}

// Context is the RLU state of one worker.
//
// Layout:
//   - runCount, localClock, writeClock: published to other threads (atomic)
//   - isWriter, log, quiescent, stats: owned by the worker
type Context struct {
	id     int
	global *global.Context

	// runCount is odd inside an episode and even when quiescent.
	runCount atomic.Uint64

	// localClock is the global clock snapshot taken at ReaderLock.
	localClock atomic.Uint64

	// writeClock is the stamp of the commit in flight, or clock.Never.
	writeClock atomic.Uint64

	isWriter bool

	// log is the active write log; quiescent holds the previous
	// generation until the next commit swaps them.
	log       *writelog.Log
	quiescent *writelog.Log

	waiter  waiter
	samples []uint64
	logger  *slog.Logger

	stats Stats
}

var _ global.Participant = (*Context)(nil)

// New creates the context for thread id and registers it with g.
//
// Every context must be registered before any thread begins operating.
func New(id int, g *global.Context) (*Context, error) {
	return NewWithOptions(id, g, Options{})
}

// NewWithOptions is New with explicit options.
func NewWithOptions(id int, g *global.Context, opts Options) (*Context, error) {
	backoff := DefaultBackoff()
	if opts.Backoff != nil {
		backoff = *opts.Backoff
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	t := &Context{
		id:        id,
		global:    g,
		log:       writelog.New(opts.LogCapacity),
		quiescent: writelog.New(opts.LogCapacity),
		waiter:    waiter{b: backoff},
		logger:    opts.Logger,
	}
	t.writeClock.Store(uint64(clock.Never))

	if err := g.Register(t); err != nil {
		return nil, fmt.Errorf("register thread %d: %w", id, err)
	}

	t.logger.Debug("rlu thread registered",
		"thread", id,
		"log_capacity", t.log.Capacity())
	return t, nil
}

// ID returns the thread id.
func (t *Context) ID() int { return t.id }

// RunCount returns the episode parity counter.
func (t *Context) RunCount() uint64 { return t.runCount.Load() }

// LocalClock returns the snapshot taken by the latest ReaderLock.
func (t *Context) LocalClock() clock.Stamp { return clock.Stamp(t.localClock.Load()) }

// WriteClock returns the stamp of the commit in flight, or clock.Never.
func (t *Context) WriteClock() clock.Stamp { return clock.Stamp(t.writeClock.Load()) }

// InEpisode reports whether the thread is between ReaderLock and
// ReaderUnlock.
func (t *Context) InEpisode() bool { return t.runCount.Load()&1 == 1 }

// Stats returns a copy of the thread's counters.
func (t *Context) Stats() Stats { return t.stats }

// ReaderLock begins an episode and snapshots the global clock.
//
// Writes committed with a stamp at or below the snapshot are visible for the
// whole episode; later writes may or may not be.
func (t *Context) ReaderLock() {
	if t.InEpisode() {
		panic(fmt.Errorf("%w: nested ReaderLock on thread %d", ErrMisuse, t.id))
	}

	t.isWriter = false
	t.runCount.Add(1)
	t.localClock.Store(uint64(t.global.Clock()))
	t.stats.Episodes++
}

// ReaderUnlock ends the episode, committing the write log if the episode
// locked any object.
func (t *Context) ReaderUnlock() {
	if !t.InEpisode() {
		panic(fmt.Errorf("%w: ReaderUnlock outside an episode on thread %d", ErrMisuse, t.id))
	}

	t.runCount.Add(1)
	if t.isWriter {
		t.commitWriteLog()
	}
	t.isWriter = false
}

// Abort ends the episode without writing anything back, releasing every
// object it locked and dropping its retired objects.
//
// Abort outside an episode does nothing, so a caller may abort after a
// failed TryLock (which has already aborted) without harm.
func (t *Context) Abort() {
	if !t.InEpisode() {
		return
	}

	t.runCount.Add(1)
	if t.isWriter {
		t.log.Unlock()
		t.log.Reset()
	}
	t.isWriter = false
	t.stats.Aborts++
}

// commitWriteLog makes the episode's writes visible.
func (t *Context) commitWriteLog() {
	wc := t.global.Tick(func(s clock.Stamp) {
		t.writeClock.Store(uint64(s))
	})

	t.synchronize(wc)
	t.log.WriteBack()
	t.writeClock.Store(uint64(clock.Never))

	t.stats.Reclaimed += uint64(t.log.Reclaim())
	t.stats.Commits++
	t.swapWriteLogs()
}

// synchronize waits until no thread that could still observe pre-commit
// state through the originals is inside the episode it was in when sampled.
//
// For each other thread the wait ends as soon as one holds:
//   - it was quiescent (even run count) when sampled,
//   - its run count moved on, so it left that episode,
//   - its snapshot is at or past wc, so it steals this commit's copies.
func (t *Context) synchronize(wc clock.Stamp) {
	threads := t.global.Threads()

	t.samples = t.samples[:0]
	for _, p := range threads {
		t.samples = append(t.samples, p.RunCount())
	}

	for i, p := range threads {
		if p.ID() == t.id {
			continue
		}

		sample := t.samples[i]
		t.waiter.reset()
		for sample&1 == 1 &&
			p.RunCount() == sample &&
			p.LocalClock() < wc {
			t.waiter.wait()
			t.stats.Polls++
		}
	}
}

// swapWriteLogs retires the committed log to quiescent and reuses the
// previous quiescent log as the new active one.
func (t *Context) swapWriteLogs() {
	t.log, t.quiescent = t.quiescent, t.log
	t.log.Reset()
}
