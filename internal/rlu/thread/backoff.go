package thread

import (
	"runtime"
	"time"
)

// Backoff configures how a committing writer polls other threads during
// its grace period.
//
// Polling escalates in three phases: Spins busy polls, then Yields polls
// separated by runtime.Gosched, then polls separated by Sleep.
//
// Usage:
//
//	// Default: short spin, then yield, then 20µs sleeps
//	t, _ := thread.New(0, g)
//
//	// Latency-sensitive writers on dedicated cores
//	t, _ := thread.NewWithOptions(0, g, thread.Options{
//	    Backoff: &thread.Backoff{Spins: 4096, Yields: 1024, Sleep: time.Microsecond},
//	})
//
//	// Always yield, never sleep
//	t, _ := thread.NewWithOptions(0, g, thread.Options{
//	    Backoff: &thread.Backoff{},
//	})
type Backoff struct {
	// Spins is the number of busy polls before yielding.
	Spins int

	// Yields is the number of polls separated by runtime.Gosched.
	Yields int

	// Sleep is the pause between polls once spins and yields are used up.
	// Zero keeps yielding forever.
	Sleep time.Duration
}

// DefaultBackoff returns the polling schedule used when none is given.
func DefaultBackoff() Backoff {
	return Backoff{
		Spins:  128,
		Yields: 64,
		Sleep:  20 * time.Microsecond,
	}
}

// waiter tracks progress through one Backoff schedule.
type waiter struct {
	b Backoff
	n int
}

func (w *waiter) reset() { w.n = 0 }

// wait pauses before the next poll and returns the poll count so far.
func (w *waiter) wait() int {
	w.n++
	switch {
	case w.n <= w.b.Spins:
	case w.n <= w.b.Spins+w.b.Yields || w.b.Sleep <= 0:
		runtime.Gosched()
	default:
		time.Sleep(w.b.Sleep)
	}
	return w.n
}
