// Package clock implements the logical clock that totally orders RLU commits.
//
// Every committed write episode is stamped with a unique, increasing Stamp.
// A reader snapshots the clock when its episode begins; any write whose stamp
// is less than or equal to that snapshot is ordered before the reader and may
// be observed through the writer's in-flight copy.
package clock

import (
	"math"
	"runtime"
	"sync/atomic"
)

// Stamp is a logical timestamp drawn from the global clock.
type Stamp uint64

// Never is the write stamp of a thread that is not committing.
//
// It compares greater than every real stamp, so no reader ever treats the
// copies of an idle writer as visible.
const Never Stamp = math.MaxUint64

// VisibleAt reports whether a write stamped s is ordered before a reader
// whose snapshot is local.
//
//go:nosplit
func (s Stamp) VisibleAt(local Stamp) bool {
	return s <= local
}

// String returns the decimal form of the stamp, or "never" for Never.
func (s Stamp) String() string {
	if s == Never {
		return "never"
	}
	return itoa(uint64(s))
}

// Clock is a monotonically increasing counter shared by all threads.
//
// The counter is kept doubled: seq is even when idle and odd while a writer
// is publishing its stamp, so Now reports the pre-tick value until the
// writer's stamp is visible. Readers only ever load.
//
// The zero value is ready to use and starts at 0.
type Clock struct {
	seq atomic.Uint64
}

// Now returns the current clock value.
//
//go:nosplit
func (c *Clock) Now() Stamp {
	return Stamp(c.seq.Load() >> 1)
}

// Tick assigns the next stamp to a committing writer and advances the clock.
//
// publish is called exactly once with the assigned stamp, before the clock
// moves to it: a reader that observes the new clock value also observes the
// writer's published stamp, and the stamp never changes afterwards. Ticks of
// concurrent writers are serialised; each gets a unique stamp.
func (c *Clock) Tick(publish func(Stamp)) Stamp {
	for {
		v := c.seq.Load()
		if v&1 == 1 {
			runtime.Gosched()
			continue
		}
		if !c.seq.CompareAndSwap(v, v+1) {
			continue
		}
		next := Stamp(v>>1 + 1)
		publish(next)
		c.seq.Store(v + 2)
		return next
	}
}

// itoa converts an integer to string without fmt.
func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
