// Package writelog implements the per-thread RLU write log.
//
// A Log records, in program order, every object a thread has locked during
// the current write episode. Its capacity is a byte budget: each entry costs
// EntryOverhead plus the size of the shadowed payload, mirroring an
// append-only arena of (header, payload) pairs. An episode that would exceed
// the budget fails with ErrLogFull instead of being truncated.
//
// Each thread owns two logs, swapped at commit time: the active one being
// built and the quiescent one from the previous episode.
//
// A Log is owned by a single thread and is not safe for concurrent use.
package writelog

import (
	"errors"
	"unsafe"

	"github.com/kolkov/rlu/internal/rlu/header"
)

// DefaultCapacity is the byte budget of a write log (1 MB).
const DefaultCapacity = 1 << 20

// EntryOverhead is the budget charged per entry on top of its payload.
const EntryOverhead = unsafe.Sizeof(header.Entry{})

// ErrLogFull is returned when an episode locks more bytes than the log holds.
var ErrLogFull = errors.New("writelog: write log full")

// Log is a fixed-capacity, append-only write log.
type Log struct {
	capacity uintptr
	used     uintptr
	entries  []*header.Entry
	retired  []func()
}

// New creates a log with the given byte budget.
// A non-positive capacity selects DefaultCapacity.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		capacity: uintptr(capacity),
		entries:  make([]*header.Entry, 0, 64),
	}
}

// Fits reports ErrLogFull if a payload of size bytes cannot be appended.
func (l *Log) Fits(size uintptr) error {
	if l.used+EntryOverhead+size > l.capacity {
		return ErrLogFull
	}
	return nil
}

// Append records e at the end of the log.
func (l *Log) Append(e *header.Entry) error {
	if err := l.Fits(e.Size()); err != nil {
		return err
	}
	l.entries = append(l.entries, e)
	l.used += EntryOverhead + e.Size()
	return nil
}

// WriteBack replays the log onto the originals in program order, unlocking
// each object once its payload is in place.
func (l *Log) WriteBack() {
	for _, e := range l.entries {
		e.WriteBack()
		e.Unlock()
	}
}

// Unlock releases every logged object without writing anything back.
func (l *Log) Unlock() {
	for _, e := range l.entries {
		e.Unlock()
	}
}

// Retire schedules release to run after the episode's grace period.
func (l *Log) Retire(release func()) {
	l.retired = append(l.retired, release)
}

// Reclaim runs and clears the scheduled releases, returning how many ran.
func (l *Log) Reclaim() int {
	n := len(l.retired)
	for i, release := range l.retired {
		release()
		l.retired[i] = nil
	}
	l.retired = l.retired[:0]
	return n
}

// Reset empties the log, dropping entries and pending releases.
func (l *Log) Reset() {
	clear(l.entries)
	l.entries = l.entries[:0]
	clear(l.retired)
	l.retired = l.retired[:0]
	l.used = 0
}

// Len returns the number of logged entries.
func (l *Log) Len() int { return len(l.entries) }

// Used returns the consumed byte budget.
func (l *Log) Used() int { return int(l.used) }

// Capacity returns the byte budget.
func (l *Log) Capacity() int { return int(l.capacity) }
