package thread

import (
	"fmt"

	"github.com/kolkov/rlu/internal/rlu/clock"
	"github.com/kolkov/rlu/internal/rlu/header"
)

// Dereference returns the version of p the calling thread must read.
//
// Algorithm:
//  1. Unlocked, or p is already a copy: p itself.
//  2. Locked by the calling thread: its own copy.
//  3. Locked by another thread whose commit stamp is at or below the
//     caller's snapshot: that thread's copy (the write is ordered before
//     the caller).
//  4. Otherwise: the original p.
//
// Dereference never blocks.
func Dereference[T any](t *Context, p *header.Object[T]) *header.Object[T] {
	e := header.GetCopy(p)

	if header.IsUnlocked(e) {
		return p
	}
	if header.IsCopy(e) {
		return p
	}

	owner := e.ThreadID()
	if owner == t.id {
		return header.CopyOf[T](e)
	}

	if t.writerStamp(owner).VisibleAt(t.LocalClock()) {
		t.stats.Steals++
		return header.CopyOf[T](e)
	}
	return p
}

// writerStamp returns the in-flight commit stamp of thread id.
func (t *Context) writerStamp(id int) clock.Stamp {
	w := t.global.Thread(id)
	if w == nil {
		return clock.Never
	}
	return w.WriteClock()
}

// TryLock claims p for the current episode and returns the thread-private
// copy all writes must go through.
//
// p may be an original or a copy; it is resolved to the original first.
// Locking an object the thread already holds returns the existing copy.
//
// On ErrConflict or ErrLogFull the episode has been aborted: the caller
// must discard everything obtained during it. ErrConflict is expected under
// contention; restart the operation from ReaderLock.
func TryLock[T any](t *Context, p *header.Object[T]) (*header.Object[T], error) {
	if !t.InEpisode() {
		panic(fmt.Errorf("%w: TryLock outside an episode on thread %d", ErrMisuse, t.id))
	}

	t.isWriter = true
	p = header.GetActual(p)

	if e := header.GetCopy(p); !header.IsUnlocked(e) {
		if e.ThreadID() == t.id {
			return header.CopyOf[T](e), nil
		}
		t.stats.Conflicts++
		t.Abort()
		return nil, ErrConflict
	}

	if err := t.log.Fits(header.SizeOf[T]()); err != nil {
		t.logger.Warn("rlu write log full",
			"thread", t.id,
			"entries", t.log.Len(),
			"used", t.log.Used(),
			"capacity", t.log.Capacity())
		t.Abort()
		return nil, err
	}

	e := header.NewEntry(t.id, p)
	if !e.Lock() {
		// Lost the race for the header since it was read unlocked.
		t.stats.Conflicts++
		t.Abort()
		return nil, ErrConflict
	}

	// The payload is only stable once the header is ours.
	e.Snapshot()
	if err := t.log.Append(e); err != nil {
		e.Unlock()
		t.Abort()
		return nil, err
	}
	return header.CopyOf[T](e), nil
}

// Assign stores obj into a pointer field, always as the original object so
// the shared structure never references a write-log copy.
func Assign[T any](handle **header.Object[T], obj *header.Object[T]) {
	*handle = header.GetActual(obj)
}

// Retire schedules release(obj) to run once the current write episode has
// committed and its grace period has completed. No reader can reach obj by
// then, so release may recycle it. An aborted episode drops the request.
//
// obj must have been unlinked by this episode.
func Retire[T any](t *Context, obj *header.Object[T], release func(*header.Object[T])) {
	if !t.isWriter {
		panic(fmt.Errorf("%w: Retire outside a write episode on thread %d", ErrMisuse, t.id))
	}

	actual := header.GetActual(obj)
	t.log.Retire(func() { release(actual) })
}
