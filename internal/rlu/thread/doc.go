// Package thread implements the per-thread RLU context.
//
// A Context is the only handle a worker uses to touch shared state. Each
// operation is bracketed by ReaderLock and ReaderUnlock (an episode):
//
//	t.ReaderLock()
//	p := thread.Dereference(t, head)      // read, possibly through a copy
//	c, err := thread.TryLock(t, p)        // claim p, get a private copy
//	thread.Assign(&c.Payload.Next, q)     // store an original, never a copy
//	t.ReaderUnlock()                      // commit if anything was locked
//
// Readers never block and never validate. A writer mutates thread-private
// copies recorded in its write log; ReaderUnlock commits them by taking a
// stamp from the global clock, waiting for a grace period so no reader that
// predates the stamp is still running, writing the copies back and
// unlocking the originals.
//
// TryLock reports ErrConflict when another thread holds the object. The
// context has then already aborted the episode: the caller must drop every
// pointer obtained during it and restart from ReaderLock.
//
// A Context must only be used by the goroutine that owns it. Episodes do not
// nest.
package thread
