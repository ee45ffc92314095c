// Package rlu provides Read-Log-Update synchronization for Go.
//
// RLU lets many goroutines read a shared linked structure without locks
// while writers modify it through private copies. A writer's copies are
// published atomically at commit, and the commit waits only for readers
// that started before it.
//
// # Quick Start
//
// Create one Global per shared structure and one Thread per worker goroutine,
// all before any worker starts:
//
//	g := rlu.NewGlobal()
//	workers := make([]*rlu.Thread, n)
//	for i := range workers {
//		workers[i], _ = rlu.NewThread(i, g)
//	}
//
// Readers bracket their accesses in an episode and read every shared object
// through Dereference:
//
//	t.ReaderLock()
//	acct := rlu.Dereference(t, shared)
//	balance := acct.Payload.Balance
//	t.ReaderUnlock()
//
// Writers lock what they modify and write only to the returned copy:
//
//	for {
//		t.ReaderLock()
//		cp, err := rlu.TryLock(t, shared)
//		if errors.Is(err, rlu.ErrConflict) {
//			continue // already aborted; retry
//		}
//		if err != nil {
//			return err
//		}
//		cp.Payload.Balance += 10
//		t.ReaderUnlock() // commit
//		return nil
//	}
//
// # API Overview
//
//   - Contexts: [NewGlobal], [NewThread], [NewThreadWithOptions]
//   - Objects: [New], [Dereference], [TryLock], [Assign], [Retire], [Same]
//   - Ordered set: [NewList], [WithPool], [NewPool]
//   - Version information: [GetInfo], [Compatible], [Version]
//
// # Rules
//
//   - A Thread belongs to one goroutine at a time.
//   - Pointers obtained in an episode are invalid after it ends.
//   - Shared pointer fields are written with [Assign], never directly.
//   - After ErrConflict or ErrLogFull the episode is already aborted.
package rlu
