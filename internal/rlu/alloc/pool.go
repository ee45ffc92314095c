// Package alloc recycles RLU objects whose grace period has completed.
//
// An object handed to Put must be unreachable: it was unlinked by a
// committed write episode and every reader that could have seen it has
// since left its episode. thread.Retire provides exactly that point, so the
// usual pattern is
//
//	thread.Retire(t, victim, pool.Put)
//
// Get never returns an object that is still locked or still referenced by a
// write-log copy.
package alloc

import (
	"sync"

	"github.com/kolkov/rlu/internal/rlu/header"
)

// DefaultCapacity bounds a pool created with a non-positive capacity.
const DefaultCapacity = 1024

// Pool is a bounded stack of reusable objects.
//
// Thread Safety: safe for concurrent use. Get and Put take a mutex; both sit
// outside reader episodes' hot path (Put runs after commit, Get on insert).
type Pool[T any] struct {
	mu       sync.Mutex
	free     []*header.Object[T]
	capacity int

	// recycled counts Gets served from the stack.
	recycled uint64
}

// NewPool returns an empty pool holding at most capacity objects.
func NewPool[T any](capacity int) *Pool[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Pool[T]{
		free:     make([]*header.Object[T], 0, capacity),
		capacity: capacity,
	}
}

// Get returns an unlocked object holding v, recycled when one is available.
func (p *Pool[T]) Get(v T) *header.Object[T] {
	p.mu.Lock()
	n := len(p.free)
	if n == 0 {
		p.mu.Unlock()
		return header.New(v)
	}
	obj := p.free[n-1]
	p.free[n-1] = nil
	p.free = p.free[:n-1]
	p.recycled++
	p.mu.Unlock()

	obj.Reset(v)
	return obj
}

// Put returns obj to the pool. The object is dropped when the pool is full.
func (p *Pool[T]) Put(obj *header.Object[T]) {
	if obj == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) == p.capacity {
		return
	}
	p.free = append(p.free, obj)
}

// Len returns the number of objects waiting for reuse.
func (p *Pool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Recycled returns how many Gets were served from the pool.
func (p *Pool[T]) Recycled() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recycled
}
