package rlu

import (
	"golang.org/x/exp/constraints"

	"github.com/kolkov/rlu/internal/rlu/alloc"
	"github.com/kolkov/rlu/internal/rlu/global"
	"github.com/kolkov/rlu/internal/rlu/header"
	"github.com/kolkov/rlu/internal/rlu/list"
	"github.com/kolkov/rlu/internal/rlu/thread"
	"github.com/kolkov/rlu/internal/rlu/writelog"
)

// Global is the state shared by all threads of one RLU domain.
type Global = global.Context

// Thread is the RLU state of one worker goroutine.
type Thread = thread.Context

// Options configures a Thread. See NewThreadWithOptions.
type Options = thread.Options

// Backoff configures grace-period polling.
type Backoff = thread.Backoff

// Stats holds per-thread counters.
type Stats = thread.Stats

// Object is an RLU-managed value. Allocate with New.
type Object[T any] = header.Object[T]

// Pool recycles objects released by Retire.
type Pool[T any] = alloc.Pool[T]

// List is an ordered set of integers.
type List[T constraints.Integer] = list.List[T]

// Node is a List element.
type Node[T constraints.Integer] = list.Node[T]

// ListOption configures a List.
type ListOption[T constraints.Integer] = list.Option[T]

const (
	// MaxThreads is the number of threads one Global can register.
	MaxThreads = global.MaxThreads

	// DefaultLogCapacity is the write-log byte budget per thread.
	DefaultLogCapacity = writelog.DefaultCapacity
)

var (
	// ErrConflict reports that TryLock found the object held by another
	// thread. The episode has been aborted; restart it.
	ErrConflict = thread.ErrConflict

	// ErrLogFull reports that an episode locked more than its write log
	// holds. The episode has been aborted.
	ErrLogFull = thread.ErrLogFull

	// ErrMisuse wraps panics raised for bracket violations.
	ErrMisuse = thread.ErrMisuse

	// ErrDuplicateID, ErrIDOutOfRange and ErrRegistryFull are returned by
	// NewThread.
	ErrDuplicateID  = global.ErrDuplicateID
	ErrIDOutOfRange = global.ErrIDOutOfRange
	ErrRegistryFull = global.ErrRegistryFull

	// ErrReservedKey is returned by List for sentinel keys.
	ErrReservedKey = list.ErrReservedKey
)

// NewGlobal creates an empty RLU domain.
func NewGlobal() *Global {
	return global.New()
}

// NewThread creates and registers the context for thread id in g.
func NewThread(id int, g *Global) (*Thread, error) {
	return thread.New(id, g)
}

// NewThreadWithOptions is NewThread with explicit options.
func NewThreadWithOptions(id int, g *Global, opts Options) (*Thread, error) {
	return thread.NewWithOptions(id, g, opts)
}

// New allocates an unlocked object holding v.
func New[T any](v T) *Object[T] {
	return header.New(v)
}

// Dereference returns the version of p that t must read in its current
// episode. It never blocks.
func Dereference[T any](t *Thread, p *Object[T]) *Object[T] {
	return thread.Dereference(t, p)
}

// TryLock locks p for t's episode and returns the copy to write to.
func TryLock[T any](t *Thread, p *Object[T]) (*Object[T], error) {
	return thread.TryLock(t, p)
}

// Assign stores obj into a shared pointer field.
func Assign[T any](handle **Object[T], obj *Object[T]) {
	thread.Assign(handle, obj)
}

// Retire hands obj to release once t's write episode has committed and no
// reader can still reach it.
func Retire[T any](t *Thread, obj *Object[T], release func(*Object[T])) {
	thread.Retire(t, obj, release)
}

// Same reports whether a and b are the same object, looking through copies.
func Same[T any](a, b *Object[T]) bool {
	return header.Same(a, b)
}

// NewPool creates a pool holding at most capacity objects.
func NewPool[T any](capacity int) *Pool[T] {
	return alloc.NewPool[T](capacity)
}

// NewList creates an empty ordered set.
func NewList[T constraints.Integer](opts ...ListOption[T]) *List[T] {
	return list.New(opts...)
}

// WithPool makes a List recycle its nodes through p.
func WithPool[T constraints.Integer](p *Pool[Node[T]]) ListOption[T] {
	return list.WithPool(p)
}
