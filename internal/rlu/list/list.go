// Package list implements an ordered set of integers on top of RLU.
//
// The set is a singly linked list sorted in ascending order between two
// sentinel nodes holding the smallest and largest value of T. Readers
// traverse it without locks; Add locks the predecessor of the insertion
// point and Erase locks the predecessor and the matched node. A conflicting
// lock aborts the episode and the operation restarts from the head.
//
// Usage:
//
//	g := global.New()
//	t, _ := thread.New(0, g)
//	s := list.New[int32]()
//
//	s.Add(t, 5)
//	if s.Contains(t, 5) {
//	    s.Erase(t, 5)
//	}
//
// Sentinel values are reserved: Add and Erase reject them with
// ErrReservedKey and Contains reports false.
package list

import (
	"errors"
	"runtime"
	"unsafe"

	"golang.org/x/exp/constraints"

	"github.com/kolkov/rlu/internal/rlu/alloc"
	"github.com/kolkov/rlu/internal/rlu/header"
	"github.com/kolkov/rlu/internal/rlu/thread"
)

// ErrReservedKey is returned for keys equal to a sentinel value.
var ErrReservedKey = errors.New("list: key is reserved for a sentinel")

// Node is one element of the list.
type Node[T constraints.Integer] struct {
	Value T
	Next  *header.Object[Node[T]]
}

// List is an ordered set of distinct T values.
type List[T constraints.Integer] struct {
	head *header.Object[Node[T]]
	pool *alloc.Pool[Node[T]]

	lo, hi T
}

// Option configures a List.
type Option[T constraints.Integer] func(*List[T])

// WithPool makes the list allocate nodes from p and return erased nodes to
// it once their grace period has completed.
func WithPool[T constraints.Integer](p *alloc.Pool[Node[T]]) Option[T] {
	return func(l *List[T]) {
		l.pool = p
	}
}

// New returns an empty list holding only its two sentinels.
func New[T constraints.Integer](opts ...Option[T]) *List[T] {
	lo, hi := bounds[T]()
	l := &List[T]{lo: lo, hi: hi}
	for _, opt := range opts {
		opt(l)
	}
	if l.pool == nil {
		l.pool = alloc.NewPool[Node[T]](alloc.DefaultCapacity)
	}

	tail := header.New(Node[T]{Value: hi})
	l.head = header.New(Node[T]{Value: lo, Next: tail})
	return l
}

// bounds returns the smallest and largest value of T.
func bounds[T constraints.Integer]() (lo, hi T) {
	var zero T
	if ^zero < zero {
		// Signed: lo is the lone set sign bit, hi its complement.
		var one T = 1
		lo = one << (unsafe.Sizeof(zero)*8 - 1)
		return lo, ^lo
	}
	return 0, ^zero
}

// Bounds returns the sentinel values, which are not valid keys.
func (l *List[T]) Bounds() (lo, hi T) { return l.lo, l.hi }

// Head returns the MIN sentinel. Nodes reached from it must be passed
// through thread.Dereference inside an episode.
func (l *List[T]) Head() *header.Object[Node[T]] { return l.head }

// Pool returns the node pool.
func (l *List[T]) Pool() *alloc.Pool[Node[T]] { return l.pool }

func (l *List[T]) reserved(v T) bool { return v == l.lo || v == l.hi }

// find returns the last node below v and the first node at or above v, as
// seen by t's episode.
func (l *List[T]) find(t *thread.Context, v T) (prev, next *header.Object[Node[T]]) {
	prev = thread.Dereference(t, l.head)
	next = thread.Dereference(t, prev.Payload.Next)
	for next.Payload.Value < v {
		prev = next
		next = thread.Dereference(t, prev.Payload.Next)
	}
	return prev, next
}

// Add inserts v and reports whether it was absent.
//
// Only thread.ErrLogFull and ErrReservedKey are returned; conflicts restart
// the operation.
func (l *List[T]) Add(t *thread.Context, v T) (bool, error) {
	if l.reserved(v) {
		return false, ErrReservedKey
	}

	for {
		t.ReaderLock()
		prev, next := l.find(t, v)

		if next.Payload.Value == v {
			t.ReaderUnlock()
			return false, nil
		}

		p, err := thread.TryLock(t, prev)
		if errors.Is(err, thread.ErrConflict) {
			runtime.Gosched()
			continue
		}
		if err != nil {
			return false, err
		}

		node := l.pool.Get(Node[T]{Value: v})
		thread.Assign(&node.Payload.Next, next)
		thread.Assign(&p.Payload.Next, node)

		t.ReaderUnlock()
		return true, nil
	}
}

// Erase removes v and reports whether it was present. The unlinked node is
// returned to the pool after the commit's grace period.
func (l *List[T]) Erase(t *thread.Context, v T) (bool, error) {
	if l.reserved(v) {
		return false, ErrReservedKey
	}

	for {
		t.ReaderLock()
		prev, next := l.find(t, v)

		if next.Payload.Value != v {
			t.ReaderUnlock()
			return false, nil
		}

		p, err := thread.TryLock(t, prev)
		if err == nil {
			var victim *header.Object[Node[T]]
			victim, err = thread.TryLock(t, next)
			if err == nil {
				thread.Assign(&p.Payload.Next, victim.Payload.Next)
				thread.Retire(t, victim, l.pool.Put)

				t.ReaderUnlock()
				return true, nil
			}
		}

		if errors.Is(err, thread.ErrConflict) {
			runtime.Gosched()
			continue
		}
		return false, err
	}
}

// Contains reports whether v is in the list.
func (l *List[T]) Contains(t *thread.Context, v T) bool {
	if l.reserved(v) {
		return false
	}

	t.ReaderLock()
	_, next := l.find(t, v)
	found := next.Payload.Value == v
	t.ReaderUnlock()
	return found
}

// Walk calls fn for every key in ascending order within one episode,
// stopping early when fn returns false. Sentinels are skipped.
//
// fn must not start another episode on t.
func (l *List[T]) Walk(t *thread.Context, fn func(T) bool) {
	t.ReaderLock()
	defer t.ReaderUnlock()

	node := thread.Dereference(t, l.head)
	for {
		node = thread.Dereference(t, node.Payload.Next)
		if node.Payload.Next == nil {
			return
		}
		if !fn(node.Payload.Value) {
			return
		}
	}
}

// Len counts the keys by following the originals directly.
//
// Not safe against concurrent writers; for setup and diagnostics only.
func (l *List[T]) Len() int {
	n := 0
	for node := l.head.Payload.Next; node.Payload.Next != nil; node = node.Payload.Next {
		n++
	}
	return n
}
