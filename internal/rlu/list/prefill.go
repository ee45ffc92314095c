package list

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/kolkov/rlu/internal/rlu/header"
)

// ErrInvalidRange is returned by Prefill when the requested keys cannot be
// drawn from [from, to].
var ErrInvalidRange = errors.New("list: invalid prefill range")

// Prefill inserts n distinct random keys drawn uniformly from [from, to].
//
// Prefill writes the originals directly and is not safe while any thread
// operates on the list; call it before the workers start.
func (l *List[T]) Prefill(n int, from, to T, rng *rand.Rand) error {
	if n <= 0 {
		return nil
	}
	if to < from {
		return fmt.Errorf("%w: %d below %d", ErrInvalidRange, to, from)
	}

	// Two's complement keeps the difference exact for every T.
	span := uint64(to) - uint64(from)
	avail := span
	if span < math.MaxUint64 {
		avail = span + 1
	}
	if from == l.lo {
		avail--
	}
	if to == l.hi {
		avail--
	}
	if avail-l.countIn(from, to) < uint64(n) {
		return fmt.Errorf("%w: %d keys requested from [%d, %d]", ErrInvalidRange, n, from, to)
	}

	for added := 0; added < n; {
		off := rng.Uint64()
		if span < math.MaxUint64 {
			off %= span + 1
		}
		v := from + T(off)
		if l.reserved(v) {
			continue
		}

		prev := l.head
		next := prev.Payload.Next
		for next.Payload.Value < v {
			prev = next
			next = prev.Payload.Next
		}
		if next.Payload.Value == v {
			continue
		}

		prev.Payload.Next = header.New(Node[T]{Value: v, Next: next})
		added++
	}
	return nil
}

// countIn counts keys already present in [from, to].
func (l *List[T]) countIn(from, to T) uint64 {
	var n uint64
	for node := l.head.Payload.Next; node.Payload.Next != nil; node = node.Payload.Next {
		if v := node.Payload.Value; v >= from && v <= to {
			n++
		}
	}
	return n
}
