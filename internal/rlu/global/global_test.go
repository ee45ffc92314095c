package global

import (
	"errors"
	"testing"

	"github.com/kolkov/rlu/internal/rlu/clock"
)

type fakeThread struct {
	id int
}

func (f *fakeThread) ID() int {
	return f.id
}

func (f *fakeThread) RunCount() uint64 {
	return 0
}

func (f *fakeThread) LocalClock() clock.Stamp {
	return 0
}

func (f *fakeThread) WriteClock() clock.Stamp {
	return clock.Never
}

// TestNew verifies a fresh context is empty with the clock at 0.
func TestNew(t *testing.T) {
	g := New()

	if g.Len() != 0 {
		t.Errorf("Len() = %d, want 0", g.Len())
	}
	if g.Clock() != 0 {
		t.Errorf("Clock() = %v, want 0", g.Clock())
	}
	if g.Thread(0) != nil {
		t.Error("Thread(0) on empty registry != nil")
	}
}

// TestRegister verifies lookup by id and registration order.
func TestRegister(t *testing.T) {
	g := New()
	ids := []int{2, 0, 5}

	for _, id := range ids {
		if err := g.Register(&fakeThread{id: id}); err != nil {
			t.Fatalf("Register(%d) = %v", id, err)
		}
	}

	if g.Len() != len(ids) {
		t.Errorf("Len() = %d, want %d", g.Len(), len(ids))
	}
	for _, id := range ids {
		p := g.Thread(id)
		if p == nil || p.ID() != id {
			t.Errorf("Thread(%d) = %v", id, p)
		}
	}
	if g.Thread(1) != nil {
		t.Error("Thread(1) != nil for an unregistered gap")
	}
	if g.Thread(99) != nil || g.Thread(-1) != nil {
		t.Error("Thread() out of range != nil")
	}

	for i, p := range g.Threads() {
		if p.ID() != ids[i] {
			t.Errorf("Threads()[%d].ID() = %d, want %d", i, p.ID(), ids[i])
		}
	}
}

// TestRegister_Errors verifies misuse is rejected.
func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name    string
		id      int
		wantErr error
	}{
		{name: "negative id", id: -1, wantErr: ErrIDOutOfRange},
		{name: "id at capacity", id: MaxThreads, wantErr: ErrIDOutOfRange},
		{name: "duplicate id", id: 0, wantErr: ErrDuplicateID},
	}

	g := New()
	if err := g.Register(&fakeThread{id: 0}); err != nil {
		t.Fatalf("Register(0) = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Register(&fakeThread{id: tt.id})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register(%d) = %v, want %v", tt.id, err, tt.wantErr)
			}
		})
	}

	if g.Len() != 1 {
		t.Errorf("Len() = %d after rejected registrations, want 1", g.Len())
	}
}

// TestRegister_Full verifies the registry holds exactly MaxThreads entries.
func TestRegister_Full(t *testing.T) {
	g := New()
	for id := 0; id < MaxThreads; id++ {
		if err := g.Register(&fakeThread{id: id}); err != nil {
			t.Fatalf("Register(%d) = %v", id, err)
		}
	}
	if g.Len() != MaxThreads {
		t.Errorf("Len() = %d, want %d", g.Len(), MaxThreads)
	}
}

// TestThreads_SnapshotStable verifies a previously loaded snapshot is not
// mutated by later registrations.
func TestThreads_SnapshotStable(t *testing.T) {
	g := New()
	_ = g.Register(&fakeThread{id: 0})
	before := g.Threads()

	_ = g.Register(&fakeThread{id: 1})

	if len(before) != 1 {
		t.Errorf("old snapshot grew to %d entries", len(before))
	}
	if len(g.Threads()) != 2 {
		t.Errorf("Threads() has %d entries, want 2", len(g.Threads()))
	}
}

// TestTick verifies the global clock advances through Tick.
func TestTick(t *testing.T) {
	g := New()
	var published clock.Stamp
	s := g.Tick(func(c clock.Stamp) { published = c })

	if s != 1 || published != 1 || g.Clock() != 1 {
		t.Errorf("Tick() = %v, published %v, Clock() %v; want 1 1 1", s, published, g.Clock())
	}
}
