package clock

import (
	"sync"
	"testing"
)

// TestStampVisibleAt tests the ordering rule readers use to steal copies.
func TestStampVisibleAt(t *testing.T) {
	tests := []struct {
		name  string
		write Stamp
		local Stamp
		want  bool
	}{
		{name: "older write", write: 3, local: 5, want: true},
		{name: "same stamp", write: 5, local: 5, want: true},
		{name: "newer write", write: 6, local: 5, want: false},
		{name: "not committing", write: Never, local: 1 << 40, want: false},
		{name: "zero snapshot", write: 1, local: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.write.VisibleAt(tt.local); got != tt.want {
				t.Errorf("Stamp(%v).VisibleAt(%v) = %v, want %v", tt.write, tt.local, got, tt.want)
			}
		})
	}
}

// TestStampString tests the debug representation.
func TestStampString(t *testing.T) {
	tests := []struct {
		s    Stamp
		want string
	}{
		{0, "0"},
		{7, "7"},
		{1234567890, "1234567890"},
		{Never, "never"},
		{Never - 1, "18446744073709551614"},
	}

	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Stamp.String() = %q, want %q", got, tt.want)
		}
	}
}

// TestClockTickPublishesBeforeAdvance verifies the published stamp equals the
// value the clock advances to.
func TestClockTickPublishesBeforeAdvance(t *testing.T) {
	var c Clock

	var published Stamp
	got := c.Tick(func(s Stamp) {
		if c.Now() != s-1 {
			t.Errorf("clock advanced before publish: Now() = %v, candidate %v", c.Now(), s)
		}
		published = s
	})

	if got != 1 || published != 1 {
		t.Errorf("Tick() = %v (published %v), want 1", got, published)
	}
	if c.Now() != 1 {
		t.Errorf("Now() = %v, want 1", c.Now())
	}
}

// TestClockTickUnique verifies concurrent ticks never hand out the same stamp.
func TestClockTickUnique(t *testing.T) {
	const (
		workers = 16
		ticks   = 1000
	)

	var (
		c    Clock
		mu   sync.Mutex
		seen = make(map[Stamp]bool, workers*ticks)
		wg   sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]Stamp, 0, ticks)
			for i := 0; i < ticks; i++ {
				local = append(local, c.Tick(func(Stamp) {}))
			}
			mu.Lock()
			defer mu.Unlock()
			for _, s := range local {
				if seen[s] {
					t.Errorf("stamp %v handed out twice", s)
				}
				seen[s] = true
			}
		}()
	}
	wg.Wait()

	if got := c.Now(); got != Stamp(workers*ticks) {
		t.Errorf("Now() = %v, want %d", got, workers*ticks)
	}
}
