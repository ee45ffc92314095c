package alloc

import (
	"sync"
	"testing"

	"github.com/kolkov/rlu/internal/rlu/header"
)

type item struct {
	Key  int
	Next *header.Object[item]
}

// TestPool_GetFresh verifies an empty pool allocates.
func TestPool_GetFresh(t *testing.T) {
	p := NewPool[item](4)

	obj := p.Get(item{Key: 7})
	if obj.Payload.Key != 7 {
		t.Errorf("Payload.Key = %d, want 7", obj.Payload.Key)
	}
	if !header.IsUnlocked(header.GetCopy(obj)) {
		t.Error("fresh object is locked")
	}
	if p.Recycled() != 0 {
		t.Errorf("Recycled() = %d, want 0", p.Recycled())
	}
}

// TestPool_Recycle verifies a returned object comes back reset.
func TestPool_Recycle(t *testing.T) {
	p := NewPool[item](4)

	old := header.New(item{Key: 1, Next: header.New(item{Key: 2})})
	p.Put(old)
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", p.Len())
	}

	obj := p.Get(item{Key: 3})
	if obj != old {
		t.Fatal("Get() did not reuse the pooled object")
	}
	if obj.Payload.Key != 3 || obj.Payload.Next != nil {
		t.Errorf("Payload = %+v, want {3 <nil>}", obj.Payload)
	}
	if header.GetCopy(obj) != nil {
		t.Error("recycled object still has a copy pointer")
	}
	if p.Len() != 0 || p.Recycled() != 1 {
		t.Errorf("Len()=%d Recycled()=%d, want 0 and 1", p.Len(), p.Recycled())
	}
}

// TestPool_Bounded verifies Put drops objects once full.
func TestPool_Bounded(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		puts     int
		want     int
	}{
		{name: "under capacity", capacity: 4, puts: 3, want: 3},
		{name: "at capacity", capacity: 4, puts: 4, want: 4},
		{name: "over capacity", capacity: 4, puts: 10, want: 4},
		{name: "default capacity", capacity: 0, puts: DefaultCapacity + 1, want: DefaultCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPool[item](tt.capacity)
			for i := 0; i < tt.puts; i++ {
				p.Put(header.New(item{Key: i}))
			}
			if got := p.Len(); got != tt.want {
				t.Errorf("Len() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestPool_PutNil verifies nil is ignored.
func TestPool_PutNil(t *testing.T) {
	p := NewPool[item](2)
	p.Put(nil)
	if p.Len() != 0 {
		t.Errorf("Len() = %d after Put(nil), want 0", p.Len())
	}
}

// TestPool_Concurrent verifies no object is handed out twice.
func TestPool_Concurrent(t *testing.T) {
	const (
		workers = 16
		rounds  = 500
	)

	p := NewPool[item](64)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		held = make(map[*header.Object[item]]bool)
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				obj := p.Get(item{Key: id})

				mu.Lock()
				if held[obj] {
					t.Errorf("object %p handed out twice", obj)
				}
				held[obj] = true
				mu.Unlock()

				if obj.Payload.Key != id {
					t.Errorf("Payload.Key = %d, want %d", obj.Payload.Key, id)
				}

				mu.Lock()
				delete(held, obj)
				mu.Unlock()
				p.Put(obj)
			}
		}(w)
	}
	wg.Wait()

	t.Logf("recycled %d of %d gets", p.Recycled(), workers*rounds)
}
