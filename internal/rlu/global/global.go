// Package global holds the process-wide RLU state shared by all threads:
// the logical clock and the registry of thread contexts.
//
// The registry is fixed-capacity and append-only. It is populated during a
// setup phase before any thread starts operating; afterwards it is only read.
// Reads never take a lock: the registry is a slice published through an
// atomic pointer and replaced copy-on-write on registration, so an entry is
// never removed or relocated under a reader.
package global

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kolkov/rlu/internal/rlu/clock"
)

// MaxThreads is the registry capacity.
const MaxThreads = 256

var (
	ErrIDOutOfRange = errors.New("global: thread id out of range")
	ErrDuplicateID  = errors.New("global: thread id already registered")
	ErrRegistryFull = errors.New("global: thread registry full")
)

// Participant is the view of a thread context other threads rely on during
// dereference and grace-period waits. All methods must be safe to call from
// any goroutine.
type Participant interface {
	// ID returns the dense, zero-based thread id.
	ID() int

	// RunCount returns the episode parity counter: odd inside an episode,
	// even when quiescent.
	RunCount() uint64

	// LocalClock returns the clock snapshot of the current or last episode.
	LocalClock() clock.Stamp

	// WriteClock returns the in-flight commit stamp, or clock.Never.
	WriteClock() clock.Stamp
}

// Context is the global RLU context.
type Context struct {
	clock clock.Clock

	// byID is indexed by thread id; nil slots are unregistered.
	byID    atomic.Pointer[[]Participant]
	members atomic.Pointer[[]Participant]

	registerMu sync.Mutex
}

// New creates an empty global context with the clock at 0.
func New() *Context {
	g := &Context{}
	byID := make([]Participant, 0)
	members := make([]Participant, 0)
	g.byID.Store(&byID)
	g.members.Store(&members)
	return g
}

// Register adds p under p.ID().
//
// All threads must be registered before any of them begins operating.
func (g *Context) Register(p Participant) error {
	id := p.ID()
	if id < 0 || id >= MaxThreads {
		return fmt.Errorf("%w: %d (max %d)", ErrIDOutOfRange, id, MaxThreads-1)
	}

	g.registerMu.Lock()
	defer g.registerMu.Unlock()

	oldByID := *g.byID.Load()
	oldMembers := *g.members.Load()

	if len(oldMembers) >= MaxThreads {
		return ErrRegistryFull
	}
	if id < len(oldByID) && oldByID[id] != nil {
		return fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}

	size := max(len(oldByID), id+1)
	byID := make([]Participant, size)
	copy(byID, oldByID)
	byID[id] = p

	members := make([]Participant, len(oldMembers), len(oldMembers)+1)
	copy(members, oldMembers)
	members = append(members, p)

	g.byID.Store(&byID)
	g.members.Store(&members)
	return nil
}

// Thread returns the participant registered under id, or nil.
func (g *Context) Thread(id int) Participant {
	byID := *g.byID.Load()
	if id < 0 || id >= len(byID) {
		return nil
	}
	return byID[id]
}

// Threads returns the registered participants in registration order.
// The returned slice must not be modified.
func (g *Context) Threads() []Participant {
	return *g.members.Load()
}

// Len returns the number of registered participants.
func (g *Context) Len() int {
	return len(*g.members.Load())
}

// Clock returns the current global clock.
func (g *Context) Clock() clock.Stamp {
	return g.clock.Now()
}

// Tick publishes and assigns the next commit stamp; see clock.Clock.Tick.
func (g *Context) Tick(publish func(clock.Stamp)) clock.Stamp {
	return g.clock.Tick(publish)
}
