package header

import (
	"sync/atomic"
	"unsafe"
)

// Header is the indirection slot prepended to every shared object.
type Header struct {
	copy atomic.Pointer[Entry]

	// entry is the owning write-log entry when the object is a copy.
	// Set once by NewEntry before the copy is published, never changed.
	entry *Entry
}

// Object is a shared allocation: header first, payload second.
type Object[T any] struct {
	hdr Header

	// Payload is the caller's data. Outside a write episode it must only be
	// read through an object obtained from Dereference; inside one it must
	// only be written through the copy returned by TryLock.
	Payload T
}

// New allocates an unlocked original object holding v.
func New[T any](v T) *Object[T] {
	return &Object[T]{Payload: v}
}

// Header returns the object's header.
func (o *Object[T]) Header() *Header {
	return &o.hdr
}

// Reset reinitialises a recycled original with payload v.
//
// The caller must own obj exclusively: it has been unlinked and its grace
// period has completed.
func (o *Object[T]) Reset(v T) {
	o.hdr.copy.Store(nil)
	o.hdr.entry = nil
	o.Payload = v
}

// Entry describes one object locked by a thread during a write episode.
//
// The entry and the copy it shadows are allocated together by NewEntry and
// are immutable once published through a header CAS, apart from the copy's
// payload which only the owning thread writes.
type Entry struct {
	threadID int
	size     uintptr

	// actual is the *Object[T] being shadowed; shadow is the thread-private
	// *Object[T] copy. Both are typed by the function values below.
	actual unsafe.Pointer
	shadow unsafe.Pointer
	lock   *Header

	snapshot  func(e *Entry)
	writeback func(e *Entry)
}

// sentinel is the reserved entry stored in the header of every copy.
// It is never appended to a log and never dereferenced.
var sentinel = &Entry{threadID: -1}

// Sentinel returns the reserved marker that identifies write-log copies.
func Sentinel() *Entry {
	return sentinel
}

// record co-allocates an entry with the copy it describes.
type record[T any] struct {
	entry  Entry
	shadow Object[T]
}

// NewEntry builds the entry and the copy used by threadID to write actual.
//
// The copy's payload is not filled in; call Snapshot once the entry owns
// actual's header.
func NewEntry[T any](threadID int, actual *Object[T]) *Entry {
	r := &record[T]{}
	r.entry = Entry{
		threadID:  threadID,
		size:      SizeOf[T](),
		actual:    unsafe.Pointer(actual),
		shadow:    unsafe.Pointer(&r.shadow),
		lock:      &actual.hdr,
		snapshot:  snapshotObject[T],
		writeback: writebackObject[T],
	}
	r.shadow.hdr.copy.Store(sentinel)
	r.shadow.hdr.entry = &r.entry
	return &r.entry
}

// ThreadID returns the id of the thread that owns the entry.
func (e *Entry) ThreadID() int { return e.threadID }

// Size returns the payload size recorded for the entry, in bytes.
func (e *Entry) Size() uintptr { return e.size }

// Lock claims the original's header for this entry.
//
// It reports false when the header is not unlocked; the CAS is the only way
// an object becomes locked, so at most one entry owns a header at a time.
func (e *Entry) Lock() bool {
	return e.lock.copy.CompareAndSwap(nil, e)
}

// Unlock releases the original's header.
func (e *Entry) Unlock() {
	e.lock.copy.Store(nil)
}

// Snapshot copies the original's payload into the copy.
func (e *Entry) Snapshot() {
	e.snapshot(e)
}

// WriteBack copies the copy's payload onto the original.
func (e *Entry) WriteBack() {
	e.writeback(e)
}

func snapshotObject[T any](e *Entry) {
	(*Object[T])(e.shadow).Payload = (*Object[T])(e.actual).Payload
}

func writebackObject[T any](e *Entry) {
	(*Object[T])(e.actual).Payload = (*Object[T])(e.shadow).Payload
}

// SizeOf returns the payload size of T in bytes.
func SizeOf[T any]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

// GetCopy atomically loads p's indirection slot.
//
//go:nosplit
func GetCopy[T any](p *Object[T]) *Entry {
	return p.hdr.copy.Load()
}

// IsUnlocked reports whether a loaded slot means "unlocked".
//
//go:nosplit
func IsUnlocked(e *Entry) bool {
	return e == nil
}

// IsCopy reports whether a loaded slot marks a write-log copy.
//
//go:nosplit
func IsCopy(e *Entry) bool {
	return e == sentinel
}

// GetActual resolves a write-log copy to the original it shadows.
// Originals (and nil) are returned unchanged.
func GetActual[T any](p *Object[T]) *Object[T] {
	if p == nil {
		return nil
	}
	if IsCopy(GetCopy(p)) {
		return (*Object[T])(p.hdr.entry.actual)
	}
	return p
}

// CopyOf returns the copy described by e.
//
// e must have been reached through the header of an *Object[T]; entries are
// only ever installed by NewEntry[T] on objects of the same T.
func CopyOf[T any](e *Entry) *Object[T] {
	return (*Object[T])(e.shadow)
}

// Same reports whether a and b denote the same original object, looking
// through write-log copies.
func Same[T any](a, b *Object[T]) bool {
	return GetActual(a) == GetActual(b)
}
