// Package header implements the object header protocol of the RLU engine.
//
// Every shared object is an Object[T]: an explicit record of a Header and the
// caller's payload. The header carries one atomic indirection slot:
//
//   - nil: the object is unlocked.
//   - Sentinel(): the object is itself a thread-private write-log copy.
//   - any other *Entry: the object is locked by the thread named in the entry,
//     whose copy of the payload lives in that thread's write log.
//
// A copy never appears inside the permanent structure. GetActual launders a
// possibly-copy pointer back to the original before it is locked or stored.
//
// # Allocation contract
//
// Shared objects must be created with New (or recycled through an allocator
// that hands out Object[T] values from New). Copies are created only by
// NewEntry, which pre-sets the copy's header to the sentinel and records the
// owning entry, so a copy reached through the generic header path always
// identifies itself.
//
// All queries in this package are lock-free and never block.
package header
