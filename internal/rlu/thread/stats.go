package thread

// Stats counts what a thread context did.
//
// Counters are owned by the thread; read them through Context.Stats only
// from the owning goroutine or after it has stopped.
type Stats struct {
	Episodes  uint64 // ReaderLock calls.
	Commits   uint64 // Write episodes committed.
	Aborts    uint64 // Episodes ended by Abort.
	Conflicts uint64 // TryLock calls that found a foreign lock.
	Steals    uint64 // Dereferences that adopted another thread's copy.
	Polls     uint64 // Grace-period polls that had to wait.
	Reclaimed uint64 // Retired objects released after their grace period.
}

// Merge adds other's counters to s.
func (s *Stats) Merge(other Stats) {
	s.Episodes += other.Episodes
	s.Commits += other.Commits
	s.Aborts += other.Aborts
	s.Conflicts += other.Conflicts
	s.Steals += other.Steals
	s.Polls += other.Polls
	s.Reclaimed += other.Reclaimed
}
