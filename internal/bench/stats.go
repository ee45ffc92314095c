package bench

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kolkov/rlu/internal/rlu/thread"
)

// Stats counts the operations of one worker, or of a whole run once merged.
type Stats struct {
	Start time.Time
	End   time.Time

	Add      uint64
	Erase    uint64
	Contains uint64
	Found    uint64

	// Engine holds the thread context counters.
	Engine thread.Stats
}

// Merge folds other into s, widening the time window to cover both.
func (s *Stats) Merge(other Stats) {
	if s.Start.IsZero() || (!other.Start.IsZero() && other.Start.Before(s.Start)) {
		s.Start = other.Start
	}
	if other.End.After(s.End) {
		s.End = other.End
	}

	s.Add += other.Add
	s.Erase += other.Erase
	s.Contains += other.Contains
	s.Found += other.Found
	s.Engine.Merge(other.Engine)
}

// Total is the number of set operations.
func (s *Stats) Total() uint64 { return s.Add + s.Erase + s.Contains }

// Duration is the measured window.
func (s *Stats) Duration() time.Duration {
	if s.End.Before(s.Start) {
		return 0
	}
	return s.End.Sub(s.Start)
}

// OpsPerMicrosecond is the aggregate throughput.
func (s *Stats) OpsPerMicrosecond() float64 {
	us := s.Duration().Microseconds()
	if us == 0 {
		return 0
	}
	return float64(s.Total()) / float64(us)
}

func percentage(n, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}

// WriteCSV writes a header comment and one data row.
func (s *Stats) WriteCSV(w io.Writer) error {
	_, err := fmt.Fprintf(w, "# ops,time,ops_per_us,add,erase,contains,found\n%d,%d,%.3f,%d,%d,%d,%d\n",
		s.Total(), s.Duration().Microseconds(), s.OpsPerMicrosecond(),
		s.Add, s.Erase, s.Contains, s.Found)
	return err
}

// WriteSummary writes a human-readable report.
func (s *Stats) WriteSummary(w io.Writer) error {
	total := s.Total()
	_, err := fmt.Fprintf(w, `
  Duration: %.3fs
     Total: %s
       Add: %s (%.2f%%)
     Erase: %s (%.2f%%)
  Contains: %s (%.2f%%)
     Found: %s (%.2f%%)
    Ops/us: %.3f
   Commits: %s
    Aborts: %s (%s conflicts)
    Steals: %s
     Polls: %s
`,
		s.Duration().Seconds(),
		count(total),
		count(s.Add), percentage(s.Add, total),
		count(s.Erase), percentage(s.Erase, total),
		count(s.Contains), percentage(s.Contains, total),
		count(s.Found), percentage(s.Found, s.Contains),
		s.OpsPerMicrosecond(),
		count(s.Engine.Commits),
		count(s.Engine.Aborts), count(s.Engine.Conflicts),
		count(s.Engine.Steals),
		count(s.Engine.Polls))
	return err
}

// count formats n with thousands separators.
func count(n uint64) string {
	return humanize.Comma(int64(n))
}
