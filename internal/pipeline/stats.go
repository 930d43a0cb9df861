package pipeline

import "github.com/backmassage/normdedup/internal/resolver"

// RunStats tracks aggregate counters across a run.
type RunStats struct {
	Entries    int // Entries matched by the initial enumeration.
	Candidates int // Non-ASCII entries handed to the resolver.
	Skipped    int // Candidates already consumed earlier in the run.

	NoAction   int
	Renamed    int
	Merged     int
	Conflicts  int
	Violations int
	Failed     int

	// BytesReclaimed is the size of every merged-away copy (what would be
	// reclaimed, in dry run).
	BytesReclaimed int64
}

// Add counts one decision record.
func (s *RunStats) Add(rec resolver.Record) {
	switch rec.Kind {
	case resolver.NoActionNeeded:
		s.NoAction++
	case resolver.RenameToCanonical:
		s.Renamed++
	case resolver.MergeIdenticalIntoCanonical:
		s.Merged++
		s.BytesReclaimed += rec.Size
	case resolver.ConflictDifferentContent:
		s.Conflicts++
	case resolver.InvariantViolation:
		s.Violations++
	case resolver.OperationFailed:
		s.Failed++
	}
}

// Mutations returns the number of renames and merges (performed, or
// proposed in dry run).
func (s *RunStats) Mutations() int {
	return s.Renamed + s.Merged
}

// NeedsAttention reports whether any decision has to be looked at by hand.
func (s *RunStats) NeedsAttention() bool {
	return s.Conflicts+s.Violations+s.Failed > 0
}
