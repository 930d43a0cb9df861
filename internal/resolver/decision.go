package resolver

import "github.com/backmassage/normdedup/internal/naming"

// Kind is the outcome of resolving one discovered name.
type Kind string

const (
	NoActionNeeded              Kind = "no-action"
	RenameToCanonical           Kind = "rename"
	MergeIdenticalIntoCanonical Kind = "merge"
	ConflictDifferentContent    Kind = "conflict"
	InvariantViolation          Kind = "invariant-violation"
	OperationFailed             Kind = "operation-failed"
)

// NeedsAttention reports whether a human has to look at this outcome.
func (k Kind) NeedsAttention() bool {
	switch k {
	case ConflictDifferentContent, InvariantViolation, OperationFailed:
		return true
	}
	return false
}

// Mutates reports whether the outcome changes the tree when not in dry run.
func (k Kind) Mutates() bool {
	return k == RenameToCanonical || k == MergeIdenticalIntoCanonical
}

// Candidate is one path found by enumeration at a given depth.
type Candidate struct {
	Path  string
	Depth int
}

// Record is the structured result of one decision. Rendering is left to
// the caller.
type Record struct {
	Kind Kind

	// Path is the discovered candidate that triggered the decision.
	Path string
	// Canonical is the canonical-form path for Path.
	Canonical string
	// Alternate is the variant acted on (renamed from, removed, or in
	// conflict with Canonical). Empty for no-op decisions.
	Alternate string
	// Form is the normalization form Alternate is in; empty when the
	// variant is in none of the configured forms.
	Form naming.Form
	// Variants lists every variant involved in a multi-way collision.
	Variants []string

	Depth  int
	IsDir  bool
	DryRun bool
	// Size is the number of bytes freed by a merge.
	Size int64
	Note string
	Err  error
}
