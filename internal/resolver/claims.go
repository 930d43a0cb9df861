package resolver

// ClaimSet tracks paths already consumed during a run, mapping each to the
// candidate whose resolution consumed it. A consumed path is never acted
// on again, even if a later enumeration lists it. Not safe for concurrent
// use.
type ClaimSet struct {
	owners map[string]string
}

// NewClaimSet creates an empty set.
func NewClaimSet() *ClaimSet {
	return &ClaimSet{owners: make(map[string]string)}
}

// Claim marks paths as consumed by owner. Empty paths are ignored and an
// existing claim keeps its first owner.
func (s *ClaimSet) Claim(owner string, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := s.owners[p]; !ok {
			s.owners[p] = owner
		}
	}
}

// Claimed reports whether path has been consumed.
func (s *ClaimSet) Claimed(path string) bool {
	_, ok := s.owners[path]
	return ok
}

// Owner returns the candidate that consumed path.
func (s *ClaimSet) Owner(path string) (string, bool) {
	o, ok := s.owners[path]
	return o, ok
}

// Len returns the number of consumed paths.
func (s *ClaimSet) Len() int { return len(s.owners) }
