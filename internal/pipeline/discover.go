package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/backmassage/normdedup/internal/fsops"
	"github.com/backmassage/normdedup/internal/naming"
	"github.com/backmassage/normdedup/internal/resolver"
)

// Discover enumerates every entry below root matching pattern, sorted by
// path, and tags each with its depth relative to root. root must be
// absolute.
func Discover(fsys *fsops.FS, root, pattern string) ([]resolver.Candidate, error) {
	paths, err := fsys.Glob(root, pattern)
	if err != nil {
		return nil, fmt.Errorf("enumerating %s: %w", root, err)
	}
	out := make([]resolver.Candidate, 0, len(paths))
	for _, p := range paths {
		d, err := naming.RelDepth(root, p)
		if err != nil {
			return nil, fmt.Errorf("enumerating %s: %w", root, err)
		}
		out = append(out, resolver.Candidate{Path: p, Depth: d})
	}
	return out, nil
}

// atDepth keeps the candidates at exactly depth.
func atDepth(cands []resolver.Candidate, depth int) []resolver.Candidate {
	var out []resolver.Candidate
	for _, c := range cands {
		if c.Depth == depth {
			out = append(out, c)
		}
	}
	return out
}

// nonASCII keeps the candidates whose final path segment is not pure ASCII.
func nonASCII(cands []resolver.Candidate) []resolver.Candidate {
	var out []resolver.Candidate
	for _, c := range cands {
		if naming.HasNonASCII(filepath.Base(c.Path)) {
			out = append(out, c)
		}
	}
	return out
}

// maxDepth returns the deepest candidate depth, or 0 for none.
func maxDepth(cands []resolver.Candidate) int {
	m := 0
	for _, c := range cands {
		if c.Depth > m {
			m = c.Depth
		}
	}
	return m
}
