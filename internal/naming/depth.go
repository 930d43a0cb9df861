package naming

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned by [RelDepth] when path is not below root.
var ErrOutsideRoot = errors.New("path is outside the traversal root")

// Depth returns the number of segments in path after cleaning. "." and the
// empty string have depth 0; a volume name or leading separator is not a
// segment, so "/a/b" and "a/b" both have depth 2.
func Depth(path string) int {
	p := filepath.Clean(path)
	p = p[len(filepath.VolumeName(p)):]
	p = strings.Trim(p, string(filepath.Separator))
	if p == "" || p == "." {
		return 0
	}
	return strings.Count(p, string(filepath.Separator)) + 1
}

// RelDepth returns the depth of path relative to root: 0 for root itself,
// 1 for its direct children. Both arguments must be of the same kind
// (both absolute or both relative).
func RelDepth(root, path string) (int, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0, err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return 0, ErrOutsideRoot
	}
	return Depth(rel), nil
}
