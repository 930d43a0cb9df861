package fsops

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// FS wraps an afero filesystem with the operations the resolver needs.
type FS struct {
	fs afero.Fs
}

// New returns an FS backed by fsys.
func New(fsys afero.Fs) *FS {
	return &FS{fs: fsys}
}

// NewOS returns an FS backed by the host filesystem.
func NewOS() *FS {
	return New(afero.NewOsFs())
}

// Afero exposes the underlying filesystem (used by diagnostics and tests).
func (f *FS) Afero() afero.Fs { return f.fs }

// lstat does not follow a final symlink when the backend supports it, so a
// dangling link still counts as an existing entry.
func (f *FS) lstat(path string) (os.FileInfo, error) {
	if l, ok := f.fs.(afero.Lstater); ok {
		fi, _, err := l.LstatIfPossible(path)
		return fi, err
	}
	return f.fs.Stat(path)
}

// Exists reports whether a directory entry named path exists.
func (f *FS) Exists(path string) bool {
	_, err := f.lstat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func (f *FS) IsDir(path string) bool {
	fi, err := f.lstat(path)
	return err == nil && fi.IsDir()
}

// SameFile reports whether a and b resolve to the same underlying file.
// Hard links count as the same file. Backends without inode identity (the
// in-memory filesystem) report false for distinct paths.
func (f *FS) SameFile(a, b string) bool {
	if a == b {
		return true
	}
	ia, err := f.lstat(a)
	if err != nil {
		return false
	}
	ib, err := f.lstat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}

// Alias reports whether a is merely another spelling of b: both resolve to
// the same file, and a is not itself stored in its parent directory. That
// happens on normalization-insensitive filesystems. Hard-linked names are
// each listed, so they are never aliases.
func (f *FS) Alias(a, b string) bool {
	if a == b || !f.SameFile(a, b) {
		return false
	}
	return !f.listed(a)
}

// listed reports whether the final element of path appears byte for byte
// in its parent's listing. An unreadable parent counts as listed.
func (f *FS) listed(path string) bool {
	entries, err := afero.ReadDir(f.fs, filepath.Dir(path))
	if err != nil {
		return true
	}
	name := filepath.Base(path)
	for _, e := range entries {
		if e.Name() == name {
			return true
		}
	}
	return false
}

// Size returns the size of a file, or the total size of the regular files
// below a directory.
func (f *FS) Size(path string) (int64, error) {
	fi, err := f.lstat(path)
	if err != nil {
		return 0, err
	}
	if !fi.IsDir() {
		return fi.Size(), nil
	}
	var total int64
	err = afero.Walk(f.fs, path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}

// CheckRoot verifies that root exists, is a directory and can be listed.
func (f *FS) CheckRoot(root string) error {
	fi, err := f.fs.Stat(root)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return opErr("stat", root, "", ErrNotDir)
	}
	if _, err := afero.ReadDir(f.fs, root); err != nil {
		return err
	}
	return nil
}

// Glob returns every path below root matching the doublestar pattern,
// joined onto root and sorted. root must be absolute. Root itself is never
// returned. Unreadable subdirectories are skipped rather than reported.
func (f *FS) Glob(root, pattern string) ([]string, error) {
	fsys := afero.NewIOFS(afero.NewBasePathFs(f.fs, root))
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		if m == "." || m == "" {
			continue
		}
		paths = append(paths, filepath.Join(root, filepath.FromSlash(m)))
	}
	sort.Strings(paths)
	return paths, nil
}

// ValidPattern reports whether pattern is a well-formed doublestar pattern.
func ValidPattern(pattern string) bool {
	return doublestar.ValidatePattern(pattern)
}

// Rename renames the file src to dst. It refuses to replace an existing dst
// unless dst is merely another spelling of src. A hard link at dst is
// refused as well.
func (f *FS) Rename(src, dst string) error {
	if f.Exists(dst) && !f.Alias(dst, src) {
		return opErr("rename", src, dst, ErrTargetExists)
	}
	if err := f.fs.Rename(src, dst); err != nil {
		return opErr("rename", src, dst, unwrapPathError(err))
	}
	return nil
}

// Move moves the directory src, with everything below it, to dst. dst must
// not exist (other than as an alias of src).
func (f *FS) Move(src, dst string) error {
	if !f.IsDir(src) {
		return opErr("move", src, dst, ErrNotDir)
	}
	if f.Exists(dst) && !f.Alias(dst, src) {
		return opErr("move", src, dst, ErrTargetExists)
	}
	if err := f.fs.Rename(src, dst); err != nil {
		return opErr("move", src, dst, unwrapPathError(err))
	}
	return nil
}

// Remove deletes a file, or a directory together with its contents.
func (f *FS) Remove(path string) error {
	var err error
	if f.IsDir(path) {
		err = f.fs.RemoveAll(path)
	} else {
		err = f.fs.Remove(path)
	}
	if err != nil {
		return opErr("remove", path, "", unwrapPathError(err))
	}
	return nil
}

// unwrapPathError strips *fs.PathError / *os.LinkError so OpError does not
// repeat the paths it already carries.
func unwrapPathError(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	var le *os.LinkError
	if errors.As(err, &le) {
		return le.Err
	}
	return err
}
