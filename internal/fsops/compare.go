package fsops

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const compareChunk = 64 * 1024

// Identical reports whether a and b hold byte-identical content. Files are
// compared by size and then chunk by chunk. Two directories are identical
// when they list the same entry names and every pair of entries is
// identical. A file is never identical to a directory. Symlinks are not
// followed: two links are identical when their targets read the same.
func (f *FS) Identical(a, b string) (bool, error) {
	ia, err := f.lstat(a)
	if err != nil {
		return false, opErr("compare", a, b, unwrapPathError(err))
	}
	ib, err := f.lstat(b)
	if err != nil {
		return false, opErr("compare", a, b, unwrapPathError(err))
	}
	la, lb := ia.Mode()&os.ModeSymlink != 0, ib.Mode()&os.ModeSymlink != 0
	switch {
	case la && lb:
		return f.identicalLinks(a, b)
	case la != lb:
		return false, nil
	case ia.IsDir() && ib.IsDir():
		return f.identicalDirs(a, b)
	case ia.IsDir() != ib.IsDir():
		return false, nil
	case ia.Size() != ib.Size():
		return false, nil
	}
	return f.identicalFiles(a, b)
}

func (f *FS) identicalLinks(a, b string) (bool, error) {
	lr, ok := f.fs.(afero.LinkReader)
	if !ok {
		return false, opErr("compare", a, b, afero.ErrNoReadlink)
	}
	ta, err := lr.ReadlinkIfPossible(a)
	if err != nil {
		return false, opErr("compare", a, b, unwrapPathError(err))
	}
	tb, err := lr.ReadlinkIfPossible(b)
	if err != nil {
		return false, opErr("compare", a, b, unwrapPathError(err))
	}
	return ta == tb, nil
}

func (f *FS) identicalFiles(a, b string) (bool, error) {
	fa, err := f.fs.Open(a)
	if err != nil {
		return false, opErr("compare", a, b, unwrapPathError(err))
	}
	defer fa.Close()
	fb, err := f.fs.Open(b)
	if err != nil {
		return false, opErr("compare", a, b, unwrapPathError(err))
	}
	defer fb.Close()

	bufA := make([]byte, compareChunk)
	bufB := make([]byte, compareChunk)
	for {
		na, errA := io.ReadFull(fa, bufA)
		nb, errB := io.ReadFull(fb, bufB)
		if na != nb || !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		doneA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		doneB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if errA != nil && !doneA {
			return false, opErr("compare", a, b, errA)
		}
		if errB != nil && !doneB {
			return false, opErr("compare", a, b, errB)
		}
		if doneA || doneB {
			return doneA == doneB, nil
		}
	}
}

func (f *FS) identicalDirs(a, b string) (bool, error) {
	la, err := afero.ReadDir(f.fs, a)
	if err != nil {
		return false, opErr("compare", a, b, unwrapPathError(err))
	}
	lb, err := afero.ReadDir(f.fs, b)
	if err != nil {
		return false, opErr("compare", a, b, unwrapPathError(err))
	}
	if len(la) != len(lb) {
		return false, nil
	}
	// afero.ReadDir sorts by name, so entries pair up by index.
	for i := range la {
		if la[i].Name() != lb[i].Name() {
			return false, nil
		}
		same, err := f.Identical(filepath.Join(a, la[i].Name()), filepath.Join(b, lb[i].Name()))
		if err != nil || !same {
			return false, err
		}
	}
	return true, nil
}
