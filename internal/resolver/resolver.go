// Package resolver decides, and unless in dry run carries out, what happens
// to one discovered non-ASCII name: nothing, a rename to the canonical
// form, a merge of byte-identical duplicates, or a conflict flag.
//
// Decision table, applied to the first existing variant in priority order
// (configured alternates first, then the discovered name itself when it is
// in none of the alternate forms):
//
//	canonical exists | variant exists | identical | outcome
//	yes              | no             |           | NoActionNeeded
//	yes              | yes            | yes       | MergeIdenticalIntoCanonical (variant removed)
//	yes              | yes            | no        | ConflictDifferentContent (nothing touched)
//	no               | yes            |           | RenameToCanonical (variant renamed)
//
// When two or more distinct variants exist at once the collision is
// resolved as a whole: all identical means keep one and merge the rest,
// anything different flags the whole group and touches nothing.
package resolver

import (
	"fmt"
	"path/filepath"

	"github.com/backmassage/normdedup/internal/naming"
)

// Filesystem is the subset of filesystem capabilities the resolver needs.
// [fsops.FS] implements it.
type Filesystem interface {
	Exists(path string) bool
	IsDir(path string) bool
	SameFile(a, b string) bool
	Alias(a, b string) bool
	Identical(a, b string) (bool, error)
	Size(path string) (int64, error)
	Rename(src, dst string) error
	Move(src, dst string) error
	Remove(path string) error
}

// Resolver applies the decision table to candidates one at a time and
// remembers which paths it has consumed. Use one Resolver per run.
type Resolver struct {
	fs     Filesystem
	forms  naming.FormSet
	dryRun bool
	claims *ClaimSet
}

// New creates a resolver. forms must already be validated.
func New(fsys Filesystem, forms naming.FormSet, dryRun bool) *Resolver {
	return &Resolver{
		fs:     fsys,
		forms:  forms,
		dryRun: dryRun,
		claims: NewClaimSet(),
	}
}

// Consumed reports whether path was already consumed in this run and by
// which candidate.
func (r *Resolver) Consumed(path string) (owner string, ok bool) {
	return r.claims.Owner(path)
}

type variant struct {
	path string
	form naming.Form
}

// Resolve decides the fate of one candidate. It returns nil for a candidate
// already consumed, otherwise at least one record. Failures are reported as
// records, never returned, so the caller can carry on with other entries.
func (r *Resolver) Resolve(c Candidate) []Record {
	p := c.Path
	if r.claims.Claimed(p) {
		return nil
	}
	base := Record{Path: p, Depth: c.Depth, DryRun: r.dryRun}
	if !r.fs.Exists(p) {
		return []Record{r.violation(base, "candidate vanished before it could be resolved")}
	}
	base.Canonical = r.forms.CanonicalPath(p)
	base.IsDir = r.fs.IsDir(p)

	canonExists := r.fs.Exists(base.Canonical)
	if canonExists && r.fs.Alias(base.Canonical, p) {
		// The canonical spelling only reaches p through a
		// normalization-insensitive lookup; the stored name is still p.
		// A hard link under the canonical name is a real entry and is
		// merged like any identical copy.
		canonExists = false
	}
	variants := r.variants(p, base.Canonical, canonExists)

	switch {
	case len(variants) > 1:
		return r.resolveMultiWay(base, canonExists, variants)
	case len(variants) == 1 && canonExists:
		return r.resolvePair(base, variants[0])
	case len(variants) == 1:
		return r.rename(base, variants[0])
	case canonExists:
		r.claims.Claim(p, p)
		base.Kind = NoActionNeeded
		return []Record{base}
	default:
		return []Record{r.violation(base, "neither the canonical name nor any alternate form exists")}
	}
}

// variants lists the distinct, existing, unconsumed non-canonical spellings
// of p in priority order. p itself comes last unless one of the alternates
// already produced it.
func (r *Resolver) variants(p, canonical string, canonExists bool) []variant {
	var out []variant
	seen := map[string]bool{canonical: true}
	add := func(path string, form naming.Form) {
		if seen[path] {
			return
		}
		seen[path] = true
		if r.claims.Claimed(path) || !r.fs.Exists(path) {
			return
		}
		if r.fs.Alias(path, p) {
			return
		}
		if canonExists && r.fs.Alias(path, canonical) {
			return
		}
		for _, v := range out {
			if r.fs.Alias(path, v.path) || r.fs.Alias(v.path, path) {
				return
			}
		}
		out = append(out, variant{path: path, form: form})
	}
	for _, f := range r.forms.Alternates {
		add(r.forms.AlternatePath(p, f), f)
	}
	add(p, r.formOf(p))
	return out
}

// formOf names the alternate form p is spelled in, or "" when it is in
// none of them.
func (r *Resolver) formOf(p string) naming.Form {
	f := r.forms.FormOf(filepath.Base(p))
	if f == r.forms.Canonical {
		return ""
	}
	return f
}

func (r *Resolver) resolvePair(base Record, v variant) []Record {
	same, err := r.fs.Identical(base.Canonical, v.path)
	if err != nil {
		r.claims.Claim(base.Path, base.Path, v.path)
		return []Record{r.failed(withVariant(base, v), "content comparison failed", err)}
	}
	if !same {
		rec := withVariant(base, v)
		rec.Kind = ConflictDifferentContent
		rec.IsDir = r.fs.IsDir(v.path)
		r.claims.Claim(base.Path, base.Path, base.Canonical, v.path)
		return []Record{rec}
	}
	return r.merge(base, v)
}

func (r *Resolver) resolveMultiWay(base Record, canonExists bool, vs []variant) []Record {
	paths := make([]string, 0, len(vs)+1)
	if canonExists {
		paths = append(paths, base.Canonical)
	}
	for _, v := range vs {
		paths = append(paths, v.path)
	}
	base.Variants = paths
	base.Note = fmt.Sprintf("multi-way collision across %d names", len(paths))

	ref, rest := base.Canonical, vs
	if !canonExists {
		ref, rest = vs[0].path, vs[1:]
	}
	for _, v := range rest {
		same, err := r.fs.Identical(ref, v.path)
		if err != nil {
			r.claims.Claim(base.Path, paths...)
			r.claims.Claim(base.Path, base.Path)
			return []Record{r.failed(withVariant(base, v), "content comparison failed", err)}
		}
		if !same {
			rec := base
			rec.Kind = ConflictDifferentContent
			r.claims.Claim(base.Path, paths...)
			r.claims.Claim(base.Path, base.Path, base.Canonical)
			return []Record{rec}
		}
	}

	var recs []Record
	if !canonExists {
		out := r.rename(base, vs[0])
		recs = append(recs, out...)
		if len(out) != 1 || out[0].Kind != RenameToCanonical {
			// Without a canonical survivor the remaining copies stay put.
			r.claims.Claim(base.Path, paths...)
			return recs
		}
	}
	for _, v := range rest {
		recs = append(recs, r.merge(base, v)...)
	}
	return recs
}

// rename moves variant v onto the canonical name, which must not exist.
func (r *Resolver) rename(base Record, v variant) []Record {
	rec := withVariant(base, v)
	rec.Kind = RenameToCanonical
	rec.IsDir = r.fs.IsDir(v.path)
	r.claims.Claim(base.Path, base.Path, base.Canonical, v.path)
	if r.dryRun {
		return []Record{rec}
	}

	var err error
	if rec.IsDir {
		err = r.fs.Move(v.path, rec.Canonical)
	} else {
		err = r.fs.Rename(v.path, rec.Canonical)
	}
	if err != nil {
		return []Record{r.failed(rec, "rename failed", err)}
	}
	return r.verify(rec)
}

// merge removes variant v after its content was found identical to the
// canonical entry.
func (r *Resolver) merge(base Record, v variant) []Record {
	rec := withVariant(base, v)
	rec.Kind = MergeIdenticalIntoCanonical
	rec.IsDir = r.fs.IsDir(v.path)
	if r.fs.SameFile(base.Canonical, v.path) {
		// Removing a second hard link frees nothing.
		if rec.Note == "" {
			rec.Note = "hard link to the canonical entry"
		}
	} else if size, err := r.fs.Size(v.path); err == nil {
		rec.Size = size
	}
	r.claims.Claim(base.Path, base.Path, base.Canonical, v.path)
	if r.dryRun {
		return []Record{rec}
	}

	if err := r.fs.Remove(v.path); err != nil {
		rec.Size = 0
		return []Record{r.failed(rec, "removing the identical copy failed", err)}
	}
	return r.verify(rec)
}

// verify checks that the canonical path exists after a mutation.
func (r *Resolver) verify(rec Record) []Record {
	if r.fs.Exists(rec.Canonical) {
		return []Record{rec}
	}
	v := rec
	v.Kind = InvariantViolation
	v.Size = 0
	v.Note = fmt.Sprintf("canonical path missing after %s", rec.Kind)
	return []Record{rec, v}
}

func (r *Resolver) violation(base Record, note string) Record {
	r.claims.Claim(base.Path, base.Path)
	base.Kind = InvariantViolation
	base.Note = note
	return base
}

func (r *Resolver) failed(rec Record, note string, err error) Record {
	rec.Kind = OperationFailed
	rec.Err = err
	rec.Note = note
	return rec
}

func withVariant(base Record, v variant) Record {
	base.Alternate = v.path
	base.Form = v.form
	return base
}
