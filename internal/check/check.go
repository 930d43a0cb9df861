// Package check provides filesystem diagnostics (--check mode) and the
// pre-run validation (Preflight) that guards --apply. Both probe how the
// filesystem at the root stores and looks up differently normalized names.
package check

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/backmassage/normdedup/internal/config"
	"github.com/backmassage/normdedup/internal/fsops"
	"github.com/backmassage/normdedup/internal/naming"
)

// Sentinel errors returned by Preflight.
var (
	ErrProbeFailed      = errors.New("cannot create probe files under root (read-only or no permission?)")
	ErrCanonicalRewrite = errors.New("filesystem rewrites names away from the canonical form; renames would not stick")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// Behavior describes how a filesystem treats normalization in names.
type Behavior string

const (
	// Distinct: names are stored and looked up byte-exact, so two spellings
	// are two entries. Duplicates can exist and can be repaired.
	Distinct Behavior = "distinct"
	// Aliased: names are stored as given but looked up
	// normalization-insensitively; two spellings reach one entry.
	Aliased Behavior = "aliased"
	// Rewritten: the filesystem stores names in its own form regardless of
	// the spelling used to create them.
	Rewritten Behavior = "rewritten"
)

// probeBase is written composed; its decomposed twin is the lookup probe.
const probeBase = "norm\u00e9dup-probe"

// Probe is what ProbeRoot found.
type Probe struct {
	Behavior Behavior
	// StoredAs is the form the filesystem stored a composed name in (only
	// meaningful for Rewritten; "" when it matches no known form).
	StoredAs naming.Form
}

// ProbeRoot creates a composed-name file in a scratch directory under root
// and inspects how it was stored and whether its decomposed spelling
// resolves to it. The scratch directory is removed afterwards.
func ProbeRoot(fsys afero.Fs, root string) (Probe, error) {
	dir, err := afero.TempDir(fsys, root, ".normdedup-check-")
	if err != nil {
		return Probe{}, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	defer fsys.RemoveAll(dir)

	composed := naming.NFC.Normalize(probeBase)
	decomposed := naming.NFD.Normalize(probeBase)
	if err := afero.WriteFile(fsys, filepath.Join(dir, composed), []byte("c"), 0o644); err != nil {
		return Probe{}, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}

	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return Probe{}, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	if len(entries) != 1 {
		return Probe{}, fmt.Errorf("%w: expected one probe entry, found %d", ErrProbeFailed, len(entries))
	}
	if stored := entries[0].Name(); stored != composed {
		return Probe{Behavior: Rewritten, StoredAs: formOf(stored)}, nil
	}

	if _, err := fsys.Stat(filepath.Join(dir, decomposed)); err == nil {
		return Probe{Behavior: Aliased, StoredAs: naming.NFC}, nil
	}
	return Probe{Behavior: Distinct, StoredAs: naming.NFC}, nil
}

// formOf returns the first form name is normalized in, or "".
func formOf(name string) naming.Form {
	for _, f := range []naming.Form{naming.NFC, naming.NFD, naming.NFKC, naming.NFKD} {
		if f.Normalize(name) == name {
			return f
		}
	}
	return ""
}

// RunCheck runs the interactive --check flow: it probes the filesystem at
// cfg.Root and counts names below it that are not in the canonical form.
// This is informational only; it stops only when the root is unusable.
func RunCheck(cfg *config.Config, fsys afero.Fs, log Logger) error {
	log.Info("=== Filesystem Check ===")
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return err
	}
	ops := fsops.New(fsys)
	if err := ops.CheckRoot(root); err != nil {
		return err
	}
	log.Info("Root: %s", root)
	log.Info("Forms: %s", cfg.Forms())

	p, err := ProbeRoot(fsys, root)
	if err != nil {
		log.Error("Normalization probe failed: %v", err)
	} else {
		logProbe(cfg, log, p)
	}

	checkNames(cfg, ops, root, log)
	return nil
}

func logProbe(cfg *config.Config, log Logger, p Probe) {
	switch p.Behavior {
	case Distinct:
		log.Success("Names are byte-exact: composed and decomposed spellings are separate entries")
		log.Info("  Duplicates can occur here and normdedup can merge or rename them")
	case Aliased:
		log.Warn("Lookups are normalization-insensitive: both spellings reach the same entry")
		log.Info("  Duplicates cannot coexist here; renames only change the stored spelling")
	case Rewritten:
		stored := string(p.StoredAs)
		if stored == "" {
			stored = "an unknown form"
		}
		if p.StoredAs == cfg.Canonical {
			log.Success("Filesystem stores names in %s, the canonical form", stored)
		} else {
			log.Warn("Filesystem stores names in %s, not %s; renames to %s will not stick",
				stored, cfg.Canonical, cfg.Canonical)
		}
	}
}

// checkNames counts matches whose names need work under the configured forms.
func checkNames(cfg *config.Config, ops *fsops.FS, root string, log Logger) {
	paths, err := ops.Glob(root, cfg.Pattern)
	if err != nil {
		log.Error("Could not enumerate %s: %v", root, err)
		return
	}
	forms := cfg.Forms()
	var nonASCII, nonCanonical int
	for _, p := range paths {
		base := filepath.Base(p)
		if !naming.HasNonASCII(base) {
			continue
		}
		nonASCII++
		if !forms.IsCanonical(base) {
			nonCanonical++
			log.Debug(cfg.Verbose, "  Not %s: %s", forms.Canonical, p)
		}
	}
	log.Info("Entries: %d matched, %d with non-ASCII names", len(paths), nonASCII)
	if nonCanonical > 0 {
		log.Warn("Names not in %s: %d; run without --check to see the decisions", forms.Canonical, nonCanonical)
	} else {
		log.Success("Every name is already in %s", forms.Canonical)
	}
}

// Preflight is the validation run before --apply: the root must accept probe
// files, and a filesystem that rewrites names into a form other than the
// canonical one is refused, since every run would rename the same entries
// again.
func Preflight(cfg *config.Config, fsys afero.Fs) error {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return err
	}
	p, err := ProbeRoot(fsys, root)
	if err != nil {
		return err
	}
	if p.Behavior == Rewritten && p.StoredAs != cfg.Canonical {
		return fmt.Errorf("%w (stored as %q)", ErrCanonicalRewrite, p.StoredAs)
	}
	return nil
}
