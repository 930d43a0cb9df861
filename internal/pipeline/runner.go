package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/normdedup/internal/config"
	"github.com/backmassage/normdedup/internal/display"
	"github.com/backmassage/normdedup/internal/fsops"
	"github.com/backmassage/normdedup/internal/logging"
	"github.com/backmassage/normdedup/internal/resolver"
)

// Fatal root conditions returned by Run.
var (
	ErrRootNotFound = errors.New("root directory does not exist")
	ErrRootNotDir   = errors.New("root is not a directory")
)

// Result is everything a run produced.
type Result struct {
	Root        string // Absolute root actually scanned.
	MaxDepth    int
	Records     []resolver.Record
	Stats       RunStats
	Interrupted bool
	Started     time.Time
	Finished    time.Time
}

// Run is the top-level entry point. It validates the root, finds the deepest
// non-ASCII match, then resolves candidates depth by depth from there up to
// the root's children. Per-entry problems become records and never stop the
// run; only an unusable root or a failed enumeration returns an error.
func Run(ctx context.Context, cfg *config.Config, fsys *fsops.FS, log *logging.Logger) (*Result, error) {
	res := &Result{Started: time.Now()}
	defer func() { res.Finished = time.Now() }()

	root, err := checkRoot(fsys, cfg.Root)
	if err != nil {
		return res, err
	}
	res.Root = root

	all, err := Discover(fsys, root, cfg.Pattern)
	if err != nil {
		return res, err
	}
	res.Stats.Entries = len(all)
	initial := nonASCII(all)
	res.MaxDepth = maxDepth(initial)

	logRunHeader(cfg, log, res, len(initial))
	if res.MaxDepth == 0 {
		log.Success("No non-ASCII names under %s; nothing to do", root)
		return res, nil
	}

	rv := resolver.New(fsys, cfg.Forms(), cfg.DryRun)
	for depth := res.MaxDepth; depth >= 1; depth-- {
		if ctx.Err() != nil {
			res.Interrupted = true
			break
		}
		if err := processDepth(ctx, cfg, fsys, log, rv, res, depth); err != nil {
			return res, err
		}
	}
	if res.Interrupted {
		log.Warn("Interrupted; the tree is consistent and the run can be repeated")
	}

	logSummary(cfg, log, res)
	return res, nil
}

// checkRoot makes root absolute and maps an unusable root onto the fatal
// sentinel errors.
func checkRoot(fsys *fsops.FS, root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root %s: %w", root, err)
	}
	if err := fsys.CheckRoot(abs); err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return abs, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		case errors.Is(err, fsops.ErrNotDir):
			return abs, fmt.Errorf("%w: %s", ErrRootNotDir, root)
		default:
			return abs, fmt.Errorf("cannot read root %s: %w", root, err)
		}
	}
	return abs, nil
}

// processDepth re-enumerates the tree and resolves the non-ASCII entries
// found at exactly depth, in path order.
func processDepth(
	ctx context.Context,
	cfg *config.Config,
	fsys *fsops.FS,
	log *logging.Logger,
	rv *resolver.Resolver,
	res *Result,
	depth int,
) error {
	all, err := Discover(fsys, res.Root, cfg.Pattern)
	if err != nil {
		return err
	}
	here := atDepth(all, depth)
	cands := nonASCII(here)
	log.Info("Depth %d/%d: %d %s, %d non-ASCII",
		depth, res.MaxDepth, len(here), display.Plural(len(here), "entry", "entries"), len(cands))

	for _, c := range cands {
		if ctx.Err() != nil {
			res.Interrupted = true
			return nil
		}
		if owner, ok := rv.Consumed(c.Path); ok {
			log.Debug(cfg.Verbose, "  Already handled with %s: %s",
				name(res.Root, owner), name(res.Root, c.Path))
			res.Stats.Skipped++
			continue
		}
		res.Stats.Candidates++
		for _, rec := range rv.Resolve(c) {
			res.Stats.Add(rec)
			res.Records = append(res.Records, rec)
			logRecord(cfg, log, res.Root, rec)
		}
	}
	return nil
}

// name renders path relative to root with non-ASCII runes escaped, so
// look-alike spellings can be told apart.
func name(root, path string) string {
	return display.QuoteName(display.RelPath(root, path))
}

func logRecord(cfg *config.Config, log *logging.Logger, root string, rec resolver.Record) {
	kind := "file"
	if rec.IsDir {
		kind = "directory"
	}
	from := name(root, rec.Alternate)
	to := name(root, rec.Canonical)
	form := ""
	if rec.Form != "" {
		form = fmt.Sprintf(" (%s)", rec.Form)
	}

	switch rec.Kind {
	case resolver.NoActionNeeded:
		log.Debug(cfg.Verbose, "  OK: %s", name(root, rec.Path))

	case resolver.RenameToCanonical:
		if rec.DryRun {
			log.Dry("  Would rename %s %s%s -> %s", kind, from, form, to)
		} else {
			log.Success("  Renamed %s %s%s -> %s", kind, from, form, to)
		}

	case resolver.MergeIdenticalIntoCanonical:
		size := display.FormatBytes(rec.Size)
		if rec.DryRun {
			log.Dry("  Would merge identical %s %s%s into %s (%s)", kind, from, form, to, size)
		} else {
			log.Success("  Merged identical %s %s%s into %s (%s freed)", kind, from, form, to, size)
		}

	case resolver.ConflictDifferentContent:
		if len(rec.Variants) > 0 {
			names := make([]string, len(rec.Variants))
			for i, v := range rec.Variants {
				names[i] = name(root, v)
			}
			log.Warn("  Conflict: %s; contents differ, resolve by hand: %s",
				rec.Note, strings.Join(names, ", "))
			return
		}
		log.Warn("  Conflict: %s and %s%s differ; resolve by hand", to, from, form)

	case resolver.InvariantViolation:
		log.Error("  Invariant violation at %s: %s", name(root, rec.Path), rec.Note)

	case resolver.OperationFailed:
		log.Error("  %s for %s: %v", rec.Note, name(root, rec.Path), rec.Err)
	}
}

// --- Logging helpers ---

func logRunHeader(cfg *config.Config, log *logging.Logger, res *Result, candidates int) {
	log.Info("Root: %s", res.Root)
	log.Info("Pattern: %s", cfg.Pattern)
	log.Info("Forms: %s", cfg.Forms())
	if cfg.DryRun {
		log.Info("Mode: dry run (nothing is changed; pass --apply to rename and merge)")
	} else {
		log.Info("Mode: apply")
	}
	log.Info("Found %d %s, %d with non-ASCII names, deepest at depth %d",
		res.Stats.Entries, display.Plural(res.Stats.Entries, "entry", "entries"), candidates, res.MaxDepth)
	log.Blank()
}

func logSummary(cfg *config.Config, log *logging.Logger, res *Result) {
	s := &res.Stats
	log.Blank()
	log.Info("==============================")
	verb := "Done"
	if cfg.DryRun {
		verb = "Dry run done"
	}
	log.Info("%s: %d renamed, %d merged, %d unchanged", verb, s.Renamed, s.Merged, s.NoAction)
	log.Info("  Candidates examined: %d (%d already handled)", s.Candidates, s.Skipped)

	if s.Merged > 0 {
		if cfg.DryRun {
			log.Info("  Space reclaimable: %s", display.FormatBytes(s.BytesReclaimed))
		} else {
			log.Success("  Space reclaimed: %s", display.FormatBytes(s.BytesReclaimed))
		}
	}
	if s.Conflicts > 0 {
		log.Warn("  Conflicts needing manual resolution: %d", s.Conflicts)
	}
	if s.Violations > 0 {
		log.Error("  Invariant violations: %d", s.Violations)
	}
	if s.Failed > 0 {
		log.Error("  Failed operations: %d", s.Failed)
	}
}
