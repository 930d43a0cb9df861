// Package report turns a run's decision records into a JSON document and
// writes it atomically.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/backmassage/normdedup/internal/config"
	"github.com/backmassage/normdedup/internal/display"
	"github.com/backmassage/normdedup/internal/pipeline"
	"github.com/backmassage/normdedup/internal/resolver"
)

// Report is the JSON document written by --report.
type Report struct {
	RunID       string    `json:"run_id"`
	Version     string    `json:"version"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Root        string    `json:"root"`
	Pattern     string    `json:"pattern"`
	Canonical   string    `json:"canonical"`
	Alternates  []string  `json:"alternates"`
	DryRun      bool      `json:"dry_run"`
	Interrupted bool      `json:"interrupted"`
	Summary     Summary   `json:"summary"`
	Decisions   []Entry   `json:"decisions"`
}

// Summary mirrors the console summary block.
type Summary struct {
	Entries        int   `json:"entries"`
	Candidates     int   `json:"candidates"`
	Skipped        int   `json:"skipped"`
	NoAction       int   `json:"no_action"`
	Renamed        int   `json:"renamed"`
	Merged         int   `json:"merged"`
	Conflicts      int   `json:"conflicts"`
	Violations     int   `json:"invariant_violations"`
	Failed         int   `json:"failed"`
	BytesReclaimed int64 `json:"bytes_reclaimed"`
	NeedsAttention bool  `json:"needs_attention"`
}

// Entry is one decision record. JSON replaces invalid UTF-8 with U+FFFD,
// so every path also appears as a Go-quoted ASCII string (the *_quoted
// fields) that strconv.Unquote turns back into the exact bytes.
type Entry struct {
	Kind            resolver.Kind `json:"kind"`
	Path            string        `json:"path"`
	PathQuoted      string        `json:"path_quoted"`
	Canonical       string        `json:"canonical,omitempty"`
	CanonicalQuoted string        `json:"canonical_quoted,omitempty"`
	Alternate       string        `json:"alternate,omitempty"`
	AlternateQuoted string        `json:"alternate_quoted,omitempty"`
	Form            string        `json:"form,omitempty"`
	Variants        []string      `json:"variants,omitempty"`
	VariantsQuoted  []string      `json:"variants_quoted,omitempty"`
	Depth           int           `json:"depth"`
	IsDir           bool          `json:"is_dir,omitempty"`
	Size            int64         `json:"size,omitempty"`
	Note            string        `json:"note,omitempty"`
	Error           string        `json:"error,omitempty"`
}

// New builds a report for res under a fresh run ID.
func New(cfg *config.Config, res *pipeline.Result, version string) *Report {
	alts := make([]string, len(cfg.Alternates))
	for i, f := range cfg.Alternates {
		alts[i] = string(f)
	}
	s := res.Stats
	r := &Report{
		RunID:       uuid.NewString(),
		Version:     version,
		StartedAt:   res.Started.UTC(),
		FinishedAt:  res.Finished.UTC(),
		Root:        res.Root,
		Pattern:     cfg.Pattern,
		Canonical:   string(cfg.Canonical),
		Alternates:  alts,
		DryRun:      cfg.DryRun,
		Interrupted: res.Interrupted,
		Summary: Summary{
			Entries:        s.Entries,
			Candidates:     s.Candidates,
			Skipped:        s.Skipped,
			NoAction:       s.NoAction,
			Renamed:        s.Renamed,
			Merged:         s.Merged,
			Conflicts:      s.Conflicts,
			Violations:     s.Violations,
			Failed:         s.Failed,
			BytesReclaimed: s.BytesReclaimed,
			NeedsAttention: s.NeedsAttention(),
		},
		Decisions: make([]Entry, 0, len(res.Records)),
	}
	for _, rec := range res.Records {
		r.Decisions = append(r.Decisions, toEntry(rec))
	}
	return r
}

func toEntry(rec resolver.Record) Entry {
	e := Entry{
		Kind:      rec.Kind,
		Path:      rec.Path,
		Canonical: rec.Canonical,
		Alternate: rec.Alternate,
		Form:      string(rec.Form),
		Variants:  rec.Variants,
		Depth:     rec.Depth,
		IsDir:     rec.IsDir,
		Size:      rec.Size,
		Note:      rec.Note,
	}
	e.PathQuoted = display.QuoteName(rec.Path)
	e.CanonicalQuoted = quoteOptional(rec.Canonical)
	e.AlternateQuoted = quoteOptional(rec.Alternate)
	for _, v := range rec.Variants {
		e.VariantsQuoted = append(e.VariantsQuoted, display.QuoteName(v))
	}
	if rec.Err != nil {
		e.Error = rec.Err.Error()
	}
	return e
}

func quoteOptional(path string) string {
	if path == "" {
		return ""
	}
	return display.QuoteName(path)
}

// Write encodes r as indented JSON and atomically replaces path with it.
func (r *Report) Write(path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
