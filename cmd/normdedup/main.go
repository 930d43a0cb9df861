// Command normdedup is the CLI entrypoint for the Unicode normalization
// deduplicator.
//
// It parses flags, validates configuration, and either runs filesystem
// diagnostics (--check) or the depth-ordered rename/merge pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/backmassage/normdedup/internal/check"
	"github.com/backmassage/normdedup/internal/config"
	"github.com/backmassage/normdedup/internal/display"
	"github.com/backmassage/normdedup/internal/fsops"
	"github.com/backmassage/normdedup/internal/logging"
	"github.com/backmassage/normdedup/internal/pipeline"
	"github.com/backmassage/normdedup/internal/report"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

// Exit codes.
const (
	exitOK        = 0
	exitFatal     = 1
	exitAttention = 2 // Conflicts, invariant violations or failed operations.
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt.
	cfg := config.DefaultConfig()
	code := exitOK

	cmd := &cobra.Command{
		Use:   "normdedup [flags] <root>",
		Short: "Merge and rename files whose names differ only in Unicode normalization",
		Long: `normdedup walks root deepest level first and, for every non-ASCII name,
renames it to the canonical normalization form, merges it into an existing
byte-identical canonical twin, or reports a conflict when contents differ.

Nothing is changed unless --apply is given.`,
		Version:       version + " (" + commit + ")",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := config.RegisterFlags(cmd.Flags(), &cfg)
	cmd.Flags().BoolP("version", "V", false, "Print version and exit")
	cmd.SetVersionTemplate("normdedup {{.Version}}\n")
	cmd.SetArgs(args)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := flags.Apply(cmd.Flags(), &cfg, args); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		code = execute(&cfg)
		return nil
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "normdedup: %v\n", err)
		return exitFatal
	}
	return code
}

// execute runs the configured mode once the config is valid.
func execute(cfg *config.Config) int {
	log, err := logging.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "normdedup: %v\n", err)
		return exitFatal
	}
	defer log.Close()

	// Phase 2: Logger available. All output goes through log from here on.
	display.PrintBanner(color.Output)
	osfs := afero.NewOsFs()

	if cfg.CheckOnly {
		if err := check.RunCheck(cfg, osfs, log); err != nil {
			log.Error("%v", err)
			return exitFatal
		}
		return exitOK
	}

	log.Info("=== normdedup v%s (%s) ===", version, commit)
	if cfg.DryRun {
		log.Warn("DRY RUN: nothing will be renamed or removed")
	} else if err := check.Preflight(cfg, osfs); err != nil {
		log.Error("%v", err)
		return exitFatal
	}

	// Phase 3: Signal handling. Cancel the context on SIGINT/SIGTERM so the
	// walker stops between entries, never in the middle of a rename.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, finishing current entry")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Phase 4: Run the pipeline, then write the report.
	res, err := pipeline.Run(ctx, cfg, fsops.New(osfs), log)
	if err != nil {
		log.Error("%v", err)
		return exitFatal
	}

	if cfg.ReportFile != "" {
		if err := report.New(cfg, res, version).Write(cfg.ReportFile); err != nil {
			log.Error("%v", err)
			return exitFatal
		}
		log.Info("Report written to %s", cfg.ReportFile)
	}

	switch {
	case res.Stats.NeedsAttention():
		return exitAttention
	case res.Interrupted:
		return exitFatal
	}
	return exitOK
}
