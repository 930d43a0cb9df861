package config

// This file binds CLI flags onto Config. Flags that derive or negate a
// setting (--apply, --color/--no-color, the form lists) are captured
// separately and applied after parsing, so DefaultConfig and the config
// file hold unless the user passes the flag.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/backmassage/normdedup/internal/naming"
)

// Flags holds flag values applied to Config after parsing.
type Flags struct {
	apply      bool
	forceColor bool
	noColor    bool
	canonical  string
	alternates string
}

// RegisterFlags defines every option on fs, binding direct settings to cfg.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) *Flags {
	f := &Flags{
		canonical:  string(cfg.Canonical),
		alternates: joinForms(cfg.Alternates),
	}

	fs.StringVarP(&cfg.Pattern, "pattern", "p", cfg.Pattern, "Doublestar pattern selecting entries below root")
	fs.BoolVarP(&cfg.DryRun, "dry-run", "d", cfg.DryRun, "Report decisions only; rename and remove nothing")
	fs.BoolVar(&f.apply, "apply", false, "Perform renames and merges (turns dry run off)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Also report names that need no action")
	fs.StringVar(&f.canonical, "canonical", f.canonical, "Canonical normalization form: NFC | NFD | NFKC | NFKD")
	fs.StringVar(&f.alternates, "alternates", f.alternates, "Alternate forms to look for, in priority order")

	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML config file (flags take precedence)")
	fs.StringVarP(&cfg.LogFile, "log", "l", "", "Append logs to file")
	fs.StringVar(&cfg.ReportFile, "report", "", "Write a JSON report of every decision to file")
	fs.BoolVar(&f.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVarP(&cfg.CheckOnly, "check", "c", false, "Probe how the filesystem at root treats normalization, then exit")
	return f
}

// Apply finishes configuration after fs has been parsed: it layers the
// config file under explicitly set flags, resolves the derived flags, and
// takes the root from args. Precedence: flags > config file > defaults.
func (f *Flags) Apply(fs *pflag.FlagSet, cfg *Config, args []string) error {
	if cfg.ConfigFile != "" {
		file, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return err
		}
		if err := file.ApplyTo(cfg, fs.Changed); err != nil {
			return err
		}
	}

	if fs.Changed("canonical") {
		c, err := naming.ParseForm(f.canonical)
		if err != nil {
			return err
		}
		cfg.Canonical = c
	}
	if fs.Changed("alternates") {
		alts, err := naming.ParseForms(f.alternates)
		if err != nil {
			return err
		}
		cfg.Alternates = alts
	}

	// An explicit --dry-run wins over --apply.
	if f.apply && !fs.Changed("dry-run") {
		cfg.DryRun = false
	}

	if f.noColor {
		cfg.ColorMode = ColorNever
	} else if f.forceColor {
		cfg.ColorMode = ColorAlways
	}

	if len(args) != 1 {
		return fmt.Errorf("need exactly one root directory (got %d arguments)", len(args))
	}
	cfg.Root = NormalizeDirArg(args[0])
	return nil
}

func joinForms(forms []naming.Form) string {
	parts := make([]string, len(forms))
	for i, f := range forms {
		parts[i] = string(f)
	}
	return strings.Join(parts, ",")
}
