// Package config holds runtime configuration: defaults, CLI flag binding,
// the optional YAML config file, and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/backmassage/normdedup/internal/fsops"
	"github.com/backmassage/normdedup/internal/naming"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// DefaultPattern matches every entry below the root.
const DefaultPattern = "**"

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then by the config file and CLI flags, and passed by pointer to the
// packages that need it.
type Config struct {
	// Root is the directory to scan (positional argument).
	Root string
	// Pattern is a doublestar pattern relative to Root. Default: "**".
	Pattern string

	// Normalization policy. Default: NFC canonical, NFD then NFKD.
	Canonical  naming.Form
	Alternates []naming.Form

	// Behavior.
	DryRun    bool // Default: true. Cleared by --apply.
	CheckOnly bool // Run --check diagnostics and exit.

	// Display and logging.
	Verbose    bool      // Also report no-op decisions.
	ColorMode  ColorMode // Default: "auto".
	LogFile    string    // Optional log file path.
	ReportFile string    // Optional JSON report path.
	ConfigFile string    // Optional YAML config path.
}

// DefaultConfig returns a Config with every default applied. Dry run is on:
// nothing is renamed or removed unless the user asks for it.
func DefaultConfig() Config {
	forms := naming.DefaultFormSet()
	return Config{
		Pattern:    DefaultPattern,
		Canonical:  forms.Canonical,
		Alternates: forms.Alternates,
		DryRun:     true,
		ColorMode:  ColorAuto,
	}
}

// Forms returns the normalization policy as a [naming.FormSet].
func (c *Config) Forms() naming.FormSet {
	alts := make([]naming.Form, len(c.Alternates))
	copy(alts, c.Alternates)
	return naming.FormSet{Canonical: c.Canonical, Alternates: alts}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks the root, the pattern, the normalization policy and the
// color mode.
func (c *Config) Validate() error {
	if c.Root == "" {
		return errors.New("need exactly one root directory")
	}
	if c.Pattern == "" {
		return errors.New("pattern must not be empty")
	}
	if !fsops.ValidPattern(c.Pattern) {
		return fmt.Errorf("invalid pattern %q", c.Pattern)
	}
	if err := c.Forms().Validate(); err != nil {
		return err
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}
	return nil
}
