package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/normdedup/internal/naming"
)

// File is the YAML config file layout. Pointer fields distinguish "unset"
// from a zero value.
type File struct {
	Pattern    *string  `yaml:"pattern"`
	DryRun     *bool    `yaml:"dry_run"`
	Verbose    *bool    `yaml:"verbose"`
	Canonical  string   `yaml:"canonical"`
	Alternates []string `yaml:"alternates"`
	Color      string   `yaml:"color"`
	LogFile    string   `yaml:"log_file"`
	ReportFile string   `yaml:"report_file"`
}

// LoadFile reads and strictly parses a YAML config file. Unknown keys are
// an error; an empty file is an empty config.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &f, nil
}

// ApplyTo copies every value set in the file onto cfg, skipping settings
// whose flag was given on the command line (changed reports that by flag
// name).
func (f *File) ApplyTo(cfg *Config, changed func(flag string) bool) error {
	if f.Pattern != nil && !changed("pattern") {
		cfg.Pattern = *f.Pattern
	}
	if f.DryRun != nil && !changed("dry-run") && !changed("apply") {
		cfg.DryRun = *f.DryRun
	}
	if f.Verbose != nil && !changed("verbose") {
		cfg.Verbose = *f.Verbose
	}
	if f.Canonical != "" && !changed("canonical") {
		c, err := naming.ParseForm(f.Canonical)
		if err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		cfg.Canonical = c
	}
	if len(f.Alternates) > 0 && !changed("alternates") {
		alts := make([]naming.Form, 0, len(f.Alternates))
		for _, s := range f.Alternates {
			a, err := naming.ParseForm(s)
			if err != nil {
				return fmt.Errorf("config file: %w", err)
			}
			alts = append(alts, a)
		}
		cfg.Alternates = alts
	}
	if f.Color != "" && !changed("color") && !changed("no-color") {
		cfg.ColorMode = ColorMode(f.Color)
	}
	if f.LogFile != "" && !changed("log") {
		cfg.LogFile = f.LogFile
	}
	if f.ReportFile != "" && !changed("report") {
		cfg.ReportFile = f.ReportFile
	}
	return nil
}
