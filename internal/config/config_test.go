package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/normdedup/internal/naming"
)

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/srv/share", "/srv/share"},
		{"single trailing slash", "/srv/share/", "/srv/share"},
		{"multiple trailing slashes", "/srv/share///", "/srv/share"},
		{"root path", "/", "/"},
		{"relative path", "photos", "photos"},
		{"relative with slash", "photos/", "photos"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDirArg(tt.in))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.DryRun, "dry run must be the default")
	assert.Equal(t, DefaultPattern, cfg.Pattern)
	assert.Equal(t, naming.NFC, cfg.Canonical)
	assert.Equal(t, []naming.Form{naming.NFD, naming.NFKD}, cfg.Alternates)
	assert.Equal(t, ColorAuto, cfg.ColorMode)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with root", func(*Config) {}, false},
		{"missing root", func(c *Config) { c.Root = "" }, true},
		{"empty pattern", func(c *Config) { c.Pattern = "" }, true},
		{"bad pattern", func(c *Config) { c.Pattern = "[abc" }, true},
		{"brace pattern", func(c *Config) { c.Pattern = "**/*.{jpg,png}" }, false},
		{"canonical among alternates", func(c *Config) { c.Alternates = []naming.Form{naming.NFC} }, true},
		{"no alternates", func(c *Config) { c.Alternates = nil }, true},
		{"unknown form", func(c *Config) { c.Canonical = "NFX" }, true},
		{"color always", func(c *Config) { c.ColorMode = ColorAlways }, false},
		{"color empty", func(c *Config) { c.ColorMode = "" }, true},
		{"color unknown", func(c *Config) { c.ColorMode = "rainbow" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Root = "/srv/share"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestForms_ReturnsCopy(t *testing.T) {
	cfg := DefaultConfig()
	forms := cfg.Forms()
	forms.Alternates[0] = naming.NFKC
	assert.Equal(t, naming.NFD, cfg.Alternates[0])
}

// parse runs the full flag pipeline the way main does.
func parse(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	cfg := DefaultConfig()
	fs := pflag.NewFlagSet("normdedup", pflag.ContinueOnError)
	f := RegisterFlags(fs, &cfg)
	require.NoError(t, fs.Parse(args))
	err := f.Apply(fs, &cfg, fs.Args())
	return cfg, err
}

func TestFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg Config)
	}{
		{"root only keeps dry run", []string{"/srv/share/"}, func(t *testing.T, cfg Config) {
			assert.Equal(t, "/srv/share", cfg.Root)
			assert.True(t, cfg.DryRun)
		}},
		{"apply clears dry run", []string{"--apply", "/srv"}, func(t *testing.T, cfg Config) {
			assert.False(t, cfg.DryRun)
		}},
		{"explicit dry run wins over apply", []string{"--apply", "--dry-run", "/srv"}, func(t *testing.T, cfg Config) {
			assert.True(t, cfg.DryRun)
		}},
		{"forms", []string{"--canonical", "nfd", "--alternates", "nfc, nfkc", "/srv"}, func(t *testing.T, cfg Config) {
			assert.Equal(t, naming.NFD, cfg.Canonical)
			assert.Equal(t, []naming.Form{naming.NFC, naming.NFKC}, cfg.Alternates)
		}},
		{"pattern and verbose", []string{"-p", "**/*.txt", "-v", "/srv"}, func(t *testing.T, cfg Config) {
			assert.Equal(t, "**/*.txt", cfg.Pattern)
			assert.True(t, cfg.Verbose)
		}},
		{"no-color wins", []string{"--color", "--no-color", "/srv"}, func(t *testing.T, cfg Config) {
			assert.Equal(t, ColorNever, cfg.ColorMode)
		}},
		{"force color", []string{"--color", "/srv"}, func(t *testing.T, cfg Config) {
			assert.Equal(t, ColorAlways, cfg.ColorMode)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parse(t, tt.args...)
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestFlags_Errors(t *testing.T) {
	_, err := parse(t)
	assert.Error(t, err, "missing root")

	_, err = parse(t, "a", "b")
	assert.Error(t, err, "two roots")

	_, err = parse(t, "--canonical", "utf8", "/srv")
	assert.Error(t, err)

	_, err = parse(t, "--alternates", "NFD,bogus", "/srv")
	assert.Error(t, err)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "normdedup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestConfigFile(t *testing.T) {
	path := writeConfig(t, `
pattern: "**/*.pdf"
dry_run: false
verbose: true
canonical: nfc
alternates: [nfkd]
color: never
report_file: /tmp/report.json
`)

	cfg, err := parse(t, "--config", path, "/srv")
	require.NoError(t, err)
	assert.Equal(t, "**/*.pdf", cfg.Pattern)
	assert.False(t, cfg.DryRun)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, []naming.Form{naming.NFKD}, cfg.Alternates)
	assert.Equal(t, ColorNever, cfg.ColorMode)
	assert.Equal(t, "/tmp/report.json", cfg.ReportFile)
}

func TestConfigFile_FlagsTakePrecedence(t *testing.T) {
	path := writeConfig(t, "pattern: \"**/*.pdf\"\ndry_run: false\n")

	cfg, err := parse(t, "--config", path, "-p", "**/*.doc", "--dry-run", "/srv")
	require.NoError(t, err)
	assert.Equal(t, "**/*.doc", cfg.Pattern)
	assert.True(t, cfg.DryRun)
}

func TestConfigFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "patern: x\n"},
		{"bad form", "canonical: nfz\n"},
		{"bad alternate", "alternates: [nfd, nope]\n"},
		{"not yaml", "pattern: [unterminated\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, "--config", writeConfig(t, tt.body), "/srv")
			assert.Error(t, err)
		})
	}

	_, err := parse(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "/srv")
	assert.Error(t, err)
}

func TestLoadFile_Empty(t *testing.T) {
	f, err := LoadFile(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Nil(t, f.Pattern)
	assert.Empty(t, f.Alternates)
}
