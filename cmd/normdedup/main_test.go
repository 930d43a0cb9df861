package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cafeNFC = "caf\u00e9.txt"
	cafeNFD = "cafe\u0301.txt"
)

func tree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
	return root
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		args  []string
		want  int
	}{
		{"dry run", map[string]string{cafeNFD: "x"}, nil, exitOK},
		{"apply rename", map[string]string{cafeNFD: "x"}, []string{"--apply"}, exitOK},
		{"conflict needs attention", map[string]string{cafeNFC: "a", cafeNFD: "b"}, []string{"--apply"}, exitAttention},
		{"check mode", map[string]string{cafeNFD: "x"}, []string{"--check"}, exitOK},
		{"bad pattern", nil, []string{"--pattern", "[x"}, exitFatal},
		{"unknown flag", nil, []string{"--frobnicate"}, exitFatal},
		{"bad form", nil, []string{"--canonical", "nfz"}, exitFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := tree(t, tt.files)
			args := append([]string{"--no-color"}, tt.args...)
			args = append(args, root)
			assert.Equal(t, tt.want, run(args))
		})
	}
}

func TestRun_ApplyRenames(t *testing.T) {
	root := tree(t, map[string]string{cafeNFD: "x"})

	require.Equal(t, exitOK, run([]string{"--no-color", "--apply", root}))

	_, err := os.Stat(filepath.Join(root, cafeNFC))
	assert.NoError(t, err)
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRun_DryRunWinsOverApply(t *testing.T) {
	root := tree(t, map[string]string{cafeNFD: "x"})

	require.Equal(t, exitOK, run([]string{"--no-color", "--apply", "--dry-run", root}))

	_, err := os.Stat(filepath.Join(root, cafeNFD))
	assert.NoError(t, err, "dry run must leave the tree alone")
}

func TestRun_Report(t *testing.T) {
	root := tree(t, map[string]string{cafeNFD: "x"})
	reportPath := filepath.Join(t.TempDir(), "report.json")

	require.Equal(t, exitOK, run([]string{"--no-color", "--report", reportPath, root}))

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind": "rename"`)
	assert.Contains(t, string(data), `"dry_run": true`)
}

func TestRun_LogFile(t *testing.T) {
	root := tree(t, map[string]string{cafeNFD: "x"})
	logPath := filepath.Join(t.TempDir(), "normdedup.log")

	require.Equal(t, exitOK, run([]string{"--no-color", "-l", logPath, root}))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DRY]")
}

func TestRun_Errors(t *testing.T) {
	assert.Equal(t, exitFatal, run([]string{"--no-color"}), "missing root")
	assert.Equal(t, exitFatal, run([]string{"--no-color", "a", "b"}), "two roots")
	assert.Equal(t, exitFatal, run([]string{"--no-color", filepath.Join(t.TempDir(), "missing")}))
}

func TestRun_Version(t *testing.T) {
	assert.Equal(t, exitOK, run([]string{"--version"}))
	assert.Equal(t, exitOK, run([]string{"-V"}))
}
