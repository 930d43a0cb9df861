package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/normdedup/internal/config"
	"github.com/backmassage/normdedup/internal/fsops"
	"github.com/backmassage/normdedup/internal/naming"
	"github.com/backmassage/normdedup/internal/pipeline"
	"github.com/backmassage/normdedup/internal/resolver"
)

func sampleResult() *pipeline.Result {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	res := &pipeline.Result{
		Root:     "/srv/share",
		MaxDepth: 2,
		Started:  start,
		Finished: start.Add(3 * time.Second),
		Records: []resolver.Record{
			{
				Kind:      resolver.MergeIdenticalIntoCanonical,
				Path:      "/srv/share/cafe\u0301.txt",
				Canonical: "/srv/share/caf\u00e9.txt",
				Alternate: "/srv/share/cafe\u0301.txt",
				Form:      naming.NFD,
				Depth:     1,
				Size:      42,
			},
			{
				Kind:      resolver.OperationFailed,
				Path:      "/srv/share/x\u00e9",
				Canonical: "/srv/share/x\u00e9",
				Depth:     1,
				Note:      "rename failed",
				Err:       &fsops.OpError{Op: "rename", Path: "a", Target: "b", Err: fsops.ErrTargetExists},
			},
		},
	}
	for _, rec := range res.Records {
		res.Stats.Add(rec)
	}
	return res
}

func TestNew(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DryRun = false

	r := New(&cfg, sampleResult(), "1.2.3")

	_, err := uuid.Parse(r.RunID)
	assert.NoError(t, err)
	assert.Equal(t, "1.2.3", r.Version)
	assert.Equal(t, "NFC", r.Canonical)
	assert.Equal(t, []string{"NFD", "NFKD"}, r.Alternates)
	assert.False(t, r.DryRun)
	assert.Equal(t, 1, r.Summary.Merged)
	assert.Equal(t, 1, r.Summary.Failed)
	assert.EqualValues(t, 42, r.Summary.BytesReclaimed)
	assert.True(t, r.Summary.NeedsAttention)

	require.Len(t, r.Decisions, 2)
	assert.Equal(t, "NFD", r.Decisions[0].Form)
	assert.Empty(t, r.Decisions[0].Error)
	assert.Equal(t, `rename "a" -> "b": target already exists`, r.Decisions[1].Error)
}

func TestNew_UniqueRunIDs(t *testing.T) {
	cfg := config.DefaultConfig()
	a := New(&cfg, sampleResult(), "dev")
	b := New(&cfg, sampleResult(), "dev")
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestWrite(t *testing.T) {
	cfg := config.DefaultConfig()
	r := New(&cfg, sampleResult(), "dev")
	path := filepath.Join(t.TempDir(), "out", "report.json")

	require.NoError(t, r.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, r.RunID, got["run_id"])
	assert.Equal(t, true, got["dry_run"])

	decisions, ok := got["decisions"].([]any)
	require.True(t, ok)
	first := decisions[0].(map[string]any)
	assert.Equal(t, "merge", first["kind"])
	assert.Equal(t, "/srv/share/caf\u00e9.txt", first["canonical"])

	// Overwrites in place.
	require.NoError(t, r.Write(path))
}

func TestWrite_KeepsExactNameBytes(t *testing.T) {
	// Latin-1 e-acute: not valid UTF-8, so the plain JSON field is lossy.
	raw := "/srv/share/caf\xe9.txt"
	nfd := "/srv/share/cafe\u0301.txt"
	res := &pipeline.Result{Records: []resolver.Record{{
		Kind:      resolver.ConflictDifferentContent,
		Path:      raw,
		Canonical: nfd,
		Variants:  []string{raw, nfd},
	}}}
	cfg := config.DefaultConfig()
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, New(&cfg, res, "dev").Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Decisions, 1)
	e := got.Decisions[0]

	assert.NotEqual(t, raw, e.Path)
	unquote := func(s string) string {
		t.Helper()
		out, err := strconv.Unquote(s)
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, raw, unquote(e.PathQuoted))
	assert.Equal(t, nfd, unquote(e.CanonicalQuoted))
	assert.Empty(t, e.AlternateQuoted)
	require.Len(t, e.VariantsQuoted, 2)
	assert.Equal(t, raw, unquote(e.VariantsQuoted[0]))
	assert.Equal(t, nfd, unquote(e.VariantsQuoted[1]))
}
