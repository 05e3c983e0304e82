package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/sangercheck/internal/config"
	"github.com/yumyai/sangercheck/pkg/db"
	"github.com/yumyai/sangercheck/pkg/model"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		raw     string
		want    model.Pair
		wantErr bool
	}{
		{raw: "r.fasta:ref.fasta", want: model.Pair{Read: "r.fasta", Reference: "ref.fasta"}},
		{raw: " r.ab1 : ref.fasta ", want: model.Pair{Read: "r.ab1", Reference: "ref.fasta"}},
		{raw: "r.fasta", wantErr: true},
		{raw: ":ref.fasta", wantErr: true},
		{raw: "r.fasta:", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parsePair(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestSelectPairs(t *testing.T) {
	pairFlags = nil
	c := &cobra.Command{}
	c.SetContext(context.Background())

	var cfg config.Config
	cfg.Data.ProcessedDir = "reads"

	pairs, err := selectPairs(c, cfg)
	require.NoError(t, err)
	require.Len(t, pairs, len(model.DefaultPairs))
	assert.Equal(t, filepath.Join("reads", model.DefaultPairs[0].Read), pairs[0].Read)

	cfg.Data.SamplesDB = filepath.Join(t.TempDir(), "samples.db")
	sheet, err := db.OpenSampleDB(context.Background(), cfg.Data.SamplesDB)
	require.NoError(t, err)
	require.NoError(t, sheet.AddPair(context.Background(), model.Pair{Read: "a.fasta", Reference: "/abs/b.fasta"}))
	require.NoError(t, sheet.Close())

	pairs, err = selectPairs(c, cfg)
	require.NoError(t, err)
	assert.Equal(t, []model.Pair{{Read: filepath.Join("reads", "a.fasta"), Reference: "/abs/b.fasta"}}, pairs)
}

func TestCompareCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "r1.fasta"), []byte(">r1\nACGT\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ref1.fasta"), []byte(">ref1\nACCT\n"), 0o644))

	out, err := execute(t, "compare", "--data-dir", dir, "--format", "json",
		"--pair", "r1.fasta:ref1.fasta", "--pair", "missing.fasta:ref1.fasta")
	require.NoError(t, err, out)

	var report struct {
		Outcomes []struct {
			Status   string  `json:"status"`
			Identity float64 `json:"percent_identity"`
		} `json:"outcomes"`
		Summary model.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, "aligned", report.Outcomes[0].Status)
	assert.InDelta(t, 75.0, report.Outcomes[0].Identity, 1e-9)
	assert.Equal(t, "skipped", report.Outcomes[1].Status)
	assert.Equal(t, model.Summary{Aligned: 1, Skipped: 1}, report.Summary)
}

func TestAlignCommand(t *testing.T) {
	out, err := execute(t, "align", "ACGT", "ACCT")
	require.NoError(t, err, out)
	assert.True(t, strings.HasPrefix(out, "query vs reference\n"), out)
	assert.Contains(t, out, "Score=5\n")
	assert.Contains(t, out, "Identity=75.00%\n")
}

func TestAlignCommandRejectsBadScheme(t *testing.T) {
	t.Cleanup(func() {
		f := rootCmd.PersistentFlags().Lookup("mismatch")
		f.Value.Set(f.DefValue)
		f.Changed = false
	})
	_, err := execute(t, "align", "ACGT", "ACGT", "--mismatch", "3")
	require.Error(t, err)
}

func TestSetupReportsMalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("SANGERCHECK_BROKEN=\"never closed\n"), 0o644))

	captured, err := os.CreateTemp(dir, "stderr")
	require.NoError(t, err)
	stderr := os.Stderr
	os.Stderr = captured
	t.Cleanup(func() {
		os.Stderr = stderr
		f := rootCmd.PersistentFlags().Lookup("env-file")
		f.Value.Set(f.DefValue)
		f.Changed = false
	})

	out, err := execute(t, "align", "ACGT", "ACGT", "--env-file", env)
	os.Stderr = stderr
	require.NoError(t, err, out)

	logged, err := os.ReadFile(captured.Name())
	require.NoError(t, err)
	assert.Contains(t, string(logged), "Could not read .env")
}

func TestSamplesCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.db")

	out, err := execute(t, "samples", "add", "--db", path, "--label", "s1", "r.fasta", "ref.fasta")
	require.NoError(t, err, out)
	assert.Contains(t, out, "added s1")

	out, err = execute(t, "samples", "list", "--db", path)
	require.NoError(t, err, out)
	assert.Equal(t, "s1\tr.fasta\tref.fasta\n", out)

	out, err = execute(t, "samples", "remove", "--db", path, "r.fasta", "ref.fasta")
	require.NoError(t, err, out)

	_, err = execute(t, "samples", "remove", "--db", path, "r.fasta", "ref.fasta")
	require.Error(t, err)
}
