package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/schedulegen/app"
)

const (
	sender   = "32F3rkDFY8Sua2iAmBXCBz6mV1ky1ygoiNsDXyf3edCR1GEBcq"
	receiver = "3vsxZXg2nKnSsANZ9GPUHckEcymQBMdLEgJ1xZZmum2g5Fik7D"
	refTime  = "2022-07-20T08:00:00Z"
)

func execute(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	root := NewRootCmd()
	var out, errb bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errb)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errb.String(), app.ExitCode(err)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestUsageErrors(t *testing.T) {
	tests := [][]string{
		{},
		{"a.csv", "b.csv"},
		{"--no-such-flag", "a.csv"},
		{"--now", "yesterday", "a.csv"},
		{"preview", "--format", "xml"},
		{"preview", "extra"},
	}
	for _, args := range tests {
		if _, _, code := execute(t, args...); code != app.ExitUsage {
			t.Fatalf("%v: exit %d, want %d", args, code, app.ExitUsage)
		}
	}
}

func TestRunWritesProposals(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "july.csv", sender+";"+receiver+";1;9\n")
	outDir := filepath.Join(dir, "out")

	stdout, stderr, code := execute(t, "--out-dir", outDir, "--now", refTime, in)
	require.Equal(t, app.ExitOK, code, stderr)
	assert.Equal(t, filepath.Join(outDir, "pre-proposal_july_001.json"), strings.TrimSpace(stdout))
	assert.Contains(t, stderr, "1 proposal(s), 10 GTU")
	assert.FileExists(t, filepath.Join(outDir, "pre-proposal_july_001.json"))

	// a second run refuses to overwrite unless forced
	_, _, code = execute(t, "--out-dir", outDir, "--now", refTime, in)
	assert.Equal(t, app.ExitIO, code)
	_, _, code = execute(t, "--out-dir", outDir, "--now", refTime, "--force", in)
	assert.Equal(t, app.ExitOK, code)
}

func TestRunWelcomeDryRun(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "welcome.csv", sender+";"+receiver+";5\n")

	stdout, stderr, code := execute(t, "--welcome", "--dry-run", "--out-dir", dir, "--now", refTime, in)
	require.Equal(t, app.ExitOK, code, stderr)
	var tx map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &tx))
	payload := tx["payload"].(map[string]any)
	assert.Len(t, payload["schedule"], 1)
	assert.NoFileExists(t, filepath.Join(dir, "pre-proposal_welcome_001.json"))
}

func TestRunInvalidRow(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "bad.csv", sender+";nope;1;9\n")
	_, stderr, code := execute(t, "--out-dir", dir, "--now", refTime, in)
	assert.Equal(t, app.ExitData, code)
	assert.Empty(t, stderr)
}

func TestRunMissingInput(t *testing.T) {
	_, _, code := execute(t, "--out-dir", t.TempDir(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, app.ExitIO, code)
}

func TestRunBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "schedule:\n  releases: 1\n")
	in := writeFile(t, dir, "rows.csv", sender+";"+receiver+";1;9\n")
	_, _, code := execute(t, "--config", cfg, "--out-dir", dir, in)
	assert.Equal(t, app.ExitConfig, code)
}

func TestPreview(t *testing.T) {
	stdout, _, code := execute(t, "preview", "--now", "2022-09-30T08:00:00Z", "--format", "json")
	require.Equal(t, app.ExitOK, code)
	type scheduleView struct {
		Mode    string   `json:"mode"`
		Cutoff  string   `json:"cutoff"`
		Planned []string `json:"planned"`
		Dates   []string `json:"dates"`
		Skipped int      `json:"skipped"`
	}
	var view scheduleView
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.Equal(t, "multi", view.Mode)
	assert.Len(t, view.Planned, 10)
	assert.Len(t, view.Dates, 8)
	assert.Equal(t, 2, view.Skipped)
	assert.Equal(t, "2022-09-30T12:00:00Z", view.Cutoff)

	// before the initial release the cutoff and the first date differ
	stdout, _, code = execute(t, "preview", "--now", refTime, "--format", "json")
	require.Equal(t, app.ExitOK, code)
	view = scheduleView{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.Equal(t, "2022-07-20T12:00:00Z", view.Cutoff)
	assert.Equal(t, "2022-07-26T12:00:00Z", view.Dates[0])
	assert.Equal(t, 0, view.Skipped)

	stdout, _, code = execute(t, "preview", "--welcome", "--now", refTime)
	require.Equal(t, app.ExitOK, code)
	assert.Contains(t, stdout, "2022-07-26")
}

func TestJournalLs(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "journal:\n  backend: jsonl\n  path: "+filepath.Join(dir, "journal.jsonl")+"\n")
	in := writeFile(t, dir, "rows.csv", sender+";"+receiver+";1;9\n")

	_, stderr, code := execute(t, "-c", cfg, "--out-dir", dir, "--now", refTime, in)
	require.Equal(t, app.ExitOK, code, stderr)

	stdout, _, code := execute(t, "journal", "ls", "-c", cfg, "--sender", sender)
	require.Equal(t, app.ExitOK, code)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "pre-proposal_rows_001.json")
	assert.Contains(t, lines[1], "10")

	_, _, code = execute(t, "journal", "ls")
	assert.Equal(t, app.ExitConfig, code)
}
