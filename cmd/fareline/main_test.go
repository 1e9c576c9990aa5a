package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/fareline/internal/engine/testdata"
	"github.com/crimson-sun/fareline/internal/model"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

// execute runs the CLI in a fresh temp working directory holding the corpus
// archive, and returns stdout.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(dir)
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	data, err := testdata.Archive()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "archive.json"), data, 0o644))
	return dir
}

func TestRunWritesArtifacts(t *testing.T) {
	dir := workspace(t)
	out, err := execute(t, dir, "run", "--archive", "archive.json",
		"--canonical", "out/canonical.json", "--quarantine", "out/quarantine.json", "--audit", "out/audit.json",
		"--history-db", "state/history.db", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "legacy_modern_price")
	assert.Contains(t, out, "quarantined:")

	var summary model.AuditSummary
	data, err := os.ReadFile(filepath.Join(dir, "out/audit.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 15, summary.Meta.TotalRaw)
	assert.Equal(t, 6, summary.Meta.TotalQuarantined)

	for _, name := range []string{"out/canonical.json", "out/quarantine.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	out, err = execute(t, dir, "history", "--history-db", "state/history.db")
	require.NoError(t, err)
	assert.Contains(t, out, summary.Meta.RunID)
}

func TestRunDryRunWritesNothing(t *testing.T) {
	dir := workspace(t)
	out, err := execute(t, dir, "run", "--archive", "archive.json", "--dry-run", "--log-level", "error")
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "canonical")
	assert.Contains(t, doc, "quarantine")
	assert.Contains(t, doc, "audit")

	_, err = os.Stat(filepath.Join(dir, "data"))
	assert.True(t, os.IsNotExist(err), "dry run must not create output files")
}

func TestRunMissingArchive(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, dir, "run", "--archive", "missing.json", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.json")
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestRunConfigFromEnv(t *testing.T) {
	dir := workspace(t)
	t.Setenv("FARELINE_ARCHIVE_PATH", "archive.json")
	t.Setenv("FARELINE_OUTPUT_CANONICAL", "env/canonical.json")
	t.Setenv("FARELINE_LOG_LEVEL", "error")

	_, err := execute(t, dir, "run")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "env/canonical.json"))
	assert.NoError(t, err)
}

func TestClassify(t *testing.T) {
	dir := workspace(t)
	out, err := execute(t, dir, "classify", "--archive", "archive.json")
	require.NoError(t, err)

	corpus, err := testdata.LoadCorpus()
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(corpus))
	assert.Equal(t, "2\tlegacy_modern_price", lines[2])
	assert.Equal(t, "9\tunknown", lines[9])
}

func TestVariants(t *testing.T) {
	out, err := execute(t, t.TempDir(), "variants")
	require.NoError(t, err)
	for _, tag := range model.KnownTags() {
		assert.Contains(t, out, string(tag))
	}
}

func TestHistoryWithoutLedger(t *testing.T) {
	_, err := execute(t, t.TempDir(), "history")
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errors.WithHint(errors.New("boom"), "try again"))
	assert.Equal(t, "fareline: boom\n  hint: try again\n", buf.String())
}
