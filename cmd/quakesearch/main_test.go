package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/quake-feed-search/internal/domain"
	"github.com/couchcryptid/quake-feed-search/internal/feedgen"
	"github.com/couchcryptid/quake-feed-search/internal/output"
	"github.com/couchcryptid/quake-feed-search/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"QUAKE_FEED_DIR", "QUAKE_FEED_EXT", "QUAKE_REPORT_PATH", "LOG_LEVEL", "LOG_FORMAT",
		"SHUTDOWN_TIMEOUT", "PARSE_CACHE_SIZE", "METRICS_TEXTFILE", "QUAKE_TITLE_MAGNITUDE",
		"QUAKE_LINK_AS_ID", "KAFKA_BROKERS", "KAFKA_TOPIC", "NO_COLOR",
	} {
		t.Setenv(key, "")
	}
}

func writeFeed(t *testing.T, dir, name string, entries []feedgen.Entry) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, feedgen.Write(&buf, name, time.Date(2025, 1, 28, 13, 0, 0, 0, time.UTC), entries))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
}

func sampleFeeds(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFeed(t, dir, "day.atom", []feedgen.Entry{
		{
			ID: "urn:ev:small", Title: "M 1.3 - 10 km NE of Ridgecrest, CA", Updated: "2025-01-28T10:00:00.000Z",
			Point: "35.7 -117.6", Elevation: "-7400",
			Categories: []domain.Category{{Label: "Magnitude", Term: "Magnitude 1"}},
		},
		{
			ID: "urn:ev:large", Title: "M 4.6 - 5 km S of Volcano, Hawaii", Updated: "2025-01-28T11:00:00.000Z",
			Point: "19.39 -155.23", Elevation: "-1200",
			Categories: []domain.Category{{Label: "Magnitude", Term: "Magnitude 4"}},
		},
	})
	return dir
}

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	base := []string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "--color", "never"}
	cmd := newRootCmd(strings.NewReader(stdin), &stdout, &stderr)
	cmd.SetArgs(append(base, args...))
	err := cmd.Execute()
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestSearch_WritesReport(t *testing.T) {
	clearEnv(t)
	dir := sampleFeeds(t)
	out := filepath.Join(t.TempDir(), "results", "report.txt")

	res := runCLI(t, "", "--dir", dir, "--out", out, "search", "--bucket", ">=2")
	require.NoError(t, res.err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "urn:ev:large")
	assert.NotContains(t, string(data), "urn:ev:small")
	assert.Contains(t, res.stdout, "1 matching entr(y/ies) written to")
}

func TestSearch_InvalidCriterionLeavesReport(t *testing.T) {
	clearEnv(t)
	dir := sampleFeeds(t)
	out := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(out, []byte("previous run\n"), 0o644))

	res := runCLI(t, "", "--dir", dir, "--out", out, "search", "--date-from", "2025-02-01", "--date-to", "2025-01-01")
	require.Error(t, res.err)
	assert.Equal(t, output.ExitGeneral, output.ExitCode(res.err))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous run\n", string(data))
}

func TestSearch_NoCriteria(t *testing.T) {
	clearEnv(t)
	res := runCLI(t, "", "--dir", sampleFeeds(t), "--out", filepath.Join(t.TempDir(), "r.txt"), "search")
	require.Error(t, res.err)
	assert.Equal(t, output.ExitGeneral, output.ExitCode(res.err))
}

func TestSearch_EmptyDirectoryOverwritesReport(t *testing.T) {
	clearEnv(t)
	out := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(out, []byte("stale results\n"), 0o644))

	res := runCLI(t, "", "--dir", t.TempDir(), "--out", out, "search", "--place", "Alaska")
	require.NoError(t, res.err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale results")
	assert.Contains(t, string(data), report.NoMatches)
}

func TestSearch_MissingDirectory(t *testing.T) {
	clearEnv(t)
	out := filepath.Join(t.TempDir(), "report.txt")

	res := runCLI(t, "", "--dir", filepath.Join(t.TempDir(), "nope"), "--out", out, "search", "--bucket", "1")
	require.Error(t, res.err)
	assert.Equal(t, output.ExitGeneral, output.ExitCode(res.err))
	assert.NoFileExists(t, out)
}

func TestInteractive_BucketMenu(t *testing.T) {
	clearEnv(t)
	dir := sampleFeeds(t)
	out := filepath.Join(t.TempDir(), "report.txt")

	res := runCLI(t, "8\n>=2\n", "--dir", dir, "--out", out)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "8. Search by Magnitude bucket")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "urn:ev:large")
}

func TestInteractive_InvalidChoice(t *testing.T) {
	clearEnv(t)
	out := filepath.Join(t.TempDir(), "report.txt")

	res := runCLI(t, "42\n", "--dir", sampleFeeds(t), "--out", out)
	require.Error(t, res.err)
	assert.NoFileExists(t, out)
}

func TestInvalidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("PARSE_CACHE_SIZE", "zero")

	res := runCLI(t, "", "search", "--bucket", "1")
	require.Error(t, res.err)
	assert.Equal(t, output.ExitConfigError, output.ExitCode(res.err))
}

func TestSearch_MetricsTextfile(t *testing.T) {
	clearEnv(t)
	metricsPath := filepath.Join(t.TempDir(), "quakesearch.prom")
	t.Setenv("METRICS_TEXTFILE", metricsPath)

	res := runCLI(t, "", "--dir", sampleFeeds(t), "--out", filepath.Join(t.TempDir(), "r.txt"), "search", "--magnitude", ">=4")
	require.NoError(t, res.err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "quake_search_entries_matched_total 1")
	assert.Contains(t, string(data), "quake_search_reports_written_total 1")
}

func TestVersion_Short(t *testing.T) {
	res := runCLI(t, "", "version", "--short")
	require.NoError(t, res.err)
	assert.Equal(t, "dev\n", res.stdout)
}

func TestVersion_SkipsConfiguration(t *testing.T) {
	clearEnv(t)
	t.Setenv("PARSE_CACHE_SIZE", "zero")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	res := runCLI(t, "", "version", "--short")
	require.NoError(t, res.err)
	assert.Equal(t, output.ExitSuccess, output.ExitCode(res.err))
	assert.Equal(t, "dev\n", res.stdout)
}
