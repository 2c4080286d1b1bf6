package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/quake-feed-search/internal/domain"
	"github.com/couchcryptid/quake-feed-search/internal/feedgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFeed(t *testing.T, dir, name string, entries []feedgen.Entry) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, feedgen.Write(&buf, name, time.Date(2025, 1, 28, 13, 0, 0, 0, time.UTC), entries))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
}

func TestRun_SyntheticFeedPasses(t *testing.T) {
	dir := t.TempDir()
	writeFeed(t, dir, "day.atom", feedgen.Synthesize(12, time.Date(2025, 1, 28, 13, 0, 0, 0, time.UTC), 3))

	var out bytes.Buffer
	code := run(context.Background(), dir, ".atom", &out)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
	assert.Contains(t, out.String(), "entries: 12 read, 12 complete")
}

func TestRun_ReportsEveryPhase(t *testing.T) {
	dir := t.TempDir()
	writeFeed(t, dir, "a.atom", []feedgen.Entry{
		{
			ID: "urn:ev:1", Title: "M 4.6 - 5 km S of Volcano, Hawaii", Updated: "2025-01-28T11:00:00.000Z",
			Point: "19.39 -155.23", Elevation: "-1200",
			Categories: []domain.Category{{Label: "Magnitude", Term: "Magnitude 2"}},
		},
		{
			ID: "urn:ev:2", Title: "M 1.0 - Anytown, Someplace", Updated: "yesterday",
			Point: "1 2", Elevation: "-10",
		},
		{ID: "urn:ev:3", Title: "M 1.0 - Anytown, Someplace", Updated: "2025-01-28T11:00:00Z", Elevation: "-10"},
	})
	writeFeed(t, dir, "b.atom", []feedgen.Entry{
		{ID: "urn:ev:1", Title: "M 1.0 - Anytown, Someplace", Updated: "2025-01-28T11:00:00Z", Point: "1 2", Elevation: "-10"},
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.atom"), []byte("<feed><entry>"), 0o644))

	var out bytes.Buffer
	code := run(context.Background(), dir, ".atom", &out)
	report := out.String()

	assert.Equal(t, 1, code)
	assert.Contains(t, report, "--- Feed documents parse ---")
	assert.Contains(t, report, "--- Entries carry required fields ---")
	assert.Contains(t, report, "missing required field: point")
	assert.Contains(t, report, "--- Entry identifiers are unique ---")
	assert.Contains(t, report, "--- Timestamps are RFC 3339 ---")
	assert.Contains(t, report, "--- Magnitude category agrees with title ---")
	assert.Contains(t, report, "Validation FAILED.")
}

func TestRun_MissingDirectory(t *testing.T) {
	var out bytes.Buffer
	code := run(context.Background(), filepath.Join(t.TempDir(), "nope"), ".atom", &out)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FATAL")
}
