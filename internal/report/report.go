// Package report renders search results into the fixed text report.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/quake-feed-search/internal/domain"
)

// NoMatches is written in place of the per-file sections when nothing matched.
const NoMatches = "No matching entries found."

const notAvailable = "N/A"

var (
	headerRule = strings.Repeat("=", 50)
	sourceRule = strings.Repeat("-", 40)
	groupRule  = strings.Repeat("*", 40)
	recordRule = strings.Repeat("-", 120)
)

// Render writes the report for description and groups to w. Groups without
// records are left out. The output depends only on its arguments.
func Render(w io.Writer, description string, groups []domain.Group) error {
	ew := &errWriter{w: w}

	ew.printf("\nThe following entries match: %s\n%s\n", description, headerRule)

	matched := false
	for _, g := range groups {
		if len(g.Records) == 0 {
			continue
		}
		matched = true

		ew.printf("\nFile path data was retrieved from: %s\n%s\n", g.Source, sourceRule)
		ew.printf("All matching entries:\n%s\n\n", groupRule)
		for _, rec := range g.Records {
			writeRecord(ew, rec)
		}
		ew.printf("%s\n", groupRule)
	}

	if !matched {
		ew.printf("\n%s\n", NoMatches)
	}
	return ew.err
}

func writeRecord(ew *errWriter, rec domain.EventRecord) {
	ew.printf("Title: %s\n", rec.Title)
	ew.printf("ID: %s\n", rec.ID)
	ew.printf("Published: %s\n", rec.Timestamp)
	ew.printf("Coordinates: %s\n", rec.Coordinates)
	ew.printf("Elevation/Depth: %s\n", rec.Elevation)
	ew.printf("Occurred: %s\n", orNA(rec.Age))
	ew.printf("Magnitude: %s\n", orNA(rec.Magnitude))
	ew.printf("%s\n", recordRule)
}

// WriteFile renders the report in memory and then replaces the file at path,
// creating its parent directory if needed. The previous content never survives.
func WriteFile(path, description string, groups []domain.Group) error {
	var buf bytes.Buffer
	if err := Render(&buf, description, groups); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // report is meant to be world-readable
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
