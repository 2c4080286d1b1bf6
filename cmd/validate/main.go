// Command validate performs integrity checks on a directory of earthquake
// feed files before they are searched. It verifies that every document
// parses, every entry carries the required fields, identifiers are unique
// across files, timestamps are RFC 3339, and magnitude categories agree with
// the magnitude in the title.
//
// Usage:
//
//	go run ./cmd/validate -dir feeds -ext .atom
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/quake-feed-search/internal/adapter/atomfeed"
	"github.com/couchcryptid/quake-feed-search/internal/domain"
	"github.com/fatih/color"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dir", "feeds", "directory containing feed files")
	ext := flag.String("ext", ".atom", "feed file extension")
	flag.Parse()

	if *dir == "" || *ext == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(context.Background(), *dir, *ext, os.Stdout))
}

// entryRef locates an entry for error messages.
type entryRef struct {
	path  string
	index int
	raw   domain.RawEntry
}

func (r entryRef) String() string { return fmt.Sprintf("%s entry %d", r.path, r.index+1) }

func run(ctx context.Context, dir, ext string, w io.Writer) int {
	fmt.Fprintln(w, "=== Feed Integrity Validation ===")
	fmt.Fprintln(w)

	parse := &phase{name: "Feed documents parse"}
	var docs, entries []entryRef
	for doc, err := range atomfeed.NewDirReader(dir, ext, nil).Documents(ctx) {
		var docErr *domain.DocumentError
		if errors.As(err, &docErr) {
			parse.errorf("%v", docErr)
			continue
		}
		if err != nil {
			fmt.Fprintf(w, "FATAL: %v\n", err)
			return 1
		}
		docs = append(docs, entryRef{path: doc.Path})
		for i, raw := range doc.Entries {
			entries = append(entries, entryRef{path: doc.Path, index: i, raw: raw})
		}
	}

	fields, records := validateRequiredFields(entries)
	phases := []*phase{
		parse,
		fields,
		validateUniqueIDs(records),
		validateTimestamps(records),
		validateMagnitudeAgreement(records),
	}

	fmt.Fprintln(w)
	allPassed := true
	for _, p := range phases {
		status := color.GreenString("PASS")
		if !p.passed() {
			status = color.RedString("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files: %d parsed, %d unparsable; entries: %d read, %d complete\n",
		len(docs), len(parse.errors), len(entries), len(records))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// checkedRecord pairs an extracted record with where it came from.
type checkedRecord struct {
	ref entryRef
	rec domain.EventRecord
}

func validateRequiredFields(entries []entryRef) (*phase, []checkedRecord) {
	p := &phase{name: "Entries carry required fields"}
	records := make([]checkedRecord, 0, len(entries))
	for _, ref := range entries {
		rec, err := domain.Extract(ref.raw)
		if err != nil {
			p.errorf("%s: %v", ref, err)
			continue
		}
		records = append(records, checkedRecord{ref: ref, rec: rec})
	}
	return p, records
}

func validateUniqueIDs(records []checkedRecord) *phase {
	p := &phase{name: "Entry identifiers are unique"}
	seen := make(map[string]entryRef, len(records))
	for _, r := range records {
		if first, ok := seen[r.rec.ID]; ok {
			p.errorf("%s: id %q already used by %s", r.ref, r.rec.ID, first)
			continue
		}
		seen[r.rec.ID] = r.ref
	}
	return p
}

func validateTimestamps(records []checkedRecord) *phase {
	p := &phase{name: "Timestamps are RFC 3339"}
	for _, r := range records {
		if r.rec.At.IsZero() {
			p.errorf("%s: updated %q cannot be parsed", r.ref, r.rec.Timestamp)
		}
	}
	return p
}

// validateMagnitudeAgreement compares the bucket of the Magnitude category with
// the bucket of the magnitude written in the title, when an entry has both.
func validateMagnitudeAgreement(records []checkedRecord) *phase {
	p := &phase{name: "Magnitude category agrees with title"}
	for _, r := range records {
		catBucket, ok := r.rec.Bucket()
		if !ok || !hasMagnitudeCategory(r.ref.raw) {
			continue
		}

		titleOnly := r.ref.raw
		titleOnly.Categories = nil
		titleRec, err := domain.ExtractWith(titleOnly, domain.ExtractOptions{TitleMagnitudeFallback: true})
		if err != nil {
			continue
		}
		titleBucket, ok := titleRec.Bucket()
		if !ok {
			continue
		}
		if titleBucket != catBucket {
			p.errorf("%s: category %q is bucket %d but title %q is bucket %d",
				r.ref, r.rec.Magnitude, catBucket, r.rec.Title, titleBucket)
		}
	}
	return p
}

func hasMagnitudeCategory(raw domain.RawEntry) bool {
	for _, c := range raw.Categories {
		if c.Label == domain.LabelMagnitude {
			return true
		}
	}
	return false
}
