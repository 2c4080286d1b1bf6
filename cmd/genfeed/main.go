// Command genfeed writes a synthetic Atom/GeoRSS earthquake feed for local
// testing. The same -seed, -count and -at always produce the same file.
//
// Usage:
//
//	go run ./cmd/genfeed \
//	  -out feeds/synthetic_day.atom \
//	  -count 40 \
//	  -at 2025-01-28T13:00:00Z
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/quake-feed-search/internal/feedgen"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("genfeed", flag.ContinueOnError)
	out := fs.String("out", "", "output path for the feed file")
	count := fs.Int("count", 25, "number of entries")
	seed := fs.Uint64("seed", 1, "random seed")
	at := fs.String("at", "", "feed update time (RFC 3339); defaults to now")
	title := fs.String("title", "USGS Magnitude 1.0+ Earthquakes, Past Day", "feed title")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *out == "" {
		fs.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *count < 0 {
		return fmt.Errorf("invalid -count %d: must not be negative", *count)
	}

	clock := clockwork.NewRealClock()
	if *at != "" {
		t, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("invalid -at: %w", err)
		}
		clock = clockwork.NewFakeClockAt(t)
	}
	end := clock.Now().UTC().Truncate(time.Second)

	entries := feedgen.Synthesize(*count, end, *seed)
	if err := writeFeed(*out, *title, end, entries); err != nil {
		return fmt.Errorf("writing feed: %w", err)
	}
	log.Printf("wrote %d entries to %s", len(entries), *out)
	return nil
}

func writeFeed(path, title string, updated time.Time, entries []feedgen.Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := feedgen.Write(w, title, updated, entries); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}
