package atomfeed

import (
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/couchcryptid/quake-feed-search/internal/domain"
	"github.com/mmcdole/gofeed/atom"
	ext "github.com/mmcdole/gofeed/extensions"
)

// GeoRSS extension element names, keyed under the "georss" prefix by gofeed.
const (
	georssPrefix = "georss"
	georssPoint  = "point"
	georssElev   = "elev"
)

// Source identifies one feed file within the reader's filesystem.
type Source struct {
	Name    string // name within the fs.FS
	Path    string // display path, directory joined with Name
	Size    int64
	ModTime time.Time
}

// DocumentParser turns one feed file into raw entries.
type DocumentParser interface {
	ParseDocument(fsys fs.FS, src Source) ([]domain.RawEntry, error)
}

// AtomParser implements DocumentParser with the gofeed Atom parser.
type AtomParser struct{}

// NewAtomParser creates an AtomParser.
func NewAtomParser() *AtomParser {
	return &AtomParser{}
}

func (p *AtomParser) ParseDocument(fsys fs.FS, src Source) ([]domain.RawEntry, error) {
	f, err := fsys.Open(src.Name)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	return parseEntries(f)
}

// parseEntries decodes an Atom document. A fresh atom.Parser is used per call
// because it keeps per-document state.
func parseEntries(r io.Reader) ([]domain.RawEntry, error) {
	ap := &atom.Parser{}
	feed, err := ap.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("decode atom: %w", err)
	}

	entries := make([]domain.RawEntry, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		if e == nil {
			continue
		}
		entries = append(entries, mapEntry(e))
	}
	return entries, nil
}

func mapEntry(e *atom.Entry) domain.RawEntry {
	raw := domain.RawEntry{
		Title:     e.Title,
		ID:        e.ID,
		Link:      entryLink(e.Links),
		Updated:   e.Updated,
		Point:     extensionValue(e.Extensions, georssPrefix, georssPoint),
		Elevation: extensionValue(e.Extensions, georssPrefix, georssElev),
	}
	for _, c := range e.Categories {
		if c == nil {
			continue
		}
		raw.Categories = append(raw.Categories, domain.Category{Label: c.Label, Term: c.Term})
	}
	return raw
}

// entryLink prefers the alternate link, falling back to the first one.
func entryLink(links []*atom.Link) string {
	var first string
	for _, l := range links {
		if l == nil {
			continue
		}
		if l.Rel == "" || l.Rel == "alternate" {
			return l.Href
		}
		if first == "" {
			first = l.Href
		}
	}
	return first
}

func extensionValue(exts ext.Extensions, prefix, name string) string {
	values := exts[prefix][name]
	if len(values) == 0 {
		return ""
	}
	return values[0].Value
}
