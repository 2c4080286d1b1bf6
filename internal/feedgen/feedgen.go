// Package feedgen writes Atom/GeoRSS earthquake feeds. It backs the genfeed
// command and builds fixtures for tests.
package feedgen

import (
	"encoding/xml"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/couchcryptid/quake-feed-search/internal/domain"
)

const (
	atomNS   = "http://www.w3.org/2005/Atom"
	georssNS = "http://www.georss.org/georss"
)

// Entry is one event to write.
type Entry struct {
	ID         string
	Title      string
	Updated    string
	Link       string
	Point      string
	Elevation  string
	Categories []domain.Category
}

type xmlFeed struct {
	XMLName  xml.Name   `xml:"feed"`
	NS       string     `xml:"xmlns,attr"`
	GeoRSSNS string     `xml:"xmlns:georss,attr"`
	Title    string     `xml:"title"`
	Updated  string     `xml:"updated"`
	ID       string     `xml:"id"`
	Entries  []xmlEntry `xml:"entry"`
}

type xmlEntry struct {
	ID         string        `xml:"id,omitempty"`
	Title      string        `xml:"title,omitempty"`
	Updated    string        `xml:"updated,omitempty"`
	Link       *xmlLink      `xml:"link,omitempty"`
	Point      string        `xml:"georss:point,omitempty"`
	Elevation  string        `xml:"georss:elev,omitempty"`
	Categories []xmlCategory `xml:"category"`
}

type xmlLink struct {
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
	Href string `xml:"href,attr"`
}

type xmlCategory struct {
	Label string `xml:"label,attr"`
	Term  string `xml:"term,attr"`
}

// Write renders a feed document. Empty entry fields are omitted, which lets
// tests produce entries with missing required elements.
func Write(w io.Writer, title string, updated time.Time, entries []Entry) error {
	doc := xmlFeed{
		NS:       atomNS,
		GeoRSSNS: georssNS,
		Title:    title,
		Updated:  updated.UTC().Format(time.RFC3339),
		ID:       "urn:quake-feed-search:" + updated.UTC().Format("20060102T150405Z"),
	}
	for _, e := range entries {
		xe := xmlEntry{
			ID:        e.ID,
			Title:     e.Title,
			Updated:   e.Updated,
			Point:     e.Point,
			Elevation: e.Elevation,
		}
		if e.Link != "" {
			xe.Link = &xmlLink{Rel: "alternate", Type: "text/html", Href: e.Link}
		}
		for _, c := range e.Categories {
			xe.Categories = append(xe.Categories, xmlCategory(c))
		}
		doc.Entries = append(doc.Entries, xe)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	return enc.Close()
}

var places = []struct{ city, place string }{
	{"10 km NE of Ridgecrest", "CA"},
	{"5 km S of Volcano", "Hawaii"},
	{"32 km W of Anchor Point", "Alaska"},
	{"Anytown", "Someplace"},
	{"12 km SSE of Pahala", "Hawaii"},
}

// Synthesize builds n plausible entries ending at end, spaced 17 minutes apart.
// The same seed, n and end always produce the same entries.
func Synthesize(n int, end time.Time, seed uint64) []Entry {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	entries := make([]Entry, 0, n)
	for i := range n {
		at := end.Add(-time.Duration(i) * 17 * time.Minute).UTC()
		mag := float64(rng.IntN(60)) / 10
		loc := places[rng.IntN(len(places))]
		id := fmt.Sprintf("sy%08d", rng.IntN(100_000_000))
		entries = append(entries, Entry{
			ID:        "urn:earthquake-usgs-gov:" + id,
			Title:     fmt.Sprintf("M %.1f - %s, %s", mag, loc.city, loc.place),
			Updated:   at.Format("2006-01-02T15:04:05.000Z"),
			Link:      "https://earthquake.usgs.gov/earthquakes/eventpage/" + id,
			Point:     fmt.Sprintf("%.4f %.4f", 19+rng.Float64()*45, -160+rng.Float64()*45),
			Elevation: fmt.Sprintf("%d", -rng.IntN(60000)),
			Categories: []domain.Category{
				{Label: domain.LabelAge, Term: ageTerm(end.Sub(at))},
				{Label: domain.LabelMagnitude, Term: fmt.Sprintf("Magnitude %d", int(mag))},
			},
		})
	}
	return entries
}

func ageTerm(d time.Duration) string {
	switch {
	case d < time.Hour:
		return "Past Hour"
	case d < 24*time.Hour:
		return "Past Day"
	default:
		return "Past Week"
	}
}
