package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Category labels recognized on feed entries.
const (
	LabelAge       = "Age"
	LabelMagnitude = "Magnitude"
)

var (
	// titleMagnitudeRe finds the magnitude prefix of a title, e.g. "M 5.2 - ..." -> 5.2.
	titleMagnitudeRe = regexp.MustCompile(`M\s*(\d+(?:\.\d+)?)`)

	// termNumberRe pulls the number out of a category term, e.g. "Magnitude 4" -> 4.
	termNumberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// ExtractOptions selects between the field variants older tooling surfaced.
type ExtractOptions struct {
	// TitleMagnitudeFallback parses the magnitude from the title when the
	// entry has no Magnitude category.
	TitleMagnitudeFallback bool

	// LinkAsIdentifier reports the entry link as the record ID, falling back
	// to the id element when the link is empty.
	LinkAsIdentifier bool
}

// DefaultExtractOptions enables the title fallback and reports the id element.
var DefaultExtractOptions = ExtractOptions{TitleMagnitudeFallback: true}

// Extract converts a raw entry into an EventRecord using DefaultExtractOptions.
func Extract(raw RawEntry) (EventRecord, error) {
	return ExtractWith(raw, DefaultExtractOptions)
}

// ExtractWith converts a raw entry into an EventRecord. It returns a
// *MissingFieldError when title, identifier, updated, point or elevation is absent.
func ExtractWith(raw RawEntry, opts ExtractOptions) (EventRecord, error) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return EventRecord{}, &MissingFieldError{Field: "title"}
	}

	id := pickIdentifier(raw, opts)
	if id == "" {
		return EventRecord{}, &MissingFieldError{Field: "id"}
	}

	updated := strings.TrimSpace(raw.Updated)
	if updated == "" {
		return EventRecord{}, &MissingFieldError{Field: "updated"}
	}

	point := strings.TrimSpace(raw.Point)
	if point == "" {
		return EventRecord{}, &MissingFieldError{Field: "point"}
	}

	elev := strings.TrimSpace(raw.Elevation)
	if elev == "" {
		return EventRecord{}, &MissingFieldError{Field: "elev"}
	}

	date, clock := splitTimestamp(updated)
	city, place := parseLocation(title)

	rec := EventRecord{
		Title:       title,
		ID:          id,
		Link:        strings.TrimSpace(raw.Link),
		Timestamp:   updated,
		Date:        date,
		Time:        clock,
		At:          parseTimestamp(updated),
		Coordinates: point,
		Elevation:   elev,
		City:        city,
		Place:       place,
	}

	age, magnitude := lastCategoryTerms(raw.Categories)
	rec.Age = age

	switch {
	case magnitude != "":
		rec.Magnitude = magnitude
		rec.MagnitudeValue = parseTermNumber(magnitude)
	case opts.TitleMagnitudeFallback:
		if v := parseTitleMagnitude(title); v != nil {
			rec.MagnitudeValue = v
			rec.Magnitude = strconv.FormatFloat(*v, 'f', -1, 64)
		}
	}

	return rec, nil
}

func pickIdentifier(raw RawEntry, opts ExtractOptions) string {
	id := strings.TrimSpace(raw.ID)
	link := strings.TrimSpace(raw.Link)
	if opts.LinkAsIdentifier && link != "" {
		return link
	}
	if id != "" {
		return id
	}
	return link
}

// lastCategoryTerms scans every category and keeps the last Age and Magnitude
// terms. Later duplicates overwrite earlier ones.
func lastCategoryTerms(categories []Category) (age, magnitude string) {
	for _, c := range categories {
		switch c.Label {
		case LabelAge:
			age = c.Term
		case LabelMagnitude:
			magnitude = c.Term
		}
	}
	return age, magnitude
}

// parseTitleMagnitude returns the first "M <number>" value in the title, or nil.
func parseTitleMagnitude(title string) *float64 {
	m := titleMagnitudeRe.FindStringSubmatch(title)
	if len(m) != 2 {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseTermNumber(term string) *float64 {
	s := termNumberRe.FindString(term)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseLocation splits "... - City, Place" into (city, place). Any other shape
// yields two empty strings.
func parseLocation(title string) (string, string) {
	segments := strings.Split(title, " - ")
	if len(segments) < 2 {
		return "", ""
	}
	parts := strings.Split(segments[len(segments)-1], ", ")
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

// splitTimestamp splits "2025-01-28T12:34:56.789Z" into ("2025-01-28", "12:34:56.789").
func splitTimestamp(ts string) (string, string) {
	date, clock, found := strings.Cut(ts, "T")
	if !found {
		return ts, ""
	}
	return date, strings.TrimSuffix(clock, "Z")
}

// parseTimestamp parses an RFC 3339 instant, returning the zero time when the
// value is malformed.
func parseTimestamp(ts string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
