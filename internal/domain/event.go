package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Bucket bounds for coarse magnitude classes.
const (
	MinBucket = 0
	MaxBucket = 5
)

// ErrMissingField marks an entry that lacks a required element.
var ErrMissingField = errors.New("missing required field")

// Category is an Atom <category> element's label/term attribute pair.
type Category struct {
	Label string
	Term  string
}

// RawEntry is one feed <entry> as read from the document, before extraction.
// Empty strings mean the element was absent or blank.
type RawEntry struct {
	Title      string
	ID         string
	Link       string
	Updated    string
	Point      string // georss:point
	Elevation  string // georss:elev
	Categories []Category
}

// Document is one parsed feed file.
type Document struct {
	Path    string
	Entries []RawEntry
}

// EventRecord is the normalized form of a feed entry used for filtering and reporting.
type EventRecord struct {
	Title       string    `json:"title"`
	ID          string    `json:"id"`
	Link        string    `json:"link,omitempty"`
	Timestamp   string    `json:"published"`
	Date        string    `json:"-"`
	Time        string    `json:"-"`
	At          time.Time `json:"-"`
	Coordinates string    `json:"coordinates"`
	Elevation   string    `json:"elevation"`
	Age         string    `json:"age,omitempty"`
	City        string    `json:"city,omitempty"`
	Place       string    `json:"place,omitempty"`

	// Magnitude is the display text: the category term when present,
	// otherwise the value parsed from the title.
	Magnitude      string   `json:"magnitude,omitempty"`
	MagnitudeValue *float64 `json:"magnitude_value,omitempty"`
}

// Bucket returns the integer magnitude class of the record, or false when the
// record has no magnitude or it falls outside MinBucket..MaxBucket.
func (r EventRecord) Bucket() (int, bool) {
	if r.MagnitudeValue == nil {
		return 0, false
	}
	b := int(math.Floor(*r.MagnitudeValue))
	if b < MinBucket || b > MaxBucket {
		return 0, false
	}
	return b, true
}

// Group holds the matching records of one source file, in document order.
type Group struct {
	Source  string
	Records []EventRecord
}

// MissingFieldError reports which required element an entry lacked.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// DocumentError reports a feed file that could not be read or parsed.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("parse feed %s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }
