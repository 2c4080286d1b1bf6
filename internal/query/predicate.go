// Package query builds conjunctive filters over normalized event records.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-feed-search/internal/domain"
)

// Predicate decides whether a record belongs in the result set.
type Predicate interface {
	Match(rec domain.EventRecord) bool
	Describe() string
}

// Query is a conjunction of predicates.
type Query struct {
	predicates []Predicate
}

// New returns a query that matches records satisfying every predicate.
func New(predicates ...Predicate) Query {
	return Query{predicates: predicates}
}

// Match reports whether rec satisfies all predicates.
func (q Query) Match(rec domain.EventRecord) bool {
	for _, p := range q.predicates {
		if !p.Match(rec) {
			return false
		}
	}
	return true
}

// Describe joins the predicate descriptions for the report header.
func (q Query) Describe() string {
	parts := make([]string, 0, len(q.predicates))
	for _, p := range q.predicates {
		parts = append(parts, p.Describe())
	}
	return strings.Join(parts, " and ")
}

// Len returns the number of predicates.
func (q Query) Len() int { return len(q.predicates) }

// clockRe reads the leading HH:MM or HH:MM:SS of a timestamp's time portion,
// ignoring any fraction or zone suffix.
var clockRe = regexp.MustCompile(`^(\d{2}):(\d{2})(?::(\d{2}))?`)

// Upper limits and units of the hour, minute and second fields.
var (
	clockLimits = [3]int{23, 59, 59}
	clockUnits  = [3]time.Duration{time.Hour, time.Minute, time.Second}
)

// DateRange matches records whose calendar date, as written in the timestamp,
// lies in [From, To]. A nil bound is open on that side.
type DateRange struct {
	From, To *time.Time
	label    string
}

func (d DateRange) Match(rec domain.EventRecord) bool {
	day, err := time.Parse(time.DateOnly, rec.Date)
	if err != nil {
		return false
	}
	if d.From != nil && day.Before(*d.From) {
		return false
	}
	if d.To != nil && day.After(*d.To) {
		return false
	}
	return true
}

func (d DateRange) Describe() string {
	if d.label != "" {
		return d.label
	}
	return "date range " + formatBound(d.From, time.DateOnly) + " to " + formatBound(d.To, time.DateOnly)
}

// TimeRange matches records whose time of day, as written in the timestamp,
// lies in [From, To].
// Bounds are offsets from midnight; a nil bound is open on that side.
type TimeRange struct {
	From, To *time.Duration
	label    string
}

func (tr TimeRange) Match(rec domain.EventRecord) bool {
	tod, ok := timeOfDay(rec.Time)
	if !ok {
		return false
	}
	if tr.From != nil && tod < *tr.From {
		return false
	}
	if tr.To != nil && tod > *tr.To {
		return false
	}
	return true
}

func (tr TimeRange) Describe() string {
	if tr.label != "" {
		return tr.label
	}
	return "time range " + formatClock(tr.From) + " to " + formatClock(tr.To)
}

// DatePrefix matches records whose date string starts with Prefix.
type DatePrefix struct {
	Prefix string
}

func (p DatePrefix) Match(rec domain.EventRecord) bool {
	return strings.HasPrefix(rec.Date, p.Prefix)
}

func (p DatePrefix) Describe() string { return "date " + p.Prefix }

// TimePrefix matches records whose time-of-day string starts with Prefix.
type TimePrefix struct {
	Prefix string
}

func (p TimePrefix) Match(rec domain.EventRecord) bool {
	return strings.HasPrefix(rec.Time, p.Prefix)
}

func (p TimePrefix) Describe() string { return "time " + p.Prefix }

// DateTimeToken matches a combined "YYYY-MM-DD-HH-MM" token: the date part and
// the time part must both prefix-match.
type DateTimeToken struct {
	Token string
	Date  DatePrefix
	Time  TimePrefix
}

func (d DateTimeToken) Match(rec domain.EventRecord) bool {
	return d.Date.Match(rec) && d.Time.Match(rec)
}

func (d DateTimeToken) Describe() string { return "date and time " + d.Token }

// Magnitude compares the record's magnitude value against a threshold.
type Magnitude struct {
	Comparison Comparison
}

func (m Magnitude) Match(rec domain.EventRecord) bool {
	if rec.MagnitudeValue == nil {
		return false
	}
	return m.Comparison.Apply(*rec.MagnitudeValue)
}

func (m Magnitude) Describe() string { return "magnitude " + m.Comparison.String() }

// MagnitudeBucket matches records whose integer bucket is in the selected set.
type MagnitudeBucket struct {
	Token   string
	Buckets []int
}

func (m MagnitudeBucket) Match(rec domain.EventRecord) bool {
	b, ok := rec.Bucket()
	if !ok {
		return false
	}
	for _, want := range m.Buckets {
		if b == want {
			return true
		}
	}
	return false
}

func (m MagnitudeBucket) Describe() string { return "magnitude bucket " + m.Token }

// Place matches the title-derived place, case-insensitively and exactly.
type Place struct {
	Name string
}

func (p Place) Match(rec domain.EventRecord) bool {
	return strings.EqualFold(p.Name, rec.Place)
}

func (p Place) Describe() string { return "place " + strconv.Quote(p.Name) }

// timeOfDay returns the offset from midnight of a "HH:MM[:SS][.fff][zone]" string.
func timeOfDay(s string) (time.Duration, bool) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	var tod time.Duration
	for i, field := range m[1:] {
		if field == "" {
			break
		}
		n, _ := strconv.Atoi(field)
		if n > clockLimits[i] {
			return 0, false
		}
		tod += time.Duration(n) * clockUnits[i]
	}
	return tod, true
}

func formatBound(t *time.Time, layout string) string {
	if t == nil {
		return "*"
	}
	return t.Format(layout)
}

func formatClock(d *time.Duration) string {
	if d == nil {
		return "*"
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}
