package query

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidCriterion marks user input that cannot form a valid query.
var ErrInvalidCriterion = errors.New("invalid criterion")

var (
	datePrefixRe = regexp.MustCompile(`^\d{4}(-\d{2}(-\d{2})?)?$`)
	timePrefixRe = regexp.MustCompile(`^\d{2}([:-]\d{2}([:-]\d{2})?)?$`)
)

// Params holds raw criterion strings as entered by the user. Empty fields are
// ignored; every non-empty field adds one predicate.
type Params struct {
	DateFrom  string
	DateTo    string
	TimeFrom  string
	TimeTo    string
	Date      string // prefix: YYYY, YYYY-MM or YYYY-MM-DD
	Time      string // prefix: HH, HH-MM or HH:MM
	DateTime  string // YYYY-MM-DD-HH-MM
	Magnitude string // e.g. 1.5, >2, <=3.0
	Bucket    string // e.g. >=1, <3, 2
	Place     string
}

// Build validates p and assembles the query. It never touches the filesystem,
// so invalid input is rejected before any feed file is read.
func Build(p Params) (Query, error) {
	var preds []Predicate

	if p.DateFrom != "" || p.DateTo != "" {
		dr, err := buildDateRange(p.DateFrom, p.DateTo)
		if err != nil {
			return Query{}, err
		}
		preds = append(preds, dr)
	}

	if p.TimeFrom != "" || p.TimeTo != "" {
		tr, err := buildTimeRange(p.TimeFrom, p.TimeTo)
		if err != nil {
			return Query{}, err
		}
		preds = append(preds, tr)
	}

	if p.Date != "" {
		dp, err := parseDatePrefix(p.Date)
		if err != nil {
			return Query{}, err
		}
		preds = append(preds, dp)
	}

	if p.Time != "" {
		tp, err := parseTimePrefix(p.Time)
		if err != nil {
			return Query{}, err
		}
		preds = append(preds, tp)
	}

	if p.DateTime != "" {
		dt, err := parseDateTimeToken(p.DateTime)
		if err != nil {
			return Query{}, err
		}
		preds = append(preds, dt)
	}

	if p.Magnitude != "" {
		cmp, err := ParseComparison(p.Magnitude)
		if err != nil {
			return Query{}, err
		}
		preds = append(preds, Magnitude{Comparison: cmp})
	}

	if p.Bucket != "" {
		set, ok := Buckets.Lookup(p.Bucket)
		if !ok {
			return Query{}, fmt.Errorf("%w: magnitude bucket %q (use an operator and a whole number 0-5, e.g. >=1)", ErrInvalidCriterion, p.Bucket)
		}
		preds = append(preds, MagnitudeBucket{Token: strings.TrimSpace(p.Bucket), Buckets: set})
	}

	if p.Place != "" {
		name := strings.TrimSpace(p.Place)
		if name == "" {
			return Query{}, fmt.Errorf("%w: place must not be blank", ErrInvalidCriterion)
		}
		preds = append(preds, Place{Name: name})
	}

	if len(preds) == 0 {
		return Query{}, fmt.Errorf("%w: no search criteria given", ErrInvalidCriterion)
	}
	return New(preds...), nil
}

func buildDateRange(fromStr, toStr string) (DateRange, error) {
	var dr DateRange
	if fromStr != "" {
		from, _, err := parseDateBound(fromStr)
		if err != nil {
			return DateRange{}, err
		}
		dr.From = &from
	}
	if toStr != "" {
		_, to, err := parseDateBound(toStr)
		if err != nil {
			return DateRange{}, err
		}
		dr.To = &to
	}
	if dr.From != nil && dr.To != nil && dr.From.After(*dr.To) {
		return DateRange{}, fmt.Errorf("%w: start date %s is after end date %s", ErrInvalidCriterion, fromStr, toStr)
	}
	dr.label = "date range " + orStar(fromStr) + " to " + orStar(toStr)
	return dr, nil
}

// parseDateBound parses YYYY, YYYY-MM or YYYY-MM-DD and returns the first and
// last day of the period it names.
func parseDateBound(s string) (time.Time, time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []struct {
		layout string
		years  int
		months int
		days   int
	}{
		{time.DateOnly, 0, 0, 1},
		{"2006-01", 0, 1, 0},
		{"2006", 1, 0, 0},
	} {
		start, err := time.Parse(layout.layout, s)
		if err != nil {
			continue
		}
		end := start.AddDate(layout.years, layout.months, layout.days).AddDate(0, 0, -1)
		return start, end, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: date %q (use YYYY, YYYY-MM or YYYY-MM-DD)", ErrInvalidCriterion, s)
}

func buildTimeRange(fromStr, toStr string) (TimeRange, error) {
	var tr TimeRange
	if fromStr != "" {
		from, _, err := parseTimeBound(fromStr)
		if err != nil {
			return TimeRange{}, err
		}
		tr.From = &from
	}
	if toStr != "" {
		_, to, err := parseTimeBound(toStr)
		if err != nil {
			return TimeRange{}, err
		}
		tr.To = &to
	}
	if tr.From != nil && tr.To != nil && *tr.From > *tr.To {
		return TimeRange{}, fmt.Errorf("%w: start time %s is after end time %s", ErrInvalidCriterion, fromStr, toStr)
	}
	tr.label = "time range " + orStar(fromStr) + " to " + orStar(toStr)
	return tr, nil
}

// parseTimeBound parses HH, HH:MM or HH:MM:SS ("-" also accepted) and returns
// the first and last second of the span it names, as offsets from midnight.
func parseTimeBound(s string) (time.Duration, time.Duration, error) {
	s = strings.TrimSpace(s)
	invalid := fmt.Errorf("%w: time %q (use HH, HH:MM or HH:MM:SS)", ErrInvalidCriterion, s)
	if !timePrefixRe.MatchString(s) {
		return 0, 0, invalid
	}

	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == '-' })

	var start time.Duration
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n > clockLimits[i] {
			return 0, 0, invalid
		}
		start += time.Duration(n) * clockUnits[i]
	}
	end := start + clockUnits[len(fields)-1] - time.Second
	return start, end, nil
}

func parseDatePrefix(s string) (DatePrefix, error) {
	s = strings.TrimSpace(s)
	if !datePrefixRe.MatchString(s) {
		return DatePrefix{}, fmt.Errorf("%w: date %q (use YYYY, YYYY-MM or YYYY-MM-DD)", ErrInvalidCriterion, s)
	}
	// Reject impossible months and days such as 2025-13 or 2025-02-30.
	if _, _, err := parseDateBound(s); err != nil {
		return DatePrefix{}, err
	}
	return DatePrefix{Prefix: s}, nil
}

func parseTimePrefix(s string) (TimePrefix, error) {
	s = strings.TrimSpace(s)
	if !timePrefixRe.MatchString(s) {
		return TimePrefix{}, fmt.Errorf("%w: time %q (use HH or HH-MM)", ErrInvalidCriterion, s)
	}
	if _, _, err := parseTimeBound(s); err != nil {
		return TimePrefix{}, fmt.Errorf("%w: time %q is out of range", ErrInvalidCriterion, s)
	}
	return TimePrefix{Prefix: strings.ReplaceAll(s, "-", ":")}, nil
}

// parseDateTimeToken splits "YYYY-MM-DD-HH-MM" into a 10-character date prefix
// and the remaining time prefix.
func parseDateTimeToken(s string) (DateTimeToken, error) {
	s = strings.TrimSpace(s)
	invalid := fmt.Errorf("%w: date and time %q (use YYYY-MM-DD-HH-MM)", ErrInvalidCriterion, s)
	if len(s) < 10 {
		return DateTimeToken{}, invalid
	}
	date, err := parseDatePrefix(s[:10])
	if err != nil || len(date.Prefix) != 10 {
		return DateTimeToken{}, invalid
	}

	rest := strings.TrimPrefix(s[10:], "-")
	if rest == "" {
		return DateTimeToken{Token: s, Date: date}, nil
	}
	clock, err := parseTimePrefix(rest)
	if err != nil {
		return DateTimeToken{}, invalid
	}
	return DateTimeToken{Token: s, Date: date, Time: clock}, nil
}

func orStar(s string) string {
	if s == "" {
		return "*"
	}
	return strings.TrimSpace(s)
}
