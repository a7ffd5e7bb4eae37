// Package daterange filters timestamped items by an inclusive, day-level
// date range evaluated in a single configured time zone.
package daterange

import (
	"slices"
	"strings"
	"time"

	"finanzas-backend/internal/apperr"
)

const DateLayout = "2006-01-02"

// Range is inclusive on both ends at day granularity. A nil bound is open.
type Range struct {
	Start *time.Time
	End   *time.Time
	Loc   *time.Location
}

func New(start, end *time.Time, loc *time.Location) Range {
	return Range{Start: start, End: end, Loc: loc}
}

// Parse builds a range from "YYYY-MM-DD" strings; an empty string leaves
// that bound open.
func Parse(from, to string, loc *time.Location) (Range, error) {
	in := Range{Loc: loc}.location()
	start, err := parseDay("from", from, in)
	if err != nil {
		return Range{}, err
	}
	end, err := parseDay("to", to, in)
	if err != nil {
		return Range{}, err
	}
	return New(start, end, loc), nil
}

func parseDay(name, s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return nil, apperr.Validation("%s date %q is not YYYY-MM-DD", name, s)
	}
	return &d, nil
}

func (r Range) location() *time.Location {
	if r.Loc == nil {
		return time.UTC
	}
	return r.Loc
}

// Unbounded reports whether neither bound is set.
func (r Range) Unbounded() bool {
	return r.Start == nil && r.End == nil
}

// StartOfDay is 00:00:00.000 of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay is the last representable instant of t's day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Contains applies startOfDay(Start) <= ts <= endOfDay(End). When Start falls
// on a later day than End nothing is contained.
func (r Range) Contains(ts time.Time) bool {
	loc := r.location()
	if r.Start != nil && ts.Before(StartOfDay(*r.Start, loc)) {
		return false
	}
	if r.End != nil && ts.After(EndOfDay(*r.End, loc)) {
		return false
	}
	return true
}

// Filter keeps the items whose timestamp lies in r, preserving order. stamp
// returns false for items without a relevant timestamp (e.g. unsold
// products); those are dropped unless the range is unbounded.
func Filter[T any](items []T, r Range, stamp func(T) (time.Time, bool)) []T {
	if r.Unbounded() {
		return slices.Clone(items)
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		ts, ok := stamp(it)
		if ok && r.Contains(ts) {
			out = append(out, it)
		}
	}
	return out
}
