// Package timeframe turns symbolic time-frame tokens ("today", "last week",
// ...) into lower-bound filters on a timestamp column.
package timeframe

import (
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Frame is a recognised time-frame token.
type Frame string

const (
	Today     Frame = "today"
	LastWeek  Frame = "last week"
	LastMonth Frame = "last month"
	LastYear  Frame = "last year"
	AllTime   Frame = "all time"
)

// Parse normalises token. Anything unrecognised, including "", is AllTime.
func Parse(token string) Frame {
	switch f := Frame(strings.ToLower(strings.TrimSpace(token))); f {
	case Today, LastWeek, LastMonth, LastYear:
		return f
	default:
		return AllTime
	}
}

// Window is a resolved time frame: every instant at or after Lower.
// A zero Lower means the window is unbounded.
type Window struct {
	Frame Frame
	Lower time.Time
}

// Bounded reports whether the window constrains anything.
func (w Window) Bounded() bool {
	return !w.Lower.IsZero()
}

// Contains reports whether t falls inside the window (t >= Lower).
func (w Window) Contains(t time.Time) bool {
	return !w.Bounded() || !t.Before(w.Lower)
}

// Predicate returns the SQL filter for column. Unbounded windows yield a
// tautology so callers can always AND the result in.
func (w Window) Predicate(column string) sq.Sqlizer {
	if !w.Bounded() {
		return sq.Expr("1=1")
	}
	return sq.GtOrEq{column: w.Lower}
}

// Resolve computes the window for token relative to now, using now's location
// for calendar arithmetic.
//
// Month and year subtraction follow time.Date normalisation: 31 March minus
// one month is 3 March (31 February overflows), 29 February minus one year is
// 1 March.
func Resolve(token string, now time.Time) Window {
	frame := Parse(token)
	y, m, d := now.Date()
	loc := now.Location()

	var lower time.Time
	switch frame {
	case Today:
		lower = time.Date(y, m, d, 0, 0, 0, 0, loc)
	case LastWeek:
		lower = time.Date(y, m, d-7, 0, 0, 0, 0, loc)
	case LastMonth:
		lower = time.Date(y, m-1, d, 0, 0, 0, 0, loc)
	case LastYear:
		lower = time.Date(y-1, m, d, 0, 0, 0, 0, loc)
	}
	return Window{Frame: frame, Lower: lower}
}

// Resolver resolves tokens against a clock in a fixed location.
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

// NewResolver creates a Resolver using the wall clock. A nil loc means UTC.
func NewResolver(loc *time.Location) *Resolver {
	return NewResolverWithClock(loc, time.Now)
}

// NewResolverWithClock creates a Resolver reading the current time from now.
func NewResolverWithClock(loc *time.Location, now func() time.Time) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{loc: loc, now: now}
}

// Resolve resolves token against the resolver's clock and location.
func (r *Resolver) Resolve(token string) Window {
	return Resolve(token, r.now().In(r.loc))
}
