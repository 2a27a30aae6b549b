// Package policy implements the confession posting window: on which weekdays
// new confessions are accepted, when the window next opens, and the
// week-of-year grouping key used for "confession of the week".
//
// All calculations are done in the policy's Location so that "Tuesday" means
// Tuesday on campus, not on the server.
package policy

import "time"

// DefaultDays are the posting weekdays used when none are configured.
var DefaultDays = []time.Weekday{time.Tuesday, time.Friday}

// Policy decides whether confessions may be posted at a given instant.
type Policy struct {
	// Days lists the weekdays on which posting is allowed.
	Days []time.Weekday
	// Enforce turns the weekday restriction on. When false every day is a
	// posting day, but NextPostingDate still reports the configured schedule.
	Enforce bool
	// Location is the campus time zone; nil means UTC.
	Location *time.Location
}

// Window is a snapshot of the posting window for display.
type Window struct {
	Open            bool      `json:"open"`
	Enforced        bool      `json:"enforced"`
	NextPostingDate time.Time `json:"next_posting_date"`
}

// New returns a Policy for days in loc. Empty days fall back to DefaultDays.
func New(days []time.Weekday, enforce bool, loc *time.Location) Policy {
	if len(days) == 0 {
		days = DefaultDays
	}
	return Policy{Days: days, Enforce: enforce, Location: loc}
}

func (p Policy) loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func (p Policy) days() []time.Weekday {
	if len(p.Days) == 0 {
		return DefaultDays
	}
	return p.Days
}

func (p Policy) allowed(d time.Weekday) bool {
	for _, a := range p.days() {
		if a == d {
			return true
		}
	}
	return false
}

// IsPostingDay reports whether a confession may be submitted at now.
func (p Policy) IsPostingDay(now time.Time) bool {
	if !p.Enforce {
		return true
	}
	return p.allowed(now.In(p.loc()).Weekday())
}

// NextPostingDate returns local midnight of the nearest allowed weekday
// strictly after today. The result is always after now and depends only on
// now.
func (p Policy) NextPostingDate(now time.Time) time.Time {
	local := now.In(p.loc())
	y, m, d := local.Date()
	for i := 1; i <= 7; i++ {
		cand := time.Date(y, m, d+i, 0, 0, 0, 0, p.loc())
		if p.allowed(cand.Weekday()) {
			return cand
		}
	}
	// Unreachable: days() is never empty, so some weekday within 7 matches.
	return time.Date(y, m, d+7, 0, 0, 0, 0, p.loc())
}

// Window reports the posting window at now.
func (p Policy) Window(now time.Time) Window {
	return Window{
		Open:            p.IsPostingDay(now),
		Enforced:        p.Enforce,
		NextPostingDate: p.NextPostingDate(now),
	}
}

// Week returns the year and 1-based week number of t in the policy's
// location.
func (p Policy) Week(t time.Time) (year, week int) {
	local := t.In(p.loc())
	return local.Year(), WeekNumber(local)
}

// WeekNumber returns the Sunday-start week of the year containing t:
// ceil((days since Jan 1 + weekday of Jan 1 + 1) / 7), counted in whole days
// in t's own location. Jan 1 is always in week 1.
func WeekNumber(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	past := t.YearDay() - 1
	n := past + int(jan1.Weekday()) + 1
	return (n + 6) / 7
}
