package policy

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 30, 0, 0, time.UTC)
}

func TestIsPostingDay(t *testing.T) {
	enforced := New(nil, true, time.UTC)
	open := New(nil, false, time.UTC)

	// 2025-03-04 is a Tuesday.
	cases := []struct {
		at   time.Time
		want bool
	}{
		{day(2025, 3, 3, 10), false}, // Mon
		{day(2025, 3, 4, 10), true},  // Tue
		{day(2025, 3, 5, 10), false}, // Wed
		{day(2025, 3, 7, 10), true},  // Fri
		{day(2025, 3, 9, 10), false}, // Sun
	}
	for _, tc := range cases {
		if got := enforced.IsPostingDay(tc.at); got != tc.want {
			t.Fatalf("IsPostingDay(%s) = %v; want %v", tc.at.Weekday(), got, tc.want)
		}
		if !open.IsPostingDay(tc.at) {
			t.Fatalf("unenforced policy must always be open (%s)", tc.at.Weekday())
		}
	}
}

func TestIsPostingDay_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	p := New(nil, true, loc)
	// Monday 22:00 UTC is already Tuesday 01:00 on campus.
	if !p.IsPostingDay(time.Date(2025, 3, 3, 22, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected Tuesday in campus time zone")
	}
}

func TestNextPostingDate_Schedule(t *testing.T) {
	p := New(nil, true, time.UTC)
	tue := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	fri := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	nextTue := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"sunday", day(2025, 3, 2, 12), tue},
		{"monday", day(2025, 3, 3, 12), tue},
		{"tuesday", day(2025, 3, 4, 12), fri},
		{"wednesday", day(2025, 3, 5, 12), fri},
		{"thursday", day(2025, 3, 6, 23), fri},
		{"friday", day(2025, 3, 7, 0), nextTue},
		{"saturday", day(2025, 3, 8, 12), nextTue},
	}
	for _, tc := range cases {
		got := p.NextPostingDate(tc.now)
		if !got.Equal(tc.want) {
			t.Fatalf("%s: NextPostingDate = %v; want %v", tc.name, got, tc.want)
		}
	}
}

func TestNextPostingDate_StrictlyFutureAndDeterministic(t *testing.T) {
	p := New([]time.Weekday{time.Wednesday}, true, time.UTC)
	start := time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 24*30; h += 5 {
		now := start.Add(time.Duration(h) * time.Hour)
		a := p.NextPostingDate(now)
		b := p.NextPostingDate(now)
		if !a.After(now) {
			t.Fatalf("NextPostingDate(%v) = %v; must be after now", now, a)
		}
		if !a.Equal(b) {
			t.Fatalf("NextPostingDate not deterministic: %v vs %v", a, b)
		}
		if a.Weekday() != time.Wednesday || a.Hour() != 0 || a.Minute() != 0 {
			t.Fatalf("expected midnight Wednesday, got %v", a)
		}
		if a.Sub(now) > 7*24*time.Hour {
			t.Fatalf("next date more than a week away: %v -> %v", now, a)
		}
	}
}

func TestWindow(t *testing.T) {
	p := New(nil, true, time.UTC)
	w := p.Window(day(2025, 3, 3, 9))
	if w.Open || !w.Enforced || w.NextPostingDate.Weekday() != time.Tuesday {
		t.Fatalf("unexpected window: %+v", w)
	}
}

func TestWeekNumber(t *testing.T) {
	cases := []struct {
		at   time.Time
		want int
	}{
		// 2023-01-01 is a Sunday: Jan 1..7 form week 1.
		{time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(2023, 1, 7, 23, 59, 0, 0, time.UTC), 1},
		{time.Date(2023, 1, 8, 0, 0, 0, 0, time.UTC), 2},
		// 2025-01-01 is a Wednesday: Jan 1..4 are week 1, Sunday Jan 5 starts week 2.
		{time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC), 1},
		{time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC), 2},
		{time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC), 10},
		{time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC), 53},
	}
	for _, tc := range cases {
		if got := WeekNumber(tc.at); got != tc.want {
			t.Fatalf("WeekNumber(%s) = %d; want %d", tc.at.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestWeek_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	p := New(nil, false, loc)
	// 2025-01-01 03:00 UTC is still 2024-12-31 on campus.
	y, _ := p.Week(time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC))
	if y != 2024 {
		t.Fatalf("expected campus year 2024, got %d", y)
	}
}
