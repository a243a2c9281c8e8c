// Package datecalc turns user input into entry dates and computes the
// calendar figures shown in summaries.
package datecalc

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/Tiliavir/standup/internal/model"
)

// ParseDate resolves s relative to now. It accepts "today", "yesterday",
// "tomorrow", day offsets such as "-2" or "+1", and anything dateparse
// understands ("2024-01-05", "Jan 5 2024", "01/05/2024" ...). The result
// uses model.DateLayout.
func ParseDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "today":
		return Format(now), nil
	case "yesterday":
		return Format(now.AddDate(0, 0, -1)), nil
	case "tomorrow":
		return Format(now.AddDate(0, 0, 1)), nil
	}
	if s[0] == '-' || s[0] == '+' {
		if n, err := strconv.Atoi(s); err == nil {
			return Format(now.AddDate(0, 0, n)), nil
		}
	}
	t, err := dateparse.ParseIn(s, now.Location())
	if err != nil {
		return "", &model.ValidationError{Field: "date", Reason: fmt.Sprintf("cannot parse %q", s)}
	}
	return Format(t), nil
}

// Format renders t as an entry date.
func Format(t time.Time) string {
	return t.Format(model.DateLayout)
}

// Location loads the IANA zone name; empty means local time.
func Location(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := StartOfDay(t.AddDate(0, 0, -(wd - 1)))
	return monday, monday.AddDate(0, 0, 6)
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Streaks returns the current and longest runs of consecutive days among
// dates. The current run must end today or yesterday. Invalid dates are
// ignored.
func Streaks(dates []string, now time.Time) (current, longest int) {
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		t, err := time.ParseInLocation(model.DateLayout, d, now.Location())
		if err == nil {
			days = append(days, t)
		}
	}
	if len(days) == 0 {
		return 0, 0
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	days = slices.CompactFunc(days, func(a, b time.Time) bool { return a.Equal(b) })

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if sameDay(days[i-1].AddDate(0, 0, 1), days[i]) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	today := StartOfDay(now)
	last := days[len(days)-1]
	if !sameDay(last, today) && !sameDay(last, today.AddDate(0, 0, -1)) {
		return 0, longest
	}
	return run, longest
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
