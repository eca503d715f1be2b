// Package calendar computes the half-open reporting windows (today, this week,
// this month) and the bucket indexes used to chart spending inside them.
//
// All wall-clock arithmetic happens in the location of the reference instant,
// so callers control the timezone by choosing the location of now.
package calendar

import (
	"time"

	"pocketpal/internal/core"
)

const day = 24 * time.Hour

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) StartMillis() int64 { return w.Start.UnixMilli() }
func (w Window) EndMillis() int64   { return w.End.UnixMilli() }

func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

// Contains reports whether the epoch millisecond ts falls inside the window.
func (w Window) Contains(ts int64) bool {
	return ts >= w.StartMillis() && ts < w.EndMillis()
}

// Midnight returns 00:00:00.000 of t's calendar date in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayWindow spans local midnight of now's date plus 24h.
func DayWindow(now time.Time) Window {
	start := Midnight(now)
	return Window{Start: start, End: start.Add(day)}
}

// WeekWindow starts on the Monday of now's week and spans 7×24h.
func WeekWindow(now time.Time) Window {
	y, m, d := now.Date()
	start := time.Date(y, m, d-MondayOffset(now.Weekday()), 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: start.Add(7 * day)}
}

// MonthWindow starts at midnight of the 1st and ends 24h after midnight of
// the last day of the month.
func MonthWindow(now time.Time) Window {
	y, m, _ := now.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	lastDay := time.Date(y, m+1, 0, 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: lastDay.Add(day)}
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// MondayOffset converts a weekday into days since Monday (Mon=0..Sun=6).
func MondayOffset(wd time.Weekday) int {
	if wd == time.Sunday {
		return 6
	}
	return int(wd) - 1
}

// PreviousWeeks returns n consecutive week windows, oldest first, the last
// one being the current week.
func PreviousWeeks(now time.Time, n int) []Window {
	if n <= 0 {
		return nil
	}
	current := WeekWindow(now)
	weeks := make([]Window, n)
	for i := 0; i < n; i++ {
		back := n - 1 - i
		y, m, d := current.Start.Date()
		start := time.Date(y, m, d-7*back, 0, 0, 0, 0, now.Location())
		weeks[i] = Window{Start: start, End: start.Add(7 * day)}
	}
	return weeks
}

// PreviousMonthWindow returns the month window of the month before now.
func PreviousMonthWindow(now time.Time) Window {
	y, m, _ := now.Date()
	return MonthWindow(time.Date(y, m-1, 1, 12, 0, 0, 0, now.Location()))
}

// ResolveTimestamp picks the stored timestamp for a transaction dated date:
// the exact instant now when date is today, local midnight of date otherwise.
func ResolveTimestamp(date core.Date, now time.Time) int64 {
	ny, nm, nd := now.Date()
	if date.Year() == ny && date.Month() == int(nm) && date.Day() == nd {
		return now.UnixMilli()
	}
	return time.Date(date.Year(), time.Month(date.Month()), date.Day(), 0, 0, 0, 0, now.Location()).UnixMilli()
}
