package fincalc

import "time"

// IsBusinessDay reports whether t falls on a weekday. The simulator runs no
// holiday calendar; only Saturdays and Sundays close the market.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// WeekendSeconds walks the span [from, to) in tick-sized steps and returns
// how many of those seconds fall on a non-business day. The tick-granular
// walk keeps the result consistent with cycle counting: a second is weekend
// iff the tick it belongs to started on a weekend.
func WeekendSeconds(from, to time.Time, tickSeconds int64) int64 {
	if !to.After(from) || tickSeconds <= 0 {
		return 0
	}
	step := time.Duration(tickSeconds) * time.Second
	var total int64
	for cursor := from; cursor.Before(to); cursor = cursor.Add(step) {
		if !IsBusinessDay(cursor) {
			total += tickSeconds
		}
	}
	return total
}

// SameCalendarDay reports whether a and b fall on the same calendar day,
// which decides whether the daily yield accumulator resets or keeps adding.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
