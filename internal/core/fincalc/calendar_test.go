package fincalc_test

import (
	"testing"
	"time"

	"github.com/cdisim/cdi_sim_app/internal/core/fincalc"
	"github.com/stretchr/testify/assert"
)

func TestIsBusinessDay(t *testing.T) {
	// 2026-03-09 is a Monday.
	monday := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		assert.True(t, fincalc.IsBusinessDay(monday.AddDate(0, 0, i)), "weekday %d", i)
	}
	assert.False(t, fincalc.IsBusinessDay(monday.AddDate(0, 0, 5))) // Saturday
	assert.False(t, fincalc.IsBusinessDay(monday.AddDate(0, 0, 6))) // Sunday
}

func TestWeekendSeconds_FullWeekendGap(t *testing.T) {
	// Friday 23:59:50 → Monday 00:00:10 spans the whole weekend.
	from := time.Date(2026, 3, 6, 23, 59, 50, 0, time.UTC) // Friday
	to := time.Date(2026, 3, 9, 0, 0, 10, 0, time.UTC)     // Monday

	got := fincalc.WeekendSeconds(from, to, 10)

	// Everything except the single Friday tick and the single Monday tick.
	total := int64(to.Sub(from) / time.Second)
	assert.Equal(t, total-20, got)
}

func TestWeekendSeconds_NoWeekendInSpan(t *testing.T) {
	from := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) // Tuesday
	to := from.Add(6 * time.Hour)
	assert.Zero(t, fincalc.WeekendSeconds(from, to, 10))
}

func TestWeekendSeconds_EntirelyWeekend(t *testing.T) {
	from := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC) // Saturday
	to := from.Add(2 * time.Hour)
	assert.Equal(t, int64(2*3600), fincalc.WeekendSeconds(from, to, 10))
}

func TestWeekendSeconds_EmptyOrInvertedSpan(t *testing.T) {
	at := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	assert.Zero(t, fincalc.WeekendSeconds(at, at, 10))
	assert.Zero(t, fincalc.WeekendSeconds(at, at.Add(-time.Hour), 10))
}

func TestSameCalendarDay(t *testing.T) {
	a := time.Date(2026, 3, 9, 0, 0, 5, 0, time.UTC)
	b := time.Date(2026, 3, 9, 23, 59, 59, 0, time.UTC)
	assert.True(t, fincalc.SameCalendarDay(a, b))
	assert.False(t, fincalc.SameCalendarDay(a, b.Add(time.Second)))
}

func TestCyclesPerDay(t *testing.T) {
	assert.Equal(t, int64(8640), fincalc.CyclesPerDay(10))
	assert.Equal(t, int64(86400), fincalc.CyclesPerDay(1))
}
