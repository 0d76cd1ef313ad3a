package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

func TestOverlapsHalfOpen(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2025, time.March, 3, h, m, 0, 0, time.UTC)
	}
	booked := Interval{Start: at(10, 0), End: at(11, 0)}

	tests := []struct {
		name string
		slot Interval
		want bool
	}{
		{"same start", Interval{at(10, 0), at(11, 0)}, true},
		{"starts inside", Interval{at(10, 30), at(11, 30)}, true},
		{"ends inside", Interval{at(9, 30), at(10, 30)}, true},
		{"contains", Interval{at(9, 0), at(12, 0)}, true},
		{"back to back after", Interval{at(11, 0), at(12, 0)}, false},
		{"back to back before", Interval{at(9, 0), at(10, 0)}, false},
		{"disjoint", Interval{at(13, 0), at(14, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.slot.Overlaps(booked))
			assert.Equal(t, tt.want, booked.Overlaps(tt.slot))
		})
	}
}

func TestSlotsForDateEmptyOnClosedDate(t *testing.T) {
	sched := testSchedule(t)
	now := sundayNow(sched)

	holiday := timeops.Date{Year: 2025, Month: time.March, Day: 12}
	assert.Empty(t, SlotsForDate(holiday, sched, nil, sched.ConsultationMinutes, now))
}

func TestSlotsForDateRespectsAllowList(t *testing.T) {
	sched := testSchedule(t)
	now := sundayNow(sched)
	monday := timeops.Date{Year: 2025, Month: time.March, Day: 3}

	slots := SlotsForDate(monday, sched, nil, sched.ConsultationMinutes, now)
	require.Len(t, slots, 3)

	allowed := map[timeops.TimeOfDay]bool{}
	for _, tod := range sched.HoursFor(time.Monday) {
		allowed[tod] = true
	}
	for i, slot := range slots {
		assert.True(t, allowed[timeops.TimeOfDayOf(slot.In(sched.Location))], "slot %s off menu", slot)
		if i > 0 {
			assert.True(t, slots[i-1].Before(slot), "slots not chronological")
		}
	}
}

func TestSlotsForDateExcludesConflicts(t *testing.T) {
	sched := testSchedule(t)
	sched.WeeklyHours[time.Monday] = []timeops.TimeOfDay{
		{Hour: 10, Minute: 0},
		{Hour: 10, Minute: 30},
		{Hour: 11, Minute: 0},
	}
	now := sundayNow(sched)
	monday := timeops.Date{Year: 2025, Month: time.March, Day: 3}

	// One existing appointment, 10:00 for 60 minutes.
	start := time.Date(2025, time.March, 3, 10, 0, 0, 0, sched.Location)
	busy := []Interval{{Start: start, End: start.Add(60 * time.Minute)}}

	slots := SlotsForDate(monday, sched, busy, 30, now)
	require.Len(t, slots, 1)
	// 10:00 and 10:30 collide; 11:00 starts exactly when the booking ends
	// and is not a conflict.
	assert.Equal(t, "11:00", timeops.TimeOfDayOf(slots[0].In(sched.Location)).String())
}

func TestNextAvailableSlotsEndToEnd(t *testing.T) {
	sched := testSchedule(t)
	now := sundayNow(sched)

	var queried []string
	query := func(d timeops.Date) ([]Interval, error) {
		queried = append(queried, d.Compact())
		return nil, nil
	}

	slots, err := NextAvailableSlots(now, sched, 2, query, 14, now)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	assert.Equal(t, time.Date(2025, time.March, 3, 8, 0, 0, 0, sched.Location), slots[0])
	assert.Equal(t, time.Date(2025, time.March, 3, 8, 30, 0, 0, sched.Location), slots[1])

	// Closed weekdays are skipped without hitting the repository.
	assert.Equal(t, []string{"20250303"}, queried)
}

func TestNextAvailableSlotsAfterBooking(t *testing.T) {
	sched := testSchedule(t)
	now := sundayNow(sched)

	booked := time.Date(2025, time.March, 3, 8, 0, 0, 0, sched.Location)
	query := func(d timeops.Date) ([]Interval, error) {
		if d == (timeops.Date{Year: 2025, Month: time.March, Day: 3}) {
			return []Interval{{Start: booked, End: booked.Add(30 * time.Minute)}}, nil
		}
		return nil, nil
	}

	slots, err := NextAvailableSlots(now, sched, 2, query, 14, now)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, time.Date(2025, time.March, 3, 8, 30, 0, 0, sched.Location), slots[0])
	assert.Equal(t, time.Date(2025, time.March, 3, 9, 0, 0, 0, sched.Location), slots[1])
}

func TestNextAvailableSlotsSpansDays(t *testing.T) {
	sched := testSchedule(t)
	now := sundayNow(sched)

	slots, err := NextAvailableSlots(now, sched, 5, func(timeops.Date) ([]Interval, error) {
		return nil, nil
	}, 14, now)
	require.NoError(t, err)
	require.Len(t, slots, 5)

	// Three Monday slots, then Wednesday 2025-03-12 is a holiday, so the
	// scan lands on Monday 2025-03-10 for the remaining two.
	assert.Equal(t, time.Date(2025, time.March, 3, 9, 0, 0, 0, sched.Location), slots[2])
	assert.Equal(t, time.Date(2025, time.March, 10, 8, 0, 0, 0, sched.Location), slots[3])
	assert.Equal(t, time.Date(2025, time.March, 10, 8, 30, 0, 0, sched.Location), slots[4])
}

func TestNextAvailableSlotsShortFillIsNotAnError(t *testing.T) {
	sched := testSchedule(t)
	now := sundayNow(sched)

	slots, err := NextAvailableSlots(now, sched, 50, func(timeops.Date) ([]Interval, error) {
		return nil, nil
	}, 2, now)
	require.NoError(t, err)
	// Two-day window starting Sunday reaches only Monday's three slots.
	assert.Len(t, slots, 3)
}

func TestNextAvailableSlotsFailsClosedOnQueryError(t *testing.T) {
	sched := testSchedule(t)
	now := sundayNow(sched)

	boom := errors.New("connection reset")
	slots, err := NextAvailableSlots(now, sched, 2, func(timeops.Date) ([]Interval, error) {
		return nil, boom
	}, 14, now)

	require.ErrorIs(t, err, boom)
	assert.Nil(t, slots)
}

func TestNextAvailableSlotsSkipsSlotsBeforeAfter(t *testing.T) {
	sched := testSchedule(t)
	// Mid-Monday morning: 08:00 has passed, 08:30 is next.
	now := time.Date(2025, time.March, 3, 8, 10, 0, 0, sched.Location)

	slots, err := NextAvailableSlots(now, sched, 2, func(timeops.Date) ([]Interval, error) {
		return nil, nil
	}, 14, now)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, time.Date(2025, time.March, 3, 8, 30, 0, 0, sched.Location), slots[0])
	assert.Equal(t, time.Date(2025, time.March, 3, 9, 0, 0, 0, sched.Location), slots[1])
}

func TestNextAvailableSlotsZeroLimit(t *testing.T) {
	sched := testSchedule(t)
	now := sundayNow(sched)

	slots, err := NextAvailableSlots(now, sched, 0, func(timeops.Date) ([]Interval, error) {
		t.Fatal("query should not run for limit 0")
		return nil, nil
	}, 14, now)
	require.NoError(t, err)
	assert.Empty(t, slots)
}
