package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
	"github.com/clinicdesk/clinic-scheduling/internal/timeops"
)

func testSchedule(t *testing.T) *clinic.Schedule {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return &clinic.Schedule{
		WeeklyHours: map[time.Weekday][]timeops.TimeOfDay{
			time.Monday: {
				{Hour: 8, Minute: 0},
				{Hour: 8, Minute: 30},
				{Hour: 9, Minute: 0},
			},
			time.Wednesday: {
				{Hour: 10, Minute: 0},
				{Hour: 10, Minute: 30},
				{Hour: 11, Minute: 0},
			},
		},
		ClosedDates: map[timeops.Date]struct{}{
			{Year: 2025, Month: time.March, Day: 12}: {}, // a Wednesday holiday
		},
		ConsultationMinutes: 30,
		Location:            loc,
	}
}

// 2025-03-02 is a Sunday; the following Monday is 2025-03-03.
func sundayNow(sched *clinic.Schedule) time.Time {
	return time.Date(2025, time.March, 2, 9, 0, 0, 0, sched.Location)
}

func TestIsBookableAccepts(t *testing.T) {
	sched := testSchedule(t)
	now := sundayNow(sched)

	candidate := time.Date(2025, time.March, 3, 8, 30, 0, 0, sched.Location)
	ok, reason := IsBookable(candidate, sched, now)
	assert.True(t, ok)
	assert.Equal(t, ReasonNone, reason)
}

func TestIsBookableRejectionOrder(t *testing.T) {
	sched := testSchedule(t)
	now := sundayNow(sched)

	tests := []struct {
		name      string
		candidate time.Time
		sched     func() *clinic.Schedule
		want      Reason
	}{
		{
			name:      "past instant",
			candidate: now.Add(-time.Hour),
			want:      ReasonTooSoonOrPast,
		},
		{
			name:      "exactly now",
			candidate: now,
			want:      ReasonTooSoonOrPast,
		},
		{
			name:      "inside 48h notice window",
			candidate: time.Date(2025, time.March, 3, 8, 0, 0, 0, sched.Location),
			sched: func() *clinic.Schedule {
				s := testSchedule(t)
				s.MinAdvanceNotice = 48 * time.Hour
				return s
			},
			want: ReasonTooSoonOrPast,
		},
		{
			name:      "declared holiday beats weekday hours",
			candidate: time.Date(2025, time.March, 12, 10, 0, 0, 0, sched.Location),
			want:      ReasonClinicClosedDate,
		},
		{
			name:      "sunday is closed all day",
			candidate: time.Date(2025, time.March, 9, 10, 0, 0, 0, sched.Location),
			want:      ReasonClinicClosedWeekday,
		},
		{
			name:      "open weekday but off-menu time",
			candidate: time.Date(2025, time.March, 3, 8, 15, 0, 0, sched.Location),
			want:      ReasonNotABookableTime,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sched
			if tt.sched != nil {
				s = tt.sched()
			}
			ok, reason := IsBookable(tt.candidate, s, now)
			assert.False(t, ok)
			assert.Equal(t, tt.want, reason)
		})
	}
}

func TestIsBookableNormalizesForeignZones(t *testing.T) {
	sched := testSchedule(t)
	now := sundayNow(sched)

	// Monday 08:00 clinic-local expressed in UTC (-03:00 offset).
	candidate := time.Date(2025, time.March, 3, 11, 0, 0, 0, time.UTC)
	ok, reason := IsBookable(candidate, sched, now)
	assert.True(t, ok)
	assert.Equal(t, ReasonNone, reason)
}

func TestIsBookableShortNoticeWindow(t *testing.T) {
	sched := testSchedule(t)
	sched.MinAdvanceNotice = 48 * time.Hour

	// Candidate ten minutes out on an otherwise valid Wednesday slot.
	now := time.Date(2025, time.March, 5, 10, 20, 0, 0, sched.Location)
	candidate := time.Date(2025, time.March, 5, 10, 30, 0, 0, sched.Location)

	ok, reason := IsBookable(candidate, sched, now)
	assert.False(t, ok)
	assert.Equal(t, ReasonTooSoonOrPast, reason)
}
