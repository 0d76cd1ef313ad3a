package timeops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDisplayDateStrictFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Date
		ok    bool
	}{
		{"25/12/2025", Date{2025, time.December, 25}, true},
		{"01/02/2026", Date{2026, time.February, 1}, true},
		{"1/2/2026", Date{}, false},   // single-digit components rejected
		{"01/2/2026", Date{}, false},
		{"2026-02-01", Date{}, false}, // hyphenated form is not user input
		{"20260201", Date{}, false},   // compact form is not user input
		{"01/02/26", Date{}, false},
		{"", Date{}, false},
		{"31/02/2025", Date{}, false}, // not a real date
		{"29/02/2024", Date{2024, time.February, 29}, true},
		{"29/02/2025", Date{}, false},
		{"00/01/2025", Date{}, false},
		{"15/13/2025", Date{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDisplayDate(tt.input)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompactDisplayRoundTrip(t *testing.T) {
	d, err := ParseCompactDate("20251022")
	require.NoError(t, err)
	assert.Equal(t, "22/10/2025", d.Display())

	back, err := ParseDisplayDate(d.Display())
	require.NoError(t, err)
	assert.Equal(t, "20251022", back.Compact())
}

func TestParseCompactDateRejectsMalformed(t *testing.T) {
	for _, input := range []string{"2025102", "202510223", "22/10/2025", "2025AB22", "20251301"} {
		_, err := ParseCompactDate(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("08:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 8, Minute: 30}, tod)
	assert.Equal(t, "08:30", tod.String())
	assert.Equal(t, 510, tod.MinutesOfDay())

	for _, input := range []string{"8:30", "08:3", "24:00", "12:60", "0830", ""} {
		_, err := ParseTimeOfDay(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestCombineIsZoneAware(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	d := Date{2025, time.March, 10}
	instant := Combine(d, TimeOfDay{Hour: 14, Minute: 0}, loc)

	assert.Equal(t, loc, instant.Location())
	assert.Equal(t, "2025-03-10 14:00", instant.Format("2006-01-02 15:04"))

	_, offset := instant.Zone()
	assert.Equal(t, -3*60*60, offset)
}

func TestDateHelpers(t *testing.T) {
	d := Date{2025, time.March, 2} // a Sunday
	assert.Equal(t, time.Sunday, d.Weekday())
	assert.Equal(t, Date{2025, time.March, 3}, d.AddDays(1))
	assert.Equal(t, Date{2025, time.February, 28}, d.AddDays(-2))
	assert.True(t, d.Before(Date{2025, time.March, 3}))
	assert.False(t, d.Before(d))
}

func TestDateOfHonoursLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// 01:00 UTC is still the previous day in Sao Paulo.
	utc := time.Date(2025, time.July, 10, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, Date{2025, time.July, 10}, DateOf(utc))
	assert.Equal(t, Date{2025, time.July, 9}, DateOf(utc.In(loc)))
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, at, FixedClock{Instant: at}.Now())
}
