package chore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bounceBackAPI/internal/types/isotime"
)

func completed(freq Frequency, at time.Time) Chore {
	return Chore{
		ID:              "c1",
		Frequency:       freq,
		IsCompleted:     true,
		LastCompleted:   isotime.New(at),
		CompletionCount: 4,
	}
}

func date(y int, m time.Month, d, h, min, s int) time.Time {
	return time.Date(y, m, d, h, min, s, 0, time.UTC)
}

func TestEvaluateReset_NotCompletedNeverResets(t *testing.T) {
	now := date(2024, 6, 1, 12, 0, 0)
	longAgo := date(2000, 1, 1, 0, 0, 0)

	for _, policy := range []Policy{PolicyCalendar, PolicyElapsed} {
		for _, freq := range []Frequency{FrequencyDay, FrequencyWeek, FrequencyMonth, FrequencyYear} {
			open := Chore{Frequency: freq, IsCompleted: false, LastCompleted: isotime.New(longAgo)}
			assert.False(t, EvaluateReset(open, now, policy).ShouldReset, "incomplete %s/%s", policy, freq)

			noTimestamp := Chore{Frequency: freq, IsCompleted: true}
			assert.False(t, EvaluateReset(noTimestamp, now, policy).ShouldReset, "missing lastCompleted %s/%s", policy, freq)
		}
	}
}

func TestEvaluateReset_Day(t *testing.T) {
	tests := []struct {
		name   string
		last   time.Time
		now    time.Time
		policy Policy
		want   bool
	}{
		{"calendar: late yesterday, early today", date(2024, 3, 9, 23, 59, 0), date(2024, 3, 10, 0, 1, 0), PolicyCalendar, true},
		{"calendar: early yesterday, late today", date(2024, 3, 9, 0, 0, 0), date(2024, 3, 10, 23, 59, 59), PolicyCalendar, true},
		{"calendar: same day", date(2024, 3, 10, 0, 0, 1), date(2024, 3, 10, 23, 59, 59), PolicyCalendar, false},
		{"calendar: same day of month, other month", date(2024, 2, 10, 8, 0, 0), date(2024, 3, 10, 8, 0, 0), PolicyCalendar, true},
		{"elapsed: crossed midnight under 24h", date(2024, 3, 9, 23, 59, 0), date(2024, 3, 10, 0, 1, 0), PolicyElapsed, false},
		{"elapsed: exactly 24h", date(2024, 3, 9, 8, 0, 0), date(2024, 3, 10, 8, 0, 0), PolicyElapsed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateReset(completed(FrequencyDay, tt.last), tt.now, tt.policy)
			assert.Equal(t, tt.want, got.ShouldReset)
		})
	}
}

func TestEvaluateReset_DayUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 2024-03-10 03:00 UTC is still 2024-03-09 in UTC-5.
	last := date(2024, 3, 9, 20, 0, 0)
	now := time.Date(2024, 3, 9, 22, 0, 0, 0, loc)

	assert.False(t, EvaluateReset(completed(FrequencyDay, last), now, PolicyCalendar).ShouldReset)
	assert.True(t, EvaluateReset(completed(FrequencyDay, last), now.Add(3*time.Hour), PolicyCalendar).ShouldReset)
}

func TestEvaluateReset_Week(t *testing.T) {
	now := date(2024, 5, 20, 12, 0, 0)

	for _, policy := range []Policy{PolicyCalendar, PolicyElapsed} {
		overdue := completed(FrequencyWeek, now.Add(-(7*24*time.Hour + time.Second)))
		assert.True(t, EvaluateReset(overdue, now, policy).ShouldReset)

		almost := completed(FrequencyWeek, now.Add(-(7*24*time.Hour - time.Second)))
		assert.False(t, EvaluateReset(almost, now, policy).ShouldReset)
	}
}

func TestEvaluateReset_MonthPoliciesDisagree(t *testing.T) {
	// Completed on the 1st and checked on the 31st of the same month.
	c := completed(FrequencyMonth, date(2024, 1, 1, 9, 0, 0))
	now := date(2024, 1, 31, 10, 0, 0)

	assert.False(t, EvaluateReset(c, now, PolicyCalendar).ShouldReset)
	assert.True(t, EvaluateReset(c, now, PolicyElapsed).ShouldReset)

	// Both agree once the month rolls over.
	nextMonth := date(2024, 2, 1, 0, 0, 0)
	assert.True(t, EvaluateReset(c, nextMonth, PolicyCalendar).ShouldReset)
	assert.True(t, EvaluateReset(c, nextMonth, PolicyElapsed).ShouldReset)

	// Same month, a year later: calendar sees the year change.
	sameMonthNextYear := date(2025, 1, 15, 0, 0, 0)
	assert.True(t, EvaluateReset(c, sameMonthNextYear, PolicyCalendar).ShouldReset)
	assert.True(t, EvaluateReset(c, sameMonthNextYear, PolicyElapsed).ShouldReset)
}

func TestEvaluateReset_Year(t *testing.T) {
	c := completed(FrequencyYear, date(2023, 5, 1, 0, 0, 0))

	assert.True(t, EvaluateReset(c, date(2024, 1, 1, 0, 0, 0), PolicyCalendar).ShouldReset)
	assert.False(t, EvaluateReset(c, date(2023, 12, 31, 0, 0, 0), PolicyCalendar).ShouldReset)
	assert.True(t, EvaluateReset(c, date(2024, 1, 1, 0, 0, 0), PolicyElapsed).ShouldReset)
}

func TestEvaluateReset_UnknownFrequency(t *testing.T) {
	c := completed(Frequency("fortnight"), date(2020, 1, 1, 0, 0, 0))
	assert.False(t, EvaluateReset(c, date(2024, 1, 1, 0, 0, 0), PolicyCalendar).ShouldReset)
}

func TestReset_PreservesCompletionCount(t *testing.T) {
	c := completed(FrequencyDay, date(2024, 1, 1, 0, 0, 0))
	c.Reset()

	assert.False(t, c.IsCompleted)
	assert.False(t, c.LastCompleted.Valid())
	assert.Equal(t, 4, c.CompletionCount)
	assert.NotContains(t, ResetFields(), "completionCount")
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("elapsed")
	require.NoError(t, err)
	assert.Equal(t, PolicyElapsed, p)

	_, err = ParsePolicy("hourly")
	assert.Error(t, err)
}
