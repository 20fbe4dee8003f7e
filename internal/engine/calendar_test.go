package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCalendar(t *testing.T) {
	cal, err := DefaultCalendar()
	require.NoError(t, err)
	assert.Equal(t, 296, cal.Len())

	day, ok := cal.Classify(at(3, 9, 2024, 0, 0))
	require.True(t, ok)
	assert.Equal(t, Day1, day)

	day, ok = cal.Classify(at(23, 12, 2024, 0, 0))
	require.True(t, ok)
	assert.Equal(t, HolidayNonCounting, day)
}

func TestCalendar_Classify(t *testing.T) {
	cal := testCalendar(t)

	day, ok := cal.Classify(at(2, 9, 2024, 15, 0))
	assert.True(t, ok)
	assert.Equal(t, Day9, day)

	day, ok = cal.Classify(at(6, 9, 2024, 0, 0))
	assert.True(t, ok, "unrecognized codes are present but Unknown")
	assert.Equal(t, Unknown, day)

	_, ok = cal.Classify(at(8, 9, 2024, 0, 0))
	assert.False(t, ok)
}

func TestLoadCalendar_Rows(t *testing.T) {
	cal, err := LoadCalendar(strings.NewReader("01-09-2024,2\n\n , \n01-09-2024,5\n02-09-2024, W\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, cal.Len())

	day, _ := cal.Classify(at(1, 9, 2024, 0, 0))
	assert.Equal(t, Day2, day, "first duplicate wins")

	day, _ = cal.Classify(at(2, 9, 2024, 0, 0))
	assert.Equal(t, Weekend, day)
}

func TestLoadCalendar_Corrupt(t *testing.T) {
	tests := map[string]string{
		"missing code": "01-09-2024,1\n02-09-2024\n",
		"blank code":   "01-09-2024,\n",
		"bad date":     "2024-09-01,1\n",
		"missing date": "01-09-2024,1\n,5\n03-09-2024,2\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCalendar(strings.NewReader(data))
			assert.ErrorIs(t, err, ErrCorruptTable)
		})
	}
}

func TestLoadCalendar_ErrorLine(t *testing.T) {
	_, err := LoadCalendar(strings.NewReader("01-09-2024,1\n\n\n02-09-2024\n"))
	require.ErrorIs(t, err, ErrCorruptTable)
	assert.Contains(t, err.Error(), "line 4", "blank lines still count")
}

func TestLoadCalendar_ByteOrderMark(t *testing.T) {
	cal, err := LoadCalendar(strings.NewReader("\ufeff01-09-2024,3\n"))
	require.NoError(t, err)

	day, ok := cal.Classify(at(1, 9, 2024, 0, 0))
	require.True(t, ok)
	assert.Equal(t, Day3, day)
}

// -----------------------------------------------------------------------------
// Stat
// -----------------------------------------------------------------------------

const statCalendarCSV = `02-09-2024,C
03-09-2024,1
04-09-2024,P
05-09-2024,W
06-09-2024,2
07-09-2024,D
09-09-2024,P
`

func TestStat_Counts(t *testing.T) {
	cal, err := LoadCalendar(strings.NewReader(statCalendarCSV))
	require.NoError(t, err)

	s := cal.Stat(at(4, 9, 2024, 23, 59))

	assert.Equal(t, 6, s.TotalDays, "weekends are excluded")
	assert.Equal(t, 3, s.DaysPassed)
	assert.Equal(t, 3, s.DaysRemaining)
	assert.InDelta(t, 50.0, s.DaysRemainingPct, 0.001)
	assert.Equal(t, 3, s.PedTotal, "D holidays are not counted")
	assert.Equal(t, 2, s.PedPast)
	assert.Equal(t, 1, s.PedRemaining)
	assert.GreaterOrEqual(t, s.TimeMS, 0.0)
}

func TestStat_Boundaries(t *testing.T) {
	cal, err := LoadCalendar(strings.NewReader(statCalendarCSV))
	require.NoError(t, err)

	before := cal.Stat(at(1, 8, 2024, 0, 0))
	assert.Zero(t, before.DaysPassed)
	assert.Equal(t, before.TotalDays, before.DaysRemaining)
	assert.InDelta(t, 100.0, before.DaysRemainingPct, 0.001)
	assert.Equal(t, before.PedTotal, before.PedRemaining)

	after := cal.Stat(at(1, 1, 2025, 0, 0))
	assert.Equal(t, after.TotalDays, after.DaysPassed)
	assert.Zero(t, after.DaysRemaining)
	assert.Zero(t, after.PedRemaining)

	empty, err := LoadCalendar(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, empty.Stat(at(1, 1, 2025, 0, 0)).DaysRemainingPct)
}

func TestStat_SumsAndIdempotence(t *testing.T) {
	cal, err := DefaultCalendar()
	require.NoError(t, err)

	for _, now := range []struct{ d, m, y int }{{1, 1, 2024}, {15, 11, 2024}, {3, 3, 2025}, {1, 7, 2025}} {
		ref := at(now.d, now.m, now.y, 12, 0)
		s := cal.Stat(ref)
		assert.Equal(t, s.TotalDays, s.DaysPassed+s.DaysRemaining)
		assert.Equal(t, s.PedTotal, s.PedPast+s.PedRemaining)
		assert.LessOrEqual(t, s.PedRemaining, s.DaysRemaining)

		again := cal.Stat(ref)
		s.TimeMS, again.TimeMS = 0, 0
		assert.Equal(t, s, again)
	}
}
