package engine

import (
	"time"
)

// Stat aggregates the whole calendar relative to one reference date.
// Weekend rows are excluded from every count.
type Stat struct {
	TotalDays        int     `json:"days_total"`
	DaysPassed       int     `json:"days_passed"`
	DaysRemaining    int     `json:"days_rem"`
	DaysRemainingPct float64 `json:"days_rem_pct"`
	PedTotal         int     `json:"ped_total"`
	PedPast          int     `json:"ped_past"`
	PedRemaining     int     `json:"ped_rem"`
	TimeMS           float64 `json:"time_ms"`
}

// Stat scans the calendar once. Rows dated on or before now's civil date are
// passed; once a row lies past it, ped and holiday rows count as remaining.
func (c *Calendar) Stat(now time.Time) Stat {
	start := time.Now()
	ref := civilDate(now)

	var s Stat
	future := false
	for _, row := range c.rows {
		if row.day == Weekend {
			continue
		}
		s.TotalDays++
		if row.day.countsAsPedOrHoliday() {
			s.PedTotal++
		}

		if !future && row.date > ref {
			future = true
		}
		if !future {
			s.DaysPassed++
			continue
		}
		if row.day.countsAsPedOrHoliday() {
			s.PedRemaining++
		}
	}

	s.DaysRemaining = s.TotalDays - s.DaysPassed
	s.PedPast = s.PedTotal - s.PedRemaining
	if s.TotalDays > 0 {
		s.DaysRemainingPct = float64(s.DaysRemaining) / float64(s.TotalDays) * 100
	}
	s.TimeMS = float64(time.Since(start).Microseconds()) / 1000
	return s
}
