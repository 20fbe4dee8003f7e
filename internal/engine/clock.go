package engine

import (
	"time"

	"github.com/tartampluch/go-sched/internal/config"
)

// Clock abstracts time.Now() to allow deterministic testing.
// The serving layer uses it to pick the reference "now" passed to Generate and Stat.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant.
type FixedClock struct {
	At time.Time
}

// Now returns At.
func (c FixedClock) Now() time.Time {
	return c.At
}

// civilDate collapses t to an ordered yyyymmdd integer in t's own location.
func civilDate(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// sameDate reports whether a and b fall on the same civil date.
func sameDate(a, b time.Time) bool {
	return civilDate(a) == civilDate(b)
}

// dateKey formats t as the DD-MM-YYYY key used by every table.
func dateKey(t time.Time) string {
	return t.Format(config.DateKeyLayout)
}
