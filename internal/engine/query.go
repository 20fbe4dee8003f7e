package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/iter"
	"github.com/tartampluch/go-sched/internal/config"
)

// DaySummary is the narrow read-only view of a school day.
type DaySummary struct {
	Date     string   `json:"date"`
	Day      string   `json:"day"`
	Periods  []string `json:"classes"`
	Specials []string `json:"special"`
	Flagged  bool     `json:"is_online"`
}

// ParseDateArg accepts "now" or DD-MM-YYYY, interpreted in now's location.
func ParseDateArg(arg string, now time.Time) (time.Time, error) {
	arg = strings.TrimSpace(arg)
	if arg == config.DateArgNow {
		return now, nil
	}
	t, err := time.ParseInLocation(config.DateKeyLayout, arg, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, arg)
	}
	return t, nil
}

// Classify exposes the day classifier.
func (s *Synthesizer) Classify(date time.Time) (RotationDay, bool) {
	return s.Calendar.Classify(date)
}

// PeriodsFor exposes the period resolver.
func (s *Synthesizer) PeriodsFor(day RotationDay) ([]string, bool) {
	return s.Templates.PeriodsFor(day)
}

// SpecialsFor exposes the special resolver.
func (s *Synthesizer) SpecialsFor(date time.Time) []string {
	return s.Live.SpecialsFor(date)
}

// IsFlagged exposes the flag table membership check.
func (s *Synthesizer) IsFlagged(date time.Time) bool {
	return s.Live.IsFlagged(date)
}

// Stat aggregates the calendar relative to now.
func (s *Synthesizer) Stat(now time.Time) Stat {
	return s.Calendar.Stat(now)
}

// Lookup resolves a date argument to its school-day summary. Overrides are
// not applied; the periods are the template for the rotation day.
func (s *Synthesizer) Lookup(arg string, now time.Time) (DaySummary, error) {
	date, err := ParseDateArg(arg, now)
	if err != nil {
		return DaySummary{}, err
	}
	day, ok := s.Classify(date)
	if !ok {
		return DaySummary{}, fmt.Errorf("%w: %s", ErrNoDay, dateKey(date))
	}
	periods, ok := s.PeriodsFor(day)
	if !ok {
		return DaySummary{}, fmt.Errorf("%w: %s is %s", ErrNotSchoolDay, dateKey(date), day)
	}

	specials := s.SpecialsFor(date)
	if specials == nil {
		specials = []string{}
	}
	key, fallback, data := day.labelKey()
	return DaySummary{
		Date:     date.Format(config.DateDisplayLayout),
		Day:      s.text(key, data, fallback),
		Periods:  periods,
		Specials: specials,
		Flagged:  s.IsFlagged(date),
	}, nil
}

// Upcoming builds count blocks starting at now's date, titled Today, Tomorrow,
// and so on; blocks past the fourth are untitled. count is clamped to
// [DefaultUpcoming, MaxUpcoming]. Blocks are built in parallel, order kept.
func (s *Synthesizer) Upcoming(now time.Time, count int) []Block {
	count = max(config.DefaultUpcoming, min(count, config.MaxUpcoming))
	offsets := make([]int, count)
	for i := range offsets {
		offsets[i] = i
	}
	return iter.Map(offsets, func(offset *int) Block {
		return s.Generate(now.AddDate(0, 0, *offset), now, upcomingTitle(*offset))
	})
}

func upcomingTitle(offset int) string {
	switch offset {
	case 0:
		return config.TitleToday
	case 1:
		return config.TitleTomorrow
	case 2:
		return config.TitleAfterTomorrow
	case 3:
		return config.TitleAfterAfterTmrw
	default:
		return ""
	}
}

// ShowBanner reports whether the late-night banner is due (22:00 to 02:59).
func ShowBanner(now time.Time) bool {
	h := now.Hour()
	return h >= config.BannerStartHour || h <= config.BannerEndHour
}

// NextCount is the count the schedule page offers for "show more".
func NextCount(count int, requested bool) int {
	if !requested {
		return config.NextCountDefault
	}
	return count + config.NextCountStep
}
