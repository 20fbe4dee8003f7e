package engine

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-sched/internal/config"
)

// Feed encodes the blocks of the next days as an iCalendar document: one
// all-day event per calendar day, weekends and unknown dates skipped.
func (s *Synthesizer) Feed(now time.Time, days int) ([]byte, error) {
	start := time.Now()
	cal := ical.NewCalendar()

	// Set standard iCalendar headers
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Stamped at the start of the day so unchanged tables encode identically.
	loc := now.Location()
	y, m, d := now.Date()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(time.Date(y, m, d, 0, 0, 0, 0, loc).UTC())

	for i := 0; i < days; i++ {
		y, m, d := now.AddDate(0, 0, i).Date()
		date := time.Date(y, m, d, 0, 0, 0, 0, loc)

		day, ok := s.Classify(date)
		if !ok || day == Weekend {
			continue
		}
		block := s.Generate(date, now, "")

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, date.Format(config.UIDDateLayout), config.ICalDomain))
		event.Props.SetText(config.PropSummary, block.DayLabel)
		if desc := describe(block); desc != "" {
			event.Props.SetText(config.PropDescription, desc)
		}

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(date)
		event.Props.Set(dtStartProp)
		event.Props.Set(dtStampProp)

		cal.Children = append(cal.Children, event.Component)
	}

	log := slog.With(config.LogKeyComponent, config.CompEngine)
	if len(cal.Children) == 0 {
		log.Debug(config.MsgFeedGenerated, config.LogKeyEvents, 0)
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	log.Debug(config.MsgFeedGenerated,
		config.LogKeyEvents, len(cal.Children),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// describe lists the non-blank periods, then the specials.
func describe(b Block) string {
	var parts []string
	for _, p := range b.Periods {
		if !p.Blank && p.Label != "" {
			parts = append(parts, p.Label)
		}
	}
	parts = append(parts, b.Specials...)
	return strings.Join(parts, config.FeedSeparator)
}
