package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-sched/internal/config"
)

// Status is the lifecycle of a block relative to the reference moment.
type Status int

// Block statuses, in lifecycle order.
const (
	StatusNotStarted Status = iota
	// StatusInProgress is also the pinned value for dates other than today.
	StatusInProgress
	StatusOver
)

// String returns the wire value: not_started, in_progress or over.
func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusOver:
		return "over"
	default:
		return "in_progress"
	}
}

// MarshalText encodes the status as its wire value.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the values produced by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for _, v := range []Status{StatusNotStarted, StatusInProgress, StatusOver} {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Block is the display record for one date. It is built fresh per call and
// never mutated afterwards.
type Block struct {
	Date     string       `json:"date"`
	Title    string       `json:"title"`
	Color    string       `json:"bgcolorcode"`
	Greeting string       `json:"greeting"`
	Day      *RotationDay `json:"day,omitempty"`
	DayLabel string       `json:"day_str"`
	Periods  []Period     `json:"classes"`
	Specials []string     `json:"special"`
	Status   Status       `json:"status"`
}

// Synthesizer builds blocks from the static tables and the live tables.
type Synthesizer struct {
	Calendar  *Calendar
	Templates *PeriodTemplates
	Live      *LiveTables
	Greeter   *Greeter
	Localizer Localizer
	Recorder  Recorder
}

var defaultGreeter = &Greeter{}

// NewSynthesizer wires a synthesizer whose greeter shares the localizer.
// A nil picker draws from the global random source.
func NewSynthesizer(cal *Calendar, tpl *PeriodTemplates, live *LiveTables, loc Localizer, picker Picker, rec Recorder) *Synthesizer {
	if rec == nil {
		rec = NopRecorder{}
	}
	if live != nil {
		live.Recorder = rec
	}
	return &Synthesizer{
		Calendar:  cal,
		Templates: tpl,
		Live:      live,
		Greeter:   &Greeter{Picker: picker, Localizer: loc},
		Localizer: loc,
		Recorder:  rec,
	}
}

// Generate synthesizes the block for target's date as seen at now.
func (s *Synthesizer) Generate(target, now time.Time, title string) Block {
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyDate, dateKey(target),
	)

	// 1. Resolve
	day, known := s.Calendar.Classify(target)
	var template []string
	hasPeriods := false
	if known {
		template, hasPeriods = s.Templates.PeriodsFor(day)
	}
	specials := s.Live.SpecialsFor(target)

	b := Block{
		Date:     target.Format(config.DateDisplayLayout),
		Title:    title,
		Periods:  []Period{},
		Specials: []string{},
		Status:   StatusInProgress,
	}
	if known {
		b.Day = &day
	}
	if specials != nil {
		b.Specials = specials
	}

	// 2./3. Whole-block cancellation
	if len(specials) > 0 {
		switch specials[0] {
		case config.SpecialCancel, config.SpecialCancelLegacy:
			log.Debug(config.MsgBlockCancelled, config.LogKeyCode, specials[0])
			b.Color = config.ColorCancelled
			b.DayLabel = s.text(config.TKeyLabelCancelled, nil, config.LabelCancelled)
			b.Greeting = s.greeter().Greet(title)
			s.recorder().BlockGenerated(OutcomeCancelled)
			return b
		case config.SpecialCancelWeather, config.SpecialCancelSnowLegacy:
			log.Debug(config.MsgBlockCancelled, config.LogKeyCode, specials[0])
			b.Color = config.ColorSnowDay
			b.DayLabel = s.text(config.TKeyLabelSnowDay, nil, config.LabelSnowDay)
			b.Greeting = s.greeter().Fixed()
			s.recorder().BlockGenerated(OutcomeWeather)
			return b
		}
	}

	// 4. Lifecycle
	if known {
		b.Status = lifecycle(day, target, now)
	}

	// 5. Category defaults, then overrides
	b.DayLabel, b.Color = s.text(config.TKeyLabelNoDay, nil, config.LabelNoDay), config.ColorDefault
	if known {
		key, fallback, data := day.labelKey()
		b.DayLabel, b.Color = s.text(key, data, fallback), day.Color()
	}
	if hasPeriods {
		alt := ApplyOverrides(template, s.Live.OverridesFor(target))
		for _, r := range alt.Rejected {
			level, msg := slog.LevelDebug, config.MsgOverrideUnknown
			if r.Reason == ReasonOutOfRange {
				level, msg = slog.LevelWarn, config.MsgOverrideBadPos
			}
			log.Log(context.Background(), level, msg,
				config.LogKeyDirective, r.Row.Directive,
				config.LogKeyPayload, r.Row.Payload,
				config.LogKeyPeriods, len(template),
				config.LogKeyError, r.Err,
			)
			s.recorder().OverrideRejected(r.Reason)
		}
		b.Periods = alt.Periods
		if alt.Change != nil {
			b.DayLabel = s.text(alt.Change.LabelKey, nil, alt.Change.Label)
			b.Color = alt.Change.Color
		}
	}

	// 6. Greeting
	b.Greeting = s.greeter().Greet(title)

	if known {
		s.recorder().BlockGenerated(OutcomeScheduled)
	} else {
		s.recorder().BlockGenerated(OutcomeNoDay)
	}
	return b
}

// lifecycle evaluates the status only when target falls on now's date, using
// now's hour. Other dates, and days without classes, stay in progress.
func lifecycle(day RotationDay, target, now time.Time) Status {
	if !day.IsInstructional() || !sameDate(target, now) {
		return StatusInProgress
	}
	end := config.DayEndHour
	if day.IsHalfDay() {
		end = config.HalfDayEndHour
	}
	switch h := now.Hour(); {
	case h < config.DayStartHour:
		return StatusNotStarted
	case h >= end:
		return StatusOver
	default:
		return StatusInProgress
	}
}

func (s *Synthesizer) text(key string, data map[string]any, fallback string) string {
	return localize(s.Localizer, key, data, fallback)
}

func (s *Synthesizer) greeter() *Greeter {
	if s.Greeter == nil {
		return defaultGreeter
	}
	return s.Greeter
}

func (s *Synthesizer) recorder() Recorder {
	if s.Recorder == nil {
		return NopRecorder{}
	}
	return s.Recorder
}
