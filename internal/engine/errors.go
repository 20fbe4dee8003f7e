package engine

import (
	"errors"

	"github.com/tartampluch/go-sched/internal/config"
)

var (
	// ErrCorruptTable reports a bundled table that breaks its format guarantees.
	ErrCorruptTable = errors.New(config.ErrCorruptTable)

	// ErrBadDate is returned when a caller-supplied date cannot be parsed.
	ErrBadDate = errors.New(config.ErrBadDate)

	// ErrNoDay is returned when the date is absent from the calendar.
	ErrNoDay = errors.New(config.ErrNoDay)

	// ErrNotSchoolDay is returned when the classified day has no periods.
	ErrNotSchoolDay = errors.New(config.ErrNotSchoolDay)
)
