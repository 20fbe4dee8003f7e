package engine

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tartampluch/go-sched/internal/config"
)

//go:embed data/calendar.csv
var calendarCSV []byte

// calendarRow is one validated line of the calendar table.
type calendarRow struct {
	key  string
	date int // civil yyyymmdd
	day  RotationDay
}

// Calendar is the indexed, read-only calendar table.
// It is immutable after loading and safe for concurrent use.
type Calendar struct {
	rows  []calendarRow
	index map[string]int
}

// DefaultCalendar parses the calendar table bundled into the binary.
func DefaultCalendar() (*Calendar, error) {
	return LoadCalendar(bytes.NewReader(calendarCSV))
}

// LoadCalendar reads "DD-MM-YYYY,code" rows in table order. Rows whose
// cells are all blank are skipped. A row without a date, without a code or
// with an unparseable date fails the whole load: the table is trusted
// build-time data and a gap would fabricate a schedule.
func LoadCalendar(r io.Reader) (*Calendar, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	cal := &Calendar{index: make(map[string]int)}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptTable, err)
		}
		line, _ := reader.FieldPos(0)

		if blankRecord(rec) {
			continue
		}
		key := strings.TrimSpace(rec[0])
		if key == "" {
			return nil, fmt.Errorf("%w: line %d: %s", ErrCorruptTable, line, config.ErrMissingDate)
		}
		if len(rec) < 2 || strings.TrimSpace(rec[1]) == "" {
			return nil, fmt.Errorf("%w: line %d (%s): %s", ErrCorruptTable, line, key, config.ErrMissingCode)
		}
		date, err := time.Parse(config.DateKeyLayout, key)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d (%s): %s", ErrCorruptTable, line, key, config.ErrBadRowDate)
		}

		// First occurrence wins for lookups; every row still counts for stats.
		if _, dup := cal.index[key]; !dup {
			cal.index[key] = len(cal.rows)
		}
		cal.rows = append(cal.rows, calendarRow{
			key:  key,
			date: civilDate(date),
			day:  ParseRotationCode(rec[1]),
		})
	}
	return cal, nil
}

// Classify returns the category of date; ok is false when the date is not in the table.
func (c *Calendar) Classify(date time.Time) (day RotationDay, ok bool) {
	i, ok := c.index[dateKey(date)]
	if !ok {
		return 0, false
	}
	return c.rows[i].day, true
}

// Len is the number of rows, weekends included.
func (c *Calendar) Len() int {
	return len(c.rows)
}

func blankRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
