package engine

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/tartampluch/go-sched/internal/config"
)

//go:embed data/periods.csv
var periodsCSV []byte

// PeriodTemplates holds one ordered period list per rotation ordinal.
type PeriodTemplates struct {
	rows [][]string
}

// DefaultPeriodTemplates parses the template table bundled into the binary.
func DefaultPeriodTemplates() (*PeriodTemplates, error) {
	return LoadPeriodTemplates(bytes.NewReader(periodsCSV))
}

// LoadPeriodTemplates reads the template table. Row n describes Day n+1 and
// every row has the same width; short days pad with trailing blank cells.
func LoadPeriodTemplates(r io.Reader) (*PeriodTemplates, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptTable, err)
	}

	t := &PeriodTemplates{}
	for _, rec := range records {
		t.rows = append(t.rows, trimTrailingBlank(rec))
	}
	for ord := 1; ord <= config.RotationLength; ord++ {
		if ord > len(t.rows) || len(t.rows[ord-1]) == 0 {
			return nil, fmt.Errorf("%w: Day%d: %s", ErrCorruptTable, ord, config.ErrMissingPeriods)
		}
	}
	return t, nil
}

// PeriodsFor returns a copy of the day's period labels. Non-instructional
// categories have no period structure.
func (t *PeriodTemplates) PeriodsFor(day RotationDay) ([]string, bool) {
	ord, ok := day.Ordinal()
	if !ok {
		return nil, false
	}
	row := t.rows[ord-1]
	out := make([]string, len(row))
	copy(out, row)
	return out, true
}

// trimTrailingBlank drops blank cells from the end only; interior blanks
// are free periods and stay in place.
func trimTrailingBlank(cells []string) []string {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return cells[:end]
}

// Period is one slot of a block's final period list.
type Period struct {
	Label string `json:"label"`
	// Emphasized marks a substituted slot.
	Emphasized bool `json:"emphasized,omitempty"`
	// Blank marks a slot cleared by a change-the-day directive.
	Blank bool `json:"blank,omitempty"`
}

func periodsFromLabels(labels []string) []Period {
	out := make([]Period, len(labels))
	for i, l := range labels {
		out[i] = Period{Label: l}
	}
	return out
}

// HTML renders the slot for the schedule page.
func (p Period) HTML() string {
	switch {
	case p.Blank:
		return " "
	case p.Emphasized:
		return fmt.Sprintf(config.FormatEmphasis, html.EscapeString(p.Label))
	default:
		return html.EscapeString(p.Label)
	}
}

// MarshalJSON adds the rendered markup as "html" so page templates can
// drop it in as is.
func (p Period) MarshalJSON() ([]byte, error) {
	type plain Period
	return json.Marshal(struct {
		plain
		HTML string `json:"html"`
	}{plain(p), p.HTML()})
}

// String returns the plain label; blanked slots are empty.
func (p Period) String() string {
	if p.Blank {
		return ""
	}
	return p.Label
}
