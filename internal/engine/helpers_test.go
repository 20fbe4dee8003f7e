package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Mocks & Stubs
// -----------------------------------------------------------------------------

// MockRecorder captures engine events.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) BlockGenerated(outcome string)      { m.Called(outcome) }
func (m *MockRecorder) TableDegraded(table, reason string) { m.Called(table, reason) }
func (m *MockRecorder) OverrideRejected(reason string)     { m.Called(reason) }

// stubPicker always returns the same index.
type stubPicker int

func (p stubPicker) IntN(int) int { return int(p) }

// mapLocalizer translates from a fixed map.
type mapLocalizer map[string]string

func (l mapLocalizer) Localize(key string, _ map[string]any, fallback string) string {
	if v, ok := l[key]; ok {
		return v
	}
	return fallback
}

// -----------------------------------------------------------------------------
// Fixtures
// -----------------------------------------------------------------------------

const (
	testCalendarCSV = `01-09-2024,1
02-09-2024,9
03-09-2024,P
04-09-2024,W
05-09-2024,3
06-09-2024,X
07-09-2024,4
`
	testPeriodsCSV = `Math,Lunch,Science,,
Chant,English,Lunch,Instro,Drama
Chant,French,Lunch,History,Instro
Chant,Math,,Lunch,Art
Chant,Science,Lunch,Music,
Chant,Science,Lunch,Music,
Chant,Science,Lunch,Music,
Chant,Science,Lunch,Music,
Chant,Math,Lunch,,
`
	specialPath  = "data/special.csv"
	overridePath = "data/lookup.csv"
	flagPath     = "data/online.csv"
)

// at builds a local time on the given date.
func at(day, month, year, hour, minute int) time.Time {
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
}

func testCalendar(t *testing.T) *Calendar {
	t.Helper()
	cal, err := LoadCalendar(strings.NewReader(testCalendarCSV))
	require.NoError(t, err)
	return cal
}

func testTemplates(t *testing.T) *PeriodTemplates {
	t.Helper()
	tpl, err := LoadPeriodTemplates(strings.NewReader(testPeriodsCSV))
	require.NoError(t, err)
	return tpl
}

// testFs returns an in-memory filesystem holding the given runtime tables.
func testFs(t *testing.T, special, override, flag string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range map[string]string{
		specialPath:  special,
		overridePath: override,
		flagPath:     flag,
	} {
		if content == "" {
			continue
		}
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

// newTestSynth wires a synthesizer over the fixture tables. A nil recorder
// disables event recording.
func newTestSynth(t *testing.T, special, override string, rec Recorder) *Synthesizer {
	t.Helper()
	live := NewLiveTables(testFs(t, special, override, ""), specialPath, overridePath, flagPath)
	return NewSynthesizer(testCalendar(t), testTemplates(t), live, nil, stubPicker(0), rec)
}
