package engine

import (
	"fmt"
	"strings"

	"github.com/tartampluch/go-sched/internal/config"
)

// RotationDay is the schedule category of a calendar date.
type RotationDay int

// Rotation categories: the nine instructional days, then the non-instructional ones.
const (
	Day1 RotationDay = iota
	Day2
	Day3
	Day4
	Day5
	Day6
	Day7
	Day8
	Day9
	Ped
	Holiday
	// HolidayNonCounting is a holiday left out of ped/holiday totals.
	HolidayNonCounting
	Weekend
	// Unknown marks a calendar row whose code is not recognized.
	Unknown
)

var dayNames = [...]string{
	Day1:               "Day1",
	Day2:               "Day2",
	Day3:               "Day3",
	Day4:               "Day4",
	Day5:               "Day5",
	Day6:               "Day6",
	Day7:               "Day7",
	Day8:               "Day8",
	Day9:               "Day9",
	Ped:                "Ped",
	Holiday:            "Holiday",
	HolidayNonCounting: "HolidayNonCounting",
	Weekend:            "Weekend",
	Unknown:            "Unknown",
}

var dayColors = [...]string{
	Day1:               "#ad253e",
	Day2:               "#6a4823",
	Day3:               "#296a33",
	Day4:               "#2f6a5f",
	Day5:               "#29556a",
	Day6:               "#3d386a",
	Day7:               "#6a3a62",
	Day8:               "#79141e",
	Day9:               "#56617a",
	Ped:                "#549ac6",
	Holiday:            "#c68252",
	HolidayNonCounting: "#c68252",
	Weekend:            "#2b3032",
	Unknown:            "#ff0000",
}

// ParseRotationCode maps a calendar code to its category.
// Any code outside the known set is Unknown.
func ParseRotationCode(code string) RotationDay {
	code = strings.TrimSpace(code)
	if len(code) == 1 && code[0] >= '1' && code[0] <= '9' {
		return Day1 + RotationDay(code[0]-'1')
	}
	switch code {
	case "P":
		return Ped
	case "C":
		return Holiday
	case "D":
		return HolidayNonCounting
	case "W":
		return Weekend
	default:
		return Unknown
	}
}

// String returns the symbolic name, e.g. "Day3" or "Ped".
func (d RotationDay) String() string {
	if d < Day1 || d > Unknown {
		return fmt.Sprintf("RotationDay(%d)", int(d))
	}
	return dayNames[d]
}

// MarshalText encodes the symbolic name, so JSON carries "Day3" rather than 2.
func (d RotationDay) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (d *RotationDay) UnmarshalText(text []byte) error {
	for i, name := range dayNames {
		if name == string(text) {
			*d = RotationDay(i)
			return nil
		}
	}
	return fmt.Errorf("unknown rotation day %q", text)
}

// Ordinal returns 1..9 for instructional days.
func (d RotationDay) Ordinal() (int, bool) {
	if !d.IsInstructional() {
		return 0, false
	}
	return int(d-Day1) + 1, true
}

// IsInstructional reports whether the day has a period structure.
func (d RotationDay) IsInstructional() bool {
	return d >= Day1 && d <= Day9
}

// IsHalfDay reports whether classes end at the early bell.
func (d RotationDay) IsHalfDay() bool {
	return d == Day9
}

// Color is the default block background for the category.
func (d RotationDay) Color() string {
	if d < Day1 || d > Unknown {
		return config.ColorDefault
	}
	return dayColors[d]
}

// countsAsPedOrHoliday matches the codes P and C; D holidays are not counted.
func (d RotationDay) countsAsPedOrHoliday() bool {
	return d == Ped || d == Holiday
}

// labelKey returns the translation key and English fallback for the day label.
func (d RotationDay) labelKey() (key string, fallback string, data map[string]any) {
	switch {
	case d.IsHalfDay():
		return config.TKeyLabelHalfDay, "Day 9 (half day!)", nil
	case d.IsInstructional():
		n, _ := d.Ordinal()
		return config.TKeyLabelDay, fmt.Sprintf("Day %d", n), map[string]any{"Number": n}
	case d == Ped:
		return config.TKeyLabelPed, "Ped Day", nil
	case d == Holiday, d == HolidayNonCounting:
		return config.TKeyLabelHoliday, "Holiday", nil
	case d == Weekend:
		return config.TKeyLabelWeekend, "Weekend", nil
	default:
		return config.TKeyLabelUnknown, "Unknown", nil
	}
}
