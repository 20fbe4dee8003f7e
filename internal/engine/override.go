package engine

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/tartampluch/go-sched/internal/config"
)

// OverrideRow is one override table entry for a date: a 1-based period
// position or the CTD token, followed by a label or CTD payload.
type OverrideRow struct {
	Directive string
	Payload   string
}

// DayChange replaces the category's label and color for a whole day.
type DayChange struct {
	LabelKey string
	Label    string
	Color    string
}

// RejectedOverride is an override row that could not be applied.
type RejectedOverride struct {
	Row    OverrideRow
	Reason string
	Err    error
}

// Alteration is the result of merging override rows onto a period template.
type Alteration struct {
	Periods []Period
	// Change is nil unless a change-the-day directive applied; the last one wins.
	Change   *DayChange
	Rejected []RejectedOverride
}

var (
	errPositionRange = errors.New("override position out of range")
	errUnknownCTD    = errors.New("unrecognized change-the-day payload")
	errUnknownDir    = errors.New("unrecognized override directive")
)

var (
	productionDay = DayChange{
		LabelKey: config.TKeyLabelProduction,
		Label:    config.LabelProductionDay,
		Color:    config.ColorProductionDay,
	}
	productionShow = DayChange{
		LabelKey: config.TKeyLabelShow,
		Label:    config.LabelProductionShow,
		Color:    config.ColorProductionShow,
	}
)

// ApplyOverrides merges rows onto template in order. template is never modified.
//
// A numeric directive p substitutes slot p-1 with the payload and emphasizes it;
// positions outside the list are rejected. CTD/ProductionWeek blanks every slot
// whose template label is not exempt; CTD/ProductionWeekShow only relabels.
func ApplyOverrides(template []string, rows []OverrideRow) Alteration {
	alt := Alteration{Periods: periodsFromLabels(template)}

	for _, row := range rows {
		if pos, err := strconv.Atoi(row.Directive); err == nil {
			if pos < 1 || pos > len(alt.Periods) {
				alt.Rejected = append(alt.Rejected, RejectedOverride{
					Row:    row,
					Reason: ReasonOutOfRange,
					Err:    fmt.Errorf("%w: %d not in 1..%d", errPositionRange, pos, len(alt.Periods)),
				})
				continue
			}
			alt.Periods[pos-1] = Period{Label: row.Payload, Emphasized: true}
			continue
		}

		if row.Directive != config.DirectiveCTD {
			alt.Rejected = append(alt.Rejected, RejectedOverride{Row: row, Reason: ReasonUnsupported, Err: errUnknownDir})
			continue
		}

		switch row.Payload {
		case config.CTDProductionWeek:
			for i, label := range template {
				if !slices.Contains(config.ProductionExempt, label) {
					alt.Periods[i] = Period{Blank: true}
				}
			}
			change := productionDay
			alt.Change = &change
		case config.CTDProductionWeekShow:
			change := productionShow
			alt.Change = &change
		default:
			alt.Rejected = append(alt.Rejected, RejectedOverride{Row: row, Reason: ReasonUnsupported, Err: errUnknownCTD})
		}
	}
	return alt
}
