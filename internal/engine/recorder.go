package engine

// Block outcomes reported to a Recorder.
const (
	OutcomeScheduled = "scheduled"
	OutcomeCancelled = "cancelled"
	OutcomeWeather   = "weather"
	OutcomeNoDay     = "no_day"
)

// Reasons a runtime table read or override is degraded.
const (
	ReasonUnreadable  = "unreadable"
	ReasonMalformed   = "malformed"
	ReasonOutOfRange  = "out_of_range"
	ReasonUnsupported = "unsupported"
)

// Recorder receives engine events for observability purposes.
type Recorder interface {
	BlockGenerated(outcome string)
	TableDegraded(table, reason string)
	OverrideRejected(reason string)
}

// NopRecorder implements Recorder with no-op methods.
type NopRecorder struct{}

// BlockGenerated does nothing.
func (NopRecorder) BlockGenerated(string) {}

// TableDegraded does nothing.
func (NopRecorder) TableDegraded(string, string) {}

// OverrideRejected does nothing.
func (NopRecorder) OverrideRejected(string) {}
