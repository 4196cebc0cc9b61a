package models

import "time"

// EventType tags a frame on the job event stream.
type EventType string

const (
	EventStatusTick    EventType = "status_tick"
	EventStepStart     EventType = "step_start"
	EventStepComplete  EventType = "step_complete"
	EventPhaseComplete EventType = "phase_complete"
	EventError         EventType = "error"
)

// TickLevel is the severity of a progress tick.
type TickLevel string

const (
	TickInfo    TickLevel = "info"
	TickWarning TickLevel = "warning"
	TickError   TickLevel = "error"
)

// StatusTick is one unit of progress telemetry pushed by the server while
// it computes a checkpoint. Seq is assigned monotonically on the server
// for diagnostic replay, but delivery order is best-effort: ticks are kept
// in arrival order and never reordered by Seq.
type StatusTick struct {
	JobID     string    `json:"job_id"`
	Event     EventType `json:"event"`
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"ts"`
	Phase     Phase     `json:"phase,omitempty"`
	Step      string    `json:"step,omitempty"`
	Scope     string    `json:"scope,omitempty"`
	Message   string    `json:"message"`
	Level     TickLevel `json:"level,omitempty"`
	Summary   any       `json:"summary,omitempty"`
}
