package models

import (
	"slices"
	"time"
)

// Run log event types.
const (
	EventRunStarted   = "RUN_STARTED"
	EventRunCompleted = "RUN_COMPLETED"
	EventRunCancelled = "RUN_CANCELLED"
	EventRunFailed    = "RUN_FAILED"
	EventStepStarted  = "STEP_STARTED"
	EventStepFinished = "STEP_FINISHED"
	EventWarning      = "WARNING"
)

// EventTypes lists every run log event type.
var EventTypes = []string{
	EventRunStarted,
	EventStepStarted,
	EventStepFinished,
	EventRunCompleted,
	EventRunCancelled,
	EventRunFailed,
	EventWarning,
}

func IsEventType(s string) bool { return slices.Contains(EventTypes, s) }

// RunEvent is a single run log entry.
type RunEvent struct {
	EventID     string    `json:"event_id"`
	RunID       string    `json:"run_id,omitempty"`
	TimerID     string    `json:"timer_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
