package service

import (
	"slices"
	"sync"
	"time"
)

type RunStatus string

const (
	StatusIdle    RunStatus = "IDLE"
	StatusRunning RunStatus = "RUNNING"
)

// Phase is what the running timer is doing right now.
type Phase string

const (
	PhaseAnnounce Phase = "ANNOUNCE"
	PhaseLeadIn   Phase = "LEAD_IN"
	PhaseWork     Phase = "WORK"
	PhaseRest     Phase = "REST"
)

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "COMPLETED"
	OutcomeCancelled Outcome = "CANCELLED"
	OutcomeFailed    Outcome = "FAILED"
)

// RunState is the observable status of the controller.
// Step fields are only meaningful while Status is RUNNING; Last* fields
// describe the previous run once the controller is back to IDLE.
type RunState struct {
	Status         RunStatus  `json:"status"`
	RunID          string     `json:"run_id,omitempty"`
	TimerID        string     `json:"timer_id,omitempty"`
	TimerName      string     `json:"timer_name,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	PlannedSeconds int        `json:"planned_seconds,omitempty"`
	StepIndex      int        `json:"step_index"`
	StepName       string     `json:"step_name,omitempty"`
	Iteration      int        `json:"iteration,omitempty"`
	Phase          Phase      `json:"phase,omitempty"`
	PhaseEndsAt    *time.Time `json:"phase_ends_at,omitempty"`
	Warnings       []string   `json:"warnings,omitempty"`
	LastOutcome    Outcome    `json:"last_outcome,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
}

func (s RunState) clone() RunState {
	s.Warnings = slices.Clone(s.Warnings)
	return s
}

// Run is a handle on a single started run.
type Run struct {
	ID      string
	TimerID string

	done chan struct{}

	mu       sync.Mutex
	err      error
	outcome  Outcome
	warnings []string
}

func newRun(id, timerID string) *Run {
	return &Run{ID: id, TimerID: timerID, done: make(chan struct{})}
}

// Done is closed once the run has released the wake lock and the controller is idle.
func (r *Run) Done() <-chan struct{} { return r.done }

// Err is the failure that ended the run. Nil for completed and cancelled runs.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Outcome is empty until the run has ended.
func (r *Run) Outcome() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome
}

// Warnings lists non-fatal problems hit during the run.
func (r *Run) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.warnings)
}

func (r *Run) addWarning(msg string) {
	r.mu.Lock()
	r.warnings = append(r.warnings, msg)
	r.mu.Unlock()
}

func (r *Run) end(outcome Outcome, err error) {
	r.mu.Lock()
	r.outcome = outcome
	r.err = err
	r.mu.Unlock()
}
