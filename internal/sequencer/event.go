package sequencer

import (
	"strconv"
	"time"
)

// Kind identifies what the controller does with an Event.
type Kind int

const (
	AnnounceStepStart Kind = iota + 1
	LeadIn
	AnnounceIteration
	RunDuration
	AnnounceRest
	RunGap
	AnnounceStepEnd
	AnnounceComplete
)

var kindNames = map[Kind]string{
	AnnounceStepStart: "ANNOUNCE_STEP_START",
	LeadIn:            "LEAD_IN",
	AnnounceIteration: "ANNOUNCE_ITERATION",
	RunDuration:       "RUN_DURATION",
	AnnounceRest:      "ANNOUNCE_REST",
	RunGap:            "RUN_GAP",
	AnnounceStepEnd:   "ANNOUNCE_STEP_END",
	AnnounceComplete:  "ANNOUNCE_COMPLETE",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText lets Kind render as its name in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsAnnouncement reports whether the event is spoken rather than waited.
func (k Kind) IsAnnouncement() bool {
	switch k {
	case AnnounceStepStart, AnnounceIteration, AnnounceRest, AnnounceStepEnd, AnnounceComplete:
		return true
	}
	return false
}

// Event is one instruction of a run schedule.
//
// StepIndex and Step are set for every per-step event. Iteration is 1-based and
// set for AnnounceIteration, RunDuration and the rest events that follow it.
// Seconds is set for LeadIn, RunDuration and RunGap.
type Event struct {
	Kind      Kind   `json:"kind"`
	StepIndex int    `json:"step_index"`
	Step      string `json:"step,omitempty"`
	Iteration int    `json:"iteration,omitempty"`
	Seconds   int    `json:"seconds,omitempty"`
}

// Delay is the real-time wait for LeadIn, RunDuration and RunGap; zero otherwise.
func (e Event) Delay() time.Duration {
	switch e.Kind {
	case LeadIn, RunDuration, RunGap:
		return time.Duration(e.Seconds) * time.Second
	}
	return 0
}

// Text is the phrase spoken for announcement events.
func (e Event) Text() string {
	switch e.Kind {
	case AnnounceStepStart:
		return "starting " + e.Step
	case AnnounceIteration:
		return strconv.Itoa(e.Iteration)
	case AnnounceRest:
		return "rest"
	case AnnounceStepEnd:
		return "finished " + e.Step
	case AnnounceComplete:
		return "workout complete"
	}
	return ""
}
