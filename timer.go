package interval_timer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimeSpan is a minutes/seconds duration as entered in the editor.
type TimeSpan struct {
	Minutes int `json:"minutes" yaml:"minutes"`
	Seconds int `json:"seconds" yaml:"seconds"`
}

// TotalSeconds returns the span in whole seconds.
func (t TimeSpan) TotalSeconds() int {
	return t.Minutes*60 + t.Seconds
}

// Clamp returns a copy with minutes >= 0 and seconds in [0,59].
func (t TimeSpan) Clamp() TimeSpan {
	if t.Minutes < 0 {
		t.Minutes = 0
	}
	if t.Seconds < 0 {
		t.Seconds = 0
	}
	if t.Seconds > 59 {
		t.Seconds = 59
	}
	return t
}

// Duration converts the span into a real-time delay.
func (t TimeSpan) Duration() time.Duration {
	return time.Duration(t.TotalSeconds()) * time.Second
}

func (t TimeSpan) String() string {
	return fmt.Sprintf("%d:%02d", t.Minutes, t.Seconds)
}

// TimerStep is one named timed unit of a workout.
type TimerStep struct {
	ID           string   `json:"id" yaml:"-"`
	Name         string   `json:"name" yaml:"name"`
	Duration     TimeSpan `json:"duration" yaml:"duration"`
	Repeat       bool     `json:"repeat" yaml:"repeat"`
	Iterations   int      `json:"iterations" yaml:"iterations"`
	IterationGap TimeSpan `json:"iteration_gap" yaml:"iteration_gap"`
}

// Editor defaults for a freshly added step.
const (
	defaultStepSeconds    = 10
	defaultStepIterations = 1
)

// NewStep returns a step with the editor defaults and a fresh ID.
func NewStep(name string) TimerStep {
	return TimerStep{
		ID:         uuid.NewString(),
		Name:       name,
		Duration:   TimeSpan{Seconds: defaultStepSeconds},
		Iterations: defaultStepIterations,
	}
}

// EffectiveIterations is the number of times the duration is played.
// Iterations is ignored unless Repeat is set.
func (s TimerStep) EffectiveIterations() int {
	if !s.Repeat || s.Iterations < 1 {
		return 1
	}
	return s.Iterations
}

// HasGap reports whether a rest gap is inserted between iterations.
func (s TimerStep) HasGap() bool {
	return s.Repeat && s.EffectiveIterations() > 1 && s.IterationGap.TotalSeconds() > 0
}

// Normalize clamps both spans and lifts Iterations to at least 1.
func (s TimerStep) Normalize() TimerStep {
	s.Duration = s.Duration.Clamp()
	s.IterationGap = s.IterationGap.Clamp()
	if s.Iterations < 1 {
		s.Iterations = 1
	}
	return s
}

// Timer is an ordered list of steps; Steps order is the playback order.
type Timer struct {
	ID    string      `json:"id" yaml:"-"`
	Name  string      `json:"name" yaml:"name"`
	Steps []TimerStep `json:"steps" yaml:"steps"`
}

// Snapshot returns a deep copy that is safe to read while the original is edited.
func (t Timer) Snapshot() Timer {
	cp := t
	if t.Steps != nil {
		cp.Steps = make([]TimerStep, len(t.Steps))
		copy(cp.Steps, t.Steps)
	}
	return cp
}

// StepIndex returns the position of the step with the given ID, or -1.
func (t Timer) StepIndex(stepID string) int {
	for i, s := range t.Steps {
		if s.ID == stepID {
			return i
		}
	}
	return -1
}
