// Package sequencer turns a timer definition into the ordered list of
// announcements and waits a run consists of. It never touches the clock.
package sequencer

import (
	"iter"
	"slices"

	"interval_timer"
)

// LeadInSeconds is the buffer between a step's start announcement and its timing.
const LeadInSeconds = 5

// Events yields the schedule for t lazily, in playback order.
func Events(t interval_timer.Timer) iter.Seq[Event] {
	steps := t.Snapshot().Steps
	return func(yield func(Event) bool) {
		for i, step := range steps {
			if !emitStep(i, step, yield) {
				return
			}
		}
		yield(Event{Kind: AnnounceComplete, StepIndex: len(steps)})
	}
}

// emitStep yields the events of a single step; false means the consumer stopped.
func emitStep(idx int, step interval_timer.TimerStep, yield func(Event) bool) bool {
	base := Event{StepIndex: idx, Step: step.Name}

	if !yield(with(base, AnnounceStepStart, 0, 0)) {
		return false
	}
	if !yield(with(base, LeadIn, 0, LeadInSeconds)) {
		return false
	}

	n := step.EffectiveIterations()
	duration := step.Duration.TotalSeconds()
	gap := step.IterationGap.TotalSeconds()

	for i := 0; i < n; i++ {
		iteration := 0
		if step.Repeat && n > 1 {
			iteration = i + 1
			if !yield(with(base, AnnounceIteration, iteration, 0)) {
				return false
			}
		}
		if duration > 0 {
			if !yield(with(base, RunDuration, iteration, duration)) {
				return false
			}
		}
		if i < n-1 && step.HasGap() {
			if !yield(with(base, AnnounceRest, iteration, 0)) {
				return false
			}
			if !yield(with(base, RunGap, iteration, gap)) {
				return false
			}
		}
	}

	return yield(with(base, AnnounceStepEnd, 0, 0))
}

func with(base Event, kind Kind, iteration, seconds int) Event {
	base.Kind = kind
	base.Iteration = iteration
	base.Seconds = seconds
	return base
}

// Schedule returns the complete event list for t.
func Schedule(t interval_timer.Timer) []Event {
	return slices.Collect(Events(t))
}

// PlannedSeconds is the sum of every wait in the schedule of t.
func PlannedSeconds(t interval_timer.Timer) int {
	total := 0
	for ev := range Events(t) {
		total += ev.Seconds
	}
	return total
}
