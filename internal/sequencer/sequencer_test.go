package sequencer

import (
	"reflect"
	"testing"
	"time"

	"interval_timer"
)

func kinds(events []Event) []Kind {
	out := make([]Kind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func count(events []Event, k Kind) int {
	n := 0
	for _, e := range events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

func TestSchedule_SingleStepNoRepeat(t *testing.T) {
	timer := interval_timer.Timer{Steps: []interval_timer.TimerStep{
		{Name: "Plank", Duration: interval_timer.TimeSpan{Seconds: 10}},
	}}

	want := []Event{
		{Kind: AnnounceStepStart, Step: "Plank"},
		{Kind: LeadIn, Step: "Plank", Seconds: 5},
		{Kind: RunDuration, Step: "Plank", Seconds: 10},
		{Kind: AnnounceStepEnd, Step: "Plank"},
		{Kind: AnnounceComplete, StepIndex: 1},
	}
	if got := Schedule(timer); !reflect.DeepEqual(got, want) {
		t.Fatalf("schedule mismatch\n got: %+v\nwant: %+v", got, want)
	}
}

func TestSchedule_RepeatWithGap(t *testing.T) {
	timer := interval_timer.Timer{Steps: []interval_timer.TimerStep{{
		Name:         "Sprint",
		Duration:     interval_timer.TimeSpan{Seconds: 20},
		Repeat:       true,
		Iterations:   2,
		IterationGap: interval_timer.TimeSpan{Seconds: 5},
	}}}

	want := []Event{
		{Kind: AnnounceStepStart, Step: "Sprint"},
		{Kind: LeadIn, Step: "Sprint", Seconds: 5},
		{Kind: AnnounceIteration, Step: "Sprint", Iteration: 1},
		{Kind: RunDuration, Step: "Sprint", Iteration: 1, Seconds: 20},
		{Kind: AnnounceRest, Step: "Sprint", Iteration: 1},
		{Kind: RunGap, Step: "Sprint", Iteration: 1, Seconds: 5},
		{Kind: AnnounceIteration, Step: "Sprint", Iteration: 2},
		{Kind: RunDuration, Step: "Sprint", Iteration: 2, Seconds: 20},
		{Kind: AnnounceStepEnd, Step: "Sprint"},
		{Kind: AnnounceComplete, StepIndex: 1},
	}
	if got := Schedule(timer); !reflect.DeepEqual(got, want) {
		t.Fatalf("schedule mismatch\n got: %+v\nwant: %+v", got, want)
	}
}

func TestSchedule_RepeatFalseIgnoresIterationsAndGap(t *testing.T) {
	timer := interval_timer.Timer{Steps: []interval_timer.TimerStep{{
		Name:         "Hold",
		Duration:     interval_timer.TimeSpan{Seconds: 30},
		Repeat:       false,
		Iterations:   7,
		IterationGap: interval_timer.TimeSpan{Seconds: 10},
	}}}

	got := Schedule(timer)
	if n := count(got, RunDuration); n != 1 {
		t.Fatalf("RunDuration count=%d, want 1", n)
	}
	if count(got, AnnounceIteration) != 0 || count(got, AnnounceRest) != 0 || count(got, RunGap) != 0 {
		t.Fatalf("unexpected repeat events: %v", kinds(got))
	}
}

func TestSchedule_ThreeIterationsTwoRests(t *testing.T) {
	timer := interval_timer.Timer{Steps: []interval_timer.TimerStep{{
		Name:         "Burpees",
		Duration:     interval_timer.TimeSpan{Seconds: 40},
		Repeat:       true,
		Iterations:   3,
		IterationGap: interval_timer.TimeSpan{Minutes: 1},
	}}}

	got := Schedule(timer)
	if n := count(got, AnnounceIteration); n != 3 {
		t.Fatalf("AnnounceIteration=%d, want 3", n)
	}
	if count(got, AnnounceRest) != 2 || count(got, RunGap) != 2 {
		t.Fatalf("want 2 rest/gap pairs, got %v", kinds(got))
	}
	// no rest after the final iteration
	tail := kinds(got[len(got)-3:])
	if !reflect.DeepEqual(tail, []Kind{RunDuration, AnnounceStepEnd, AnnounceComplete}) {
		t.Fatalf("unexpected tail %v", tail)
	}
	for _, e := range got {
		if e.Kind == RunGap && e.Seconds != 60 {
			t.Fatalf("gap seconds=%d, want 60", e.Seconds)
		}
	}
}

func TestSchedule_EdgeCases(t *testing.T) {
	cases := []struct {
		name string
		step interval_timer.TimerStep
		want []Kind
	}{
		{
			name: "zero_duration_skips_run",
			step: interval_timer.TimerStep{Name: "Prep"},
			want: []Kind{AnnounceStepStart, LeadIn, AnnounceStepEnd, AnnounceComplete},
		},
		{
			name: "repeat_single_iteration_has_no_count",
			step: interval_timer.TimerStep{Name: "x", Duration: interval_timer.TimeSpan{Seconds: 3}, Repeat: true, Iterations: 1, IterationGap: interval_timer.TimeSpan{Seconds: 2}},
			want: []Kind{AnnounceStepStart, LeadIn, RunDuration, AnnounceStepEnd, AnnounceComplete},
		},
		{
			name: "repeat_without_gap",
			step: interval_timer.TimerStep{Name: "x", Duration: interval_timer.TimeSpan{Seconds: 3}, Repeat: true, Iterations: 2},
			want: []Kind{AnnounceStepStart, LeadIn, AnnounceIteration, RunDuration, AnnounceIteration, RunDuration, AnnounceStepEnd, AnnounceComplete},
		},
		{
			name: "repeat_zero_duration_still_counts_and_rests",
			step: interval_timer.TimerStep{Name: "x", Repeat: true, Iterations: 2, IterationGap: interval_timer.TimeSpan{Seconds: 4}},
			want: []Kind{AnnounceStepStart, LeadIn, AnnounceIteration, AnnounceRest, RunGap, AnnounceIteration, AnnounceStepEnd, AnnounceComplete},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := kinds(Schedule(interval_timer.Timer{Steps: []interval_timer.TimerStep{tc.step}}))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSchedule_EmptyTimerOnlyCompletes(t *testing.T) {
	got := Schedule(interval_timer.Timer{})
	if !reflect.DeepEqual(got, []Event{{Kind: AnnounceComplete}}) {
		t.Fatalf("got %+v", got)
	}
}

func TestSchedule_IsPureFunctionOfTimer(t *testing.T) {
	timer := interval_timer.Timer{Steps: []interval_timer.TimerStep{
		{Name: "A", Duration: interval_timer.TimeSpan{Seconds: 10}},
		{Name: "B", Duration: interval_timer.TimeSpan{Seconds: 15}, Repeat: true, Iterations: 3, IterationGap: interval_timer.TimeSpan{Seconds: 5}},
	}}
	first := Schedule(timer)
	second := Schedule(timer)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("schedules differ between calls")
	}
	if first[len(first)-1].Kind != AnnounceComplete || count(first, AnnounceComplete) != 1 {
		t.Fatalf("AnnounceComplete must be emitted once at the end")
	}
	if first[0].Step != "A" || first[len(first)-2].Step != "B" {
		t.Fatalf("steps out of order: %+v", first)
	}
}

func TestEvents_StopsWhenConsumerBreaks(t *testing.T) {
	timer := interval_timer.Timer{Steps: []interval_timer.TimerStep{
		{Name: "A", Duration: interval_timer.TimeSpan{Seconds: 10}},
		{Name: "B", Duration: interval_timer.TimeSpan{Seconds: 10}},
	}}
	seen := 0
	for ev := range Events(timer) {
		seen++
		if ev.Kind == LeadIn {
			break
		}
	}
	if seen != 2 {
		t.Fatalf("consumed %d events, want 2", seen)
	}
}

func TestPlannedSeconds(t *testing.T) {
	timer := interval_timer.Timer{Steps: []interval_timer.TimerStep{
		{Name: "Plank", Duration: interval_timer.TimeSpan{Seconds: 10}},
		{Name: "Sprint", Duration: interval_timer.TimeSpan{Seconds: 20}, Repeat: true, Iterations: 2, IterationGap: interval_timer.TimeSpan{Seconds: 5}},
	}}
	// 5+10 + 5+20+5+20
	if got := PlannedSeconds(timer); got != 65 {
		t.Fatalf("PlannedSeconds=%d, want 65", got)
	}
}

func TestEvent_TextAndDelay(t *testing.T) {
	cases := []struct {
		ev    Event
		text  string
		delay time.Duration
	}{
		{Event{Kind: AnnounceStepStart, Step: "Plank"}, "starting Plank", 0},
		{Event{Kind: AnnounceIteration, Iteration: 3}, "3", 0},
		{Event{Kind: AnnounceRest}, "rest", 0},
		{Event{Kind: AnnounceStepEnd, Step: "Plank"}, "finished Plank", 0},
		{Event{Kind: AnnounceComplete}, "workout complete", 0},
		{Event{Kind: LeadIn, Seconds: 5}, "", 5 * time.Second},
		{Event{Kind: RunGap, Seconds: 7}, "", 7 * time.Second},
	}
	for _, tc := range cases {
		if got := tc.ev.Text(); got != tc.text {
			t.Errorf("%v Text=%q, want %q", tc.ev.Kind, got, tc.text)
		}
		if got := tc.ev.Delay(); got != tc.delay {
			t.Errorf("%v Delay=%v, want %v", tc.ev.Kind, got, tc.delay)
		}
		if tc.ev.Kind.IsAnnouncement() != (tc.text != "") {
			t.Errorf("%v IsAnnouncement mismatch", tc.ev.Kind)
		}
	}
	if Kind(99).String() != "UNKNOWN(99)" {
		t.Errorf("unexpected name for unknown kind")
	}
}
