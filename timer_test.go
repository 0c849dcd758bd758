package interval_timer

import (
	"testing"
	"time"
)

func TestTimeSpan_TotalSecondsAndDuration(t *testing.T) {
	ts := TimeSpan{Minutes: 2, Seconds: 5}
	if got := ts.TotalSeconds(); got != 125 {
		t.Fatalf("TotalSeconds=%d, want 125", got)
	}
	if got := ts.Duration(); got != 125*time.Second {
		t.Fatalf("Duration=%v, want 125s", got)
	}
	if got := ts.String(); got != "2:05" {
		t.Fatalf("String=%q, want 2:05", got)
	}
}

func TestTimeSpan_Clamp(t *testing.T) {
	cases := []struct {
		name string
		in   TimeSpan
		want TimeSpan
	}{
		{"in_range", TimeSpan{1, 30}, TimeSpan{1, 30}},
		{"negative_minutes", TimeSpan{-3, 10}, TimeSpan{0, 10}},
		{"negative_seconds", TimeSpan{1, -1}, TimeSpan{1, 0}},
		{"seconds_over_59", TimeSpan{0, 75}, TimeSpan{0, 59}},
		{"zero", TimeSpan{}, TimeSpan{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Clamp(); got != tc.want {
				t.Fatalf("Clamp(%+v)=%+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestTimerStep_EffectiveIterationsAndGap(t *testing.T) {
	gap := TimeSpan{Seconds: 5}

	s := TimerStep{Repeat: false, Iterations: 4, IterationGap: gap}
	if s.EffectiveIterations() != 1 || s.HasGap() {
		t.Fatalf("repeat=false must play once without gap: %+v", s)
	}

	s = TimerStep{Repeat: true, Iterations: 3, IterationGap: gap}
	if s.EffectiveIterations() != 3 || !s.HasGap() {
		t.Fatalf("repeat=true 3x with gap: iterations=%d gap=%v", s.EffectiveIterations(), s.HasGap())
	}

	s = TimerStep{Repeat: true, Iterations: 0, IterationGap: gap}
	if s.EffectiveIterations() != 1 || s.HasGap() {
		t.Fatalf("iterations<1 must be treated as 1")
	}

	s = TimerStep{Repeat: true, Iterations: 2}
	if s.HasGap() {
		t.Fatalf("zero gap must not produce a gap")
	}
}

func TestTimerStep_Normalize(t *testing.T) {
	got := TimerStep{
		Duration:     TimeSpan{Minutes: -1, Seconds: 99},
		Iterations:   -2,
		IterationGap: TimeSpan{Seconds: -4},
	}.Normalize()

	if got.Duration != (TimeSpan{0, 59}) || got.IterationGap != (TimeSpan{}) || got.Iterations != 1 {
		t.Fatalf("unexpected normalized step: %+v", got)
	}
}

func TestNewStep_Defaults(t *testing.T) {
	s := NewStep("Plank")
	if s.ID == "" {
		t.Fatalf("expected generated ID")
	}
	if s.Name != "Plank" || s.Duration != (TimeSpan{Seconds: 10}) || s.Repeat || s.Iterations != 1 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
}

func TestTimer_SnapshotIsIndependent(t *testing.T) {
	orig := Timer{ID: "t1", Name: "Core", Steps: []TimerStep{{ID: "a", Name: "Plank"}}}
	snap := orig.Snapshot()

	orig.Steps[0].Name = "Edited"
	orig.Steps = append(orig.Steps, TimerStep{ID: "b"})

	if snap.Steps[0].Name != "Plank" || len(snap.Steps) != 1 {
		t.Fatalf("snapshot observed edits: %+v", snap)
	}
	if snap.StepIndex("a") != 0 || snap.StepIndex("b") != -1 {
		t.Fatalf("StepIndex mismatch")
	}
}
