package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"interval_timer"
	"interval_timer/internal/repository"
)

// memTimerRepo is an in-memory repository.TimerRepo.
type memTimerRepo struct {
	mu     sync.Mutex
	timers map[string]interval_timer.Timer
	order  []string

	createErr error
}

func newMemTimerRepo() *memTimerRepo {
	return &memTimerRepo{timers: map[string]interval_timer.Timer{}}
}

func (r *memTimerRepo) Create(_ context.Context, t interval_timer.Timer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.timers[t.ID] = t.Snapshot()
	r.order = append(r.order, t.ID)
	return nil
}

func (r *memTimerRepo) Get(_ context.Context, id string) (interval_timer.Timer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.timers[id]
	if !ok {
		return interval_timer.Timer{}, repository.ErrNotFound
	}
	return t.Snapshot(), nil
}

func (r *memTimerRepo) List(context.Context) ([]interval_timer.Timer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]interval_timer.Timer, 0, len(r.order))
	for _, id := range r.order {
		if t, ok := r.timers[id]; ok {
			out = append(out, t.Snapshot())
		}
	}
	return out, nil
}

func (r *memTimerRepo) Rename(_ context.Context, id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.timers[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Name = name
	r.timers[id] = t
	return nil
}

func (r *memTimerRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.timers[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.timers, id)
	return nil
}

func (r *memTimerRepo) ReplaceSteps(_ context.Context, id string, steps []interval_timer.TimerStep) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.timers[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Steps = append([]interval_timer.TimerStep(nil), steps...)
	r.timers[id] = t
	return nil
}

func TestTimerService_CreateRenameDelete(t *testing.T) {
	svc := NewTimerService(newMemTimerRepo())
	ctx := context.Background()

	tm, err := svc.Create(ctx, "  Morning  ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tm.ID == "" || tm.Name != "Morning" || len(tm.Steps) != 0 {
		t.Fatalf("unexpected timer: %+v", tm)
	}

	if err := svc.Rename(ctx, tm.ID, "Evening"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	got, err := svc.Get(ctx, tm.ID)
	if err != nil || got.Name != "Evening" {
		t.Fatalf("Get after rename = %+v, %v", got, err)
	}

	list, _ := svc.List(ctx)
	if len(list) != 1 {
		t.Fatalf("List len=%d, want 1", len(list))
	}

	if err := svc.Delete(ctx, tm.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, tm.ID); !errors.Is(err, ErrTimerNotFound) {
		t.Fatalf("Get after delete err=%v, want ErrTimerNotFound", err)
	}
}

func TestTimerService_UnknownTimer(t *testing.T) {
	svc := NewTimerService(newMemTimerRepo())
	ctx := context.Background()

	checks := map[string]error{
		"rename":      svc.Rename(ctx, "nope", "x"),
		"delete":      svc.Delete(ctx, "nope"),
		"delete_step": svc.DeleteStep(ctx, "nope", "s"),
	}
	_, err := svc.AddStep(ctx, "nope", interval_timer.TimerStep{})
	checks["add_step"] = err
	_, err = svc.UpdateStep(ctx, "nope", interval_timer.TimerStep{ID: "s"})
	checks["update_step"] = err

	for name, err := range checks {
		if !errors.Is(err, ErrTimerNotFound) {
			t.Errorf("%s: err=%v, want ErrTimerNotFound", name, err)
		}
	}
}

func TestTimerService_StepsAreNormalizedAndOrdered(t *testing.T) {
	svc := NewTimerService(newMemTimerRepo())
	ctx := context.Background()
	tm, _ := svc.Create(ctx, "Core")

	a, err := svc.AddStep(ctx, tm.ID, interval_timer.TimerStep{
		ID:         "client-id",
		Name:       " Plank ",
		Duration:   interval_timer.TimeSpan{Minutes: -1, Seconds: 75},
		Iterations: 0,
	})
	if err != nil {
		t.Fatalf("AddStep: %v", err)
	}
	if a.ID == "" || a.ID == "client-id" {
		t.Fatalf("step ID must be assigned by the service, got %q", a.ID)
	}
	if a.Name != "Plank" || a.Duration != (interval_timer.TimeSpan{Seconds: 59}) || a.Iterations != 1 {
		t.Fatalf("step not normalized: %+v", a)
	}

	b, _ := svc.AddStep(ctx, tm.ID, interval_timer.NewStep("Squat"))
	c, _ := svc.AddStep(ctx, tm.ID, interval_timer.NewStep("Lunge"))

	b.Repeat = true
	b.Iterations = 3
	b.IterationGap = interval_timer.TimeSpan{Seconds: -5}
	if _, err := svc.UpdateStep(ctx, tm.ID, b); err != nil {
		t.Fatalf("UpdateStep: %v", err)
	}
	if err := svc.DeleteStep(ctx, tm.ID, a.ID); err != nil {
		t.Fatalf("DeleteStep: %v", err)
	}

	got, _ := svc.Get(ctx, tm.ID)
	if len(got.Steps) != 2 || got.Steps[0].ID != b.ID || got.Steps[1].ID != c.ID {
		t.Fatalf("unexpected steps: %+v", got.Steps)
	}
	if got.Steps[0].Iterations != 3 || !got.Steps[0].Repeat || got.Steps[0].IterationGap != (interval_timer.TimeSpan{}) {
		t.Fatalf("update not applied/normalized: %+v", got.Steps[0])
	}
}

func TestTimerService_UnknownStep(t *testing.T) {
	svc := NewTimerService(newMemTimerRepo())
	ctx := context.Background()
	tm, _ := svc.Create(ctx, "Core")

	if _, err := svc.UpdateStep(ctx, tm.ID, interval_timer.TimerStep{ID: "ghost"}); !errors.Is(err, ErrStepNotFound) {
		t.Fatalf("UpdateStep err=%v, want ErrStepNotFound", err)
	}
	if err := svc.DeleteStep(ctx, tm.ID, "ghost"); !errors.Is(err, ErrStepNotFound) {
		t.Fatalf("DeleteStep err=%v, want ErrStepNotFound", err)
	}
}

const sprintYAML = `name: Track
steps:
  - name: Warmup
    duration: {minutes: 2, seconds: 0}
  - name: Sprint
    duration: {minutes: 0, seconds: 20}
    repeat: true
    iterations: 4
    iteration_gap: {minutes: 0, seconds: 90}
`

func TestTimerService_ImportExportRoundTrip(t *testing.T) {
	svc := NewTimerService(newMemTimerRepo())
	ctx := context.Background()

	imported, err := svc.Import(ctx, strings.NewReader(sprintYAML))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if imported.ID == "" || imported.Name != "Track" || len(imported.Steps) != 2 {
		t.Fatalf("unexpected import: %+v", imported)
	}
	sprint := imported.Steps[1]
	if sprint.ID == "" || !sprint.Repeat || sprint.Iterations != 4 || sprint.IterationGap != (interval_timer.TimeSpan{Seconds: 59}) {
		t.Fatalf("unexpected sprint step: %+v", sprint)
	}
	if imported.Steps[0].Iterations != 1 {
		t.Fatalf("missing iterations must default to 1, got %d", imported.Steps[0].Iterations)
	}

	out, err := svc.Export(ctx, imported.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if strings.Contains(string(out), imported.ID) || strings.Contains(string(out), "id:") {
		t.Fatalf("export must not carry IDs:\n%s", out)
	}

	again, err := svc.Import(ctx, strings.NewReader(string(out)))
	if err != nil {
		t.Fatalf("re-Import: %v", err)
	}
	if again.ID == imported.ID || again.Name != imported.Name || len(again.Steps) != len(imported.Steps) {
		t.Fatalf("re-import mismatch: %+v", again)
	}
	for i := range again.Steps {
		a, b := again.Steps[i], imported.Steps[i]
		a.ID, b.ID = "", ""
		if a != b {
			t.Fatalf("step %d differs after round trip: %+v vs %+v", i, a, b)
		}
	}
}

func TestTimerService_ImportRejectsBadInput(t *testing.T) {
	svc := NewTimerService(newMemTimerRepo())

	cases := map[string]string{
		"empty":       "",
		"unknown_key": "name: x\ncolour: red\n",
		"bad_type":    "name: x\nsteps: 3\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Import(context.Background(), strings.NewReader(doc)); !errors.Is(err, ErrInvalidTimer) {
				t.Fatalf("err=%v, want ErrInvalidTimer", err)
			}
		})
	}
}

func TestTimerService_ExportUnknownTimer(t *testing.T) {
	svc := NewTimerService(newMemTimerRepo())
	if _, err := svc.Export(context.Background(), "nope"); !errors.Is(err, ErrTimerNotFound) {
		t.Fatalf("err=%v, want ErrTimerNotFound", err)
	}
}

func TestTimerService_RepoErrorPropagates(t *testing.T) {
	repo := newMemTimerRepo()
	repo.createErr = errors.New("disk full")
	svc := NewTimerService(repo)

	if _, err := svc.Create(context.Background(), "x"); !errors.Is(err, repo.createErr) {
		t.Fatalf("err=%v, want %v", err, repo.createErr)
	}
}
