package service

import (
	"context"
	"errors"
	"strings"

	"interval_timer"
	"interval_timer/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrTimerNotFound = errors.New("timer not found")
	ErrStepNotFound  = errors.New("step not found")
	ErrInvalidTimer  = errors.New("invalid timer")
)

// TimerService manages timer definitions. Every step that passes through it is
// normalized: spans clamped, iterations at least 1.
type TimerService struct {
	repo repository.TimerRepo
}

func NewTimerService(repo repository.TimerRepo) *TimerService {
	return &TimerService{repo: repo}
}

func (s *TimerService) List(ctx context.Context) ([]interval_timer.Timer, error) {
	return s.repo.List(ctx)
}

func (s *TimerService) Get(ctx context.Context, id string) (interval_timer.Timer, error) {
	t, err := s.repo.Get(ctx, id)
	return t, mapNotFound(err, ErrTimerNotFound)
}

// Create stores an empty timer. An empty name is allowed.
func (s *TimerService) Create(ctx context.Context, name string) (interval_timer.Timer, error) {
	t := interval_timer.Timer{ID: uuid.NewString(), Name: strings.TrimSpace(name), Steps: []interval_timer.TimerStep{}}
	if err := s.repo.Create(ctx, t); err != nil {
		return interval_timer.Timer{}, err
	}
	return t, nil
}

func (s *TimerService) Rename(ctx context.Context, id, name string) error {
	return mapNotFound(s.repo.Rename(ctx, id, strings.TrimSpace(name)), ErrTimerNotFound)
}

func (s *TimerService) Delete(ctx context.Context, id string) error {
	return mapNotFound(s.repo.Delete(ctx, id), ErrTimerNotFound)
}

// AddStep appends step to the timer and returns it with its assigned ID.
func (s *TimerService) AddStep(ctx context.Context, timerID string, step interval_timer.TimerStep) (interval_timer.TimerStep, error) {
	t, err := s.Get(ctx, timerID)
	if err != nil {
		return interval_timer.TimerStep{}, err
	}

	step = step.Normalize()
	step.Name = strings.TrimSpace(step.Name)
	step.ID = uuid.NewString()
	t.Steps = append(t.Steps, step)

	if err := s.replaceSteps(ctx, t); err != nil {
		return interval_timer.TimerStep{}, err
	}
	return step, nil
}

// UpdateStep replaces the step with the same ID, keeping its position.
func (s *TimerService) UpdateStep(ctx context.Context, timerID string, step interval_timer.TimerStep) (interval_timer.TimerStep, error) {
	t, err := s.Get(ctx, timerID)
	if err != nil {
		return interval_timer.TimerStep{}, err
	}
	idx := t.StepIndex(step.ID)
	if idx < 0 {
		return interval_timer.TimerStep{}, ErrStepNotFound
	}

	step = step.Normalize()
	step.Name = strings.TrimSpace(step.Name)
	t.Steps[idx] = step

	if err := s.replaceSteps(ctx, t); err != nil {
		return interval_timer.TimerStep{}, err
	}
	return step, nil
}

func (s *TimerService) DeleteStep(ctx context.Context, timerID, stepID string) error {
	t, err := s.Get(ctx, timerID)
	if err != nil {
		return err
	}
	idx := t.StepIndex(stepID)
	if idx < 0 {
		return ErrStepNotFound
	}
	t.Steps = append(t.Steps[:idx], t.Steps[idx+1:]...)
	return s.replaceSteps(ctx, t)
}

func (s *TimerService) replaceSteps(ctx context.Context, t interval_timer.Timer) error {
	return mapNotFound(s.repo.ReplaceSteps(ctx, t.ID, t.Steps), ErrTimerNotFound)
}

func mapNotFound(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}
