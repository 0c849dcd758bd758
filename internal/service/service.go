package service

import (
	"context"
	"io"
	"time"

	"interval_timer"
	"interval_timer/internal/models"
	"interval_timer/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Timers manages stored timer definitions.
type Timers interface {
	List(ctx context.Context) ([]interval_timer.Timer, error)
	Get(ctx context.Context, id string) (interval_timer.Timer, error)
	Create(ctx context.Context, name string) (interval_timer.Timer, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
	AddStep(ctx context.Context, timerID string, step interval_timer.TimerStep) (interval_timer.TimerStep, error)
	UpdateStep(ctx context.Context, timerID string, step interval_timer.TimerStep) (interval_timer.TimerStep, error)
	DeleteStep(ctx context.Context, timerID, stepID string) error
	Import(ctx context.Context, r io.Reader) (interval_timer.Timer, error)
	Export(ctx context.Context, id string) ([]byte, error)
}

// Runner is the start/stop surface of the controller.
type Runner interface {
	Start(ctx context.Context, t interval_timer.Timer) (*Run, error)
	Stop(ctx context.Context) error
	State() RunState
	Subscribe(fn func(RunState)) (unsubscribe func())
}

// EventLog exposes the append-only run log with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.RunEvent, error)
}

type Service struct {
	Authorization
	Timers
	Runner
	EventLog
}

// Deps carries what cannot be built from the repository layer alone.
type Deps struct {
	Runner     Runner
	SigningKey string
	TokenTTL   time.Duration
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Auth, deps.SigningKey, deps.TokenTTL),
		Timers:        NewTimerService(repos.TimerRepo),
		Runner:        deps.Runner,
		EventLog:      NewEventLogService(repos.EventRepo),
	}
}
