package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"interval_timer"
	"interval_timer/internal/models"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("already exists")
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// TimerRepo persists timer definitions with their ordered steps.
type TimerRepo interface {
	Create(ctx context.Context, t interval_timer.Timer) error
	Get(ctx context.Context, id string) (interval_timer.Timer, error)
	List(ctx context.Context) ([]interval_timer.Timer, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
	// ReplaceSteps stores steps as the complete, ordered step list of the timer.
	ReplaceSteps(ctx context.Context, timerID string, steps []interval_timer.TimerStep) error
}

// EventQuery selects run log rows. Zero fields do not filter.
type EventQuery struct {
	From    time.Time // inclusive
	To      time.Time // inclusive
	Type    string
	RunID   string
	TimerID string
	Limit   int
}

type EventRepo interface {
	Append(ctx context.Context, e models.RunEvent) error
	// List returns the matching events oldest first.
	List(ctx context.Context, q EventQuery) ([]models.RunEvent, error)
}

type Repository struct {
	TimerRepo TimerRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		TimerRepo: NewTimerSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
