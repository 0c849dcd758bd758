package service

import (
	"context"
	"errors"

	"interval_timer/internal/models"
	"interval_timer/internal/repository"
)

// ErrInvalidLogFilter marks a run log query the caller has to correct.
var ErrInvalidLogFilter = errors.New("invalid log filter")

// EventLogService reads the run log.
type EventLogService struct {
	events repository.EventRepo
}

func NewEventLogService(events repository.EventRepo) *EventLogService {
	return &EventLogService{events: events}
}

// List returns the run events matching f, oldest first.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.RunEvent, error) {
	q, err := f.query()
	if err != nil {
		return nil, err
	}
	return s.events.List(ctx, q)
}
