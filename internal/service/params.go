package service

import (
	"fmt"
	"strings"
	"time"

	"interval_timer/internal/models"
	"interval_timer/internal/repository"
)

// MaxLogLimit caps a single run log page.
const MaxLogLimit = 1000

// LogFilter selects run log entries. Zero fields do not filter.
type LogFilter struct {
	From    time.Time // inclusive
	To      time.Time // inclusive
	Type    string    // one of models.EventTypes, any case
	RunID   string
	TimerID string
	Limit   int // 0 means MaxLogLimit
}

// query validates f and converts it to a repository query in UTC.
func (f LogFilter) query() (repository.EventQuery, error) {
	q := repository.EventQuery{
		From:    utcOrZero(f.From),
		To:      utcOrZero(f.To),
		Type:    strings.ToUpper(strings.TrimSpace(f.Type)),
		RunID:   strings.TrimSpace(f.RunID),
		TimerID: strings.TrimSpace(f.TimerID),
		Limit:   f.Limit,
	}

	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return repository.EventQuery{}, fmt.Errorf("%w: 'from' must be <= 'to'", ErrInvalidLogFilter)
	}
	if q.Type != "" && !models.IsEventType(q.Type) {
		return repository.EventQuery{}, fmt.Errorf("%w: unknown event type %q", ErrInvalidLogFilter, f.Type)
	}
	switch {
	case q.Limit < 0:
		return repository.EventQuery{}, fmt.Errorf("%w: limit must not be negative", ErrInvalidLogFilter)
	case q.Limit == 0, q.Limit > MaxLogLimit:
		q.Limit = MaxLogLimit
	}
	return q, nil
}

func utcOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
