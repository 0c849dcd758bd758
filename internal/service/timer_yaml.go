package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"interval_timer"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Import reads a single timer document, assigns fresh IDs and stores it.
// Unknown keys are rejected.
func (s *TimerService) Import(ctx context.Context, r io.Reader) (interval_timer.Timer, error) {
	var t interval_timer.Timer

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return interval_timer.Timer{}, fmt.Errorf("%w: empty document", ErrInvalidTimer)
		}
		return interval_timer.Timer{}, fmt.Errorf("%w: %v", ErrInvalidTimer, err)
	}

	t.ID = uuid.NewString()
	t.Name = strings.TrimSpace(t.Name)
	steps := make([]interval_timer.TimerStep, 0, len(t.Steps))
	for _, step := range t.Steps {
		step = step.Normalize()
		step.ID = uuid.NewString()
		step.Name = strings.TrimSpace(step.Name)
		steps = append(steps, step)
	}
	t.Steps = steps

	if err := s.repo.Create(ctx, t); err != nil {
		return interval_timer.Timer{}, err
	}
	return t, nil
}

// Export renders the timer as YAML without IDs, so the output can be imported
// again as a new timer.
func (s *TimerService) Export(ctx context.Context, id string) ([]byte, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return nil, fmt.Errorf("encode timer %q: %w", id, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode timer %q: %w", id, err)
	}
	return buf.Bytes(), nil
}
