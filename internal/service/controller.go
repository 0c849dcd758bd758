package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"interval_timer"
	"interval_timer/internal/logger"
	"interval_timer/internal/models"
	"interval_timer/internal/repository"
	"interval_timer/internal/sequencer"
	"interval_timer/internal/wakelock"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ErrAlreadyRunning is returned by Start while another run is active.
var ErrAlreadyRunning = errors.New("a timer is already running")

// releaseTimeout bounds the wake lock release at the end of a run.
const releaseTimeout = 5 * time.Second

// Speaker is the announcement dependency of the controller.
type Speaker interface {
	Announce(ctx context.Context, text string) error
}

type subscriber struct {
	id int
	fn func(RunState)
}

// Controller plays one timer at a time: Idle -> Running -> Idle.
type Controller struct {
	speaker Speaker
	guard   *wakelock.Guard
	clock   clockwork.Clock
	events  repository.EventRepo
	log     *logger.Logger

	mu      sync.Mutex
	state   RunState
	current *Run
	cancel  context.CancelFunc
	subs    []subscriber
	nextSub int

	// held across a state change and its delivery; taken before mu
	notifyMu sync.Mutex
}

// NewController wires the controller. A nil clock means the real clock; a nil
// events repo disables the run log.
func NewController(speaker Speaker, guard *wakelock.Guard, clock clockwork.Clock, events repository.EventRepo, log *logger.Logger) *Controller {
	if guard == nil {
		guard = wakelock.NewGuard(nil)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		speaker: speaker,
		guard:   guard,
		clock:   clock,
		events:  events,
		log:     log,
		state:   RunState{Status: StatusIdle},
	}
}

// Start begins playing a snapshot of t in the background. The returned Run
// reports how it ended. While a run is active Start returns ErrAlreadyRunning
// and leaves that run untouched.
func (c *Controller) Start(ctx context.Context, t interval_timer.Timer) (*Run, error) {
	snap := t.Snapshot()
	planned := sequencer.PlannedSeconds(snap)

	var run *Run
	var runCtx context.Context
	c.update(func(s *RunState) bool {
		if s.Status == StatusRunning {
			return false
		}
		var cancel context.CancelFunc
		runCtx, cancel = context.WithCancel(context.Background())
		run = newRun(uuid.NewString(), snap.ID)
		startedAt := c.clock.Now().UTC()

		c.current = run
		c.cancel = cancel
		*s = RunState{
			Status:         StatusRunning,
			RunID:          run.ID,
			TimerID:        snap.ID,
			TimerName:      snap.Name,
			StartedAt:      &startedAt,
			PlannedSeconds: planned,
		}
		return true
	})
	if run == nil {
		return nil, ErrAlreadyRunning
	}

	c.log.Infow("run_started", "run_id", run.ID, "timer_id", snap.ID, "steps", len(snap.Steps))
	c.appendEvent(run, models.EventRunStarted, "Run started: "+snap.Name, map[string]any{
		"steps":           len(snap.Steps),
		"planned_seconds": planned,
	})

	if ok, err := c.guard.Acquire(ctx); !ok {
		c.log.Warnw("wakelock_failed", "run_id", run.ID, "err", err)
		c.warn(run, fmt.Sprintf("wake lock not acquired: %v", err))
	}

	go c.run(runCtx, run, snap)
	return run, nil
}

// Stop cancels the active run and waits until the controller is idle again.
// It is a no-op when idle.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	run, cancel := c.current, c.cancel
	c.mu.Unlock()

	if run == nil {
		return nil
	}
	cancel()

	select {
	case <-run.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns a copy of the current run state.
func (c *Controller) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe registers fn for every state change. fn runs on the goroutine
// that changed the state, often the run goroutine itself, so it must not block
// and must not call Start or Stop: Stop waits for that goroutine to finish.
func (c *Controller) Subscribe(fn func(RunState)) (unsubscribe func()) {
	c.mu.Lock()
	c.nextSub++
	id := c.nextSub
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *Controller) run(ctx context.Context, run *Run, t interval_timer.Timer) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("run panicked: %v", r)
		}
		c.release(run)
		c.finish(run, err)
	}()
	err = c.play(ctx, run, t)
}

// play consumes the schedule strictly in order. ctx is sampled before every
// announcement and around every delay.
func (c *Controller) play(ctx context.Context, run *Run, t interval_timer.Timer) error {
	for ev := range sequencer.Events(t) {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.enter(ev)

		if ev.Kind == sequencer.AnnounceStepStart {
			c.appendEvent(run, models.EventStepStarted, "Step started: "+ev.Step, stepMeta(t, ev))
		}

		if ev.Kind.IsAnnouncement() {
			if err := c.speaker.Announce(ctx, ev.Text()); err != nil {
				return fmt.Errorf("announce %s: %w", ev.Kind, err)
			}
		} else if err := c.wait(ctx, ev.Delay()); err != nil {
			return err
		}

		if ev.Kind == sequencer.AnnounceStepEnd {
			c.appendEvent(run, models.EventStepFinished, "Step finished: "+ev.Step, stepMeta(t, ev))
		}
	}
	return nil
}

func (c *Controller) wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := c.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.Chan():
	}
	return ctx.Err()
}

// enter records the event about to be executed in the run state.
func (c *Controller) enter(ev sequencer.Event) {
	c.update(func(s *RunState) bool {
		if s.Status != StatusRunning {
			return false
		}
		if ev.Kind != sequencer.AnnounceComplete {
			s.StepIndex = ev.StepIndex
			s.StepName = ev.Step
		}
		s.Iteration = ev.Iteration
		s.PhaseEndsAt = nil

		switch ev.Kind {
		case sequencer.LeadIn:
			s.Phase = PhaseLeadIn
		case sequencer.RunDuration:
			s.Phase = PhaseWork
		case sequencer.RunGap:
			s.Phase = PhaseRest
		default:
			s.Phase = PhaseAnnounce
		}
		if d := ev.Delay(); d > 0 {
			ends := c.clock.Now().UTC().Add(d)
			s.PhaseEndsAt = &ends
		}
		return true
	})
}

func (c *Controller) warn(run *Run, msg string) {
	run.addWarning(msg)

	c.update(func(s *RunState) bool {
		if c.current != run {
			return false
		}
		s.Warnings = append(s.Warnings, msg)
		return true
	})

	c.appendEvent(run, models.EventWarning, msg, nil)
}

func (c *Controller) release(run *Run) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	if err := c.guard.Release(ctx); err != nil {
		c.log.Warnw("wakelock_release_failed", "run_id", run.ID, "err", err)
		c.warn(run, fmt.Sprintf("wake lock release failed: %v", err))
	}
}

// finish classifies err, returns the controller to Idle and closes run.Done.
func (c *Controller) finish(run *Run, err error) {
	var (
		outcome Outcome
		runErr  error
		typ     string
		desc    string
	)
	switch {
	case err == nil:
		outcome, typ, desc = OutcomeCompleted, models.EventRunCompleted, "Run completed"
	case errors.Is(err, context.Canceled):
		outcome, typ, desc = OutcomeCancelled, models.EventRunCancelled, "Run cancelled"
	default:
		outcome, typ, desc, runErr = OutcomeFailed, models.EventRunFailed, "Run failed: "+err.Error(), err
	}
	run.end(outcome, runErr)

	if runErr != nil {
		c.log.Errorw("run_failed", "run_id", run.ID, "err", runErr)
	} else {
		c.log.Infow("run_finished", "run_id", run.ID, "outcome", outcome)
	}
	c.appendEvent(run, typ, desc, nil)

	c.update(func(s *RunState) bool {
		if c.cancel != nil {
			c.cancel()
		}
		c.current = nil
		c.cancel = nil
		*s = RunState{
			Status:      StatusIdle,
			RunID:       run.ID,
			TimerID:     run.TimerID,
			Warnings:    run.Warnings(),
			LastOutcome: outcome,
		}
		if runErr != nil {
			s.LastError = runErr.Error()
		}
		return true
	})

	close(run.done)
}

// update applies fn to the state under the lock and, if fn reports a change,
// delivers the new state to every subscriber before returning.
func (c *Controller) update(fn func(s *RunState) bool) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	changed := fn(&c.state)
	state := c.state.clone()
	subs := append([]subscriber(nil), c.subs...)
	c.mu.Unlock()

	if !changed {
		return
	}
	for _, sub := range subs {
		sub.fn(state)
	}
}

func (c *Controller) appendEvent(run *Run, typ, desc string, meta map[string]any) {
	if c.events == nil {
		return
	}
	e := models.RunEvent{
		EventID:     uuid.NewString(),
		RunID:       run.ID,
		TimerID:     run.TimerID,
		OccurredAt:  c.clock.Now().UTC(),
		Type:        typ,
		Description: desc,
	}
	if meta != nil {
		e.Metadata = meta
	}
	if err := c.events.Append(context.Background(), e); err != nil {
		c.log.Warnw("run_event_append_failed", "run_id", run.ID, "type", typ, "err", err)
	}
}

func stepMeta(t interval_timer.Timer, ev sequencer.Event) map[string]any {
	step := t.Steps[ev.StepIndex]
	return map[string]any{
		"step_index": ev.StepIndex,
		"step":       step.Name,
		"duration":   step.Duration.String(),
		"iterations": step.EffectiveIterations(),
	}
}
