package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"interval_timer"
)

type TimerSQLite struct {
	db *sql.DB
}

func NewTimerSQLite(db *sql.DB) *TimerSQLite {
	return &TimerSQLite{db: db}
}

var _ TimerRepo = (*TimerSQLite)(nil)

const (
	insertTimerSQL = `INSERT INTO timers (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`
	selectTimerSQL = `SELECT id, name FROM timers WHERE id = ?`
	listTimersSQL  = `SELECT id, name FROM timers ORDER BY created_at ASC, id ASC`
	renameTimerSQL = `UPDATE timers SET name = ?, updated_at = ? WHERE id = ?`
	touchTimerSQL  = `UPDATE timers SET updated_at = ? WHERE id = ?`
	deleteTimerSQL = `DELETE FROM timers WHERE id = ?`

	stepColumns = `id, timer_id, name, duration_min, duration_sec, repeat_enabled, iterations, gap_min, gap_sec`

	selectStepsSQL    = `SELECT ` + stepColumns + ` FROM timer_steps WHERE timer_id = ? ORDER BY position ASC`
	selectAllStepsSQL = `SELECT ` + stepColumns + ` FROM timer_steps ORDER BY timer_id ASC, position ASC`
	deleteStepsSQL    = `DELETE FROM timer_steps WHERE timer_id = ?`
	insertStepSQL     = `
		INSERT INTO timer_steps (id, timer_id, position, name, duration_min, duration_sec, repeat_enabled, iterations, gap_min, gap_sec)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
)

// Create inserts the timer and its steps in one transaction.
func (r *TimerSQLite) Create(ctx context.Context, t interval_timer.Timer) error {
	now := time.Now().UTC()
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertTimerSQL, t.ID, t.Name, now, now); err != nil {
			return fmt.Errorf("insert timer %q: %w", t.ID, err)
		}
		return insertSteps(ctx, tx, t.ID, t.Steps)
	})
}

// Get loads a timer with its steps in playback order.
func (r *TimerSQLite) Get(ctx context.Context, id string) (interval_timer.Timer, error) {
	var t interval_timer.Timer
	if err := r.db.QueryRowContext(ctx, selectTimerSQL, id).Scan(&t.ID, &t.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return interval_timer.Timer{}, ErrNotFound
		}
		return interval_timer.Timer{}, fmt.Errorf("select timer %q: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx, selectStepsSQL, id)
	if err != nil {
		return interval_timer.Timer{}, fmt.Errorf("select steps of %q: %w", id, err)
	}
	defer rows.Close()

	t.Steps = []interval_timer.TimerStep{}
	for rows.Next() {
		step, _, err := scanStep(rows)
		if err != nil {
			return interval_timer.Timer{}, err
		}
		t.Steps = append(t.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return interval_timer.Timer{}, err
	}
	return t, nil
}

// List returns all timers, oldest first, each with its steps.
func (r *TimerSQLite) List(ctx context.Context) ([]interval_timer.Timer, error) {
	rows, err := r.db.QueryContext(ctx, listTimersSQL)
	if err != nil {
		return nil, fmt.Errorf("list timers: %w", err)
	}
	out := make([]interval_timer.Timer, 0, 16)
	index := make(map[string]int)
	for rows.Next() {
		var t interval_timer.Timer
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			rows.Close()
			return nil, err
		}
		t.Steps = []interval_timer.TimerStep{}
		index[t.ID] = len(out)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	stepRows, err := r.db.QueryContext(ctx, selectAllStepsSQL)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer stepRows.Close()
	for stepRows.Next() {
		step, timerID, err := scanStep(stepRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[timerID]; ok {
			out[i].Steps = append(out[i].Steps, step)
		}
	}
	if err := stepRows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TimerSQLite) Rename(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, renameTimerSQL, name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("rename timer %q: %w", id, err)
	}
	return requireRow(res)
}

// Delete removes the timer; its steps go with it via ON DELETE CASCADE.
func (r *TimerSQLite) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteTimerSQL, id)
	if err != nil {
		return fmt.Errorf("delete timer %q: %w", id, err)
	}
	return requireRow(res)
}

func (r *TimerSQLite) ReplaceSteps(ctx context.Context, timerID string, steps []interval_timer.TimerStep) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, touchTimerSQL, time.Now().UTC(), timerID)
		if err != nil {
			return fmt.Errorf("touch timer %q: %w", timerID, err)
		}
		if err := requireRow(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteStepsSQL, timerID); err != nil {
			return fmt.Errorf("clear steps of %q: %w", timerID, err)
		}
		return insertSteps(ctx, tx, timerID, steps)
	})
}

func (r *TimerSQLite) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertSteps(ctx context.Context, tx *sql.Tx, timerID string, steps []interval_timer.TimerStep) error {
	for pos, s := range steps {
		if _, err := tx.ExecContext(ctx, insertStepSQL,
			s.ID,
			timerID,
			pos,
			s.Name,
			s.Duration.Minutes,
			s.Duration.Seconds,
			s.Repeat,
			s.Iterations,
			s.IterationGap.Minutes,
			s.IterationGap.Seconds,
		); err != nil {
			return fmt.Errorf("insert step %d of %q: %w", pos, timerID, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStep(row rowScanner) (interval_timer.TimerStep, string, error) {
	var (
		s       interval_timer.TimerStep
		timerID string
	)
	err := row.Scan(
		&s.ID,
		&timerID,
		&s.Name,
		&s.Duration.Minutes,
		&s.Duration.Seconds,
		&s.Repeat,
		&s.Iterations,
		&s.IterationGap.Minutes,
		&s.IterationGap.Seconds,
	)
	if err != nil {
		return interval_timer.TimerStep{}, "", fmt.Errorf("scan step: %w", err)
	}
	return s, timerID, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
