package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"interval_timer/internal/models"

	"github.com/google/uuid"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

// sqliteTimestamp is the layout SQLite compares TIMESTAMP text in.
const sqliteTimestamp = "2006-01-02 15:04:05"

const insertEventSQL = `
		INSERT INTO run_events (id, run_id, timer_id, occurred_at, type, message, meta)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

const selectEventsSQL = `SELECT id, run_id, timer_id, occurred_at, type, message, meta FROM run_events`

// Append inserts a new event, filling EventID and OccurredAt when empty.
func (r *EventSQLite) Append(ctx context.Context, e models.RunEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		nullable(e.RunID),
		nullable(e.TimerID),
		e.OccurredAt.Format(sqliteTimestamp),
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Description,
		metaPtr,
	)
	return err
}

// List returns the events matching q, oldest first.
func (r *EventSQLite) List(ctx context.Context, q EventQuery) ([]models.RunEvent, error) {
	query, args := buildEventQuery(q)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.RunEvent, 0, 64)
	for rows.Next() {
		var (
			ev             models.RunEvent
			runID, timerID sql.NullString
			metaStr        sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &runID, &timerID, &ev.OccurredAt, &ev.Type, &ev.Description, &metaStr); err != nil {
			return nil, err
		}
		ev.RunID = runID.String
		ev.TimerID = timerID.String
		ev.OccurredAt = ev.OccurredAt.UTC()

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String // keep raw if malformed
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// buildEventQuery renders q as a SELECT with positional args in WHERE order.
func buildEventQuery(q EventQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	where := func(cond string, arg any) {
		conds = append(conds, cond)
		args = append(args, arg)
	}

	if !q.From.IsZero() {
		where("occurred_at >= ?", q.From.UTC().Format(sqliteTimestamp))
	}
	if !q.To.IsZero() {
		where("occurred_at <= ?", q.To.UTC().Format(sqliteTimestamp))
	}
	if typ := strings.ToUpper(strings.TrimSpace(q.Type)); typ != "" {
		where("type = ?", typ)
	}
	if q.RunID != "" {
		where("run_id = ?", q.RunID)
	}
	if q.TimerID != "" {
		where("timer_id = ?", q.TimerID)
	}

	sqlText := selectEventsSQL
	if len(conds) > 0 {
		sqlText += " WHERE " + strings.Join(conds, " AND ")
	}
	sqlText += " ORDER BY occurred_at ASC"
	if q.Limit > 0 {
		sqlText += " LIMIT ?"
		args = append(args, q.Limit)
	}
	return sqlText, args
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
