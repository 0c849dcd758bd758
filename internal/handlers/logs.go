package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"interval_timer/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid  = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid    = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errQueryInvalid = "invalid query: "
	errLoadLogs     = "failed to load logs"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// logsQuery is the raw query string of GET /api/v1/logs.
type logsQuery struct {
	From    string `form:"from"`
	To      string `form:"to"`
	Type    string `form:"type"`
	RunID   string `form:"run_id"`
	TimerID string `form:"timer_id"`
	Limit   int    `form:"limit"`
}

// filter parses the time bounds. A date-only 'to' covers the whole day.
func (q logsQuery) filter() (service.LogFilter, string) {
	f := service.LogFilter{Type: q.Type, RunID: q.RunID, TimerID: q.TimerID, Limit: q.Limit}
	var err error
	if q.From != "" {
		if f.From, err = parseQueryTime(q.From); err != nil {
			return f, errFromInvalid
		}
	}
	if q.To != "" {
		if f.To, err = parseQueryTime(q.To); err != nil {
			return f, errToInvalid
		}
		if isDateOnly(q.To) {
			f.To = f.To.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return f, ""
}

// @Summary      List run log
// @Description  Run events oldest first, filtered by time range, type, run or timer. A date-only 'to' is end-of-day inclusive.
// @Tags         logs
// @Produce      json
// @Param        from      query   string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2025-08-01)
// @Param        to        query   string  false  "End of range. Date-only treated as end of day."  example(2025-08-31)
// @Param        type      query   string  false  "Event type"  Enums(RUN_STARTED,STEP_STARTED,STEP_FINISHED,RUN_COMPLETED,RUN_CANCELLED,RUN_FAILED,WARNING)
// @Param        run_id    query   string  false  "Only events of this run"
// @Param        timer_id  query   string  false  "Only events of runs of this timer"
// @Param        limit     query   int     false  "Page size, at most 1000"
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	var q logsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errQueryInvalid + err.Error()})
		return
	}
	f, msg := q.filter()
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), f)
	switch {
	case errors.Is(err, service.ErrInvalidLogFilter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadLogs, "logs_list_failed", err,
			"run_id", f.RunID, "timer_id", f.TimerID, "type", f.Type)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format %q", s)
}
