package handlers

import (
	"errors"
	"net/http"

	"interval_timer/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusStarted = "started"
	statusStopped = "stopped"

	errLoadTimers   = "failed to load timers"
	errSaveTimer    = "failed to save timer"
	errStartRun     = "failed to start timer"
	errStopRun      = "failed to stop timer"
	errInvalidBody  = "invalid body: "
	errTimerMissing = "timer not found"
	errStepMissing  = "step not found"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// serviceError maps known service errors to 4xx and everything else to a
// logged 500 with userMsg.
func (h *Handler) serviceError(c *gin.Context, userMsg, logKey string, err error, kv ...interface{}) {
	switch {
	case errors.Is(err, service.ErrTimerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errTimerMissing})
	case errors.Is(err, service.ErrStepNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errStepMissing})
	case errors.Is(err, service.ErrInvalidTimer):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, userMsg, logKey, err, kv...)
	}
}

// Respond with a status and include the current run state.
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	if h.services.Runner != nil {
		resp["state"] = h.services.Runner.State()
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}
