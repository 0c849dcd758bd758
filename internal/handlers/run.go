package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Start timer
// @Description  Plays the stored timer in the background. Only one timer runs at a time.
// @Tags         run
// @Produce      json
// @Param        id   path      string  true  "Timer ID"
// @Success      200  {object}  map[string]interface{}  "status, run_id, warnings, state"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/timers/{id}/start [post]
// @Security     BearerAuth
func (h *Handler) startTimer(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	t, err := h.services.Timers.Get(ctx, id)
	if err != nil {
		h.serviceError(c, errLoadTimers, "timer_get_failed", err, "timer_id", id)
		return
	}
	run, err := h.services.Runner.Start(ctx, t)
	if err != nil {
		h.serviceError(c, errStartRun, "run_start_failed", err, "timer_id", id)
		return
	}
	h.respondWithStatusAndState(c, statusStarted, gin.H{
		"run_id":   run.ID,
		"warnings": run.Warnings(),
	})
}

// @Summary      Stop the running timer
// @Description  No-op when nothing is running. Returns once the run has ended.
// @Tags         run
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/run/stop [post]
// @Security     BearerAuth
func (h *Handler) stopRun(c *gin.Context) {
	if err := h.services.Runner.Stop(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errStopRun, "run_stop_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusStopped, gin.H{})
}

// @Summary      Get run state
// @Tags         run
// @Produce      json
// @Success      200  {object}  service.RunState
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/run/state [get]
// @Security     BearerAuth
func (h *Handler) getRunState(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Runner.State())
}
