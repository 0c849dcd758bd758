package handlers

import (
	"net/http"

	"interval_timer"

	"github.com/gin-gonic/gin"
)

const maxImportBytes = 1 << 20 // 1 MB

type createTimerRequest struct {
	Name string `json:"name" example:"Morning core"`
}

type renameTimerRequest struct {
	Name *string `json:"name" binding:"required" example:"Evening core"`
}

// @Summary      List timers
// @Tags         timers
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, timers"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/timers [get]
// @Security     BearerAuth
func (h *Handler) listTimers(c *gin.Context) {
	timers, err := h.services.Timers.List(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadTimers, "timers_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(timers),
		"timers": timers,
	})
}

// @Summary      Create timer
// @Tags         timers
// @Accept       json
// @Produce      json
// @Param        body  body      createTimerRequest  false  "Timer name"
// @Success      201   {object}  interval_timer.Timer
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/timers [post]
// @Security     BearerAuth
func (h *Handler) createTimer(c *gin.Context) {
	var req createTimerRequest
	if c.Request.ContentLength != 0 {
		if ok := h.bindJSONOrBadRequest(c, &req); !ok {
			return
		}
	}
	t, err := h.services.Timers.Create(c.Request.Context(), req.Name)
	if err != nil {
		h.serviceError(c, errSaveTimer, "timer_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// @Summary      Get timer
// @Tags         timers
// @Produce      json
// @Param        id   path      string  true  "Timer ID"
// @Success      200  {object}  interval_timer.Timer
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/timers/{id} [get]
// @Security     BearerAuth
func (h *Handler) getTimer(c *gin.Context) {
	t, err := h.services.Timers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, errLoadTimers, "timer_get_failed", err, "timer_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary      Rename timer
// @Tags         timers
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Timer ID"
// @Param        body  body      renameTimerRequest  true  "New name"
// @Success      200   {object}  interval_timer.Timer
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/timers/{id} [patch]
// @Security     BearerAuth
func (h *Handler) renameTimer(c *gin.Context) {
	var req renameTimerRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.services.Timers.Rename(ctx, id, *req.Name); err != nil {
		h.serviceError(c, errSaveTimer, "timer_rename_failed", err, "timer_id", id)
		return
	}
	t, err := h.services.Timers.Get(ctx, id)
	if err != nil {
		h.serviceError(c, errLoadTimers, "timer_get_failed", err, "timer_id", id)
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary      Delete timer
// @Tags         timers
// @Param        id   path  string  true  "Timer ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/timers/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteTimer(c *gin.Context) {
	if err := h.services.Timers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.serviceError(c, errSaveTimer, "timer_delete_failed", err, "timer_id", c.Param("id"))
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Add step
// @Description  Missing fields take the editor defaults: 0:10, no repeat, 1 iteration, no gap.
// @Tags         timers
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true   "Timer ID"
// @Param        body  body      interval_timer.TimerStep  false  "Step"
// @Success      201   {object}  interval_timer.TimerStep
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/timers/{id}/steps [post]
// @Security     BearerAuth
func (h *Handler) addStep(c *gin.Context) {
	step := interval_timer.NewStep("")
	if c.Request.ContentLength != 0 {
		if ok := h.bindJSONOrBadRequest(c, &step); !ok {
			return
		}
	}
	saved, err := h.services.Timers.AddStep(c.Request.Context(), c.Param("id"), step)
	if err != nil {
		h.serviceError(c, errSaveTimer, "step_add_failed", err, "timer_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// @Summary      Update step
// @Tags         timers
// @Accept       json
// @Produce      json
// @Param        id      path      string                    true  "Timer ID"
// @Param        stepId  path      string                    true  "Step ID"
// @Param        body    body      interval_timer.TimerStep  true  "Step"
// @Success      200     {object}  interval_timer.TimerStep
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /api/v1/timers/{id}/steps/{stepId} [put]
// @Security     BearerAuth
func (h *Handler) updateStep(c *gin.Context) {
	var step interval_timer.TimerStep
	if ok := h.bindJSONOrBadRequest(c, &step); !ok {
		return
	}
	step.ID = c.Param("stepId")
	saved, err := h.services.Timers.UpdateStep(c.Request.Context(), c.Param("id"), step)
	if err != nil {
		h.serviceError(c, errSaveTimer, "step_update_failed", err, "timer_id", c.Param("id"), "step_id", step.ID)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// @Summary      Delete step
// @Tags         timers
// @Param        id      path  string  true  "Timer ID"
// @Param        stepId  path  string  true  "Step ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/timers/{id}/steps/{stepId} [delete]
// @Security     BearerAuth
func (h *Handler) deleteStep(c *gin.Context) {
	err := h.services.Timers.DeleteStep(c.Request.Context(), c.Param("id"), c.Param("stepId"))
	if err != nil {
		h.serviceError(c, errSaveTimer, "step_delete_failed", err, "timer_id", c.Param("id"), "step_id", c.Param("stepId"))
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Import timer
// @Description  Creates a new timer from a YAML document with name and steps.
// @Tags         timers
// @Accept       plain
// @Produce      json
// @Success      201  {object}  interval_timer.Timer
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/timers/import [post]
// @Security     BearerAuth
func (h *Handler) importTimer(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	defer func() { _ = body.Close() }()

	t, err := h.services.Timers.Import(c.Request.Context(), body)
	if err != nil {
		h.serviceError(c, errSaveTimer, "timer_import_failed", err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// @Summary      Export timer
// @Tags         timers
// @Produce      plain
// @Param        id   path      string  true  "Timer ID"
// @Success      200  {string}  string  "YAML document"
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/timers/{id}/export [get]
// @Security     BearerAuth
func (h *Handler) exportTimer(c *gin.Context) {
	id := c.Param("id")
	out, err := h.services.Timers.Export(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, errLoadTimers, "timer_export_failed", err, "timer_id", id)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="timer-`+id+`.yaml"`)
	c.Data(http.StatusOK, "application/yaml", out)
}
