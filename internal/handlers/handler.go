package handlers

import (
	"interval_timer/internal/broadcast"
	"interval_timer/internal/logger"
	"interval_timer/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options configures the parts of the HTTP layer that are not services.
type Options struct {
	// Hub receives WebSocket clients; nil disables announcement forwarding.
	Hub *broadcast.Hub
	// ControlRPS and ControlBurst throttle start/stop; zero RPS means unlimited.
	ControlRPS   float64
	ControlBurst int
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	hub      *broadcast.Hub
	control  *rate.Limiter
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	limit := rate.Inf
	if opts.ControlRPS > 0 {
		limit = rate.Limit(opts.ControlRPS)
	}
	burst := opts.ControlBurst
	if burst < 1 {
		burst = 1
	}
	return &Handler{
		services: services,
		hub:      opts.Hub,
		control:  rate.NewLimiter(limit, burst),
		log:      log,
	}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// State stream and voice sink channel, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerTimerRoutes(api)
		h.registerRunRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerTimerRoutes(api *gin.RouterGroup) {
	timers := api.Group("/timers")
	{
		timers.GET("", h.listTimers)
		timers.POST("", h.createTimer)
		// Body: YAML document, as produced by export
		timers.POST("/import", h.importTimer)
		timers.GET("/:id", h.getTimer)
		timers.PATCH("/:id", h.renameTimer)
		timers.DELETE("/:id", h.deleteTimer)
		timers.GET("/:id/export", h.exportTimer)
		timers.POST("/:id/start", h.controlLimitMiddleware, h.startTimer)

		timers.POST("/:id/steps", h.addStep)
		timers.PUT("/:id/steps/:stepId", h.updateStep)
		timers.DELETE("/:id/steps/:stepId", h.deleteStep)
	}
}

func (h *Handler) registerRunRoutes(api *gin.RouterGroup) {
	run := api.Group("/run")
	{
		run.POST("/stop", h.controlLimitMiddleware, h.stopRun)
		run.GET("/state", h.getRunState)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("", h.getLogs)
	}
}
