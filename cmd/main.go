package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "interval_timer/docs"
	"interval_timer/internal/announcer"
	"interval_timer/internal/broadcast"
	"interval_timer/internal/config"
	"interval_timer/internal/handlers"
	"interval_timer/internal/logger"
	"interval_timer/internal/repository"
	"interval_timer/internal/repository/db"
	"interval_timer/internal/server"
	"interval_timer/internal/service"
	"interval_timer/internal/wakelock"
)

//	@title						Interval Timer API
//	@version					1.0
//	@description				Stores workout interval timers and plays them with voice announcements.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.Log.Level)

	// open DB
	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	hub := broadcast.NewHub(log, 0)

	speaker := announcer.New(newVoiceSink(cfg.Announcer, hub, log), announcer.Options{
		Voice:     cfg.Announcer.Voice,
		VoiceWait: cfg.Announcer.VoiceWait,
	}, log)
	guard := wakelock.NewGuard(newWakeLockSink(cfg.WakeLock, log))
	controller := service.NewController(speaker, guard, nil, repos.EventRepo, log)
	unsubscribe := controller.Subscribe(func(s service.RunState) { hub.PublishState(s) })
	defer unsubscribe()

	services := service.NewService(repos, service.Deps{
		Runner:     controller,
		SigningKey: signingKey(cfg.Auth.SigningKey, log),
		TokenTTL:   cfg.Auth.TokenTTL,
	})
	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		Hub:          hub,
		ControlRPS:   cfg.HTTP.ControlRPS,
		ControlBurst: cfg.HTTP.ControlBurst,
	})

	// start HTTP server
	srv := server.New(server.Options{
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	})
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(controller, srv, cfg.ShutdownTimeout, log)
}

func newVoiceSink(cfg config.AnnouncerConfig, hub *broadcast.Hub, log *logger.Logger) announcer.Sink {
	if cfg.Sink == config.SinkLog {
		log.Infow("announcer writes to log", "voices", cfg.Voices)
		return announcer.NewLogSink(log, cfg.Voices...)
	}
	return hub
}

func newWakeLockSink(cfg config.WakeLockConfig, log *logger.Logger) wakelock.Sink {
	if cfg.Backend == config.WakeLockInhibit {
		log.Infow("wake lock via inhibitor", "command", cfg.Command)
		return wakelock.NewInhibitor(cfg.Command)
	}
	return wakelock.Unsupported{}
}

// signingKey falls back to a random per-process key, which invalidates tokens on restart.
func signingKey(configured string, log *logger.Logger) string {
	if configured != "" {
		return configured
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalw("failed to generate signing key", "err", err)
	}
	log.Warnw("auth.signing_key not set; using a random key for this process")
	return hex.EncodeToString(buf)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
	log.Infow("server started", "port", port)
}

// waitForShutdown listens for termination signals, stops the active run and
// drains the HTTP server.
func waitForShutdown(controller *service.Controller, srv *server.Server, timeout time.Duration, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// release the wake lock before the process goes away
	if err := controller.Stop(ctx); err != nil {
		log.Errorw("run did not stop in time", "err", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
