package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dimitrije/teamforge-api/internal/config"
	"github.com/dimitrije/teamforge-api/internal/handlers"
	"github.com/dimitrije/teamforge-api/internal/hub"
	"github.com/dimitrije/teamforge-api/internal/jobs"
	"github.com/dimitrije/teamforge-api/internal/logger"
	authmw "github.com/dimitrije/teamforge-api/internal/middleware"
	"github.com/dimitrije/teamforge-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Must(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		Development: !cfg.IsProduction(),
	})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, closeStores, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.String("store", cfg.Store), zap.Error(err))
	}
	defer closeStores()

	eventHub := hub.NewHub()
	emailService := services.NewEmailService(cfg.SMTP)
	notificationService := services.NewNotificationService(stores, eventHub, emailService, cfg.BaseURL, log)

	var checker services.URLChecker
	if cfg.Submission.CheckReachability {
		checker = services.NewHTTPChecker(cfg.Submission.CheckTimeout)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry)
	userService := services.NewUserService(stores)
	hackathonService := services.NewHackathonService(stores, log)
	teamService := services.NewTeamService(stores, notificationService, eventHub, log)
	requestService := services.NewRequestService(stores, notificationService, eventHub, log)
	pollService := services.NewPollService(stores, notificationService, eventHub, log)
	submissionService := services.NewSubmissionService(stores, checker, notificationService, log)
	reconcileService := services.NewReconcileService(stores, teamService, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	scheduler := jobs.NewScheduler(registry, log)
	scheduler.Add(jobs.NewRequestExpiry(requestService), cfg.Jobs.RequestSweepInterval)
	scheduler.Add(jobs.NewPollExpiry(pollService), cfg.Jobs.PollSweepInterval)
	scheduler.Add(jobs.NewReconcile(reconcileService), cfg.Jobs.ReconcileInterval)
	scheduler.Add(jobs.NewRandomBackfill(pollService), cfg.Jobs.BackfillInterval)

	var workers sync.WaitGroup
	workers.Add(3)
	go func() {
		defer workers.Done()
		eventHub.Run(ctx)
	}()
	go func() {
		defer workers.Done()
		notificationService.Run(ctx)
	}()
	go func() {
		defer workers.Done()
		if err := scheduler.Run(ctx); err != nil {
			log.Error("scheduler stopped", zap.Error(err))
		}
	}()

	teamHandler := handlers.NewTeamHandler(teamService, log)
	requestHandler := handlers.NewRequestHandler(requestService, log)
	pollHandler := handlers.NewPollHandler(pollService, log)
	submissionHandler := handlers.NewSubmissionHandler(submissionService, log)
	hackathonHandler := handlers.NewHackathonHandler(hackathonService, log)
	userHandler := handlers.NewUserHandler(userService, log)
	notificationHandler := handlers.NewNotificationHandler(notificationService, log)
	eventsHandler := handlers.NewEventsHandler(eventHub)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Get("/users/me", userHandler.GetMe)
	protected.Get("/events", eventsHandler.Connect)

	protected.Get("/hackathons/:hackathonId", hackathonHandler.Get)
	protected.Post("/hackathons/:hackathonId/register", hackathonHandler.Register)
	protected.Get("/hackathons/:hackathonId/teams", teamHandler.List)
	protected.Post("/hackathons/:hackathonId/teams", teamHandler.Create)

	protected.Get("/teams/:teamId", teamHandler.Get)
	protected.Post("/teams/:teamId/leave", teamHandler.Leave)
	protected.Post("/teams/:teamId/finalize", teamHandler.Finalize)
	protected.Post("/teams/:teamId/transfer", teamHandler.TransferOwnership)
	protected.Post("/teams/:teamId/join-requests", requestHandler.SendJoinRequest)
	protected.Get("/teams/:teamId/join-requests", requestHandler.PendingJoinRequests)
	protected.Post("/teams/:teamId/invitations", requestHandler.SendInvitation)

	protected.Get("/requests/incoming", requestHandler.Incoming)
	protected.Get("/requests/outgoing", requestHandler.Outgoing)
	protected.Post("/requests/:requestId/respond", requestHandler.Respond)
	protected.Post("/requests/:requestId/cancel", requestHandler.Cancel)

	protected.Post("/teams/:teamId/polls", pollHandler.Start)
	protected.Get("/teams/:teamId/polls/active", pollHandler.Active)
	protected.Post("/teams/:teamId/polls/conclude", pollHandler.Conclude)
	protected.Post("/polls/:pollId/votes", pollHandler.Vote)
	protected.Post("/teams/:teamId/problem", pollHandler.SelectProblem)
	protected.Get("/teams/:teamId/problem", pollHandler.Selection)

	protected.Post("/teams/:teamId/submission", submissionHandler.Submit)
	protected.Get("/teams/:teamId/submission", submissionHandler.Get)

	protected.Get("/notifications", notificationHandler.List)
	protected.Post("/notifications/:notificationId/read", notificationHandler.MarkRead)

	admin := api.Group("/admin")
	admin.Use(authmw.Auth(jwtService))
	admin.Use(authmw.RequireAdmin())
	admin.Post("/users", userHandler.Create)
	admin.Post("/hackathons", hackathonHandler.Create)
	admin.Post("/hackathons/:hackathonId/teams", teamHandler.AdminCreate)
	admin.Post("/teams/:teamId/problem", pollHandler.Assign)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("metrics listener starting", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics listener failed", zap.Error(err))
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("server starting", zap.String("addr", addr), zap.String("store", cfg.Store))
		if err := app.Run(addr); err != nil {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("metrics listener shutdown", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		workers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warn("background workers did not stop in time")
	}
}
