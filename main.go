// File: agendai/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agendai/config"
	"agendai/cron"
	"agendai/database"
	appointmentRepo "agendai/database/repository/appointment"
	businessRepo "agendai/database/repository/business"
	serviceRepo "agendai/database/repository/service"
	userRepo "agendai/database/repository/user"
	"agendai/handlers"
	"agendai/models"
	"agendai/routes"
	"agendai/services/booking"
	"agendai/services/conversation"
	"agendai/services/extract"
	"agendai/services/tasks"
	"agendai/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()

	// Background lifecycles (sweepers, health monitor) hang off this
	// context and stop on shutdown.
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	// Session store.
	sessionStore := conversation.NewDefaultSessionStore(
		utils.GetSessionCacheClient(),
		time.Duration(config.AppConfig.SessionTTLMinutes)*time.Minute,
		config.AppConfig.SessionHistoryLimit,
	)
	sessionStore.StartSweeper(bgCtx, time.Duration(config.AppConfig.SessionSweepSeconds)*time.Second)

	// Repositories.
	users := userRepo.NewPostgresUserRepo(database.Pool)
	businesses := businessRepo.NewPostgresBusinessRepo(database.Pool)
	services := serviceRepo.NewPostgresServiceRepo(database.Pool)
	appointments := appointmentRepo.NewPostgresAppointmentRepo(database.Pool)
	seedCatalog(businesses, services, logger)

	// Booking workflow engine.
	committer := appointmentRepo.NewPostgresBookingCommitter(database.Pool)
	reminders := tasks.NewAsynqReminderScheduler(time.Duration(config.AppConfig.ReminderLeadMinutes) * time.Minute)
	defer reminders.Close()

	engine := booking.NewDefaultEngine(booking.EngineConfig{
		IdleTimeout: time.Duration(config.AppConfig.BookingIdleMinutes) * time.Minute,
		MaxAge:      time.Duration(config.AppConfig.BookingMaxAgeMin) * time.Minute,
		MaxSessions: config.AppConfig.BookingMaxSessions,
		MaxAttempts: config.AppConfig.BookingMaxAttempts,
	}, committer, sessionStore, reminders)
	engine.StartSweeper(bgCtx, time.Duration(config.AppConfig.BookingSweepSeconds)*time.Second)

	// Reminder worker and health monitor.
	cron.InitReminderWorker()
	utils.StartHealthMonitor(bgCtx, utils.GetSessionCacheClient(), database.Pool)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	webhookHandler := handlers.NewWebhookHandler(sessionStore, engine, users, appointments, businesses, services, logger)
	routes.RegisterRoutes(router, webhookHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	bgCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// seedCatalog makes sure the booking transaction always finds a business
// row and the recognized services exist in the catalog. Idempotent.
func seedCatalog(businesses businessRepo.BusinessRepository, services serviceRepo.ServiceRepository, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	biz, err := businesses.GetDefault(ctx)
	if errors.Is(err, businessRepo.ErrNotFound) {
		biz = &models.Business{Name: "Agendaí"}
		err = businesses.Create(ctx, biz)
	}
	if err != nil {
		logger.Sugar().Fatalf("main: failed to seed default business: %v", err)
	}

	for _, name := range extract.KnownServices() {
		if _, err := services.GetOrCreateByName(ctx, biz.ID, name); err != nil {
			logger.Sugar().Fatalf("main: failed to seed service %q: %v", name, err)
		}
	}
}
