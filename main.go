package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wellness-ops-backend/config"
	"wellness-ops-backend/database"
	"wellness-ops-backend/firebase"
	"wellness-ops-backend/jobs"
	"wellness-ops-backend/logger"
	"wellness-ops-backend/middleware"
	"wellness-ops-backend/notifications"
	"wellness-ops-backend/routes"
	"wellness-ops-backend/services"
	"wellness-ops-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load environment variables
	if err := config.LoadEnv(); err != nil {
		slog.Error("error loading .env file", "error", err)
		os.Exit(1)
	}

	// Validate critical environment variables
	if err := config.ValidateEnv(); err != nil {
		slog.Error("environment validation failed", "error", err)
		os.Exit(1)
	}

	cfg := config.Load()
	log := logger.New(cfg.Server.Env)
	slog.SetDefault(log)
	if err := utils.RegisterValidators(); err != nil {
		log.Error("failed to register validators", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Connect(cfg.Database, cfg.Server.IsDevelopment())
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Create default admin user if not exists
	if _, err := database.CreateDefaultAdmin(db, cfg.Admin, log); err != nil {
		log.Warn("could not create default admin", "error", err)
	}

	var storageClient firebase.StorageClient
	if cfg.Storage.Bucket != "" {
		app, err := firebase.Init(ctx, cfg.Storage, log)
		if err != nil {
			log.Warn("document storage disabled", "error", err)
		} else {
			storageClient = firebase.NewStorageClient(app, cfg.Storage.Bucket, log)
		}
	}

	mailer := notifications.NewMailer(cfg.Email, log)
	feedback := notifications.NewFeedbackDispatcher(cfg.WhatsApp, log)

	otpService := services.NewOTPService(db, mailer, log)
	closingService := services.NewClosingService(db, log)
	archiveService := services.NewArchiveService(db)

	var scheduler *jobs.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler, err = jobs.New(cfg.Scheduler, otpService, closingService, log)
		if err != nil {
			log.Error("failed to configure scheduler", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
	}

	// Setup Gin router
	if !cfg.Server.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	// Limit multipart form memory to 10MB
	r.MaxMultipartMemory = 10 << 20

	origins := cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
		log.Warn("no CORS origins configured, defaulting to http://localhost:3000")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	routes.SetupRoutes(r, routes.Deps{
		DB:          db,
		Config:      cfg,
		Mailer:      mailer,
		Feedback:    feedback,
		Storage:     storageClient,
		OTP:         otpService,
		Closing:     closingService,
		Archive:     archiveService,
		AuthLimiter: middleware.NewRateLimiter(ctx, 10, time.Minute),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	// Run server in a goroutine
	go func() {
		log.Info("server starting", "port", cfg.Server.Port, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	log.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}

	// Close database connection
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("error closing database connection", "error", err)
		} else {
			log.Info("database connection closed")
		}
	}

	log.Info("server exited gracefully")
}
