package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/application"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/events"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/handler"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/identity"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/notification"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/photostore"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/health"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/repository"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the cleanup consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName, zap.String("port", cfg.Port))

	// Connect to database
	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Initialize photo store
	photos, err := photostore.Open(ctx, cfg.PhotoConfig)
	if err != nil {
		return err
	}
	if err := photos.EnsureDirectory(ctx); err != nil {
		return err
	}
	log.Info("photo store ready", zap.String("driver", string(photos.Driver())))

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.SessionTTL, cfg.JWTConfig.PersistentTTL)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize mail
	var notifier application.Notifier = notification.NewLogSender(log)
	if cfg.MailConfig.SMTPURL != "" {
		mail, err := notification.NewMailSender(cfg.MailConfig.SMTPURL, cfg.MailConfig.From, log)
		if err != nil {
			return err
		}
		notifier = mail
	}

	// Initialize application services
	m := metrics.New(prometheus.DefaultRegisterer)
	gw := repository.NewGateway(db)
	directory := identity.NewDirectory(db, jwtManager, identity.Options{}, log)
	lookupService := application.NewLookupService(gw, cfg.LookupCacheTTL, log)
	catalogService := application.NewCatalogService(gw, lookupService, log)
	animalService := application.NewAnimalService(gw, photos, kafkaProducer, m,
		application.AnimalServiceOptions{RejectUnsupportedPhotos: cfg.PhotoConfig.RejectUnsupported}, log)
	registrationService := application.NewRegistrationService(directory, gw, lookupService, notifier, kafkaProducer, m,
		application.RegistrationOptions{
			RequireConfirmedAccount: cfg.RequireConfirmedAccount,
			PublicBaseURL:           cfg.MailConfig.PublicBaseURL,
		}, log)

	// Start cleanup consumer in a goroutine
	cleanupConsumer := events.NewCleanupConsumer(
		cfg.KafkaConfig.Brokers,
		cfg.KafkaConfig.GroupPrefix+"cleanup",
		photos,
		directory,
		log,
	)
	defer func() { _ = cleanupConsumer.Close() }()

	go func() {
		log.Info("starting cleanup consumer")
		if err := cleanupConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("cleanup consumer error", zap.Error(err))
		}
	}()

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	health.NewHandler(db, serviceName).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.NewAnimalHandler(animalService, lookupService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewCatalogHandler(catalogService, lookupService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewRegistrationHandler(registrationService).RegisterRoutes(&router.RouterGroup)
	handler.NewAdminHandler(animalService, lookupService).RegisterRoutes(&router.RouterGroup, jwtManager)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		log.Error("HTTP server error", zap.Error(err))
	case <-ctx.Done():
	}

	log.Info("shutting down " + serviceName)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
	return nil
}
