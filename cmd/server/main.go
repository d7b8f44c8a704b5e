package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ahmadqo/club-certificate-engine/internal/cache"
	"github.com/ahmadqo/club-certificate-engine/internal/config"
	"github.com/ahmadqo/club-certificate-engine/internal/database"
	"github.com/ahmadqo/club-certificate-engine/internal/handler"
	"github.com/ahmadqo/club-certificate-engine/internal/metrics"
	"github.com/ahmadqo/club-certificate-engine/internal/repository"
	"github.com/ahmadqo/club-certificate-engine/internal/service"
	"github.com/ahmadqo/club-certificate-engine/internal/utils"
)

// @title           Club Certificate Engine API
// @version         1.0
// @description     Competition certificate issuance, download and public verification.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	logger := newLogger(cfg.Log)
	ctx := context.Background()

	// ── Database ─────────────────────────────────────
	db, err := database.Connect(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	logger.Info("database connected")

	if err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath, logger.WithField("component", "migrations")); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	seeder := database.NewSeeder(db, logger.WithField("component", "seeder"))
	if err := seeder.SeedAdminUser(ctx); err != nil {
		logger.WithError(err).Warn("seed failed")
	}

	// ── Metrics ──────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// ── Repositories ─────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)

	// ── Services ─────────────────────────────────────
	renderer := utils.NewCertificateRenderer(
		cfg.Certificate,
		utils.NewQREncoder(cfg.Certificate.QRRecoveryLevel, cfg.Certificate.QRSize),
	)
	opts := []service.Option{
		service.WithLogger(logger.WithField("component", "certificates")),
		service.WithMetrics(m),
	}

	if cfg.MinIO.Enabled {
		storage, err := utils.NewStorageService(ctx, &cfg.MinIO)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to MinIO")
		}
		opts = append(opts, service.WithArchive(storage))
		logger.WithField("bucket", cfg.MinIO.Bucket).Info("certificate archive enabled")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
		opts = append(opts, service.WithVerificationCache(cache.NewVerificationCache(redisClient, cfg.Redis.VerifyTTL)))
		logger.Info("verification cache enabled")
	}

	authService := service.NewAuthService(userRepo, cfg.JWT)
	certificateService := service.NewCertificateService(certificateRepo, registrationRepo, renderer, cfg.App.BaseURL, opts...)

	// ── Handlers ─────────────────────────────────────
	authHandler := handler.NewAuthHandler(authService, logger.WithField("component", "auth"))
	certificateHandler := handler.NewCertificateHandler(certificateService, logger.WithField("component", "http"))

	// ── Router ───────────────────────────────────────
	router := handler.NewRouter(
		authHandler,
		certificateHandler,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		cfg.JWT.Secret,
		cfg.App.AllowedOrigins,
	)

	// ── HTTP Server ──────────────────────────────────
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.App.Port),
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.App.Port, "env": cfg.App.Env}).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()

	<-quit
	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
		return
	}
	logger.Info("server stopped gracefully")
}

func newLogger(cfg config.LogConfig) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return logrus.NewEntry(l).WithField("service", "club-certificate-engine")
}
