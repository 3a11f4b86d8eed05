package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	_ "github.com/noah-isme/driving-lesson-api/api/swagger"
	"github.com/noah-isme/driving-lesson-api/internal/handler"
	"github.com/noah-isme/driving-lesson-api/internal/integrations/geocoding"
	"github.com/noah-isme/driving-lesson-api/internal/integrations/notification"
	"github.com/noah-isme/driving-lesson-api/internal/integrations/payment"
	"github.com/noah-isme/driving-lesson-api/internal/repository"
	"github.com/noah-isme/driving-lesson-api/internal/scheduling"
	"github.com/noah-isme/driving-lesson-api/internal/service"
	"github.com/noah-isme/driving-lesson-api/pkg/cache"
	"github.com/noah-isme/driving-lesson-api/pkg/config"
	"github.com/noah-isme/driving-lesson-api/pkg/database"
	"github.com/noah-isme/driving-lesson-api/pkg/jobs"
	"github.com/noah-isme/driving-lesson-api/pkg/logger"
	"github.com/noah-isme/driving-lesson-api/pkg/tracing"
)

// @title Driving Lesson API
// @version 1.0.0
// @description Instructor availability, slot resolution and lesson plan booking.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logr.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	checks := map[string]handler.Pinger{"postgres": handler.PingFunc(db.PingContext)}

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		redisRepo := repository.NewCacheRepository(client, logr)
		defer redisRepo.Close() //nolint:errcheck
		cacheRepo = redisRepo
		checks["redis"] = handler.PingFunc(redisRepo.Ping)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metrics, cfg.Cache.AvailabilityTTL, logr, cfg.Cache.Enabled)

	catalog := scheduling.DefaultCatalog()
	if len(cfg.Scheduling.TimeSlotCatalog) > 0 {
		catalog, err = scheduling.NewCatalog(cfg.Scheduling.TimeSlotCatalog)
		if err != nil {
			return fmt.Errorf("time slot catalog: %w", err)
		}
	}
	loc := cfg.Scheduling.Location()

	instructorRepo := repository.NewInstructorRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	exceptionRepo := repository.NewBlockExceptionRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)

	availabilityService := service.NewAvailabilityService(
		instructorRepo,
		availabilityRepo,
		exceptionRepo,
		cacheService,
		service.AvailabilityConfig{Catalog: catalog, CacheTTL: cfg.Cache.AvailabilityTTL},
		validate,
		logr,
	)
	scheduleService := service.NewScheduleService(availabilityService, metrics, service.ScheduleConfig{
		MaxScanDays:     cfg.Scheduling.MaxScanDays,
		MaxCalendarDays: cfg.Scheduling.MaxCalendarDays,
	}, logr)
	instructorService := service.NewInstructorService(instructorRepo, availabilityService, metrics, service.InstructorSearchConfig{
		DefaultRadiusKm: cfg.Scheduling.DefaultRadiusKm,
		MaxRadiusKm:     cfg.Scheduling.MaxRadiusKm,
		Concurrency:     cfg.Scheduling.MatchConcurrency,
	}, validate, logr)

	jobRouter := jobs.NewRouter()
	notificationQueue := jobs.NewQueue("notifications", jobRouter.Dispatch, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		JobTimeout: cfg.Notifications.JobTimeout,
		Logger:     logr,
	})
	notificationService := service.NewNotificationService(notificationQueue, notification.NewLogNotifier(logr), metrics, logr)
	notificationService.Register(jobRouter)
	notificationQueue.Start(ctx)
	defer notificationQueue.Stop()

	payments, err := paymentClient(cfg.Payment)
	if err != nil {
		return err
	}

	geocodingService := service.NewGeocodingService(nil, cacheService, cfg.Cache.GeocodeTTL, metrics, validate, logr)
	if cfg.Geocoder.URL != "" {
		client := geocoding.NewClient(cfg.Geocoder.URL, cfg.Geocoder.Timeout, cfg.Geocoder.UserAgent)
		geocodingService = service.NewGeocodingService(client, cacheService, cfg.Cache.GeocodeTTL, metrics, validate, logr)
	}

	bookingService := service.NewBookingService(
		instructorRepo,
		bookingRepo,
		scheduleService,
		service.NewSlotAllocator(allocationRepo, metrics, logr),
		payments,
		availabilityService,
		notificationService,
		metrics,
		service.BookingConfig{Currency: cfg.Payment.Currency, CheckoutTTL: cfg.Checkout.TTL, Location: loc},
		validate,
		logr,
	)

	adminHandler := handler.NewAdminHandler(nil, metrics)
	if cfg.AdminTables.Enabled {
		tables := service.NewAdminTableService(repository.NewTableRepository(db), cacheService, validate, logr)
		adminHandler = handler.NewAdminHandler(tables, metrics)
	}

	var promMetrics *service.MetricsService
	if cfg.Metrics.Enabled {
		promMetrics = metrics
	}

	router := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Metrics:        promMetrics,
		Tokens:         service.NewTokenService(cfg.JWT),
		Instructors:    instructorService,
		Health:         handler.NewMetricsHandler(promMetrics, checks),
		Directory:      handler.NewInstructorHandler(instructorService, scheduleService, loc),
		Availability:   handler.NewAvailabilityHandler(availabilityService, loc),
		Bookings:       handler.NewBookingHandler(bookingService),
		Geocode:        handler.NewGeocodeHandler(geocodingService),
		Admin:          adminHandler,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           otelhttp.NewHandler(router, cfg.Tracing.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func paymentClient(cfg config.PaymentConfig) (payment.Client, error) {
	switch cfg.Provider {
	case config.PaymentProviderStripe:
		if cfg.StripeKey == "" {
			return nil, errors.New("payment: STRIPE_SECRET_KEY is required for the stripe provider")
		}
		return payment.NewStripeClient(cfg.StripeKey, cfg.SigningSecret), nil
	case config.PaymentProviderNoop, "":
		return payment.NewNoopClient(cfg.SigningSecret), nil
	default:
		return nil, fmt.Errorf("payment: unknown provider %q", cfg.Provider)
	}
}
