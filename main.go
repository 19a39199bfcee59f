package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reservo/config"
	"reservo/cron"
	"reservo/database"
	"reservo/database/repository"
	memoryRepo "reservo/database/repository/memory"
	"reservo/handlers"
	"reservo/middleware"
	"reservo/models"
	"reservo/routes"
	"reservo/services/availability"
	"reservo/services/booking"
	"reservo/services/events"
	"reservo/services/lock"
	"reservo/services/schedule"
	"reservo/services/tasks"
	"reservo/services/unavailability"
	"reservo/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	if err := config.LoadConfig(); err != nil {
		utils.GetLogger().Fatal("main: invalid configuration", zap.Error(err))
	}
	cfg := config.AppConfig
	utils.InitializeLogger(cfg.Env, cfg.LogLevel)
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTracing, err := utils.SetupTracing(ctx, utils.TracingConfig{
		Enabled:      cfg.OtelEnabled,
		ServiceName:  "reservo",
		OTLPEndpoint: cfg.OtelEndpoint,
		SampleRatio:  cfg.OtelSamplingRatio,
	})
	if err != nil {
		logger.Fatal("main: failed to set up tracing", zap.Error(err))
	}

	// Storage.
	var (
		tenants     repository.TenantResolver
		mongoClient *mongo.Client
	)
	switch cfg.StorageDriver {
	case "memory":
		logger.Warn("main: using in-memory storage; data is lost on restart")
		tenants = memoryRepo.NewTenants()
	default:
		mongoClient, err = database.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
		}
		tenants = repository.NewMongoTenants(mongoClient, cfg.TenantDBPrefix, logger)
	}

	// Locks, delayed tasks and events.
	var (
		locker       lock.Locker
		scheduler    tasks.Scheduler
		redisClients []*redis.Client
		asynqClient  *asynq.Client
		queueOpts    asynq.RedisClientOpt
	)
	if cfg.RedisAddr != "" {
		lockClient, err := utils.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisLockDB)
		if err != nil {
			logger.Fatal("main: failed to connect to Redis", zap.Error(err))
		}
		redisClients = append(redisClients, lockClient)
		locker = lock.NewRedisLocker(lockClient, cfg.LockTTL, cfg.LockWaitTimeout)

		queueOpts = asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisQueueDB,
		}
		asynqClient = asynq.NewClient(queueOpts)
		scheduler = tasks.NewAsynqScheduler(asynqClient)
	} else {
		logger.Warn("main: REDIS_ADDR not set; calendar locks are process-local and no-show checks are disabled")
		locker = lock.NewLocalLocker(cfg.LockWaitTimeout)
		scheduler = tasks.NopScheduler{}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		publisher = events.NewKafkaPublisher(brokers, cfg.KafkaTopic, logger)
	}

	// Services.
	engine := availability.NewEngine(availability.Policy{
		Timezone:               cfg.Timezone,
		WorkStart:              cfg.DefaultWorkStart,
		WorkEnd:                cfg.DefaultWorkEnd,
		DefaultServiceDuration: cfg.DefaultServiceDuration,
		MaxRangeDays:           cfg.MaxRangeDays,
		NextSlotsHorizonDays:   cfg.NextSlotsHorizonDays,
		FanoutLimit:            cfg.AvailabilityFanoutLimit,
		MaxOccurrences:         cfg.MaxRecurrenceOccurrences,
	}, logger)

	blockPolicy, err := unavailabilityPolicy(cfg)
	if err != nil {
		logger.Fatal("main: invalid unavailability policy", zap.Error(err))
	}

	bookingService := booking.NewService(engine, locker, publisher, scheduler, booking.Policy{
		AllowOffSlot:       cfg.AllowOffSlotBookings,
		AllowStaffOverride: cfg.AllowStaffOverride,
		AutoNoShow:         cfg.AutoNoShow && asynqClient != nil,
		NoShowGrace:        cfg.NoShowGrace,
	}, logger)
	scheduleService := schedule.NewService(engine, logger)
	blockService := unavailability.NewService(engine, locker, blockPolicy, logger)

	var worker *cron.NoShowWorker
	if asynqClient != nil {
		worker = cron.NewNoShowWorker(queueOpts, tenants, bookingService, logger)
		worker.Start()
	}

	health := utils.NewHealthMonitor(mongoClient, redisClients...)
	health.Start(ctx, 30*time.Second)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	handlerBundle := handlers.NewHandlerBundle(engine, bookingService, scheduleService, blockService, health)
	routes.RegisterRoutes(router, handlerBundle, tenants)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           otelhttp.NewHandler(router, "reservo"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}

	if worker != nil {
		worker.Shutdown()
	}
	if asynqClient != nil {
		_ = asynqClient.Close()
	}
	if err := publisher.Close(); err != nil {
		logger.Warn("main: failed to close event publisher", zap.Error(err))
	}
	for _, c := range redisClients {
		_ = c.Close()
	}
	if mongoClient != nil {
		_ = mongoClient.Disconnect(shutdownCtx)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("main: failed to flush traces", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// unavailabilityPolicy applies the configured limits over the defaults.
func unavailabilityPolicy(cfg config.Config) (unavailability.Policy, error) {
	p := unavailability.DefaultPolicy()
	for name, limit := range cfg.UnavailabilityLimits {
		if err := p.SetDuration(models.UnavailableType(name), limit.MinHours, limit.MaxHours); err != nil {
			return p, fmt.Errorf("UNAVAILABILITY_LIMITS: %w", err)
		}
	}
	for name, n := range cfg.MonthlyBlockLimits {
		if err := p.SetMonthlyLimit(models.UnavailableType(name), n); err != nil {
			return p, fmt.Errorf("MONTHLY_BLOCK_LIMITS: %w", err)
		}
	}
	if err := p.SetBusinessHours(cfg.BusinessHoursStart, cfg.BusinessHoursEnd); err != nil {
		return p, fmt.Errorf("business hours: %w", err)
	}
	p.CheckHorizonDays = cfg.RecurrenceCheckHorizonDays
	return p, nil
}
