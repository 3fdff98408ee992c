package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dequr01/fair-ticket/internal/di"
	"github.com/Dequr01/fair-ticket/internal/metrics"
	"github.com/Dequr01/fair-ticket/internal/middleware"
	"github.com/Dequr01/fair-ticket/internal/publisher"
	"github.com/Dequr01/fair-ticket/pkg/config"
	"github.com/Dequr01/fair-ticket/pkg/database"
	"github.com/Dequr01/fair-ticket/pkg/logger"
	"github.com/Dequr01/fair-ticket/pkg/redis"
	"github.com/Dequr01/fair-ticket/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.App.Debug {
		logLevel = "debug"
	}
	logCfg := &logger.Config{
		Level:       logLevel,
		ServiceName: "fair-ticket",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting FairTicket service...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	} else if telemetryCfg.Enabled {
		appLog.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize metrics: %v", err))
	}

	// Postgres backs only the fact index; the service stays up without
	// it and /ready reports the gap.
	var db *database.PostgresDB
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
	}
	db, err = database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Warn(fmt.Sprintf("Database connection failed (index queries disabled): %v", err))
		db = nil
	} else {
		defer db.Close()
		appLog.Info("Database connected")
	}

	// Redis backs the short-lived challenge records; without it the
	// in-memory store takes over.
	var redisClient *redis.Client
	redisCfg := &redis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}
	redisClient, err = redis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed (in-memory challenges): %v", err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLog.Info(fmt.Sprintf("Redis connected (%s)", redisCfg.Addr()))
	}

	// Kafka carries the fact stream to the indexer. The in-memory
	// publisher keeps the service functional without a broker.
	var facts publisher.FactPublisher
	kafkaFacts, err := publisher.NewKafkaFactPublisher(ctx, &publisher.KafkaFactPublisherConfig{
		Brokers:  cfg.Kafka.Brokers,
		ClientID: cfg.Kafka.ClientID,
		Topic:    cfg.Kafka.FactsTopic,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed (facts kept in memory): %v", err))
		facts = publisher.NewMemoryFactPublisher()
	} else {
		defer kafkaFacts.Close()
		facts = kafkaFacts
		appLog.Info(fmt.Sprintf("Kafka connected (topic: %s)", cfg.Kafka.FactsTopic))
	}

	// Build dependency injection container
	container, err := di.NewContainer(ctx, &di.ContainerConfig{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Facts:  facts,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to build container: %v", err))
	}

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics())

	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware("fair-ticket"))
	}

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	auth := middleware.Auth(cfg.JWT.Secret)

	// API routes
	v1 := router.Group("/api/v1")
	{
		events := v1.Group("/events")
		{
			// Public reads
			events.GET("/:id", container.EventHandler.Get)
			events.GET("/:id/tickets", container.EventHandler.ListTickets)

			// Authenticated writes; fine-grained role checks live in
			// the service layer
			protected := events.Group("")
			protected.Use(auth)
			{
				protected.POST("", container.EventHandler.Create)
				protected.POST("/:id/activate", container.EventHandler.Activate)
				protected.POST("/:id/deactivate", container.EventHandler.Deactivate)
				protected.POST("/:id/tickets", container.TicketHandler.Mint)
				protected.POST("/:id/tickets/assign", container.TicketHandler.Assign)
			}
		}

		tickets := v1.Group("/tickets")
		{
			tickets.GET("/:id", container.TicketHandler.Get)

			protected := tickets.Group("")
			protected.Use(auth)
			{
				protected.PUT("/:id/metadata", container.TicketHandler.UpdateMetadata)
				protected.POST("/:id/challenge", container.VerifyHandler.IssueChallenge)
				protected.POST("/:id/verify", container.VerifyHandler.Verify)
				protected.POST("/:id/guest-checkin", container.VerifyHandler.GuestCheckIn)
			}
		}

		challenges := v1.Group("/challenges")
		challenges.Use(auth)
		{
			challenges.GET("/:id", container.VerifyHandler.GetChallenge)
		}

		organizers := v1.Group("/organizers")
		{
			organizers.GET("/:address/events", container.EventHandler.ListByOrganizer)
		}

		roles := v1.Group("/roles")
		roles.Use(auth)
		{
			roles.POST("", container.EventHandler.GrantRole)
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("FairTicket service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited")
}
