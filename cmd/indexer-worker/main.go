package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dequr01/fair-ticket/internal/repository"
	"github.com/Dequr01/fair-ticket/internal/worker"
	"github.com/Dequr01/fair-ticket/pkg/config"
	"github.com/Dequr01/fair-ticket/pkg/database"
	"github.com/Dequr01/fair-ticket/pkg/kafka"
	"github.com/Dequr01/fair-ticket/pkg/logger"
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
		ServiceName: "indexer-worker",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Fact Indexer Worker...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:          cfg.Database.Host,
		Port:          cfg.Database.Port,
		User:          cfg.Database.User,
		Password:      cfg.Database.Password,
		Database:      cfg.Database.DBName,
		SSLMode:       cfg.Database.SSLMode,
		MaxConns:      int32(cfg.Database.MaxOpenConns),
		MinConns:      int32(cfg.Database.MaxIdleConns),
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	// Initialize Kafka consumer
	consumerCfg := &kafka.ConsumerConfig{
		Brokers:       cfg.Kafka.Brokers,
		GroupID:       cfg.Kafka.ConsumerGroup,
		Topics:        []string{cfg.Kafka.FactsTopic},
		ClientID:      "indexer-worker",
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	}
	consumer, err := kafka.NewConsumer(ctx, consumerCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to create Kafka consumer: %v", err))
	}
	defer consumer.Close()
	appLog.Info(fmt.Sprintf("Kafka consumer connected (topic: %s)", cfg.Kafka.FactsTopic))

	// Create and start the indexer worker
	indexRepo := repository.NewPostgresIndexRepository(db)
	indexerWorker := worker.NewIndexerWorker(consumer, indexRepo)

	if err := indexerWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start indexer worker: %v", err))
	}

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down indexer worker...")

	cancel()
	indexerWorker.Stop()
	appLog.Info("Indexer worker exited")
}
