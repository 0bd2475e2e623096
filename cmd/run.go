package cmd

import (
	"context"
	"fmt"
	"time"

	"eddies/bot"
	"eddies/config"
	"eddies/database"
	"eddies/domain/interfaces"
	"eddies/infrastructure"
	"eddies/infrastructure/observability"
	"eddies/repository"
	"eddies/scheduler"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting eddies bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Run pending migrations
	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.WithError(err).Warn("Failed to initialize metrics, continuing without them")
	}

	// Initialize NATS. A failed connection is not fatal: domain events
	// still drive local handlers, they just stop being forwarded.
	log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	natsConnected := true
	if err := natsClient.Connect(ctx); err != nil {
		natsConnected = false
		log.WithError(err).Warn("NATS unavailable, events will not be forwarded")
	}

	eventPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
	if natsConnected {
		if err := eventPublisher.EnsureDomainEventStream(); err != nil {
			log.WithError(err).Warn("Failed to ensure domain event stream")
		}
	}
	infrastructure.RegisterMetricsHandlers(eventPublisher, observability.GetMetrics())

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, func() interfaces.TransactionalEventPublisher {
		return infrastructure.NewTransactionalPublisher(eventPublisher)
	})

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(cfg, uowFactory)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	// Start the recurring jobs
	sched := scheduler.New(cfg, uowFactory, discordBot)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Wait for context cancellation
	log.WithField("environment", cfg.Environment).Info("Bot is running...")
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down bot...")

	sched.Stop()

	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}

	if natsConnected {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}
