package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"spendwise/internal/ai"
	"spendwise/internal/amqp"
	"spendwise/internal/config"
	"spendwise/internal/email"
	"spendwise/internal/insights"
	"spendwise/internal/log"
	"spendwise/internal/monitor"
	"spendwise/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting budget-monitor")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if !cfg.EmailConfigured() {
		logger.Error("SMTP credentials are required for the budget monitor")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	mailer, err := email.NewMailer(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
	})
	if err != nil {
		logger.Error("Failed to initialize SMTP mailer", log.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	gemini := ai.NewGeminiClient(ai.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.AITimeout,
	})
	engine := insights.NewEngine(gemini)

	mon := monitor.New(repo, mailer, engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Queue-driven checks after each expense write.
	g.Go(func() error {
		return amqpClient.ConsumeBudgetChecks(ctx, func(msg *amqp.BudgetCheckMessage) error {
			return mon.CheckUser(ctx, msg.UserID)
		})
	})

	// Periodic sweep catches users whose checks were never enqueued.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.MonitorSweepInterval)
		defer ticker.Stop()

		if err := mon.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Initial sweep failed", log.FieldError, err)
		}
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := mon.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Periodic sweep failed", log.FieldError, err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Budget monitor stopped gracefully")
}
