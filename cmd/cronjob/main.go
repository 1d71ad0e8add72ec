package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"safesite-backend/internal/config"
	"safesite-backend/internal/jobs"
	"safesite-backend/internal/logger"
	"safesite-backend/internal/repository"
	"safesite-backend/internal/repository/memory"
	"safesite-backend/internal/repository/postgres"
	"safesite-backend/internal/scheduler"
	"safesite-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'pending-reminders')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting SafeSite Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Request Store
	var store repository.RequestStore
	switch cfg.Storage.Type {
	case "postgres":
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Error("Failed to ping database", "error", err)
			log.Fatalf("Failed to ping database: %v", err)
		}
		logger.Info("Database connection established")
		store = postgres.NewStore(db)
	default:
		// A memory store is empty in a fresh process; reminders only make
		// sense against the shared Postgres store.
		logger.Warn("Using in-memory request store; reminder digests will be empty")
		store = memory.NewStore()
	}

	// Initialize Email Service
	var emailSvc service.EmailService
	if cfg.Email.Provider == "sendgrid" {
		emailSvc = service.NewSendGridEmailService(cfg.Email.SendGridAPIKey, cfg.Email.From)
	} else {
		emailSvc = service.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.From,
		)
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store, emailSvc, cfg)

	// Run-once mode for manual execution
	if *runOnce != "" {
		switch *runOnce {
		case "pending-reminders":
			jobRunner.SendPendingReminders()
		default:
			log.Fatalf("Unknown job: %s", *runOnce)
		}
		return
	}

	// Start the scheduler and wait for shutdown
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	sched.Stop()
}
