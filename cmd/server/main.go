package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	httpapi "safesite-backend/internal/api/http"
	"safesite-backend/internal/config"
	"safesite-backend/internal/identity"
	"safesite-backend/internal/logger"
	"safesite-backend/internal/repository"
	"safesite-backend/internal/repository/memory"
	"safesite-backend/internal/repository/postgres"
	"safesite-backend/internal/roles"
	"safesite-backend/internal/security"
	"safesite-backend/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting SafeSite Approval Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Identity configuration", "provider", cfg.Identity.Provider)

	// Initialize Request Store
	var store repository.RequestStore
	switch cfg.Storage.Type {
	case "postgres":
		logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
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
		logger.Info("Using in-memory request store (state is volatile)")
		store = memory.NewStore()
	}

	// Initialize Role Resolver and Security
	resolver := roles.NewResolver(cfg.Approval.AdminEmails)
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)
	authMW := httpapi.NewAuthMiddleware(tokenManager, resolver)

	// Initialize Identity Provider
	hub := identity.NewHub()
	hub.Subscribe(func(evt identity.Event) {
		if evt.Session != nil {
			role := resolver.Resolve(evt.Session.Email)
			logger.Info("Session changed", "event", evt.Type, "email", evt.Session.Email, "role", roles.DisplayName(role))
			return
		}
		logger.Info("Session changed", "event", evt.Type)
	})

	var provider identity.Provider
	if cfg.Identity.Provider == "supabase" {
		provider = identity.NewSupabaseProvider(cfg.Identity.BaseURL, cfg.Identity.AnonKey, hub)
	} else {
		logger.Info("Using local identity provider (accounts are volatile)")
		provider = identity.NewLocalProvider(tokenManager, resolver, hub)
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

	// Initialize Services
	callTimeout := time.Duration(cfg.Identity.CallTimeoutSeconds) * time.Second
	approvalSvc := service.NewApprovalService(store, provider, emailSvc, callTimeout)
	sessionSvc := service.NewSessionService(provider, resolver, callTimeout)

	// Seed the pre-approved allow-list
	if err := approvalSvc.SeedApproved(context.Background(), cfg.Approval.ApprovedEmails); err != nil {
		logger.Error("Failed to seed approved emails", "error", err)
		log.Fatalf("Failed to seed approved emails: %v", err)
	}
	logger.Info("Approved allow-list seeded", "count", len(cfg.Approval.ApprovedEmails))

	// Initialize HTTP handlers
	regHandler := httpapi.NewRegistrationHandler(approvalSvc, sessionSvc)
	adminHandler := httpapi.NewAdminHandler(approvalSvc)
	router := httpapi.NewRouter(regHandler, adminHandler, authMW)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("Failed to serve HTTP", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
