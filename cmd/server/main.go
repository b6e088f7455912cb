package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	httpapi "library-backend/internal/api/http"
	"library-backend/internal/config"
	"library-backend/internal/logger"
	"library-backend/internal/repository/postgres"
	"library-backend/internal/security"
	"library-backend/internal/service"

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
	logger.Info("Starting Library Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("SMTP configuration", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)
	repos := store.Repositories()

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)

	// Initialize Email Service
	emailSvc := service.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	// Initialize Services
	authSvc := service.NewAuthService(store.UserRepository, tokenManager, emailSvc)
	bookSvc := service.NewBookService(store.BookRepository, store.BorrowRepository)
	borrowSvc := service.NewBorrowService(store, repos, emailSvc, cfg.Policy)
	fineSvc := service.NewFineService(store, repos)
	userSvc := service.NewUserService(store.UserRepository, store.BorrowRepository, store.FineRepository, cfg.Policy)
	adminSvc := service.NewAdminService(store.UserRepository, store.BorrowRepository, store.FineRepository, store.NotificationRepository)
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	// Initialize HTTP Router
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Tokens:        tokenManager,
		Auth:          authSvc,
		Books:         bookSvc,
		Borrows:       borrowSvc,
		Fines:         fineSvc,
		Users:         userSvc,
		Admin:         adminSvc,
		Notifications: noteSvc,
	})

	// Start HTTP Server
	addr := cfg.GetServerAddress()
	logger.Info("HTTP server listening", "address", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Error("HTTP server failed", "error", err)
		log.Fatalf("HTTP server failed: %v", err)
	}
}
