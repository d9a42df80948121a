package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/rgoodall/taskly-api/internal/config"
	"github.com/rgoodall/taskly-api/internal/platform/mailer"
	"github.com/rgoodall/taskly-api/internal/platform/postgres"
	"github.com/rgoodall/taskly-api/internal/service"
	"github.com/rgoodall/taskly-api/internal/service/auth"
	"github.com/rgoodall/taskly-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore store.UserStore
	taskStore store.TaskStore

	// Service interfaces
	jwtService  auth.JWTService
	hasher      *auth.BcryptHasher
	resetTokens auth.ResetTokenGenerator
	mailer      mailer.Mailer
	taskService service.TaskService
}

// newApplication creates a new application instance with all dependencies
// initialized. The configuration, logger, and database connection must be
// established before application initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.resetTokens, err = auth.NewResetTokenGenerator(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize reset token generator: %w", err)
	}

	app.hasher = auth.NewBcryptHasher(bcrypt.DefaultCost)
	app.mailer = mailer.NewSMTPMailer(cfg.Mail, logger)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	app.taskService, err = service.NewTaskService(app.taskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
