// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/database"
	"print-service/internal/relay"
	"print-service/internal/repository"
	"print-service/internal/routes"
	"print-service/internal/service"
	"print-service/internal/transport"
	"print-service/internal/utils"
)

// Application represents the main application
type Application struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	database *database.DB

	// Services
	printerService  *service.PrinterService
	dispatchService *service.DispatchService

	// Repositories
	printerRepo  repository.PrinterRepository
	categoryRepo repository.CategoryRepository
	orderRepo    repository.OrderRepository
}

// @title Print Service API
// @version 1.0.0
// @description Receipt and comanda printing service for restaurant POS systems
// @termsOfService http://swagger.io/terms/

// @contact.name Print Service API Support
// @contact.email support@printservice.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8086
// @BasePath /api/v1
func main() {
	// Initialize application
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	// Start the application
	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Create service logger
	serviceLogger := utils.NewServiceLogger(logger, "print-service")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	// Initialize components
	if err := app.initializeDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initializeRepositories(); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeDatabase sets up database connection and runs migrations
func (app *Application) initializeDatabase() error {
	// Create database connection
	db, err := database.NewConnection(app.config, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	app.database = db

	// Run migrations
	migrator := database.NewMigrator(db, app.logger)
	if err := migrator.Up(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	app.logger.Info("Database initialized successfully")
	return nil
}

// initializeRepositories creates repository instances
func (app *Application) initializeRepositories() error {
	app.printerRepo = repository.NewPrinterRepository(app.database, app.logger)
	app.categoryRepo = repository.NewCategoryRepository(app.database, app.logger)
	app.orderRepo = repository.NewOrderRepository(app.database, app.logger)

	app.logger.Info("Repositories initialized successfully")
	return nil
}

// initializeServices creates service instances
func (app *Application) initializeServices() error {
	// Create printer service
	app.printerService = service.NewPrinterService(
		app.printerRepo,
		app.categoryRepo,
		app.logger,
	)

	// Direct transport delivery
	sender := transport.NewSender(&app.config.Printing, app.logger)

	// Optional relay bridge; when configured it takes precedence over
	// direct delivery so payloads cross into the printer's network
	var forwarder service.RelayForwarder
	if app.config.Printing.RelayURL != "" {
		forwarder = relay.NewClient(
			app.config.Printing.RelayURL,
			app.config.Printing.SendTimeout,
			app.logger,
		)
		app.logger.Info("Relay bridge enabled",
			zap.String("relay_url", app.config.Printing.RelayURL),
		)
	}

	// Create dispatch service
	app.dispatchService = service.NewDispatchService(
		app.orderRepo,
		app.printerRepo,
		sender,
		forwarder,
		&app.config.Printing,
		app.logger,
	)

	app.logger.Info("Services initialized successfully")
	return nil
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() error {
	// Create router
	routerManager := routes.NewRouter(
		app.config,
		app.logger,
		app.database,
		app.printerService,
		app.dispatchService,
	)

	// Setup router with all routes
	router := routerManager.SetupRouter()

	// Create HTTP server
	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
	)

	return nil
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	// Create channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Wait for signal
	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	// Perform graceful shutdown
	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "print-service")
	serviceLogger.LogServiceStop("shutdown signal received")

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	// Close database connection
	if app.database != nil {
		if err := app.database.Close(); err != nil {
			app.logger.Error("Database close error", zap.Error(err))
		} else {
			app.logger.Info("Database connection closed")
		}
	}

	// Flush logger
	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}

	app.logger.Info("Application shutdown completed")
}

func (app *Application) Start() error {
	// Start server in goroutine
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()

	return nil
}
