// internal/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/database"
	"print-service/internal/handler"
	"print-service/internal/middleware"
	"print-service/internal/service"
	"print-service/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config          *config.Config
	logger          *zap.Logger
	db              *database.DB
	printerService  *service.PrinterService
	dispatchService *service.DispatchService
}

// NewRouter creates a new router instance
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	db *database.DB,
	printerService *service.PrinterService,
	dispatchService *service.DispatchService,
) *Router {
	return &Router{
		config:          config,
		logger:          logger,
		db:              db,
		printerService:  printerService,
		dispatchService: dispatchService,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	// Set Gin mode
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Create Gin engine
	router := gin.New()

	// Add middleware
	r.addMiddleware(router)

	// Add routes
	r.addRoutes(router)

	return router
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	// Recovery middleware
	router.Use(middleware.RecoveryMiddleware(r.logger))

	// Request ID middleware
	router.Use(middleware.RequestIDMiddleware())

	// Logging middleware
	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	// CORS middleware
	router.Use(middleware.CORSMiddleware(&r.config.Security))

	r.logger.Info("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	// Create handlers
	healthHandler := handler.NewHealthHandler(r.db, r.config, r.logger)
	printHandler := handler.NewPrintHandler(r.dispatchService, r.config, r.logger)
	printerHandler := handler.NewPrinterHandler(r.printerService, r.dispatchService, r.config, r.logger)
	dispatchHandler := handler.NewDispatchHandler(r.dispatchService, r.logger)
	wsHandler := handler.NewWSHandler(r.logger)

	// Dispatch outcomes stream to connected dashboards
	r.dispatchService.SetJobPublisher(wsHandler)

	// Health check routes (no auth required)
	r.addHealthRoutes(router, healthHandler)

	// Bridge wire protocol at the root, the way bridge clients expect it
	printHandler.RegisterRoutes(router)

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	printerHandler.RegisterRoutes(apiV1)
	dispatchHandler.RegisterRoutes(apiV1)

	// WebSocket routes
	r.addWebSocketRoutes(router, wsHandler)

	// Documentation routes
	r.addDocumentationRoutes(router)

	r.logger.Info("All routes configured successfully")
}

// addHealthRoutes sets up health check routes
func (r *Router) addHealthRoutes(router *gin.Engine, handler *handler.HealthHandler) {
	health := router.Group("")
	handler.RegisterRoutes(health)
}

// addWebSocketRoutes sets up WebSocket routes
func (r *Router) addWebSocketRoutes(router *gin.Engine, handler *handler.WSHandler) {
	ws := router.Group("/ws")
	handler.RegisterRoutes(ws)
}

// addDocumentationRoutes sets up documentation routes
func (r *Router) addDocumentationRoutes(router *gin.Engine) {
	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	// Swagger redirect for convenience
	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
}
