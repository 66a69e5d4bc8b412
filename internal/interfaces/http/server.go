// internal/interfaces/http/server.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/catalog"
	"github.com/your-org/storefront/internal/infrastructure/database/postgres"
	redisdb "github.com/your-org/storefront/internal/infrastructure/database/redis"
	"github.com/your-org/storefront/internal/interfaces/http/handlers"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
	"github.com/your-org/storefront/internal/interfaces/http/routes"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	logger      *logrus.Logger
	gin         *gin.Engine
	httpServer  *http.Server
	db          *postgres.Database
	redisClient *redisdb.Client
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, logger *logrus.Logger, db *postgres.Database, redisClient *redisdb.Client) *Server {
	return &Server{
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
	}
}

// Start builds the router and serves until Stop is called
func (s *Server) Start() error {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	s.gin = gin.New()
	if err := s.gin.SetTrustedProxies(s.config.Security.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted proxies: %w", err)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.logger.Infof("🚀 HTTP Server starting on port %s", s.config.Server.Port)
	s.logger.Infof("🌐 API Base URL: http://localhost:%s/api/v1", s.config.Server.Port)
	s.logger.Infof("📊 Health Check: http://localhost:%s/health", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("🛑 Shutting down HTTP server...")
	if s.httpServer == nil {
		return nil
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("✅ HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.RateLimit(s.config, s.redisClient.GetClient(), s.logger))
	s.gin.Use(middleware.RequestSizeLimit(1 << 20)) // product imports are the largest bodies
	s.gin.Use(middleware.Timeout(30 * time.Second))
}

// setupRoutes wires repositories, services and handlers, then registers routes
func (s *Server) setupRoutes() {
	var products catalog.Repository = catalog.NewGormRepository(s.db.GetDB())
	if s.config.Catalog.CacheTTL > 0 {
		products = redisdb.NewCatalogCache(s.redisClient, products, s.config.Catalog.CacheTTL, s.logger)
	}
	catalogService := catalog.NewService(products, s.logger)

	cartRepo := cart.NewRedisRepository(s.redisClient.GetClient(), s.config.Cart.SessionTTL)
	cartService := cart.NewService(cartRepo, catalogService, s.config, s.logger)

	health := handlers.NewHealthHandler(s.config, map[string]handlers.HealthChecker{
		"database": s.db,
		"redis":    s.redisClient,
	})
	s.gin.GET("/health", health.Health)
	s.gin.GET("/ready", health.Ready)

	apiV1 := s.gin.Group("/api/v1")
	routes.SetupRoutes(apiV1, &routes.Handlers{
		Catalog: handlers.NewCatalogHandler(catalogService),
		Cart:    handlers.NewCartHandler(cartService, s.config),
	}, s.config)

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     s.config.App.Name,
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"endpoints": gin.H{
					"products": "/api/v1/products",
					"cart":     "/api/v1/cart",
					"admin":    "/api/v1/admin",
				},
			})
		})
	}
}
