// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront/internal/infrastructure/database/redis"
	"github.com/your-org/storefront/internal/interfaces/http"
	"github.com/your-org/storefront/internal/pkg/logger"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger.Infof("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	db, err := postgres.NewConnection(cfg, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient, err := redis.NewConnection(cfg, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	migration := postgres.NewMigration(db.GetDB(), appLogger)

	if err := migration.RunAutoMigrations(); err != nil {
		appLogger.Fatalf("Database migration failed: %v", err)
	}

	if err := migration.CreateIndexes(); err != nil {
		appLogger.Warnf("Index creation failed: %v", err)
	}

	// Seed demo catalog in development
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(context.Background()); err != nil {
			appLogger.Warnf("Data seeding failed: %v", err)
		}
		if _, err := migration.GetTableInfo(context.Background()); err != nil {
			appLogger.Warnf("Failed to read table info: %v", err)
		}
	}

	appLogger.Info("✅ All systems operational!")

	server := http.NewServer(cfg, appLogger, db, redisClient)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("👋 Shutting down gracefully...")

		// Give server 30 seconds to shutdown gracefully
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Errorf("Server exited with error: %v", err)
		return
	}

	appLogger.Info("✅ Server shutdown completed")
}
