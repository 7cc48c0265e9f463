package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"letsconnect/internal/cache"
	"letsconnect/internal/config"
	"letsconnect/internal/database"
	"letsconnect/internal/events"
	"letsconnect/internal/media"
	"letsconnect/internal/middleware"
	"letsconnect/internal/repositories"
	"letsconnect/internal/response"
	"letsconnect/internal/router"
	"letsconnect/internal/services"
	"letsconnect/internal/utils/appinfo"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting LetsConnect API",
		zap.String("version", appinfo.Version()),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Stores
	repos, err := initRepositories(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}

	// Cache
	cacheInstance, err := cache.NewCache(&cache.Config{
		Provider:        cfg.Cache.Provider,
		TTL:             cfg.Cache.DefaultTTL,
		CleanupInterval: time.Minute,
		RedisURL:        cfg.Cache.RedisURL,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		PoolSize:        cfg.Cache.PoolSize,
	}, logger.Named("cache"))
	if err != nil {
		logger.Fatal("Failed to create cache", zap.Error(err))
	}

	// Media store
	mediaStore, err := media.NewStore(&cfg.Cloudinary, logger.Named("media"))
	if err != nil {
		logger.Fatal("Failed to initialize media store", zap.Error(err))
	}

	// Event bus
	eventBus := events.NewEventBus(events.DefaultEventBusConfig(), logger.Named("events"))
	if err := eventBus.Start(context.Background()); err != nil {
		logger.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Services
	serviceCollection, err := services.NewServiceCollection(repos, cacheInstance, eventBus, mediaStore, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	// Response builder and router
	responseConfig := response.DefaultConfig()
	responseConfig.PrettyJSON = cfg.IsDevelopment()
	responseBuilder := response.NewBuilder(responseConfig, logger.Named("http"))

	rateLimiter := middleware.NewRateLimiter(cacheInstance, cfg.RateLimit, responseBuilder, logger.Named("ratelimit"))
	handler := router.SetupRouter(serviceCollection, rateLimiter, responseBuilder, logger)

	// HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Graceful shutdown setup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	sig := <-quit
	logger.Info("Shutting down application...", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		logger.Info("Server shutdown completed")
	}

	if err := serviceCollection.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to release resources", zap.Error(err))
	}

	logger.Info("Application shutdown completed")
}

// initRepositories opens Postgres and MongoDB, or an in-process store when
// STORE_PROVIDER=memory.
func initRepositories(cfg *config.Config, logger *zap.Logger) (*repositories.Collection, error) {
	if cfg.Mongo.Provider == "memory" {
		logger.Warn("Using in-memory stores, data will not survive a restart")
		return repositories.NewMemoryCollection(logger.Named("repositories")), nil
	}

	dbManager, err := database.NewManager(&cfg.Database, logger.Named("postgres"))
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := dbManager.Migrate(cfg.Database.MigrationsPath); err != nil {
			dbManager.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	mongoDB, err := database.NewMongo(&cfg.Mongo, logger.Named("mongo"))
	if err != nil {
		dbManager.Close()
		return nil, fmt.Errorf("mongo: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
	defer cancel()
	if err := mongoDB.EnsureIndexes(ctx); err != nil {
		mongoDB.Close()
		dbManager.Close()
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}

	return repositories.NewCollection(dbManager, mongoDB, logger.Named("repositories"))
}

// initLogger initializes the structured logger from the logging config
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Logging.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	return zapConfig.Build()
}
