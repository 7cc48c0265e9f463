// file: internal/repositories/collection.go
package repositories

import (
	"context"
	"fmt"
	"time"

	"letsconnect/internal/database"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection
type Collection struct {
	// Document store
	Content ContentStore

	// Relational repositories
	User         UserRepository
	Follow       FollowRepository
	Notification NotificationRepository
	Report       ReportRepository

	db     *database.Manager
	mongo  *database.Mongo
	logger *zap.Logger
}

// NewCollection creates a repository collection over Postgres and MongoDB
func NewCollection(db *database.Manager, mongoDB *database.Mongo, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if mongoDB == nil {
		return nil, fmt.Errorf("mongo client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	collection := &Collection{
		Content:      NewMongoContentStore(mongoDB, logger),
		User:         NewUserRepository(db, logger),
		Follow:       NewFollowRepository(db, logger),
		Notification: NewNotificationRepository(db, logger),
		Report:       NewReportRepository(db, logger),
		db:           db,
		mongo:        mongoDB,
		logger:       logger,
	}

	logger.Info("Repository collection initialized successfully",
		zap.String("content_store", "mongo"),
		zap.String("relational_store", "postgres"),
	)
	return collection, nil
}

// NewMemoryCollection creates a collection held entirely in process
func NewMemoryCollection(logger *zap.Logger) *Collection {
	if logger == nil {
		logger = zap.NewNop()
	}

	rel := newMemoryRelational()
	return &Collection{
		Content:      NewMemoryContentStore(),
		User:         memoryUserRepository{rel},
		Follow:       memoryFollowRepository{rel},
		Notification: memoryNotificationRepository{rel},
		Report:       memoryReportRepository{rel},
		logger:       logger,
	}
}

// ===============================
// HEALTH AND MONITORING
// ===============================

// HealthCheck probes every backing store
func (c *Collection) HealthCheck(ctx context.Context) map[string]interface{} {
	health := make(map[string]interface{})
	if c.db == nil && c.mongo == nil {
		health["storage"] = map[string]interface{}{"status": database.StatusHealthy, "provider": "memory"}
		return health
	}

	const timeout = 5 * time.Second
	if c.db != nil {
		status := database.Check(ctx, c.db, timeout)
		metrics := c.db.Metrics()
		health["postgres"] = map[string]interface{}{
			"status":             status.Status,
			"response_time":      status.ResponseTime,
			"error":              status.Error,
			"query_count":        metrics.QueryCount,
			"error_count":        metrics.ErrorCount,
			"slow_query_count":   metrics.SlowQueryCount,
			"avg_query_duration": metrics.AvgQueryDuration,
		}
		c.warnUnhealthy("postgres", status)
	}
	if c.mongo != nil {
		status := database.Check(ctx, c.mongo, timeout)
		health["mongo"] = status
		c.warnUnhealthy("mongo", status)
	}
	return health
}

// Healthy reports whether every store answered its probe
func (c *Collection) Healthy(ctx context.Context) bool {
	return ReportHealthy(c.HealthCheck(ctx))
}

// ReportHealthy reports whether every entry of a HealthCheck result is healthy
func ReportHealthy(report map[string]interface{}) bool {
	for _, v := range report {
		switch s := v.(type) {
		case *database.HealthStatus:
			if s.Status != database.StatusHealthy {
				return false
			}
		case map[string]interface{}:
			if s["status"] != database.StatusHealthy {
				return false
			}
		}
	}
	return true
}

func (c *Collection) warnUnhealthy(store string, status *database.HealthStatus) {
	if status.Status == database.StatusHealthy {
		return
	}
	c.logger.Warn("Store health check failed",
		zap.String("store", store),
		zap.String("error", status.Error),
		zap.Duration("duration", status.ResponseTime),
	)
}

// Close closes all store connections
func (c *Collection) Close() error {
	c.logger.Info("Closing repository collection")

	var firstErr error
	if c.mongo != nil {
		if err := c.mongo.Close(); err != nil {
			firstErr = err
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
