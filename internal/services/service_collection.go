// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"
	"time"

	"letsconnect/internal/cache"
	"letsconnect/internal/config"
	"letsconnect/internal/database"
	"letsconnect/internal/events"
	"letsconnect/internal/media"
	"letsconnect/internal/repositories"
	"letsconnect/internal/utils/appinfo"

	"go.uber.org/zap"
)

// ServiceCollection holds every service with its dependencies wired
type ServiceCollection struct {
	// Core Services
	Engagement   EngagementService
	Post         PostService
	Gallery      GalleryService
	Event        EventService
	Auth         AuthService
	User         UserService
	Notification NotificationService
	Report       ReportService
	Stats        StatsService

	// Infrastructure Components
	Repositories *repositories.Collection
	Cache        cache.Cache
	EventBus     events.EventBus
	Media        media.Store
	Logger       *zap.Logger
	Config       *config.Config

	startTime time.Time
}

// ServiceHealth represents the health status of the service collection
type ServiceHealth struct {
	Status       string                   `json:"status"`
	Timestamp    time.Time                `json:"timestamp"`
	Dependencies map[string]ServiceStatus `json:"dependencies"`
	Uptime       string                   `json:"uptime"`
	Version      string                   `json:"version"`
	Issues       []string                 `json:"issues,omitempty"`
}

// ServiceStatus represents the status of one dependency
type ServiceStatus struct {
	Name     string                 `json:"name"`
	Status   string                 `json:"status"`
	Error    string                 `json:"error,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewServiceCollection wires the services over the given infrastructure and
// subscribes the notification handlers to the event bus.
func NewServiceCollection(
	repos *repositories.Collection,
	c cache.Cache,
	bus events.EventBus,
	store media.Store,
	cfg *config.Config,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if repos == nil {
		return nil, fmt.Errorf("repository collection is required")
	}
	if bus == nil {
		return nil, fmt.Errorf("event bus is required")
	}
	if store == nil {
		return nil, fmt.Errorf("media store is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	files := newFileService(store, media.NewValidator(&cfg.Cloudinary), logger.Named("files"))

	engagementCfg := DefaultEngagementConfig()
	if cfg.Mongo.ConflictRetries > 0 {
		engagementCfg.ConflictRetries = cfg.Mongo.ConflictRetries
	}
	if cfg.Pagination.CommentsPerPage > 0 {
		engagementCfg.CommentsPerPage = cfg.Pagination.CommentsPerPage
	}
	if cfg.Pagination.MaxLimit > 0 {
		engagementCfg.MaxPageSize = cfg.Pagination.MaxLimit
	}

	auth := NewAuthService(repos.User, c, logger.Named("auth"), cfg.Auth)
	sc := &ServiceCollection{
		Engagement:   NewEngagementService(repos.Content, bus, logger.Named("engagement"), engagementCfg),
		Post:         NewPostService(repos.Content, repos.Follow, files, logger.Named("posts"), cfg.Pagination),
		Gallery:      NewGalleryService(repos.Content, files, logger.Named("gallery"), cfg.Pagination),
		Event:        NewEventService(repos.Content, files, logger.Named("events"), cfg.Pagination),
		Auth:         auth,
		User:         NewUserService(repos.User, repos.Follow, auth, files, bus, logger.Named("users"), cfg.Pagination),
		Notification: NewNotificationService(repos.Notification, repos.User, logger.Named("notifications"), cfg.Pagination),
		Report:       NewReportService(repos.Report, repos.Content, logger.Named("reports"), cfg.Pagination),
		Stats:        NewStatsService(repos.User, repos.Content, logger.Named("stats")),
		Repositories: repos,
		Cache:        c,
		EventBus:     bus,
		Media:        store,
		Logger:       logger,
		Config:       cfg,
		startTime:    time.Now(),
	}

	if err := sc.Notification.Subscribe(bus); err != nil {
		return nil, fmt.Errorf("failed to subscribe notification handlers: %w", err)
	}

	logger.Info("Service collection initialized")
	return sc, nil
}

// ===============================
// HEALTH AND LIFECYCLE
// ===============================

// HealthCheck probes the stores, the cache and the event bus
func (sc *ServiceCollection) HealthCheck(ctx context.Context) *ServiceHealth {
	health := &ServiceHealth{
		Status:       database.StatusHealthy,
		Timestamp:    time.Now(),
		Dependencies: make(map[string]ServiceStatus),
		Uptime:       time.Since(sc.startTime).Round(time.Second).String(),
		Version:      appinfo.Version(),
	}

	record := func(name string, err error, meta map[string]interface{}) {
		status := ServiceStatus{Name: name, Status: database.StatusHealthy, Metadata: meta}
		if err != nil {
			status.Status = database.StatusUnhealthy
			status.Error = err.Error()
			health.Issues = append(health.Issues, fmt.Sprintf("%s: %s", name, err))
		}
		health.Dependencies[name] = status
	}

	var storeErr error
	stores := sc.Repositories.HealthCheck(ctx)
	if !repositories.ReportHealthy(stores) {
		storeErr = fmt.Errorf("one or more stores did not answer")
	}
	record("storage", storeErr, stores)

	if sc.Cache != nil {
		record("cache", sc.Cache.Health(ctx), nil)
	}
	stats := sc.EventBus.Stats()
	record("event_bus", sc.EventBus.Health(), map[string]interface{}{
		"events_published": stats.EventsPublished,
		"events_failed":    stats.EventsFailed,
		"queue_depth":      stats.QueueDepth,
	})

	if len(health.Issues) > 0 {
		health.Status = database.StatusUnhealthy
		sc.Logger.Warn("Health check found issues", zap.Strings("issues", health.Issues))
	}
	return health
}

// Shutdown stops the event bus and closes every store
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("Shutting down service collection")

	var firstErr error
	if err := sc.EventBus.Stop(ctx); err != nil {
		sc.Logger.Error("Failed to stop event bus", zap.Error(err))
		firstErr = err
	}
	if sc.Cache != nil {
		if err := sc.Cache.Close(); err != nil {
			sc.Logger.Error("Failed to close cache", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if err := sc.Repositories.Close(); err != nil {
		sc.Logger.Error("Failed to close repositories", zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
