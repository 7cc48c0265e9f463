// file: internal/router/router.go
package router

import (
	"context"
	"net/http"
	"time"

	"letsconnect/internal/database"
	"letsconnect/internal/handlers/api/v1/admin"
	"letsconnect/internal/handlers/api/v1/auth"
	"letsconnect/internal/handlers/api/v1/events"
	"letsconnect/internal/handlers/api/v1/gallery"
	"letsconnect/internal/handlers/api/v1/notifications"
	"letsconnect/internal/handlers/api/v1/posts"
	"letsconnect/internal/handlers/api/v1/reports"
	"letsconnect/internal/handlers/api/v1/users"
	"letsconnect/internal/middleware"
	"letsconnect/internal/response"
	"letsconnect/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const healthTimeout = 5 * time.Second

// SetupRouter builds the HTTP handler: the global middleware chain, the
// health probe and every /api/v1 route.
func SetupRouter(
	serviceCollection *services.ServiceCollection,
	rateLimiter *middleware.RateLimiter,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Order matters: RequestID first, Recovery wraps everything after logging.
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.StructuredLogging(logger))
	r.Use(middleware.Recovery(responseBuilder, logger))
	r.Use(middleware.CORS(serviceCollection.Config.Server.CORSOrigins))
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.RateLimit(rateLimiter))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responseBuilder.WriteStatus(w, r, http.StatusNotFound, "Route Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		responseBuilder.WriteStatus(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/health", healthHandler(serviceCollection, responseBuilder))

	authMiddleware := middleware.NewAuthMiddleware(serviceCollection.Auth, responseBuilder, logger)
	r.Route("/api/v1", func(r chi.Router) {
		addAPIv1Routes(r, serviceCollection, authMiddleware, responseBuilder, logger)
	})

	logger.Info("Router configured",
		zap.Strings("cors_origins", serviceCollection.Config.Server.CORSOrigins),
		zap.Bool("rate_limit", serviceCollection.Config.RateLimit.Enabled),
	)
	return r
}

// addAPIv1Routes mounts the controllers. Auth is public, everything else
// requires a bearer token; admin-only rules are enforced by the services.
func addAPIv1Routes(
	r chi.Router,
	serviceCollection *services.ServiceCollection,
	authMiddleware *middleware.AuthMiddleware,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) {
	r.Route("/auth", auth.NewAuthController(serviceCollection, logger, responseBuilder).Routes)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth())

		r.Route("/posts", posts.NewPostController(serviceCollection, logger, responseBuilder).Routes)
		r.Route("/gallery", gallery.NewGalleryController(serviceCollection, logger, responseBuilder).Routes)
		r.Route("/events", events.NewEventController(serviceCollection, logger, responseBuilder).Routes)
		r.Route("/users", users.NewUserController(serviceCollection, logger, responseBuilder).Routes)
		r.Route("/notifications", notifications.NewNotificationController(serviceCollection, logger, responseBuilder).Routes)
		r.Route("/reports", reports.NewReportController(serviceCollection, logger, responseBuilder).Routes)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(authMiddleware))
			admin.NewAdminController(serviceCollection, logger, responseBuilder).Routes(r)
		})
	})
}

// healthHandler reports dependency health; 503 when any dependency fails
func healthHandler(serviceCollection *services.ServiceCollection, responseBuilder *response.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		health := serviceCollection.HealthCheck(ctx)
		status := http.StatusOK
		if health.Status != database.StatusHealthy {
			status = http.StatusServiceUnavailable
		}
		responseBuilder.WriteJSON(w, r, status, health)
	}
}
