// file: internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"letsconnect/internal/contextutils"
	"letsconnect/internal/engagement"
	"letsconnect/internal/response"
	"letsconnect/internal/services"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// AuthMiddleware resolves bearer tokens to the calling principal
type AuthMiddleware struct {
	auth    services.AuthService
	builder *response.Builder
	logger  *zap.Logger
}

// NewAuthMiddleware creates the authentication middleware
func NewAuthMiddleware(auth services.AuthService, builder *response.Builder, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		auth:    auth,
		builder: builder,
		logger:  logger,
	}
}

// Authenticate places the principal in the request context when a valid
// token is presented. With required set, a missing or invalid token is
// answered with 401 and a banned account with 403.
func (am *AuthMiddleware) Authenticate(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				if required {
					am.builder.WriteStatus(w, r, http.StatusUnauthorized, "Authentication Required")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			pr, err := am.auth.Authenticate(r.Context(), token)
			if err != nil {
				if !required && services.GetServiceError(err).GetStatusCode() == http.StatusUnauthorized {
					next.ServeHTTP(w, r)
					return
				}
				contextutils.Logger(r.Context(), am.logger).Debug("Authentication failed", zap.Error(err))
				am.builder.WriteError(w, r, err)
				return
			}

			ctx := contextutils.WithPrincipal(r.Context(), pr)
			ctx = contextutils.WithLogger(ctx, contextutils.Logger(ctx, am.logger).With(zap.String("user_id", pr.ID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth requires authentication for the endpoint
func (am *AuthMiddleware) RequireAuth() func(http.Handler) http.Handler {
	return am.Authenticate(true)
}

// OptionalAuth provides optional authentication for the endpoint
func (am *AuthMiddleware) OptionalAuth() func(http.Handler) http.Handler {
	return am.Authenticate(false)
}

// RequireRole requires the authenticated principal to hold one of roles
func (am *AuthMiddleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pr, ok := contextutils.GetPrincipal(r.Context())
			if !ok {
				am.builder.WriteStatus(w, r, http.StatusUnauthorized, "Authentication Required")
				return
			}
			if !slices.Contains(roles, pr.Role) {
				am.builder.WriteError(w, r, services.NewAuthorizationError(
					"You Are Not Authorized For This Action", r.URL.Path, r.Method, pr.ID))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is RequireRole(admin)
func RequireAdmin(am *AuthMiddleware) func(http.Handler) http.Handler {
	return am.RequireRole(engagement.RoleAdmin)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
