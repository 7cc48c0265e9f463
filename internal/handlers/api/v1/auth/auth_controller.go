// file: internal/handlers/api/v1/auth/auth_controller.go
package auth

import (
	"net/http"

	"letsconnect/internal/contextutils"
	"letsconnect/internal/handlers/api/v1/apiutil"
	"letsconnect/internal/response"
	"letsconnect/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxAuthBody bounds credential request bodies
const maxAuthBody = 16 << 10

// AuthController handles registration, login and token refresh
type AuthController struct {
	auth            services.AuthService
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewAuthController creates a new authentication controller
func NewAuthController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *AuthController {
	return &AuthController{
		auth:            serviceCollection.Auth,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// Routes registers the public authentication endpoints
func (c *AuthController) Routes(r chi.Router) {
	r.Post("/register", c.Register)
	r.Post("/login", c.Login)
	r.Post("/refresh", c.Refresh)
}

// ===============================
// AUTHENTICATION ENDPOINTS
// ===============================

// Register handles user registration - POST /api/v1/auth/register
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := apiutil.DecodeJSON(w, r, &req, maxAuthBody); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	user, err := c.auth.Register(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	contextutils.Logger(r.Context(), c.logger).Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)
	c.responseBuilder.WriteCreated(w, r, "User Registered Successfully", user)
}

// Login handles user authentication - POST /api/v1/auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := apiutil.DecodeJSON(w, r, &req, maxAuthBody); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	authResp, err := c.auth.Login(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteData(w, r, http.StatusOK, authResp)
}

// Refresh issues a new token pair - POST /api/v1/auth/refresh
func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	var req services.RefreshRequest
	if err := apiutil.DecodeJSON(w, r, &req, maxAuthBody); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	tokens, err := c.auth.Refresh(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteData(w, r, http.StatusOK, tokens)
}
