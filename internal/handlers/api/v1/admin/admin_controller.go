// file: internal/handlers/api/v1/admin/admin_controller.go
package admin

import (
	"net/http"

	"letsconnect/internal/handlers/api/v1/apiutil"
	"letsconnect/internal/response"
	"letsconnect/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminController serves the admin dashboard and user moderation
type AdminController struct {
	stats           services.StatsService
	users           services.UserService
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewAdminController creates a new admin API controller
func NewAdminController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *AdminController {
	return &AdminController{
		stats:           serviceCollection.Stats,
		users:           serviceCollection.User,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// Routes registers the admin endpoints
func (c *AdminController) Routes(r chi.Router) {
	r.Get("/stats", c.Stats)
	r.Put("/users/{userId}/ban", c.ToggleBan)
	r.Put("/users/{userId}/role", c.ChangeRole)
}

// Stats handles GET /api/v1/admin/stats
func (c *AdminController) Stats(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	stats, err := c.stats.Overview(r.Context(), pr)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteData(w, r, http.StatusOK, stats)
}

// ToggleBan handles PUT /api/v1/admin/users/{userId}/ban
func (c *AdminController) ToggleBan(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	msg, err := c.users.ToggleBan(r.Context(), pr, apiutil.Param(r, "userId"))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, http.StatusOK, msg.Message)
}

// ChangeRole handles PUT /api/v1/admin/users/{userId}/role
func (c *AdminController) ChangeRole(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	var req services.ChangeRoleRequest
	if err := apiutil.DecodeJSON(w, r, &req, 1<<10); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	msg, err := c.users.ChangeRole(r.Context(), pr, apiutil.Param(r, "userId"), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, http.StatusOK, msg.Message)
}
