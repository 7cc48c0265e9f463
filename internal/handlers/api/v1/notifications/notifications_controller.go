// file: internal/handlers/api/v1/notifications/notifications_controller.go
package notifications

import (
	"net/http"

	"letsconnect/internal/handlers/api/v1/apiutil"
	"letsconnect/internal/response"
	"letsconnect/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxNotificationBody = 8 << 10

// NotificationController handles the caller's notifications
type NotificationController struct {
	notifications   services.NotificationService
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewNotificationController creates a new notification API controller
func NewNotificationController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *NotificationController {
	return &NotificationController{
		notifications:   serviceCollection.Notification,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// Routes registers the notification endpoints
func (c *NotificationController) Routes(r chi.Router) {
	r.Post("/", c.CreateNotification)
	r.Get("/", c.ListNotifications)
	r.Put("/{id}/read", c.MarkRead)
	r.Delete("/{id}", c.DeleteNotification)
}

// CreateNotification handles POST /api/v1/notifications (admin)
func (c *NotificationController) CreateNotification(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	var req services.CreateNotificationRequest
	if err := apiutil.DecodeJSON(w, r, &req, maxNotificationBody); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	n, err := c.notifications.CreateNotification(r.Context(), pr, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteCreated(w, r, "Notification Created Successfully", n)
}

// ListNotifications handles GET /api/v1/notifications?page=&limit=
func (c *NotificationController) ListNotifications(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req, err := response.ParseListRequest(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	result, err := c.notifications.ListNotifications(r.Context(), pr, req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	response.WriteList(c.responseBuilder, w, r, result)
}

// MarkRead handles PUT /api/v1/notifications/{id}/read
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	msg, err := c.notifications.MarkRead(r.Context(), pr, apiutil.Param(r, "id"))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, http.StatusOK, msg.Message)
}

// DeleteNotification handles DELETE /api/v1/notifications/{id}
func (c *NotificationController) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	msg, err := c.notifications.DeleteNotification(r.Context(), pr, apiutil.Param(r, "id"))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, http.StatusOK, msg.Message)
}
