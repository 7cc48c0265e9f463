// file: internal/handlers/api/v1/users/users_controller.go
package users

import (
	"context"
	"net/http"

	"letsconnect/internal/engagement"
	"letsconnect/internal/handlers/api/v1/apiutil"
	"letsconnect/internal/models"
	"letsconnect/internal/response"
	"letsconnect/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserController handles profile and follow endpoints
type UserController struct {
	users           services.UserService
	logger          *zap.Logger
	responseBuilder *response.Builder
	maxUploadBytes  int64
}

// NewUserController creates a new user API controller
func NewUserController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *UserController {
	return &UserController{
		users:           serviceCollection.User,
		logger:          logger,
		responseBuilder: responseBuilder,
		maxUploadBytes:  serviceCollection.Config.Server.MaxUploadBytes,
	}
}

// Routes registers the user endpoints
func (c *UserController) Routes(r chi.Router) {
	r.Get("/me", c.GetMyProfile)
	r.Put("/me", c.UpdateProfile)
	r.Put("/me/show-points", c.toggle(c.users.ToggleShowPoints))
	r.Put("/me/show-badges", c.toggle(c.users.ToggleShowBadges))

	r.Get("/{userId}", c.GetProfile)
	r.Put("/{userId}/follow", c.ToggleFollow)
	r.Get("/{userId}/followers", c.listSummaries(c.users.Followers))
	r.Get("/{userId}/following", c.listSummaries(c.users.Following))
}

// ===============================
// PROFILE
// ===============================

// GetMyProfile handles GET /api/v1/users/me
func (c *UserController) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.writeProfile(w, r, pr.ID)
}

// GetProfile handles GET /api/v1/users/{userId}
func (c *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	c.writeProfile(w, r, apiutil.Param(r, "userId"))
}

func (c *UserController) writeProfile(w http.ResponseWriter, r *http.Request, id string) {
	user, err := c.users.GetProfile(r.Context(), id)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteData(w, r, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/v1/users/me (multipart with optional photo)
func (c *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if err := apiutil.ParseForm(w, r, c.maxUploadBytes); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	photo, err := apiutil.FormFile(r, "photo")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	user, err := c.users.UpdateProfile(r.Context(), pr, &services.UpdateProfileRequest{
		Name:        apiutil.FormString(r, "name"),
		Username:    apiutil.FormString(r, "username"),
		PhoneNumber: apiutil.FormString(r, "phoneNumber"),
		Gender:      apiutil.FormString(r, "gender"),
		Bio:         apiutil.FormString(r, "bio"),
		Photo:       photo,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteData(w, r, http.StatusOK, user)
}

// toggle serves the self-service profile flags
func (c *UserController) toggle(fn func(context.Context, engagement.Principal) (*services.MessageResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pr, err := apiutil.Principal(r)
		if err != nil {
			c.responseBuilder.WriteError(w, r, err)
			return
		}
		msg, err := fn(r.Context(), pr)
		if err != nil {
			c.responseBuilder.WriteError(w, r, err)
			return
		}
		c.responseBuilder.WriteMessage(w, r, http.StatusOK, msg.Message)
	}
}

// ===============================
// FOLLOW GRAPH
// ===============================

// ToggleFollow handles PUT /api/v1/users/{userId}/follow
func (c *UserController) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	msg, err := c.users.ToggleFollow(r.Context(), pr, apiutil.Param(r, "userId"))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, http.StatusOK, msg.Message)
}

// listSummaries serves GET /api/v1/users/{userId}/followers and /following
func (c *UserController) listSummaries(fetch func(context.Context, string, services.ListRequest) (*services.ListResult[models.UserSummary], error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := response.ParseListRequest(r)
		if err != nil {
			c.responseBuilder.WriteError(w, r, err)
			return
		}
		result, err := fetch(r.Context(), apiutil.Param(r, "userId"), req)
		if err != nil {
			c.responseBuilder.WriteError(w, r, err)
			return
		}
		response.WriteList(c.responseBuilder, w, r, result)
	}
}
