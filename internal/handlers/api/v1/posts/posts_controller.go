// file: internal/handlers/api/v1/posts/posts_controller.go
package posts

import (
	"net/http"

	"letsconnect/internal/engagement"
	"letsconnect/internal/handlers/api/v1/apiutil"
	"letsconnect/internal/handlers/api/v1/engagements"
	"letsconnect/internal/models"
	"letsconnect/internal/response"
	"letsconnect/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PostController handles post API endpoints
type PostController struct {
	posts           services.PostService
	engagement      *engagements.EngagementController
	responseBuilder *response.Builder
	logger          *zap.Logger
	maxUploadBytes  int64
}

// NewPostController creates a new post API controller
func NewPostController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *PostController {
	return &PostController{
		posts:           serviceCollection.Post,
		engagement:      engagements.NewEngagementController(serviceCollection.Engagement, engagement.KindPost, responseBuilder, logger),
		responseBuilder: responseBuilder,
		logger:          logger,
		maxUploadBytes:  serviceCollection.Config.Server.MaxUploadBytes,
	}
}

// Routes registers the post endpoints
func (c *PostController) Routes(r chi.Router) {
	r.Post("/", c.CreatePost)
	r.Get("/", c.ListPosts)
	r.Get("/mine", c.ListMyPosts)
	r.Get("/popular", c.PopularPosts)
	r.Get("/following", c.FollowingFeed)
	r.Get("/users/{userId}", c.ListUserPosts)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", c.GetPost)
		r.Put("/", c.UpdatePost)
		r.Delete("/", c.DeletePost)
		c.engagement.Routes(r)
	})
}

// ===============================
// CORE CRUD OPERATIONS
// ===============================

// CreatePost handles POST /api/v1/posts (multipart)
func (c *PostController) CreatePost(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if err := apiutil.ParseForm(w, r, c.maxUploadBytes); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	file, err := apiutil.FormFile(r, "file")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	req := &services.CreatePostRequest{
		Content:       apiutil.FormValue(r, "content"),
		Category:      apiutil.FormValue(r, "category"),
		MediaType:     apiutil.FormValue(r, "mediaType"),
		AllowComments: apiutil.FlagOr(apiutil.YesNo(r, "allowComments"), true),
		AllowShares:   apiutil.FlagOr(apiutil.YesNo(r, "allowShares"), true),
		File:          file,
	}

	post, err := c.posts.CreatePost(r.Context(), pr, req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteCreated(w, r, "Post Created Successfully", post)
}

// GetPost handles GET /api/v1/posts/{id}
func (c *PostController) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := c.posts.GetPost(r.Context(), apiutil.Param(r, engagements.ParamID))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteData(w, r, http.StatusOK, post)
}

// UpdatePost handles PUT /api/v1/posts/{id} (multipart, every field optional)
func (c *PostController) UpdatePost(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if err := apiutil.ParseForm(w, r, c.maxUploadBytes); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	file, err := apiutil.FormFile(r, "file")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	req := &services.UpdatePostRequest{
		Content:       apiutil.FormString(r, "content"),
		Category:      apiutil.FormString(r, "category"),
		MediaType:     apiutil.FormString(r, "mediaType"),
		AllowComments: apiutil.YesNo(r, "allowComments"),
		AllowShares:   apiutil.YesNo(r, "allowShares"),
		File:          file,
	}

	if _, err := c.posts.UpdatePost(r.Context(), pr, apiutil.Param(r, engagements.ParamID), req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, http.StatusOK, "Post Updated Successfully")
}

// DeletePost handles DELETE /api/v1/posts/{id}
func (c *PostController) DeletePost(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if err := c.posts.DeletePost(r.Context(), pr, apiutil.Param(r, engagements.ParamID)); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, http.StatusOK, "Post Deleted Successfully")
}

// ===============================
// FEEDS
// ===============================

// ListPosts handles GET /api/v1/posts?category=&page=&limit=
func (c *PostController) ListPosts(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, func(req services.ListRequest) (*services.ListResult[*models.Post], error) {
		return c.posts.ListPosts(r.Context(), apiutil.Query(r, "category"), req)
	})
}

// ListMyPosts handles GET /api/v1/posts/mine
func (c *PostController) ListMyPosts(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.list(w, r, func(req services.ListRequest) (*services.ListResult[*models.Post], error) {
		return c.posts.ListUserPosts(r.Context(), pr.ID, req)
	})
}

// ListUserPosts handles GET /api/v1/posts/users/{userId}
func (c *PostController) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, func(req services.ListRequest) (*services.ListResult[*models.Post], error) {
		return c.posts.ListUserPosts(r.Context(), apiutil.Param(r, "userId"), req)
	})
}

// PopularPosts handles GET /api/v1/posts/popular
func (c *PostController) PopularPosts(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, func(req services.ListRequest) (*services.ListResult[*models.Post], error) {
		return c.posts.PopularPosts(r.Context(), req)
	})
}

// FollowingFeed handles GET /api/v1/posts/following
func (c *PostController) FollowingFeed(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.list(w, r, func(req services.ListRequest) (*services.ListResult[*models.Post], error) {
		return c.posts.FollowingFeed(r.Context(), pr, req)
	})
}

func (c *PostController) list(w http.ResponseWriter, r *http.Request, fetch func(services.ListRequest) (*services.ListResult[*models.Post], error)) {
	req, err := response.ParseListRequest(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	result, err := fetch(req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	response.WriteList(c.responseBuilder, w, r, result)
}

