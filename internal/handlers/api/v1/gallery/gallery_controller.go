// file: internal/handlers/api/v1/gallery/gallery_controller.go
package gallery

import (
	"net/http"

	"letsconnect/internal/engagement"
	"letsconnect/internal/handlers/api/v1/apiutil"
	"letsconnect/internal/handlers/api/v1/engagements"
	"letsconnect/internal/response"
	"letsconnect/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GalleryController handles gallery API endpoints
type GalleryController struct {
	gallery         services.GalleryService
	engagement      *engagements.EngagementController
	responseBuilder *response.Builder
	logger          *zap.Logger
	maxUploadBytes  int64
}

// NewGalleryController creates a new gallery API controller
func NewGalleryController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *GalleryController {
	return &GalleryController{
		gallery:         serviceCollection.Gallery,
		engagement:      engagements.NewEngagementController(serviceCollection.Engagement, engagement.KindGallery, responseBuilder, logger),
		responseBuilder: responseBuilder,
		logger:          logger,
		maxUploadBytes:  serviceCollection.Config.Server.MaxUploadBytes,
	}
}

// Routes registers the gallery endpoints
func (c *GalleryController) Routes(r chi.Router) {
	r.Post("/", c.CreateGallery)
	r.Get("/", c.ListGallery)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", c.GetGallery)
		r.Put("/", c.UpdateGallery)
		r.Delete("/", c.DeleteGallery)
		c.engagement.Routes(r)
	})
}

// CreateGallery handles POST /api/v1/gallery (multipart)
func (c *GalleryController) CreateGallery(w http.ResponseWriter, r *http.Request) {
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

	g, err := c.gallery.CreateGallery(r.Context(), pr, &services.CreateGalleryRequest{
		Title:         apiutil.FormValue(r, "title"),
		Category:      apiutil.FormValue(r, "category"),
		NewsType:      apiutil.FormValue(r, "newsType"),
		YouTubeURL:    apiutil.FormValue(r, "youTubeUrl"),
		AllowComments: apiutil.FlagOr(apiutil.YesNo(r, "allowComments"), true),
		AllowShares:   apiutil.FlagOr(apiutil.YesNo(r, "allowShares"), true),
		File:          file,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteCreated(w, r, "Gallery Post Created Successfully", g)
}

// GetGallery handles GET /api/v1/gallery/{id}
func (c *GalleryController) GetGallery(w http.ResponseWriter, r *http.Request) {
	g, err := c.gallery.GetGallery(r.Context(), apiutil.Param(r, engagements.ParamID))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteData(w, r, http.StatusOK, g)
}

// UpdateGallery handles PUT /api/v1/gallery/{id} (multipart, every field optional)
func (c *GalleryController) UpdateGallery(w http.ResponseWriter, r *http.Request) {
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

	_, err = c.gallery.UpdateGallery(r.Context(), pr, apiutil.Param(r, engagements.ParamID), &services.UpdateGalleryRequest{
		Title:         apiutil.FormString(r, "title"),
		Category:      apiutil.FormString(r, "category"),
		NewsType:      apiutil.FormString(r, "newsType"),
		YouTubeURL:    apiutil.FormString(r, "youTubeUrl"),
		AllowComments: apiutil.YesNo(r, "allowComments"),
		AllowShares:   apiutil.YesNo(r, "allowShares"),
		File:          file,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, http.StatusOK, "Gallery Post Updated Successfully")
}

// DeleteGallery handles DELETE /api/v1/gallery/{id}
func (c *GalleryController) DeleteGallery(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if err := c.gallery.DeleteGallery(r.Context(), pr, apiutil.Param(r, engagements.ParamID)); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, http.StatusOK, "Gallery Post Deleted Successfully")
}

// ListGallery handles GET /api/v1/gallery?category=&newsType=&search=&page=&limit=
func (c *GalleryController) ListGallery(w http.ResponseWriter, r *http.Request) {
	page, err := response.ParseListRequest(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	result, err := c.gallery.ListGallery(r.Context(), &services.GalleryListRequest{
		ListRequest: page,
		Category:    apiutil.Query(r, "category"),
		NewsType:    apiutil.Query(r, "newsType"),
		Search:      apiutil.Query(r, "search"),
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	response.WriteList(c.responseBuilder, w, r, result)
}
