// file: internal/services/gallery_service.go
package services

import (
	"context"
	"strings"
	"time"

	"letsconnect/internal/config"
	"letsconnect/internal/engagement"
	"letsconnect/internal/models"
	"letsconnect/internal/repositories"

	"go.uber.org/zap"
)

// galleryService implements GalleryService
type galleryService struct {
	gallery repositories.GalleryStore
	files   *fileService
	logger  *zap.Logger
	config  config.PaginationConfig
	now     func() time.Time
}

// NewGalleryService creates a new gallery service
func NewGalleryService(
	gallery repositories.GalleryStore,
	files *fileService,
	logger *zap.Logger,
	cfg config.PaginationConfig,
) GalleryService {
	return &galleryService{
		gallery: gallery,
		files:   files,
		logger:  logger,
		config:  cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// galleryUploadCategory is the blob category a gallery category stores.
// Videos are linked from YouTube and carry no file.
func galleryUploadCategory(category string) string {
	switch category {
	case "image":
		return "image"
	case "reel":
		return "video"
	}
	return ""
}

func (s *galleryService) authorize(pr engagement.Principal, action string) error {
	if !engagement.PolicyFor(engagement.KindGallery).CanCreate(pr, "") {
		return NewAuthorizationError("You Are Not Authorized For This Action", "gallery", action, pr.ID)
	}
	return nil
}

// CreateGallery creates a gallery post
func (s *galleryService) CreateGallery(ctx context.Context, pr engagement.Principal, req *CreateGalleryRequest) (*models.GalleryPost, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.authorize(pr, "create"); err != nil {
		return nil, err
	}

	g := &models.GalleryPost{
		Aggregate: engagement.NewAggregate(engagement.KindGallery, pr.ID),
		Title:     strings.ToLower(strings.TrimSpace(req.Title)),
		Category:  req.Category,
		NewsType:  req.NewsType,
	}
	g.AllowComments = req.AllowComments
	g.AllowShares = req.AllowShares

	if req.Category == "video" {
		if req.YouTubeURL == "" {
			return nil, NewValidationError("Please Enter a YouTube URL", nil)
		}
		g.YouTubeURL = req.YouTubeURL
	} else {
		m, err := s.files.upload(ctx, req.File, galleryUploadCategory(req.Category))
		if err != nil {
			return nil, err
		}
		g.Media = m
	}

	g.CreatedAt = s.now()
	g.UpdatedAt = g.CreatedAt
	if err := s.gallery.CreateGallery(ctx, g); err != nil {
		s.files.remove(ctx, g.Media)
		return nil, failure(s.logger, "create gallery post", err, "Gallery Post", "")
	}

	s.logger.Info("Gallery post created",
		zap.String("gallery_id", g.ID),
		zap.String("owner_id", pr.ID),
		zap.String("category", g.Category),
	)
	return g, nil
}

// GetGallery returns a gallery post without its comments
func (s *galleryService) GetGallery(ctx context.Context, id string) (*models.GalleryPost, error) {
	if err := checkContentID(engagement.KindGallery, id); err != nil {
		return nil, err
	}
	g, err := s.gallery.GetGallery(ctx, id)
	if err != nil {
		return nil, failure(s.logger, "get gallery post", err, "Gallery Post", id)
	}
	g.Comments = nil
	return g, nil
}

// UpdateGallery applies a partial update, replacing the stored file when a new one is sent
func (s *galleryService) UpdateGallery(ctx context.Context, pr engagement.Principal, id string, req *UpdateGalleryRequest) (*models.GalleryPost, error) {
	if err := checkContentID(engagement.KindGallery, id); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.authorize(pr, "update"); err != nil {
		return nil, err
	}

	g, err := s.gallery.GetGallery(ctx, id)
	if err != nil {
		return nil, failure(s.logger, "update gallery post", err, "Gallery Post", id)
	}

	if req.Title != nil {
		g.Title = strings.ToLower(strings.TrimSpace(*req.Title))
	}
	if req.Category != nil {
		g.Category = *req.Category
	}
	if req.NewsType != nil {
		g.NewsType = *req.NewsType
	}
	if req.YouTubeURL != nil {
		g.YouTubeURL = *req.YouTubeURL
	}
	if req.AllowComments != nil {
		g.AllowComments = *req.AllowComments
	}
	if req.AllowShares != nil {
		g.AllowShares = *req.AllowShares
	}

	old := g.Media
	switch {
	case g.Category == "video":
		if g.YouTubeURL == "" {
			return nil, NewValidationError("Please Enter a YouTube URL", nil)
		}
		g.Media = nil
	case req.File != nil:
		m, err := s.files.upload(ctx, req.File, galleryUploadCategory(g.Category))
		if err != nil {
			return nil, err
		}
		g.Media = m
		g.YouTubeURL = ""
	case g.Media == nil:
		return nil, NewValidationError("Please Upload a File", nil)
	}

	g.UpdatedAt = s.now()
	if err := s.gallery.UpdateGallery(ctx, g); err != nil {
		if g.Media != old {
			s.files.remove(ctx, g.Media)
		}
		return nil, failure(s.logger, "update gallery post", err, "Gallery Post", id)
	}
	if old != nil && g.Media != old {
		s.files.remove(ctx, old)
	}

	g.Comments = nil
	return g, nil
}

// DeleteGallery removes a gallery post and its stored file
func (s *galleryService) DeleteGallery(ctx context.Context, pr engagement.Principal, id string) error {
	if err := checkContentID(engagement.KindGallery, id); err != nil {
		return err
	}
	if err := s.authorize(pr, "delete"); err != nil {
		return err
	}

	g, err := s.gallery.GetGallery(ctx, id)
	if err != nil {
		return failure(s.logger, "delete gallery post", err, "Gallery Post", id)
	}
	if err := s.gallery.DeleteGallery(ctx, id); err != nil {
		return failure(s.logger, "delete gallery post", err, "Gallery Post", id)
	}
	s.files.remove(ctx, g.Media)

	s.logger.Info("Gallery post deleted", zap.String("gallery_id", id), zap.String("deleted_by", pr.ID))
	return nil
}

// ListGallery lists gallery posts by category, news type and title search
func (s *galleryService) ListGallery(ctx context.Context, req *GalleryListRequest) (*ListResult[*models.GalleryPost], error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	params := req.params(s.config)
	filter := models.GalleryFilter{
		Category: req.Category,
		NewsType: req.NewsType,
		Search:   strings.TrimSpace(req.Search),
	}

	items, total, err := s.gallery.ListGallery(ctx, filter, params)
	if err != nil {
		return nil, failure(s.logger, "list gallery", err, "Gallery Post", "")
	}
	return newListResult(items, total, params), nil
}
