// file: internal/services/post_service.go
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

// postService implements PostService
type postService struct {
	posts   repositories.PostStore
	follows repositories.FollowRepository
	files   *fileService
	logger  *zap.Logger
	config  config.PaginationConfig
	now     func() time.Time
}

// NewPostService creates a new post service
func NewPostService(
	posts repositories.PostStore,
	follows repositories.FollowRepository,
	files *fileService,
	logger *zap.Logger,
	cfg config.PaginationConfig,
) PostService {
	return &postService{
		posts:   posts,
		follows: follows,
		files:   files,
		logger:  logger,
		config:  cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ===============================
// CORE CRUD OPERATIONS
// ===============================

// CreatePost creates a post. Non text posts need a file matching the media type.
func (s *postService) CreatePost(ctx context.Context, pr engagement.Principal, req *CreatePostRequest) (*models.Post, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Category == "" {
		req.Category = engagement.UsersPostCategory
	}
	if !engagement.PolicyFor(engagement.KindPost).CanCreate(pr, req.Category) {
		return nil, NewAuthorizationError("You Are Not Authorized For This Action", "post", "create", pr.ID)
	}

	content := strings.TrimSpace(req.Content)
	if req.MediaType == "text" && content == "" {
		return nil, NewValidationError("Please Enter a Valid Content", nil)
	}

	post := &models.Post{
		Aggregate: engagement.NewAggregate(engagement.KindPost, pr.ID),
		Content:   content,
		Category:  req.Category,
		MediaType: req.MediaType,
	}
	post.AllowComments = req.AllowComments
	post.AllowShares = req.AllowShares

	if req.MediaType != "text" {
		m, err := s.files.upload(ctx, req.File, mediaCategory(req.MediaType))
		if err != nil {
			return nil, err
		}
		post.Media = m
	}

	post.CreatedAt = s.now()
	post.UpdatedAt = post.CreatedAt
	if err := s.posts.CreatePost(ctx, post); err != nil {
		s.files.remove(ctx, post.Media)
		return nil, failure(s.logger, "create post", err, "Post", "")
	}

	s.logger.Info("Post created",
		zap.String("post_id", post.ID),
		zap.String("owner_id", pr.ID),
		zap.String("category", post.Category),
	)
	return post, nil
}

// GetPost returns a post without its comments
func (s *postService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if err := checkContentID(engagement.KindPost, id); err != nil {
		return nil, err
	}
	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		return nil, failure(s.logger, "get post", err, "Post", id)
	}
	post.Comments = nil
	return post, nil
}

// UpdatePost applies a partial update. A replaced file is removed from the blob store.
func (s *postService) UpdatePost(ctx context.Context, pr engagement.Principal, id string, req *UpdatePostRequest) (*models.Post, error) {
	if err := checkContentID(engagement.KindPost, id); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		return nil, failure(s.logger, "update post", err, "Post", id)
	}
	policy := engagement.PolicyFor(engagement.KindPost)
	if !policy.CanManage(pr, post.OwnerID, post.Category) {
		return nil, NewAuthorizationError("You Are Not Authorized For This Action", "post", "update", pr.ID)
	}

	if req.Category != nil && *req.Category != post.Category {
		if !policy.CanCreate(pr, *req.Category) {
			return nil, NewAuthorizationError("You Are Not Authorized For This Action", "post", "update", pr.ID)
		}
		post.Category = *req.Category
	}
	if req.Content != nil {
		post.Content = strings.TrimSpace(*req.Content)
	}
	if req.MediaType != nil {
		post.MediaType = *req.MediaType
	}
	if req.AllowComments != nil {
		post.AllowComments = *req.AllowComments
	}
	if req.AllowShares != nil {
		post.AllowShares = *req.AllowShares
	}
	if post.MediaType == "text" && post.Content == "" {
		return nil, NewValidationError("Please Enter a Valid Content", nil)
	}

	old := post.Media
	if req.File != nil {
		m, err := s.files.upload(ctx, req.File, mediaCategory(post.MediaType))
		if err != nil {
			return nil, err
		}
		post.Media = m
	} else if post.MediaType == "text" {
		post.Media = nil
	} else if post.Media == nil {
		return nil, NewValidationError("Please Upload a File", nil)
	}

	post.UpdatedAt = s.now()
	if err := s.posts.UpdatePost(ctx, post); err != nil {
		if post.Media != old {
			s.files.remove(ctx, post.Media)
		}
		return nil, failure(s.logger, "update post", err, "Post", id)
	}
	if old != nil && post.Media != old {
		s.files.remove(ctx, old)
	}

	post.Comments = nil
	return post, nil
}

// DeletePost removes a post. User posts are archived first so reports on
// them can still be reviewed; newsroom posts lose their media.
func (s *postService) DeletePost(ctx context.Context, pr engagement.Principal, id string) error {
	if err := checkContentID(engagement.KindPost, id); err != nil {
		return err
	}
	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		return failure(s.logger, "delete post", err, "Post", id)
	}
	if !engagement.PolicyFor(engagement.KindPost).CanManage(pr, post.OwnerID, post.Category) {
		return NewAuthorizationError("You Are Not Authorized For This Action", "post", "delete", pr.ID)
	}

	archived := post.Category == engagement.UsersPostCategory
	if archived {
		snapshot := models.NewDeletedPost(repositories.NewContentID(), post, s.now())
		if err := s.posts.ArchivePost(ctx, snapshot); err != nil {
			return failure(s.logger, "archive post", err, "Post", id)
		}
	}
	if err := s.posts.DeletePost(ctx, id); err != nil {
		return failure(s.logger, "delete post", err, "Post", id)
	}
	if !archived {
		s.files.remove(ctx, post.Media)
	}

	s.logger.Info("Post deleted",
		zap.String("post_id", id),
		zap.String("deleted_by", pr.ID),
		zap.Bool("archived", archived),
	)
	return nil
}

// ===============================
// FEEDS
// ===============================

// ListPosts lists posts in a category, or every post for "all"
func (s *postService) ListPosts(ctx context.Context, category string, req ListRequest) (*ListResult[*models.Post], error) {
	filter := models.PostFilter{}
	if category != "" && category != "all" {
		if err := validateRequest(&struct {
			Category string `json:"category" validate:"postcategory"`
		}{category}); err != nil {
			return nil, err
		}
		filter.Category = category
	}
	return s.list(ctx, filter, req)
}

// ListUserPosts lists the posts owned by userID
func (s *postService) ListUserPosts(ctx context.Context, userID string, req ListRequest) (*ListResult[*models.Post], error) {
	return s.list(ctx, models.PostFilter{OwnerIDs: []string{userID}}, req)
}

// PopularPosts ranks user posts: recent ones first, then by engagement
func (s *postService) PopularPosts(ctx context.Context, req ListRequest) (*ListResult[*models.Post], error) {
	params := req.params(s.config)
	window := s.config.PopularRecentWindow
	if window <= 0 {
		window = 5 * 24 * time.Hour
	}

	posts, err := s.posts.PopularPosts(ctx, s.now().Add(-window), params)
	if err != nil {
		return nil, failure(s.logger, "list popular posts", err, "Post", "")
	}
	_, total, err := s.posts.ListPosts(ctx, models.PostFilter{Category: engagement.UsersPostCategory}, models.ListParams{Page: 1, Limit: 1})
	if err != nil {
		return nil, failure(s.logger, "count popular posts", err, "Post", "")
	}
	return newListResult(posts, total, params), nil
}

// FollowingFeed lists posts by the users the caller follows
func (s *postService) FollowingFeed(ctx context.Context, pr engagement.Principal, req ListRequest) (*ListResult[*models.Post], error) {
	ids, err := s.follows.FollowingIDs(ctx, pr.ID)
	if err != nil {
		return nil, failure(s.logger, "load following", err, "User", pr.ID)
	}
	if ids == nil {
		// nil disables the owner filter
		ids = []string{}
	}
	return s.list(ctx, models.PostFilter{OwnerIDs: ids}, req)
}

func (s *postService) list(ctx context.Context, filter models.PostFilter, req ListRequest) (*ListResult[*models.Post], error) {
	params := req.params(s.config)
	posts, total, err := s.posts.ListPosts(ctx, filter, params)
	if err != nil {
		return nil, failure(s.logger, "list posts", err, "Post", "")
	}
	return newListResult(posts, total, params), nil
}
