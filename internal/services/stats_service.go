// file: internal/services/stats_service.go
package services

import (
	"context"
	"time"

	"letsconnect/internal/engagement"
	"letsconnect/internal/models"
	"letsconnect/internal/repositories"

	"go.uber.org/zap"
)

const eventReachLimit = 10

// statsService implements StatsService
type statsService struct {
	users   repositories.UserRepository
	content repositories.ContentStats
	logger  *zap.Logger
	now     func() time.Time
}

// NewStatsService creates a new stats service
func NewStatsService(users repositories.UserRepository, content repositories.ContentStats, logger *zap.Logger) StatsService {
	return &statsService{
		users:   users,
		content: content,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Overview collects user, content and event reach counts. Admin only.
func (s *statsService) Overview(ctx context.Context, pr engagement.Principal) (*AdminStats, error) {
	if pr.Role != engagement.RoleAdmin {
		return nil, NewAuthorizationError("You Are Not Authorized For This Action", "stats", "read", pr.ID)
	}

	users, err := s.users.Stats(ctx)
	if err != nil {
		return nil, failure(s.logger, "count users", err, "User", "")
	}

	content := &models.ContentStats{}
	if content.PostsByCategory, err = s.content.CountPostsByCategory(ctx); err != nil {
		return nil, failure(s.logger, "count posts", err, "Post", "")
	}
	if content.GalleryByCategory, err = s.content.CountGalleryByCategory(ctx); err != nil {
		return nil, failure(s.logger, "count gallery", err, "Gallery Post", "")
	}
	if content.EventsUpcoming, content.EventsEnded, err = s.content.CountEvents(ctx, s.now()); err != nil {
		return nil, failure(s.logger, "count events", err, "Event", "")
	}

	reach, err := s.content.EventReach(ctx, eventReachLimit)
	if err != nil {
		return nil, failure(s.logger, "load event reach", err, "Event", "")
	}
	if reach == nil {
		reach = []models.EventReach{}
	}

	return &AdminStats{Users: users, Content: content, EventReach: reach}, nil
}
