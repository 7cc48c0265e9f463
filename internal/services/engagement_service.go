// file: internal/services/engagement_service.go
package services

import (
	"context"
	"errors"
	"time"

	"letsconnect/internal/engagement"
	"letsconnect/internal/events"
	"letsconnect/internal/repositories"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// engagementService implements EngagementService for every content kind
type engagementService struct {
	store  repositories.EngagementStore
	events events.EventBus
	logger *zap.Logger
	config *EngagementServiceConfig
}

// EngagementServiceConfig holds engagement service configuration
type EngagementServiceConfig struct {
	// ConflictRetries bounds reload-and-retry after a version conflict.
	ConflictRetries uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	CommentsPerPage int
	MaxPageSize     int
}

// DefaultEngagementConfig returns default engagement service configuration
func DefaultEngagementConfig() *EngagementServiceConfig {
	return &EngagementServiceConfig{
		ConflictRetries: 5,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     250 * time.Millisecond,
		CommentsPerPage: engagement.DefaultPageSize,
		MaxPageSize:     100,
	}
}

// NewEngagementService creates a new engagement service
func NewEngagementService(
	store repositories.EngagementStore,
	bus events.EventBus,
	logger *zap.Logger,
	config *EngagementServiceConfig,
) EngagementService {
	if config == nil {
		config = DefaultEngagementConfig()
	}
	return &engagementService{
		store:  store,
		events: bus,
		logger: logger,
		config: config,
	}
}

// ===============================
// MUTATION PROTOCOL
// ===============================

func (s *engagementService) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.config.InitialInterval
	b.MaxInterval = s.config.MaxInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, s.config.ConflictRetries), ctx)
}

// mutate loads the aggregate, applies fn and saves it guarded by the loaded
// version. A lost race reloads and re-applies fn; fn must be safe to repeat.
func (s *engagementService) mutate(ctx context.Context, pr engagement.Principal, target Target, action string, fn func(*engagement.Aggregate) error) (*engagement.Aggregate, error) {
	if err := checkContentID(target.Kind, target.ID); err != nil {
		return nil, err
	}

	var saved *engagement.Aggregate
	op := func() error {
		agg, err := s.store.LoadAggregate(ctx, target.Kind, target.ID)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := fn(agg); err != nil {
			return backoff.Permanent(mapEngagementError(err, target.Kind, action, pr.ID))
		}
		agg.RecomputeCounts()

		if err := s.store.SaveEngagement(ctx, target.Kind, target.ID, agg.Version, agg); err != nil {
			if errors.Is(err, repositories.ErrVersionConflict) {
				return err
			}
			return backoff.Permanent(err)
		}
		saved = agg
		return nil
	}

	notify := func(err error, wait time.Duration) {
		s.logger.Debug("Engagement write lost a race, retrying",
			zap.String("kind", string(target.Kind)),
			zap.String("id", target.ID),
			zap.String("action", action),
			zap.Duration("wait", wait),
		)
	}

	if err := backoff.RetryNotify(op, s.newBackOff(ctx), notify); err != nil {
		if errors.Is(err, repositories.ErrVersionConflict) {
			s.logger.Warn("Engagement write gave up after repeated conflicts",
				zap.String("kind", string(target.Kind)),
				zap.String("id", target.ID),
				zap.String("action", action),
			)
			return nil, NewConflictError("The content was modified concurrently, please retry", "VERSION_CONFLICT")
		}
		return nil, failure(s.logger, action, err, target.Kind.Label(), target.ID)
	}
	return saved, nil
}

func (s *engagementService) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishAsync(ctx, event); err != nil {
		s.logger.Warn("Failed to publish engagement event",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err),
		)
	}
}

// ===============================
// ENTITY LEVEL
// ===============================

// ToggleLike flips the caller's like on the entity
func (s *engagementService) ToggleLike(ctx context.Context, pr engagement.Principal, target Target) (*MessageResponse, error) {
	var liked bool
	agg, err := s.mutate(ctx, pr, target, "like", func(a *engagement.Aggregate) error {
		liked = a.ToggleLike(pr.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if liked {
		s.publish(ctx, events.NewEntityLikedEvent(pr.ID, string(target.Kind), target.ID, agg.OwnerID))
	}
	return message(engagement.LikeMessage(target.Kind.Label(), liked)), nil
}

// Share counts one share. Repeated shares by the same user all count.
func (s *engagementService) Share(ctx context.Context, pr engagement.Principal, target Target) (*MessageResponse, error) {
	if err := checkContentID(target.Kind, target.ID); err != nil {
		return nil, err
	}
	if err := s.store.IncrementShares(ctx, target.Kind, target.ID); err != nil {
		if errors.Is(err, engagement.ErrSharesDisabled) {
			return nil, mapEngagementError(err, target.Kind, "share", pr.ID)
		}
		return nil, failure(s.logger, "share", err, target.Kind.Label(), target.ID)
	}
	return message(target.Kind.Label() + " Shared Successfully"), nil
}

// ToggleAllowComments flips whether new comments are accepted
func (s *engagementService) ToggleAllowComments(ctx context.Context, pr engagement.Principal, target Target) (*MessageResponse, error) {
	var on bool
	_, err := s.mutate(ctx, pr, target, "toggle_allow_comments", func(a *engagement.Aggregate) error {
		var err error
		on, err = a.ToggleAllowComments(pr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return message(engagement.AllowCommentsMessage(on)), nil
}

// ToggleAllowShares flips whether shares are accepted
func (s *engagementService) ToggleAllowShares(ctx context.Context, pr engagement.Principal, target Target) (*MessageResponse, error) {
	var on bool
	_, err := s.mutate(ctx, pr, target, "toggle_allow_shares", func(a *engagement.Aggregate) error {
		var err error
		on, err = a.ToggleAllowShares(pr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return message(engagement.AllowSharesMessage(on)), nil
}

// ===============================
// COMMENTS
// ===============================

// AddComment appends a comment by the caller
func (s *engagementService) AddComment(ctx context.Context, pr engagement.Principal, target Target, req *CommentRequest) (*MessageResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var comment engagement.Comment
	agg, err := s.mutate(ctx, pr, target, "comment", func(a *engagement.Aggregate) error {
		c, err := a.AddComment(pr.ID, req.Content)
		if err != nil {
			return err
		}
		comment = *c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewCommentAddedEvent(pr.ID, string(target.Kind), target.ID, agg.OwnerID, comment.ID, comment.Content))
	return message("Comment Added Successfully"), nil
}

// EditComment replaces the text of the caller's comment
func (s *engagementService) EditComment(ctx context.Context, pr engagement.Principal, target Target, commentID string, req *CommentRequest) (*MessageResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	_, err := s.mutate(ctx, pr, target, "edit_comment", func(a *engagement.Aggregate) error {
		return a.EditComment(commentID, pr.ID, req.Content)
	})
	if err != nil {
		return nil, err
	}
	return message("Comment Updated Successfully"), nil
}

// DeleteComment removes a comment and its replies
func (s *engagementService) DeleteComment(ctx context.Context, pr engagement.Principal, target Target, commentID string) (*MessageResponse, error) {
	_, err := s.mutate(ctx, pr, target, "delete_comment", func(a *engagement.Aggregate) error {
		return a.DeleteComment(commentID, pr)
	})
	if err != nil {
		return nil, err
	}
	return message("Comment Deleted Successfully"), nil
}

// ToggleCommentLike flips the caller's like on a comment
func (s *engagementService) ToggleCommentLike(ctx context.Context, pr engagement.Principal, target Target, commentID string) (*MessageResponse, error) {
	var liked bool
	_, err := s.mutate(ctx, pr, target, "like_comment", func(a *engagement.Aggregate) error {
		var err error
		liked, err = a.ToggleCommentLike(commentID, pr.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return message(engagement.LikeMessage("Comment", liked)), nil
}

// ===============================
// REPLIES
// ===============================

// AddReply appends a reply under a comment
func (s *engagementService) AddReply(ctx context.Context, pr engagement.Principal, target Target, commentID string, req *ReplyRequest) (*MessageResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	_, err := s.mutate(ctx, pr, target, "reply", func(a *engagement.Aggregate) error {
		_, err := a.AddReply(commentID, pr.ID, req.Reply)
		return err
	})
	if err != nil {
		return nil, err
	}
	return message("Reply Added Successfully"), nil
}

// EditReply replaces the text of the caller's reply
func (s *engagementService) EditReply(ctx context.Context, pr engagement.Principal, target Target, commentID, replyID string, req *ReplyRequest) (*MessageResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	_, err := s.mutate(ctx, pr, target, "edit_reply", func(a *engagement.Aggregate) error {
		return a.EditReply(commentID, replyID, pr.ID, req.Reply)
	})
	if err != nil {
		return nil, err
	}
	return message("Reply Updated Successfully"), nil
}

// DeleteReply removes a reply
func (s *engagementService) DeleteReply(ctx context.Context, pr engagement.Principal, target Target, commentID, replyID string) (*MessageResponse, error) {
	_, err := s.mutate(ctx, pr, target, "delete_reply", func(a *engagement.Aggregate) error {
		return a.DeleteReply(commentID, replyID, pr)
	})
	if err != nil {
		return nil, err
	}
	return message("Reply Deleted Successfully"), nil
}

// ToggleReplyLike flips the caller's like on a reply
func (s *engagementService) ToggleReplyLike(ctx context.Context, pr engagement.Principal, target Target, commentID, replyID string) (*MessageResponse, error) {
	var liked bool
	_, err := s.mutate(ctx, pr, target, "like_reply", func(a *engagement.Aggregate) error {
		var err error
		liked, err = a.ToggleReplyLike(commentID, replyID, pr.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return message(engagement.LikeMessage("Reply", liked)), nil
}

// ===============================
// READS
// ===============================

// ListComments returns one page of comments in stored order
func (s *engagementService) ListComments(ctx context.Context, target Target, req ListRequest) (*CommentsPage, error) {
	if err := checkContentID(target.Kind, target.ID); err != nil {
		return nil, err
	}
	agg, err := s.store.LoadAggregate(ctx, target.Kind, target.ID)
	if err != nil {
		return nil, failure(s.logger, "list comments", err, target.Kind.Label(), target.ID)
	}

	page, pageSize := req.window(s.config.CommentsPerPage, s.config.MaxPageSize)
	comments, total := engagement.Slice(agg.Comments, page, pageSize)
	return &CommentsPage{
		Comments:      comments,
		TotalComments: total,
		TotalPages:    engagement.TotalPages(total, pageSize),
		Page:          page,
	}, nil
}
