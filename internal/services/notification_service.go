// file: internal/services/notification_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"letsconnect/internal/config"
	"letsconnect/internal/engagement"
	"letsconnect/internal/events"
	"letsconnect/internal/models"
	"letsconnect/internal/repositories"

	"go.uber.org/zap"
)

// notificationService implements NotificationService and turns engagement
// events into notifications for the content owner.
type notificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	logger        *zap.Logger
	config        config.PaginationConfig
	now           func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	notifications repositories.NotificationRepository,
	users repositories.UserRepository,
	logger *zap.Logger,
	cfg config.PaginationConfig,
) NotificationService {
	return &notificationService{
		notifications: notifications,
		users:         users,
		logger:        logger,
		config:        cfg,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// ===============================
// EVENT HANDLERS
// ===============================

// Subscribe registers the like, comment and follow handlers on bus
func (s *notificationService) Subscribe(bus events.EventBus) error {
	handlers := map[string]events.EventHandler{
		events.TypeEntityLiked: events.NewTypedEventHandler("notifications.liked",
			func(ctx context.Context, e *events.EntityLikedEvent) error {
				return s.notify(ctx, e.GetUserID(), e.OwnerID, "like", e.Kind, e.EntityID,
					fmt.Sprintf("liked your %s", kindNoun(e.Kind)))
			}),
		events.TypeCommentAdded: events.NewTypedEventHandler("notifications.commented",
			func(ctx context.Context, e *events.CommentAddedEvent) error {
				return s.notify(ctx, e.GetUserID(), e.OwnerID, "comment", e.Kind, e.EntityID,
					fmt.Sprintf("commented on your %s: %s", kindNoun(e.Kind), e.Preview))
			}),
		events.TypeUserFollowed: events.NewTypedEventHandler("notifications.followed",
			func(ctx context.Context, e *events.UserFollowedEvent) error {
				return s.notify(ctx, e.GetUserID(), e.FolloweeID, "follow", "", "", "started following you")
			}),
	}
	for eventType, h := range handlers {
		if err := bus.Subscribe(eventType, h); err != nil {
			return fmt.Errorf("subscribe %s: %w", eventType, err)
		}
	}
	return nil
}

func kindNoun(kind string) string {
	return strings.ToLower(engagement.Kind(kind).Label())
}

// notify stores a notification from actor to recipient. Self actions are skipped.
func (s *notificationService) notify(ctx context.Context, actorID, recipientID, typ, kind, entityID, action string) error {
	if actorID == "" || recipientID == "" || actorID == recipientID {
		return nil
	}

	name := "Someone"
	if actor, err := s.users.GetByID(ctx, actorID); err == nil {
		name = actor.Username
	}

	n := &models.Notification{
		FromUser:   actorID,
		ToUser:     recipientID,
		Type:       typ,
		EntityKind: kind,
		EntityID:   entityID,
		Message:    name + " " + action,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.logger.Warn("Failed to store notification",
			zap.String("type", typ),
			zap.String("to_user", recipientID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// ===============================
// API
// ===============================

// CreateNotification stores an admin-issued notification
func (s *notificationService) CreateNotification(ctx context.Context, pr engagement.Principal, req *CreateNotificationRequest) (*models.Notification, error) {
	if pr.Role != engagement.RoleAdmin {
		return nil, NewAuthorizationError("You Are Not Authorized For This Action", "notification", "create", pr.ID)
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, req.ToUser); err != nil {
		return nil, failure(s.logger, "create notification", err, "User", req.ToUser)
	}

	n := &models.Notification{
		FromUser: pr.ID,
		ToUser:   req.ToUser,
		Type:     req.Type,
		Message:  strings.TrimSpace(req.Message),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, failure(s.logger, "create notification", err, "Notification", "")
	}
	return n, nil
}

// ListNotifications lists the caller's notifications, newest first
func (s *notificationService) ListNotifications(ctx context.Context, pr engagement.Principal, req ListRequest) (*ListResult[*models.Notification], error) {
	params := req.params(s.config)
	items, total, err := s.notifications.ListForUser(ctx, pr.ID, params)
	if err != nil {
		return nil, failure(s.logger, "list notifications", err, "Notification", "")
	}
	return newListResult(items, total, params), nil
}

// MarkRead marks one of the caller's notifications as read
func (s *notificationService) MarkRead(ctx context.Context, pr engagement.Principal, id string) (*MessageResponse, error) {
	if err := checkUUID(id, "Notification"); err != nil {
		return nil, err
	}
	if err := s.notifications.MarkRead(ctx, id, pr.ID, s.now()); err != nil {
		return nil, failure(s.logger, "mark notification read", err, "Notification", id)
	}
	return message("Notification Marked As Read"), nil
}

// DeleteNotification deletes one of the caller's notifications
func (s *notificationService) DeleteNotification(ctx context.Context, pr engagement.Principal, id string) (*MessageResponse, error) {
	if err := checkUUID(id, "Notification"); err != nil {
		return nil, err
	}
	if err := s.notifications.Delete(ctx, id, pr.ID); err != nil {
		return nil, failure(s.logger, "delete notification", err, "Notification", id)
	}
	return message("Notification Deleted Successfully"), nil
}
