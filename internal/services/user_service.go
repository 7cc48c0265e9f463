// file: internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"letsconnect/internal/config"
	"letsconnect/internal/engagement"
	"letsconnect/internal/events"
	"letsconnect/internal/models"
	"letsconnect/internal/repositories"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// userService implements UserService
type userService struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
	auth    AuthService
	files   *fileService
	events  events.EventBus
	logger  *zap.Logger
	config  config.PaginationConfig
}

// NewUserService creates a new user service
func NewUserService(
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	auth AuthService,
	files *fileService,
	bus events.EventBus,
	logger *zap.Logger,
	cfg config.PaginationConfig,
) UserService {
	return &userService{
		users:   users,
		follows: follows,
		auth:    auth,
		files:   files,
		events:  bus,
		logger:  logger,
		config:  cfg,
	}
}

// checkUUID rejects ids that cannot address a relational row.
func checkUUID(id, entity string) error {
	if _, err := uuid.FromString(id); err != nil {
		return InvalidIDError(entity)
	}
	return nil
}

// ===============================
// PROFILE
// ===============================

// GetProfile returns a user with follow counts
func (s *userService) GetProfile(ctx context.Context, id string) (*models.User, error) {
	if err := checkUUID(id, "User"); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, failure(s.logger, "get profile", err, "User", id)
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile applies a partial update to the caller's profile
func (s *userService) UpdateProfile(ctx context.Context, pr engagement.Principal, req *UpdateProfileRequest) (*models.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, pr.ID)
	if err != nil {
		return nil, failure(s.logger, "update profile", err, "User", pr.ID)
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Username != nil {
		user.Username = strings.ToLower(*req.Username)
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.Bio != nil {
		user.Bio = strings.TrimSpace(*req.Bio)
	}

	old := user.Photo
	if req.Photo != nil {
		m, err := s.files.upload(ctx, req.Photo, "image")
		if err != nil {
			return nil, err
		}
		user.Photo = m
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if user.Photo != old {
			s.files.remove(ctx, user.Photo)
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("Username Is Already Taken", "USERNAME_TAKEN")
		}
		return nil, failure(s.logger, "update profile", err, "User", pr.ID)
	}
	if old != nil && user.Photo != old {
		s.files.remove(ctx, old)
	}

	user.PasswordHash = ""
	return user, nil
}

// ===============================
// FOLLOW GRAPH
// ===============================

// ToggleFollow follows userID, or unfollows when already following
func (s *userService) ToggleFollow(ctx context.Context, pr engagement.Principal, userID string) (*MessageResponse, error) {
	if err := checkUUID(userID, "User"); err != nil {
		return nil, err
	}
	if userID == pr.ID {
		return nil, NewValidationError("You Cannot Follow Yourself", nil)
	}

	following, err := s.follows.Toggle(ctx, pr.ID, userID)
	if err != nil {
		return nil, failure(s.logger, "toggle follow", err, "User", userID)
	}
	if !following {
		return message("Unfollowed Successfully"), nil
	}

	if s.events != nil {
		if err := s.events.PublishAsync(ctx, events.NewUserFollowedEvent(pr.ID, userID)); err != nil {
			s.logger.Warn("Failed to publish follow event", zap.Error(err))
		}
	}
	return message("Followed Successfully"), nil
}

// Followers lists the users following userID
func (s *userService) Followers(ctx context.Context, userID string, req ListRequest) (*ListResult[models.UserSummary], error) {
	if err := checkUUID(userID, "User"); err != nil {
		return nil, err
	}
	params := req.params(s.config)
	items, total, err := s.follows.Followers(ctx, userID, params)
	if err != nil {
		return nil, failure(s.logger, "list followers", err, "User", userID)
	}
	return newListResult(items, total, params), nil
}

// Following lists the users userID follows
func (s *userService) Following(ctx context.Context, userID string, req ListRequest) (*ListResult[models.UserSummary], error) {
	if err := checkUUID(userID, "User"); err != nil {
		return nil, err
	}
	params := req.params(s.config)
	items, total, err := s.follows.Following(ctx, userID, params)
	if err != nil {
		return nil, failure(s.logger, "list following", err, "User", userID)
	}
	return newListResult(items, total, params), nil
}

// ===============================
// FLAGS
// ===============================

// ToggleShowPoints flips whether the caller's points are public
func (s *userService) ToggleShowPoints(ctx context.Context, pr engagement.Principal) (*MessageResponse, error) {
	on, err := s.users.ToggleFlag(ctx, pr.ID, models.FlagShowPoints)
	if err != nil {
		return nil, failure(s.logger, "toggle show points", err, "User", pr.ID)
	}
	if on {
		return message("Points Are Visible Now"), nil
	}
	return message("Points Are Hidden Now"), nil
}

// ToggleShowBadges flips whether the caller's badges are public
func (s *userService) ToggleShowBadges(ctx context.Context, pr engagement.Principal) (*MessageResponse, error) {
	on, err := s.users.ToggleFlag(ctx, pr.ID, models.FlagShowBadges)
	if err != nil {
		return nil, failure(s.logger, "toggle show badges", err, "User", pr.ID)
	}
	if on {
		return message("Badges Are Visible Now"), nil
	}
	return message("Badges Are Hidden Now"), nil
}

// ToggleBan bans or unbans a user. Admin only; admins cannot ban themselves.
func (s *userService) ToggleBan(ctx context.Context, pr engagement.Principal, userID string) (*MessageResponse, error) {
	if pr.Role != engagement.RoleAdmin {
		return nil, NewAuthorizationError("You Are Not Authorized For This Action", "user", "ban", pr.ID)
	}
	if err := checkUUID(userID, "User"); err != nil {
		return nil, err
	}
	if userID == pr.ID {
		return nil, NewValidationError("You Cannot Ban Yourself", nil)
	}

	banned, err := s.users.ToggleFlag(ctx, userID, models.FlagIsBanned)
	if err != nil {
		return nil, failure(s.logger, "toggle ban", err, "User", userID)
	}
	if s.auth != nil {
		s.auth.InvalidatePrincipal(ctx, userID)
	}

	s.logger.Info("User ban toggled",
		zap.String("user_id", userID),
		zap.String("admin_id", pr.ID),
		zap.Bool("banned", banned),
	)
	if banned {
		return message("User Banned Successfully"), nil
	}
	return message("User Unbanned Successfully"), nil
}

// ChangeRole sets a user's role. Admin only; admins cannot change their own role.
func (s *userService) ChangeRole(ctx context.Context, pr engagement.Principal, userID string, req *ChangeRoleRequest) (*MessageResponse, error) {
	if pr.Role != engagement.RoleAdmin {
		return nil, NewAuthorizationError("You Are Not Authorized For This Action", "user", "change_role", pr.ID)
	}
	if err := checkUUID(userID, "User"); err != nil {
		return nil, err
	}
	if userID == pr.ID {
		return nil, NewValidationError("You Cannot Change Your Own Role", nil)
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if err := s.users.SetRole(ctx, userID, req.Role); err != nil {
		return nil, failure(s.logger, "change role", err, "User", userID)
	}
	if s.auth != nil {
		s.auth.InvalidatePrincipal(ctx, userID)
	}

	s.logger.Info("User role changed",
		zap.String("user_id", userID),
		zap.String("admin_id", pr.ID),
		zap.String("role", req.Role),
	)
	return message("Role Updated Successfully"), nil
}
