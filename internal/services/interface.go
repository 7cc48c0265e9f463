// file: internal/services/interface.go
package services

import (
	"context"

	"letsconnect/internal/engagement"
	"letsconnect/internal/events"
	"letsconnect/internal/models"
)

// ===============================
// ENGAGEMENT
// ===============================

// EngagementService mutates the comment, reply, like and share state shared
// by posts, gallery posts and events. Mutations return a message only.
type EngagementService interface {
	ToggleLike(ctx context.Context, pr engagement.Principal, target Target) (*MessageResponse, error)
	Share(ctx context.Context, pr engagement.Principal, target Target) (*MessageResponse, error)
	ToggleAllowComments(ctx context.Context, pr engagement.Principal, target Target) (*MessageResponse, error)
	ToggleAllowShares(ctx context.Context, pr engagement.Principal, target Target) (*MessageResponse, error)

	AddComment(ctx context.Context, pr engagement.Principal, target Target, req *CommentRequest) (*MessageResponse, error)
	EditComment(ctx context.Context, pr engagement.Principal, target Target, commentID string, req *CommentRequest) (*MessageResponse, error)
	DeleteComment(ctx context.Context, pr engagement.Principal, target Target, commentID string) (*MessageResponse, error)
	ToggleCommentLike(ctx context.Context, pr engagement.Principal, target Target, commentID string) (*MessageResponse, error)

	AddReply(ctx context.Context, pr engagement.Principal, target Target, commentID string, req *ReplyRequest) (*MessageResponse, error)
	EditReply(ctx context.Context, pr engagement.Principal, target Target, commentID, replyID string, req *ReplyRequest) (*MessageResponse, error)
	DeleteReply(ctx context.Context, pr engagement.Principal, target Target, commentID, replyID string) (*MessageResponse, error)
	ToggleReplyLike(ctx context.Context, pr engagement.Principal, target Target, commentID, replyID string) (*MessageResponse, error)

	ListComments(ctx context.Context, target Target, req ListRequest) (*CommentsPage, error)
}

// ===============================
// CONTENT
// ===============================

// PostService manages posts and the post feeds
type PostService interface {
	CreatePost(ctx context.Context, pr engagement.Principal, req *CreatePostRequest) (*models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	UpdatePost(ctx context.Context, pr engagement.Principal, id string, req *UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, pr engagement.Principal, id string) error

	ListPosts(ctx context.Context, category string, req ListRequest) (*ListResult[*models.Post], error)
	ListUserPosts(ctx context.Context, userID string, req ListRequest) (*ListResult[*models.Post], error)
	PopularPosts(ctx context.Context, req ListRequest) (*ListResult[*models.Post], error)
	FollowingFeed(ctx context.Context, pr engagement.Principal, req ListRequest) (*ListResult[*models.Post], error)
}

// GalleryService manages gallery posts
type GalleryService interface {
	CreateGallery(ctx context.Context, pr engagement.Principal, req *CreateGalleryRequest) (*models.GalleryPost, error)
	GetGallery(ctx context.Context, id string) (*models.GalleryPost, error)
	UpdateGallery(ctx context.Context, pr engagement.Principal, id string, req *UpdateGalleryRequest) (*models.GalleryPost, error)
	DeleteGallery(ctx context.Context, pr engagement.Principal, id string) error
	ListGallery(ctx context.Context, req *GalleryListRequest) (*ListResult[*models.GalleryPost], error)
}

// EventService manages events and attendance
type EventService interface {
	CreateEvent(ctx context.Context, pr engagement.Principal, req *CreateEventRequest) (*models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	UpdateEvent(ctx context.Context, pr engagement.Principal, id string, req *UpdateEventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, pr engagement.Principal, id string) error
	ListEvents(ctx context.Context, window models.EventWindow, req ListRequest) (*ListResult[*models.Event], error)

	Attend(ctx context.Context, pr engagement.Principal, id string) (*MessageResponse, error)
	ListAttendance(ctx context.Context, id string, req ListRequest) (*AttendancePage, error)
}

// ===============================
// USERS AND IDENTITY
// ===============================

// AuthService issues and verifies tokens
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, req *RefreshRequest) (*TokenPair, error)

	// Authenticate resolves an access token to the caller. Banned users are rejected.
	Authenticate(ctx context.Context, accessToken string) (engagement.Principal, error)
	InvalidatePrincipal(ctx context.Context, userID string)
}

// UserService manages profiles, the follow graph and user flags
type UserService interface {
	GetProfile(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, pr engagement.Principal, req *UpdateProfileRequest) (*models.User, error)

	ToggleFollow(ctx context.Context, pr engagement.Principal, userID string) (*MessageResponse, error)
	Followers(ctx context.Context, userID string, req ListRequest) (*ListResult[models.UserSummary], error)
	Following(ctx context.Context, userID string, req ListRequest) (*ListResult[models.UserSummary], error)

	ToggleShowPoints(ctx context.Context, pr engagement.Principal) (*MessageResponse, error)
	ToggleShowBadges(ctx context.Context, pr engagement.Principal) (*MessageResponse, error)
	ToggleBan(ctx context.Context, pr engagement.Principal, userID string) (*MessageResponse, error)
	ChangeRole(ctx context.Context, pr engagement.Principal, userID string, req *ChangeRoleRequest) (*MessageResponse, error)
}

// NotificationService stores and serves user notifications
type NotificationService interface {
	// Subscribe turns like, comment and follow events on bus into notifications.
	Subscribe(bus events.EventBus) error

	CreateNotification(ctx context.Context, pr engagement.Principal, req *CreateNotificationRequest) (*models.Notification, error)
	ListNotifications(ctx context.Context, pr engagement.Principal, req ListRequest) (*ListResult[*models.Notification], error)
	MarkRead(ctx context.Context, pr engagement.Principal, id string) (*MessageResponse, error)
	DeleteNotification(ctx context.Context, pr engagement.Principal, id string) (*MessageResponse, error)
}

// ReportService handles abuse reports
type ReportService interface {
	CreateReport(ctx context.Context, pr engagement.Principal, req *CreateReportRequest) (*models.Report, error)
	GetReport(ctx context.Context, pr engagement.Principal, id string) (*ReportDetail, error)
	ProcessReport(ctx context.Context, pr engagement.Principal, id string, req *ProcessReportRequest) (*MessageResponse, error)
	DeleteReport(ctx context.Context, pr engagement.Principal, id string) (*MessageResponse, error)
	SearchReports(ctx context.Context, pr engagement.Principal, req *ReportSearchRequest) (*ListResult[*models.Report], error)
}

// StatsService serves read-only admin reporting
type StatsService interface {
	Overview(ctx context.Context, pr engagement.Principal) (*AdminStats, error)
}
