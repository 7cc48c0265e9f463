// file: internal/repositories/interfaces.go
package repositories

import (
	"context"
	"errors"
	"time"

	"letsconnect/internal/engagement"
	"letsconnect/internal/models"
)

// Store errors. Implementations wrap or return these so services can map
// them with errors.Is.
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("record already exists")
	ErrVersionConflict  = errors.New("engagement version conflict")
	ErrEventEnded       = errors.New("event has ended")
	ErrAlreadyAttending = errors.New("already attending event")
)

// ===============================
// CONTENT (DOCUMENT STORE)
// ===============================

// EngagementStore reads and writes the engagement aggregate of any kind.
type EngagementStore interface {
	// LoadAggregate returns the aggregate with Kind set. ErrNotFound when absent.
	LoadAggregate(ctx context.Context, kind engagement.Kind, id string) (*engagement.Aggregate, error)

	// SaveEngagement writes likes, comments, counts and allow flags only when
	// the stored version equals expectedVersion, then bumps the version.
	// ErrVersionConflict when another writer got there first.
	SaveEngagement(ctx context.Context, kind engagement.Kind, id string, expectedVersion int64, agg *engagement.Aggregate) error

	// IncrementShares atomically adds one share when allowShares is true.
	// Returns engagement.ErrSharesDisabled when sharing is off.
	IncrementShares(ctx context.Context, kind engagement.Kind, id string) error
}

// PostStore persists posts and their archive.
type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context, filter models.PostFilter, params models.ListParams) ([]*models.Post, int64, error)
	PopularPosts(ctx context.Context, recentSince time.Time, params models.ListParams) ([]*models.Post, error)

	ArchivePost(ctx context.Context, deleted *models.DeletedPost) error
	GetDeletedPost(ctx context.Context, postRealID string) (*models.DeletedPost, error)
}

// GalleryStore persists gallery posts.
type GalleryStore interface {
	CreateGallery(ctx context.Context, g *models.GalleryPost) error
	GetGallery(ctx context.Context, id string) (*models.GalleryPost, error)
	UpdateGallery(ctx context.Context, g *models.GalleryPost) error
	DeleteGallery(ctx context.Context, id string) error
	ListGallery(ctx context.Context, filter models.GalleryFilter, params models.ListParams) ([]*models.GalleryPost, int64, error)
}

// EventStore persists events and attendance.
type EventStore interface {
	CreateEvent(ctx context.Context, e *models.Event) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	UpdateEvent(ctx context.Context, e *models.Event) error
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, window models.EventWindow, now time.Time, params models.ListParams) ([]*models.Event, int64, error)

	// AddAttendance pushes userID onto the attendance list unless the event
	// has ended or userID already attends.
	AddAttendance(ctx context.Context, eventID, userID string, now time.Time) error
}

// ContentStats is read-only reporting over content.
type ContentStats interface {
	CountPostsByCategory(ctx context.Context) (map[string]int64, error)
	CountGalleryByCategory(ctx context.Context) (map[string]int64, error)
	CountEvents(ctx context.Context, now time.Time) (upcoming, ended int64, err error)
	EventReach(ctx context.Context, limit int) ([]models.EventReach, error)
}

// ContentStore is the full document store.
type ContentStore interface {
	EngagementStore
	PostStore
	GalleryStore
	EventStore
	ContentStats
}

// ===============================
// RELATIONAL (POSTGRES)
// ===============================

// UserRepository defines the contract for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error

	// ToggleFlag flips a boolean column in one statement and returns the new value.
	ToggleFlag(ctx context.Context, id string, flag models.UserFlag) (bool, error)
	SetRole(ctx context.Context, id, role string) error
	Stats(ctx context.Context) (*models.UserStats, error)
}

// FollowRepository defines the follow graph
type FollowRepository interface {
	// Toggle follows when not following and unfollows otherwise. Returns
	// true when followerID follows followeeID afterwards.
	Toggle(ctx context.Context, followerID, followeeID string) (bool, error)
	Followers(ctx context.Context, userID string, params models.ListParams) ([]models.UserSummary, int64, error)
	Following(ctx context.Context, userID string, params models.ListParams) ([]models.UserSummary, int64, error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
}

// NotificationRepository defines notification storage
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID string, params models.ListParams) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID string, at time.Time) error
	Delete(ctx context.Context, id, userID string) error
}

// ReportRepository defines abuse report storage
type ReportRepository interface {
	// Create returns ErrDuplicate when the reporter already reported the post.
	Create(ctx context.Context, r *models.Report) error
	GetByID(ctx context.Context, id string) (*models.Report, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter models.ReportFilter, params models.ListParams) ([]*models.Report, int64, error)
}
