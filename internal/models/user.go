// file: internal/models/user.go
package models

import "time"

var (
	UserGenders         = []string{"male", "female", "other"}
	UserRoles           = []string{"user", "admin", "reportHandler", "postHandler"}
	NotificationTypes   = []string{"like", "comment", "follow", "referred"}
	ReportReasons       = []string{"misinformation", "hate speech", "nudity", "violence or threats", "other"}
	ReportStatuses      = []string{"pending", "resolved", "ignored"}
	DefaultReportStatus = "pending"
)

// ===============================
// USERS
// ===============================

// User is an account. Stored in Postgres.
type User struct {
	ID           string `json:"_id" db:"id"`
	Name         string `json:"name" db:"name"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	PhoneNumber  string `json:"phoneNumber" db:"phone_number"`
	Gender       string `json:"gender" db:"gender"`
	Role         string `json:"role" db:"role"`
	Bio          string `json:"bio,omitempty" db:"bio"`
	Photo        *Media `json:"photo,omitempty"`

	Points     int  `json:"points" db:"points"`
	ShowPoints bool `json:"showPoints" db:"show_points"`
	ShowBadges bool `json:"showBadges" db:"show_badges"`
	IsBanned   bool `json:"isBanned" db:"is_banned"`

	FollowersCount int `json:"followersCount" db:"followers_count"`
	FollowingCount int `json:"followingCount" db:"following_count"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// UserSummary is the public card of a user shown in lists.
type UserSummary struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Photo    *Media `json:"photo,omitempty"`
}

// Summary returns the public card of u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Username: u.Username, Photo: u.Photo}
}

// UserFlag names a user boolean that can only be flipped.
type UserFlag string

const (
	FlagShowPoints UserFlag = "show_points"
	FlagShowBadges UserFlag = "show_badges"
	FlagIsBanned   UserFlag = "is_banned"
)

// ===============================
// NOTIFICATIONS
// ===============================

// Notification tells a user someone interacted with them.
type Notification struct {
	ID         string     `json:"_id" db:"id"`
	FromUser   string     `json:"fromUser" db:"from_user"`
	ToUser     string     `json:"toUser" db:"to_user"`
	Type       string     `json:"type" db:"type"`
	EntityKind string     `json:"entityKind,omitempty" db:"entity_kind"`
	EntityID   string     `json:"entityId,omitempty" db:"entity_id"`
	Message    string     `json:"message" db:"message"`
	IsRead     bool       `json:"isRead" db:"is_read"`
	ReadAt     *time.Time `json:"readAt,omitempty" db:"read_at"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}

// ===============================
// REPORTS
// ===============================

// Report is an abuse report against a post.
type Report struct {
	ID          string    `json:"_id" db:"id"`
	PostID      string    `json:"postId" db:"post_id"`
	ReporterID  string    `json:"reporterId" db:"reporter_id"`
	Reason      string    `json:"reason" db:"reason"`
	Description string    `json:"description,omitempty" db:"description"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// ReportFilter narrows a report search.
type ReportFilter struct {
	Reason string
	Status string
}

// ===============================
// STATS
// ===============================

// UserStats summarises accounts.
type UserStats struct {
	Total  int64 `json:"total"`
	Banned int64 `json:"banned"`
}

// ContentStats summarises stored content per category.
type ContentStats struct {
	PostsByCategory   map[string]int64 `json:"postsByCategory"`
	GalleryByCategory map[string]int64 `json:"galleryByCategory"`
	EventsUpcoming    int64            `json:"eventsUpcoming"`
	EventsEnded       int64            `json:"eventsEnded"`
}

// EventReach is the engagement of a single event.
type EventReach struct {
	EventID         string `json:"eventId"`
	Title           string `json:"title"`
	Likes           int    `json:"likes"`
	Comments        int    `json:"comments"`
	Shares          int64  `json:"shares"`
	AttendanceCount int    `json:"attendanceCount"`
}
