// file: internal/services/types.go
package services

import (
	"time"

	"letsconnect/internal/config"
	"letsconnect/internal/engagement"
	"letsconnect/internal/models"
)

// ===============================
// COMMON
// ===============================

// Target addresses one engagable entity
type Target struct {
	Kind engagement.Kind
	ID   string
}

// MessageResponse is the body of every mutation
type MessageResponse struct {
	Message string `json:"message"`
}

func message(msg string) *MessageResponse {
	return &MessageResponse{Message: msg}
}

// Upload is a file received from a client
type Upload struct {
	Name string
	Data []byte
}

// ListRequest is 1-based page pagination
type ListRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// params clamps the request to the configured limits
func (r ListRequest) params(cfg config.PaginationConfig) models.ListParams {
	page, limit := r.Page, r.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = cfg.DefaultLimit
	}
	if limit < 1 {
		limit = engagement.DefaultPageSize
	}
	if cfg.MaxLimit > 0 && limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	return models.ListParams{Page: page, Limit: limit}
}

// window resolves page and page size for lists sliced in memory, such as
// comments and attendance. maxSize of zero leaves the size unbounded.
func (r ListRequest) window(defaultSize, maxSize int) (page, size int) {
	page, size = r.Page, r.Limit
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if size < 1 {
		size = engagement.DefaultPageSize
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return page, size
}

// ListResult is one page of a listing
type ListResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
}

func newListResult[T any](items []T, total int64, params models.ListParams) *ListResult[T] {
	if items == nil {
		items = []T{}
	}
	return &ListResult[T]{
		Data:       items,
		Total:      total,
		Page:       params.Page,
		TotalPages: engagement.TotalPages(int(total), params.Limit),
	}
}

// CommentsPage is one page of an entity's comments
type CommentsPage struct {
	Comments      []engagement.Comment `json:"comments"`
	TotalComments int                  `json:"totalComments"`
	TotalPages    int                  `json:"totalPages"`
	Page          int                  `json:"page"`
}

// AttendancePage is one page of an event's attendance list
type AttendancePage struct {
	Attendance      []models.Attendance `json:"attendance"`
	TotalAttendance int                 `json:"totalAttendance"`
	TotalPages      int                 `json:"totalPages"`
	Page            int                 `json:"page"`
}

// ===============================
// ENGAGEMENT REQUESTS
// ===============================

// CommentRequest carries comment text. Length is bounded per kind, never
// above the longest kind limit.
type CommentRequest struct {
	Content string `json:"content" validate:"required,max=255"`
}

// ReplyRequest carries reply text, bounded like CommentRequest.
type ReplyRequest struct {
	Reply string `json:"reply" validate:"required,max=255"`
}

// ===============================
// POST REQUESTS
// ===============================

// CreatePostRequest represents a request to create a post
type CreatePostRequest struct {
	Content       string  `json:"content" validate:"max=300"`
	Category      string  `json:"category" validate:"omitempty,postcategory"`
	MediaType     string  `json:"mediaType" validate:"required,mediatype"`
	AllowComments bool    `json:"allowComments"`
	AllowShares   bool    `json:"allowShares"`
	File          *Upload `json:"-"`
}

// UpdatePostRequest represents a partial post update
type UpdatePostRequest struct {
	Content       *string `json:"content" validate:"omitempty,max=300"`
	Category      *string `json:"category" validate:"omitempty,postcategory"`
	MediaType     *string `json:"mediaType" validate:"omitempty,mediatype"`
	AllowComments *bool   `json:"allowComments"`
	AllowShares   *bool   `json:"allowShares"`
	File          *Upload `json:"-"`
}

// ===============================
// GALLERY REQUESTS
// ===============================

// CreateGalleryRequest represents a request to create a gallery post
type CreateGalleryRequest struct {
	Title         string  `json:"title" validate:"required,max=100"`
	Category      string  `json:"category" validate:"required,gallerycategory"`
	NewsType      string  `json:"newsType" validate:"required,newstype"`
	YouTubeURL    string  `json:"youTubeUrl" validate:"omitempty,url"`
	AllowComments bool    `json:"allowComments"`
	AllowShares   bool    `json:"allowShares"`
	File          *Upload `json:"-"`
}

// UpdateGalleryRequest represents a partial gallery update
type UpdateGalleryRequest struct {
	Title         *string `json:"title" validate:"omitempty,max=100"`
	Category      *string `json:"category" validate:"omitempty,gallerycategory"`
	NewsType      *string `json:"newsType" validate:"omitempty,newstype"`
	YouTubeURL    *string `json:"youTubeUrl" validate:"omitempty,url"`
	AllowComments *bool   `json:"allowComments"`
	AllowShares   *bool   `json:"allowShares"`
	File          *Upload `json:"-"`
}

// GalleryListRequest filters the gallery listing
type GalleryListRequest struct {
	ListRequest
	Category string `json:"category" validate:"omitempty,gallerycategory"`
	NewsType string `json:"newsType" validate:"omitempty,newstype"`
	Search   string `json:"search" validate:"max=100"`
}

// ===============================
// EVENT REQUESTS
// ===============================

// CreateEventRequest represents a request to create an event
type CreateEventRequest struct {
	Title         string    `json:"title" validate:"required,max=100"`
	Latitude      float64   `json:"latitude" validate:"min=-90,max=90"`
	Longitude     float64   `json:"longitude" validate:"min=-180,max=180"`
	StartTime     time.Time `json:"startTime" validate:"required"`
	EndTime       time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
	LiveURL       string    `json:"liveUrl" validate:"omitempty,url"`
	AllowComments bool      `json:"allowComments"`
	AllowShares   bool      `json:"allowShares"`
	Poster        *Upload   `json:"-"`
	Images        []Upload  `json:"-"`
	Videos        []Upload  `json:"-"`
}

// UpdateEventRequest represents a partial event update
type UpdateEventRequest struct {
	Title         *string    `json:"title" validate:"omitempty,max=100"`
	Latitude      *float64   `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude     *float64   `json:"longitude" validate:"omitempty,min=-180,max=180"`
	StartTime     *time.Time `json:"startTime"`
	EndTime       *time.Time `json:"endTime"`
	LiveURL       *string    `json:"liveUrl" validate:"omitempty,url"`
	AllowComments *bool      `json:"allowComments"`
	AllowShares   *bool      `json:"allowShares"`
	Poster        *Upload    `json:"-"`
}

// ===============================
// AUTH AND USER REQUESTS
// ===============================

// RegisterRequest represents a request to create an account
type RegisterRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Username    string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,e164"`
	Gender      string `json:"gender" validate:"required,gender"`
}

// LoginRequest represents a request to log in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenPair is an access token with its refresh token
type TokenPair struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	TokenType        string `json:"tokenType"`
	ExpiresIn        int64  `json:"expiresIn"`
	RefreshExpiresIn int64  `json:"refreshExpiresIn"`
}

// AuthResponse is returned by Login
type AuthResponse struct {
	User *models.User `json:"user"`
	*TokenPair
}

// UpdateProfileRequest represents a partial profile update
type UpdateProfileRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=50"`
	Username    *string `json:"username" validate:"omitempty,min=3,max=30,alphanum"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,e164"`
	Gender      *string `json:"gender" validate:"omitempty,gender"`
	Bio         *string `json:"bio" validate:"omitempty,max=160"`
	Photo       *Upload `json:"-"`
}

// ChangeRoleRequest sets a user's role
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

// ===============================
// NOTIFICATION AND REPORT REQUESTS
// ===============================

// CreateNotificationRequest is an admin-issued notification
type CreateNotificationRequest struct {
	ToUser  string `json:"toUser" validate:"required,uuid"`
	Type    string `json:"type" validate:"required,notiftype"`
	Message string `json:"message" validate:"required,max=200"`
}

// CreateReportRequest represents an abuse report on a post
type CreateReportRequest struct {
	PostID      string `json:"postId" validate:"required,objectid"`
	Reason      string `json:"reason" validate:"required,reportreason"`
	Description string `json:"description" validate:"max=200"`
}

// ProcessReportRequest moves a report to a new status
type ProcessReportRequest struct {
	Status string `json:"status" validate:"required,reportstatus"`
}

// ReportSearchRequest filters the report listing
type ReportSearchRequest struct {
	ListRequest
	Reason string `json:"reason" validate:"omitempty,reportreason"`
	Status string `json:"status" validate:"omitempty,reportstatus"`
}

// ReportDetail is a report with the reported post, or its archived copy
type ReportDetail struct {
	Report      *models.Report      `json:"report"`
	Post        *models.Post        `json:"post,omitempty"`
	DeletedPost *models.DeletedPost `json:"deletedPost,omitempty"`
}

// ===============================
// STATS
// ===============================

// AdminStats is the admin dashboard payload
type AdminStats struct {
	Users      *models.UserStats    `json:"users"`
	Content    *models.ContentStats `json:"content"`
	EventReach []models.EventReach  `json:"eventReach"`
}
