// file: internal/models/content.go
package models

import (
	"math"
	"time"

	"letsconnect/internal/engagement"
)

// ===============================
// ENUMS
// ===============================

var (
	PostCategories    = []string{"business", "politics", "technology", "science", "health", "sports", "crime", "usersPost", "document"}
	PostMediaTypes    = []string{"text", "image", "video", "docs"}
	GalleryCategories = []string{"image", "video", "reel"}
	GalleryNewsTypes  = []string{"pakistani", "international"}
)

// ===============================
// SHARED
// ===============================

// Media is a file held by the blob store.
type Media struct {
	FileID   string `json:"fileId" bson:"fileId"`
	FileName string `json:"fileName" bson:"fileName"`
	URL      string `json:"url" bson:"url"`
}

// GeoPoint is a GeoJSON point; coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

// NewGeoPoint builds a point from latitude and longitude.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Lat returns the latitude of the point.
func (g GeoPoint) Lat() float64 {
	if len(g.Coordinates) < 2 {
		return 0
	}
	return g.Coordinates[1]
}

// Lng returns the longitude of the point.
func (g GeoPoint) Lng() float64 {
	if len(g.Coordinates) < 1 {
		return 0
	}
	return g.Coordinates[0]
}

// ===============================
// CONTENT ENTITIES
// ===============================

// Post is a user or newsroom post.
type Post struct {
	ID                   string `json:"_id" bson:"_id"`
	engagement.Aggregate `bson:",inline"`

	Content   string    `json:"content,omitempty" bson:"content,omitempty"`
	Category  string    `json:"category" bson:"category"`
	MediaType string    `json:"mediaType" bson:"mediaType"`
	Media     *Media    `json:"media,omitempty" bson:"media,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// PopularityScore ranks posts in the popular feed.
func (p *Post) PopularityScore() int64 {
	return int64(p.LikesCount+p.CommentsCount) + p.Shares
}

// GalleryPost is an image, video or reel in the media gallery.
type GalleryPost struct {
	ID                   string `json:"_id" bson:"_id"`
	engagement.Aggregate `bson:",inline"`

	Title      string    `json:"title" bson:"title"`
	Category   string    `json:"category" bson:"category"`
	NewsType   string    `json:"newsType" bson:"newsType"`
	Media      *Media    `json:"media,omitempty" bson:"media,omitempty"`
	YouTubeURL string    `json:"youTubeUrl,omitempty" bson:"youTubeUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Attendance records a user attending an event.
type Attendance struct {
	UserID    string    `json:"userId" bson:"userId"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Event is an admin-curated event with attendance tracking.
type Event struct {
	ID                   string `json:"_id" bson:"_id"`
	engagement.Aggregate `bson:",inline"`

	Title           string       `json:"title" bson:"title"`
	Location        GeoPoint     `json:"location" bson:"location"`
	Poster          Media        `json:"poster" bson:"poster"`
	StartTime       time.Time    `json:"startTime" bson:"startTime"`
	EndTime         time.Time    `json:"endTime" bson:"endTime"`
	LiveURL         string       `json:"liveUrl,omitempty" bson:"liveUrl,omitempty"`
	Images          []Media      `json:"images" bson:"images"`
	Videos          []Media      `json:"videos" bson:"videos"`
	Attendance      []Attendance `json:"attendance,omitempty" bson:"attendance"`
	AttendanceCount int          `json:"attendanceCount" bson:"attendanceCount"`
	CreatedAt       time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// Ended reports whether the event is over at t.
func (e *Event) Ended(t time.Time) bool {
	return !e.EndTime.After(t)
}

// IsAttending reports whether userID is on the attendance list.
func (e *Event) IsAttending(userID string) bool {
	for _, a := range e.Attendance {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// DeletedPost is the archived snapshot of a removed user post.
type DeletedPost struct {
	ID         string `json:"_id" bson:"_id"`
	PostRealID string `json:"postRealId" bson:"postRealId"`

	engagement.Aggregate `bson:",inline"`

	Content       string    `json:"content" bson:"content"`
	Category      string    `json:"category" bson:"category"`
	MediaType     string    `json:"mediaType" bson:"mediaType"`
	Media         *Media    `json:"media,omitempty" bson:"media,omitempty"`
	PostCreatedAt time.Time `json:"postCreatedAt" bson:"postCreatedAt"`
	PostUpdatedAt time.Time `json:"postUpdatedAt" bson:"postUpdatedAt"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

// NewDeletedPost snapshots p for the archive.
func NewDeletedPost(id string, p *Post, at time.Time) *DeletedPost {
	content := p.Content
	if content == "" {
		content = "Nothing"
	}
	return &DeletedPost{
		ID:            id,
		PostRealID:    p.ID,
		Aggregate:     p.Aggregate.Clone(),
		Content:       content,
		Category:      p.Category,
		MediaType:     p.MediaType,
		Media:         p.Media,
		PostCreatedAt: p.CreatedAt,
		PostUpdatedAt: p.UpdatedAt,
		CreatedAt:     at,
	}
}

// ===============================
// LIST FILTERS
// ===============================

// ListParams is storage-level skip/limit pagination.
type ListParams struct {
	Page  int
	Limit int
}

// Skip returns the number of documents before the requested page.
func (p ListParams) Skip() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// PostFilter selects posts for listing.
type PostFilter struct {
	Category string
	OwnerIDs []string
}

// GalleryFilter selects gallery posts for listing.
type GalleryFilter struct {
	Category string
	NewsType string
	Search   string
}

// EventWindow selects events by time.
type EventWindow string

const (
	EventsRecent   EventWindow = "recent"
	EventsUpcoming EventWindow = "upcoming"
)
