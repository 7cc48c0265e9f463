// Package engagement holds the comment, reply, like and share aggregate shared
// by posts, gallery posts and events. Everything here is in-memory mutation;
// callers load an Aggregate, mutate it, and persist it through the content store.
package engagement

import (
	"time"

	"github.com/gofrs/uuid"
)

// Kind identifies the content entity an aggregate is attached to.
type Kind string

const (
	KindPost    Kind = "post"
	KindGallery Kind = "gallery"
	KindEvent   Kind = "event"
)

// Kinds lists every engagable kind.
var Kinds = []Kind{KindPost, KindGallery, KindEvent}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPost, KindGallery, KindEvent:
		return true
	}
	return false
}

// Roles
const (
	RoleUser          = "user"
	RoleAdmin         = "admin"
	RolePostHandler   = "postHandler"
	RoleReportHandler = "reportHandler"
)

// Principal is the authenticated caller of an engagement operation.
type Principal struct {
	ID   string
	Role string
}

// Reply is a single answer nested under a Comment.
type Reply struct {
	ID        string    `json:"_id" bson:"_id"`
	OwnerID   string    `json:"ownerId" bson:"ownerId"`
	Reply     string    `json:"reply" bson:"reply"`
	Likes     []string  `json:"likes" bson:"likes"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Comment is a top-level comment on a content entity.
type Comment struct {
	ID        string    `json:"_id" bson:"_id"`
	OwnerID   string    `json:"ownerId" bson:"ownerId"`
	Content   string    `json:"content" bson:"content"`
	Likes     []string  `json:"likes" bson:"likes"`
	Replies   []Reply   `json:"replies" bson:"replies"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Aggregate is the engagement state of one content entity. LikesCount and
// CommentsCount are derived; RecomputeCounts must run after every mutation.
type Aggregate struct {
	Kind          Kind      `json:"-" bson:"-"`
	OwnerID       string    `json:"ownerId" bson:"ownerId"`
	AllowComments bool      `json:"allowComments" bson:"allowComments"`
	AllowShares   bool      `json:"allowShares" bson:"allowShares"`
	Likes         []string  `json:"likes" bson:"likes"`
	LikesCount    int       `json:"likesCount" bson:"likesCount"`
	Shares        int64     `json:"shares" bson:"shares"`
	Comments      []Comment `json:"comments,omitempty" bson:"comments"`
	CommentsCount int       `json:"commentsCount" bson:"commentsCount"`
	Version       int64     `json:"version" bson:"version"`
}

// NewAggregate returns an empty aggregate with both allow flags on.
func NewAggregate(kind Kind, ownerID string) Aggregate {
	return Aggregate{
		Kind:          kind,
		OwnerID:       ownerID,
		AllowComments: true,
		AllowShares:   true,
		Likes:         []string{},
		Comments:      []Comment{},
	}
}

// Clone returns a deep copy so stores never share slices with callers.
func (a *Aggregate) Clone() Aggregate {
	out := *a
	out.Likes = append([]string(nil), a.Likes...)
	out.Comments = make([]Comment, len(a.Comments))
	for i, c := range a.Comments {
		c.Likes = append([]string(nil), c.Likes...)
		replies := make([]Reply, len(c.Replies))
		for j, r := range c.Replies {
			r.Likes = append([]string(nil), r.Likes...)
			replies[j] = r
		}
		c.Replies = replies
		out.Comments[i] = c
	}
	return out
}

var (
	newID = func() string { return uuid.Must(uuid.NewV4()).String() }
	now   = func() time.Time { return time.Now().UTC() }
)
