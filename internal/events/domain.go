package events

// Event types
const (
	TypeEntityLiked  = "engagement.liked"
	TypeCommentAdded = "engagement.commented"
	TypeUserFollowed = "user.followed"
)

// EntityLikedEvent is emitted when a user likes a post, gallery post or event
type EntityLikedEvent struct {
	BaseEvent
	Kind     string `json:"kind"`
	EntityID string `json:"entity_id"`
	OwnerID  string `json:"owner_id"`
}

// NewEntityLikedEvent creates an EntityLikedEvent for likerID
func NewEntityLikedEvent(likerID, kind, entityID, ownerID string) *EntityLikedEvent {
	return &EntityLikedEvent{
		BaseEvent: newBase(TypeEntityLiked, likerID),
		Kind:      kind,
		EntityID:  entityID,
		OwnerID:   ownerID,
	}
}

// CommentAddedEvent is emitted when a comment is added to an entity
type CommentAddedEvent struct {
	BaseEvent
	Kind      string `json:"kind"`
	EntityID  string `json:"entity_id"`
	OwnerID   string `json:"owner_id"`
	CommentID string `json:"comment_id"`
	Preview   string `json:"preview"`
}

// NewCommentAddedEvent creates a CommentAddedEvent for commenterID
func NewCommentAddedEvent(commenterID, kind, entityID, ownerID, commentID, content string) *CommentAddedEvent {
	preview := []rune(content)
	if len(preview) > 50 {
		preview = append(preview[:50], '.', '.', '.')
	}
	return &CommentAddedEvent{
		BaseEvent: newBase(TypeCommentAdded, commenterID),
		Kind:      kind,
		EntityID:  entityID,
		OwnerID:   ownerID,
		CommentID: commentID,
		Preview:   string(preview),
	}
}

// UserFollowedEvent is emitted when followerID starts following FolloweeID
type UserFollowedEvent struct {
	BaseEvent
	FolloweeID string `json:"followee_id"`
}

// NewUserFollowedEvent creates a UserFollowedEvent
func NewUserFollowedEvent(followerID, followeeID string) *UserFollowedEvent {
	return &UserFollowedEvent{
		BaseEvent:  newBase(TypeUserFollowed, followerID),
		FolloweeID: followeeID,
	}
}
