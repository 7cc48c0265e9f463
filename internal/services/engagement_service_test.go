package services

import (
	"context"
	"math"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"letsconnect/internal/engagement"
	"letsconnect/internal/models"
	"letsconnect/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// conflictingStore loses the first conflicts saves to a simulated writer.
type conflictingStore struct {
	repositories.EngagementStore

	mu        sync.Mutex
	conflicts int
	saves     int
}

func (s *conflictingStore) SaveEngagement(ctx context.Context, kind engagement.Kind, id string, expectedVersion int64, agg *engagement.Aggregate) error {
	s.mu.Lock()
	s.saves++
	lose := s.saves <= s.conflicts
	s.mu.Unlock()

	if lose {
		return repositories.ErrVersionConflict
	}
	return s.EngagementStore.SaveEngagement(ctx, kind, id, expectedVersion, agg)
}

func fastEngagementConfig() *EngagementServiceConfig {
	return &EngagementServiceConfig{
		ConflictRetries: 3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		CommentsPerPage: 2,
	}
}

func createTextPost(t *testing.T, store repositories.PostStore, owner string) string {
	t.Helper()
	post := &models.Post{
		Aggregate: engagement.NewAggregate(engagement.KindPost, owner),
		Content:   "hello",
		Category:  engagement.UsersPostCategory,
		MediaType: "text",
	}
	require.NoError(t, store.CreatePost(context.Background(), post))
	return post.ID
}

func statusOf(err error) int {
	return GetServiceError(err).GetStatusCode()
}

func TestEngagementService_ToggleLike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner", "")
	liker := env.register(t, "liker", "")
	post := env.seedPost(t, owner.ID, "usersPost")
	target := Target{Kind: engagement.KindPost, ID: post.ID}

	resp, err := env.services.Engagement.ToggleLike(ctx, liker, target)
	require.NoError(t, err)
	assert.Equal(t, "Post Liked Successfully", resp.Message)

	agg, err := env.repos.Content.LoadAggregate(ctx, engagement.KindPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{liker.ID}, agg.Likes)
	assert.Equal(t, 1, agg.LikesCount)

	resp, err = env.services.Engagement.ToggleLike(ctx, liker, target)
	require.NoError(t, err)
	assert.Equal(t, "Post Disliked Successfully", resp.Message)

	agg, err = env.repos.Content.LoadAggregate(ctx, engagement.KindPost, post.ID)
	require.NoError(t, err)
	assert.Empty(t, agg.Likes)
	assert.Equal(t, 0, agg.LikesCount)
}

func TestEngagementService_LikeNotifiesOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner", "")
	liker := env.register(t, "liker", "")
	post := env.seedPost(t, owner.ID, "usersPost")
	target := Target{Kind: engagement.KindPost, ID: post.ID}

	_, err := env.services.Engagement.ToggleLike(ctx, liker, target)
	require.NoError(t, err)
	_, err = env.services.Engagement.ToggleLike(ctx, owner, target)
	require.NoError(t, err)

	page, err := env.services.Notification.ListNotifications(ctx, owner, ListRequest{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1, "self likes are not notified")
	assert.Equal(t, "like", page.Data[0].Type)
	assert.Equal(t, "liker liked your post", page.Data[0].Message)
	assert.Equal(t, post.ID, page.Data[0].EntityID)
}

func TestEngagementService_CommentsAndReplies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner", "")
	other := env.register(t, "other", "")
	post := env.seedPost(t, owner.ID, "usersPost")
	target := Target{Kind: engagement.KindPost, ID: post.ID}

	resp, err := env.services.Engagement.AddComment(ctx, other, target, &CommentRequest{Content: "first"})
	require.NoError(t, err)
	assert.Equal(t, "Comment Added Successfully", resp.Message)

	agg, err := env.repos.Content.LoadAggregate(ctx, engagement.KindPost, post.ID)
	require.NoError(t, err)
	require.Len(t, agg.Comments, 1)
	commentID := agg.Comments[0].ID

	resp, err = env.services.Engagement.AddReply(ctx, owner, target, commentID, &ReplyRequest{Reply: "thanks"})
	require.NoError(t, err)
	assert.Equal(t, "Reply Added Successfully", resp.Message)

	agg, err = env.repos.Content.LoadAggregate(ctx, engagement.KindPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, agg.CommentsCount, "replies count towards commentsCount")
	replyID := agg.Comments[0].Replies[0].ID

	resp, err = env.services.Engagement.ToggleReplyLike(ctx, other, target, commentID, replyID)
	require.NoError(t, err)
	assert.Equal(t, "Reply Liked Successfully", resp.Message)

	resp, err = env.services.Engagement.ToggleCommentLike(ctx, owner, target, commentID)
	require.NoError(t, err)
	assert.Equal(t, "Comment Liked Successfully", resp.Message)

	_, err = env.services.Engagement.EditReply(ctx, other, target, commentID, replyID, &ReplyRequest{Reply: "not mine"})
	require.Error(t, err)
	assert.True(t, IsAuthorizationError(err))

	resp, err = env.services.Engagement.EditComment(ctx, other, target, commentID, &CommentRequest{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "Comment Updated Successfully", resp.Message)

	// the entity owner may delete a comment written by someone else
	resp, err = env.services.Engagement.DeleteComment(ctx, owner, target, commentID)
	require.NoError(t, err)
	assert.Equal(t, "Comment Deleted Successfully", resp.Message)

	agg, err = env.repos.Content.LoadAggregate(ctx, engagement.KindPost, post.ID)
	require.NoError(t, err)
	assert.Empty(t, agg.Comments)
	assert.Equal(t, 0, agg.CommentsCount)
}

func TestEngagementService_CommentErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner", "")
	author := env.register(t, "author", "")
	stranger := env.register(t, "stranger", "")
	post := env.seedPost(t, owner.ID, "usersPost")
	target := Target{Kind: engagement.KindPost, ID: post.ID}

	_, err := env.services.Engagement.AddComment(ctx, author, target, &CommentRequest{Content: "hi"})
	require.NoError(t, err)
	agg, err := env.repos.Content.LoadAggregate(ctx, engagement.KindPost, post.ID)
	require.NoError(t, err)
	commentID := agg.Comments[0].ID

	t.Run("stranger cannot delete", func(t *testing.T) {
		_, err := env.services.Engagement.DeleteComment(ctx, stranger, target, commentID)
		require.Error(t, err)
		assert.True(t, IsAuthorizationError(err))
		assert.Equal(t, http.StatusForbidden, statusOf(err))
	})

	t.Run("unknown comment", func(t *testing.T) {
		_, err := env.services.Engagement.AddReply(ctx, author, target, "missing", &ReplyRequest{Reply: "x"})
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, statusOf(err))
		assert.Equal(t, "Comment Not Found", GetServiceError(err).Message)
	})

	t.Run("empty content", func(t *testing.T) {
		_, err := env.services.Engagement.AddComment(ctx, author, target, &CommentRequest{})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("too long", func(t *testing.T) {
		long := make([]rune, 101)
		for i := range long {
			long[i] = 'a'
		}
		_, err := env.services.Engagement.AddComment(ctx, author, target, &CommentRequest{Content: string(long)})
		require.Error(t, err)
		assert.Equal(t, "Content must be at most 100 characters", GetServiceError(err).Message)
	})

	t.Run("comments off", func(t *testing.T) {
		resp, err := env.services.Engagement.ToggleAllowComments(ctx, owner, target)
		require.NoError(t, err)
		assert.Equal(t, "Comments Are Off Now", resp.Message)

		_, err = env.services.Engagement.AddComment(ctx, author, target, &CommentRequest{Content: "late"})
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, statusOf(err))
		assert.Equal(t, "Comments are Off for This Post", GetServiceError(err).Message)
	})

	t.Run("only owner flips post flags", func(t *testing.T) {
		_, err := env.services.Engagement.ToggleAllowShares(ctx, stranger, target)
		require.Error(t, err)
		assert.True(t, IsAuthorizationError(err))
	})
}

func TestEngagementService_EventModeration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin", engagement.RoleAdmin)
	handler := env.register(t, "handler", engagement.RolePostHandler)
	user := env.register(t, "user", "")
	ev := env.seedEvent(t, handler.ID, time.Now().Add(24*time.Hour))
	target := Target{Kind: engagement.KindEvent, ID: ev.ID}

	_, err := env.services.Engagement.AddComment(ctx, user, target, &CommentRequest{Content: "see you there"})
	require.NoError(t, err)
	agg, err := env.repos.Content.LoadAggregate(ctx, engagement.KindEvent, ev.ID)
	require.NoError(t, err)
	commentID := agg.Comments[0].ID

	resp, err := env.services.Engagement.DeleteComment(ctx, admin, target, commentID)
	require.NoError(t, err)
	assert.Equal(t, "Comment Deleted Successfully", resp.Message)

	// event flags belong to the content managers, not the owner
	_, err = env.services.Engagement.ToggleAllowShares(ctx, user, target)
	require.Error(t, err)
	resp, err = env.services.Engagement.ToggleAllowShares(ctx, admin, target)
	require.NoError(t, err)
	assert.Equal(t, "Sharing Are Off Now", resp.Message)
}

func TestEngagementService_Share(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner", "")
	post := env.seedPost(t, owner.ID, "usersPost")
	target := Target{Kind: engagement.KindPost, ID: post.ID}

	for i := 0; i < 2; i++ {
		resp, err := env.services.Engagement.Share(ctx, owner, target)
		require.NoError(t, err)
		assert.Equal(t, "Post Shared Successfully", resp.Message)
	}
	stored, err := env.repos.Content.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Shares, "repeat shares all count")

	_, err = env.services.Engagement.ToggleAllowShares(ctx, owner, target)
	require.NoError(t, err)
	_, err = env.services.Engagement.Share(ctx, owner, target)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, statusOf(err))
	assert.Equal(t, "Sharing are Off for This Post", GetServiceError(err).Message)
}

func TestEngagementService_TargetErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pr := engagement.Principal{ID: "u1", Role: engagement.RoleUser}

	_, err := env.services.Engagement.ToggleLike(ctx, pr, Target{Kind: engagement.KindGallery, ID: "not-an-id"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	assert.Equal(t, "Invalid Gallery Post ID", GetServiceError(err).Message)

	_, err = env.services.Engagement.ToggleLike(ctx, pr, Target{Kind: engagement.KindEvent, ID: repositories.NewContentID()})
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
	assert.Equal(t, "Event Not Found", GetServiceError(err).Message)
}

func TestEngagementService_ListComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner", "")
	post := env.seedPost(t, owner.ID, "usersPost")
	target := Target{Kind: engagement.KindPost, ID: post.ID}

	for _, text := range []string{"one", "two", "three"} {
		_, err := env.services.Engagement.AddComment(ctx, owner, target, &CommentRequest{Content: text})
		require.NoError(t, err)
	}

	page, err := env.services.Engagement.ListComments(ctx, target, ListRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Comments, 1)
	assert.Equal(t, "three", page.Comments[0].Content)
	assert.Equal(t, 3, page.TotalComments)
	assert.Equal(t, 2, page.TotalPages)

	page, err = env.services.Engagement.ListComments(ctx, target, ListRequest{Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Comments)
	assert.Equal(t, 3, page.TotalComments)
}

func TestEngagementService_ListCommentsHugeWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner", "")
	post := env.seedPost(t, owner.ID, "usersPost")
	target := Target{Kind: engagement.KindPost, ID: post.ID}

	_, err := env.services.Engagement.AddComment(ctx, owner, target, &CommentRequest{Content: "only"})
	require.NoError(t, err)

	for _, req := range []ListRequest{
		{Page: math.MaxInt64, Limit: 20},
		{Page: 3, Limit: 1 << 62},
		{Page: math.MaxInt64, Limit: math.MaxInt64},
	} {
		var page *CommentsPage
		require.NotPanics(t, func() {
			page, err = env.services.Engagement.ListComments(ctx, target, req)
		})
		require.NoError(t, err)
		assert.Empty(t, page.Comments)
		assert.Equal(t, 1, page.TotalComments)
		assert.Equal(t, 1, page.TotalPages)
	}

	page, err := env.services.Engagement.ListComments(ctx, target, ListRequest{Page: 1, Limit: 1 << 62})
	require.NoError(t, err)
	require.Len(t, page.Comments, 1)
	assert.Equal(t, 1, page.TotalPages)
}

func TestEngagementService_RejectsOversizedText(t *testing.T) {
	content := repositories.NewMemoryContentStore()
	ctx := context.Background()
	id := createTextPost(t, content, "owner")
	store := &conflictingStore{EngagementStore: content}
	svc := NewEngagementService(store, nil, zap.NewNop(), fastEngagementConfig())
	target := Target{Kind: engagement.KindPost, ID: id}
	long := strings.Repeat("a", 256)

	_, err := svc.AddComment(ctx, engagement.Principal{ID: "u1"}, target, &CommentRequest{Content: long})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	_, err = svc.AddReply(ctx, engagement.Principal{ID: "u1"}, target, "c1", &ReplyRequest{Reply: long})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	assert.Zero(t, store.saves)
	agg, err := content.LoadAggregate(ctx, engagement.KindPost, id)
	require.NoError(t, err)
	assert.Empty(t, agg.Comments)
}

func TestEngagementService_RetriesVersionConflicts(t *testing.T) {
	content := repositories.NewMemoryContentStore()
	ctx := context.Background()
	id := createTextPost(t, content, "owner")

	t.Run("recovers", func(t *testing.T) {
		store := &conflictingStore{EngagementStore: content, conflicts: 2}
		svc := NewEngagementService(store, nil, zap.NewNop(), fastEngagementConfig())

		resp, err := svc.ToggleLike(ctx, engagement.Principal{ID: "u1"}, Target{Kind: engagement.KindPost, ID: id})
		require.NoError(t, err)
		assert.Equal(t, "Post Liked Successfully", resp.Message)
		assert.Equal(t, 3, store.saves)

		agg, err := content.LoadAggregate(ctx, engagement.KindPost, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"u1"}, agg.Likes, "the retried toggle is applied once")
	})

	t.Run("gives up", func(t *testing.T) {
		store := &conflictingStore{EngagementStore: content, conflicts: 100}
		svc := NewEngagementService(store, nil, zap.NewNop(), fastEngagementConfig())

		_, err := svc.AddComment(ctx, engagement.Principal{ID: "u2"}, Target{Kind: engagement.KindPost, ID: id}, &CommentRequest{Content: "x"})
		require.Error(t, err)
		assert.True(t, IsConflictError(err))
		assert.Equal(t, "VERSION_CONFLICT", GetServiceError(err).Code)
		assert.Equal(t, 4, store.saves, "one attempt plus three retries")
	})
}

func TestEngagementService_ConcurrentLikes(t *testing.T) {
	content := repositories.NewMemoryContentStore()
	ctx := context.Background()
	id := createTextPost(t, content, "owner")

	cfg := fastEngagementConfig()
	cfg.ConflictRetries = 50
	svc := NewEngagementService(content, nil, zap.NewNop(), cfg)

	const users = 10
	var wg sync.WaitGroup
	errs := make(chan error, users)
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			pr := engagement.Principal{ID: string(rune('a' + n))}
			_, err := svc.ToggleLike(ctx, pr, Target{Kind: engagement.KindPost, ID: id})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	agg, err := content.LoadAggregate(ctx, engagement.KindPost, id)
	require.NoError(t, err)
	assert.Len(t, agg.Likes, users)
	assert.Equal(t, users, agg.LikesCount)
}
