package repositories

import (
	"context"
	"testing"
	"time"

	"letsconnect/internal/engagement"
	"letsconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPost(t *testing.T, store ContentStore, owner, category string, created time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		Aggregate: engagement.NewAggregate(engagement.KindPost, owner),
		Content:   "hello",
		Category:  category,
		MediaType: "text",
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, store.CreatePost(context.Background(), post))
	require.NotEmpty(t, post.ID)
	return post
}

func TestMemorySaveEngagementVersioning(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()
	post := seedPost(t, store, "owner", "usersPost", time.Now())

	first, err := store.LoadAggregate(ctx, engagement.KindPost, post.ID)
	require.NoError(t, err)
	second, err := store.LoadAggregate(ctx, engagement.KindPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, engagement.KindPost, first.Kind)

	first.ToggleLike("u1")
	require.NoError(t, store.SaveEngagement(ctx, engagement.KindPost, post.ID, first.Version, first))

	second.ToggleLike("u2")
	err = store.SaveEngagement(ctx, engagement.KindPost, post.ID, second.Version, second)
	assert.ErrorIs(t, err, ErrVersionConflict)

	stored, err := store.LoadAggregate(ctx, engagement.KindPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, stored.Likes)
	assert.Equal(t, 1, stored.LikesCount)
	assert.Equal(t, int64(1), stored.Version)
}

func TestMemorySaveEngagementRecomputesCounts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()
	post := seedPost(t, store, "owner", "usersPost", time.Now())

	agg, err := store.LoadAggregate(ctx, engagement.KindPost, post.ID)
	require.NoError(t, err)
	c, err := agg.AddComment("u1", "first")
	require.NoError(t, err)
	_, err = agg.AddReply(c.ID, "u2", "reply")
	require.NoError(t, err)

	// a stale count on the caller side must not leak into storage
	agg.CommentsCount = 99
	require.NoError(t, store.SaveEngagement(ctx, engagement.KindPost, post.ID, agg.Version, agg))

	got, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentsCount)
}

func TestMemoryEntityUpdateBumpsVersion(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()
	post := seedPost(t, store, "owner", "usersPost", time.Now())

	agg, err := store.LoadAggregate(ctx, engagement.KindPost, post.ID)
	require.NoError(t, err)

	post.AllowComments = false
	require.NoError(t, store.UpdatePost(ctx, post))

	agg.ToggleLike("u1")
	assert.ErrorIs(t, store.SaveEngagement(ctx, engagement.KindPost, post.ID, agg.Version, agg), ErrVersionConflict)
}

func TestMemoryIncrementShares(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()
	post := seedPost(t, store, "owner", "usersPost", time.Now())

	require.NoError(t, store.IncrementShares(ctx, engagement.KindPost, post.ID))
	require.NoError(t, store.IncrementShares(ctx, engagement.KindPost, post.ID))

	post.AllowShares = false
	require.NoError(t, store.UpdatePost(ctx, post))
	assert.ErrorIs(t, store.IncrementShares(ctx, engagement.KindPost, post.ID), engagement.ErrSharesDisabled)
	assert.ErrorIs(t, store.IncrementShares(ctx, engagement.KindPost, "missing"), ErrNotFound)

	got, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Shares)
}

func TestMemoryListPostsStripsComments(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	old := seedPost(t, store, "a", "usersPost", base)
	seedPost(t, store, "b", "sports", base.Add(time.Hour))
	newest := seedPost(t, store, "a", "usersPost", base.Add(2*time.Hour))

	agg, err := store.LoadAggregate(ctx, engagement.KindPost, old.ID)
	require.NoError(t, err)
	_, err = agg.AddComment("u1", "hi")
	require.NoError(t, err)
	require.NoError(t, store.SaveEngagement(ctx, engagement.KindPost, old.ID, agg.Version, agg))

	posts, total, err := store.ListPosts(ctx, models.PostFilter{Category: "usersPost"}, models.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, posts, 2)
	assert.Equal(t, newest.ID, posts[0].ID)
	assert.Nil(t, posts[1].Comments)
	assert.Equal(t, 1, posts[1].CommentsCount)

	posts, total, err = store.ListPosts(ctx, models.PostFilter{OwnerIDs: []string{"b"}}, models.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, posts, 1)

	posts, _, err = store.ListPosts(ctx, models.PostFilter{OwnerIDs: []string{}}, models.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestMemoryPopularPostsRecentFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()
	now := time.Now()

	stale := seedPost(t, store, "a", "usersPost", now.Add(-30*24*time.Hour))
	fresh := seedPost(t, store, "b", "usersPost", now)
	seedPost(t, store, "c", "politics", now)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.IncrementShares(ctx, engagement.KindPost, stale.ID))
	}

	posts, err := store.PopularPosts(ctx, now.Add(-5*24*time.Hour), models.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, fresh.ID, posts[0].ID)
	assert.Equal(t, stale.ID, posts[1].ID)
}

func TestMemoryAttendance(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()
	now := time.Now()

	event := &models.Event{
		Aggregate: engagement.NewAggregate(engagement.KindEvent, "admin"),
		Title:     "Meetup",
		Location:  models.NewGeoPoint(31.5, 74.3),
		StartTime: now.Add(time.Hour),
		EndTime:   now.Add(2 * time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, store.CreateEvent(ctx, event))

	require.NoError(t, store.AddAttendance(ctx, event.ID, "u1", now))
	assert.ErrorIs(t, store.AddAttendance(ctx, event.ID, "u1", now), ErrAlreadyAttending)
	assert.ErrorIs(t, store.AddAttendance(ctx, event.ID, "u2", now.Add(3*time.Hour)), ErrEventEnded)
	assert.ErrorIs(t, store.AddAttendance(ctx, "missing", "u2", now), ErrNotFound)

	got, err := store.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AttendanceCount)
	assert.True(t, got.IsAttending("u1"))

	upcoming, total, err := store.ListEvents(ctx, models.EventsUpcoming, now, models.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Nil(t, upcoming[0].Attendance)

	recent, _, err := store.ListEvents(ctx, models.EventsRecent, now, models.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestMemoryGallerySearch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()

	for _, title := range []string{"Sunset over Lahore", "City lights", "sunset drive"} {
		require.NoError(t, store.CreateGallery(ctx, &models.GalleryPost{
			Aggregate: engagement.NewAggregate(engagement.KindGallery, "admin"),
			Title:     title,
			Category:  "image",
			NewsType:  "pakistani",
			CreatedAt: time.Now(),
		}))
	}

	items, total, err := store.ListGallery(ctx, models.GalleryFilter{Search: "SUNSET"}, models.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
}

func TestMemoryArchivePost(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContentStore()
	post := seedPost(t, store, "owner", "usersPost", time.Now())
	post.Content = ""

	require.NoError(t, store.ArchivePost(ctx, models.NewDeletedPost("", post, time.Now())))
	require.NoError(t, store.DeletePost(ctx, post.ID))

	archived, err := store.GetDeletedPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nothing", archived.Content)

	_, err = store.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
