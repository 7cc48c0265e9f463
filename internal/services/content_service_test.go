package services

import (
	"context"
	"math"
	"net/http"
	"testing"
	"time"

	"letsconnect/internal/engagement"
	"letsconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===============================
// GALLERY
// ===============================

func TestGalleryService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "viewer", "")
	handler := env.register(t, "editor", engagement.RolePostHandler)

	req := &CreateGalleryRequest{
		Title:    "  Sunset OVER Lahore ",
		Category: "image",
		NewsType: "pakistani",
		File:     &Upload{Name: "sunset.png", Data: pngBytes},
	}

	_, err := env.services.Gallery.CreateGallery(ctx, user, req)
	require.Error(t, err)
	assert.True(t, IsAuthorizationError(err))

	g, err := env.services.Gallery.CreateGallery(ctx, handler, req)
	require.NoError(t, err)
	assert.Equal(t, "sunset over lahore", g.Title)
	require.NotNil(t, g.Media)
	assert.True(t, env.media.Has(g.Media.FileID))

	_, err = env.services.Gallery.CreateGallery(ctx, handler, &CreateGalleryRequest{
		Title:    "match highlights",
		Category: "video",
		NewsType: "international",
	})
	require.Error(t, err)
	assert.Equal(t, "Please Enter a YouTube URL", GetServiceError(err).Message)

	video, err := env.services.Gallery.CreateGallery(ctx, handler, &CreateGalleryRequest{
		Title:      "match highlights",
		Category:   "video",
		NewsType:   "international",
		YouTubeURL: "https://www.youtube.com/watch?v=abc",
	})
	require.NoError(t, err)
	assert.Nil(t, video.Media)

	list, err := env.services.Gallery.ListGallery(ctx, &GalleryListRequest{NewsType: "pakistani"})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, g.ID, list.Data[0].ID)

	list, err = env.services.Gallery.ListGallery(ctx, &GalleryListRequest{Search: "HIGHLIGHT"})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, video.ID, list.Data[0].ID)

	title := "Dusk"
	updated, err := env.services.Gallery.UpdateGallery(ctx, handler, g.ID, &UpdateGalleryRequest{
		Title: &title,
		File:  &Upload{Name: "dusk.png", Data: pngBytes},
	})
	require.NoError(t, err)
	assert.Equal(t, "dusk", updated.Title)
	assert.False(t, env.media.Has(g.Media.FileID))

	require.NoError(t, env.services.Gallery.DeleteGallery(ctx, handler, g.ID))
	assert.False(t, env.media.Has(updated.Media.FileID))

	_, err = env.services.Gallery.GetGallery(ctx, g.ID)
	assert.True(t, IsNotFoundError(err))
	assert.Equal(t, "Gallery Post Not Found", GetServiceError(err).Message)
}

// ===============================
// EVENTS
// ===============================

func TestEventService_CreateEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "guest", "")
	admin := env.register(t, "admin", engagement.RoleAdmin)

	start := time.Now().Add(24 * time.Hour).UTC()
	req := &CreateEventRequest{
		Title:     "Tech Meetup",
		Latitude:  33.6,
		Longitude: 73.1,
		StartTime: start,
		EndTime:   start.Add(3 * time.Hour),
		Poster:    &Upload{Name: "poster.png", Data: pngBytes},
		Images:    []Upload{{Name: "hall.png", Data: pngBytes}},
		Videos:    []Upload{{Name: "teaser.mp4", Data: mp4Bytes}},
	}

	_, err := env.services.Event.CreateEvent(ctx, user, req)
	require.Error(t, err)
	assert.True(t, IsAuthorizationError(err))

	ev, err := env.services.Event.CreateEvent(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, "tech meetup", ev.Title)
	assert.InDelta(t, 33.6, ev.Location.Lat(), 1e-9)
	assert.InDelta(t, 73.1, ev.Location.Lng(), 1e-9)
	assert.True(t, env.media.Has(ev.Poster.FileID))
	require.Len(t, ev.Images, 1)
	require.Len(t, ev.Videos, 1)

	t.Run("end before start", func(t *testing.T) {
		bad := *req
		bad.EndTime = start.Add(-time.Hour)
		_, err := env.services.Event.CreateEvent(ctx, admin, &bad)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("poster required", func(t *testing.T) {
		bad := *req
		bad.Poster = nil
		_, err := env.services.Event.CreateEvent(ctx, admin, &bad)
		require.Error(t, err)
		assert.Equal(t, "Please Upload a Poster", GetServiceError(err).Message)
	})

	t.Run("bad video rolls back uploads", func(t *testing.T) {
		bad := *req
		bad.Poster = &Upload{Name: "p2.png", Data: pngBytes}
		bad.Videos = []Upload{{Name: "not-a-video.png", Data: pngBytes}}
		_, err := env.services.Event.CreateEvent(ctx, admin, &bad)
		require.Error(t, err)

		upcoming, err := env.services.Event.ListEvents(ctx, models.EventsUpcoming, ListRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), upcoming.Total)
	})
}

func TestEventService_Attendance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin", engagement.RoleAdmin)
	guest := env.register(t, "guest", "")

	upcoming := env.seedEvent(t, admin.ID, time.Now().Add(48*time.Hour))
	ended := env.seedEvent(t, admin.ID, time.Now().Add(-time.Hour))

	resp, err := env.services.Event.Attend(ctx, guest, upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, "Event Attended Successfully", resp.Message)

	_, err = env.services.Event.Attend(ctx, guest, upcoming.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(err))

	_, err = env.services.Event.Attend(ctx, guest, ended.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	assert.Equal(t, "Event Has Ended", GetServiceError(err).Message)

	_, err = env.services.Event.Attend(ctx, admin, upcoming.ID)
	require.NoError(t, err)

	page, err := env.services.Event.ListAttendance(ctx, upcoming.ID, ListRequest{Page: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Attendance, 1)
	assert.Equal(t, guest.ID, page.Attendance[0].UserID)
	assert.Equal(t, 2, page.TotalAttendance)
	assert.Equal(t, 2, page.TotalPages)

	for _, req := range []ListRequest{
		{Page: math.MaxInt64, Limit: 20},
		{Page: 3, Limit: 1 << 62},
	} {
		require.NotPanics(t, func() {
			page, err = env.services.Event.ListAttendance(ctx, upcoming.ID, req)
		})
		require.NoError(t, err)
		assert.Empty(t, page.Attendance)
		assert.Equal(t, 2, page.TotalAttendance)
		assert.Equal(t, 1, page.TotalPages)
	}

	got, err := env.services.Event.GetEvent(ctx, upcoming.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Attendance)
	assert.Equal(t, 2, got.AttendanceCount)

	recent, err := env.services.Event.ListEvents(ctx, models.EventsRecent, ListRequest{})
	require.NoError(t, err)
	require.Len(t, recent.Data, 1)
	assert.Equal(t, ended.ID, recent.Data[0].ID)

	_, err = env.services.Event.ListEvents(ctx, models.EventWindow("someday"), ListRequest{})
	assert.True(t, IsValidationError(err))
}

func TestEventService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin", engagement.RoleAdmin)
	ev := env.seedEvent(t, admin.ID, time.Now().Add(48*time.Hour))

	before := ev.StartTime.Add(-time.Hour)
	_, err := env.services.Event.UpdateEvent(ctx, admin, ev.ID, &UpdateEventRequest{EndTime: &before})
	require.Error(t, err)
	assert.Equal(t, "End Time Must Be After Start Time", GetServiceError(err).Message)

	lat := 24.86
	updated, err := env.services.Event.UpdateEvent(ctx, admin, ev.ID, &UpdateEventRequest{
		Latitude: &lat,
		Poster:   &Upload{Name: "new.png", Data: pngBytes},
	})
	require.NoError(t, err)
	assert.InDelta(t, 24.86, updated.Location.Lat(), 1e-9)
	assert.InDelta(t, 73.0, updated.Location.Lng(), 1e-9)
	assert.True(t, env.media.Has(updated.Poster.FileID))

	require.NoError(t, env.services.Event.DeleteEvent(ctx, admin, ev.ID))
	assert.False(t, env.media.Has(updated.Poster.FileID))
	_, err = env.services.Event.GetEvent(ctx, ev.ID)
	assert.True(t, IsNotFoundError(err))
}
