package services

import (
	"context"
	"testing"
	"time"

	"letsconnect/internal/cache"
	"letsconnect/internal/config"
	"letsconnect/internal/engagement"
	"letsconnect/internal/events"
	"letsconnect/internal/media"
	"letsconnect/internal/models"
	"letsconnect/internal/repositories"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")
	mp4Bytes = []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
)

type testEnv struct {
	repos    *repositories.Collection
	media    *media.MemoryStore
	services *ServiceCollection
}

func testConfig() *config.Config {
	return &config.Config{
		Mongo: config.MongoConfig{Provider: "memory", ConflictRetries: 3},
		Auth: config.AuthConfig{
			AccessSecret:  "test-access-secret-0123456789abcdef",
			RefreshSecret: "test-refresh-secret-0123456789abcdef",
			AccessExpiry:  time.Minute,
			RefreshExpiry: time.Hour,
			BCryptCost:    bcrypt.MinCost,
			Issuer:        "letsconnect-test",
			PrincipalTTL:  time.Minute,
		},
		Cloudinary: config.CloudinaryConfig{
			MaxFileSize:  1 << 20,
			AllowedTypes: []string{"image/png", "video/mp4", "application/pdf"},
		},
		Pagination: config.PaginationConfig{
			DefaultLimit:        10,
			MaxLimit:            50,
			CommentsPerPage:     20,
			AttendancePerPage:   20,
			PopularRecentWindow: 5 * 24 * time.Hour,
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	repos := repositories.NewMemoryCollection(logger)
	store := media.NewMemoryStore()
	bus := events.NewEventBus(&events.EventBusConfig{BufferSize: 16}, logger)
	c := cache.NewMemoryCache(&cache.Config{Provider: "memory", TTL: time.Minute}, logger)

	sc, err := NewServiceCollection(repos, c, bus, store, testConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sc.Shutdown(ctx)
	})

	return &testEnv{repos: repos, media: store, services: sc}
}

// register creates an account with role and returns its principal.
func (e *testEnv) register(t *testing.T, username, role string) engagement.Principal {
	t.Helper()

	user, err := e.services.Auth.Register(context.Background(), &RegisterRequest{
		Name:     "Test " + username,
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
		Gender:   "other",
	})
	require.NoError(t, err)

	if role == "" {
		role = engagement.RoleUser
	}
	if role != engagement.RoleUser {
		require.NoError(t, e.repos.User.SetRole(context.Background(), user.ID, role))
	}
	return engagement.Principal{ID: user.ID, Role: role}
}

// seedPost stores a post owned by owner directly, bypassing uploads.
func (e *testEnv) seedPost(t *testing.T, owner, category string) *models.Post {
	t.Helper()
	post := &models.Post{
		Aggregate: engagement.NewAggregate(engagement.KindPost, owner),
		Content:   "hello",
		Category:  category,
		MediaType: "text",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, e.repos.Content.CreatePost(context.Background(), post))
	return post
}

// seedEvent stores an event ending at end.
func (e *testEnv) seedEvent(t *testing.T, owner string, end time.Time) *models.Event {
	t.Helper()
	ev := &models.Event{
		Aggregate: engagement.NewAggregate(engagement.KindEvent, owner),
		Title:     "meetup",
		Location:  models.NewGeoPoint(33.6, 73.0),
		Poster:    models.Media{FileID: media.DefaultFileID, FileName: "poster.png"},
		StartTime: end.Add(-2 * time.Hour),
		EndTime:   end,
		Images:    []models.Media{},
		Videos:    []models.Media{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, e.repos.Content.CreateEvent(context.Background(), ev))
	return ev
}
