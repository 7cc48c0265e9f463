package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"letsconnect/internal/engagement"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===============================
// AUTH
// ===============================

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.services.Auth.Register(ctx, &RegisterRequest{
		Name:     "Ada Lovelace",
		Username: "Ada",
		Email:    "Ada@Example.com",
		Password: "correct-horse",
		Gender:   "female",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, engagement.RoleUser, user.Role)
	assert.Empty(t, user.PasswordHash)

	_, err = env.services.Auth.Register(ctx, &RegisterRequest{
		Name: "Ada Again", Username: "ada", Email: "ada@example.com", Password: "correct-horse", Gender: "female",
	})
	require.Error(t, err)
	assert.True(t, IsConflictError(err))

	_, err = env.services.Auth.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "wrong-password"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))

	auth, err := env.services.Auth.Login(ctx, &LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", auth.TokenType)
	assert.NotEmpty(t, auth.AccessToken)
	assert.NotEmpty(t, auth.RefreshToken)

	pr, err := env.services.Auth.Authenticate(ctx, auth.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, pr.ID)
	assert.Equal(t, engagement.RoleUser, pr.Role)

	_, err = env.services.Auth.Authenticate(ctx, auth.RefreshToken)
	require.Error(t, err, "refresh tokens are not access tokens")
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))

	pair, err := env.services.Auth.Refresh(ctx, &RefreshRequest{RefreshToken: auth.RefreshToken})
	require.NoError(t, err)
	_, err = env.services.Auth.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
}

func TestAuthService_RejectsForeignTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pr := env.register(t, "mallory", "")

	claims := jwt.RegisteredClaims{
		Subject:   pr.ID,
		Issuer:    "letsconnect-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{TokenType: tokenTypeAccess, RegisteredClaims: claims}).
		SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	_, err = env.services.Auth.Authenticate(ctx, forged)
	require.Error(t, err)
	assert.Equal(t, "Invalid Token", GetServiceError(err).Message)

	_, err = env.services.Auth.Authenticate(ctx, "not.a.token")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
}

// ===============================
// USERS
// ===============================

func TestUserService_BanFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin", engagement.RoleAdmin)
	user := env.register(t, "troll", "")

	login, err := env.services.Auth.Login(ctx, &LoginRequest{Email: "troll@example.com", Password: "password123"})
	require.NoError(t, err)
	// warm the principal cache
	_, err = env.services.Auth.Authenticate(ctx, login.AccessToken)
	require.NoError(t, err)

	_, err = env.services.User.ToggleBan(ctx, user, admin.ID)
	require.Error(t, err)
	assert.True(t, IsAuthorizationError(err))

	_, err = env.services.User.ToggleBan(ctx, admin, admin.ID)
	require.Error(t, err)
	assert.Equal(t, "You Cannot Ban Yourself", GetServiceError(err).Message)

	resp, err := env.services.User.ToggleBan(ctx, admin, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "User Banned Successfully", resp.Message)

	_, err = env.services.Auth.Authenticate(ctx, login.AccessToken)
	require.Error(t, err, "ban applies without waiting for the cache to expire")
	assert.Equal(t, http.StatusForbidden, statusOf(err))

	_, err = env.services.Auth.Login(ctx, &LoginRequest{Email: "troll@example.com", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, "Your Account Has Been Banned", GetServiceError(err).Message)

	resp, err = env.services.User.ToggleBan(ctx, admin, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "User Unbanned Successfully", resp.Message)
	_, err = env.services.Auth.Authenticate(ctx, login.AccessToken)
	require.NoError(t, err)
}

func TestUserService_ChangeRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin", engagement.RoleAdmin)
	user := env.register(t, "helper", "")

	login, err := env.services.Auth.Login(ctx, &LoginRequest{Email: "helper@example.com", Password: "password123"})
	require.NoError(t, err)
	_, err = env.services.Auth.Authenticate(ctx, login.AccessToken)
	require.NoError(t, err)

	_, err = env.services.User.ChangeRole(ctx, user, user.ID, &ChangeRoleRequest{Role: engagement.RoleAdmin})
	require.Error(t, err)
	assert.True(t, IsAuthorizationError(err))

	_, err = env.services.User.ChangeRole(ctx, admin, user.ID, &ChangeRoleRequest{Role: "superuser"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	resp, err := env.services.User.ChangeRole(ctx, admin, user.ID, &ChangeRoleRequest{Role: engagement.RoleReportHandler})
	require.NoError(t, err)
	assert.Equal(t, "Role Updated Successfully", resp.Message)

	pr, err := env.services.Auth.Authenticate(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, engagement.RoleReportHandler, pr.Role)
}

func TestUserService_FollowAndFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", "")
	bob := env.register(t, "bob", "")

	_, err := env.services.User.ToggleFollow(ctx, alice, alice.ID)
	require.Error(t, err)
	assert.Equal(t, "You Cannot Follow Yourself", GetServiceError(err).Message)

	_, err = env.services.User.ToggleFollow(ctx, alice, "42")
	require.Error(t, err)
	assert.Equal(t, "Invalid User ID", GetServiceError(err).Message)

	resp, err := env.services.User.ToggleFollow(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Followed Successfully", resp.Message)

	followers, err := env.services.User.Followers(ctx, bob.ID, ListRequest{})
	require.NoError(t, err)
	require.Len(t, followers.Data, 1)
	assert.Equal(t, "alice", followers.Data[0].Username)

	following, err := env.services.User.Following(ctx, alice.ID, ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), following.Total)

	profile, err := env.services.User.GetProfile(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.FollowersCount)

	notes, err := env.services.Notification.ListNotifications(ctx, bob, ListRequest{})
	require.NoError(t, err)
	require.Len(t, notes.Data, 1)
	assert.Equal(t, "alice started following you", notes.Data[0].Message)

	resp, err = env.services.User.ToggleFollow(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unfollowed Successfully", resp.Message)

	resp, err = env.services.User.ToggleShowPoints(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Points Are Hidden Now", resp.Message)
	resp, err = env.services.User.ToggleShowPoints(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Points Are Visible Now", resp.Message)

	resp, err = env.services.User.ToggleShowBadges(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Badges Are Hidden Now", resp.Message)
}

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", "")
	env.register(t, "bob", "")

	bio := "  gopher  "
	updated, err := env.services.User.UpdateProfile(ctx, alice, &UpdateProfileRequest{
		Bio:   &bio,
		Photo: &Upload{Name: "me.png", Data: pngBytes},
	})
	require.NoError(t, err)
	assert.Equal(t, "gopher", updated.Bio)
	require.NotNil(t, updated.Photo)
	firstPhoto := updated.Photo.FileID

	taken := "bob"
	_, err = env.services.User.UpdateProfile(ctx, alice, &UpdateProfileRequest{
		Username: &taken,
		Photo:    &Upload{Name: "me2.png", Data: pngBytes},
	})
	require.Error(t, err)
	assert.Equal(t, "Username Is Already Taken", GetServiceError(err).Message)
	assert.True(t, env.media.Has(firstPhoto), "a failed update keeps the current photo")
}

// ===============================
// NOTIFICATIONS
// ===============================

func TestNotificationService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin", engagement.RoleAdmin)
	user := env.register(t, "reader", "")
	other := env.register(t, "other", "")

	_, err := env.services.Notification.CreateNotification(ctx, user, &CreateNotificationRequest{
		ToUser: other.ID, Type: "referred", Message: "hi",
	})
	require.Error(t, err)
	assert.True(t, IsAuthorizationError(err))

	n, err := env.services.Notification.CreateNotification(ctx, admin, &CreateNotificationRequest{
		ToUser: user.ID, Type: "referred", Message: " welcome aboard ",
	})
	require.NoError(t, err)
	assert.Equal(t, "welcome aboard", n.Message)

	_, err = env.services.Notification.MarkRead(ctx, other, n.ID)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err), "notifications of other users are invisible")

	resp, err := env.services.Notification.MarkRead(ctx, user, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Notification Marked As Read", resp.Message)

	list, err := env.services.Notification.ListNotifications(ctx, user, ListRequest{})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.True(t, list.Data[0].IsRead)
	assert.NotNil(t, list.Data[0].ReadAt)

	resp, err = env.services.Notification.DeleteNotification(ctx, user, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Notification Deleted Successfully", resp.Message)

	list, err = env.services.Notification.ListNotifications(ctx, user, ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Data)
}

// ===============================
// REPORTS AND STATS
// ===============================

func TestReportService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.register(t, "author", "")
	reporter := env.register(t, "reporter", "")
	handler := env.register(t, "moderator", engagement.RoleReportHandler)
	post := env.seedPost(t, author.ID, engagement.UsersPostCategory)

	rep, err := env.services.Report.CreateReport(ctx, reporter, &CreateReportRequest{
		PostID: post.ID, Reason: "misinformation", Description: "fake",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", rep.Status)

	_, err = env.services.Report.CreateReport(ctx, reporter, &CreateReportRequest{PostID: post.ID, Reason: "other"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(err))
	assert.Equal(t, "You Have Already Reported This Post", GetServiceError(err).Message)

	_, err = env.services.Report.GetReport(ctx, reporter, rep.ID)
	require.Error(t, err)
	assert.True(t, IsAuthorizationError(err))

	detail, err := env.services.Report.GetReport(ctx, handler, rep.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Post)
	assert.Nil(t, detail.DeletedPost)

	require.NoError(t, env.services.Post.DeletePost(ctx, author, post.ID))
	detail, err = env.services.Report.GetReport(ctx, handler, rep.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Post)
	require.NotNil(t, detail.DeletedPost, "deleted posts are served from the archive")
	assert.Equal(t, post.ID, detail.DeletedPost.PostRealID)

	resp, err := env.services.Report.ProcessReport(ctx, handler, rep.ID, &ProcessReportRequest{Status: "resolved"})
	require.NoError(t, err)
	assert.Equal(t, "Report Status Updated Successfully", resp.Message)

	_, err = env.services.Report.ProcessReport(ctx, handler, rep.ID, &ProcessReportRequest{Status: "resolved"})
	require.Error(t, err)
	assert.Equal(t, "Report Is Already resolved", GetServiceError(err).Message)

	found, err := env.services.Report.SearchReports(ctx, handler, &ReportSearchRequest{Status: "resolved"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.Total)
	found, err = env.services.Report.SearchReports(ctx, handler, &ReportSearchRequest{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), found.Total)

	resp, err = env.services.Report.DeleteReport(ctx, handler, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, "Report Deleted Successfully", resp.Message)
}

func TestStatsService_Overview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin", engagement.RoleAdmin)
	user := env.register(t, "user", "")

	env.seedPost(t, user.ID, engagement.UsersPostCategory)
	env.seedPost(t, admin.ID, "sports")
	env.seedEvent(t, admin.ID, time.Now().Add(time.Hour))
	env.seedEvent(t, admin.ID, time.Now().Add(-time.Hour))

	_, err := env.services.Stats.Overview(ctx, user)
	require.Error(t, err)
	assert.True(t, IsAuthorizationError(err))

	stats, err := env.services.Stats.Overview(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Users.Total)
	assert.Equal(t, int64(1), stats.Content.PostsByCategory["sports"])
	assert.Equal(t, int64(1), stats.Content.EventsUpcoming)
	assert.Equal(t, int64(1), stats.Content.EventsEnded)
	assert.Len(t, stats.EventReach, 2)
}
