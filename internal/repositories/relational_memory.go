package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"letsconnect/internal/models"

	"github.com/gofrs/uuid"
	"golang.org/x/exp/slices"
)

func newRowID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// memoryRelational backs the user, follow, notification and report
// repositories with maps sharing one lock, so follow counts stay consistent.
type memoryRelational struct {
	mu            sync.RWMutex
	users         map[string]*models.User
	follows       []follow
	notifications map[string]*models.Notification
	reports       map[string]*models.Report
}

type follow struct {
	followerID string
	followeeID string
	createdAt  time.Time
}

func newMemoryRelational() *memoryRelational {
	return &memoryRelational{
		users:         make(map[string]*models.User),
		notifications: make(map[string]*models.Notification),
		reports:       make(map[string]*models.Report),
	}
}

// withCounts returns a copy of u with follow counts filled in. Caller holds the lock.
func (m *memoryRelational) withCounts(u *models.User) *models.User {
	out := *u
	if u.Photo != nil {
		p := *u.Photo
		out.Photo = &p
	}
	out.FollowersCount, out.FollowingCount = 0, 0
	for _, f := range m.follows {
		if f.followeeID == u.ID {
			out.FollowersCount++
		}
		if f.followerID == u.ID {
			out.FollowingCount++
		}
	}
	return &out
}

// ===============================
// USERS
// ===============================

type memoryUserRepository struct{ *memoryRelational }

func (r memoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) || u.Username == user.Username {
			return ErrDuplicate
		}
	}
	now := time.Now().UTC()
	user.ID = newRowID()
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r memoryUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.withCounts(u), nil
}

func (r memoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return r.withCounts(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, r.withCounts(u))
		}
	}
	return out, nil
}

func (r memoryUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, u := range r.users {
		if id != user.ID && u.Username == user.Username {
			return ErrDuplicate
		}
	}
	stored.Name = user.Name
	stored.Username = user.Username
	stored.PhoneNumber = user.PhoneNumber
	stored.Gender = user.Gender
	stored.Bio = user.Bio
	stored.Photo = user.Photo
	stored.UpdatedAt = time.Now().UTC()
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r memoryUserRepository) ToggleFlag(ctx context.Context, id string, flag models.UserFlag) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return false, ErrNotFound
	}
	var field *bool
	switch flag {
	case models.FlagShowPoints:
		field = &u.ShowPoints
	case models.FlagShowBadges:
		field = &u.ShowBadges
	case models.FlagIsBanned:
		field = &u.IsBanned
	default:
		return false, fmt.Errorf("unknown user flag %q", flag)
	}
	*field = !*field
	u.UpdatedAt = time.Now().UTC()
	return *field, nil
}

func (r memoryUserRepository) SetRole(ctx context.Context, id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r memoryUserRepository) Stats(ctx context.Context) (*models.UserStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.UserStats{Total: int64(len(r.users))}
	for _, u := range r.users {
		if u.IsBanned {
			stats.Banned++
		}
	}
	return stats, nil
}

// ===============================
// FOLLOWS
// ===============================

type memoryFollowRepository struct{ *memoryRelational }

func (r memoryFollowRepository) Toggle(ctx context.Context, followerID, followeeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.IndexFunc(r.follows, func(f follow) bool {
		return f.followerID == followerID && f.followeeID == followeeID
	})
	if idx >= 0 {
		r.follows = slices.Delete(r.follows, idx, idx+1)
		return false, nil
	}
	if _, ok := r.users[followeeID]; !ok {
		return false, ErrNotFound
	}
	r.follows = append(r.follows, follow{followerID: followerID, followeeID: followeeID, createdAt: time.Now().UTC()})
	return true, nil
}

func (r memoryFollowRepository) list(pick func(follow) (string, bool), params models.ListParams) ([]models.UserSummary, int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []follow
	for _, f := range r.follows {
		if _, ok := pick(f); ok {
			matched = append(matched, f)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].createdAt.After(matched[j].createdAt) })

	out := []models.UserSummary{}
	for _, f := range page(matched, params) {
		id, _ := pick(f)
		if u, ok := r.users[id]; ok {
			out = append(out, u.Summary())
		}
	}
	return out, int64(len(matched))
}

func (r memoryFollowRepository) Followers(ctx context.Context, userID string, params models.ListParams) ([]models.UserSummary, int64, error) {
	out, total := r.list(func(f follow) (string, bool) { return f.followerID, f.followeeID == userID }, params)
	return out, total, nil
}

func (r memoryFollowRepository) Following(ctx context.Context, userID string, params models.ListParams) ([]models.UserSummary, int64, error) {
	out, total := r.list(func(f follow) (string, bool) { return f.followeeID, f.followerID == userID }, params)
	return out, total, nil
}

func (r memoryFollowRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := []string{}
	for _, f := range r.follows {
		if f.followerID == userID {
			ids = append(ids, f.followeeID)
		}
	}
	return ids, nil
}

// ===============================
// NOTIFICATIONS
// ===============================

type memoryNotificationRepository struct{ *memoryRelational }

func (r memoryNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n.ID = newRowID()
	n.CreatedAt = time.Now().UTC()
	stored := *n
	r.notifications[n.ID] = &stored
	return nil
}

func (r memoryNotificationRepository) ListForUser(ctx context.Context, userID string, params models.ListParams) ([]*models.Notification, int64, error) {
	r.mu.RLock()
	var matched []*models.Notification
	for _, n := range r.notifications {
		if n.ToUser == userID {
			out := *n
			matched = append(matched, &out)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return page(matched, params), int64(len(matched)), nil
}

func (r memoryNotificationRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || n.ToUser != userID {
		return ErrNotFound
	}
	if !n.IsRead {
		n.IsRead = true
		n.ReadAt = &at
	}
	return nil
}

func (r memoryNotificationRepository) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || n.ToUser != userID {
		return ErrNotFound
	}
	delete(r.notifications, id)
	return nil
}

// ===============================
// REPORTS
// ===============================

type memoryReportRepository struct{ *memoryRelational }

func (r memoryReportRepository) Create(ctx context.Context, rep *models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reports {
		if existing.PostID == rep.PostID && existing.ReporterID == rep.ReporterID {
			return ErrDuplicate
		}
	}
	now := time.Now().UTC()
	rep.ID = newRowID()
	rep.CreatedAt, rep.UpdatedAt = now, now
	stored := *rep
	r.reports[rep.ID] = &stored
	return nil
}

func (r memoryReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *rep
	return &out, nil
}

func (r memoryReportRepository) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.reports[id]
	if !ok {
		return ErrNotFound
	}
	rep.Status = status
	rep.UpdatedAt = time.Now().UTC()
	return nil
}

func (r memoryReportRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reports[id]; !ok {
		return ErrNotFound
	}
	delete(r.reports, id)
	return nil
}

func (r memoryReportRepository) Search(ctx context.Context, filter models.ReportFilter, params models.ListParams) ([]*models.Report, int64, error) {
	r.mu.RLock()
	var matched []*models.Report
	for _, rep := range r.reports {
		if filter.Reason != "" && rep.Reason != filter.Reason {
			continue
		}
		if filter.Status != "" && rep.Status != filter.Status {
			continue
		}
		out := *rep
		matched = append(matched, &out)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return page(matched, params), int64(len(matched)), nil
}
