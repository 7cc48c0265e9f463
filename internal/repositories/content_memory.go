package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"letsconnect/internal/engagement"
	"letsconnect/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/exp/slices"
)

// memoryContentStore keeps content in process. It honours the same version
// and conditional-update contract as the Mongo store.
type memoryContentStore struct {
	mu      sync.RWMutex
	posts   map[string]*models.Post
	gallery map[string]*models.GalleryPost
	events  map[string]*models.Event
	deleted map[string]*models.DeletedPost
}

// NewMemoryContentStore creates an in-process ContentStore
func NewMemoryContentStore() ContentStore {
	return &memoryContentStore{
		posts:   make(map[string]*models.Post),
		gallery: make(map[string]*models.GalleryPost),
		events:  make(map[string]*models.Event),
		deleted: make(map[string]*models.DeletedPost),
	}
}

// NewContentID returns a fresh document id.
func NewContentID() string {
	return bson.NewObjectID().Hex()
}

func clonePost(p *models.Post) *models.Post {
	out := *p
	out.Aggregate = p.Aggregate.Clone()
	if p.Media != nil {
		m := *p.Media
		out.Media = &m
	}
	return &out
}

func cloneGallery(g *models.GalleryPost) *models.GalleryPost {
	out := *g
	out.Aggregate = g.Aggregate.Clone()
	if g.Media != nil {
		m := *g.Media
		out.Media = &m
	}
	return &out
}

func cloneEvent(e *models.Event) *models.Event {
	out := *e
	out.Aggregate = e.Aggregate.Clone()
	out.Location.Coordinates = append([]float64(nil), e.Location.Coordinates...)
	out.Images = append([]models.Media(nil), e.Images...)
	out.Videos = append([]models.Media(nil), e.Videos...)
	out.Attendance = append([]models.Attendance(nil), e.Attendance...)
	return &out
}

// aggregateOf returns a pointer to the stored aggregate of kind/id.
func (s *memoryContentStore) aggregateOf(kind engagement.Kind, id string) *engagement.Aggregate {
	switch kind {
	case engagement.KindPost:
		if p, ok := s.posts[id]; ok {
			return &p.Aggregate
		}
	case engagement.KindGallery:
		if g, ok := s.gallery[id]; ok {
			return &g.Aggregate
		}
	case engagement.KindEvent:
		if e, ok := s.events[id]; ok {
			return &e.Aggregate
		}
	}
	return nil
}

// ===============================
// ENGAGEMENT
// ===============================

func (s *memoryContentStore) LoadAggregate(ctx context.Context, kind engagement.Kind, id string) (*engagement.Aggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg := s.aggregateOf(kind, id)
	if agg == nil {
		return nil, ErrNotFound
	}
	out := agg.Clone()
	out.Kind = kind
	return &out, nil
}

func (s *memoryContentStore) SaveEngagement(ctx context.Context, kind engagement.Kind, id string, expectedVersion int64, agg *engagement.Aggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.aggregateOf(kind, id)
	if stored == nil {
		return ErrNotFound
	}
	if stored.Version != expectedVersion {
		return ErrVersionConflict
	}

	next := agg.Clone()
	stored.Likes = next.Likes
	stored.Comments = next.Comments
	stored.AllowComments = next.AllowComments
	stored.AllowShares = next.AllowShares
	stored.LikesCount, stored.CommentsCount = engagement.RecomputeCounts(stored)
	stored.Version++
	return nil
}

func (s *memoryContentStore) IncrementShares(ctx context.Context, kind engagement.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.aggregateOf(kind, id)
	if stored == nil {
		return ErrNotFound
	}
	return stored.Share()
}

// ===============================
// POSTS
// ===============================

func (s *memoryContentStore) CreatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.ID == "" {
		post.ID = NewContentID()
	}
	if _, exists := s.posts[post.ID]; exists {
		return ErrDuplicate
	}
	s.posts[post.ID] = clonePost(post)
	return nil
}

func (s *memoryContentStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := clonePost(p)
	out.Kind = engagement.KindPost
	return out, nil
}

func (s *memoryContentStore) UpdatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.posts[post.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Content = post.Content
	stored.Category = post.Category
	stored.MediaType = post.MediaType
	stored.Media = post.Media
	stored.AllowComments = post.AllowComments
	stored.AllowShares = post.AllowShares
	stored.UpdatedAt = post.UpdatedAt
	stored.Version++
	return nil
}

func (s *memoryContentStore) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *memoryContentStore) ListPosts(ctx context.Context, filter models.PostFilter, params models.ListParams) ([]*models.Post, int64, error) {
	s.mu.RLock()
	var matched []*models.Post
	for _, p := range s.posts {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.OwnerIDs != nil && !slices.Contains(filter.OwnerIDs, p.OwnerID) {
			continue
		}
		matched = append(matched, listPost(p))
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return page(matched, params), int64(len(matched)), nil
}

func (s *memoryContentStore) PopularPosts(ctx context.Context, recentSince time.Time, params models.ListParams) ([]*models.Post, error) {
	s.mu.RLock()
	var matched []*models.Post
	for _, p := range s.posts {
		if p.Category == engagement.UsersPostCategory {
			matched = append(matched, listPost(p))
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		ri, rj := !matched[i].CreatedAt.Before(recentSince), !matched[j].CreatedAt.Before(recentSince)
		if ri != rj {
			return ri
		}
		return matched[i].PopularityScore() > matched[j].PopularityScore()
	})
	return page(matched, params), nil
}

func (s *memoryContentStore) ArchivePost(ctx context.Context, deleted *models.DeletedPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deleted.ID == "" {
		deleted.ID = NewContentID()
	}
	out := *deleted
	out.Aggregate = deleted.Aggregate.Clone()
	s.deleted[deleted.PostRealID] = &out
	return nil
}

func (s *memoryContentStore) GetDeletedPost(ctx context.Context, postRealID string) (*models.DeletedPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.deleted[postRealID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *d
	out.Aggregate = d.Aggregate.Clone()
	return &out, nil
}

// listPost drops comments the way list projections do.
func listPost(p *models.Post) *models.Post {
	out := clonePost(p)
	out.Kind = engagement.KindPost
	out.Comments = nil
	return out
}

// ===============================
// GALLERY
// ===============================

func (s *memoryContentStore) CreateGallery(ctx context.Context, g *models.GalleryPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = NewContentID()
	}
	s.gallery[g.ID] = cloneGallery(g)
	return nil
}

func (s *memoryContentStore) GetGallery(ctx context.Context, id string) (*models.GalleryPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.gallery[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneGallery(g)
	out.Kind = engagement.KindGallery
	return out, nil
}

func (s *memoryContentStore) UpdateGallery(ctx context.Context, g *models.GalleryPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.gallery[g.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Title = g.Title
	stored.Category = g.Category
	stored.NewsType = g.NewsType
	stored.Media = g.Media
	stored.YouTubeURL = g.YouTubeURL
	stored.AllowComments = g.AllowComments
	stored.AllowShares = g.AllowShares
	stored.UpdatedAt = g.UpdatedAt
	stored.Version++
	return nil
}

func (s *memoryContentStore) DeleteGallery(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.gallery[id]; !ok {
		return ErrNotFound
	}
	delete(s.gallery, id)
	return nil
}

func (s *memoryContentStore) ListGallery(ctx context.Context, filter models.GalleryFilter, params models.ListParams) ([]*models.GalleryPost, int64, error) {
	search := strings.ToLower(filter.Search)

	s.mu.RLock()
	var matched []*models.GalleryPost
	for _, g := range s.gallery {
		if filter.Category != "" && g.Category != filter.Category {
			continue
		}
		if filter.NewsType != "" && g.NewsType != filter.NewsType {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(g.Title), search) {
			continue
		}
		out := cloneGallery(g)
		out.Kind = engagement.KindGallery
		out.Comments = nil
		matched = append(matched, out)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return page(matched, params), int64(len(matched)), nil
}

// ===============================
// EVENTS
// ===============================

func (s *memoryContentStore) CreateEvent(ctx context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = NewContentID()
	}
	s.events[e.ID] = cloneEvent(e)
	return nil
}

func (s *memoryContentStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneEvent(e)
	out.Kind = engagement.KindEvent
	return out, nil
}

func (s *memoryContentStore) UpdateEvent(ctx context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.events[e.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Title = e.Title
	stored.Location = e.Location
	stored.Poster = e.Poster
	stored.StartTime = e.StartTime
	stored.EndTime = e.EndTime
	stored.LiveURL = e.LiveURL
	stored.Images = append([]models.Media(nil), e.Images...)
	stored.Videos = append([]models.Media(nil), e.Videos...)
	stored.AllowComments = e.AllowComments
	stored.AllowShares = e.AllowShares
	stored.UpdatedAt = e.UpdatedAt
	stored.Version++
	return nil
}

func (s *memoryContentStore) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *memoryContentStore) ListEvents(ctx context.Context, window models.EventWindow, now time.Time, params models.ListParams) ([]*models.Event, int64, error) {
	s.mu.RLock()
	var matched []*models.Event
	for _, e := range s.events {
		ended := e.Ended(now)
		if (window == models.EventsRecent) != ended {
			continue
		}
		out := cloneEvent(e)
		out.Kind = engagement.KindEvent
		out.Comments = nil
		out.Attendance = nil
		matched = append(matched, out)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return page(matched, params), int64(len(matched)), nil
}

func (s *memoryContentStore) AddAttendance(ctx context.Context, eventID, userID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return ErrNotFound
	}
	if e.Ended(now) {
		return ErrEventEnded
	}
	if e.IsAttending(userID) {
		return ErrAlreadyAttending
	}
	e.Attendance = append(e.Attendance, models.Attendance{UserID: userID, CreatedAt: now})
	e.AttendanceCount = len(e.Attendance)
	return nil
}

// ===============================
// STATS
// ===============================

func (s *memoryContentStore) CountPostsByCategory(ctx context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64)
	for _, p := range s.posts {
		out[p.Category]++
	}
	return out, nil
}

func (s *memoryContentStore) CountGalleryByCategory(ctx context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64)
	for _, g := range s.gallery {
		out[g.Category]++
	}
	return out, nil
}

func (s *memoryContentStore) CountEvents(ctx context.Context, now time.Time) (int64, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var upcoming, ended int64
	for _, e := range s.events {
		if e.Ended(now) {
			ended++
		} else {
			upcoming++
		}
	}
	return upcoming, ended, nil
}

func (s *memoryContentStore) EventReach(ctx context.Context, limit int) ([]models.EventReach, error) {
	s.mu.RLock()
	events := make([]*models.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].CreatedAt.After(events[j].CreatedAt) })

	out := make([]models.EventReach, 0, len(events))
	for _, e := range page(events, models.ListParams{Page: 1, Limit: limit}) {
		out = append(out, reachOf(e))
	}
	s.mu.RUnlock()
	return out, nil
}

func reachOf(e *models.Event) models.EventReach {
	return models.EventReach{
		EventID:         e.ID,
		Title:           e.Title,
		Likes:           e.LikesCount,
		Comments:        e.CommentsCount,
		Shares:          e.Shares,
		AttendanceCount: e.AttendanceCount,
	}
}

// ===============================
// HELPERS
// ===============================

func page[T any](items []T, params models.ListParams) []T {
	if params.Limit <= 0 {
		return items
	}
	start := params.Skip()
	if start >= len(items) {
		return []T{}
	}
	end := len(items)
	if params.Limit < len(items)-start {
		end = start + params.Limit
	}
	return items[start:end]
}
