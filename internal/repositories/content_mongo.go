package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"letsconnect/internal/database"
	"letsconnect/internal/engagement"
	"letsconnect/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

// mongoContentStore keeps posts, gallery posts and events as documents.
type mongoContentStore struct {
	posts   *mongo.Collection
	gallery *mongo.Collection
	events  *mongo.Collection
	deleted *mongo.Collection
	logger  *zap.Logger
}

// NewMongoContentStore creates a ContentStore backed by MongoDB
func NewMongoContentStore(db *database.Mongo, logger *zap.Logger) ContentStore {
	return &mongoContentStore{
		posts:   db.Collection(database.CollectionPosts),
		gallery: db.Collection(database.CollectionGallery),
		events:  db.Collection(database.CollectionEvents),
		deleted: db.Collection(database.CollectionDeletedPosts),
		logger:  logger,
	}
}

func (s *mongoContentStore) collection(kind engagement.Kind) (*mongo.Collection, error) {
	switch kind {
	case engagement.KindPost:
		return s.posts, nil
	case engagement.KindGallery:
		return s.gallery, nil
	case engagement.KindEvent:
		return s.events, nil
	}
	return nil, fmt.Errorf("unknown content kind %q", kind)
}

// listProjection hides the nested arrays that have their own endpoints.
var listProjection = bson.M{"comments": 0, "attendance": 0}

var engagementProjection = bson.M{
	"ownerId":       1,
	"allowComments": 1,
	"allowShares":   1,
	"likes":         1,
	"likesCount":    1,
	"shares":        1,
	"comments":      1,
	"commentsCount": 1,
	"version":       1,
}

// ===============================
// ENGAGEMENT
// ===============================

func (s *mongoContentStore) LoadAggregate(ctx context.Context, kind engagement.Kind, id string) (*engagement.Aggregate, error) {
	coll, err := s.collection(kind)
	if err != nil {
		return nil, err
	}

	var doc struct {
		ID                   string `bson:"_id"`
		engagement.Aggregate `bson:",inline"`
	}
	err = coll.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(engagementProjection)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s %s: %w", kind, id, err)
	}

	doc.Aggregate.Kind = kind
	return &doc.Aggregate, nil
}

func (s *mongoContentStore) SaveEngagement(ctx context.Context, kind engagement.Kind, id string, expectedVersion int64, agg *engagement.Aggregate) error {
	coll, err := s.collection(kind)
	if err != nil {
		return err
	}

	likesCount, commentsCount := engagement.RecomputeCounts(agg)
	update := bson.M{
		"$set": bson.M{
			"likes":         nonNil(agg.Likes),
			"likesCount":    likesCount,
			"comments":      nonNilComments(agg.Comments),
			"commentsCount": commentsCount,
			"allowComments": agg.AllowComments,
			"allowShares":   agg.AllowShares,
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": id, "version": expectedVersion}, update)
	if err != nil {
		return fmt.Errorf("save %s %s engagement: %w", kind, id, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	return s.missOrConflict(ctx, coll, id, ErrVersionConflict)
}

func (s *mongoContentStore) IncrementShares(ctx context.Context, kind engagement.Kind, id string) error {
	coll, err := s.collection(kind)
	if err != nil {
		return err
	}

	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": id, "allowShares": true},
		bson.M{"$inc": bson.M{"shares": 1}},
	)
	if err != nil {
		return fmt.Errorf("share %s %s: %w", kind, id, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	return s.missOrConflict(ctx, coll, id, engagement.ErrSharesDisabled)
}

// missOrConflict tells a missing document apart from a failed condition.
func (s *mongoContentStore) missOrConflict(ctx context.Context, coll *mongo.Collection, id string, conflict error) error {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("check %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return conflict
}

// ===============================
// POSTS
// ===============================

func (s *mongoContentStore) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = NewContentID()
	}
	return s.insert(ctx, s.posts, post)
}

func (s *mongoContentStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := s.findOne(ctx, s.posts, id, &post); err != nil {
		return nil, err
	}
	post.Kind = engagement.KindPost
	return &post, nil
}

func (s *mongoContentStore) UpdatePost(ctx context.Context, post *models.Post) error {
	return s.updateFields(ctx, s.posts, post.ID, bson.M{
		"content":       post.Content,
		"category":      post.Category,
		"mediaType":     post.MediaType,
		"media":         post.Media,
		"allowComments": post.AllowComments,
		"allowShares":   post.AllowShares,
		"updatedAt":     post.UpdatedAt,
	})
}

func (s *mongoContentStore) DeletePost(ctx context.Context, id string) error {
	return s.deleteOne(ctx, s.posts, id)
}

func (s *mongoContentStore) ListPosts(ctx context.Context, filter models.PostFilter, params models.ListParams) ([]*models.Post, int64, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.OwnerIDs != nil {
		query["ownerId"] = bson.M{"$in": filter.OwnerIDs}
	}

	var posts []*models.Post
	total, err := s.findPage(ctx, s.posts, query, params, &posts)
	if err != nil {
		return nil, 0, err
	}
	for _, p := range posts {
		p.Kind = engagement.KindPost
	}
	return posts, total, nil
}

func (s *mongoContentStore) PopularPosts(ctx context.Context, recentSince time.Time, params models.ListParams) ([]*models.Post, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"category": engagement.UsersPostCategory}}},
		{{Key: "$addFields", Value: bson.M{
			"isRecent":        bson.M{"$cond": bson.A{bson.M{"$gte": bson.A{"$createdAt", recentSince}}, true, false}},
			"popularityScore": bson.M{"$add": bson.A{"$likesCount", "$commentsCount", "$shares"}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "isRecent", Value: -1}, {Key: "popularityScore", Value: -1}}}},
	}
	if params.Limit > 0 {
		pipeline = append(pipeline,
			bson.D{{Key: "$skip", Value: int64(params.Skip())}},
			bson.D{{Key: "$limit", Value: int64(params.Limit)}},
		)
	}
	pipeline = append(pipeline, bson.D{{Key: "$project", Value: bson.M{"comments": 0, "isRecent": 0, "popularityScore": 0}}})

	cursor, err := s.posts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("popular posts: %w", err)
	}
	var posts []*models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode popular posts: %w", err)
	}
	for _, p := range posts {
		p.Kind = engagement.KindPost
	}
	return posts, nil
}

func (s *mongoContentStore) ArchivePost(ctx context.Context, deleted *models.DeletedPost) error {
	if deleted.ID == "" {
		deleted.ID = NewContentID()
	}
	return s.insert(ctx, s.deleted, deleted)
}

func (s *mongoContentStore) GetDeletedPost(ctx context.Context, postRealID string) (*models.DeletedPost, error) {
	var deleted models.DeletedPost
	err := s.deleted.FindOne(ctx, bson.M{"postRealId": postRealID}).Decode(&deleted)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load deleted post %s: %w", postRealID, err)
	}
	return &deleted, nil
}

// ===============================
// GALLERY
// ===============================

func (s *mongoContentStore) CreateGallery(ctx context.Context, g *models.GalleryPost) error {
	if g.ID == "" {
		g.ID = NewContentID()
	}
	return s.insert(ctx, s.gallery, g)
}

func (s *mongoContentStore) GetGallery(ctx context.Context, id string) (*models.GalleryPost, error) {
	var g models.GalleryPost
	if err := s.findOne(ctx, s.gallery, id, &g); err != nil {
		return nil, err
	}
	g.Kind = engagement.KindGallery
	return &g, nil
}

func (s *mongoContentStore) UpdateGallery(ctx context.Context, g *models.GalleryPost) error {
	return s.updateFields(ctx, s.gallery, g.ID, bson.M{
		"title":         g.Title,
		"category":      g.Category,
		"newsType":      g.NewsType,
		"media":         g.Media,
		"youTubeUrl":    g.YouTubeURL,
		"allowComments": g.AllowComments,
		"allowShares":   g.AllowShares,
		"updatedAt":     g.UpdatedAt,
	})
}

func (s *mongoContentStore) DeleteGallery(ctx context.Context, id string) error {
	return s.deleteOne(ctx, s.gallery, id)
}

func (s *mongoContentStore) ListGallery(ctx context.Context, filter models.GalleryFilter, params models.ListParams) ([]*models.GalleryPost, int64, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.NewsType != "" {
		query["newsType"] = filter.NewsType
	}
	if filter.Search != "" {
		query["title"] = bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
	}

	var items []*models.GalleryPost
	total, err := s.findPage(ctx, s.gallery, query, params, &items)
	if err != nil {
		return nil, 0, err
	}
	for _, g := range items {
		g.Kind = engagement.KindGallery
	}
	return items, total, nil
}

// ===============================
// EVENTS
// ===============================

func (s *mongoContentStore) CreateEvent(ctx context.Context, e *models.Event) error {
	if e.ID == "" {
		e.ID = NewContentID()
	}
	return s.insert(ctx, s.events, e)
}

func (s *mongoContentStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	if err := s.findOne(ctx, s.events, id, &e); err != nil {
		return nil, err
	}
	e.Kind = engagement.KindEvent
	return &e, nil
}

func (s *mongoContentStore) UpdateEvent(ctx context.Context, e *models.Event) error {
	return s.updateFields(ctx, s.events, e.ID, bson.M{
		"title":         e.Title,
		"location":      e.Location,
		"poster":        e.Poster,
		"startTime":     e.StartTime,
		"endTime":       e.EndTime,
		"liveUrl":       e.LiveURL,
		"images":        nonNilMedia(e.Images),
		"videos":        nonNilMedia(e.Videos),
		"allowComments": e.AllowComments,
		"allowShares":   e.AllowShares,
		"updatedAt":     e.UpdatedAt,
	})
}

func (s *mongoContentStore) DeleteEvent(ctx context.Context, id string) error {
	return s.deleteOne(ctx, s.events, id)
}

func eventWindowFilter(window models.EventWindow, now time.Time) bson.M {
	if window == models.EventsRecent {
		return bson.M{"endTime": bson.M{"$lte": now}}
	}
	return bson.M{"endTime": bson.M{"$gt": now}}
}

func (s *mongoContentStore) ListEvents(ctx context.Context, window models.EventWindow, now time.Time, params models.ListParams) ([]*models.Event, int64, error) {
	var events []*models.Event
	total, err := s.findPage(ctx, s.events, eventWindowFilter(window, now), params, &events)
	if err != nil {
		return nil, 0, err
	}
	for _, e := range events {
		e.Kind = engagement.KindEvent
	}
	return events, total, nil
}

func (s *mongoContentStore) AddAttendance(ctx context.Context, eventID, userID string, now time.Time) error {
	res, err := s.events.UpdateOne(ctx,
		bson.M{
			"_id":               eventID,
			"endTime":           bson.M{"$gt": now},
			"attendance.userId": bson.M{"$ne": userID},
		},
		bson.M{
			"$push": bson.M{"attendance": models.Attendance{UserID: userID, CreatedAt: now}},
			"$inc":  bson.M{"attendanceCount": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("attend event %s: %w", eventID, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.Ended(now) {
		return ErrEventEnded
	}
	return ErrAlreadyAttending
}

// ===============================
// STATS
// ===============================

func (s *mongoContentStore) countByCategory(ctx context.Context, coll *mongo.Collection) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count %s by category: %w", coll.Name(), err)
	}

	var rows []struct {
		Category string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode %s counts: %w", coll.Name(), err)
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Category] = r.Count
	}
	return out, nil
}

func (s *mongoContentStore) CountPostsByCategory(ctx context.Context) (map[string]int64, error) {
	return s.countByCategory(ctx, s.posts)
}

func (s *mongoContentStore) CountGalleryByCategory(ctx context.Context) (map[string]int64, error) {
	return s.countByCategory(ctx, s.gallery)
}

func (s *mongoContentStore) CountEvents(ctx context.Context, now time.Time) (int64, int64, error) {
	upcoming, err := s.events.CountDocuments(ctx, eventWindowFilter(models.EventsUpcoming, now))
	if err != nil {
		return 0, 0, fmt.Errorf("count upcoming events: %w", err)
	}
	ended, err := s.events.CountDocuments(ctx, eventWindowFilter(models.EventsRecent, now))
	if err != nil {
		return 0, 0, fmt.Errorf("count ended events: %w", err)
	}
	return upcoming, ended, nil
}

func (s *mongoContentStore) EventReach(ctx context.Context, limit int) ([]models.EventReach, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"title": 1, "likesCount": 1, "commentsCount": 1, "shares": 1, "attendanceCount": 1})

	cursor, err := s.events.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("event reach: %w", err)
	}
	var events []*models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode event reach: %w", err)
	}

	out := make([]models.EventReach, 0, len(events))
	for _, e := range events {
		out = append(out, reachOf(e))
	}
	return out, nil
}

// ===============================
// HELPERS
// ===============================

func (s *mongoContentStore) insert(ctx context.Context, coll *mongo.Collection, doc interface{}) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		s.logger.Error("Failed to insert document", zap.String("collection", coll.Name()), zap.Error(err))
		return fmt.Errorf("insert into %s: %w", coll.Name(), err)
	}
	return nil
}

func (s *mongoContentStore) findOne(ctx context.Context, coll *mongo.Collection, id string, dst interface{}) error {
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(dst)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find %s in %s: %w", id, coll.Name(), err)
	}
	return nil
}

// updateFields sets non-engagement fields and bumps the version so an
// in-flight engagement save cannot restore stale allow flags.
func (s *mongoContentStore) updateFields(ctx context.Context, coll *mongo.Collection, id string, fields bson.M) error {
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": fields,
		"$inc": bson.M{"version": 1},
	})
	if err != nil {
		return fmt.Errorf("update %s in %s: %w", id, coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoContentStore) deleteOne(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s from %s: %w", id, coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoContentStore) findPage(ctx context.Context, coll *mongo.Collection, query bson.M, params models.ListParams, dst interface{}) (int64, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(listProjection)
	if params.Limit > 0 {
		opts.SetSkip(int64(params.Skip())).SetLimit(int64(params.Limit))
	}

	cursor, err := coll.Find(ctx, query, opts)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", coll.Name(), err)
	}
	if err := cursor.All(ctx, dst); err != nil {
		return 0, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}

	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", coll.Name(), err)
	}
	return total, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func nonNilComments(c []engagement.Comment) []engagement.Comment {
	if c == nil {
		return []engagement.Comment{}
	}
	return c
}

func nonNilMedia(m []models.Media) []models.Media {
	if m == nil {
		return []models.Media{}
	}
	return m
}
