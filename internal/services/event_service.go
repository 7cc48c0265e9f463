// file: internal/services/event_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"letsconnect/internal/config"
	"letsconnect/internal/engagement"
	"letsconnect/internal/models"
	"letsconnect/internal/repositories"

	"go.uber.org/zap"
)

// eventService implements EventService
type eventService struct {
	events repositories.EventStore
	files  *fileService
	logger *zap.Logger
	config config.PaginationConfig
	now    func() time.Time
}

// NewEventService creates a new event service
func NewEventService(
	store repositories.EventStore,
	files *fileService,
	logger *zap.Logger,
	cfg config.PaginationConfig,
) EventService {
	return &eventService{
		events: store,
		files:  files,
		logger: logger,
		config: cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *eventService) authorize(pr engagement.Principal, action string) error {
	if !engagement.PolicyFor(engagement.KindEvent).CanCreate(pr, "") {
		return NewAuthorizationError("You Are Not Authorized For This Action", "event", action, pr.ID)
	}
	return nil
}

// ===============================
// CORE CRUD OPERATIONS
// ===============================

// CreateEvent creates an event. The poster is required; images and videos are optional.
func (s *eventService) CreateEvent(ctx context.Context, pr engagement.Principal, req *CreateEventRequest) (*models.Event, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.authorize(pr, "create"); err != nil {
		return nil, err
	}
	if req.Poster == nil {
		return nil, NewValidationError("Please Upload a Poster", nil)
	}

	var uploaded []*models.Media
	rollback := func() {
		for _, m := range uploaded {
			s.files.remove(ctx, m)
		}
	}

	poster, err := s.files.upload(ctx, req.Poster, "image")
	if err != nil {
		return nil, err
	}
	uploaded = append(uploaded, poster)

	e := &models.Event{
		Aggregate: engagement.NewAggregate(engagement.KindEvent, pr.ID),
		Title:     strings.ToLower(strings.TrimSpace(req.Title)),
		Location:  models.NewGeoPoint(req.Latitude, req.Longitude),
		Poster:    *poster,
		StartTime: req.StartTime.UTC(),
		EndTime:   req.EndTime.UTC(),
		LiveURL:   req.LiveURL,
		Images:    []models.Media{},
		Videos:    []models.Media{},
	}
	e.AllowComments = req.AllowComments
	e.AllowShares = req.AllowShares

	for i := range req.Images {
		m, err := s.files.upload(ctx, &req.Images[i], "image")
		if err != nil {
			rollback()
			return nil, err
		}
		uploaded = append(uploaded, m)
		e.Images = append(e.Images, *m)
	}
	for i := range req.Videos {
		m, err := s.files.upload(ctx, &req.Videos[i], "video")
		if err != nil {
			rollback()
			return nil, err
		}
		uploaded = append(uploaded, m)
		e.Videos = append(e.Videos, *m)
	}

	e.CreatedAt = s.now()
	e.UpdatedAt = e.CreatedAt
	if err := s.events.CreateEvent(ctx, e); err != nil {
		rollback()
		return nil, failure(s.logger, "create event", err, "Event", "")
	}

	s.logger.Info("Event created",
		zap.String("event_id", e.ID),
		zap.String("owner_id", pr.ID),
		zap.Time("start_time", e.StartTime),
	)
	return e, nil
}

// GetEvent returns an event without its comments and attendance list
func (s *eventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	e, err := s.load(ctx, id, "get event")
	if err != nil {
		return nil, err
	}
	e.Comments = nil
	e.Attendance = nil
	return e, nil
}

func (s *eventService) load(ctx context.Context, id, action string) (*models.Event, error) {
	if err := checkContentID(engagement.KindEvent, id); err != nil {
		return nil, err
	}
	e, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return nil, failure(s.logger, action, err, "Event", id)
	}
	return e, nil
}

// UpdateEvent applies a partial update, replacing the poster when a new one is sent
func (s *eventService) UpdateEvent(ctx context.Context, pr engagement.Principal, id string, req *UpdateEventRequest) (*models.Event, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.authorize(pr, "update"); err != nil {
		return nil, err
	}
	e, err := s.load(ctx, id, "update event")
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		e.Title = strings.ToLower(strings.TrimSpace(*req.Title))
	}
	if req.Latitude != nil || req.Longitude != nil {
		lat, lng := e.Location.Lat(), e.Location.Lng()
		if req.Latitude != nil {
			lat = *req.Latitude
		}
		if req.Longitude != nil {
			lng = *req.Longitude
		}
		e.Location = models.NewGeoPoint(lat, lng)
	}
	if req.StartTime != nil {
		e.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		e.EndTime = req.EndTime.UTC()
	}
	if !e.EndTime.After(e.StartTime) {
		return nil, NewValidationError("End Time Must Be After Start Time", nil)
	}
	if req.LiveURL != nil {
		e.LiveURL = *req.LiveURL
	}
	if req.AllowComments != nil {
		e.AllowComments = *req.AllowComments
	}
	if req.AllowShares != nil {
		e.AllowShares = *req.AllowShares
	}

	old := e.Poster
	replaced := false
	if req.Poster != nil {
		m, err := s.files.upload(ctx, req.Poster, "image")
		if err != nil {
			return nil, err
		}
		e.Poster = *m
		replaced = true
	}

	e.UpdatedAt = s.now()
	if err := s.events.UpdateEvent(ctx, e); err != nil {
		if replaced {
			s.files.remove(ctx, &e.Poster)
		}
		return nil, failure(s.logger, "update event", err, "Event", id)
	}
	if replaced {
		s.files.remove(ctx, &old)
	}

	e.Comments = nil
	e.Attendance = nil
	return e, nil
}

// DeleteEvent removes an event and every file it references
func (s *eventService) DeleteEvent(ctx context.Context, pr engagement.Principal, id string) error {
	if err := s.authorize(pr, "delete"); err != nil {
		return err
	}
	e, err := s.load(ctx, id, "delete event")
	if err != nil {
		return err
	}
	if err := s.events.DeleteEvent(ctx, id); err != nil {
		return failure(s.logger, "delete event", err, "Event", id)
	}

	s.files.remove(ctx, &e.Poster)
	for i := range e.Images {
		s.files.remove(ctx, &e.Images[i])
	}
	for i := range e.Videos {
		s.files.remove(ctx, &e.Videos[i])
	}

	s.logger.Info("Event deleted", zap.String("event_id", id), zap.String("deleted_by", pr.ID))
	return nil
}

// ListEvents lists ended (recent) or ongoing and future (upcoming) events
func (s *eventService) ListEvents(ctx context.Context, window models.EventWindow, req ListRequest) (*ListResult[*models.Event], error) {
	if window != models.EventsRecent && window != models.EventsUpcoming {
		return nil, NewValidationError("Invalid Event Window", nil)
	}
	params := req.params(s.config)
	items, total, err := s.events.ListEvents(ctx, window, s.now(), params)
	if err != nil {
		return nil, failure(s.logger, "list events", err, "Event", "")
	}
	return newListResult(items, total, params), nil
}

// ===============================
// ATTENDANCE
// ===============================

// Attend adds the caller to the attendance list of an event that has not ended
func (s *eventService) Attend(ctx context.Context, pr engagement.Principal, id string) (*MessageResponse, error) {
	if err := checkContentID(engagement.KindEvent, id); err != nil {
		return nil, err
	}
	err := s.events.AddAttendance(ctx, id, pr.ID, s.now())
	switch {
	case err == nil:
		return message("Event Attended Successfully"), nil
	case errors.Is(err, repositories.ErrEventEnded):
		return nil, NewValidationError("Event Has Ended", err)
	case errors.Is(err, repositories.ErrAlreadyAttending):
		return nil, NewConflictError("You Are Already Attending This Event", "ALREADY_ATTENDING")
	}
	return nil, failure(s.logger, "attend event", err, "Event", id)
}

// ListAttendance returns one page of the attendance list
func (s *eventService) ListAttendance(ctx context.Context, id string, req ListRequest) (*AttendancePage, error) {
	e, err := s.load(ctx, id, "list attendance")
	if err != nil {
		return nil, err
	}

	page, pageSize := req.window(s.config.AttendancePerPage, s.config.MaxLimit)
	items, total := engagement.Slice(e.Attendance, page, pageSize)
	return &AttendancePage{
		Attendance:      items,
		TotalAttendance: total,
		TotalPages:      engagement.TotalPages(total, pageSize),
		Page:            page,
	}, nil
}
