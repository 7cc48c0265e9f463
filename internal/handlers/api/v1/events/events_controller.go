// file: internal/handlers/api/v1/events/events_controller.go
package events

import (
	"net/http"
	"time"

	"letsconnect/internal/engagement"
	"letsconnect/internal/handlers/api/v1/apiutil"
	"letsconnect/internal/handlers/api/v1/engagements"
	"letsconnect/internal/models"
	"letsconnect/internal/response"
	"letsconnect/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EventController handles event and attendance API endpoints
type EventController struct {
	events          services.EventService
	engagement      *engagements.EngagementController
	responseBuilder *response.Builder
	logger          *zap.Logger
	maxUploadBytes  int64
}

// NewEventController creates a new event API controller
func NewEventController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *EventController {
	return &EventController{
		events:          serviceCollection.Event,
		engagement:      engagements.NewEngagementController(serviceCollection.Engagement, engagement.KindEvent, responseBuilder, logger),
		responseBuilder: responseBuilder,
		logger:          logger,
		maxUploadBytes:  serviceCollection.Config.Server.MaxUploadBytes,
	}
}

// Routes registers the event endpoints
func (c *EventController) Routes(r chi.Router) {
	r.Post("/", c.CreateEvent)
	r.Get("/recent", c.listWindow(models.EventsRecent))
	r.Get("/upcoming", c.listWindow(models.EventsUpcoming))
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", c.GetEvent)
		r.Put("/", c.UpdateEvent)
		r.Delete("/", c.DeleteEvent)
		r.Post("/attend", c.Attend)
		r.Get("/attendance", c.ListAttendance)
		c.engagement.Routes(r)
	})
}

// CreateEvent handles POST /api/v1/events (multipart: poster, images, videos)
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if err := apiutil.ParseForm(w, r, c.maxUploadBytes); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	req := &services.CreateEventRequest{
		Title:         apiutil.FormValue(r, "title"),
		LiveURL:       apiutil.FormValue(r, "liveUrl"),
		AllowComments: apiutil.FlagOr(apiutil.YesNo(r, "allowComments"), true),
		AllowShares:   apiutil.FlagOr(apiutil.YesNo(r, "allowShares"), true),
	}
	if err := c.bindCreate(r, req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	ev, err := c.events.CreateEvent(r.Context(), pr, req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteCreated(w, r, "Event Created Successfully", ev)
}

// bindCreate reads the typed fields and the uploads of a create request
func (c *EventController) bindCreate(r *http.Request, req *services.CreateEventRequest) error {
	lat, err := apiutil.FormFloat(r, "latitude")
	if err != nil {
		return err
	}
	lng, err := apiutil.FormFloat(r, "longitude")
	if err != nil {
		return err
	}
	if lat == nil || lng == nil {
		return services.NewValidationError("Please Enter the Event Location", nil)
	}
	start, err := apiutil.FormTime(r, "startTime")
	if err != nil {
		return err
	}
	end, err := apiutil.FormTime(r, "endTime")
	if err != nil {
		return err
	}
	if start == nil || end == nil {
		return services.NewValidationError("Please Enter Start and End Time", nil)
	}
	req.Latitude, req.Longitude = *lat, *lng
	req.StartTime, req.EndTime = *start, *end

	if req.Poster, err = apiutil.FormFile(r, "poster"); err != nil {
		return err
	}
	if req.Images, err = apiutil.FormFiles(r, "images"); err != nil {
		return err
	}
	if req.Videos, err = apiutil.FormFiles(r, "videos"); err != nil {
		return err
	}
	return nil
}

// GetEvent handles GET /api/v1/events/{id}
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := c.events.GetEvent(r.Context(), apiutil.Param(r, engagements.ParamID))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteData(w, r, http.StatusOK, ev)
}

// UpdateEvent handles PUT /api/v1/events/{id} (multipart, every field optional)
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if err := apiutil.ParseForm(w, r, c.maxUploadBytes); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	req, err := bindUpdate(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if _, err := c.events.UpdateEvent(r.Context(), pr, apiutil.Param(r, engagements.ParamID), req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, http.StatusOK, "Event Updated Successfully")
}

func bindUpdate(r *http.Request) (*services.UpdateEventRequest, error) {
	req := &services.UpdateEventRequest{
		Title:         apiutil.FormString(r, "title"),
		LiveURL:       apiutil.FormString(r, "liveUrl"),
		AllowComments: apiutil.YesNo(r, "allowComments"),
		AllowShares:   apiutil.YesNo(r, "allowShares"),
	}

	var err error
	if req.Latitude, err = apiutil.FormFloat(r, "latitude"); err != nil {
		return nil, err
	}
	if req.Longitude, err = apiutil.FormFloat(r, "longitude"); err != nil {
		return nil, err
	}
	var start, end *time.Time
	if start, err = apiutil.FormTime(r, "startTime"); err != nil {
		return nil, err
	}
	if end, err = apiutil.FormTime(r, "endTime"); err != nil {
		return nil, err
	}
	req.StartTime, req.EndTime = start, end

	if req.Poster, err = apiutil.FormFile(r, "poster"); err != nil {
		return nil, err
	}
	return req, nil
}

// DeleteEvent handles DELETE /api/v1/events/{id}
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if err := c.events.DeleteEvent(r.Context(), pr, apiutil.Param(r, engagements.ParamID)); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, http.StatusOK, "Event Deleted Successfully")
}

// listWindow serves GET /api/v1/events/recent and /upcoming
func (c *EventController) listWindow(window models.EventWindow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := response.ParseListRequest(r)
		if err != nil {
			c.responseBuilder.WriteError(w, r, err)
			return
		}
		result, err := c.events.ListEvents(r.Context(), window, req)
		if err != nil {
			c.responseBuilder.WriteError(w, r, err)
			return
		}
		response.WriteList(c.responseBuilder, w, r, result)
	}
}

// ===============================
// ATTENDANCE
// ===============================

// Attend handles POST /api/v1/events/{id}/attend
func (c *EventController) Attend(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	msg, err := c.events.Attend(r.Context(), pr, apiutil.Param(r, engagements.ParamID))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, http.StatusCreated, msg.Message)
}

// ListAttendance handles GET /api/v1/events/{id}/attendance?page=
func (c *EventController) ListAttendance(w http.ResponseWriter, r *http.Request) {
	req, err := response.ParseListRequest(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	page, err := c.events.ListAttendance(r.Context(), apiutil.Param(r, engagements.ParamID), req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteAttendance(w, r, page)
}
